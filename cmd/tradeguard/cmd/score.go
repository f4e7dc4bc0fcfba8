package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tradeguard/confidence"
	"tradeguard/engine"
	"tradeguard/indicators"
	"tradeguard/market"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score one trade proposal against candle history",
	Long: `Score a single trade proposal from a CSV candle file and print the
pillar breakdown without placing any order.

The candle file has columns time,open,high,low,close,volume.

Example:
  tradeguard score --candles eurusd_m1.csv --asset EURUSD --strategy day --side buy --confluence 3`,
	RunE: runScore,
}

var (
	scoreCandles    string
	scoreAsset      string
	scoreStrategy   string
	scoreSide       string
	scoreConfluence int
	scoreSentiment  string
	scoreEvent      bool
)

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringVar(&scoreCandles, "candles", "", "CSV candle file (required)")
	scoreCmd.Flags().StringVar(&scoreAsset, "asset", "", "asset symbol (required)")
	scoreCmd.Flags().StringVar(&scoreStrategy, "strategy", "day", "strategy profile")
	scoreCmd.Flags().StringVar(&scoreSide, "side", "buy", "proposed side: buy or sell")
	scoreCmd.Flags().IntVar(&scoreConfluence, "confluence", 1, "number of agreeing indicators")
	scoreCmd.Flags().StringVar(&scoreSentiment, "sentiment", "neutral", "news sentiment label")
	scoreCmd.Flags().BoolVar(&scoreEvent, "event-pending", false, "high-impact event ahead")
	scoreCmd.MarkFlagRequired("candles")
	scoreCmd.MarkFlagRequired("asset")
}

type fileSource struct {
	series market.Series
}

func (f fileSource) Series(ctx context.Context, asset string, n int) (market.Series, error) {
	if len(f.series) > n {
		return f.series[len(f.series)-n:], nil
	}
	return f.series, nil
}

type staticSentiment struct {
	label confidence.SentimentLabel
	event bool
}

func (s staticSentiment) Sentiment(ctx context.Context, asset string) (confidence.SentimentLabel, error) {
	return s.label, nil
}

func (s staticSentiment) Positioning(ctx context.Context, asset string) (confidence.Positioning, error) {
	return confidence.Positioning{}, nil
}

func (s staticSentiment) HighImpactEventAhead(ctx context.Context, asset string) (bool, error) {
	return s.event, nil
}

func runScore(cmd *cobra.Command, args []string) error {
	series, err := market.LoadCSV(scoreCandles)
	if err != nil {
		return err
	}

	side := market.Buy
	switch strings.ToLower(scoreSide) {
	case "buy", "long":
	case "sell", "short":
		side = market.Sell
	default:
		return fmt.Errorf("side must be buy or sell, got %q", scoreSide)
	}

	registry, err := buildRegistry(cfg)
	if err != nil {
		return fmt.Errorf("load profiles: %w", err)
	}

	eng, err := engine.New(cfg.Engine, engine.Options{
		Prices: fileSource{series: series},
		Sentiment: staticSentiment{
			label: confidence.ParseSentiment(scoreSentiment),
			event: scoreEvent,
		},
		Registry: registry,
	})
	if err != nil {
		return err
	}

	rsi, err := indicators.RSI(series, 14)
	if err != nil {
		rsi = 50
	}

	dec, err := eng.Decide(context.Background(), engine.Request{
		Asset:      scoreAsset,
		Strategy:   scoreStrategy,
		Side:       side,
		Indicators: confidence.Indicators{RSI: rsi},
		Confluence: scoreConfluence,
	})
	if err != nil {
		return err
	}

	sc := dec.Score
	fmt.Printf("Asset:            %s (%s, %s)\n", scoreAsset, scoreStrategy, side)
	fmt.Printf("Regime:           %s\n", dec.Regime)
	fmt.Printf("Base signal:      %.1f\n", sc.BaseSignal)
	fmt.Printf("Trend confluence: %.1f\n", sc.TrendConfluence)
	fmt.Printf("Volatility:       %.1f\n", sc.Volatility)
	fmt.Printf("Sentiment:        %.1f\n", sc.Sentiment)
	fmt.Printf("Total:            %.1f (threshold %.1f)\n", sc.Total, sc.Threshold)
	if sc.Approved {
		fmt.Println("Verdict:          APPROVED")
	} else {
		fmt.Println("Verdict:          REJECTED")
	}
	for _, b := range sc.Bonuses {
		fmt.Printf("  + %s\n", b)
	}
	for _, p := range sc.Penalties {
		fmt.Printf("  - %s\n", p)
	}
	return nil
}
