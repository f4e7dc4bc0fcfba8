package indicators

import (
	"fmt"
	"math"

	"tradeguard/market"
)

// ADX calculates Wilder's Average Directional Index (trend strength,
// 0-100) over the whole series for the given period.
//
// Warmup: Period candles seed the smoothed TR/+DM/-DM averages, then
// Period DX values seed the ADX, so 2*Period+1 candles are the minimum.
func ADX(candles market.Series, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(candles) < 2*period+1 {
		return 0, fmt.Errorf("not enough candles: need %d, got %d", 2*period+1, len(candles))
	}

	p := float64(period)
	var tr14, pdm14, mdm14 float64
	var adx, dxSum float64
	dxCount := 0
	seeded := false

	for i := 1; i < len(candles); i++ {
		c, prev := candles[i], candles[i-1]

		upMove := c.High - prev.High
		downMove := prev.Low - c.Low

		var pdm, mdm float64
		if upMove > downMove && upMove > 0 {
			pdm = upMove
		}
		if downMove > upMove && downMove > 0 {
			mdm = downMove
		}
		tr := trueRange(c, prev)

		if i <= period {
			// Warmup phase A: accumulate initial averages.
			tr14 += tr
			pdm14 += pdm
			mdm14 += mdm
			if i == period {
				tr14 /= p
				pdm14 /= p
				mdm14 /= p
			}
			continue
		}

		// Wilder smoothing for TR/+DM/-DM.
		tr14 = (tr14*(p-1) + tr) / p
		pdm14 = (pdm14*(p-1) + pdm) / p
		mdm14 = (mdm14*(p-1) + mdm) / p

		if tr14 == 0 {
			continue
		}

		pdi := 100 * (pdm14 / tr14)
		mdi := 100 * (mdm14 / tr14)
		den := pdi + mdi
		if den == 0 {
			continue
		}
		dx := 100 * math.Abs(pdi-mdi) / den

		// Warmup phase B: seed ADX with the average of the first
		// Period DX values, then smooth.
		if !seeded {
			dxSum += dx
			dxCount++
			if dxCount == period {
				adx = dxSum / p
				seeded = true
			}
			continue
		}
		adx = (adx*(p-1) + dx) / p
	}

	if !seeded {
		return 0, fmt.Errorf("degenerate series: ADX never seeded")
	}
	return adx, nil
}
