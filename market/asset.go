package market

import "strings"

// AssetClass groups instruments by how their sentiment and thresholds
// are sourced. Crypto trades around the clock and keeps its own fixed
// confidence threshold regardless of the configured mode.
type AssetClass int

const (
	ClassForex AssetClass = iota
	ClassMetals
	ClassEnergy
	ClassAgriculture
	ClassIndices
	ClassCrypto
)

func (a AssetClass) String() string {
	switch a {
	case ClassMetals:
		return "metals"
	case ClassEnergy:
		return "energy"
	case ClassAgriculture:
		return "agriculture"
	case ClassIndices:
		return "indices"
	case ClassCrypto:
		return "crypto"
	default:
		return "forex"
	}
}

// HasPositioningData reports whether structured positioning reports exist
// for the class. Only the physical commodity classes are covered.
func (a AssetClass) HasPositioningData() bool {
	switch a {
	case ClassMetals, ClassEnergy, ClassAgriculture:
		return true
	}
	return false
}

var classPrefixes = map[string]AssetClass{
	"XAU": ClassMetals, "XAG": ClassMetals, "XPT": ClassMetals, "XPD": ClassMetals,
	"WTI": ClassEnergy, "BRENT": ClassEnergy, "NATGAS": ClassEnergy,
	"WHEAT": ClassAgriculture, "CORN": ClassAgriculture, "SOYBEAN": ClassAgriculture, "COFFEE": ClassAgriculture,
	"BTC": ClassCrypto, "ETH": ClassCrypto, "SOL": ClassCrypto, "XRP": ClassCrypto,
	"SPX": ClassIndices, "NAS": ClassIndices, "DAX": ClassIndices,
}

// ClassOf guesses the asset class from an instrument symbol like
// "XAUUSD" or "BTC_USD". Unknown symbols default to forex.
func ClassOf(symbol string) AssetClass {
	up := strings.ToUpper(symbol)
	for prefix, class := range classPrefixes {
		if strings.HasPrefix(up, prefix) {
			return class
		}
	}
	return ClassForex
}
