package model

// Order sides.
const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)

// Order varieties.
const (
	VarietyNormal   = "NORMAL"
	VarietyStopLoss = "STOPLOSS"
	VarietyAMO      = "AMO"
)

// Order types.
const (
	OrderTypeMarket  = "MARKET"
	OrderTypeLimit   = "LIMIT"
	OrderTypeSLM     = "STOPLOSS_MARKET"
	OrderTypeSLLimit = "STOPLOSS_LIMIT"
)

// Product types as the broker API expects them.
const (
	ProductDelivery     = "DELIVERY"
	ProductIntraday     = "INTRADAY"
	ProductCarryForward = "CARRYFORWARD"
)

// Order durations.
const (
	DurationDay = "DAY"
	DurationIOC = "IOC"
)

// Order sources (intake channels).
const (
	SourceAPI     = "API"
	SourceScalper = "SCALPER"
	SourceVoice   = "VOICE"
)

// EquitySegments and DerivativeSegments partition the known exchange
// segment codes. Derivative quantities are lot counts, equity quantities
// are share counts.
var (
	EquitySegments     = []string{"NSE", "BSE"}
	DerivativeSegments = []string{"NFO", "BFO", "MCX", "CDS"}
)

// IsEquitySegment reports whether seg is an equity exchange segment.
func IsEquitySegment(seg string) bool {
	for _, s := range EquitySegments {
		if s == seg {
			return true
		}
	}
	return false
}

// IsDerivativeSegment reports whether seg is a derivative exchange segment.
func IsDerivativeSegment(seg string) bool {
	for _, s := range DerivativeSegments {
		if s == seg {
			return true
		}
	}
	return false
}

// IsKnownSegment reports whether seg is any segment this terminal trades.
func IsKnownSegment(seg string) bool {
	return IsEquitySegment(seg) || IsDerivativeSegment(seg)
}

// productTypeAliases maps the user-facing product codes to the broker API
// product types. CNC (cash & carry), NRML (normal margin) and MIS (margin
// intraday squareoff) are what the order form and voice settings use.
var productTypeAliases = map[string]string{
	"CNC":  ProductDelivery,
	"NRML": ProductCarryForward,
	"MIS":  ProductIntraday,
}

// MapProductType translates a user-facing product code to the broker API
// product type. Values already in API form pass through unchanged.
func MapProductType(pt string) string {
	if mapped, ok := productTypeAliases[pt]; ok {
		return mapped
	}
	return pt
}
