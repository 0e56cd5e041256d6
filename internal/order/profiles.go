// Package order implements the correctness-critical order pipeline stages:
// normalization, semantic validation, and exchange-segment rules. Every
// stage is a pure function over the request data; nothing here touches the
// network or the catalog.
package order

import (
	"github.com/shopspring/decimal"

	"tradeterm/internal/model"
)

// Profile holds per-segment exchange constants. MaxOrderValue and
// MaxQuantity are available to callers for pre-submission value caps; the
// rule engine itself does not enforce them on every path.
type Profile struct {
	MaxOrderValue int64           // in rupees
	MaxQuantity   int64
	TickSize      decimal.Decimal // default tick when the catalog has none
	ProductTypes  []string        // product types accepted on this segment
}

var defaultTick = decimal.RequireFromString("0.05")

var profiles = map[string]Profile{
	"NSE": {
		MaxOrderValue: 10_000_000, // 1 crore
		MaxQuantity:   500_000,
		TickSize:      defaultTick,
		ProductTypes:  []string{model.ProductDelivery, model.ProductIntraday},
	},
	"BSE": {
		MaxOrderValue: 10_000_000,
		MaxQuantity:   500_000,
		TickSize:      defaultTick,
		ProductTypes:  []string{model.ProductDelivery, model.ProductIntraday},
	},
	"NFO": {
		MaxOrderValue: 100_000_000, // 10 crore
		MaxQuantity:   10_000,
		TickSize:      defaultTick,
		ProductTypes:  []string{model.ProductCarryForward, model.ProductIntraday},
	},
	"BFO": {
		MaxOrderValue: 100_000_000,
		MaxQuantity:   10_000,
		TickSize:      defaultTick,
		ProductTypes:  []string{model.ProductCarryForward, model.ProductIntraday},
	},
	"MCX": {
		MaxOrderValue: 100_000_000,
		MaxQuantity:   10_000,
		TickSize:      defaultTick,
		ProductTypes:  []string{model.ProductCarryForward, model.ProductIntraday},
	},
	"CDS": {
		MaxOrderValue: 100_000_000,
		MaxQuantity:   10_000,
		TickSize:      defaultTick,
		ProductTypes:  []string{model.ProductCarryForward, model.ProductIntraday},
	},
}

// ProfileFor returns the exchange profile for a segment code.
func ProfileFor(exchange string) (Profile, bool) {
	p, ok := profiles[exchange]
	return p, ok
}

// OrderValue computes quantity*price for value-cap checks by callers.
func OrderValue(quantity int64, price decimal.Decimal) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(quantity))
}
