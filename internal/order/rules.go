package order

import (
	"fmt"

	"github.com/shopspring/decimal"

	"tradeterm/internal/model"
)

// ApplyExchangeRules applies segment-specific quantity and price rules to a
// validated request and produces the final NormalizedOrder that goes to the
// broker. Pure function of the request and its catalog entry.
//
// Equity segments trade in single shares: quantity passes through as-is and
// prices are rounded to 2 decimals. Derivative segments interpret the
// caller's quantity as a lot count (actual quantity = lots * lot size) and
// floor prices to the nearest tick below the raw value — never up, so a
// rounded price cannot cross the user's intended limit.
func ApplyExchangeRules(req model.OrderRequest, inst *model.Instrument) (*model.NormalizedOrder, error) {
	if !model.IsKnownSegment(req.Exchange) {
		return nil, fmt.Errorf("invalid exchange: %s", req.Exchange)
	}

	out := &model.NormalizedOrder{
		Symbol:            req.Symbol,
		Token:             req.Token,
		Exchange:          req.Exchange,
		Side:              req.Side,
		OrderType:         req.OrderType,
		ProductType:       req.ProductType,
		Variety:           req.Variety,
		Quantity:          req.Quantity,
		Price:             req.Price,
		TriggerPrice:      req.TriggerPrice,
		DisclosedQuantity: req.DisclosedQuantity,
		Duration:          req.Duration,
		LotSize:           1,
	}

	tick := tickFor(req.Exchange, inst)
	out.TickSize = tick.String()

	var err error
	if model.IsEquitySegment(req.Exchange) {
		err = applyEquityRules(out)
	} else {
		err = applyDerivativeRules(out, inst, tick)
	}
	if err != nil {
		return nil, err
	}

	if err := checkProductType(out); err != nil {
		return nil, err
	}
	return out, nil
}

func applyEquityRules(o *model.NormalizedOrder) error {
	qty, err := parsePositiveInt(o.Quantity)
	if err != nil {
		return fmt.Errorf("quantity: %w", err)
	}
	o.Quantity = fmt.Sprintf("%d", qty)

	if o.OrderType == model.OrderTypeLimit || o.OrderType == model.OrderTypeSLLimit {
		price, err := parseDecimal(o.Price)
		if err != nil {
			return fmt.Errorf("invalid price: %w", err)
		}
		o.Price = price.Round(2).String()
	}

	if o.Variety == model.VarietyStopLoss {
		trigger, err := parseDecimal(o.TriggerPrice)
		if err != nil {
			return fmt.Errorf("invalid trigger price: %w", err)
		}
		o.TriggerPrice = trigger.Round(2).String()
	}
	return nil
}

func applyDerivativeRules(o *model.NormalizedOrder, inst *model.Instrument, tick decimal.Decimal) error {
	lotSize := 1
	if inst != nil && inst.LotSize > 0 {
		lotSize = inst.LotSize
	}
	o.LotSize = lotSize

	lots, err := parsePositiveInt(o.Quantity)
	if err != nil {
		return fmt.Errorf("number of lots: %w", err)
	}
	o.Quantity = fmt.Sprintf("%d", lots*int64(lotSize))

	if o.OrderType == model.OrderTypeLimit || o.OrderType == model.OrderTypeSLLimit {
		price, err := parseDecimal(o.Price)
		if err != nil {
			return fmt.Errorf("invalid price: %w", err)
		}
		o.Price = floorToTick(price, tick).String()
	}

	if o.Variety == model.VarietyStopLoss {
		trigger, err := parseDecimal(o.TriggerPrice)
		if err != nil {
			return fmt.Errorf("invalid trigger price: %w", err)
		}
		o.TriggerPrice = floorToTick(trigger, tick).String()
	}
	return nil
}

// floorToTick snaps a price to the nearest tick at or below it, then
// rounds to 2 decimals. The bias is always downward.
func floorToTick(price, tick decimal.Decimal) decimal.Decimal {
	if tick.IsZero() {
		return price.Round(2)
	}
	rem := price.Mod(tick)
	if rem.IsZero() {
		return price.Round(2)
	}
	return price.Sub(rem).Round(2)
}

func checkProductType(o *model.NormalizedOrder) error {
	profile, ok := ProfileFor(o.Exchange)
	if !ok {
		return fmt.Errorf("invalid exchange: %s", o.Exchange)
	}
	for _, pt := range profile.ProductTypes {
		if o.ProductType == pt {
			return nil
		}
	}
	segment := "derivative"
	if model.IsEquitySegment(o.Exchange) {
		segment = "equity"
	}
	return fmt.Errorf("invalid product type %s for %s segment", o.ProductType, segment)
}

func tickFor(exchange string, inst *model.Instrument) decimal.Decimal {
	if inst != nil && inst.TickSize != "" {
		if t, err := decimal.NewFromString(inst.TickSize); err == nil && t.IsPositive() {
			return t
		}
	}
	if p, ok := ProfileFor(exchange); ok {
		return p.TickSize
	}
	return defaultTick
}
