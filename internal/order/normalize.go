package order

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"tradeterm/internal/model"
)

// Normalize makes a raw order request self-consistent before validation:
// defaults are filled, numeric fields are coerced to canonical decimal
// strings, and the order type is resolved against the variety. It fails
// fast on structurally impossible combinations and never touches the
// network or the catalog.
func Normalize(req model.OrderRequest) (model.OrderRequest, error) {
	out := req

	out.Symbol = strings.TrimSpace(out.Symbol)
	out.Exchange = strings.ToUpper(strings.TrimSpace(out.Exchange))
	out.Side = strings.ToUpper(strings.TrimSpace(out.Side))
	out.OrderType = strings.ToUpper(strings.TrimSpace(out.OrderType))
	out.Variety = strings.ToUpper(strings.TrimSpace(out.Variety))
	out.ProductType = model.MapProductType(strings.ToUpper(strings.TrimSpace(out.ProductType)))

	if out.Variety == "" {
		out.Variety = model.VarietyNormal
	}
	if out.Duration == "" {
		out.Duration = model.DurationDay
	}
	if out.DisclosedQuantity == "" {
		out.DisclosedQuantity = "0"
	}

	qty, err := parsePositiveInt(out.Quantity)
	if err != nil {
		return out, fmt.Errorf("quantity: %w", err)
	}
	out.Quantity = fmt.Sprintf("%d", qty)

	switch out.Variety {
	case model.VarietyStopLoss:
		if err := normalizeStopLoss(&out); err != nil {
			return out, err
		}
	case model.VarietyNormal, model.VarietyAMO:
		// AMO follows regular order-type rules; only the variety differs
		// on the wire.
		if err := normalizeRegular(&out); err != nil {
			return out, err
		}
	default:
		return out, fmt.Errorf("unknown variety %q", out.Variety)
	}

	return out, nil
}

func normalizeStopLoss(req *model.OrderRequest) error {
	switch req.OrderType {
	case model.OrderTypeMarket, model.OrderTypeSLM:
		req.OrderType = model.OrderTypeSLM
		req.Price = "0"
	case model.OrderTypeLimit, model.OrderTypeSLLimit:
		req.OrderType = model.OrderTypeSLLimit
		price, err := parseDecimal(req.Price)
		if err != nil || !price.IsPositive() {
			return fmt.Errorf("price required for %s orders", model.OrderTypeSLLimit)
		}
		req.Price = price.String()
	default:
		return fmt.Errorf("order type %q is not valid for %s variety", req.OrderType, model.VarietyStopLoss)
	}

	trigger, err := parseDecimal(req.TriggerPrice)
	if err != nil || !trigger.IsPositive() {
		return fmt.Errorf("trigger price required for stop loss orders")
	}
	req.TriggerPrice = trigger.String()
	return nil
}

func normalizeRegular(req *model.OrderRequest) error {
	switch req.OrderType {
	case model.OrderTypeMarket:
		req.Price = "0"
		req.TriggerPrice = "0"
	case model.OrderTypeLimit:
		price, err := parseDecimal(req.Price)
		if err != nil || !price.IsPositive() {
			return fmt.Errorf("price required for %s orders", model.OrderTypeLimit)
		}
		req.Price = price.String()
		req.TriggerPrice = "0"
	default:
		return fmt.Errorf("order type %q is not valid for %s variety", req.OrderType, req.Variety)
	}
	return nil
}

func parsePositiveInt(s string) (int64, error) {
	d, err := parseDecimal(s)
	if err != nil {
		return 0, fmt.Errorf("must be a valid number")
	}
	if !d.IsInteger() {
		return 0, fmt.Errorf("must be a whole number")
	}
	n := d.IntPart()
	if n <= 0 {
		return 0, fmt.Errorf("must be greater than 0")
	}
	return n, nil
}

func parseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("missing value")
	}
	return decimal.NewFromString(s)
}
