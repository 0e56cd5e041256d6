package order

import (
	"fmt"
	"sort"
	"strings"

	"tradeterm/internal/model"
)

// Validate runs the semantic checks that are independent of exchange
// segment. The request is expected to have been through Normalize and to
// have its symbol token resolved.
func Validate(req model.OrderRequest) error {
	if missing := missingFields(req); len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}

	if req.Side != model.SideBuy && req.Side != model.SideSell {
		return fmt.Errorf("invalid side %q", req.Side)
	}

	if !model.IsKnownSegment(req.Exchange) {
		return fmt.Errorf("invalid exchange: %s", req.Exchange)
	}

	if _, err := parsePositiveInt(req.Quantity); err != nil {
		return fmt.Errorf("quantity: %w", err)
	}

	if err := validateOrderType(req); err != nil {
		return err
	}

	// Price positivity for any order type that carries a price.
	if req.OrderType == model.OrderTypeLimit || req.OrderType == model.OrderTypeSLLimit {
		price, err := parseDecimal(req.Price)
		if err != nil || !price.IsPositive() {
			return fmt.Errorf("price required for %s orders", req.OrderType)
		}
	}

	return nil
}

func missingFields(req model.OrderRequest) []string {
	present := map[string]string{
		"symbol":      req.Symbol,
		"token":       req.Token,
		"exchange":    req.Exchange,
		"side":        req.Side,
		"ordertype":   req.OrderType,
		"producttype": req.ProductType,
		"quantity":    req.Quantity,
	}
	var missing []string
	for field, val := range present {
		if strings.TrimSpace(val) == "" {
			missing = append(missing, field)
		}
	}
	sort.Strings(missing)
	return missing
}

func validateOrderType(req model.OrderRequest) error {
	switch req.Variety {
	case model.VarietyStopLoss:
		if req.OrderType != model.OrderTypeSLM && req.OrderType != model.OrderTypeSLLimit {
			return fmt.Errorf("invalid order type %s for %s orders", req.OrderType, model.VarietyStopLoss)
		}
		return validateStopLossDirection(req)
	case model.VarietyNormal, model.VarietyAMO:
		if req.OrderType != model.OrderTypeMarket && req.OrderType != model.OrderTypeLimit {
			return fmt.Errorf("invalid order type %s for %s orders", req.OrderType, req.Variety)
		}
		return nil
	default:
		return fmt.Errorf("unknown variety %q", req.Variety)
	}
}

// validateStopLossDirection enforces standard stop-order semantics: a
// buy-stop triggers on price rising through the trigger, so its limit
// price must sit above the trigger; a sell-stop is the mirror image.
func validateStopLossDirection(req model.OrderRequest) error {
	trigger, err := parseDecimal(req.TriggerPrice)
	if err != nil || !trigger.IsPositive() {
		return fmt.Errorf("trigger price required for stop loss orders")
	}

	if req.OrderType != model.OrderTypeSLLimit {
		return nil
	}

	price, err := parseDecimal(req.Price)
	if err != nil || !price.IsPositive() {
		return fmt.Errorf("price required for %s orders", model.OrderTypeSLLimit)
	}

	switch req.Side {
	case model.SideBuy:
		if price.LessThanOrEqual(trigger) {
			return fmt.Errorf("for BUY stop loss, price must be greater than trigger price")
		}
	case model.SideSell:
		if price.GreaterThanOrEqual(trigger) {
			return fmt.Errorf("for SELL stop loss, price must be less than trigger price")
		}
	}
	return nil
}
