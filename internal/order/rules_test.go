package order

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"tradeterm/internal/model"
)

func equityInstrument() *model.Instrument {
	return &model.Instrument{
		Token:    "3045",
		Symbol:   "SBIN-EQ",
		Exchange: "NSE",
		LotSize:  1,
		TickSize: "0.05",
	}
}

func derivativeInstrument(lotSize int) *model.Instrument {
	return &model.Instrument{
		Token:    "53001",
		Symbol:   "NIFTY24AUGFUT",
		Exchange: "NFO",
		LotSize:  lotSize,
		TickSize: "0.05",
	}
}

func TestApplyExchangeRules_EquityLimitRounding(t *testing.T) {
	req := model.OrderRequest{
		Symbol:      "SBIN-EQ",
		Token:       "3045",
		Exchange:    "NSE",
		Side:        "BUY",
		OrderType:   "LIMIT",
		ProductType: "INTRADAY",
		Variety:     "NORMAL",
		Quantity:    "10",
		Price:       "812.556",
	}

	out, err := ApplyExchangeRules(req, equityInstrument())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Price != "812.56" {
		t.Errorf("expected price rounded to 812.56, got %s", out.Price)
	}
	if out.Quantity != "10" {
		t.Errorf("expected quantity unchanged, got %s", out.Quantity)
	}
	if out.LotSize != 1 {
		t.Errorf("expected lot size 1 for equity, got %d", out.LotSize)
	}
}

func TestApplyExchangeRules_DerivativeLotMultiplication(t *testing.T) {
	req := model.OrderRequest{
		Symbol:      "NIFTY24AUGFUT",
		Token:       "53001",
		Exchange:    "NFO",
		Side:        "BUY",
		OrderType:   "MARKET",
		ProductType: "CARRYFORWARD",
		Variety:     "NORMAL",
		Quantity:    "3",
		Price:       "0",
	}

	out, err := ApplyExchangeRules(req, derivativeInstrument(50))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Quantity != "150" {
		t.Errorf("expected quantity 3*50=150, got %s", out.Quantity)
	}
}

func TestApplyExchangeRules_DerivativeTickFloor(t *testing.T) {
	cases := []struct {
		price string
		want  string
	}{
		{"101.03", "101"},
		{"101.07", "101.05"},
		{"101.05", "101.05"},
		{"250.99", "250.95"},
		{"100", "100"},
	}

	for _, tc := range cases {
		req := model.OrderRequest{
			Symbol:      "NIFTY24AUGFUT",
			Token:       "53001",
			Exchange:    "NFO",
			Side:        "SELL",
			OrderType:   "LIMIT",
			ProductType: "INTRADAY",
			Variety:     "NORMAL",
			Quantity:    "1",
			Price:       tc.price,
		}
		out, err := ApplyExchangeRules(req, derivativeInstrument(50))
		if err != nil {
			t.Fatalf("price %s: unexpected error: %v", tc.price, err)
		}
		if out.Price != tc.want {
			t.Errorf("price %s: expected floor %s, got %s", tc.price, tc.want, out.Price)
		}
	}
}

// The floor must bias down: rounded price never exceeds the raw price and
// the difference stays inside one tick.
func TestApplyExchangeRules_TickFloorNeverRoundsUp(t *testing.T) {
	tick := decimal.RequireFromString("0.05")
	prices := []string{"99.99", "100.01", "100.04", "100.06", "1234.56789", "0.07", "55.123"}

	for _, p := range prices {
		raw := decimal.RequireFromString(p)
		floored := floorToTick(raw, tick)
		if floored.GreaterThan(raw) {
			t.Errorf("price %s: floored %s is above raw", p, floored)
		}
		if raw.Sub(floored).GreaterThanOrEqual(tick) {
			t.Errorf("price %s: floored %s is more than one tick below", p, floored)
		}
	}
}

func TestApplyExchangeRules_StopLossTrigger(t *testing.T) {
	req := model.OrderRequest{
		Symbol:       "NIFTY24AUGFUT",
		Token:        "53001",
		Exchange:     "NFO",
		Side:         "BUY",
		OrderType:    "STOPLOSS_LIMIT",
		ProductType:  "INTRADAY",
		Variety:      "STOPLOSS",
		Quantity:     "2",
		Price:        "101.08",
		TriggerPrice: "100.02",
	}

	out, err := ApplyExchangeRules(req, derivativeInstrument(25))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Price != "101.05" {
		t.Errorf("expected price floored to 101.05, got %s", out.Price)
	}
	if out.TriggerPrice != "100" {
		t.Errorf("expected trigger floored to 100, got %s", out.TriggerPrice)
	}
	if out.Quantity != "50" {
		t.Errorf("expected quantity 2*25=50, got %s", out.Quantity)
	}
}

func TestApplyExchangeRules_ProductTypeGate(t *testing.T) {
	cases := []struct {
		exchange    string
		productType string
		ok          bool
	}{
		{"NSE", "DELIVERY", true},
		{"NSE", "INTRADAY", true},
		{"NSE", "CARRYFORWARD", false},
		{"NFO", "CARRYFORWARD", true},
		{"NFO", "INTRADAY", true},
		{"NFO", "DELIVERY", false},
	}

	for _, tc := range cases {
		req := model.OrderRequest{
			Symbol:      "X",
			Token:       "1",
			Exchange:    tc.exchange,
			Side:        "BUY",
			OrderType:   "MARKET",
			ProductType: tc.productType,
			Variety:     "NORMAL",
			Quantity:    "1",
			Price:       "0",
		}
		inst := equityInstrument()
		if tc.exchange == "NFO" {
			inst = derivativeInstrument(50)
		}
		_, err := ApplyExchangeRules(req, inst)
		if tc.ok && err != nil {
			t.Errorf("%s/%s: unexpected error: %v", tc.exchange, tc.productType, err)
		}
		if !tc.ok {
			if err == nil {
				t.Errorf("%s/%s: expected product type rejection", tc.exchange, tc.productType)
			} else if !strings.Contains(err.Error(), "product type") {
				t.Errorf("%s/%s: expected product type error, got: %v", tc.exchange, tc.productType, err)
			}
		}
	}
}

func TestProfileFor(t *testing.T) {
	p, ok := ProfileFor("NSE")
	if !ok {
		t.Fatal("expected NSE profile")
	}
	if p.MaxQuantity != 500_000 {
		t.Errorf("expected NSE max quantity 500000, got %d", p.MaxQuantity)
	}

	if _, ok := ProfileFor("NYSE"); ok {
		t.Error("expected no profile for NYSE")
	}
}
