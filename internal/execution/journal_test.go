package execution

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"tradeterm/internal/model"
)

func newTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := NewJournal(filepath.Join(t.TempDir(), "orders.db"))
	if err != nil {
		t.Fatalf("NewJournal: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournalAppendAndRecent(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	entries := []model.OrderLogEntry{
		{UserID: "A123", OrderID: "ord-1", Symbol: "SBIN-EQ", Exchange: "NSE",
			OrderType: "LIMIT", Side: "BUY", ProductType: "DELIVERY", Quantity: 10,
			Price: "812.56", Status: model.LogStatusSuccess, Source: model.SourceAPI},
		{UserID: "B456", OrderID: "", Symbol: "NIFTY24AUGFUT", Exchange: "NFO",
			OrderType: "MARKET", Side: "SELL", ProductType: "CARRYFORWARD", Quantity: 50,
			Price: "0", Status: model.LogStatusFailed, Message: "Insufficient funds",
			Source: model.SourceScalper},
		{UserID: "A123", OrderID: "ord-3", Symbol: "TCS-EQ", Exchange: "NSE",
			OrderType: "STOPLOSS_LIMIT", Side: "SELL", ProductType: "INTRADAY", Quantity: 5,
			Price: "4100.00", TriggerPrice: "4105.00", Status: model.LogStatusSuccess,
			Source: model.SourceVoice},
	}
	for i := range entries {
		if err := j.Append(ctx, &entries[i]); err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
	}

	all, err := j.Recent(ctx, "", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len(all) = %d", len(all))
	}
	// Newest first.
	if all[0].Symbol != "TCS-EQ" || all[2].Symbol != "SBIN-EQ" {
		t.Errorf("order wrong: %s, %s", all[0].Symbol, all[2].Symbol)
	}
	if all[0].TriggerPrice != "4105.00" {
		t.Errorf("TriggerPrice = %q", all[0].TriggerPrice)
	}

	mine, err := j.Recent(ctx, "A123", 10)
	if err != nil {
		t.Fatalf("Recent(A123): %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("len(mine) = %d", len(mine))
	}
	for _, e := range mine {
		if e.UserID != "A123" {
			t.Errorf("UserID = %q", e.UserID)
		}
	}
}

func TestJournalSetsCreatedAt(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	e := model.OrderLogEntry{UserID: "A123", Symbol: "SBIN-EQ", Exchange: "NSE",
		OrderType: "MARKET", Side: "BUY", ProductType: "DELIVERY", Quantity: 1,
		Status: model.LogStatusSuccess, Source: model.SourceAPI}
	before := time.Now().UTC().Add(-time.Second)
	if err := j.Append(ctx, &e); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if e.CreatedAt.Before(before) {
		t.Errorf("CreatedAt not set: %v", e.CreatedAt)
	}

	got, err := j.Recent(ctx, "A123", 1)
	if err != nil || len(got) != 1 {
		t.Fatalf("Recent: %v (%d rows)", err, len(got))
	}
	if got[0].CreatedAt.IsZero() {
		t.Error("CreatedAt not round-tripped")
	}
}

func TestJournalRecentLimit(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		e := model.OrderLogEntry{UserID: "A123", Symbol: "SBIN-EQ", Exchange: "NSE",
			OrderType: "MARKET", Side: "BUY", ProductType: "DELIVERY", Quantity: int64(i + 1),
			Status: model.LogStatusSuccess, Source: model.SourceAPI}
		if err := j.Append(ctx, &e); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	got, err := j.Recent(ctx, "A123", 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d", len(got))
	}
	if got[0].Quantity != 5 || got[1].Quantity != 4 {
		t.Errorf("quantities = %d, %d", got[0].Quantity, got[1].Quantity)
	}
}
