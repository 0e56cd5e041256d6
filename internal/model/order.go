package model

import "time"

// OrderIntent is what the voice command parser extracts from a transcript.
// It carries just enough to build an OrderRequest from the user's defaults.
type OrderIntent struct {
	Side     string `json:"side"` // BUY, SELL
	Quantity int    `json:"quantity"`
	Symbol   string `json:"symbol"` // canonical trading symbol
}

// OrderRequest is the untyped intake shape shared by all three channels.
// Numeric fields arrive as strings because the broker wire format is
// string-typed; the normalizer coerces and defaults them.
type OrderRequest struct {
	Symbol            string `json:"symbol"`
	Token             string `json:"token,omitempty"` // filled by symbol resolution when absent
	Exchange          string `json:"exchange"`        // segment code: NSE, BSE, NFO, ...
	Side              string `json:"side"`            // BUY, SELL
	OrderType         string `json:"ordertype"`       // MARKET, LIMIT (pre-normalization)
	ProductType       string `json:"producttype"`     // CNC/NRML/MIS or API form
	Variety           string `json:"variety"`         // NORMAL, STOPLOSS, AMO
	Quantity          string `json:"quantity"`
	Price             string `json:"price,omitempty"`
	TriggerPrice      string `json:"triggerprice,omitempty"`
	DisclosedQuantity string `json:"disclosedquantity,omitempty"`
	Duration          string `json:"duration,omitempty"`
}

// NormalizedOrder is an OrderRequest after normalization, validation and
// exchange rules: all numeric fields are validated decimal strings, the
// order type is variety-consistent, and defaults are applied. It lives for
// one request only and is never persisted as-is.
type NormalizedOrder struct {
	Symbol            string
	Token             string
	Exchange          string
	Side              string
	OrderType         string // MARKET, LIMIT, STOPLOSS_MARKET, STOPLOSS_LIMIT
	ProductType       string // API form
	Variety           string
	Quantity          string
	Price             string
	TriggerPrice      string
	DisclosedQuantity string
	Duration          string
	LotSize           int    // from the symbol catalog, 1 for equity
	TickSize          string // from the symbol catalog, decimal string
}

// Credentials is the per-user broker session material, read once per
// request from the auth collaborator and never cached by the pipeline.
type Credentials struct {
	AccessToken string
	APIKey      string
}

// BrokerResponse is the brokerage's acknowledgement of a placement attempt.
// Immutable once received.
type BrokerResponse struct {
	Status    bool   `json:"status"`
	OrderID   string `json:"order_id"`
	Message   string `json:"message"`
	ErrorCode string `json:"error_code,omitempty"`
}

// OrderLogEntry is the append-only audit record written once per terminal
// pipeline outcome, success or failure.
type OrderLogEntry struct {
	ID           int64     `json:"id,omitempty"`
	UserID       string    `json:"user_id"`
	OrderID      string    `json:"order_id"`
	Symbol       string    `json:"symbol"`
	Exchange     string    `json:"exchange"`
	OrderType    string    `json:"order_type"`
	Side         string    `json:"side"`
	ProductType  string    `json:"product_type"`
	Quantity     int64     `json:"quantity"`
	Price        string    `json:"price,omitempty"`
	TriggerPrice string    `json:"trigger_price,omitempty"`
	Status       string    `json:"status"` // SUCCESS, FAILED
	Message      string    `json:"message"`
	Source       string    `json:"source"` // API, SCALPER, VOICE
	CreatedAt    time.Time `json:"created_at"`
}

// Audit statuses.
const (
	LogStatusSuccess = "SUCCESS"
	LogStatusFailed  = "FAILED"
)

// PlaceResult is the pipeline's answer to the caller.
type PlaceResult struct {
	Status    bool      `json:"status"`
	OrderID   string    `json:"order_id,omitempty"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}
