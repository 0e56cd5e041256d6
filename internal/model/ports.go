package model

import "context"

// ── Pipeline Port Interfaces ──
// These interfaces decouple the order pipeline from its external
// collaborators (auth store, instrument master, broker, market feed,
// audit sink). Each implementation satisfies exactly one of these.

// CredentialProvider looks up broker session material for a user.
// A nil result with nil error means no live session exists.
type CredentialProvider interface {
	// Credentials returns the access token and API key for clientID,
	// or nil when no session is stored.
	Credentials(ctx context.Context, clientID string) (*Credentials, error)
}

// SymbolResolver maps a canonical trading symbol and segment to a catalog
// entry. Exact match only; fuzzy matching belongs to the voice parser.
type SymbolResolver interface {
	// Resolve returns the catalog entry for (symbol, exchange).
	// Returns ErrSymbolNotFound when no row matches both.
	Resolve(ctx context.Context, symbol, exchange string) (*Instrument, error)
}

// PriceFeed fetches the last traded price for an instrument.
type PriceFeed interface {
	// LTP returns the last traded price as a decimal string, or "" when
	// the price is unavailable.
	LTP(ctx context.Context, token, exchange string) (string, error)
}

// BrokerGateway submits orders to the brokerage. One attempt per call,
// never retried: a possibly-received order must not be re-sent.
type BrokerGateway interface {
	PlaceOrder(ctx context.Context, creds Credentials, order *NormalizedOrder) (*BrokerResponse, error)
}

// OrderJournal is the append-only audit sink. Append errors are non-fatal
// to the pipeline caller.
type OrderJournal interface {
	Append(ctx context.Context, entry *OrderLogEntry) error
}
