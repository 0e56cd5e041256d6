// Package symbols resolves trading symbols against the instrument catalog.
// The catalog itself is reference data owned by the instrument-master job;
// this package only reads it. Resolution is exact-match on (symbol,
// exchange) — fuzzy matching of spoken symbols belongs to the voice parser.
package symbols

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	_ "github.com/mattn/go-sqlite3"

	"tradeterm/internal/model"
)

// Catalog is a read-only SQLite view over the instruments table that the
// master-contract ingestion job maintains.
type Catalog struct {
	db *sql.DB
}

// Open opens the catalog database for reading.
func Open(dbPath string) (*Catalog, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open catalog: %w", err)
	}
	db.SetMaxOpenConns(4)

	log.Printf("[symbols] opened catalog at %s", dbPath)
	return &Catalog{db: db}, nil
}

// Resolve returns the catalog entry matching both symbol and exchange.
// Returns model.ErrSymbolNotFound when no row matches.
func (c *Catalog) Resolve(ctx context.Context, symbol, exchange string) (*model.Instrument, error) {
	var inst model.Instrument
	var lotSize sql.NullInt64
	var tickSize sql.NullString
	var name sql.NullString

	err := c.db.QueryRowContext(ctx, `
		SELECT token, symbol, name, exch_seg, lotsize, tick_size
		FROM instruments
		WHERE symbol = ? AND exch_seg = ?
		LIMIT 1
	`, symbol, exchange).Scan(&inst.Token, &inst.Symbol, &name, &inst.Exchange, &lotSize, &tickSize)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s on %s", model.ErrSymbolNotFound, symbol, exchange)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite query instruments: %w", err)
	}

	inst.Name = name.String
	inst.LotSize = int(lotSize.Int64)
	if inst.LotSize <= 0 {
		inst.LotSize = 1
	}
	inst.TickSize = tickSize.String
	return &inst, nil
}

// Close closes the catalog database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Static is an in-memory resolver used by tests and static deployments.
type Static struct {
	entries map[string]*model.Instrument // keyed by "exchange:symbol"
}

// NewStatic builds a Static resolver from a list of instruments.
func NewStatic(instruments []model.Instrument) *Static {
	entries := make(map[string]*model.Instrument, len(instruments))
	for i := range instruments {
		inst := instruments[i]
		entries[inst.Key()] = &inst
	}
	return &Static{entries: entries}
}

// Resolve looks up (symbol, exchange) in the in-memory table.
func (s *Static) Resolve(_ context.Context, symbol, exchange string) (*model.Instrument, error) {
	if inst, ok := s.entries[exchange+":"+symbol]; ok {
		return inst, nil
	}
	return nil, fmt.Errorf("%w: %s on %s", model.ErrSymbolNotFound, symbol, exchange)
}
