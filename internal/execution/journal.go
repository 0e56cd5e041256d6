package execution

import (
	"context"
	"database/sql"
	"log"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"tradeterm/internal/model"
)

// Journal persists one OrderLogEntry per terminal pipeline outcome to
// SQLite. Append-only: rows are never updated.
type Journal struct {
	mu sync.Mutex
	db *sql.DB
}

// NewJournal opens (or creates) the order log database.
func NewJournal(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS order_logs (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id       TEXT NOT NULL,
		order_id      TEXT NOT NULL,
		symbol        TEXT NOT NULL,
		exchange      TEXT NOT NULL,
		order_type    TEXT NOT NULL,
		side          TEXT NOT NULL,
		product_type  TEXT NOT NULL,
		quantity      INTEGER NOT NULL,
		price         TEXT,
		trigger_price TEXT,
		status        TEXT NOT NULL,
		message       TEXT,
		source        TEXT NOT NULL,
		created_at    DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_order_logs_user ON order_logs(user_id);
	CREATE INDEX IF NOT EXISTS idx_order_logs_created ON order_logs(created_at);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	log.Printf("[journal] opened order log at %s", dbPath)
	return &Journal{db: db}, nil
}

// Append writes one audit entry. Callers treat errors as non-fatal: the
// order's fate is already decided by the time logging runs.
func (j *Journal) Append(ctx context.Context, e *model.OrderLogEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO order_logs
		 (user_id, order_id, symbol, exchange, order_type, side, product_type,
		  quantity, price, trigger_price, status, message, source, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.UserID, e.OrderID, e.Symbol, e.Exchange, e.OrderType, e.Side,
		e.ProductType, e.Quantity, e.Price, e.TriggerPrice, e.Status,
		e.Message, e.Source, e.CreatedAt.Format(time.RFC3339),
	)
	return err
}

// Recent returns the latest entries for a user, newest first. An empty
// userID returns entries across all users.
func (j *Journal) Recent(ctx context.Context, userID string, limit int) ([]model.OrderLogEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	query := `SELECT id, user_id, order_id, symbol, exchange, order_type, side,
	                 product_type, quantity, price, trigger_price, status, message,
	                 source, created_at
	          FROM order_logs`
	args := []any{}
	if userID != "" {
		query += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.OrderLogEntry
	for rows.Next() {
		var e model.OrderLogEntry
		var createdAt string
		var price, trigger, message sql.NullString
		if err := rows.Scan(&e.ID, &e.UserID, &e.OrderID, &e.Symbol, &e.Exchange,
			&e.OrderType, &e.Side, &e.ProductType, &e.Quantity, &price, &trigger,
			&e.Status, &message, &e.Source, &createdAt); err != nil {
			return nil, err
		}
		e.Price = price.String
		e.TriggerPrice = trigger.String
		e.Message = message.String
		if ts, err := time.Parse(time.RFC3339, createdAt); err == nil {
			e.CreatedAt = ts
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the journal database.
func (j *Journal) Close() error {
	return j.db.Close()
}
