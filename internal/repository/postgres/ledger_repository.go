package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	domainErrors "github.com/opentill/cashdesk/internal/domain/errors"
	"github.com/opentill/cashdesk/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// LedgerRepository implements ledger.Store using PostgreSQL. The table is
// append-only: no UPDATE or DELETE is ever issued against ledger_entries.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// Append inserts one entry.
func (r *LedgerRepository) Append(ctx context.Context, e ledger.Entry) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO ledger_entries (transaction_id, created_at, customer, entry_type, amount, actor_email, note, idempotency_key)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.TransactionID, e.Timestamp, e.Customer, string(e.Type), e.Amount.String(), e.ActorEmail, e.Note, e.IdempotencyKey,
	)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// ScanAll returns every entry, oldest first. Rows that do not parse into a
// valid entry are a store-level error, never coerced.
func (r *LedgerRepository) ScanAll(ctx context.Context) ([]ledger.Entry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT transaction_id, created_at, customer, entry_type, amount, actor_email, note, idempotency_key
		 FROM ledger_entries ORDER BY created_at, transaction_id`)
	if err != nil {
		return nil, fmt.Errorf("scan ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []ledger.Entry
	for rows.Next() {
		var (
			e         ledger.Entry
			entryType string
			amountStr string
		)
		if err := rows.Scan(&e.TransactionID, &e.Timestamp, &e.Customer, &entryType, &amountStr, &e.ActorEmail, &e.Note, &e.IdempotencyKey); err != nil {
			return nil, fmt.Errorf("scan ledger row: %w", err)
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, domainErrors.NewStoreError("parse stored amount", err)
		}
		e.Type = ledger.EntryType(entryType)
		e.Amount = amount
		if err := e.Validate(); err != nil {
			return nil, domainErrors.NewStoreError(
				fmt.Sprintf("invalid stored row %s", e.TransactionID), err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ScanColumn returns every value of one indexed column. Only columns the
// core is allowed to scan are accepted; anything else is a programming error.
func (r *LedgerRepository) ScanColumn(ctx context.Context, column string) ([]string, error) {
	var query string
	switch column {
	case ledger.ColumnIdempotencyKey:
		query = `SELECT idempotency_key FROM ledger_entries`
	default:
		return nil, fmt.Errorf("scan column: unsupported column %q", column)
	}

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("scan column %s: %w", column, err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan column value: %w", err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
