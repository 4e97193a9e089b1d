// Package sqlite provides a SQLite-backed implementation of the ledger and
// users store adapters, for single-node deployments where running Postgres
// is not worth it. The schema is auto-migrated on open. SQLite runs in WAL
// mode so readers do not block the single writer.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	domainErrors "github.com/opentill/cashdesk/internal/domain/errors"
	"github.com/opentill/cashdesk/internal/domain/ledger"
	"github.com/opentill/cashdesk/internal/domain/user"
	"github.com/shopspring/decimal"
)

// Store implements both ledger.Store and user.Store backed by one SQLite
// file. Use ":memory:" for an in-memory database.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Append-only ledger. No UPDATE or DELETE statements are ever issued.
	CREATE TABLE IF NOT EXISTS ledger_entries (
		transaction_id  TEXT PRIMARY KEY,
		created_at      TEXT NOT NULL,
		customer        TEXT NOT NULL,
		entry_type      TEXT NOT NULL,
		amount          TEXT NOT NULL,
		actor_email     TEXT NOT NULL,
		note            TEXT NOT NULL DEFAULT '',
		idempotency_key TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_ledger_idempotency_key ON ledger_entries(idempotency_key);

	CREATE TABLE IF NOT EXISTS users (
		email  TEXT PRIMARY KEY,
		name   TEXT NOT NULL,
		role   TEXT NOT NULL,
		active INTEGER NOT NULL DEFAULT 1
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *Store) Append(ctx context.Context, e ledger.Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ledger_entries (transaction_id, created_at, customer, entry_type, amount, actor_email, note, idempotency_key)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.TransactionID.String(), e.Timestamp.UTC().Format(timeLayout), e.Customer,
		string(e.Type), e.Amount.String(), e.ActorEmail, e.Note, e.IdempotencyKey,
	)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

func (s *Store) ScanAll(ctx context.Context) ([]ledger.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT transaction_id, created_at, customer, entry_type, amount, actor_email, note, idempotency_key
		 FROM ledger_entries ORDER BY created_at, transaction_id`)
	if err != nil {
		return nil, fmt.Errorf("scan ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []ledger.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) ScanColumn(ctx context.Context, column string) ([]string, error) {
	var query string
	switch column {
	case ledger.ColumnIdempotencyKey:
		query = `SELECT idempotency_key FROM ledger_entries`
	default:
		return nil, fmt.Errorf("scan column: unsupported column %q", column)
	}

	rows, err := s.db.QueryContext(ctx, query)
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

const timeLayout = "2006-01-02T15:04:05.999999999Z"

func scanEntry(rows *sql.Rows) (ledger.Entry, error) {
	var (
		e                 ledger.Entry
		id, ts, entryType string
		amountStr         string
	)
	if err := rows.Scan(&id, &ts, &e.Customer, &entryType, &amountStr, &e.ActorEmail, &e.Note, &e.IdempotencyKey); err != nil {
		return e, fmt.Errorf("scan ledger row: %w", err)
	}

	txID, err := uuid.Parse(id)
	if err != nil {
		return e, domainErrors.NewStoreError("parse stored transaction id", err)
	}
	timestamp, err := time.Parse(timeLayout, ts)
	if err != nil {
		return e, domainErrors.NewStoreError("parse stored timestamp", err)
	}
	amount, err := decimal.NewFromString(amountStr)
	if err != nil {
		return e, domainErrors.NewStoreError("parse stored amount", err)
	}

	e.TransactionID = txID
	e.Timestamp = timestamp
	e.Type = ledger.EntryType(entryType)
	e.Amount = amount
	if err := e.Validate(); err != nil {
		return e, domainErrors.NewStoreError(fmt.Sprintf("invalid stored row %s", id), err)
	}
	return e, nil
}

// Users returns a user.Store view over the same database file.
func (s *Store) Users() user.Store {
	return userStore{db: s.db}
}

type userStore struct {
	db *sql.DB
}

func (u userStore) ScanAll(ctx context.Context) ([]user.User, error) {
	rows, err := u.db.QueryContext(ctx, `SELECT name, email, role, active FROM users`)
	if err != nil {
		return nil, fmt.Errorf("scan users: %w", err)
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		var (
			rec  user.User
			role string
		)
		if err := rows.Scan(&rec.Name, &rec.Email, &role, &rec.Active); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		rec.Role = user.Role(role)
		users = append(users, rec)
	}
	return users, rows.Err()
}
