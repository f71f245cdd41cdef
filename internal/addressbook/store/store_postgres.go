package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"addressbook/internal/addressbook/models"
	"addressbook/pkg/platform/sentinel"
	txcontext "addressbook/pkg/platform/tx"
)

// DefaultDocumentName identifies the address book row.
const DefaultDocumentName = "default"

// Schema creates the document table. Each address book is one row.
const Schema = `
CREATE TABLE IF NOT EXISTS address_books (
	name       TEXT PRIMARY KEY,
	entries    JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// migrationLockID is the advisory lock key serializing Migrate across
// processes sharing the database.
const migrationLockID int64 = 0x61646472626f6f6b

// PostgresStore persists the document as one JSONB row, upserted on save.
type PostgresStore struct {
	db   *sql.DB
	name string
}

// NewPostgres constructs a PostgreSQL-backed gateway for the named book.
func NewPostgres(db *sql.DB, name string) *PostgresStore {
	if name == "" {
		name = DefaultDocumentName
	}
	return &PostgresStore{db: db, name: name}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// execer joins the transaction carried by ctx, if any.
func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// Migrate creates the table if needed. Concurrent callers are serialized by
// a transaction-scoped advisory lock; CREATE TABLE IF NOT EXISTS alone can
// fail with a unique violation when two servers start together.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return txcontext.Run(ctx, s.db, func(ctx context.Context) error {
		if _, err := s.execer(ctx).ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, migrationLockID); err != nil {
			return fmt.Errorf("acquire migration lock: %w", err)
		}
		if _, err := s.execer(ctx).ExecContext(ctx, Schema); err != nil {
			return fmt.Errorf("create address_books table: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) Load(ctx context.Context) ([]models.Address, error) {
	var data []byte
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT entries FROM address_books WHERE name = $1`, s.name,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load address book: %w", err)
	}
	return Decode(data)
}

func (s *PostgresStore) Save(ctx context.Context, addresses []models.Address) error {
	data, err := Encode(addresses)
	if err != nil {
		return err
	}
	_, err = s.execer(ctx).ExecContext(ctx, `
		INSERT INTO address_books (name, entries, updated_at)
		VALUES ($1, $2::jsonb, now())
		ON CONFLICT (name) DO UPDATE SET entries = EXCLUDED.entries, updated_at = EXCLUDED.updated_at`,
		s.name, string(data),
	)
	if err != nil {
		return fmt.Errorf("save address book: %w", err)
	}
	return nil
}
