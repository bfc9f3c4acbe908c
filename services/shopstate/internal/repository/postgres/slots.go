package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/jackc/pgx/v5"

	"github.com/maysa/storefront/pkg/database"
	apperrors "github.com/maysa/storefront/pkg/errors"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrations returns the schema migrations for database.RunMigrations.
func Migrations() fs.FS {
	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// DB is the pool surface the slot store needs.
type DB interface {
	database.DBTX
	Ping(ctx context.Context) error
}

// SlotStore implements repository.SlotStore on the shop_slots table.
type SlotStore struct {
	db DB
}

// NewSlotStore creates a PostgreSQL-backed slot store.
func NewSlotStore(db DB) *SlotStore {
	return &SlotStore{db: db}
}

// Load reads the slot payload.
func (s *SlotStore) Load(ctx context.Context, sessionID, slot string) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRow(ctx,
		`SELECT payload FROM shop_slots WHERE session_id = $1 AND slot = $2`,
		sessionID, slot,
	).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("slot", sessionID+"/"+slot)
		}
		return nil, fmt.Errorf("select slot: %w", err)
	}
	return payload, nil
}

// Save upserts the slot payload.
func (s *SlotStore) Save(ctx context.Context, sessionID, slot string, payload []byte) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO shop_slots (session_id, slot, payload, updated_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (session_id, slot)
		 DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`,
		sessionID, slot, payload,
	)
	if err != nil {
		return fmt.Errorf("upsert slot: %w", err)
	}
	return nil
}

// Delete removes the slot row.
func (s *SlotStore) Delete(ctx context.Context, sessionID, slot string) error {
	if _, err := s.db.Exec(ctx,
		`DELETE FROM shop_slots WHERE session_id = $1 AND slot = $2`,
		sessionID, slot,
	); err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (s *SlotStore) Ping(ctx context.Context) error {
	if err := s.db.Ping(ctx); err != nil {
		return fmt.Errorf("postgres ping: %w", err)
	}
	return nil
}
