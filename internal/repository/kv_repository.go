package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Well-known keys for per-user blobs. The store holds flat JSON keyed by
// these fixed constants; there is no schema migration logic for the blobs.
const (
	KVKeyCart         = "cart"
	KVKeyBookingDraft = "booking_draft"
	KVKeySelectedCity = "selected_city"
	KVKeyProfile      = "profile"
)

// KnownKVKey reports whether key is one of the fixed store keys.
func KnownKVKey(key string) bool {
	switch key {
	case KVKeyCart, KVKeyBookingDraft, KVKeySelectedCity, KVKeyProfile:
		return true
	default:
		return false
	}
}

// KVRepository is a per-user key-value store for client-side state: the
// shopping cart snapshot, the booking draft and the selected city. Values
// are opaque JSON blobs; the single writer is the request path.
type KVRepository interface {
	// Get returns the blob for (userID, key), or sql.ErrNoRows-wrapped error when absent
	Get(ctx context.Context, userID int64, key string) ([]byte, error)

	// Put stores the blob for (userID, key), replacing any previous value
	Put(ctx context.Context, userID int64, key string, value []byte) error

	// Delete removes the blob for (userID, key)
	Delete(ctx context.Context, userID int64, key string) error
}

// ErrKVNotFound is returned when no blob exists for the requested key.
var ErrKVNotFound = fmt.Errorf("kv entry not found")

// kvRepository is the concrete implementation of KVRepository
type kvRepository struct {
	db *sql.DB
}

// NewKVRepository creates a new KVRepository instance
func NewKVRepository(db *sql.DB) KVRepository {
	return &kvRepository{
		db: db,
	}
}

// Get returns the blob for (userID, key)
func (r *kvRepository) Get(ctx context.Context, userID int64, key string) ([]byte, error) {
	query := `
		SELECT value
		FROM user_kv
		WHERE user_id = $1 AND key = $2
	`

	var value []byte
	err := r.db.QueryRowContext(ctx, query, userID, key).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, ErrKVNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get kv entry: %w", err)
	}

	return value, nil
}

// Put stores the blob for (userID, key), replacing any previous value
func (r *kvRepository) Put(ctx context.Context, userID int64, key string, value []byte) error {
	query := `
		INSERT INTO user_kv (user_id, key, value, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query, userID, key, value, time.Now())
	if err != nil {
		return fmt.Errorf("failed to put kv entry: %w", err)
	}

	return nil
}

// Delete removes the blob for (userID, key)
func (r *kvRepository) Delete(ctx context.Context, userID int64, key string) error {
	query := `
		DELETE FROM user_kv
		WHERE user_id = $1 AND key = $2
	`

	_, err := r.db.ExecContext(ctx, query, userID, key)
	if err != nil {
		return fmt.Errorf("failed to delete kv entry: %w", err)
	}

	return nil
}
