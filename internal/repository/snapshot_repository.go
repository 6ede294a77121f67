package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fixmate/go_booking/internal/models"
)

// SnapshotRepository defines the interface for lead snapshot persistence.
// Snapshots are the gateway's read-mostly copies of upstream lead state;
// the marketplace stays authoritative.
type SnapshotRepository interface {
	// UpsertSnapshot stores the latest fetched state for a lead
	UpsertSnapshot(ctx context.Context, snapshot *models.LeadSnapshot) error

	// GetSnapshot retrieves the cached state of a lead
	GetSnapshot(ctx context.Context, leadID int64) (*models.LeadSnapshot, error)

	// GetCountsByStatus returns snapshot counts grouped by order status
	GetCountsByStatus(ctx context.Context) (map[string]int, error)

	// GetRecentSnapshots returns the most recently refreshed snapshots
	GetRecentSnapshots(ctx context.Context, limit int) ([]*models.LeadSnapshot, error)
}

// ErrSnapshotNotFound is returned when no snapshot exists for a lead.
var ErrSnapshotNotFound = fmt.Errorf("lead snapshot not found")

// snapshotRepository is the concrete implementation of SnapshotRepository
type snapshotRepository struct {
	db *sql.DB
}

// NewSnapshotRepository creates a new SnapshotRepository instance
func NewSnapshotRepository(db *sql.DB) SnapshotRepository {
	return &snapshotRepository{
		db: db,
	}
}

// UpsertSnapshot stores the latest fetched state for a lead
func (r *snapshotRepository) UpsertSnapshot(ctx context.Context, snapshot *models.LeadSnapshot) error {
	query := `
		INSERT INTO lead_snapshots (lead_id, status, payload, fetched_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (lead_id) DO UPDATE SET
			status = EXCLUDED.status,
			payload = EXCLUDED.payload,
			fetched_at = EXCLUDED.fetched_at,
			updated_at = EXCLUDED.updated_at
	`

	now := time.Now()
	if snapshot.FetchedAt.IsZero() {
		snapshot.FetchedAt = now
	}
	if snapshot.CreatedAt.IsZero() {
		snapshot.CreatedAt = now
	}
	snapshot.UpdatedAt = now

	_, err := r.db.ExecContext(
		ctx,
		query,
		snapshot.LeadID,
		snapshot.Status,
		snapshot.Payload,
		snapshot.FetchedAt,
		snapshot.CreatedAt,
		snapshot.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to upsert lead snapshot: %w", err)
	}

	return nil
}

// GetSnapshot retrieves the cached state of a lead
func (r *snapshotRepository) GetSnapshot(ctx context.Context, leadID int64) (*models.LeadSnapshot, error) {
	query := `
		SELECT lead_id, status, payload, fetched_at, created_at, updated_at
		FROM lead_snapshots
		WHERE lead_id = $1
	`

	snapshot := &models.LeadSnapshot{}
	err := r.db.QueryRowContext(ctx, query, leadID).Scan(
		&snapshot.LeadID,
		&snapshot.Status,
		&snapshot.Payload,
		&snapshot.FetchedAt,
		&snapshot.CreatedAt,
		&snapshot.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %d", ErrSnapshotNotFound, leadID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lead snapshot: %w", err)
	}

	return snapshot, nil
}

// GetCountsByStatus returns snapshot counts grouped by order status
func (r *snapshotRepository) GetCountsByStatus(ctx context.Context) (map[string]int, error) {
	query := `
		SELECT status, COUNT(*) as count
		FROM lead_snapshots
		GROUP BY status
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		counts[status] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return counts, nil
}

// GetRecentSnapshots returns the most recently refreshed snapshots
func (r *snapshotRepository) GetRecentSnapshots(ctx context.Context, limit int) ([]*models.LeadSnapshot, error) {
	query := `
		SELECT lead_id, status, payload, fetched_at, created_at, updated_at
		FROM lead_snapshots
		ORDER BY fetched_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := make([]*models.LeadSnapshot, 0, limit)
	for rows.Next() {
		snapshot := &models.LeadSnapshot{}
		err := rows.Scan(
			&snapshot.LeadID,
			&snapshot.Status,
			&snapshot.Payload,
			&snapshot.FetchedAt,
			&snapshot.CreatedAt,
			&snapshot.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, snapshot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return snapshots, nil
}
