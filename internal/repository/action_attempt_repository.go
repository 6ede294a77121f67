package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fixmate/go_booking/internal/models"
)

// ActionAttemptRepository defines the interface for action attempt persistence.
// One row is written per mutating call against the marketplace, whether the
// call succeeded, was rejected, or failed in transit.
type ActionAttemptRepository interface {
	// CreateAttempt creates a new action attempt record
	CreateAttempt(ctx context.Context, attempt *models.ActionAttempt) error

	// GetAttemptsByLeadID retrieves all attempts for a specific lead
	GetAttemptsByLeadID(ctx context.Context, leadID int64) ([]*models.ActionAttempt, error)

	// GetLatestAttempt retrieves the most recent attempt for a lead
	GetLatestAttempt(ctx context.Context, leadID int64) (*models.ActionAttempt, error)

	// CountAttempts returns the number of attempts recorded for a lead
	CountAttempts(ctx context.Context, leadID int64) (int, error)
}

// actionAttemptRepository is the concrete implementation of ActionAttemptRepository
type actionAttemptRepository struct {
	db *sql.DB
}

// NewActionAttemptRepository creates a new ActionAttemptRepository instance
func NewActionAttemptRepository(db *sql.DB) ActionAttemptRepository {
	return &actionAttemptRepository{
		db: db,
	}
}

// CreateAttempt creates a new action attempt record
func (r *actionAttemptRepository) CreateAttempt(ctx context.Context, attempt *models.ActionAttempt) error {
	query := `
		INSERT INTO action_attempts (
			lead_id, action, requested_at, response_status, message, success, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	now := time.Now()
	if attempt.RequestedAt.IsZero() {
		attempt.RequestedAt = now
	}
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = now
	}

	err := r.db.QueryRowContext(
		ctx,
		query,
		attempt.LeadID,
		attempt.Action,
		attempt.RequestedAt,
		attempt.ResponseStatus,
		attempt.Message,
		attempt.Success,
		attempt.CreatedAt,
	).Scan(&attempt.ID)

	if err != nil {
		return fmt.Errorf("failed to create action attempt: %w", err)
	}

	return nil
}

// GetAttemptsByLeadID retrieves all attempts for a specific lead
func (r *actionAttemptRepository) GetAttemptsByLeadID(ctx context.Context, leadID int64) ([]*models.ActionAttempt, error) {
	query := `
		SELECT id, lead_id, action, requested_at, response_status, message, success, created_at
		FROM action_attempts
		WHERE lead_id = $1
		ORDER BY requested_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query, leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to query action attempts: %w", err)
	}
	defer rows.Close()

	var attempts []*models.ActionAttempt
	for rows.Next() {
		attempt := &models.ActionAttempt{}
		err := rows.Scan(
			&attempt.ID,
			&attempt.LeadID,
			&attempt.Action,
			&attempt.RequestedAt,
			&attempt.ResponseStatus,
			&attempt.Message,
			&attempt.Success,
			&attempt.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan action attempt: %w", err)
		}
		attempts = append(attempts, attempt)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating action attempts: %w", err)
	}

	return attempts, nil
}

// GetLatestAttempt retrieves the most recent attempt for a lead
func (r *actionAttemptRepository) GetLatestAttempt(ctx context.Context, leadID int64) (*models.ActionAttempt, error) {
	query := `
		SELECT id, lead_id, action, requested_at, response_status, message, success, created_at
		FROM action_attempts
		WHERE lead_id = $1
		ORDER BY requested_at DESC
		LIMIT 1
	`

	attempt := &models.ActionAttempt{}
	err := r.db.QueryRowContext(ctx, query, leadID).Scan(
		&attempt.ID,
		&attempt.LeadID,
		&attempt.Action,
		&attempt.RequestedAt,
		&attempt.ResponseStatus,
		&attempt.Message,
		&attempt.Success,
		&attempt.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no action attempts found for lead: %d", leadID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest action attempt: %w", err)
	}

	return attempt, nil
}

// CountAttempts returns the number of attempts recorded for a lead
func (r *actionAttemptRepository) CountAttempts(ctx context.Context, leadID int64) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM action_attempts
		WHERE lead_id = $1
	`

	var count int
	err := r.db.QueryRowContext(ctx, query, leadID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count action attempts: %w", err)
	}

	return count, nil
}
