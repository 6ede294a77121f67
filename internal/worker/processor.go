package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fixmate/go_booking/internal/logger"
	"github.com/fixmate/go_booking/internal/models"
	"github.com/fixmate/go_booking/internal/queue"
	"github.com/fixmate/go_booking/internal/repository"
)

// LeadFetcher fetches current lead state from the marketplace.
type LeadFetcher interface {
	GetLead(ctx context.Context, leadID int64) (*models.Lead, error)
}

// Processor drains the refresh queue: after every successful mutating
// action the API enqueues a refresh job, and the processor re-fetches the
// lead from the marketplace and updates the local snapshot. Refreshes are
// idempotent reads; transport failures are retried with backoff. Mutating
// actions themselves are never retried here or anywhere else.
type Processor struct {
	queue        queue.Queue
	snapshots    repository.SnapshotRepository
	marketplace  LeadFetcher
	pollInterval time.Duration
	maxAttempts  int
	backoff      []time.Duration
	shutdownChan chan struct{}
}

// ProcessorConfig holds configuration for the refresh processor
type ProcessorConfig struct {
	Queue        queue.Queue
	Snapshots    repository.SnapshotRepository
	Marketplace  LeadFetcher
	PollInterval time.Duration
	MaxAttempts  int
	Backoff      []time.Duration
}

// NewProcessor creates a new refresh processor
func NewProcessor(config ProcessorConfig) *Processor {
	if config.PollInterval == 0 {
		config.PollInterval = 5 * time.Second
	}

	if config.MaxAttempts == 0 {
		config.MaxAttempts = 5
	}

	if len(config.Backoff) == 0 {
		config.Backoff = []time.Duration{
			30 * time.Second,
			60 * time.Second,
			120 * time.Second,
			240 * time.Second,
			480 * time.Second,
		}
	}

	return &Processor{
		queue:        config.Queue,
		snapshots:    config.Snapshots,
		marketplace:  config.Marketplace,
		pollInterval: config.PollInterval,
		maxAttempts:  config.MaxAttempts,
		backoff:      config.Backoff,
		shutdownChan: make(chan struct{}),
	}
}

// Start begins the polling loop with graceful shutdown
func (p *Processor) Start(ctx context.Context) error {
	logger.Info(ctx, "Starting refresh processor", "poll_interval", p.pollInterval)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Context cancelled, shutting down gracefully")
			return ctx.Err()

		case <-sigChan:
			logger.Info(ctx, "Received shutdown signal, shutting down gracefully")
			return nil

		case <-p.shutdownChan:
			logger.Info(ctx, "Shutdown requested, shutting down gracefully")
			return nil

		case <-ticker.C:
			if err := p.pollAndProcess(ctx); err != nil {
				logger.LogError(ctx, "Error polling and processing jobs", err)
				// keep polling
			}
		}
	}
}

// Shutdown requests a graceful stop of the polling loop
func (p *Processor) Shutdown() {
	close(p.shutdownChan)
}

// pollAndProcess drains all currently available jobs
func (p *Processor) pollAndProcess(ctx context.Context) error {
	for {
		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			return fmt.Errorf("failed to dequeue job: %w", err)
		}
		if job == nil {
			return nil
		}

		if err := p.processJob(ctx, job); err != nil {
			logger.LogError(ctx, "Failed to process job", err, "job_id", job.ID, "job_type", job.Type)
		}
	}
}

// processJob handles a single dequeued job
func (p *Processor) processJob(ctx context.Context, job *queue.Job) error {
	switch job.Type {
	case queue.JobTypeRefreshLead:
		return p.refreshLead(ctx, job)
	default:
		logger.Warn(ctx, "Unknown job type, failing job", "job_id", job.ID, "job_type", job.Type)
		return p.queue.Fail(ctx, job.ID, fmt.Sprintf("unknown job type: %s", job.Type))
	}
}

// refreshLead re-fetches a lead and upserts the snapshot
func (p *Processor) refreshLead(ctx context.Context, job *queue.Job) error {
	leadID, ok := queue.GetLeadID(job.Payload)
	if !ok {
		return p.queue.Fail(ctx, job.ID, queue.ErrInvalidPayload.Error())
	}

	ctx = context.WithValue(ctx, logger.LeadIDKey, leadID)
	logger.Info(ctx, "Refreshing lead snapshot", "attempt", job.Attempts)

	lead, err := p.marketplace.GetLead(ctx, leadID)
	if err != nil {
		return p.handleRefreshError(ctx, job, err)
	}

	payload, err := leadPayload(lead)
	if err != nil {
		return p.queue.Fail(ctx, job.ID, err.Error())
	}

	snapshot := &models.LeadSnapshot{
		LeadID:    lead.ID,
		Status:    lead.OrderStatus.Slug,
		Payload:   payload,
		FetchedAt: time.Now(),
	}

	if err := p.snapshots.UpsertSnapshot(ctx, snapshot); err != nil {
		logger.LogError(ctx, "Failed to upsert snapshot", err)
		return p.retryOrFail(ctx, job, err.Error())
	}

	logger.Info(ctx, "Lead snapshot refreshed", "status", snapshot.Status)
	return p.queue.Complete(ctx, job.ID)
}

// handleRefreshError retries transport failures and fails everything else
func (p *Processor) handleRefreshError(ctx context.Context, job *queue.Job, err error) error {
	var upstreamErr *models.UpstreamError
	if errors.As(err, &upstreamErr) && upstreamErr.IsTransport() {
		logger.Warn(ctx, "Transport error refreshing lead, will retry",
			"job_id", job.ID, "attempt", job.Attempts, "error", err.Error())
		return p.retryOrFail(ctx, job, err.Error())
	}

	// upstream rejected the fetch; retrying won't change the answer
	logger.LogError(ctx, "Upstream rejected lead refresh", err, "job_id", job.ID)
	return p.queue.Fail(ctx, job.ID, err.Error())
}

// retryOrFail reschedules the job with backoff until attempts run out
func (p *Processor) retryOrFail(ctx context.Context, job *queue.Job, reason string) error {
	if job.Attempts >= p.maxAttempts {
		logger.Warn(ctx, "Refresh attempts exhausted, failing job", "job_id", job.ID, "attempts", job.Attempts)
		return p.queue.Fail(ctx, job.ID, reason)
	}

	delay := p.backoff[len(p.backoff)-1]
	if job.Attempts-1 < len(p.backoff) && job.Attempts >= 1 {
		delay = p.backoff[job.Attempts-1]
	}

	return p.queue.Retry(ctx, job.ID, delay)
}

// leadPayload serializes a lead into the snapshot payload shape
func leadPayload(lead *models.Lead) (models.JSONB, error) {
	raw, err := json.Marshal(lead)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal lead: %w", err)
	}

	var payload models.JSONB
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to build snapshot payload: %w", err)
	}

	return payload, nil
}
