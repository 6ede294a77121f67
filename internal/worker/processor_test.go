package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fixmate/go_booking/internal/client"
	"github.com/fixmate/go_booking/internal/models"
	"github.com/fixmate/go_booking/internal/queue"
	"github.com/fixmate/go_booking/internal/repository"
)

// fakeQueue is an in-memory queue tracking job outcomes.
type fakeQueue struct {
	mu        sync.Mutex
	jobs      []*queue.Job
	completed []int64
	retried   map[int64]time.Duration
	failed    map[int64]string
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{
		retried: make(map[int64]time.Duration),
		failed:  make(map[int64]string),
	}
}

func (q *fakeQueue) add(job *queue.Job) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
}

func (q *fakeQueue) Enqueue(ctx context.Context, jobType string, payload map[string]interface{}) error {
	q.add(&queue.Job{ID: int64(len(q.jobs) + 1), Type: jobType, Payload: payload, Attempts: 0})
	return nil
}

func (q *fakeQueue) EnqueueWithDelay(ctx context.Context, jobType string, payload map[string]interface{}, delay time.Duration) error {
	return q.Enqueue(ctx, jobType, payload)
}

func (q *fakeQueue) Dequeue(ctx context.Context) (*queue.Job, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.jobs) == 0 {
		return nil, nil
	}
	job := q.jobs[0]
	q.jobs = q.jobs[1:]
	job.Attempts++
	return job, nil
}

func (q *fakeQueue) Complete(ctx context.Context, jobID int64) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.completed = append(q.completed, jobID)
	return nil
}

func (q *fakeQueue) Retry(ctx context.Context, jobID int64, delay time.Duration) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.retried[jobID] = delay
	return nil
}

func (q *fakeQueue) Fail(ctx context.Context, jobID int64, errorMsg string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.failed[jobID] = errorMsg
	return nil
}

func (q *fakeQueue) HealthCheck(ctx context.Context) error { return nil }

func (q *fakeQueue) Close() error { return nil }

// fakeSnapshots records upserts.
type fakeSnapshots struct {
	mu        sync.Mutex
	snapshots map[int64]*models.LeadSnapshot
	err       error
}

func newFakeSnapshots() *fakeSnapshots {
	return &fakeSnapshots{snapshots: make(map[int64]*models.LeadSnapshot)}
}

func (s *fakeSnapshots) UpsertSnapshot(ctx context.Context, snapshot *models.LeadSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.snapshots[snapshot.LeadID] = snapshot
	return nil
}

func (s *fakeSnapshots) GetSnapshot(ctx context.Context, leadID int64) (*models.LeadSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.snapshots[leadID]
	if !ok {
		return nil, repository.ErrSnapshotNotFound
	}
	return snap, nil
}

func (s *fakeSnapshots) GetCountsByStatus(ctx context.Context) (map[string]int, error) {
	return nil, nil
}

func (s *fakeSnapshots) GetRecentSnapshots(ctx context.Context, limit int) ([]*models.LeadSnapshot, error) {
	return nil, nil
}

// fakeFetcher serves canned leads or errors.
type fakeFetcher struct {
	lead *models.Lead
	err  error
}

func (f *fakeFetcher) GetLead(ctx context.Context, leadID int64) (*models.Lead, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.lead, nil
}

func refreshJob(id, leadID int64, attempts int) *queue.Job {
	return &queue.Job{
		ID:       id,
		Type:     queue.JobTypeRefreshLead,
		Payload:  queue.NewRefreshPayload(leadID),
		Attempts: attempts,
	}
}

func newTestProcessor(q *fakeQueue, s *fakeSnapshots, f *fakeFetcher) *Processor {
	return NewProcessor(ProcessorConfig{
		Queue:       q,
		Snapshots:   s,
		Marketplace: f,
		MaxAttempts: 3,
		Backoff:     []time.Duration{time.Second, 2 * time.Second, 4 * time.Second},
	})
}

func TestProcessJob_RefreshSuccess(t *testing.T) {
	q := newFakeQueue()
	s := newFakeSnapshots()
	f := &fakeFetcher{lead: &models.Lead{
		ID:          42,
		OrderStatus: models.StatusRef{Slug: models.OrderStatusAccepted},
	}}

	p := newTestProcessor(q, s, f)

	if err := p.processJob(context.Background(), refreshJob(1, 42, 1)); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	snap, err := s.GetSnapshot(context.Background(), 42)
	if err != nil {
		t.Fatalf("Expected snapshot for lead 42: %v", err)
	}
	if snap.Status != models.OrderStatusAccepted {
		t.Errorf("Expected snapshot status accepted, got %s", snap.Status)
	}

	if len(q.completed) != 1 {
		t.Errorf("Expected job completed, got %v", q.completed)
	}
}

func TestProcessJob_TransportErrorRetries(t *testing.T) {
	q := newFakeQueue()
	s := newFakeSnapshots()
	f := &fakeFetcher{err: models.NewUpstreamError(0, client.FallbackMessage, true, nil)}

	p := newTestProcessor(q, s, f)

	if err := p.processJob(context.Background(), refreshJob(1, 42, 1)); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	delay, ok := q.retried[1]
	if !ok {
		t.Fatal("Expected job to be retried")
	}
	if delay != time.Second {
		t.Errorf("Expected first-attempt backoff of 1s, got %v", delay)
	}
	if len(q.failed) != 0 {
		t.Errorf("Expected no failure, got %v", q.failed)
	}
}

func TestProcessJob_TransportErrorBackoffGrows(t *testing.T) {
	q := newFakeQueue()
	s := newFakeSnapshots()
	f := &fakeFetcher{err: models.NewUpstreamError(0, client.FallbackMessage, true, nil)}

	p := newTestProcessor(q, s, f)

	if err := p.processJob(context.Background(), refreshJob(1, 42, 2)); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if q.retried[1] != 2*time.Second {
		t.Errorf("Expected second-attempt backoff of 2s, got %v", q.retried[1])
	}
}

func TestProcessJob_RejectionFailsImmediately(t *testing.T) {
	q := newFakeQueue()
	s := newFakeSnapshots()
	f := &fakeFetcher{err: models.NewUpstreamError(404, "Lead not found", false, nil)}

	p := newTestProcessor(q, s, f)

	if err := p.processJob(context.Background(), refreshJob(1, 42, 1)); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if _, ok := q.failed[1]; !ok {
		t.Error("Expected a rejected fetch to fail the job without retry")
	}
	if len(q.retried) != 0 {
		t.Errorf("Expected no retry, got %v", q.retried)
	}
}

func TestProcessJob_AttemptsExhausted(t *testing.T) {
	q := newFakeQueue()
	s := newFakeSnapshots()
	f := &fakeFetcher{err: models.NewUpstreamError(0, client.FallbackMessage, true, nil)}

	p := newTestProcessor(q, s, f)

	if err := p.processJob(context.Background(), refreshJob(1, 42, 3)); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if _, ok := q.failed[1]; !ok {
		t.Error("Expected job to fail after max attempts")
	}
}

func TestProcessJob_MalformedPayloadFails(t *testing.T) {
	q := newFakeQueue()
	s := newFakeSnapshots()
	f := &fakeFetcher{lead: &models.Lead{ID: 42}}

	p := newTestProcessor(q, s, f)

	job := &queue.Job{
		ID:       1,
		Type:     queue.JobTypeRefreshLead,
		Payload:  map[string]interface{}{"wrong_key": 42},
		Attempts: 1,
	}

	if err := p.processJob(context.Background(), job); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if _, ok := q.failed[1]; !ok {
		t.Error("Expected malformed payload to fail the job")
	}
}

func TestProcessJob_UnknownTypeFails(t *testing.T) {
	q := newFakeQueue()
	s := newFakeSnapshots()
	p := newTestProcessor(q, s, &fakeFetcher{})

	job := &queue.Job{ID: 1, Type: "send_email", Attempts: 1}

	if err := p.processJob(context.Background(), job); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if _, ok := q.failed[1]; !ok {
		t.Error("Expected unknown job type to be failed")
	}
}

func TestPollAndProcess_DrainsQueue(t *testing.T) {
	q := newFakeQueue()
	s := newFakeSnapshots()
	f := &fakeFetcher{lead: &models.Lead{
		ID:          42,
		OrderStatus: models.StatusRef{Slug: models.OrderStatusCompleted},
	}}

	q.add(refreshJob(1, 42, 0))
	q.add(refreshJob(2, 42, 0))
	q.add(refreshJob(3, 42, 0))

	p := newTestProcessor(q, s, f)

	if err := p.pollAndProcess(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(q.completed) != 3 {
		t.Errorf("Expected 3 completed jobs, got %d", len(q.completed))
	}
	if len(q.jobs) != 0 {
		t.Errorf("Expected queue drained, got %d jobs left", len(q.jobs))
	}
}
