package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/fixmate/go_booking/internal/client"
	"github.com/fixmate/go_booking/internal/models"
	"github.com/fixmate/go_booking/internal/queue"
	"github.com/fixmate/go_booking/internal/repository"
)

// mockAPI is a configurable MarketplaceAPI stub. Each call counter tracks
// how many times the upstream would have been hit.
type mockAPI struct {
	mu sync.Mutex

	lead     *models.Lead
	leadErr  error
	order    *models.Order
	orderErr error
	earnings []models.EarningEntry

	outcome    client.Outcome
	statusCode int
	actionErr  error

	getLeadCalls  int
	acceptCalls   int
	cancelCalls   int
	completeCalls int

	// blockAction holds mutating calls open until released, for testing
	// the busy-flag behavior
	blockAction chan struct{}
}

func (m *mockAPI) GetLead(ctx context.Context, leadID int64) (*models.Lead, error) {
	m.mu.Lock()
	m.getLeadCalls++
	m.mu.Unlock()
	return m.lead, m.leadErr
}

func (m *mockAPI) action(counter *int) (client.Outcome, int, error) {
	m.mu.Lock()
	*counter++
	block := m.blockAction
	m.mu.Unlock()

	if block != nil {
		<-block
	}

	code := m.statusCode
	if code == 0 {
		code = 200
	}
	return m.outcome, code, m.actionErr
}

func (m *mockAPI) AcceptLead(ctx context.Context, leadID int64) (client.Outcome, int, error) {
	return m.action(&m.acceptCalls)
}

func (m *mockAPI) CancelLead(ctx context.Context, leadID int64) (client.Outcome, int, error) {
	return m.action(&m.cancelCalls)
}

func (m *mockAPI) CompleteLead(ctx context.Context, leadID int64, req models.CompleteLeadRequest) (client.Outcome, int, error) {
	return m.action(&m.completeCalls)
}

func (m *mockAPI) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	return m.order, m.orderErr
}

func (m *mockAPI) CancelOrder(ctx context.Context, orderID int64) (client.Outcome, int, error) {
	var n int
	return m.action(&n)
}

func (m *mockAPI) RescheduleOrder(ctx context.Context, orderID int64, req models.RescheduleRequest) (client.Outcome, int, error) {
	var n int
	return m.action(&n)
}

func (m *mockAPI) GetEarnings(ctx context.Context, partnerID int64) ([]models.EarningEntry, error) {
	return m.earnings, nil
}

// mockQueue records enqueued jobs.
type mockQueue struct {
	mu       sync.Mutex
	enqueued []string
	err      error
}

func (q *mockQueue) Enqueue(ctx context.Context, jobType string, payload map[string]interface{}) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.enqueued = append(q.enqueued, jobType)
	return nil
}

func (q *mockQueue) EnqueueWithDelay(ctx context.Context, jobType string, payload map[string]interface{}, delay time.Duration) error {
	return q.Enqueue(ctx, jobType, payload)
}

func (q *mockQueue) Dequeue(ctx context.Context) (*queue.Job, error) { return nil, nil }

func (q *mockQueue) Complete(ctx context.Context, jobID int64) error { return nil }

func (q *mockQueue) Retry(ctx context.Context, jobID int64, delay time.Duration) error { return nil }

func (q *mockQueue) Fail(ctx context.Context, jobID int64, errorMsg string) error { return nil }

func (q *mockQueue) HealthCheck(ctx context.Context) error { return nil }

func (q *mockQueue) Close() error { return nil }

func (q *mockQueue) enqueuedCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.enqueued)
}

// mockAttemptRepo records created attempts in memory.
type mockAttemptRepo struct {
	mu       sync.Mutex
	attempts []*models.ActionAttempt
}

func (r *mockAttemptRepo) CreateAttempt(ctx context.Context, attempt *models.ActionAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	attempt.ID = int64(len(r.attempts) + 1)
	r.attempts = append(r.attempts, attempt)
	return nil
}

func (r *mockAttemptRepo) GetAttemptsByLeadID(ctx context.Context, leadID int64) ([]*models.ActionAttempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.ActionAttempt
	for _, a := range r.attempts {
		if a.LeadID == leadID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *mockAttemptRepo) GetLatestAttempt(ctx context.Context, leadID int64) (*models.ActionAttempt, error) {
	attempts, _ := r.GetAttemptsByLeadID(ctx, leadID)
	if len(attempts) == 0 {
		return nil, nil
	}
	return attempts[len(attempts)-1], nil
}

func (r *mockAttemptRepo) CountAttempts(ctx context.Context, leadID int64) (int, error) {
	attempts, _ := r.GetAttemptsByLeadID(ctx, leadID)
	return len(attempts), nil
}

func (r *mockAttemptRepo) latest() *models.ActionAttempt {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.attempts) == 0 {
		return nil
	}
	return r.attempts[len(r.attempts)-1]
}

// mockSnapshotRepo stores snapshots in memory.
type mockSnapshotRepo struct {
	mu        sync.Mutex
	snapshots map[int64]*models.LeadSnapshot
}

func newMockSnapshotRepo() *mockSnapshotRepo {
	return &mockSnapshotRepo{snapshots: make(map[int64]*models.LeadSnapshot)}
}

func (r *mockSnapshotRepo) UpsertSnapshot(ctx context.Context, snapshot *models.LeadSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots[snapshot.LeadID] = snapshot
	return nil
}

func (r *mockSnapshotRepo) GetSnapshot(ctx context.Context, leadID int64) (*models.LeadSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.snapshots[leadID]
	if !ok {
		return nil, repository.ErrSnapshotNotFound
	}
	return s, nil
}

func (r *mockSnapshotRepo) GetCountsByStatus(ctx context.Context) (map[string]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[string]int)
	for _, s := range r.snapshots {
		counts[string(s.Status)]++
	}
	return counts, nil
}

func (r *mockSnapshotRepo) GetRecentSnapshots(ctx context.Context, limit int) ([]*models.LeadSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.LeadSnapshot, 0, len(r.snapshots))
	for _, s := range r.snapshots {
		out = append(out, s)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// mockKVRepo stores blobs in memory keyed by (user, key).
type mockKVRepo struct {
	mu    sync.Mutex
	store map[int64]map[string][]byte
}

func newMockKVRepo() *mockKVRepo {
	return &mockKVRepo{store: make(map[int64]map[string][]byte)}
}

func (r *mockKVRepo) Get(ctx context.Context, userID int64, key string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.store[userID][key]; ok {
		return v, nil
	}
	return nil, repository.ErrKVNotFound
}

func (r *mockKVRepo) Put(ctx context.Context, userID int64, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.store[userID] == nil {
		r.store[userID] = make(map[string][]byte)
	}
	r.store[userID][key] = value
	return nil
}

func (r *mockKVRepo) Delete(ctx context.Context, userID int64, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.store[userID], key)
	return nil
}
