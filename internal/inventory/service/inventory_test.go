package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	inventoryerrors "resort/internal/inventory/errors"
	"resort/internal/inventory/repository"
	"resort/pkg/config"
	"resort/pkg/dates"
	mongotx "resort/pkg/db/mongo"
	apperrors "resort/pkg/errors"
	"resort/pkg/logger"
	"resort/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

type mockInventoryRepo struct {
	records   []*model.Inventory
	applied   int
	applyErr  error
	txCount   int
	findCalls int
}

func (m *mockInventoryRepo) FindOverlapping(_ context.Context, ratePlanID string, from, to time.Time) ([]*model.Inventory, error) {
	m.findCalls++
	var out []*model.Inventory
	for _, r := range m.records {
		if r.RatePlanID == ratePlanID && dates.Overlaps(r.StartDate, r.EndDate, from, to) {
			c := *r
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *mockInventoryRepo) Apply(_ context.Context, mut repository.Mutation) error {
	if m.applyErr != nil {
		return m.applyErr
	}
	m.applied++

	byID := map[string]int{}
	for i, r := range m.records {
		byID[r.ID] = i
	}
	for _, u := range mut.Updates {
		i := byID[u.ID]
		if m.records[i].Version != u.Version {
			return fmt.Errorf("%w: %s", inventoryerrors.ErrVersionConflict, u.ID)
		}
		c := *u
		c.Version++
		m.records[i] = &c
	}
	deleted := map[string]bool{}
	for _, d := range mut.Deletes {
		deleted[d.ID] = true
	}
	var kept []*model.Inventory
	for _, r := range m.records {
		if !deleted[r.ID] {
			kept = append(kept, r)
		}
	}
	for i, ins := range mut.Inserts {
		c := *ins
		c.ID = fmt.Sprintf("ins-%d-%d", m.applied, i)
		kept = append(kept, &c)
	}
	m.records = kept
	return nil
}

func (m *mockInventoryRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	m.txCount++
	return fn(mongo.NewSessionContext(ctx, nil))
}

type mockLockRepo struct {
	AcquireFunc func(ctx context.Context, name, owner string, ttl time.Duration) error
	acquired    int
	released    int
}

func (m *mockLockRepo) Acquire(ctx context.Context, name, owner string, ttl time.Duration) error {
	m.acquired++
	if m.AcquireFunc != nil {
		return m.AcquireFunc(ctx, name, owner, ttl)
	}
	return nil
}

func (m *mockLockRepo) Release(_ context.Context, _, _ string) error {
	m.released++
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Log:                  logger.Discard(),
		ReadTimeout:          time.Second,
		WriteTimeout:         time.Second,
		ConflictMaxRetries:   2,
		ConflictRetryBackoff: time.Millisecond,
		LedgerLockTTL:        time.Second,
	}
}

func newTestService(repo *mockInventoryRepo, locks *mockLockRepo) *inventoryService {
	svc := NewInventoryService(repo, locks, testConfig()).(*inventoryService)
	svc.now = func() time.Time { return epoch }
	return svc
}

func TestService_BlockThenCheck(t *testing.T) {
	repo := &mockInventoryRepo{records: []*model.Inventory{record("a", "2025-03-01", "2025-03-31", 5, false)}}
	locks := &mockLockRepo{}
	svc := newTestService(repo, locks)
	ctx := context.Background()

	checkIn, checkOut := day("2025-03-10"), day("2025-03-13")
	if err := svc.Block(ctx, "plan-1", checkIn, checkOut, 1); err != nil {
		t.Fatalf("Block() error = %v", err)
	}

	ok, err := svc.CheckAvailability(ctx, "plan-1", checkIn, checkOut, 5)
	if err != nil || ok {
		t.Errorf("CheckAvailability(5) = %v, %v; want false", ok, err)
	}
	ok, err = svc.CheckAvailability(ctx, "plan-1", checkIn, checkOut, 4)
	if err != nil || !ok {
		t.Errorf("CheckAvailability(4) = %v, %v; want true", ok, err)
	}
	if locks.acquired != 1 || locks.released != 1 {
		t.Errorf("lock acquired=%d released=%d, want 1/1", locks.acquired, locks.released)
	}
}

func TestService_BlockCapacityError(t *testing.T) {
	repo := &mockInventoryRepo{records: []*model.Inventory{record("a", "2025-03-01", "2025-03-02", 1, false)}}
	svc := newTestService(repo, &mockLockRepo{})

	err := svc.Block(context.Background(), "plan-1", day("2025-03-01"), day("2025-03-04"), 1)
	if !apperrors.HasCode(err, apperrors.CodeCapacityExceeded) {
		t.Fatalf("error = %v, want capacity exceeded", err)
	}
	if apperrors.IsRetryable(err) {
		t.Error("capacity errors must not be retryable")
	}
	if !errors.Is(err, inventoryerrors.ErrCapacityExceeded) {
		t.Error("capacity error should wrap ErrCapacityExceeded")
	}
	if repo.applied != 0 {
		t.Errorf("failed block wrote %d mutations", repo.applied)
	}
	nights, _ := apperrors.AsAppError(err).Details["nights"].([]string)
	if len(nights) != 1 || nights[0] != "2025-03-03" {
		t.Errorf("nights = %v, want [2025-03-03]", nights)
	}
}

func TestService_LockBusy(t *testing.T) {
	locks := &mockLockRepo{AcquireFunc: func(context.Context, string, string, time.Duration) error {
		return inventoryerrors.ErrLockHeld
	}}
	svc := newTestService(&mockInventoryRepo{}, locks)

	err := svc.SetAvailability(context.Background(), "plan-1", day("2025-03-01"), day("2025-03-02"), 3, false)
	if !apperrors.HasCode(err, apperrors.CodeConcurrencyConflict) || !apperrors.IsRetryable(err) {
		t.Fatalf("error = %v, want retryable concurrency conflict", err)
	}
	if locks.acquired != 3 {
		t.Errorf("acquire attempts = %d, want 3", locks.acquired)
	}
	if locks.released != 0 {
		t.Error("a lock that was never acquired must not be released")
	}
}

func TestService_VersionConflict(t *testing.T) {
	repo := &mockInventoryRepo{
		records:  []*model.Inventory{record("a", "2025-03-01", "2025-03-05", 2, false)},
		applyErr: fmt.Errorf("%w: a@1", inventoryerrors.ErrVersionConflict),
	}
	svc := newTestService(repo, &mockLockRepo{})

	err := svc.Block(context.Background(), "plan-1", day("2025-03-01"), day("2025-03-03"), 1)
	if !apperrors.HasCode(err, apperrors.CodeConcurrencyConflict) {
		t.Fatalf("error = %v, want concurrency conflict", err)
	}
}

func TestService_WithLedgerLockJoinsTransaction(t *testing.T) {
	repo := &mockInventoryRepo{records: []*model.Inventory{record("a", "2025-03-01", "2025-03-10", 3, false)}}
	locks := &mockLockRepo{}
	svc := newTestService(repo, locks)

	err := svc.WithLedgerLock(context.Background(), "plan-1", func(ctx context.Context) error {
		if err := svc.Block(ctx, "plan-1", day("2025-03-02"), day("2025-03-04"), 1); err != nil {
			return err
		}
		return svc.Release(ctx, "plan-1", day("2025-03-02"), day("2025-03-03"), 1)
	})
	if err != nil {
		t.Fatalf("WithLedgerLock() error = %v", err)
	}
	if locks.acquired != 1 || repo.txCount != 1 {
		t.Errorf("acquired=%d transactions=%d, want one of each", locks.acquired, repo.txCount)
	}

	cal, err := svc.Calendar(context.Background(), "plan-1", day("2025-03-02"), day("2025-03-04"))
	if err != nil {
		t.Fatalf("Calendar() error = %v", err)
	}
	if cal[0].AvailableRooms != 3 || cal[1].AvailableRooms != 2 {
		t.Errorf("calendar = %+v, want 3 then 2 rooms", cal)
	}
}

func TestService_InvalidInput(t *testing.T) {
	svc := newTestService(&mockInventoryRepo{}, &mockLockRepo{})
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
	}{
		{"empty plan", func() error { return svc.Block(ctx, "", day("2025-03-01"), day("2025-03-02"), 1) }},
		{"reversed stay", func() error { return svc.Block(ctx, "plan-1", day("2025-03-02"), day("2025-03-01"), 1) }},
		{"zero count", func() error { return svc.Release(ctx, "plan-1", day("2025-03-01"), day("2025-03-02"), 0) }},
		{"negative rooms", func() error {
			return svc.SetAvailability(ctx, "plan-1", day("2025-03-01"), day("2025-03-02"), -1, false)
		}},
		{"reversed range", func() error {
			return svc.SetAvailability(ctx, "plan-1", day("2025-03-02"), day("2025-03-01"), 1, false)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
				t.Errorf("error = %v, want invalid input", err)
			}
		})
	}
}
