package service

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"

	promoerrors "resort/internal/promotions/errors"
	"resort/internal/promotions/validator"
	"resort/pkg/config"
	apperrors "resort/pkg/errors"
	"resort/pkg/logger"
	"resort/pkg/model"

	"github.com/shopspring/decimal"
)

// memoryPromotionRepo applies Use with the same condition as the Mongo filter.
type memoryPromotionRepo struct {
	mu         sync.Mutex
	promotions map[string]*model.Promotion
	createErr  error
}

func newMemoryRepo(promotions ...*model.Promotion) *memoryPromotionRepo {
	repo := &memoryPromotionRepo{promotions: map[string]*model.Promotion{}}
	for _, p := range promotions {
		repo.promotions[p.ID] = p
	}
	return repo
}

func (m *memoryPromotionRepo) Create(_ context.Context, p *model.Promotion) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = "507f1f77bcf86cd799439011"
	m.promotions[p.ID] = p
	return nil
}

func (m *memoryPromotionRepo) FindByID(_ context.Context, id string) (*model.Promotion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.promotions[id]
	if !ok {
		return nil, promoerrors.ErrPromotionNotFound
	}
	clone := *p
	return &clone, nil
}

func (m *memoryPromotionRepo) FindByCode(_ context.Context, code string) (*model.Promotion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.promotions {
		if p.Code == code {
			clone := *p
			return &clone, nil
		}
	}
	return nil, promoerrors.ErrPromotionNotFound
}

func (m *memoryPromotionRepo) FindAll(context.Context, int, int64) ([]*model.Promotion, error) {
	return nil, nil
}

func (m *memoryPromotionRepo) Count(context.Context) (int64, error) {
	return int64(len(m.promotions)), nil
}

func (m *memoryPromotionRepo) Update(_ context.Context, id string, p *model.Promotion) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.promotions[id]; !ok {
		return promoerrors.ErrPromotionNotFound
	}
	m.promotions[id] = p
	return nil
}

func (m *memoryPromotionRepo) Use(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.promotions[id]
	if !ok {
		return promoerrors.ErrPromotionNotFound
	}
	if p.MaxUses != nil && p.CurrentUses >= *p.MaxUses {
		return promoerrors.ErrUsageCapReached
	}
	p.CurrentUses++
	return nil
}

func (m *memoryPromotionRepo) Unuse(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.promotions[id]; ok && p.CurrentUses > 0 {
		p.CurrentUses--
	}
	return nil
}

func newPromotionService(repo *memoryPromotionRepo) PromotionService {
	log := logger.Discard()
	return NewPromotionService(repo, validator.NewPromotionValidator(log), &config.Config{Log: log})
}

func TestPromotionService_Create(t *testing.T) {
	tests := []struct {
		name      string
		promotion model.Promotion
		createErr error
		wantCode  string
		wantStore string
	}{
		{
			name:      "normalizes code",
			promotion: model.Promotion{Code: " summer 15 ", Type: model.PromotionTypePercentage, Value: decimal.NewFromInt(15), Active: true},
			wantStore: "SUMMER15",
		},
		{
			name:      "percentage above 100",
			promotion: model.Promotion{Code: "BIG", Type: model.PromotionTypePercentage, Value: decimal.NewFromInt(120)},
			wantCode:  apperrors.CodeValidation,
		},
		{
			name:      "unknown type",
			promotion: model.Promotion{Code: "ODD", Type: "bogus", Value: decimal.NewFromInt(10)},
			wantCode:  apperrors.CodeValidation,
		},
		{
			name:      "duplicate code",
			promotion: model.Promotion{Code: "TAKEN", Type: model.PromotionTypeFixed, Value: decimal.NewFromInt(10)},
			createErr: promoerrors.ErrCodeTaken,
			wantCode:  apperrors.CodeConflict,
		},
		{
			name:      "store failure",
			promotion: model.Promotion{Code: "BROKEN", Type: model.PromotionTypeFixed, Value: decimal.NewFromInt(10)},
			createErr: errors.New("connection reset"),
			wantCode:  apperrors.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemoryRepo()
			repo.createErr = tt.createErr
			svc := newPromotionService(repo)

			p := tt.promotion
			p.CurrentUses = 7
			err := svc.Create(context.Background(), &p)

			if tt.wantCode != "" {
				if !apperrors.HasCode(err, tt.wantCode) {
					t.Fatalf("Create() error = %v, want %s", err, tt.wantCode)
				}
				return
			}
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			if p.Code != tt.wantStore {
				t.Errorf("code = %q, want %q", p.Code, tt.wantStore)
			}
			if p.CurrentUses != 0 {
				t.Errorf("current_uses = %d, want 0 on create", p.CurrentUses)
			}
		})
	}
}

func TestPromotionService_Apply(t *testing.T) {
	maxUses := 1
	repo := newMemoryRepo(
		&model.Promotion{ID: "a", Code: "SUMMER15", Type: model.PromotionTypePercentage, Value: decimal.NewFromInt(15), Active: true},
		&model.Promotion{ID: "b", Code: "USEDUP", Type: model.PromotionTypeFixed, Value: decimal.NewFromInt(10), Active: true, MaxUses: &maxUses, CurrentUses: 1},
	)
	svc := newPromotionService(repo)

	if _, err := svc.Apply(context.Background(), "summer15", baseStay(), now); err != nil {
		t.Errorf("Apply(summer15) error = %v", err)
	}

	_, err := svc.Apply(context.Background(), "USEDUP", baseStay(), now)
	if !apperrors.HasCode(err, apperrors.CodeValidation) || !errors.Is(err, promoerrors.ErrExhausted) {
		t.Errorf("Apply(USEDUP) error = %v, want validation wrapping ErrExhausted", err)
	}

	_, err = svc.Apply(context.Background(), "MISSING", baseStay(), now)
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("Apply(MISSING) error = %v, want not found", err)
	}
}

func TestPromotionService_UseCapReached(t *testing.T) {
	maxUses := 1
	repo := newMemoryRepo(&model.Promotion{ID: "a", Code: "ONCE", Type: model.PromotionTypeFixed, Value: decimal.NewFromInt(10), Active: true, MaxUses: &maxUses})
	svc := newPromotionService(repo)

	if err := svc.Use(context.Background(), "a"); err != nil {
		t.Fatalf("first Use() error = %v", err)
	}
	err := svc.Use(context.Background(), "a")
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("second Use() error = %v, want validation", err)
	}
	if got := repo.promotions["a"].CurrentUses; got != 1 {
		t.Errorf("current_uses = %d, want 1", got)
	}
}

func TestPromotionService_UnuseNeverNegative(t *testing.T) {
	repo := newMemoryRepo(&model.Promotion{ID: "a", Code: "FREE", Type: model.PromotionTypeFixed, Value: decimal.NewFromInt(10), Active: true})
	svc := newPromotionService(repo)

	if err := svc.Unuse(context.Background(), "a"); err != nil {
		t.Fatalf("Unuse() error = %v", err)
	}
	if got := repo.promotions["a"].CurrentUses; got != 0 {
		t.Errorf("current_uses = %d, want 0", got)
	}
}

func TestPromotionCapProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(11))

	for iter := 0; iter < 50; iter++ {
		maxUses := 1 + rng.Intn(5)
		repo := newMemoryRepo(&model.Promotion{
			ID: "p", Code: "CAP", Type: model.PromotionTypeFixed, Value: decimal.NewFromInt(5), Active: true, MaxUses: &maxUses,
		})
		svc := newPromotionService(repo)

		attempts := 1 + rng.Intn(20)
		var wg sync.WaitGroup
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				p, err := svc.GetByID(context.Background(), "p")
				if err != nil || !IsValid(p, baseStay(), now) {
					return
				}
				_ = svc.Use(context.Background(), "p")
			}()
		}
		wg.Wait()

		got := repo.promotions["p"].CurrentUses
		if got > maxUses {
			t.Fatalf("iteration %d: current_uses = %d exceeds max_uses = %d", iter, got, maxUses)
		}
		if want := min(attempts, maxUses); got != want {
			t.Fatalf("iteration %d: current_uses = %d, want %d", iter, got, want)
		}
	}
}
