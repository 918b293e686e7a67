package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	bookingserrors "resort/internal/bookings/errors"
	"resort/internal/bookings/repository"
	"resort/internal/bookings/validator"
	commissionservice "resort/internal/commissions/service"
	inventoryerrors "resort/internal/inventory/errors"
	inventoryservice "resort/internal/inventory/service"
	pricingservice "resort/internal/pricing/service"
	promoservice "resort/internal/promotions/service"
	"resort/pkg/config"
	apperrors "resort/pkg/errors"
	"resort/pkg/logger"
	"resort/pkg/model"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	testRatePlanID  = "64b0000000000000000000a1"
	testPromotionID = "64b0000000000000000000b1"
	testCommission  = "64b0000000000000000000c1"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// --- Fakes ---

type memoryBookingRepo struct {
	mu       sync.Mutex
	bookings map[string]*model.Booking
	// statusChangedOnce makes the next UpdateStatus report a concurrent change.
	statusChangedOnce bool
}

func newMemoryBookingRepo() *memoryBookingRepo {
	return &memoryBookingRepo{bookings: map[string]*model.Booking{}}
}

func (r *memoryBookingRepo) Create(_ context.Context, b *model.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.bookings {
		if existing.Reference == b.Reference {
			return fmt.Errorf("%w: %s", bookingserrors.ErrReferenceTaken, b.Reference)
		}
	}
	b.ID = primitive.NewObjectID().Hex()
	b.CreatedAt = time.Now().UTC()
	cp := *b
	r.bookings[b.ID] = &cp
	return nil
}

func (r *memoryBookingRepo) FindByID(_ context.Context, id string) (*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *memoryBookingRepo) FindByReference(_ context.Context, reference string) (*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.Reference == reference {
			cp := *b
			return &cp, nil
		}
	}
	return nil, bookingserrors.ErrNotFound
}

func (r *memoryBookingRepo) FindAll(_ context.Context, f repository.Filter, limit int, offset int64) ([]*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Booking
	for _, b := range r.bookings {
		if f.Status == "" || b.Status == f.Status {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *memoryBookingRepo) Count(ctx context.Context, f repository.Filter) (int64, error) {
	all, _ := r.FindAll(ctx, f, 0, 0)
	return int64(len(all)), nil
}

func (r *memoryBookingRepo) ExistsReference(ctx context.Context, reference string) (bool, error) {
	_, err := r.FindByReference(ctx, reference)
	return err == nil, nil
}

func (r *memoryBookingRepo) UpdateStatus(_ context.Context, id string, change repository.StatusChange) (*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	if r.statusChangedOnce {
		r.statusChangedOnce = false
		return nil, bookingserrors.ErrStatusChanged
	}
	if b.Status != change.From {
		return nil, bookingserrors.ErrStatusChanged
	}
	b.Status = change.To
	at := change.At
	switch change.To {
	case model.BookingStatusConfirmed:
		b.ConfirmedAt = &at
	case model.BookingStatusCancelled:
		b.CancelledAt = &at
		b.CancellationReason = change.Reason
	default:
		b.CompletedAt = &at
	}
	cp := *b
	return &cp, nil
}

func (r *memoryBookingRepo) CountPromotionUses(_ context.Context, promotionID, email, excludeID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, b := range r.bookings {
		if id == excludeID || b.PromotionID != promotionID || b.Guest.Email != email {
			continue
		}
		if b.Status == model.BookingStatusConfirmed || b.Status == model.BookingStatusCompleted {
			n++
		}
	}
	return n, nil
}

func (r *memoryBookingRepo) FindExpiredPending(_ context.Context, createdBefore time.Time, limit int) ([]*model.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.Booking
	for _, b := range r.bookings {
		if b.Status == model.BookingStatusPending && b.CreatedAt.Before(createdBefore) {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memoryBookingRepo) FindForCommissionReport(context.Context, time.Time, time.Time) ([]*model.Booking, error) {
	return nil, nil
}

func (r *memoryBookingRepo) snapshot() map[string]model.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]model.Booking, len(r.bookings))
	for id, b := range r.bookings {
		out[id] = *b
	}
	return out
}

func (r *memoryBookingRepo) restore(snap map[string]model.Booking) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bookings = make(map[string]*model.Booking, len(snap))
	for id, b := range snap {
		cp := b
		r.bookings[id] = &cp
	}
}

func (r *memoryBookingRepo) status(id string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.bookings[id].Status
}

// fakeInventory models a single rate plan with a flat room count. The ledger
// lock rolls back the booking store, the rooms and the promotion counter
// when fn fails, the way the Mongo transaction does.
type fakeInventory struct {
	inventoryservice.InventoryService
	mu        sync.Mutex
	available int
	blocks    int
	releases  int
	lockCalls int
	// conflicts makes the next n lock attempts fail as retryable.
	conflicts int
	// lockBusy fails every lock attempt the way an exhausted lock wait does.
	lockBusy bool

	repo       *memoryBookingRepo
	promotions *fakePromotions
}

func (f *fakeInventory) CheckAvailability(_ context.Context, _ string, _, _ time.Time, count int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.available >= count, nil
}

func (f *fakeInventory) Block(_ context.Context, ratePlanID string, _, _ time.Time, count int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.available < count {
		return apperrors.CapacityExceeded("Not enough rooms available", map[string]any{"rate_plan_id": ratePlanID})
	}
	f.available -= count
	f.blocks++
	return nil
}

func (f *fakeInventory) Release(_ context.Context, _ string, _, _ time.Time, count int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.available += count
	f.releases++
	return nil
}

func (f *fakeInventory) WithLedgerLock(ctx context.Context, _ string, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	f.lockCalls++
	if f.lockBusy {
		f.mu.Unlock()
		return apperrors.ConcurrencyConflict("Inventory is being updated by another request, please retry", inventoryerrors.ErrLockHeld)
	}
	if f.conflicts > 0 {
		f.conflicts--
		f.mu.Unlock()
		return apperrors.ConcurrencyConflict("Inventory is being updated by another request, please retry", nil)
	}
	available, blocks, releases := f.available, f.blocks, f.releases
	f.mu.Unlock()

	bookings := f.repo.snapshot()
	uses := f.promotions.uses()

	if err := fn(ctx); err != nil {
		f.mu.Lock()
		f.available, f.blocks, f.releases = available, blocks, releases
		f.mu.Unlock()
		f.repo.restore(bookings)
		f.promotions.setUses(uses)
		return err
	}
	return nil
}

type fakePromotions struct {
	promoservice.PromotionService
	mu        sync.Mutex
	promotion *model.Promotion
	useCalls  int
	unuse     int
}

func (f *fakePromotions) GetByID(_ context.Context, id string) (*model.Promotion, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.promotion == nil || f.promotion.ID != id {
		return nil, apperrors.NotFoundWithID("Promotion", id)
	}
	cp := *f.promotion
	return &cp, nil
}

func (f *fakePromotions) Use(_ context.Context, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.useCalls++
	if f.promotion.MaxUses != nil && f.promotion.CurrentUses >= *f.promotion.MaxUses {
		return apperrors.Validation("Promotion usage limit reached", map[string]any{"code": f.promotion.Code})
	}
	f.promotion.CurrentUses++
	return nil
}

func (f *fakePromotions) Unuse(_ context.Context, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unuse++
	if f.promotion.CurrentUses > 0 {
		f.promotion.CurrentUses--
	}
	return nil
}

func (f *fakePromotions) uses() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.promotion == nil {
		return 0
	}
	return f.promotion.CurrentUses
}

func (f *fakePromotions) setUses(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.promotion != nil {
		f.promotion.CurrentUses = n
	}
}

type mockQuotes struct {
	plan  *model.RatePlan
	quote func(req pricingservice.Request) *pricingservice.Quote
	err   error
	calls int
}

func (m *mockQuotes) Quote(_ context.Context, req pricingservice.Request) (*pricingservice.Quote, *model.RatePlan, error) {
	m.calls++
	if m.err != nil {
		return nil, nil, m.err
	}
	return m.quote(req), m.plan, nil
}

type mockCommissions struct {
	commissionservice.CommissionService
	commission *model.Commission
}

func (m *mockCommissions) GetByID(_ context.Context, id string) (*model.Commission, error) {
	if m.commission == nil || m.commission.ID != id {
		return nil, apperrors.NotFoundWithID("Commission", id)
	}
	return m.commission, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.BookingEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e model.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// --- Harness ---

type harness struct {
	svc         *bookingService
	repo        *memoryBookingRepo
	inventory   *fakeInventory
	promotions  *fakePromotions
	quotes      *mockQuotes
	commissions *mockCommissions
	publisher   *recordingPublisher
	cfg         *config.Config
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	cfg := &config.Config{
		Log:                  logger.Discard(),
		ConflictMaxRetries:   2,
		ReferenceMaxAttempts: 5,
	}
	repo := newMemoryBookingRepo()
	promotions := &fakePromotions{}
	inventory := &fakeInventory{available: 5, repo: repo, promotions: promotions}
	quotes := &mockQuotes{
		plan: &model.RatePlan{
			ID:         testRatePlanID,
			ResortID:   "64b0000000000000000000f1",
			RoomTypeID: "beach-villa",
			Active:     true,
		},
		quote: func(req pricingservice.Request) *pricingservice.Quote {
			q := &pricingservice.Quote{
				RatePlanID:     testRatePlanID,
				ResortID:       "64b0000000000000000000f1",
				RoomTypeID:     "beach-villa",
				Nights:         3,
				RoomSubtotal:   d("900.00"),
				DiscountAmount: d("135.00"),
				Subtotal:       d("765.00"),
				TaxTotal:       d("91.80"),
				ServiceFee:     d("76.50"),
				Total:          d("933.30"),
				CurrencyCode:   "USD",
				CurrencyRate:   d("1"),
				Items: []model.BookingItem{
					{Kind: model.ItemKindRoom, UnitPrice: d("300.00"), Quantity: 3, Total: d("900.00")},
				},
			}
			if req.PromotionCode != "" {
				q.PromotionID = testPromotionID
				q.PromotionCode = req.PromotionCode
			}
			return q
		},
	}
	publisher := &recordingPublisher{}
	commissions := &mockCommissions{commission: &model.Commission{ID: testCommission, Active: true}}

	svc := NewBookingService(
		repo,
		quotes,
		inventory,
		promotions,
		commissions,
		publisher,
		validator.NewBookingValidator(cfg.Log),
		cfg,
	).(*bookingService)

	return &harness{
		svc:         svc,
		repo:        repo,
		inventory:   inventory,
		promotions:  promotions,
		quotes:      quotes,
		commissions: commissions,
		publisher:   publisher,
		cfg:         cfg,
	}
}

func validRequest() *model.BookingRequest {
	return &model.BookingRequest{
		RatePlanID: testRatePlanID,
		CheckIn:    "2025-12-10",
		CheckOut:   "2025-12-13",
		Adults:     2,
		Guest: model.Guest{
			Name:  "Aisha Ibrahim",
			Email: " Aisha@Example.com ",
			Phone: "+9607712345",
		},
	}
}

func withPromotion(h *harness, maxUses, current int, perCustomer *int) {
	h.promotions.promotion = &model.Promotion{
		ID:               testPromotionID,
		Code:             "SUMMER15",
		MaxUses:          &maxUses,
		CurrentUses:      current,
		PerCustomerLimit: perCustomer,
		Active:           true,
	}
}

func (h *harness) create(t *testing.T, req *model.BookingRequest) *model.Booking {
	t.Helper()
	b, err := h.svc.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	return b
}

// --- Tests ---

func TestCreate_PendingWithoutSideEffects(t *testing.T) {
	h := newHarness(t)

	b := h.create(t, validRequest())

	if b.Status != model.BookingStatusPending {
		t.Errorf("status = %s, want pending", b.Status)
	}
	if !strings.HasPrefix(b.Reference, ReferencePrefix) || len(b.Reference) != len(ReferencePrefix)+referenceLength {
		t.Errorf("reference = %q", b.Reference)
	}
	if b.Nights != 3 {
		t.Errorf("nights = %d, want 3", b.Nights)
	}
	if !b.Total.Equal(d("933.30")) || !b.Subtotal.Equal(d("765.00")) {
		t.Errorf("amounts = %s / %s", b.Subtotal, b.Total)
	}
	if b.Guest.Email != "aisha@example.com" {
		t.Errorf("email = %q, want normalized", b.Guest.Email)
	}
	if b.Guest.Country != "MV" {
		t.Errorf("country = %q, want inferred MV", b.Guest.Country)
	}
	if h.inventory.blocks != 0 || h.inventory.lockCalls != 0 {
		t.Errorf("create must not touch inventory: blocks=%d locks=%d", h.inventory.blocks, h.inventory.lockCalls)
	}
	if got := h.publisher.types(); len(got) != 1 || got[0] != model.EventBookingCreated {
		t.Errorf("events = %v", got)
	}
}

func TestCreate_DoesNotConsumePromotion(t *testing.T) {
	h := newHarness(t)
	withPromotion(h, 10, 0, nil)

	req := validRequest()
	req.PromotionCode = "summer15"
	b := h.create(t, req)

	if b.PromotionID != testPromotionID || b.PromotionCode != "SUMMER15" {
		t.Errorf("promotion = %s/%s", b.PromotionID, b.PromotionCode)
	}
	if h.promotions.useCalls != 0 {
		t.Errorf("Use called %d times on create", h.promotions.useCalls)
	}
}

func TestCreate_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(h *harness)
		mutate   func(r *model.BookingRequest)
		wantCode string
	}{
		{
			name:     "check_out before check_in",
			mutate:   func(r *model.BookingRequest) { r.CheckOut = "2025-12-09" },
			wantCode: apperrors.CodeValidation,
		},
		{
			name:     "missing guest email",
			mutate:   func(r *model.BookingRequest) { r.Guest.Email = "" },
			wantCode: apperrors.CodeValidation,
		},
		{
			name:     "unparseable phone",
			mutate:   func(r *model.BookingRequest) { r.Guest.Phone = "+1" },
			wantCode: apperrors.CodeValidation,
		},
		{
			name: "country excluded",
			setup: func(h *harness) {
				h.quotes.plan.CountryRestriction = model.CountryRestriction{Mode: model.CountryRestrictionExclude, Countries: []string{"MV"}}
			},
			wantCode: apperrors.CodeValidation,
		},
		{
			name: "declared country not included",
			setup: func(h *harness) {
				h.quotes.plan.CountryRestriction = model.CountryRestriction{Mode: model.CountryRestrictionInclude, Countries: []string{"MV"}}
			},
			mutate:   func(r *model.BookingRequest) { r.Guest.Country = "fr" },
			wantCode: apperrors.CodeValidation,
		},
		{
			name:     "no availability",
			setup:    func(h *harness) { h.inventory.available = 0 },
			wantCode: apperrors.CodeCapacityExceeded,
		},
		{
			name:     "unknown commission",
			mutate:   func(r *model.BookingRequest) { r.CommissionID = "64b0000000000000000000c9" },
			wantCode: apperrors.CodeNotFound,
		},
		{
			name:     "inactive commission",
			setup:    func(h *harness) { h.commissions.commission.Active = false },
			mutate:   func(r *model.BookingRequest) { r.CommissionID = testCommission },
			wantCode: apperrors.CodeValidation,
		},
		{
			name:     "commission scoped to another resort",
			setup:    func(h *harness) { h.commissions.commission.ResortID = "64b0000000000000000000f9" },
			mutate:   func(r *model.BookingRequest) { r.CommissionID = testCommission },
			wantCode: apperrors.CodeValidation,
		},
		{
			name:     "commission scoped to other room types",
			setup:    func(h *harness) { h.commissions.commission.RoomTypeIDs = []string{"garden-suite"} },
			mutate:   func(r *model.BookingRequest) { r.CommissionID = testCommission },
			wantCode: apperrors.CodeValidation,
		},
		{
			name: "commission window closed",
			setup: func(h *harness) {
				until := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
				h.commissions.commission.ValidUntil = &until
			},
			mutate:   func(r *model.BookingRequest) { r.CommissionID = testCommission },
			wantCode: apperrors.CodeValidation,
		},
		{
			name:     "pricing failure",
			setup:    func(h *harness) { h.quotes.err = apperrors.NotFoundWithID("RatePlan", testRatePlanID) },
			wantCode: apperrors.CodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			if tt.setup != nil {
				tt.setup(h)
			}
			req := validRequest()
			if tt.mutate != nil {
				tt.mutate(req)
			}

			_, err := h.svc.Create(context.Background(), req)
			if !apperrors.HasCode(err, tt.wantCode) {
				t.Fatalf("err = %v, want %s", err, tt.wantCode)
			}
			if n := len(h.repo.snapshot()); n != 0 {
				t.Errorf("%d bookings stored after rejection", n)
			}
		})
	}
}

func TestCreate_CommissionInScope(t *testing.T) {
	h := newHarness(t)
	h.commissions.commission.ResortID = "64b0000000000000000000f1"
	h.commissions.commission.RoomTypeIDs = []string{"garden-suite", "beach-villa"}

	req := validRequest()
	req.CommissionID = testCommission
	b := h.create(t, req)

	if b.CommissionID != testCommission {
		t.Errorf("commission_id = %q, want %q", b.CommissionID, testCommission)
	}
}

func TestCreate_PerCustomerLimit(t *testing.T) {
	h := newHarness(t)
	limit := 1
	withPromotion(h, 10, 0, &limit)

	req := validRequest()
	req.PromotionCode = "SUMMER15"
	first := h.create(t, req)
	if _, err := h.svc.Confirm(context.Background(), first.ID); err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}

	again := validRequest()
	again.PromotionCode = "SUMMER15"
	_, err := h.svc.Create(context.Background(), again)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeValidation {
		t.Fatalf("err = %v, want validation", err)
	}
	if appErr.Details["reason"] != "guest has reached the promotion limit" {
		t.Errorf("details = %v", appErr.Details)
	}
}

func TestCreate_ReferenceRetriesUntilUnique(t *testing.T) {
	h := newHarness(t)
	refs := []string{"RS-AAAAAAAA", "RS-AAAAAAAA", "RS-BBBBBBBB"}
	h.svc.newReference = func() string {
		r := refs[0]
		refs = refs[1:]
		return r
	}

	first := h.create(t, validRequest())
	second := h.create(t, validRequest())

	if first.Reference != "RS-AAAAAAAA" || second.Reference != "RS-BBBBBBBB" {
		t.Errorf("references = %s, %s", first.Reference, second.Reference)
	}
}

func TestCreate_ReferenceAttemptsExhausted(t *testing.T) {
	h := newHarness(t)
	h.svc.newReference = func() string { return "RS-SAMESAME" }

	h.create(t, validRequest())
	_, err := h.svc.Create(context.Background(), validRequest())
	if !apperrors.HasCode(err, apperrors.CodeInternal) {
		t.Fatalf("err = %v, want internal", err)
	}
	if !errors.Is(err, bookingserrors.ErrReferenceTaken) {
		t.Errorf("err should wrap ErrReferenceTaken")
	}
}

func TestConfirm_BlocksInventoryAndUsesPromotion(t *testing.T) {
	h := newHarness(t)
	withPromotion(h, 10, 3, nil)
	req := validRequest()
	req.PromotionCode = "SUMMER15"
	b := h.create(t, req)

	confirmed, err := h.svc.Confirm(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}

	if confirmed.Status != model.BookingStatusConfirmed || confirmed.ConfirmedAt == nil {
		t.Errorf("booking = %s confirmed_at=%v", confirmed.Status, confirmed.ConfirmedAt)
	}
	if h.inventory.available != 4 || h.inventory.blocks != 1 {
		t.Errorf("inventory available=%d blocks=%d, want 4/1", h.inventory.available, h.inventory.blocks)
	}
	if h.promotions.uses() != 4 {
		t.Errorf("current_uses = %d, want 4", h.promotions.uses())
	}

	events := h.publisher.events
	last := events[len(events)-1]
	if last.Type != model.EventBookingConfirmed || last.PreviousStatus != model.BookingStatusPending {
		t.Errorf("last event = %+v", last)
	}
}

func TestConfirm_CapacityErrorRollsBack(t *testing.T) {
	h := newHarness(t)
	b := h.create(t, validRequest())
	h.inventory.available = 0

	_, err := h.svc.Confirm(context.Background(), b.ID)
	if !apperrors.HasCode(err, apperrors.CodeCapacityExceeded) {
		t.Fatalf("err = %v, want capacity exceeded", err)
	}
	if apperrors.IsRetryable(err) {
		t.Error("capacity errors must not be retryable")
	}
	if got := h.repo.status(b.ID); got != model.BookingStatusPending {
		t.Errorf("status = %s, want pending after failed confirm", got)
	}
	if h.inventory.lockCalls != 1 {
		t.Errorf("lock calls = %d, capacity errors must not be retried", h.inventory.lockCalls)
	}
}

func TestConfirm_PromotionCapRollsBackInventory(t *testing.T) {
	h := newHarness(t)
	withPromotion(h, 1, 0, nil)
	req := validRequest()
	req.PromotionCode = "SUMMER15"
	first := h.create(t, req)
	second := h.create(t, req)

	if _, err := h.svc.Confirm(context.Background(), first.ID); err != nil {
		t.Fatalf("first Confirm() error = %v", err)
	}
	_, err := h.svc.Confirm(context.Background(), second.ID)
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Fatalf("err = %v, want validation", err)
	}

	if h.inventory.available != 4 {
		t.Errorf("available = %d, want 4 (second block rolled back)", h.inventory.available)
	}
	if got := h.repo.status(second.ID); got != model.BookingStatusPending {
		t.Errorf("second status = %s, want pending", got)
	}
	if h.promotions.uses() != 1 {
		t.Errorf("current_uses = %d, want 1", h.promotions.uses())
	}
}

func TestConfirm_RetriesConcurrencyConflicts(t *testing.T) {
	h := newHarness(t)
	b := h.create(t, validRequest())
	h.inventory.conflicts = 2

	if _, err := h.svc.Confirm(context.Background(), b.ID); err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if h.inventory.lockCalls != 3 || h.inventory.blocks != 1 {
		t.Errorf("lock calls=%d blocks=%d, want 3/1", h.inventory.lockCalls, h.inventory.blocks)
	}
}

func TestConfirm_SurfacesConflictAfterRetries(t *testing.T) {
	h := newHarness(t)
	b := h.create(t, validRequest())
	h.inventory.conflicts = 10

	_, err := h.svc.Confirm(context.Background(), b.ID)
	if !apperrors.HasCode(err, apperrors.CodeConcurrencyConflict) || !apperrors.IsRetryable(err) {
		t.Fatalf("err = %v, want retryable concurrency conflict", err)
	}
	if h.inventory.lockCalls != h.cfg.ConflictMaxRetries+1 {
		t.Errorf("lock calls = %d, want %d", h.inventory.lockCalls, h.cfg.ConflictMaxRetries+1)
	}
}

func TestConfirm_BusyLockIsNotRetriedAgain(t *testing.T) {
	h := newHarness(t)
	b := h.create(t, validRequest())
	h.inventory.lockBusy = true

	_, err := h.svc.Confirm(context.Background(), b.ID)
	if !apperrors.HasCode(err, apperrors.CodeConcurrencyConflict) || !apperrors.IsRetryable(err) {
		t.Fatalf("err = %v, want retryable concurrency conflict", err)
	}
	if h.inventory.lockCalls != 1 {
		t.Errorf("lock calls = %d, want 1", h.inventory.lockCalls)
	}
	if got, _ := h.svc.GetByID(context.Background(), b.ID); got.Status != model.BookingStatusPending {
		t.Errorf("status = %s, want pending", got.Status)
	}
}

func TestConfirm_StatusChangedReloads(t *testing.T) {
	h := newHarness(t)
	b := h.create(t, validRequest())
	h.repo.statusChangedOnce = true

	if _, err := h.svc.Confirm(context.Background(), b.ID); err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if h.inventory.blocks != 1 {
		t.Errorf("blocks = %d, want 1", h.inventory.blocks)
	}
}

func TestConfirm_Twice(t *testing.T) {
	h := newHarness(t)
	b := h.create(t, validRequest())

	if _, err := h.svc.Confirm(context.Background(), b.ID); err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	_, err := h.svc.Confirm(context.Background(), b.ID)
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
	if h.inventory.blocks != 1 {
		t.Errorf("blocks = %d, want 1", h.inventory.blocks)
	}
}

func TestConfirm_PublishFailureIsNotFatal(t *testing.T) {
	h := newHarness(t)
	b := h.create(t, validRequest())
	h.publisher.err = errors.New("broker down")

	if _, err := h.svc.Confirm(context.Background(), b.ID); err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}
	if got := h.repo.status(b.ID); got != model.BookingStatusConfirmed {
		t.Errorf("status = %s", got)
	}
}

func TestCancel(t *testing.T) {
	tests := []struct {
		name         string
		confirmFirst bool
		reverse      bool
		wantReleases int
		wantUses     int
	}{
		{"pending releases nothing", false, false, 0, 0},
		{"confirmed releases inventory keeps promotion use", true, false, 1, 1},
		{"confirmed with reversal", true, true, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.cfg.PromotionReverseOnCancel = tt.reverse
			withPromotion(h, 10, 0, nil)
			req := validRequest()
			req.PromotionCode = "SUMMER15"
			b := h.create(t, req)
			if tt.confirmFirst {
				if _, err := h.svc.Confirm(context.Background(), b.ID); err != nil {
					t.Fatalf("Confirm() error = %v", err)
				}
			}

			cancelled, err := h.svc.Cancel(context.Background(), b.ID, "  change of plans ")
			if err != nil {
				t.Fatalf("Cancel() error = %v", err)
			}

			if cancelled.Status != model.BookingStatusCancelled || cancelled.CancelledAt == nil {
				t.Errorf("booking = %s cancelled_at=%v", cancelled.Status, cancelled.CancelledAt)
			}
			if cancelled.CancellationReason != "change of plans" {
				t.Errorf("reason = %q", cancelled.CancellationReason)
			}
			if h.inventory.releases != tt.wantReleases {
				t.Errorf("releases = %d, want %d", h.inventory.releases, tt.wantReleases)
			}
			if h.inventory.available != 5 {
				t.Errorf("available = %d, want 5", h.inventory.available)
			}
			if h.promotions.uses() != tt.wantUses {
				t.Errorf("current_uses = %d, want %d", h.promotions.uses(), tt.wantUses)
			}
		})
	}
}

func TestTerminalTransitions(t *testing.T) {
	tests := []struct {
		name string
		run  func(h *harness, id string) (*model.Booking, error)
		from string
		want string // empty means rejected
	}{
		{"complete pending", func(h *harness, id string) (*model.Booking, error) { return h.svc.Complete(context.Background(), id) }, model.BookingStatusPending, ""},
		{"complete confirmed", func(h *harness, id string) (*model.Booking, error) { return h.svc.Complete(context.Background(), id) }, model.BookingStatusConfirmed, model.BookingStatusCompleted},
		{"no-show confirmed", func(h *harness, id string) (*model.Booking, error) { return h.svc.MarkNoShow(context.Background(), id) }, model.BookingStatusConfirmed, model.BookingStatusNoShow},
		{"no-show pending", func(h *harness, id string) (*model.Booking, error) { return h.svc.MarkNoShow(context.Background(), id) }, model.BookingStatusPending, ""},
		{"cancel completed", func(h *harness, id string) (*model.Booking, error) {
			if _, err := h.svc.Complete(context.Background(), id); err != nil {
				return nil, err
			}
			return h.svc.Cancel(context.Background(), id, "")
		}, model.BookingStatusConfirmed, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			b := h.create(t, validRequest())
			if tt.from == model.BookingStatusConfirmed {
				if _, err := h.svc.Confirm(context.Background(), b.ID); err != nil {
					t.Fatalf("Confirm() error = %v", err)
				}
			}
			blocks, releases := h.inventory.blocks, h.inventory.releases

			got, err := tt.run(h, b.ID)
			if tt.want == "" {
				if !apperrors.HasCode(err, apperrors.CodeConflict) {
					t.Fatalf("err = %v, want conflict", err)
				}
			} else {
				if err != nil {
					t.Fatalf("error = %v", err)
				}
				if got.Status != tt.want || got.CompletedAt == nil {
					t.Errorf("status = %s completed_at=%v", got.Status, got.CompletedAt)
				}
			}
			if h.inventory.blocks != blocks || h.inventory.releases != releases {
				t.Error("terminal transitions must not touch inventory")
			}
		})
	}
}

func TestGetByID_Errors(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		id   string
		code string
	}{
		{"", apperrors.CodeInvalidInput},
		{"not-an-id", apperrors.CodeInvalidInput},
		{"64b0000000000000000000ff", apperrors.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			_, err := h.svc.GetByID(context.Background(), tt.id)
			if !apperrors.HasCode(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestGetByReference_CaseInsensitive(t *testing.T) {
	h := newHarness(t)
	b := h.create(t, validRequest())

	got, err := h.svc.GetByReference(context.Background(), " "+strings.ToLower(b.Reference))
	if err != nil {
		t.Fatalf("GetByReference() error = %v", err)
	}
	if got.ID != b.ID {
		t.Errorf("id = %s, want %s", got.ID, b.ID)
	}
}

func TestGetAll_UnknownStatus(t *testing.T) {
	h := newHarness(t)
	_, _, err := h.svc.GetAll(context.Background(), repository.Filter{Status: "archived"}, 10, 0)
	if !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("err = %v, want invalid input", err)
	}
}

func TestExpirePending(t *testing.T) {
	h := newHarness(t)
	stale := h.create(t, validRequest())
	confirmed := h.create(t, validRequest())
	fresh := h.create(t, validRequest())
	if _, err := h.svc.Confirm(context.Background(), confirmed.ID); err != nil {
		t.Fatalf("Confirm() error = %v", err)
	}

	h.repo.mu.Lock()
	h.repo.bookings[stale.ID].CreatedAt = time.Now().UTC().Add(-2 * time.Hour)
	h.repo.bookings[confirmed.ID].CreatedAt = time.Now().UTC().Add(-2 * time.Hour)
	h.repo.mu.Unlock()

	n, err := h.svc.ExpirePending(context.Background(), 30*time.Minute)
	if err != nil {
		t.Fatalf("ExpirePending() error = %v", err)
	}
	if n != 1 {
		t.Errorf("expired = %d, want 1", n)
	}

	after := h.repo.snapshot()
	if s := after[stale.ID]; s.Status != model.BookingStatusCancelled || s.CancellationReason != ExpiredReason {
		t.Errorf("stale = %s/%q", s.Status, s.CancellationReason)
	}
	if after[confirmed.ID].Status != model.BookingStatusConfirmed {
		t.Error("confirmed booking must not expire")
	}
	if after[fresh.ID].Status != model.BookingStatusPending {
		t.Error("fresh booking must not expire")
	}
}

func TestQuote_DoesNotPersist(t *testing.T) {
	h := newHarness(t)
	q, err := h.svc.Quote(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Quote() error = %v", err)
	}
	if !q.Total.Equal(d("933.30")) {
		t.Errorf("total = %s", q.Total)
	}
	if len(h.repo.snapshot()) != 0 || len(h.publisher.events) != 0 {
		t.Error("quote must not persist or publish")
	}
}
