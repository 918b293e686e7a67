package scheduler

import (
	"context"
	"fmt"
	"time"

	"resort/internal/bookings/service"
	"resort/pkg/config"

	"github.com/go-co-op/gocron/v2"
)

const jobName = "expire-pending-bookings"

// Expirer is the part of the booking service the sweep needs.
type Expirer interface {
	ExpirePending(ctx context.Context, olderThan time.Duration) (int, error)
}

var _ Expirer = (service.BookingService)(nil)

// ExpiryScheduler periodically cancels pending bookings that were never
// confirmed.
type ExpiryScheduler struct {
	scheduler gocron.Scheduler
	expirer   Expirer
	cfg       *config.Config
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewExpiryScheduler(expirer Expirer, cfg *config.Config) (*ExpiryScheduler, error) {
	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	es := &ExpiryScheduler{
		scheduler: s,
		expirer:   expirer,
		cfg:       cfg,
		ctx:       ctx,
		cancel:    cancel,
	}

	_, err = s.NewJob(
		gocron.DurationJob(cfg.ExpirySweepInterval),
		gocron.NewTask(es.Sweep),
		gocron.WithName(jobName),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("schedule %s: %w", jobName, err)
	}
	return es, nil
}

func (es *ExpiryScheduler) Start() {
	es.scheduler.Start()
	es.cfg.Log.Info("Pending booking expiry scheduler started",
		"interval", es.cfg.ExpirySweepInterval,
		"ttl", es.cfg.PendingBookingTTL,
	)
}

// Sweep runs one expiry pass. Each pass is bounded by the sweep interval.
func (es *ExpiryScheduler) Sweep() {
	ctx, cancel := context.WithTimeout(es.ctx, es.cfg.ExpirySweepInterval)
	defer cancel()

	count, err := es.expirer.ExpirePending(ctx, es.cfg.PendingBookingTTL)
	if err != nil {
		es.cfg.Log.Error("Pending booking expiry sweep failed", "expired", count, "error", err)
		return
	}
	es.cfg.Log.Debug("Pending booking expiry sweep finished", "expired", count)
}

func (es *ExpiryScheduler) Shutdown() error {
	es.cancel()
	if err := es.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("shutdown scheduler: %w", err)
	}
	es.cfg.Log.Info("Pending booking expiry scheduler stopped")
	return nil
}
