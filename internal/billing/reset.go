package billing

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"
)

// UsageResetter zeroes stale usage counters, returning how many rows reset.
type UsageResetter interface {
	ResetStaleUsage(ctx context.Context) (int64, error)
}

// Resetter wraps robfig/cron and runs the monthly usage reset. Quota checks
// also reset lazily on read, so the scheduler only keeps idle rows tidy.
type Resetter struct {
	cron  *cron.Cron
	store UsageResetter
}

// NewResetter creates a Resetter that fires at the start of each month.
func NewResetter(store UsageResetter) *Resetter {
	return &Resetter{
		cron:  cron.New(),
		store: store,
	}
}

// Start registers the job and starts the scheduler.
func (r *Resetter) Start(ctx context.Context) error {
	_, err := r.cron.AddFunc("@monthly", func() {
		r.run(ctx)
	})
	if err != nil {
		return err
	}

	r.cron.Start()
	log.Println("[billing] monthly usage reset scheduled")
	return nil
}

// Stop gracefully shuts down the scheduler.
func (r *Resetter) Stop() {
	r.cron.Stop()
	log.Println("[billing] usage reset scheduler stopped")
}

func (r *Resetter) run(ctx context.Context) {
	n, err := r.store.ResetStaleUsage(ctx)
	if err != nil {
		log.Printf("[billing] usage reset failed: %v", err)
		return
	}
	log.Printf("[billing] usage reset complete, %d subscription(s) reset", n)
}
