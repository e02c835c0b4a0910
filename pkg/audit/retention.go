package audit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// RetentionConfig configures audit record retention.
type RetentionConfig struct {
	// Days is how long records are kept. 0 keeps them forever.
	Days int

	// Schedule is a standard cron expression for automatic pruning,
	// e.g. "0 3 * * *" for daily at 03:00. Empty disables the scheduler;
	// Prune can still be called manually.
	Schedule string

	// MaxRecords caps the total record count; the oldest records beyond
	// it are pruned. 0 means unlimited.
	MaxRecords int64
}

// DefaultRetentionConfig returns the default retention configuration.
func DefaultRetentionConfig() RetentionConfig {
	return RetentionConfig{
		Days:       90,
		Schedule:   "0 3 * * *",
		MaxRecords: 0,
	}
}

// Pruner enforces the retention policy on an audit store.
//
// Pruning runs in two phases: age-based (records older than Days) and
// count-based (oldest records beyond MaxRecords). Either phase can be
// disabled by its zero value.
type Pruner struct {
	store  Store
	config RetentionConfig
	cron   *cron.Cron
	logger *slog.Logger

	mu      sync.Mutex
	running bool
}

// NewPruner creates a pruner for store.
func NewPruner(store Store, config RetentionConfig, logger *slog.Logger) *Pruner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pruner{
		store:  store,
		config: config,
		cron:   cron.New(),
		logger: logger.With("component", "audit.retention"),
	}
}

// Prune runs both retention phases once and returns the total number of
// records deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	var total int64

	if p.config.Days > 0 {
		cutoff := time.Now().AddDate(0, 0, -p.config.Days)
		deleted, err := p.store.DeleteBefore(ctx, cutoff)
		if err != nil {
			return total, fmt.Errorf("prune by age: %w", err)
		}
		total += deleted
		if deleted > 0 {
			p.logger.Info("Pruned audit records by age",
				"deleted", deleted,
				"retention_days", p.config.Days,
			)
		}
	}

	if p.config.MaxRecords > 0 {
		count, err := p.store.Count(ctx, Query{})
		if err != nil {
			return total, fmt.Errorf("prune by count: %w", err)
		}
		if excess := count - p.config.MaxRecords; excess > 0 {
			deleted, err := p.store.DeleteOldest(ctx, excess)
			if err != nil {
				return total, fmt.Errorf("prune by count: %w", err)
			}
			total += deleted
			p.logger.Info("Pruned audit records by count",
				"deleted", deleted,
				"max_records", p.config.MaxRecords,
			)
		}
	}

	if total == 0 {
		p.logger.Debug("Nothing to prune",
			"retention_days", p.config.Days,
			"max_records", p.config.MaxRecords,
		)
	}

	return total, nil
}

// Start schedules automatic pruning per the configured cron expression.
// With an empty schedule it does nothing. The scheduler stops itself when
// ctx is cancelled.
func (p *Pruner) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.config.Schedule == "" {
		p.logger.Info("Retention schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(p.config.Schedule); err != nil {
		return fmt.Errorf("invalid retention schedule %q: %w", p.config.Schedule, err)
	}

	_, err := p.cron.AddFunc(p.config.Schedule, func() {
		deleted, err := p.Prune(ctx)
		if err != nil {
			p.logger.Error("Scheduled pruning failed", "error", err)
			return
		}
		if deleted > 0 {
			p.logger.Info("Scheduled pruning completed", "deleted", deleted)
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling retention pruning: %w", err)
	}

	p.cron.Start()
	p.running = true

	p.logger.Info("Retention scheduler started",
		"schedule", p.config.Schedule,
		"retention_days", p.config.Days,
		"max_records", p.config.MaxRecords,
	)

	go func() {
		<-ctx.Done()
		p.Stop()
	}()

	return nil
}

// Stop halts the scheduler, waiting for a running prune to finish.
func (p *Pruner) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		stopCtx := p.cron.Stop()
		<-stopCtx.Done()
		p.running = false
		p.logger.Info("Retention scheduler stopped")
	}
}

// NextRun returns the next scheduled pruning time, or nil when the
// scheduler is not running.
func (p *Pruner) NextRun() *time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return nil
	}
	entries := p.cron.Entries()
	if len(entries) == 0 {
		return nil
	}
	next := entries[0].Next
	return &next
}
