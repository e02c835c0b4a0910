package audit

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// RecorderConfig configures the async recorder.
type RecorderConfig struct {
	// BufferSize is the capacity of the async write channel. When the
	// buffer is full, records are dropped and counted, never queued.
	// Default: 256
	BufferSize int

	// WriteTimeout bounds a single storage write.
	// Default: 5 seconds
	WriteTimeout time.Duration
}

// DefaultRecorderConfig returns the default recorder configuration.
func DefaultRecorderConfig() *RecorderConfig {
	return &RecorderConfig{
		BufferSize:   256,
		WriteTimeout: 5 * time.Second,
	}
}

// Recorder writes audit records asynchronously so the suggestion path never
// blocks on storage. A single worker drains the buffer; Close drains
// whatever is still queued before returning.
type Recorder struct {
	store   Store
	config  *RecorderConfig
	records chan *Record
	done    chan struct{}
	wg      sync.WaitGroup
	dropped atomic.Int64
	logger  *slog.Logger
}

// NewRecorder starts a recorder writing to store.
func NewRecorder(store Store, config *RecorderConfig, logger *slog.Logger) *Recorder {
	if config == nil {
		config = DefaultRecorderConfig()
	}
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultRecorderConfig().BufferSize
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = DefaultRecorderConfig().WriteTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &Recorder{
		store:   store,
		config:  config,
		records: make(chan *Record, config.BufferSize),
		done:    make(chan struct{}),
		logger:  logger.With("component", "audit.recorder"),
	}

	r.wg.Add(1)
	go r.worker()

	r.logger.Info("Audit recorder started",
		"buffer_size", config.BufferSize,
		"write_timeout", config.WriteTimeout,
	)

	return r
}

// Record enqueues rec for asynchronous persistence. The error summary is
// scrubbed before the record leaves the caller's goroutine. Returns
// ErrBufferFull when the buffer has no room; the record is then dropped.
func (r *Recorder) Record(rec *Record) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	rec.Error = ScrubSecrets(rec.Error)

	select {
	case r.records <- rec:
		return nil
	default:
		total := r.dropped.Add(1)
		r.logger.Error("Audit buffer full, dropping record",
			"record_id", rec.ID,
			"buffer_size", r.config.BufferSize,
			"dropped_total", total,
		)
		return ErrBufferFull
	}
}

// Dropped returns how many records have been dropped since start.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// Close stops the recorder, draining queued records first.
func (r *Recorder) Close() error {
	close(r.done)
	r.wg.Wait()
	r.logger.Info("Audit recorder stopped", "dropped_total", r.dropped.Load())
	return nil
}

func (r *Recorder) worker() {
	defer r.wg.Done()

	for {
		select {
		case rec := <-r.records:
			r.write(rec)

		case <-r.done:
			for {
				select {
				case rec := <-r.records:
					r.write(rec)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) write(rec *Record) {
	ctx, cancel := context.WithTimeout(context.Background(), r.config.WriteTimeout)
	defer cancel()

	start := time.Now()
	if err := r.store.Insert(ctx, rec); err != nil {
		r.logger.Error("Failed to store audit record",
			"record_id", rec.ID,
			"error", err,
		)
		return
	}

	elapsed := time.Since(start)
	r.logger.Debug("Audit record stored",
		"record_id", rec.ID,
		"provider", rec.Provider,
		"used_fallback", rec.UsedFallback,
		"duration_ms", elapsed.Milliseconds(),
	)

	if elapsed > r.config.WriteTimeout/2 {
		r.logger.Warn("Slow audit write",
			"record_id", rec.ID,
			"duration_ms", elapsed.Milliseconds(),
			"threshold_ms", (r.config.WriteTimeout / 2).Milliseconds(),
		)
	}
}
