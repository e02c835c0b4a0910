package providerfactory

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"caseflow-hq/polaris/pkg/providers"
)

// CreateFunc builds a provider variant for a kind. It exists so tests can
// inject scripted constructors; production code uses Create.
type CreateFunc func(kind string, config providers.Config) (providers.Provider, error)

// RegistryOptions configures a Registry.
type RegistryOptions struct {
	// DefaultKind is the safe fallback kind used when the preferred
	// provider cannot be constructed.
	// Default: flowise
	DefaultKind string

	// Create builds variant instances. Nil uses the package factory.
	Create CreateFunc

	// ProbeInterval, when non-zero, starts a background refresher per
	// cached instance that re-probes once the health snapshot is older
	// than StaleAfter.
	ProbeInterval time.Duration

	// StaleAfter is the snapshot age beyond which background refreshers
	// issue a fresh probe.
	// Default: 5 minutes
	StaleAfter time.Duration

	// Logger receives registry lifecycle events. Nil uses slog.Default.
	Logger *slog.Logger
}

// Registry caches one live provider instance per kind.
//
// Instances are created lazily on first use and kept until SwitchTo replaces
// them or Reset drops them. All methods are safe for concurrent use; reads
// on the request path take only the read lock.
type Registry struct {
	mu        sync.RWMutex
	instances map[string]providers.Provider

	create        CreateFunc
	defaultKind   string
	probeInterval time.Duration
	staleAfter    time.Duration
	logger        *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewRegistry creates an empty provider registry.
func NewRegistry(opts RegistryOptions) *Registry {
	if opts.Create == nil {
		opts.Create = Create
	}
	if opts.DefaultKind == "" {
		opts.DefaultKind = providers.KindFlowise
	}
	if opts.StaleAfter == 0 {
		opts.StaleAfter = providers.DefaultHealthStaleAfter
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Registry{
		instances:     make(map[string]providers.Provider),
		create:        opts.Create,
		defaultKind:   NormalizeKind(opts.DefaultKind),
		probeInterval: opts.ProbeInterval,
		staleAfter:    opts.StaleAfter,
		logger:        opts.Logger.With("component", "providerfactory.registry"),
		ctx:           ctx,
		cancel:        cancel,
	}
}

// DefaultKind returns the configured fallback kind.
func (r *Registry) DefaultKind() string {
	return r.defaultKind
}

// Get returns the cached instance for kind without creating one.
func (r *Registry) Get(kind string) (providers.Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.instances[NormalizeKind(kind)]
	return p, ok
}

// GetOrCreate returns the cached instance for kind, creating and caching it
// on first use. Concurrent callers for the same kind get the same instance.
func (r *Registry) GetOrCreate(kind string, config providers.Config) (providers.Provider, error) {
	canonical := NormalizeKind(kind)

	r.mu.RLock()
	p, ok := r.instances[canonical]
	r.mu.RUnlock()
	if ok {
		return p, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Re-check under the write lock; another caller may have won the race.
	if p, ok := r.instances[canonical]; ok {
		return p, nil
	}

	p, err := r.create(canonical, config)
	if err != nil {
		return nil, err
	}

	r.instances[canonical] = p
	r.startRefresher(p)

	r.logger.Info("provider cached",
		"kind", canonical,
		"total_providers", len(r.instances),
	)

	return p, nil
}

// SwitchTo replaces the cached instance for kind with one built from config.
//
// The new instance is constructed before the old one is touched, so a
// failed switch leaves the registry unchanged. The replaced instance is
// closed after the swap.
func (r *Registry) SwitchTo(kind string, config providers.Config) (providers.Provider, error) {
	canonical := NormalizeKind(kind)

	p, err := r.create(canonical, config)
	if err != nil {
		return nil, fmt.Errorf("switch to %q failed: %w", canonical, err)
	}

	r.mu.Lock()
	old, hadOld := r.instances[canonical]
	r.instances[canonical] = p
	r.startRefresher(p)
	r.mu.Unlock()

	if hadOld {
		if err := old.Close(); err != nil {
			r.logger.Warn("error closing replaced provider", "kind", canonical, "error", err)
		}
	}

	r.logger.Info("provider switched", "kind", canonical)

	return p, nil
}

// Status describes one cached provider for operational endpoints.
type Status struct {
	Kind                string    `json:"kind"`
	Healthy             bool      `json:"healthy"`
	LastCheckedAt       time.Time `json:"last_checked_at"`
	LastError           string    `json:"last_error,omitempty"`
	ConsecutiveFailures int       `json:"consecutive_failures,omitempty"`
	BuiltinRetrieval    bool      `json:"builtin_retrieval"`
}

// Statuses returns a health snapshot of every cached instance, sorted by
// kind for stable output.
func (r *Registry) Statuses() []Status {
	r.mu.RLock()
	defer r.mu.RUnlock()

	statuses := make([]Status, 0, len(r.instances))
	for kind, p := range r.instances {
		h := p.GetHealth()
		statuses = append(statuses, Status{
			Kind:                kind,
			Healthy:             h.Healthy,
			LastCheckedAt:       h.LastCheckedAt,
			LastError:           h.LastError,
			ConsecutiveFailures: h.ConsecutiveFailures,
			BuiltinRetrieval:    p.GetCapabilities().BuiltinRetrieval,
		})
	}

	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Kind < statuses[j].Kind })

	return statuses
}

// Kinds returns the kinds currently cached, sorted.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]string, 0, len(r.instances))
	for kind := range r.instances {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)

	return kinds
}

// Reset closes and forgets every cached instance. Subsequent GetOrCreate
// calls rebuild providers from fresh configuration; used after a
// configuration reload.
func (r *Registry) Reset() {
	r.mu.Lock()
	instances := r.instances
	r.instances = make(map[string]providers.Provider)
	r.mu.Unlock()

	for kind, p := range instances {
		if err := p.Close(); err != nil {
			r.logger.Warn("error closing provider during reset", "kind", kind, "error", err)
		}
	}

	if len(instances) > 0 {
		r.logger.Info("registry reset", "dropped_providers", len(instances))
	}
}

// Close stops background refreshers and closes every cached instance.
func (r *Registry) Close() error {
	r.cancel()
	r.Reset()
	return nil
}

// startRefresher launches the background health refresher for p when
// background probing is enabled. Caller holds the write lock.
func (r *Registry) startRefresher(p providers.Provider) {
	if r.probeInterval <= 0 {
		return
	}
	go providers.RunHealthRefresher(r.ctx, p, r.probeInterval, r.staleAfter, r.logger)
}
