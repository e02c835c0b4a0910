// Package settings resolves which provider the suggestion pipeline talks to
// and with what connection parameters.
//
// Resolution layers three sources, highest precedence first:
//
//  1. the settings store, a small SQLite database written by runtime
//     provider switches,
//  2. POLARIS_* environment variables,
//  3. per-kind defaults from the configuration file.
//
// The resolver is consulted once per request, so a switch persisted by one
// request is picked up by the next without any restart. Reads never block on
// writers; file defaults are swapped atomically on configuration reload.
package settings

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"caseflow-hq/polaris/pkg/providers"
)

// Selection is a resolved active provider: the kind to use and the merged
// configuration to construct it with.
type Selection struct {
	Kind   string
	Config providers.Config
}

// Defaults carries the file-configured base layer of provider settings.
type Defaults struct {
	// DefaultKind is the kind used when neither the store nor the
	// environment selects one.
	DefaultKind string

	// Configs holds the base config per canonical kind. Missing kinds
	// resolve to a zero config, which the variant constructors reject.
	Configs map[string]providers.Config
}

// Resolver resolves the active provider selection for each request.
//
// All methods are safe for concurrent use.
type Resolver struct {
	store    *Store
	defaults atomic.Pointer[Defaults]
	override atomic.Pointer[string]
	logger   *slog.Logger
}

// NewResolver creates a resolver over the given store and file defaults.
// store may be nil, in which case runtime switches only last until restart.
func NewResolver(store *Store, defaults Defaults, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}

	r := &Resolver{
		store:  store,
		logger: logger.With("component", "settings.resolver"),
	}
	r.defaults.Store(&defaults)

	return r
}

// Active resolves the current provider selection.
func (r *Resolver) Active(ctx context.Context) (Selection, error) {
	kind, err := r.activeKind(ctx)
	if err != nil {
		return Selection{}, err
	}

	cfg, err := r.ConfigFor(ctx, kind)
	if err != nil {
		return Selection{}, err
	}

	return Selection{Kind: kind, Config: cfg}, nil
}

// ConfigFor resolves the merged configuration for a specific kind, useful
// when constructing the fallback provider after the preferred one failed.
func (r *Resolver) ConfigFor(ctx context.Context, kind string) (providers.Config, error) {
	cfg := r.fileConfig(kind)
	cfg = envOverlay(kind, cfg)

	if r.store != nil {
		row, ok, err := r.store.RowFor(ctx, kind)
		if err != nil {
			return providers.Config{}, fmt.Errorf("settings store read failed: %w", err)
		}
		if ok {
			cfg = row.overlay(cfg)
		}
	}

	cfg.Kind = kind
	return cfg, nil
}

// SetActive records kind as the active provider. With a store attached the
// choice survives restarts; without one it lasts for the process lifetime.
func (r *Resolver) SetActive(ctx context.Context, kind string) error {
	if r.store != nil {
		if err := r.store.SetActiveKind(ctx, kind); err != nil {
			return fmt.Errorf("persisting active provider failed: %w", err)
		}
	}

	r.override.Store(&kind)
	r.logger.Info("active provider updated", "kind", kind, "persisted", r.store != nil)

	return nil
}

// SaveConfig stores per-kind overrides in the settings store.
func (r *Resolver) SaveConfig(ctx context.Context, row Row) error {
	if r.store == nil {
		return fmt.Errorf("no settings store configured")
	}
	return r.store.UpsertRow(ctx, row)
}

// SetDefaults swaps the file-configured base layer, applied by the next
// resolution. Called on configuration reload.
func (r *Resolver) SetDefaults(defaults Defaults) {
	r.defaults.Store(&defaults)
	r.logger.Info("provider defaults reloaded", "default_kind", defaults.DefaultKind)
}

// activeKind resolves just the kind, walking store, in-process override,
// environment and file default in that order.
func (r *Resolver) activeKind(ctx context.Context) (string, error) {
	if r.store != nil {
		kind, ok, err := r.store.ActiveKind(ctx)
		if err != nil {
			return "", fmt.Errorf("settings store read failed: %w", err)
		}
		if ok {
			return kind, nil
		}
	}

	if kind := r.override.Load(); kind != nil && *kind != "" {
		return *kind, nil
	}

	if kind := envProviderKind(); kind != "" {
		return kind, nil
	}

	d := r.defaults.Load()
	if d.DefaultKind != "" {
		return d.DefaultKind, nil
	}

	return providers.KindFlowise, nil
}

// fileConfig returns a copy of the file default for kind.
func (r *Resolver) fileConfig(kind string) providers.Config {
	d := r.defaults.Load()
	if d.Configs == nil {
		return providers.Config{}
	}
	return d.Configs[kind]
}
