package providers

import (
	"context"
	"log/slog"
	"time"
)

// RunHealthRefresher periodically re-probes a provider whose health snapshot
// has gone stale, so request-handling paths can rely on the cached verdict
// without ever probing inline. It blocks until the context is cancelled and
// is intended to run in its own goroutine, one per cached provider instance.
//
// interval controls how often staleness is evaluated; staleAfter is the
// snapshot age beyond which a fresh probe is issued. Probes run under the
// provider's own probe timeout.
func RunHealthRefresher(ctx context.Context, p Provider, interval, staleAfter time.Duration, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "providers.health", "kind", p.GetKind())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Debug("health refresher started",
		"interval", interval,
		"stale_after", staleAfter,
	)

	for {
		select {
		case <-ctx.Done():
			logger.Debug("health refresher stopped")
			return

		case <-ticker.C:
			if !p.GetHealth().Stale(time.Now(), staleAfter) {
				continue
			}

			healthy := p.HealthCheck(ctx)
			logger.Debug("background health probe completed", "healthy", healthy)
		}
	}
}
