// Package suggest implements the reply-suggestion pipeline.
//
// One request walks a fixed sequence of states: resolve-config, health-gate,
// rag-enhance (optional), generate with retries, finalize. The pipeline never
// returns an error to its caller. Every failure path produces a deterministic
// canned apology with UsedFallback set, and the Result's Trace records which
// states actually ran so operators can reconstruct what happened from a
// single log line.
package suggest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"caseflow-hq/polaris/pkg/providerfactory"
	"caseflow-hq/polaris/pkg/providers"
	"caseflow-hq/polaris/pkg/rag"
	"caseflow-hq/polaris/pkg/retry"
	"caseflow-hq/polaris/pkg/settings"
	"caseflow-hq/polaris/pkg/transcript"
)

// SettingsSource resolves which provider a request should use. It is
// consulted once per request, so a runtime switch applies to the next
// request without any coordination with in-flight ones.
type SettingsSource interface {
	Active(ctx context.Context) (settings.Selection, error)
	ConfigFor(ctx context.Context, kind string) (providers.Config, error)
	SetActive(ctx context.Context, kind string) error
}

// ProviderRegistry caches one live provider instance per kind.
type ProviderRegistry interface {
	GetOrCreate(kind string, config providers.Config) (providers.Provider, error)
	SwitchTo(kind string, config providers.Config) (providers.Provider, error)
	DefaultKind() string
}

// PromptEnhancer folds retrieved knowledge-base passages into a prompt.
type PromptEnhancer interface {
	BuildEnhancedPrompt(ctx context.Context, rawQuery string, k int, showSources bool) (*rag.EnhancedPrompt, error)
}

// SpanStarter starts named spans around pipeline states.
type SpanStarter interface {
	Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span)
}

// noopTracer backs span creation when no tracer is injected, so state
// helpers can End() unconditionally.
var noopTracer = trace.NewNoopTracerProvider().Tracer("caseflow-hq/polaris/pkg/suggest")

// Options configures an Orchestrator. Settings and Registry are required;
// everything else has a usable zero value.
type Options struct {
	// Settings resolves the active provider selection per request.
	Settings SettingsSource

	// Registry caches provider instances.
	Registry ProviderRegistry

	// Enhancer supplies retrieval enhancement. Nil disables the
	// rag-enhance state regardless of what callers request.
	Enhancer PromptEnhancer

	// MaxRetries is the total number of generate attempts per request.
	// Default: 3
	MaxRetries int

	// BaseDelay is the backoff before the second attempt; later delays
	// double. Default: 2s
	BaseDelay time.Duration

	// HealthStaleAfter is how old a health snapshot may grow before the
	// health gate probes instead of trusting it. Default: 5m
	HealthStaleAfter time.Duration

	// RequestTimeout bounds one whole request including retries and
	// backoff. Zero leaves the caller's context deadline in charge.
	RequestTimeout time.Duration

	// RAGTopK is how many passages to retrieve per request. Default: 4
	RAGTopK int

	// RAGShowSources asks the enhancer to append a cite-by-index
	// instruction to enhanced prompts.
	RAGShowSources bool

	// Now is the clock used for staleness decisions and durations.
	// Nil means time.Now. Tests inject a fake.
	Now func() time.Time

	// Sleep waits between retry attempts. Nil sleeps for real.
	Sleep func(ctx context.Context, d time.Duration) error

	// Tracer starts spans around pipeline states. Nil disables tracing.
	Tracer SpanStarter

	// Logger receives pipeline events. Nil means slog.Default.
	Logger *slog.Logger
}

// Orchestrator runs the suggestion pipeline.
//
// It is safe for concurrent use: per-request state lives on the stack, and
// the shared collaborators (settings, registry, provider health) do their
// own locking.
type Orchestrator struct {
	settings SettingsSource
	registry ProviderRegistry
	enhancer PromptEnhancer

	maxRetries     int
	baseDelay      time.Duration
	staleAfter     time.Duration
	requestTimeout time.Duration
	ragTopK        int
	ragShowSources bool

	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration) error
	tracer SpanStarter
	logger *slog.Logger
}

// NewOrchestrator validates opts, fills in defaults, and returns a ready
// pipeline.
func NewOrchestrator(opts Options) (*Orchestrator, error) {
	if opts.Settings == nil {
		return nil, errors.New("suggest: settings source is required")
	}
	if opts.Registry == nil {
		return nil, errors.New("suggest: provider registry is required")
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = retry.DefaultMaxRetries
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = retry.DefaultBaseDelay
	}
	if opts.HealthStaleAfter <= 0 {
		opts.HealthStaleAfter = providers.DefaultHealthStaleAfter
	}
	if opts.RAGTopK <= 0 {
		opts.RAGTopK = rag.DefaultTopK
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	return &Orchestrator{
		settings:       opts.Settings,
		registry:       opts.Registry,
		enhancer:       opts.Enhancer,
		maxRetries:     opts.MaxRetries,
		baseDelay:      opts.BaseDelay,
		staleAfter:     opts.HealthStaleAfter,
		requestTimeout: opts.RequestTimeout,
		ragTopK:        opts.RAGTopK,
		ragShowSources: opts.RAGShowSources,
		now:            opts.Now,
		sleep:          opts.Sleep,
		tracer:         opts.Tracer,
		logger:         opts.Logger.With("component", "suggest"),
	}, nil
}

// GenerateSuggestion runs the pipeline for one conversation and always
// returns a usable Result. Provider trouble of any sort, including a
// provider that cannot even be constructed, degrades to a canned apology
// with UsedFallback set rather than an error.
func (o *Orchestrator) GenerateSuggestion(ctx context.Context, conversationID, transcriptText string, enableRAG bool) Result {
	started := o.now()

	if o.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.requestTimeout)
		defer cancel()
	}

	ctx, span := o.startSpan(ctx, "suggest.request")
	defer span.End()

	res := Result{
		ID:    uuid.NewString(),
		Trace: make([]string, 0, 6),
	}

	res.Trace = append(res.Trace, StateResolveConfig)
	rctx, rspan := o.startSpan(ctx, "suggest.resolve-config")
	provider, kind, err := o.resolveProvider(rctx)
	rspan.End()
	res.Provider = kind
	if err != nil {
		o.logger.ErrorContext(ctx, "No provider available",
			"suggestion_id", res.ID,
			"conversation_id", conversationID,
			"error", err,
		)
		res.FailureReason = err.Error()
		return o.finalize(ctx, span, res, transcriptText, started, true)
	}

	res.Trace = append(res.Trace, StateHealthGate)
	hctx, hspan := o.startSpan(ctx, "suggest.health-gate")
	healthy := o.gateHealth(hctx, provider)
	hspan.End()
	if !healthy {
		o.logger.WarnContext(ctx, "Provider unhealthy, skipping generate",
			"suggestion_id", res.ID,
			"kind", kind,
		)
		res.FailureReason = fmt.Sprintf("provider %q failed its health check", kind)
		return o.finalize(ctx, span, res, transcriptText, started, true)
	}

	text := transcriptText
	if enableRAG && o.enhancer != nil && !provider.GetCapabilities().BuiltinRetrieval {
		res.Trace = append(res.Trace, StateRAGEnhance)
		text = o.enhance(ctx, transcriptText, &res)
	}

	res.Trace = append(res.Trace, StateGenerate)
	reply, genErr := o.generate(ctx, provider, text, conversationID, &res)
	if res.Retries > 0 {
		res.Trace = append(res.Trace, StateRetry)
	}

	if genErr != nil {
		// Only transport-level failure flips health. A malformed body
		// means the endpoint is reachable but misbehaving, and a probe
		// would report it healthy again immediately.
		if providers.IsRetryable(genErr) {
			provider.MarkUnhealthy(genErr)
		}
		o.logger.ErrorContext(ctx, "Generate failed",
			"suggestion_id", res.ID,
			"kind", kind,
			"retries", res.Retries,
			"error", genErr,
		)
		res.FailureReason = genErr.Error()
		return o.finalize(ctx, span, res, transcriptText, started, true)
	}

	if strings.TrimSpace(reply) == "" {
		// Upstream answered, but with nothing usable.
		o.logger.WarnContext(ctx, "Empty reply from provider",
			"suggestion_id", res.ID,
			"kind", kind,
		)
		provider.MarkHealthy()
		res.FailureReason = fmt.Sprintf("provider %q returned an empty reply", kind)
		return o.finalize(ctx, span, res, transcriptText, started, true)
	}

	provider.MarkHealthy()
	res.ResponseText = reply
	return o.finalize(ctx, span, res, transcriptText, started, false)
}

// SwitchProvider makes kind the active provider for subsequent requests.
//
// The fresh instance is constructed and swapped into the registry before the
// selection is persisted, so a switch to a misconfigured kind fails cleanly
// and leaves both the cache and the active selection untouched. The replaced
// instance is discarded.
func (o *Orchestrator) SwitchProvider(ctx context.Context, kind string) error {
	canonical := providerfactory.NormalizeKind(kind)

	cfg, err := o.settings.ConfigFor(ctx, canonical)
	if err != nil {
		return fmt.Errorf("resolving config for %q: %w", canonical, err)
	}

	if _, err := o.registry.SwitchTo(canonical, cfg); err != nil {
		return err
	}

	if err := o.settings.SetActive(ctx, canonical); err != nil {
		return fmt.Errorf("provider switched but selection not persisted: %w", err)
	}

	o.logger.InfoContext(ctx, "Provider switched", "kind", canonical)
	return nil
}

// resolveProvider obtains the active provider instance. A construction
// failure for a non-default kind triggers exactly one fallback attempt
// against the default kind; a failure of the default itself does not.
func (o *Orchestrator) resolveProvider(ctx context.Context) (providers.Provider, string, error) {
	sel, err := o.settings.Active(ctx)
	if err != nil {
		o.logger.WarnContext(ctx, "Settings resolution failed, trying default provider", "error", err)
		p, ferr := o.fallbackProvider(ctx)
		if ferr != nil {
			return nil, "", fmt.Errorf("resolving active provider: %w", err)
		}
		return p, p.GetKind(), nil
	}

	kind := providerfactory.NormalizeKind(sel.Kind)
	p, err := o.registry.GetOrCreate(kind, sel.Config)
	if err == nil {
		return p, kind, nil
	}
	if kind == o.registry.DefaultKind() {
		return nil, kind, err
	}

	o.logger.WarnContext(ctx, "Preferred provider unavailable, falling back to default",
		"kind", kind,
		"default_kind", o.registry.DefaultKind(),
		"error", err,
	)
	p, ferr := o.fallbackProvider(ctx)
	if ferr != nil {
		return nil, kind, fmt.Errorf("fallback after %q: %w", kind, ferr)
	}
	return p, p.GetKind(), nil
}

func (o *Orchestrator) fallbackProvider(ctx context.Context) (providers.Provider, error) {
	def := o.registry.DefaultKind()
	cfg, err := o.settings.ConfigFor(ctx, def)
	if err != nil {
		return nil, fmt.Errorf("resolving default provider config: %w", err)
	}
	return o.registry.GetOrCreate(def, cfg)
}

// gateHealth decides whether the provider may serve this request. A stale
// snapshot triggers a live probe; a fresh one is trusted as-is, which keeps
// probes off the hot path between staleness windows.
func (o *Orchestrator) gateHealth(ctx context.Context, p providers.Provider) bool {
	h := p.GetHealth()
	if h.Stale(o.now(), o.staleAfter) {
		return p.HealthCheck(ctx)
	}
	return h.Healthy
}

// enhance runs retrieval enhancement, recording provenance on the result.
// Search failure degrades to the raw transcript rather than failing the
// request.
func (o *Orchestrator) enhance(ctx context.Context, transcriptText string, res *Result) string {
	ctx, span := o.startSpan(ctx, "suggest.rag-enhance")
	defer span.End()

	turns := transcript.Parse(transcriptText)
	o.logger.DebugContext(ctx, "Parsed transcript",
		"suggestion_id", res.ID,
		"turns", len(turns),
	)

	enhanced, err := o.enhancer.BuildEnhancedPrompt(ctx, transcriptText, o.ragTopK, o.ragShowSources)
	if err != nil {
		o.logger.WarnContext(ctx, "Context search failed, continuing without enhancement",
			"suggestion_id", res.ID,
			"error", err,
		)
		return transcriptText
	}
	if enhanced.ContextsUsed == 0 {
		return enhanced.Text
	}

	res.UsedRAG = true
	res.Sources = enhanced.Sources
	span.SetAttributes(attribute.Int("suggest.contexts_used", enhanced.ContextsUsed))
	return enhanced.Text
}

// generate calls the provider through the retry executor, counting attempts
// so the trace and metrics can report how hard the request was.
func (o *Orchestrator) generate(ctx context.Context, p providers.Provider, text, conversationID string, res *Result) (string, error) {
	ctx, span := o.startSpan(ctx, "suggest.generate")
	defer span.End()

	attempts := 0
	reply, err := retry.Do(ctx, retry.Config{
		MaxRetries: o.maxRetries,
		BaseDelay:  o.baseDelay,
		RetryIf:    providers.IsRetryable,
		Sleep:      o.sleep,
	}, func(ctx context.Context) (string, error) {
		attempts++
		return p.GenerateReply(ctx, text, conversationID)
	})
	if attempts > 0 {
		res.Retries = attempts - 1
	}
	return reply, err
}

// finalize stamps the last trace entry, picks the apology when the pipeline
// fell back, and freezes the result.
func (o *Orchestrator) finalize(ctx context.Context, span trace.Span, res Result, transcriptText string, started time.Time, fellBack bool) Result {
	res.Trace = append(res.Trace, StateFinalize)
	res.UsedFallback = fellBack
	if fellBack {
		res.ResponseText = SelectApology(transcriptText)
	}
	res.Duration = o.now().Sub(started)

	span.SetAttributes(
		attribute.String("suggest.id", res.ID),
		attribute.String("suggest.provider", res.Provider),
		attribute.Bool("suggest.used_rag", res.UsedRAG),
		attribute.Bool("suggest.used_fallback", res.UsedFallback),
		attribute.Int("suggest.retries", res.Retries),
	)
	o.logger.InfoContext(ctx, "Suggestion finished",
		"suggestion_id", res.ID,
		"provider", res.Provider,
		"used_rag", res.UsedRAG,
		"used_fallback", res.UsedFallback,
		"retries", res.Retries,
		"duration_ms", res.Duration.Milliseconds(),
		"trace", strings.Join(res.Trace, ","),
	)
	return res
}

func (o *Orchestrator) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if o.tracer != nil {
		return o.tracer.Start(ctx, name)
	}
	return noopTracer.Start(ctx, name)
}
