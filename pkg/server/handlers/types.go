package handlers

import (
	"context"

	"caseflow-hq/polaris/pkg/audit"
	"caseflow-hq/polaris/pkg/providerfactory"
	"caseflow-hq/polaris/pkg/settings"
	"caseflow-hq/polaris/pkg/suggest"
)

// Suggester runs the suggestion pipeline. Implemented by
// *suggest.Orchestrator.
type Suggester interface {
	GenerateSuggestion(ctx context.Context, conversationID, transcriptText string, enableRAG bool) suggest.Result
	SwitchProvider(ctx context.Context, kind string) error
}

// StatusSource reports the cached provider instances and their health.
// Implemented by *providerfactory.Registry.
type StatusSource interface {
	Statuses() []providerfactory.Status
	DefaultKind() string
}

// ActiveSource resolves which provider kind is currently selected.
// Implemented by *settings.Resolver.
type ActiveSource interface {
	Active(ctx context.Context) (settings.Selection, error)
}

// Auditor records suggestion outcomes asynchronously. Implemented by
// *audit.Recorder.
type Auditor interface {
	Record(rec *audit.Record) error
}
