// Package rag assembles retrieval-augmented prompts for providers without
// built-in document retrieval.
//
// The builder extracts the customer's latest question from the transcript,
// asks the vector-search collaborator for relevant passages, and wraps the
// conversation in grounding instructions plus a context block. When the
// collaborator has nothing relevant, the original text passes through
// untouched.
package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"caseflow-hq/polaris/pkg/transcript"
)

// DefaultTopK is how many passages are requested when the caller does not
// say otherwise.
const DefaultTopK = 4

// EnhancedPrompt is the outcome of one enhancement pass.
type EnhancedPrompt struct {
	// Text is the prompt to send upstream. Equal to the original input
	// when no contexts were used, marker-tagged otherwise.
	Text string

	// ContextsUsed is how many retrieved passages were folded in
	ContextsUsed int

	// Sources lists source attributions in context order; unattributed
	// passages contribute an empty entry
	Sources []string
}

// Builder constructs enhanced prompts from transcripts and retrieved
// context.
type Builder struct {
	searcher Searcher
	logger   *slog.Logger
}

// NewBuilder creates a prompt builder around the given search collaborator.
func NewBuilder(searcher Searcher, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		searcher: searcher,
		logger:   logger.With("component", "rag"),
	}
}

// BuildEnhancedPrompt retrieves up to k passages relevant to the most recent
// user message in rawQuery and assembles the grounded prompt.
//
// With zero retrieved contexts the returned Text is exactly rawQuery: a
// passthrough, with no marker, so the downstream provider handles the text
// as it would have without enhancement. showSources appends a cite-by-index
// instruction to the prompt.
func (b *Builder) BuildEnhancedPrompt(ctx context.Context, rawQuery string, k int, showSources bool) (*EnhancedPrompt, error) {
	if k <= 0 {
		k = DefaultTopK
	}

	query := transcript.LatestUserMessage(rawQuery)

	contexts, err := b.searcher.Search(ctx, query, k)
	if err != nil {
		return nil, fmt.Errorf("context search failed: %w", err)
	}

	if len(contexts) == 0 {
		b.logger.Debug("no relevant context found, passing query through", "query_chars", len(query))
		return &EnhancedPrompt{Text: rawQuery, Sources: []string{}}, nil
	}

	sources := make([]string, len(contexts))
	var block strings.Builder

	block.WriteString("You are a customer support assistant. Answer using the reference context below.\n")
	block.WriteString("Do not contradict the reference context. If it does not cover the question, say so instead of inventing an answer.\n\n")
	block.WriteString("Reference context:\n")

	for i, c := range contexts {
		sources[i] = c.SourceName()
		if sources[i] != "" {
			block.WriteString(fmt.Sprintf("- [%d] (%s) %s\n", i+1, sources[i], strings.TrimSpace(c.Content)))
		} else {
			block.WriteString(fmt.Sprintf("- [%d] %s\n", i+1, strings.TrimSpace(c.Content)))
		}
	}

	if showSources {
		block.WriteString("\nWhen you rely on the reference context, cite sources by their index, e.g. [1].\n")
	}

	block.WriteString("\nConversation:\n")
	block.WriteString(rawQuery)

	b.logger.Debug("assembled enhanced prompt",
		"contexts_used", len(contexts),
		"show_sources", showSources,
	)

	return &EnhancedPrompt{
		Text:         transcript.MarkEnhanced(block.String()),
		ContextsUsed: len(contexts),
		Sources:      sources,
	}, nil
}
