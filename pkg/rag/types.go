package rag

import "context"

// Context is one retrieved passage, produced by the search collaborator and
// consumed read-only by the prompt builder.
type Context struct {
	// Content is the passage text
	Content string `json:"content"`

	// Metadata carries source attribution and any collaborator-specific
	// fields; only "sourceName" is interpreted here
	Metadata map[string]interface{} `json:"metadata"`

	// RelevanceScore is the collaborator's ranking score, higher is better
	RelevanceScore float64 `json:"relevance_score"`
}

// SourceName returns the passage's source attribution, empty when the
// collaborator supplied none.
func (c Context) SourceName() string {
	if c.Metadata == nil {
		return ""
	}
	if name, ok := c.Metadata["sourceName"].(string); ok {
		return name
	}
	return ""
}

// Searcher is the vector-search collaborator boundary. An empty result is a
// valid "no relevant context" outcome, not an error.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]Context, error)
}
