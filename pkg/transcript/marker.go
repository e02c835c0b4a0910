package transcript

import "strings"

// EnhancedPromptMarker tags prompt text that already carries retrieval
// context. Provider variants send marked text as a single user turn instead
// of re-parsing it into dialogue, which would shred the injected context
// block into bogus turns.
const EnhancedPromptMarker = "[[kb-context]]"

// MarkEnhanced prefixes text with the enhancement marker.
func MarkEnhanced(text string) string {
	return EnhancedPromptMarker + "\n" + text
}

// IsEnhanced reports whether text carries the enhancement marker.
func IsEnhanced(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), EnhancedPromptMarker)
}

// StripMarker removes the enhancement marker, returning the prompt body
// unchanged when no marker is present.
func StripMarker(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, EnhancedPromptMarker) {
		return text
	}
	return strings.TrimSpace(strings.TrimPrefix(trimmed, EnhancedPromptMarker))
}
