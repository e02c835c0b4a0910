package transcript

import "strings"

// Role markers recognized at the start of a transcript line. Matching is
// exact on the prefix including the colon; surrounding whitespace on the
// line is trimmed first.
var (
	userMarkers      = []string{"Customer:", "User:"}
	assistantMarkers = []string{"Assistant:", "Agent:", "You:"}
)

// TurnPair is one user message paired with the assistant reply that followed
// it. Assistant is empty when the user message was never answered.
type TurnPair struct {
	User      string
	Assistant string
}

// Parse turns a line-oriented transcript into ordered (user, assistant)
// pairs.
//
// A line opening with a user marker starts a pending turn; if a prior turn
// was still awaiting its reply it is flushed first, paired with an empty
// assistant message. A line opening with an assistant marker closes the
// pending turn. A trailing unanswered user message is emitted paired with an
// empty string. Lines without a recognized marker are ignored, so a
// transcript with no markers at all yields an empty slice; callers then
// treat the whole transcript as a single unattributed user message.
//
// Parse is deterministic and idempotent: the same transcript always yields
// the same pairs.
func Parse(transcript string) []TurnPair {
	pairs := make([]TurnPair, 0)

	var pendingUser string
	awaitingAssistant := false

	for _, line := range splitLines(transcript) {
		if text, ok := matchMarker(line, userMarkers); ok {
			if awaitingAssistant {
				// Unanswered prior turn.
				pairs = append(pairs, TurnPair{User: pendingUser})
			}
			pendingUser = text
			awaitingAssistant = true
			continue
		}

		if text, ok := matchMarker(line, assistantMarkers); ok {
			if awaitingAssistant {
				pairs = append(pairs, TurnPair{User: pendingUser, Assistant: text})
				pendingUser = ""
				awaitingAssistant = false
			}
			// An assistant line with no pending user turn is dropped.
			continue
		}
	}

	if awaitingAssistant {
		pairs = append(pairs, TurnPair{User: pendingUser})
	}

	return pairs
}

// LatestUserMessage extracts the most recent line not attributed to the
// assistant, stripped of its user marker when present. When the transcript
// has no such line the whole trimmed transcript is returned, so callers
// always get something to work with.
func LatestUserMessage(transcript string) string {
	lines := splitLines(transcript)

	for i := len(lines) - 1; i >= 0; i-- {
		line := lines[i]
		if _, ok := matchMarker(line, assistantMarkers); ok {
			continue
		}
		if text, ok := matchMarker(line, userMarkers); ok {
			return text
		}
		return line
	}

	return strings.TrimSpace(normalizeNewlines(transcript))
}

// splitLines normalizes escaped newlines and returns the trimmed, non-blank
// lines of the transcript.
func splitLines(transcript string) []string {
	normalized := normalizeNewlines(transcript)

	var lines []string
	for _, raw := range strings.Split(normalized, "\n") {
		line := strings.TrimSpace(raw)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// normalizeNewlines converts literal backslash escapes into real line breaks.
// Transcripts that round-trip through JSON string fields arrive with their
// newlines escaped.
func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, `\r\n`, "\n")
	s = strings.ReplaceAll(s, `\n`, "\n")
	return strings.ReplaceAll(s, "\r\n", "\n")
}

// matchMarker reports whether line opens with one of the markers, returning
// the text after the marker with surrounding whitespace stripped.
func matchMarker(line string, markers []string) (string, bool) {
	for _, marker := range markers {
		if strings.HasPrefix(line, marker) {
			return strings.TrimSpace(strings.TrimPrefix(line, marker)), true
		}
	}
	return "", false
}
