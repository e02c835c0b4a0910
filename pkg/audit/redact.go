package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
)

// scrubPatterns match credential-shaped substrings in failure summaries.
// Provider errors already redact the secrets they know about; this is the
// last line of defense before a string reaches disk.
var scrubPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)bearer\s+[a-zA-Z0-9\-._~+/]+=*`),
	regexp.MustCompile(`(?i)(api[-_]?key|token|secret)["' :=]+[a-zA-Z0-9\-._]{8,}`),
	regexp.MustCompile(`\bsk-[a-zA-Z0-9\-_]{8,}\b`),
}

const scrubbedPlaceholder = "[REDACTED]"

// ScrubSecrets replaces credential-shaped substrings in s with a
// placeholder.
func ScrubSecrets(s string) string {
	if s == "" {
		return s
	}
	for _, p := range scrubPatterns {
		s = p.ReplaceAllString(s, scrubbedPlaceholder)
	}
	return s
}

// HashConversationID reduces a conversation id to a stable SHA-256 digest.
// Same conversation, same hash, so records remain correlatable without the
// raw id ever being persisted. Returns an empty string for an empty id.
func HashConversationID(id string) string {
	if id == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(id))
	return "sha256:" + hex.EncodeToString(sum[:])
}
