package providers

import "strings"

// redactedPlaceholder replaces secret values wherever they appear in text
// destined for errors, logs or audit records.
const redactedPlaceholder = "[REDACTED]"

// RedactSecrets replaces every occurrence of the given secrets in s with a
// placeholder. Empty and very short secrets are skipped; replacing them
// would shred unrelated text.
func RedactSecrets(s string, secrets ...string) string {
	for _, secret := range secrets {
		if len(secret) < 6 {
			continue
		}
		s = strings.ReplaceAll(s, secret, redactedPlaceholder)
	}
	return s
}

// truncate caps s at n bytes, marking the cut.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "...(truncated)"
}
