package providers

import (
	"strings"

	"caseflow-hq/polaris/pkg/transcript"
)

// BuildChatMessages converts conversation text into the role-tagged message
// array chat-completion upstreams expect, prepending the optional system
// prompt.
//
// Text carrying the enhancement marker is sent as a single user turn with
// the marker stripped; re-parsing it would split the injected context block
// into bogus dialogue. Unmarked text is parsed into turns; when no role
// markers are found at all, the whole text is treated as one unattributed
// user message.
func BuildChatMessages(text, systemPrompt string) []Message {
	messages := make([]Message, 0, 8)

	if systemPrompt != "" {
		messages = append(messages, Message{Role: RoleSystem, Content: systemPrompt})
	}

	if transcript.IsEnhanced(text) {
		return append(messages, Message{Role: RoleUser, Content: transcript.StripMarker(text)})
	}

	pairs := transcript.Parse(text)
	if len(pairs) == 0 {
		return append(messages, Message{Role: RoleUser, Content: strings.TrimSpace(text)})
	}

	for _, pair := range pairs {
		messages = append(messages, Message{Role: RoleUser, Content: pair.User})
		if pair.Assistant != "" {
			messages = append(messages, Message{Role: RoleAssistant, Content: pair.Assistant})
		}
	}

	return messages
}
