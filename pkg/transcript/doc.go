// Package transcript parses line-oriented support-chat transcripts into
// structured conversation turns.
//
// Transcripts arrive as plain text with role markers at line starts:
//
//	Customer: My order never arrived.
//	Agent: Let me look into that for you.
//	Customer: Thanks!
//
// Parse turns this into ordered (user, assistant) pairs. The package also
// owns the enhancement marker that tags retrieval-augmented prompts so
// provider variants know not to re-parse them as dialogue.
package transcript
