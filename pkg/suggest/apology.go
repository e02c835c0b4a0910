package suggest

// apologies is the fixed, ordered list of canned fallback replies. Order
// matters: SelectApology indexes into it by transcript length, so editing
// the list changes which apology a given conversation receives.
var apologies = []string{
	"I'm sorry, I wasn't able to put together a suggestion just now. Please try again in a moment.",
	"Apologies, the suggestion service is having trouble right now. Please write your reply manually or retry shortly.",
	"Sorry, I couldn't generate a suggested reply for this conversation. Please try again in a few minutes.",
	"I'm sorry, something went wrong while drafting a reply. Give it another try shortly.",
}

// SelectApology picks the canned reply for a failed request. Selection is
// deterministic in the transcript length (len(transcript) mod the list
// size), so equal-length transcripts always receive the same apology and
// retries of the same request do not flap between texts.
func SelectApology(transcript string) string {
	return apologies[len(transcript)%len(apologies)]
}
