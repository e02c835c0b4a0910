// Package audit persists one record per suggestion request so operators can
// answer, after the fact, which provider served a conversation, whether
// retrieval enhancement or the canned fallback was involved, and how long
// the request took.
//
// Records never contain conversation content or raw conversation
// identifiers: the transcript is reduced to its length and the conversation
// id to a SHA-256 digest before anything is enqueued. Failure summaries are
// scrubbed for credential-shaped substrings on top of the redaction the
// provider errors already apply.
//
// Writes are asynchronous. The Recorder enqueues onto a bounded channel
// drained by a single worker, so the suggestion path never blocks on
// storage; when the buffer is full the record is dropped and counted rather
// than queued. Retention is enforced by a cron-scheduled Pruner that deletes
// by age and, optionally, by total record count.
package audit
