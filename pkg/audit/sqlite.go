package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// schemaVersion is the current audit database schema version.
const schemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS suggestions (
    id TEXT PRIMARY KEY,
    created_at TIMESTAMP NOT NULL,
    conversation_hash TEXT NOT NULL,
    provider TEXT NOT NULL,
    used_rag BOOLEAN NOT NULL,
    used_fallback BOOLEAN NOT NULL,
    retries INTEGER NOT NULL,
    transcript_chars INTEGER NOT NULL,
    trace TEXT NOT NULL,
    duration_ms INTEGER NOT NULL,
    error TEXT
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_suggestions_created_at ON suggestions(created_at);
CREATE INDEX IF NOT EXISTS idx_suggestions_provider ON suggestions(provider);
CREATE INDEX IF NOT EXISTS idx_suggestions_used_fallback ON suggestions(used_fallback);
CREATE INDEX IF NOT EXISTS idx_suggestions_conversation_hash ON suggestions(conversation_hash);
`

const insertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

const getSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`

// SQLiteConfig configures the SQLite audit store.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns caps open connections.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns caps idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging for concurrent readers.
	// Default: true
	WALMode bool

	// BusyTimeout is how long writes wait on a locked database.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default store configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/audit.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStore implements Store on a local SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStore opens (creating if needed) the audit database at
// config.Path and verifies the schema.
func NewSQLiteStore(config *SQLiteConfig, logger *slog.Logger) (*SQLiteStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, &StorageError{Op: "open", Err: err}
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStore{
		db:     db,
		config: config,
		logger: logger.With("component", "audit.sqlite"),
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	s.logger.Info("Audit store initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
	)

	return s, nil
}

func (s *SQLiteStore) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return &StorageError{Op: "enable_wal", Err: err}
		}
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return &StorageError{Op: "set_busy_timeout", Err: err}
	}

	if _, err := s.db.Exec(schema); err != nil {
		return &StorageError{Op: "create_schema", Err: err}
	}
	if _, err := s.db.Exec(insertSchemaVersion, schemaVersion); err != nil {
		return &StorageError{Op: "insert_schema_version", Err: err}
	}

	var version int
	err := s.db.QueryRow(getSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return &StorageError{Op: "get_schema_version", Err: err}
	}
	if version != schemaVersion {
		return &StorageError{Op: "schema_version_mismatch",
			Err: fmt.Errorf("expected schema version %d, got %d", schemaVersion, version)}
	}

	return nil
}

// Insert persists one audit record.
func (s *SQLiteStore) Insert(ctx context.Context, rec *Record) error {
	trace, _ := json.Marshal(rec.Trace)

	var errVal interface{}
	if rec.Error != "" {
		errVal = rec.Error
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO suggestions (
			id, created_at, conversation_hash, provider,
			used_rag, used_fallback, retries, transcript_chars,
			trace, duration_ms, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID, rec.CreatedAt, rec.ConversationHash, rec.Provider,
		rec.UsedRAG, rec.UsedFallback, rec.Retries, rec.TranscriptChars,
		string(trace), rec.Duration.Milliseconds(), errVal,
	)
	if err != nil {
		return &StorageError{Op: "insert", Err: err}
	}

	return nil
}

// Query returns records matching q, newest first.
func (s *SQLiteStore) Query(ctx context.Context, q Query) ([]*Record, error) {
	where, args := buildWhere(q)

	sqlQuery := "SELECT id, created_at, conversation_hash, provider, used_rag, used_fallback, retries, transcript_chars, trace, duration_ms, error FROM suggestions"
	if where != "" {
		sqlQuery += " WHERE " + where
	}
	sqlQuery += " ORDER BY created_at DESC"

	limit := 100
	if q.Limit > 0 {
		limit = q.Limit
	}
	sqlQuery += fmt.Sprintf(" LIMIT %d", limit)
	if q.Offset > 0 {
		sqlQuery += fmt.Sprintf(" OFFSET %d", q.Offset)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, &StorageError{Op: "query", Err: err}
	}
	defer rows.Close()

	records := []*Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, &StorageError{Op: "scan", Err: err}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Op: "query", Err: err}
	}

	return records, nil
}

// Count returns how many records match q.
func (s *SQLiteStore) Count(ctx context.Context, q Query) (int64, error) {
	where, args := buildWhere(q)

	sqlQuery := "SELECT COUNT(*) FROM suggestions"
	if where != "" {
		sqlQuery += " WHERE " + where
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, &StorageError{Op: "count", Err: err}
	}

	return count, nil
}

// DeleteBefore removes records created strictly before cutoff.
func (s *SQLiteStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM suggestions WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, &StorageError{Op: "delete_before", Err: err}
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, &StorageError{Op: "delete_before", Err: err}
	}

	return deleted, nil
}

// DeleteOldest removes the n oldest records.
func (s *SQLiteStore) DeleteOldest(ctx context.Context, n int64) (int64, error) {
	if n <= 0 {
		return 0, nil
	}

	result, err := s.db.ExecContext(ctx, `
		DELETE FROM suggestions WHERE id IN (
			SELECT id FROM suggestions ORDER BY created_at ASC LIMIT ?
		)
	`, n)
	if err != nil {
		return 0, &StorageError{Op: "delete_oldest", Err: err}
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, &StorageError{Op: "delete_oldest", Err: err}
	}

	return deleted, nil
}

// Ping verifies the database file is reachable and writable queries work.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return &StorageError{Op: "ping", Err: err}
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return &StorageError{Op: "close", Err: err}
	}
	s.logger.Info("Audit store closed")
	return nil
}

// buildWhere builds the WHERE clause (without the keyword) and arguments
// from the query filters.
func buildWhere(q Query) (string, []interface{}) {
	var conditions []string
	var args []interface{}

	if q.Since != nil {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, *q.Since)
	}
	if q.Until != nil {
		conditions = append(conditions, "created_at <= ?")
		args = append(args, *q.Until)
	}
	if q.Provider != "" {
		conditions = append(conditions, "provider = ?")
		args = append(args, q.Provider)
	}
	if q.UsedRAG != nil {
		conditions = append(conditions, "used_rag = ?")
		args = append(args, *q.UsedRAG)
	}
	if q.UsedFallback != nil {
		conditions = append(conditions, "used_fallback = ?")
		args = append(args, *q.UsedFallback)
	}

	return strings.Join(conditions, " AND "), args
}

// scanRecord scans one row into a Record.
func scanRecord(rows *sql.Rows) (*Record, error) {
	var rec Record
	var trace string
	var durationMs int64
	var errVal sql.NullString

	err := rows.Scan(
		&rec.ID, &rec.CreatedAt, &rec.ConversationHash, &rec.Provider,
		&rec.UsedRAG, &rec.UsedFallback, &rec.Retries, &rec.TranscriptChars,
		&trace, &durationMs, &errVal,
	)
	if err != nil {
		return nil, err
	}

	if errVal.Valid {
		rec.Error = errVal.String
	}
	if trace != "" {
		json.Unmarshal([]byte(trace), &rec.Trace)
	}
	rec.Duration = time.Duration(durationMs) * time.Millisecond

	return &rec, nil
}
