package settings

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"caseflow-hq/polaris/pkg/providers"

	_ "modernc.org/sqlite" // SQLite driver
)

// Store persists provider settings in SQLite.
//
// It holds two tables: one row per provider kind with field overrides, and a
// single-row table naming the active kind. Writes happen on provider
// switches and settings updates only, so the store is tuned for reads.
type Store struct {
	db *sql.DB

	upsertStmt    *sql.Stmt
	rowStmt       *sql.Stmt
	setActiveStmt *sql.Stmt
	activeStmt    *sql.Stmt
}

// StoreConfig configures the settings store.
type StoreConfig struct {
	// DBPath is the path to the SQLite database file.
	DBPath string

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// NewStore opens (creating if needed) the settings database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	return NewStoreWithConfig(StoreConfig{DBPath: dbPath})
}

// NewStoreWithConfig opens a settings store with custom configuration.
func NewStoreWithConfig(cfg StoreConfig) (*Store, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d&_synchronous=NORMAL",
		cfg.DBPath, int(cfg.BusyTimeout.Milliseconds()))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open settings database: %w", err)
	}

	// SQLite only supports a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{db: db}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize settings schema: %w", err)
	}
	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare settings statements: %w", err)
	}

	return s, nil
}

// initSchema creates the settings tables if they don't exist.
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS provider_settings (
		kind TEXT PRIMARY KEY,
		endpoint TEXT NOT NULL DEFAULT '',
		api_key TEXT NOT NULL DEFAULT '',
		model TEXT NOT NULL DEFAULT '',
		system_prompt TEXT NOT NULL DEFAULT '',
		site_url TEXT NOT NULL DEFAULT '',
		site_name TEXT NOT NULL DEFAULT '',
		deployment_uri TEXT NOT NULL DEFAULT '',
		updated_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS active_provider (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		kind TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// prepareStatements pre-compiles the statements used on the hot paths.
func (s *Store) prepareStatements() error {
	var err error

	s.upsertStmt, err = s.db.Prepare(`
		INSERT INTO provider_settings
			(kind, endpoint, api_key, model, system_prompt, site_url, site_name, deployment_uri, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(kind) DO UPDATE SET
			endpoint = excluded.endpoint,
			api_key = excluded.api_key,
			model = excluded.model,
			system_prompt = excluded.system_prompt,
			site_url = excluded.site_url,
			site_name = excluded.site_name,
			deployment_uri = excluded.deployment_uri,
			updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}

	s.rowStmt, err = s.db.Prepare(`
		SELECT endpoint, api_key, model, system_prompt, site_url, site_name, deployment_uri, updated_at
		FROM provider_settings WHERE kind = ?`)
	if err != nil {
		return fmt.Errorf("prepare row select: %w", err)
	}

	s.setActiveStmt, err = s.db.Prepare(`
		INSERT INTO active_provider (id, kind, updated_at) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET kind = excluded.kind, updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("prepare set active: %w", err)
	}

	s.activeStmt, err = s.db.Prepare(`SELECT kind FROM active_provider WHERE id = 1`)
	if err != nil {
		return fmt.Errorf("prepare active select: %w", err)
	}

	return nil
}

// Row is one stored set of per-kind overrides. Empty fields defer to the
// environment and file layers beneath the store.
type Row struct {
	Kind          string
	Endpoint      string
	APIKey        string
	Model         string
	SystemPrompt  string
	SiteURL       string
	SiteName      string
	DeploymentURI string
	UpdatedAt     time.Time
}

// overlay applies the row's non-empty fields on top of cfg.
func (row Row) overlay(cfg providers.Config) providers.Config {
	if row.Endpoint != "" {
		cfg.Endpoint = row.Endpoint
	}
	if row.APIKey != "" {
		cfg.APIKey = row.APIKey
	}
	if row.Model != "" {
		cfg.Model = row.Model
	}
	if row.SystemPrompt != "" {
		cfg.SystemPrompt = row.SystemPrompt
	}
	if row.SiteURL != "" {
		cfg.SiteURL = row.SiteURL
	}
	if row.SiteName != "" {
		cfg.SiteName = row.SiteName
	}
	if row.DeploymentURI != "" {
		cfg.DeploymentURI = row.DeploymentURI
	}
	return cfg
}

// UpsertRow inserts or replaces the overrides for row.Kind.
func (s *Store) UpsertRow(ctx context.Context, row Row) error {
	if row.Kind == "" {
		return fmt.Errorf("row kind cannot be empty")
	}

	_, err := s.upsertStmt.ExecContext(ctx,
		row.Kind, row.Endpoint, row.APIKey, row.Model, row.SystemPrompt,
		row.SiteURL, row.SiteName, row.DeploymentURI, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to upsert settings row: %w", err)
	}

	return nil
}

// RowFor returns the stored overrides for kind, reporting whether a row
// exists.
func (s *Store) RowFor(ctx context.Context, kind string) (Row, bool, error) {
	row := Row{Kind: kind}
	var updatedAt int64

	err := s.rowStmt.QueryRowContext(ctx, kind).Scan(
		&row.Endpoint, &row.APIKey, &row.Model, &row.SystemPrompt,
		&row.SiteURL, &row.SiteName, &row.DeploymentURI, &updatedAt)
	if err == sql.ErrNoRows {
		return Row{}, false, nil
	}
	if err != nil {
		return Row{}, false, fmt.Errorf("failed to read settings row: %w", err)
	}

	row.UpdatedAt = time.Unix(updatedAt, 0)
	return row, true, nil
}

// SetActiveKind records kind as the active provider.
func (s *Store) SetActiveKind(ctx context.Context, kind string) error {
	if kind == "" {
		return fmt.Errorf("kind cannot be empty")
	}

	_, err := s.setActiveStmt.ExecContext(ctx, kind, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to set active provider: %w", err)
	}

	return nil
}

// ActiveKind returns the stored active kind, reporting whether one was ever
// recorded.
func (s *Store) ActiveKind(ctx context.Context) (string, bool, error) {
	var kind string

	err := s.activeStmt.QueryRowContext(ctx).Scan(&kind)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read active provider: %w", err)
	}

	return kind, true, nil
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the prepared statements and the database handle.
func (s *Store) Close() error {
	for _, stmt := range []*sql.Stmt{s.upsertStmt, s.rowStmt, s.setActiveStmt, s.activeStmt} {
		if stmt != nil {
			stmt.Close()
		}
	}
	return s.db.Close()
}
