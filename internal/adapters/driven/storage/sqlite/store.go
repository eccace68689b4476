package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/omnibar-labs/omnibar-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/omnibar-labs/omnibar-cli/internal/core/domain"
	"github.com/omnibar-labs/omnibar-cli/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to
// all metadata store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.omnibar/data/omnibar.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".omnibar", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "omnibar.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// ClickLog returns a ClickLogSink backed by this store.
func (s *Store) ClickLog() driven.ClickLogSink {
	return &clickLog{store: s}
}

// RankingStore returns a RankingStore backed by this store.
func (s *Store) RankingStore() driven.RankingStore {
	return &rankingStore{store: s}
}

// ShortcutStore returns a ShortcutStore backed by this store.
func (s *Store) ShortcutStore() driven.ShortcutStore {
	return &shortcutStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "0001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Click Log ====================

// clickLog implements driven.ClickLogSink.
type clickLog struct {
	store *Store
}

var _ driven.ClickLogSink = (*clickLog)(nil)

// Record stores one click record.
func (c *clickLog) Record(ctx context.Context, rec domain.ClickRecord) error {
	if rec.ID == "" {
		return domain.ErrInvalidInput
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := c.store.db.ExecContext(ctx, `
		INSERT INTO click_log (id, query, slot_index, kind, action_key, extra, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Query, rec.SlotIndex, string(rec.Kind), rec.ActionKey, rec.Extra, rec.CreatedAt)

	if err != nil {
		return fmt.Errorf("recording click: %w", err)
	}
	return nil
}

// Recent returns the most recent click records, newest first.
func (c *clickLog) Recent(ctx context.Context, limit int) ([]domain.ClickRecord, error) {
	rows, err := c.store.db.QueryContext(ctx, `
		SELECT id, query, slot_index, kind, action_key, extra, created_at
		FROM click_log
		ORDER BY created_at DESC, id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying click log: %w", err)
	}
	defer rows.Close()

	var records []domain.ClickRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		var rec domain.ClickRecord
		var kind string
		if err := rows.Scan(&rec.ID, &rec.Query, &rec.SlotIndex, &kind,
			&rec.ActionKey, &rec.Extra, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning click record: %w", err)
		}
		rec.Kind = domain.SlotKind(kind)
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating click log: %w", err)
	}

	return records, nil
}

// ==================== Ranking Store ====================

// rankingStore implements driven.RankingStore.
type rankingStore struct {
	store *Store
}

var _ driven.RankingStore = (*rankingStore)(nil)

// RecordImpression notes that a source was queried for display.
func (r *rankingStore) RecordImpression(ctx context.Context, id domain.SourceID) error {
	_, err := r.store.db.ExecContext(ctx, `
		INSERT INTO usage_stats (source_id, impressions, clicks)
		VALUES (?, 1, 0)
		ON CONFLICT(source_id) DO UPDATE SET
			impressions = impressions + 1
	`, id.String())

	if err != nil {
		return fmt.Errorf("recording impression: %w", err)
	}
	return nil
}

// RecordClick notes that one of the source's suggestions was chosen.
func (r *rankingStore) RecordClick(ctx context.Context, id domain.SourceID) error {
	now := time.Now().UTC()
	_, err := r.store.db.ExecContext(ctx, `
		INSERT INTO usage_stats (source_id, impressions, clicks, last_used)
		VALUES (?, 0, 1, ?)
		ON CONFLICT(source_id) DO UPDATE SET
			clicks = clicks + 1,
			last_used = excluded.last_used
	`, id.String(), now)

	if err != nil {
		return fmt.Errorf("recording click: %w", err)
	}
	return nil
}

// Entries returns the current usage statistics for all sources.
func (r *rankingStore) Entries(ctx context.Context) ([]domain.RankingEntry, error) {
	rows, err := r.store.db.QueryContext(ctx, `
		SELECT source_id, impressions, clicks, last_used
		FROM usage_stats
		ORDER BY source_id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying usage stats: %w", err)
	}
	defer rows.Close()

	var entries []domain.RankingEntry //nolint:prealloc // size unknown from query
	for rows.Next() {
		var entry domain.RankingEntry
		var sourceID string
		var lastUsed sql.NullTime
		if err := rows.Scan(&sourceID, &entry.Impressions, &entry.Clicks, &lastUsed); err != nil {
			return nil, fmt.Errorf("scanning usage stats: %w", err)
		}
		entry.SourceID = domain.SourceID(sourceID)
		if lastUsed.Valid {
			entry.LastUsed = lastUsed.Time
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating usage stats: %w", err)
	}

	return entries, nil
}

// ==================== Shortcut Store ====================

// shortcutStore implements driven.ShortcutStore.
type shortcutStore struct {
	store *Store
}

var _ driven.ShortcutStore = (*shortcutStore)(nil)

// Save stores or updates a shortcut.
func (s *shortcutStore) Save(ctx context.Context, shortcut domain.Shortcut) error {
	if shortcut.ID == "" {
		return domain.ErrInvalidInput
	}

	now := time.Now().UTC()
	if shortcut.CreatedAt.IsZero() {
		shortcut.CreatedAt = now
	}
	if shortcut.LastUsed.IsZero() {
		shortcut.LastUsed = now
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO shortcuts (id, source_id, query, title, subtitle, icon, intent, extra, created_at, last_used)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source_id = excluded.source_id,
			query = excluded.query,
			title = excluded.title,
			subtitle = excluded.subtitle,
			icon = excluded.icon,
			intent = excluded.intent,
			extra = excluded.extra,
			last_used = excluded.last_used
	`, shortcut.ID, shortcut.SourceID.String(), shortcut.Query,
		shortcut.Suggestion.Title, shortcut.Suggestion.Subtitle, shortcut.Suggestion.Icon,
		shortcut.Suggestion.Intent, shortcut.Suggestion.Extra,
		shortcut.CreatedAt, shortcut.LastUsed)

	if err != nil {
		return fmt.Errorf("saving shortcut: %w", err)
	}
	return nil
}

// ForPrefix returns shortcuts whose saved query extends the given text,
// most recently used first, capped at limit.
func (s *shortcutStore) ForPrefix(ctx context.Context, text string, limit int) ([]domain.Shortcut, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, source_id, query, title, subtitle, icon, intent, extra, created_at, last_used
		FROM shortcuts
		WHERE query LIKE ? ESCAPE '\'
		ORDER BY last_used DESC, id
		LIMIT ?
	`, escapeLike(text)+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("querying shortcuts: %w", err)
	}
	defer rows.Close()

	var shortcuts []domain.Shortcut //nolint:prealloc // size unknown from query
	for rows.Next() {
		var sc domain.Shortcut
		var sourceID string
		if err := rows.Scan(&sc.ID, &sourceID, &sc.Query,
			&sc.Suggestion.Title, &sc.Suggestion.Subtitle, &sc.Suggestion.Icon,
			&sc.Suggestion.Intent, &sc.Suggestion.Extra,
			&sc.CreatedAt, &sc.LastUsed); err != nil {
			return nil, fmt.Errorf("scanning shortcut: %w", err)
		}
		sc.SourceID = domain.SourceID(sourceID)
		sc.Suggestion.SourceID = sc.SourceID
		sc.Suggestion.ShortcutID = sc.ID
		shortcuts = append(shortcuts, sc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating shortcuts: %w", err)
	}

	return shortcuts, nil
}

// Delete removes a shortcut.
func (s *shortcutStore) Delete(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM shortcuts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting shortcut: %w", err)
	}
	return nil
}

// escapeLike escapes LIKE wildcards so stored query text is matched
// literally.
func escapeLike(text string) string {
	text = strings.ReplaceAll(text, `\`, `\\`)
	text = strings.ReplaceAll(text, "%", `\%`)
	text = strings.ReplaceAll(text, "_", `\_`)
	return text
}
