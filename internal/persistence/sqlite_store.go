package persistence

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/subworks/subflow/internal/jobs"
)

const metadataCacheDefaultTTL = 24 * time.Hour

//go:embed migrations/*.sql
var migrationFiles embed.FS

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	store := &SQLiteStore{db: db}
	if err := store.init(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "PRAGMA journal_mode = WAL;"); err != nil {
		return fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA busy_timeout = 5000;"); err != nil {
		return fmt.Errorf("set busy timeout: %w", err)
	}
	// Bootstrap schema_migrations table so we can track applied versions.
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	entries, err := migrationFiles.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		version := migrationVersion(entry.Name())
		if version <= 0 {
			continue
		}
		var exists int
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, version).Scan(&exists); err != nil {
			return fmt.Errorf("check migration %s: %w", entry.Name(), err)
		}
		if exists > 0 {
			continue
		}
		content, err := migrationFiles.ReadFile(filepath.Join("migrations", entry.Name()))
		if err != nil {
			return fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		if _, err := s.db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("apply migration %s: %w", entry.Name(), err)
		}
		if _, err := s.db.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, version); err != nil {
			return fmt.Errorf("record migration %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// migrationVersion extracts the leading integer from a migration filename (e.g. "001_init.sql" → 1).
func migrationVersion(name string) int {
	for i, c := range name {
		if c < '0' || c > '9' {
			if i == 0 {
				return 0
			}
			n, _ := strconv.Atoi(name[:i])
			return n
		}
	}
	n, _ := strconv.Atoi(name)
	return n
}

func (s *SQLiteStore) LoadJobs(ctx context.Context) ([]*jobs.TranslationJob, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, source, dedupe_key, input_path, output_path, target_code, title, year, is_series, description, status, error, created_at, updated_at
		 FROM jobs
		 ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ret := make([]*jobs.TranslationJob, 0)
	for rows.Next() {
		var item jobs.TranslationJob
		var status string
		var isSeries int
		if err := rows.Scan(
			&item.ID,
			&item.Source,
			&item.DedupeKey,
			&item.Payload.InputPath,
			&item.Payload.OutputPath,
			&item.Payload.TargetCode,
			&item.Payload.Title,
			&item.Payload.Year,
			&isSeries,
			&item.Payload.Description,
			&status,
			&item.Error,
			&item.CreatedAt,
			&item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		item.Status = jobs.Status(status)
		item.Payload.IsSeries = isSeries == 1
		ret = append(ret, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *SQLiteStore) DeleteJob(ctx context.Context, jobID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM jobs WHERE id = ?`, jobID)
	return err
}

func (s *SQLiteStore) UpsertJob(ctx context.Context, job *jobs.TranslationJob) error {
	if job == nil {
		return fmt.Errorf("job is nil")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO jobs (
			id, source, dedupe_key, input_path, output_path, target_code, title, year, is_series, description, status, error, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			source=excluded.source,
			dedupe_key=excluded.dedupe_key,
			input_path=excluded.input_path,
			output_path=excluded.output_path,
			target_code=excluded.target_code,
			title=excluded.title,
			year=excluded.year,
			is_series=excluded.is_series,
			description=excluded.description,
			status=excluded.status,
			error=excluded.error,
			updated_at=excluded.updated_at`,
		job.ID,
		job.Source,
		job.DedupeKey,
		job.Payload.InputPath,
		job.Payload.OutputPath,
		job.Payload.TargetCode,
		job.Payload.Title,
		job.Payload.Year,
		boolToInt(job.Payload.IsSeries),
		job.Payload.Description,
		string(job.Status),
		job.Error,
		job.CreatedAt,
		job.UpdatedAt,
	)
	return err
}

func (s *SQLiteStore) PutMetadataCache(ctx context.Context, entry MetadataCacheEntry) error {
	updatedAt := entry.UpdatedAt.UTC()
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	expiresAt := entry.ExpiresAt.UTC()
	if expiresAt.IsZero() {
		expiresAt = updatedAt.Add(metadataCacheDefaultTTL)
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO metadata_cache (
			title, is_series, year, tmdb_id, matched_title, matched_year, overview, expires_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(title, is_series, year) DO UPDATE SET
			tmdb_id=excluded.tmdb_id,
			matched_title=excluded.matched_title,
			matched_year=excluded.matched_year,
			overview=excluded.overview,
			expires_at=excluded.expires_at,
			updated_at=excluded.updated_at`,
		entry.Title,
		boolToInt(entry.IsSeries),
		entry.Year,
		entry.TMDBID,
		entry.MatchedTitle,
		entry.MatchedYear,
		entry.Overview,
		expiresAt,
		updatedAt,
	)
	return err
}

func (s *SQLiteStore) GetMetadataCache(ctx context.Context, title string, isSeries bool, year int, now time.Time) (MetadataCacheEntry, bool, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT title, is_series, year, tmdb_id, matched_title, matched_year, overview, expires_at, updated_at
		 FROM metadata_cache
		 WHERE title = ? AND is_series = ? AND year = ? AND expires_at > ?`,
		title,
		boolToInt(isSeries),
		year,
		now.UTC(),
	)

	var ret MetadataCacheEntry
	var isSeriesInt int
	if err := row.Scan(
		&ret.Title,
		&isSeriesInt,
		&ret.Year,
		&ret.TMDBID,
		&ret.MatchedTitle,
		&ret.MatchedYear,
		&ret.Overview,
		&ret.ExpiresAt,
		&ret.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return MetadataCacheEntry{}, false, nil
		}
		return MetadataCacheEntry{}, false, err
	}
	ret.IsSeries = isSeriesInt == 1
	return ret, true, nil
}

// DeleteExpiredMetadataCache removes metadata_cache rows whose expires_at is before now.
func (s *SQLiteStore) DeleteExpiredMetadataCache(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM metadata_cache WHERE expires_at <= ?`, now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
