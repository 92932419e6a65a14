package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/lettergen/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/lettergen/internal/core/domain"
	"github.com/custodia-labs/lettergen/internal/core/ports/driven"
)

// dbFileName is the database file inside the data directory.
const dbFileName = "history.db"

// Store is a SQLite-based run history.
type Store struct {
	db   *sql.DB
	path string
}

// Ensure Store implements the interface.
var _ driven.RunStore = (*Store)(nil)

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.lettergen/data/history.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".lettergen", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFileName)

	// WAL mode lets the CLI read history while a batch is recording.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

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

func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Runs ====================

// SaveRun stores or updates a run.
func (s *Store) SaveRun(ctx context.Context, run *domain.BatchRun) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, conference_name, template_path, output_dir, state,
			total, succeeded, failed, converted, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			state = excluded.state,
			total = excluded.total,
			succeeded = excluded.succeeded,
			failed = excluded.failed,
			converted = excluded.converted,
			error = excluded.error,
			finished_at = excluded.finished_at
	`, run.ID, run.ConferenceName, run.TemplatePath, run.OutputDir, string(run.State),
		run.Total, run.Succeeded, run.Failed, run.Converted, nullString(run.Error),
		run.StartedAt.UTC(), nullTime(run.FinishedAt))
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	return nil
}

const runColumns = `id, conference_name, template_path, output_dir, state,
	total, succeeded, failed, converted, error, started_at, finished_at`

// GetRun retrieves a run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (*domain.BatchRun, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE id = ?", id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns the most recent runs first, up to limit (0 = all).
func (s *Store) ListRuns(ctx context.Context, limit int) ([]domain.BatchRun, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+runColumns+" FROM runs ORDER BY started_at DESC, id LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.BatchRun //nolint:prealloc // size unknown from query
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*domain.BatchRun, error) {
	var run domain.BatchRun
	var state string
	var runErr sql.NullString
	var startedAt, finishedAt sql.NullTime
	if err := row.Scan(&run.ID, &run.ConferenceName, &run.TemplatePath, &run.OutputDir, &state,
		&run.Total, &run.Succeeded, &run.Failed, &run.Converted, &runErr,
		&startedAt, &finishedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	run.State = domain.BatchState(state)
	run.Error = runErr.String
	if startedAt.Valid {
		run.StartedAt = startedAt.Time
	}
	if finishedAt.Valid {
		run.FinishedAt = finishedAt.Time
	}
	return &run, nil
}

// ==================== Artifacts ====================

// SaveArtifact stores or updates an artifact. New artifacts are appended
// to their run's order; updates keep their position.
func (s *Store) SaveArtifact(ctx context.Context, artifact *domain.GeneratedArtifact) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO artifacts (id, run_id, seq, participant_name, is_delegate,
			doc_path, pdf_path, pdf_pages, error, created_at)
		VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM artifacts WHERE run_id = ?),
			?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			doc_path = excluded.doc_path,
			pdf_path = excluded.pdf_path,
			pdf_pages = excluded.pdf_pages,
			error = excluded.error
	`, artifact.ID, artifact.RunID, artifact.RunID,
		artifact.Participant.Name, artifact.Participant.IsDelegate,
		nullString(artifact.DocPath), nullString(artifact.PDFPath), artifact.PDFPages,
		nullString(artifact.Error), artifact.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving artifact: %w", err)
	}
	return nil
}

// ListArtifacts returns the artifacts of a run in creation order.
func (s *Store) ListArtifacts(ctx context.Context, runID string) ([]domain.GeneratedArtifact, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, run_id, participant_name, is_delegate, doc_path, pdf_path, pdf_pages, error, created_at
		FROM artifacts WHERE run_id = ? ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying artifacts: %w", err)
	}
	defer rows.Close()

	var artifacts []domain.GeneratedArtifact //nolint:prealloc // size unknown from query
	for rows.Next() {
		var a domain.GeneratedArtifact
		var docPath, pdfPath, artErr sql.NullString
		var createdAt sql.NullTime
		if err := rows.Scan(&a.ID, &a.RunID, &a.Participant.Name, &a.Participant.IsDelegate,
			&docPath, &pdfPath, &a.PDFPages, &artErr, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning artifact: %w", err)
		}
		a.DocPath = docPath.String
		a.PDFPath = pdfPath.String
		a.Error = artErr.String
		if createdAt.Valid {
			a.CreatedAt = createdAt.Time
		}
		artifacts = append(artifacts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating artifacts: %w", err)
	}
	return artifacts, nil
}

// ==================== Helpers ====================

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t.UTC(), Valid: !t.IsZero()}
}
