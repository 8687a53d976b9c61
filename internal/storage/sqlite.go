// Package storage is the SQLite warehouse for loaded jobs, extracted
// skill occurrences, and persisted job vectors.
package storage

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jobradar/jobradar/internal/corpus"
	"github.com/jobradar/jobradar/internal/extraction"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a SQLite database with methods for jobs, skill occurrences,
// and warehouse stats.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database in dataDir and runs pending
// migrations. Pass ":memory:" as dataDir for an in-memory database (used
// by tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "jobradar.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	// Set busy timeout so concurrent access waits briefly instead of failing immediately.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying connection for components that share the
// database (vector persistence).
func (s *Store) DB() *sql.DB {
	return s.db
}

// migrate reads embedded SQL migration files and applies any that haven't been run yet.
func (s *Store) migrate() error {
	// Ensure schema_version table exists (bootstrap).
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort by filename to guarantee ascending order.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction for migration %d: %w", version, err)
		}

		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}

	return nil
}

func parseMigrationVersion(filename string) (int, error) {
	var version int
	if _, err := fmt.Sscanf(filename, "%d_", &version); err != nil {
		return 0, fmt.Errorf("parsing migration version from %q: %w", filename, err)
	}
	return version, nil
}

// --- Jobs ---

// ReplaceJobs replaces the entire jobs table with the given corpus,
// preserving load order in the position column.
func (s *Store) ReplaceJobs(c *corpus.Corpus) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning jobs replace: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM jobs"); err != nil {
		tx.Rollback()
		return fmt.Errorf("clearing jobs: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO jobs (job_id, position, title, company, location, description, source, loaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing job insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for i, j := range c.Jobs() {
		if _, err := stmt.Exec(j.ID, i, j.Title, j.Company, j.Location, j.Description, j.Source, now); err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting job %s: %w", j.ID, err)
		}
	}

	return tx.Commit()
}

// LoadCorpus reads all persisted jobs back into a Corpus, in load order.
func (s *Store) LoadCorpus() (*corpus.Corpus, error) {
	rows, err := s.db.Query(`
		SELECT job_id, title, company, location, description, source
		FROM jobs ORDER BY position ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying jobs: %w", err)
	}
	defer rows.Close()

	var jobs []corpus.Job
	for rows.Next() {
		var j corpus.Job
		if err := rows.Scan(&j.ID, &j.Title, &j.Company, &j.Location, &j.Description, &j.Source); err != nil {
			return nil, fmt.Errorf("scanning job row: %w", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating job rows: %w", err)
	}
	return corpus.FromJobs(jobs), nil
}

// GetJob returns one persisted job by id, or ErrNotFound.
func (s *Store) GetJob(id string) (corpus.Job, error) {
	var j corpus.Job
	err := s.db.QueryRow(`
		SELECT job_id, title, company, location, description, source
		FROM jobs WHERE job_id = ?`, id,
	).Scan(&j.ID, &j.Title, &j.Company, &j.Location, &j.Description, &j.Source)
	if err == sql.ErrNoRows {
		return corpus.Job{}, ErrNotFound
	}
	if err != nil {
		return corpus.Job{}, err
	}
	return j, nil
}

// CountJobs returns the number of persisted jobs.
func (s *Store) CountJobs() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM jobs").Scan(&n)
	return n, err
}

// --- Skill occurrences ---

// ReplaceOccurrences replaces all persisted occurrences with a new
// extraction run's output.
func (s *Store) ReplaceOccurrences(runID string, occurrences []extraction.Occurrence) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning occurrence replace: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM skill_occurrences"); err != nil {
		tx.Rollback()
		return fmt.Errorf("clearing occurrences: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO skill_occurrences
			(run_id, job_id, skill_name, skill_category, confidence_score, position_in_description, extraction_method, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing occurrence insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, o := range occurrences {
		if _, err := stmt.Exec(runID, o.JobID, o.Skill, o.Category, o.Confidence, o.Position, o.Method, now); err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting occurrence %s/%s: %w", o.JobID, o.Skill, err)
		}
	}

	return tx.Commit()
}

// ListOccurrences returns the persisted occurrences for one job, ordered
// by position then skill name.
func (s *Store) ListOccurrences(jobID string) ([]OccurrenceRow, error) {
	rows, err := s.db.Query(`
		SELECT run_id, job_id, skill_name, skill_category, confidence_score, position_in_description, extraction_method, created_at
		FROM skill_occurrences WHERE job_id = ?
		ORDER BY position_in_description ASC, skill_name ASC`, jobID)
	if err != nil {
		return nil, fmt.Errorf("querying occurrences: %w", err)
	}
	defer rows.Close()

	var result []OccurrenceRow
	for rows.Next() {
		var o OccurrenceRow
		var createdAt string
		if err := rows.Scan(&o.RunID, &o.JobID, &o.Skill, &o.Category, &o.Confidence, &o.Position, &o.Method, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning occurrence row: %w", err)
		}
		t, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		o.CreatedAt = t
		result = append(result, o)
	}
	return result, rows.Err()
}

// CountOccurrences returns the number of persisted occurrences.
func (s *Store) CountOccurrences() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM skill_occurrences").Scan(&n)
	return n, err
}

// GetStats assembles warehouse stats for the status surfaces.
func (s *Store) GetStats() (Stats, error) {
	var st Stats
	var err error

	if st.Jobs, err = s.CountJobs(); err != nil {
		return Stats{}, fmt.Errorf("counting jobs: %w", err)
	}
	if st.Occurrences, err = s.CountOccurrences(); err != nil {
		return Stats{}, fmt.Errorf("counting occurrences: %w", err)
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM job_vectors").Scan(&st.Vectors); err != nil {
		return Stats{}, fmt.Errorf("counting vectors: %w", err)
	}

	err = s.db.QueryRow(`
		SELECT run_id FROM skill_occurrences
		ORDER BY created_at DESC, id DESC LIMIT 1`).Scan(&st.LastRunID)
	if err != nil && err != sql.ErrNoRows {
		return Stats{}, fmt.Errorf("reading last run id: %w", err)
	}

	return st, nil
}
