package embed

import (
	"database/sql"
	"fmt"
)

// Store persists job vectors in SQLite so a restart can reload the index
// without re-embedding the corpus. Vectors are keyed by the embed model
// name: a model change invalidates everything persisted under the old one.
type Store struct {
	db *sql.DB
}

// NewStore wraps an existing *sql.DB for vector persistence.
// The job_vectors table must already exist (created via migrations).
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// SaveIndex replaces all persisted vectors for the given model with the
// contents of idx, in index order.
func (s *Store) SaveIndex(model string, idx *Index) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning vector save: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM job_vectors WHERE model = ?", model); err != nil {
		tx.Rollback()
		return fmt.Errorf("clearing old vectors: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO job_vectors (job_id, model, position, embedding)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing vector insert: %w", err)
	}
	defer stmt.Close()

	for i, jobID := range idx.JobIDs() {
		vec, ok := idx.Vector(jobID)
		if !ok {
			continue
		}
		if _, err := stmt.Exec(jobID, model, i, encodeFloat32s(vec)); err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting vector for %s: %w", jobID, err)
		}
	}

	return tx.Commit()
}

// LoadIndex restores the persisted index for the given model. Returns
// (nil, nil) when nothing is persisted for that model.
func (s *Store) LoadIndex(model string) (*Index, error) {
	rows, err := s.db.Query(`
		SELECT job_id, embedding FROM job_vectors
		WHERE model = ? ORDER BY position ASC`, model)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	var jobIDs []string
	vectors := make(map[string][]float32)
	for rows.Next() {
		var jobID string
		var blob []byte
		if err := rows.Scan(&jobID, &blob); err != nil {
			return nil, fmt.Errorf("scanning vector row: %w", err)
		}
		vec, err := decodeFloat32s(blob)
		if err != nil {
			return nil, fmt.Errorf("decoding vector for %s: %w", jobID, err)
		}
		jobIDs = append(jobIDs, jobID)
		vectors[jobID] = vec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating vector rows: %w", err)
	}

	if len(jobIDs) == 0 {
		return nil, nil
	}
	return NewIndex(jobIDs, vectors), nil
}

// Count returns the number of persisted vectors for the given model.
func (s *Store) Count(model string) (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM job_vectors WHERE model = ?", model).Scan(&n)
	return n, err
}
