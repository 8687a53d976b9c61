package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// OccurrenceRow is a persisted skill occurrence.
type OccurrenceRow struct {
	RunID      string
	JobID      string
	Skill      string
	Category   string
	Confidence float64
	Position   int
	Method     string
	CreatedAt  time.Time
}

// Stats summarizes warehouse contents for status surfaces.
type Stats struct {
	Jobs        int
	Occurrences int
	Vectors     int
	LastRunID   string
}
