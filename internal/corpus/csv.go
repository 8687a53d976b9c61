package corpus

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Typed load failures. Callers distinguish a missing source from a
// corrupt one; both are fatal for the load operation.
var (
	ErrSourceAbsent    = errors.New("corpus source absent")
	ErrSourceMalformed = errors.New("corpus source malformed")
)

// Column headers the loader harmonizes. Header matching is
// case-insensitive and tolerant of surrounding whitespace.
var canonicalColumns = []string{"job_id", "title", "company", "location", "description", "source"}

// LoadCSV reads a corpus from a CSV file with a header row. Columns may
// appear in any order; extra columns are ignored. Rows without a job_id
// are skipped and counted, not fatal.
func LoadCSV(path string) (*Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrSourceAbsent, path)
		}
		return nil, fmt.Errorf("opening corpus %s: %w", path, err)
	}
	defer f.Close()

	c, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// ReadCSV parses corpus CSV from a reader.
func ReadCSV(r io.Reader) (*Corpus, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // rows may carry trailing extras; harmonize below

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file", ErrSourceMalformed)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading header: %v", ErrSourceMalformed, err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols["job_id"]; !ok {
		return nil, fmt.Errorf("%w: missing job_id column", ErrSourceMalformed)
	}

	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var jobs []Job
	skipped := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrSourceMalformed, len(jobs)+skipped+2, err)
		}

		id := strings.TrimSpace(field(row, "job_id"))
		if id == "" {
			skipped++
			continue
		}

		jobs = append(jobs, Job{
			ID:          id,
			Title:       field(row, "title"),
			Company:     field(row, "company"),
			Location:    field(row, "location"),
			Description: field(row, "description"),
			Source:      field(row, "source"),
		})
	}

	if skipped > 0 {
		slog.Warn("skipped corpus rows without job_id", "skipped", skipped)
	}

	return FromJobs(jobs), nil
}
