// Package corpus holds the loaded set of job postings for one scoring
// session. A corpus is immutable once loaded; scoring and extraction read
// it concurrently without locking.
package corpus

import "errors"

// ErrNotFound is returned when a job identifier is not in the corpus.
var ErrNotFound = errors.New("job not found")

// Job is one posting record as delivered by the ingestion collaborators.
type Job struct {
	ID          string `json:"job_id"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Source      string `json:"source"`
}

// Corpus is an ordered, immutable collection of jobs with id lookup.
// Order is load order and is the documented tie-break for ranking.
type Corpus struct {
	jobs []Job
	byID map[string]int
}

// FromJobs builds a Corpus from jobs in the given order. Later duplicates
// of a job id are dropped (first occurrence wins).
func FromJobs(jobs []Job) *Corpus {
	c := &Corpus{
		jobs: make([]Job, 0, len(jobs)),
		byID: make(map[string]int, len(jobs)),
	}
	for _, j := range jobs {
		if _, dup := c.byID[j.ID]; dup {
			continue
		}
		c.byID[j.ID] = len(c.jobs)
		c.jobs = append(c.jobs, j)
	}
	return c
}

// Jobs returns the jobs in load order. Callers must not modify the slice.
func (c *Corpus) Jobs() []Job {
	return c.jobs
}

// Len returns the number of jobs.
func (c *Corpus) Len() int {
	return len(c.jobs)
}

// Get returns the job with the given id, or ErrNotFound.
func (c *Corpus) Get(id string) (Job, error) {
	i, ok := c.byID[id]
	if !ok {
		return Job{}, ErrNotFound
	}
	return c.jobs[i], nil
}
