package backup

import (
	"errors"
	"sync"
	"time"
)

type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// ErrJobRunning means a backup is already in progress. Only one job may run
// at a time; the limit is enforced here instead of silently corrupting a
// shared progress record.
var ErrJobRunning = errors.New("a backup job is already running")

// Job is a snapshot of one backup job's progress.
type Job struct {
	ID          string    `json:"id"`
	Status      Status    `json:"status"`
	Percentage  int       `json:"percentage"`
	CurrentStep string    `json:"current_step"`
	ZipPath     string    `json:"-"`
	StartedAt   time.Time `json:"started_at"`
}

// JobStore tracks backup jobs by id with atomic status transitions
// (idle → running → completed|failed).
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	last string
}

func NewJobStore() *JobStore {
	return &JobStore{jobs: make(map[string]*Job)}
}

// Begin registers a new running job, refusing while another job runs.
func (s *JobStore) Begin(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, j := range s.jobs {
		if j.Status == StatusRunning {
			return ErrJobRunning
		}
	}

	s.jobs[id] = &Job{
		ID:        id,
		Status:    StatusRunning,
		StartedAt: time.Now(),
	}
	s.last = id
	return nil
}

// Progress updates the step description and percentage of a running job.
func (s *JobStore) Progress(id, step string, percentage int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[id]; ok && j.Status == StatusRunning {
		j.CurrentStep = step
		j.Percentage = percentage
	}
}

// Complete marks a job done and records its archive path.
func (s *JobStore) Complete(id, zipPath string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[id]; ok {
		j.Status = StatusCompleted
		j.Percentage = 100
		j.CurrentStep = "Done"
		j.ZipPath = zipPath
	}
}

// Fail marks a job failed with the error as its final step.
func (s *JobStore) Fail(id string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[id]; ok {
		j.Status = StatusFailed
		j.CurrentStep = "Error: " + err.Error()
	}
}

// Get returns a copy of one job.
func (s *JobStore) Get(id string) (Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	j, ok := s.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *j, true
}

// Latest returns a copy of the most recently started job. When no job has
// ever run it reports an idle placeholder.
func (s *JobStore) Latest() Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[s.last]; ok {
		return *j
	}
	return Job{Status: StatusIdle}
}

// Release clears the archive path after it was handed out for download, so
// the zip is not served twice.
func (s *JobStore) Release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if j, ok := s.jobs[id]; ok {
		j.ZipPath = ""
	}
}
