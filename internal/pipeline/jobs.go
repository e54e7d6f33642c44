package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"github.com/dgallion1/ncparse/internal/datetime"
	"github.com/dgallion1/ncparse/internal/filing"
	"github.com/dgallion1/ncparse/internal/payload"
	"github.com/dgallion1/ncparse/internal/render"
)

// JobStatus represents the state of a parse job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusParsing   JobStatus = "parsing"
	StatusRendering JobStatus = "rendering"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusPartial   JobStatus = "partial"
)

// Job tracks the state of a single filing parse.
type Job struct {
	mu sync.Mutex

	ID string `json:"job_id"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Filename string    `json:"filename"`

	Progress Progress `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	fileData  []byte
	filing    *filing.Filing
	documents []DocumentResult
	errors    []string
	done      chan struct{}
}

// Progress tracks processing progress.
type Progress struct {
	TotalDocuments    int      `json:"total_documents"`
	DocumentsRendered int      `json:"documents_rendered"`
	Anomalies         int      `json:"anomalies"`
	Errors            []string `json:"errors"`
}

// DocumentResult describes one processed document of a filing.
type DocumentResult struct {
	Index       int           `json:"index"`
	Type        string        `json:"type,omitempty"`
	Filename    string        `json:"filename,omitempty"`
	Description string        `json:"description,omitempty"`
	Kind        payload.Kind  `json:"kind"`
	Encoding    string        `json:"encoding,omitempty"`
	Size        int           `json:"size"`
	SHA256      string        `json:"sha256"`
	BLAKE3      string        `json:"blake3"`
	Stats       *render.Stats `json:"stats,omitempty"`
	RenderError string        `json:"render_error,omitempty"`

	text string
}

// NewJob creates a queued job for one uploaded file.
func NewJob(filename string, data []byte) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		Status:    StatusQueued,
		Phase:     "queued",
		Filename:  filename,
		CreatedAt: now,
		UpdatedAt: now,
		fileData:  data,
		done:      make(chan struct{}),
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		updated := job.UpdatedAt
		job.mu.Unlock()
		if now.Sub(updated) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetContentHash records the digest of the decoded input.
func (j *Job) SetContentHash(h string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.ContentHash = h
}

// SetFiling records the parsed filing and its document count.
func (j *Job) SetFiling(f *filing.Filing) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.filing = f
	j.Progress.TotalDocuments = len(f.Documents)
	j.Progress.Anomalies = len(f.Anomalies)
	j.UpdatedAt = time.Now()
}

// Filing returns the parsed filing, or nil before parsing finished.
func (j *Job) Filing() *filing.Filing {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.filing
}

// AddDocument records one processed document.
func (j *Job) AddDocument(d DocumentResult) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.documents = append(j.documents, d)
	if d.Stats != nil {
		j.Progress.DocumentsRendered++
	}
	j.UpdatedAt = time.Now()
}

// DocumentText returns the rendered plain text of document i.
func (j *Job) DocumentText(i int) (string, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	for _, d := range j.documents {
		if d.Index == i {
			return d.text, d.Stats != nil
		}
	}
	return "", false
}

// SetFileData sets the raw file bytes for processing.
func (j *Job) SetFileData(data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.fileData = data
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// Done is closed once the job reaches a terminal status.
func (j *Job) Done() <-chan struct{} {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.done == nil {
		j.done = make(chan struct{})
	}
	return j.done
}

func (j *Job) finish() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.done == nil {
		j.done = make(chan struct{})
	}
	select {
	case <-j.done:
	default:
		close(j.done)
	}
}

// Summary is the headline of a parsed filing.
type Summary struct {
	AccessionNumber string           `json:"accession_number,omitempty"`
	FormType        string           `json:"form_type,omitempty"`
	FilingDate      *datetime.Date   `json:"filing_date,omitempty"`
	Companies       []string         `json:"companies,omitempty"`
	Documents       []DocumentResult `json:"documents"`
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string    `json:"job_id"`
	Status      JobStatus `json:"status"`
	Phase       string    `json:"phase"`
	Filename    string    `json:"filename"`
	ContentHash string    `json:"content_hash,omitempty"`
	Progress    Progress  `json:"progress"`
	Summary     *Summary  `json:"summary,omitempty"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	snap := JobSnapshot{
		ID:          j.ID,
		Status:      j.Status,
		Phase:       j.Phase,
		Filename:    j.Filename,
		ContentHash: j.ContentHash,
		Progress: Progress{
			TotalDocuments:    j.Progress.TotalDocuments,
			DocumentsRendered: j.Progress.DocumentsRendered,
			Anomalies:         j.Progress.Anomalies,
			Errors:            append([]string{}, errs...),
		},
	}
	if f := j.filing; f != nil {
		s := &Summary{
			AccessionNumber: f.Header.AccessionNumber,
			FormType:        f.Header.Type,
			FilingDate:      f.Header.FilingDate,
			Documents:       append([]DocumentResult{}, j.documents...),
		}
		for _, c := range f.Header.Companies {
			if name := c.Name(); name != "" {
				s.Companies = append(s.Companies, name)
			}
		}
		snap.Summary = s
	}
	return snap
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}

// Blake3Hex computes the BLAKE3-256 digest of content as hex.
func Blake3Hex(data []byte) string {
	h := blake3.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
