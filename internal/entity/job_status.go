package entity

import "time"

const (
	JobPending   = "pending"
	JobRunning   = "running"
	JobCompleted = "completed"
	JobFailed    = "failed"
	JobNotFound  = "not_found"
)

// JobStatus is the externally observable state of one crawl job.
type JobStatus struct {
	ID           string    `json:"task_id"`
	Status       string    `json:"status"` // "pending", "running", "completed", "failed", "not_found"
	Progress     int       `json:"progress"`
	Message      string    `json:"message,omitempty"`
	Job          *CrawlJob `json:"job,omitempty"`
	Pages        int       `json:"pages,omitempty"`
	Links        int       `json:"links,omitempty"`
	LinksFile    string    `json:"links_file,omitempty"`
	ContentFile  string    `json:"content_file,omitempty"`
	AnalysisFile string    `json:"analysis_file,omitempty"`
	Analysis     string    `json:"analysis,omitempty"`
	Error        string    `json:"error,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Terminal reports whether the job has finished one way or the other.
func (s JobStatus) Terminal() bool {
	return s.Status == JobCompleted || s.Status == JobFailed
}

// JobFailure is fatal to a whole job and becomes its terminal error state.
type JobFailure struct {
	Message string
	Err     error
}

func (e *JobFailure) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *JobFailure) Unwrap() error { return e.Err }
