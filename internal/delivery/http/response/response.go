package response

import (
	"time"

	"github.com/user/site-crawler/internal/entity"
)

type SubmitCrawlResponse struct {
	TaskID  string `json:"task_id"`
	Message string `json:"message"`
}

// JobStatusResponse is a DTO for job status, mirroring entity.JobStatus.
type JobStatusResponse struct {
	TaskID       string     `json:"task_id"`
	Status       string     `json:"status"` // "pending", "running", "completed", "failed", "not_found"
	Progress     int        `json:"progress"`
	Message      string     `json:"message,omitempty"`
	URL          string     `json:"url,omitempty"`
	Pages        int        `json:"pages,omitempty"`
	Links        int        `json:"links,omitempty"`
	LinksFile    string     `json:"links_file,omitempty"`
	ContentFile  string     `json:"content_file,omitempty"`
	AnalysisFile string     `json:"analysis_file,omitempty"`
	Analysis     string     `json:"analysis,omitempty"`
	Error        string     `json:"error,omitempty"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

func NewJobStatusResponse(s entity.JobStatus) JobStatusResponse {
	resp := JobStatusResponse{
		TaskID:       s.ID,
		Status:       s.Status,
		Progress:     s.Progress,
		Message:      s.Message,
		Pages:        s.Pages,
		Links:        s.Links,
		LinksFile:    s.LinksFile,
		ContentFile:  s.ContentFile,
		AnalysisFile: s.AnalysisFile,
		Analysis:     s.Analysis,
		Error:        s.Error,
	}
	if s.Job != nil {
		resp.URL = s.Job.SeedURL
	}
	if !s.UpdatedAt.IsZero() {
		updated := s.UpdatedAt
		resp.UpdatedAt = &updated
	}
	return resp
}

type ErrorResponse struct {
	Error string `json:"error"`
}
