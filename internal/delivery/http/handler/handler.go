package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/user/site-crawler/internal/delivery/http/request"
	"github.com/user/site-crawler/internal/delivery/http/response"
	"github.com/user/site-crawler/internal/entity"
	"github.com/user/site-crawler/internal/repository"
	"github.com/user/site-crawler/internal/usecase"
)

type Handler struct {
	jobManager usecase.JobManager
	artifacts  repository.ArtifactStore
	logger     *zap.Logger
}

func NewHandler(jobManager usecase.JobManager, artifacts repository.ArtifactStore, logger *zap.Logger) *Handler {
	return &Handler{
		jobManager: jobManager,
		artifacts:  artifacts,
		logger:     logger,
	}
}

func (h *Handler) HandleSubmitCrawl(w http.ResponseWriter, r *http.Request) {
	var req request.SubmitCrawlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	jobID, err := h.jobManager.Submit(r.Context(), usecase.JobRequest{
		URL:            req.URL,
		MaxDepth:       req.MaxDepth,
		AllowedDomains: req.AllowedDomains,
		Filters:        req.Filters,
	})
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidRequest) {
			h.writeJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("failed to submit crawl", zap.String("url", req.URL), zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusAccepted, response.SubmitCrawlResponse{
		TaskID:  jobID,
		Message: "Crawling started",
	})
}

func (h *Handler) HandleGetStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")

	status, err := h.jobManager.GetStatus(r.Context(), jobID)
	if err != nil {
		h.logger.Error("failed to get job status", zap.String("job_id", jobID), zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	code := http.StatusOK
	if status.Status == entity.JobNotFound {
		code = http.StatusNotFound
	}
	h.writeJSON(w, code, response.NewJobStatusResponse(status))
}

func (h *Handler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")

	f, err := h.artifacts.Open(r.Context(), name)
	if err != nil {
		h.logger.Debug("artifact not available", zap.String("filename", name), zap.Error(err))
		h.writeJSONError(w, "File not found", http.StatusNotFound)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeContent(w, r, name, time.Time{}, f)
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, response.ErrorResponse{Error: message})
}
