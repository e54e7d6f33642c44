package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/ncparse/internal/pipeline"
	"github.com/dgallion1/ncparse/internal/report"
)

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job := s.job(w, r)
	if job == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job.Snapshot())
}

// handleJobReport returns the Markdown summary of a parsed job.
func (s *Server) handleJobReport(w http.ResponseWriter, r *http.Request) {
	job := s.job(w, r)
	if job == nil {
		return
	}
	f := job.Filing()
	if f == nil {
		jsonError(w, "filing not parsed yet", http.StatusConflict)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	io.WriteString(w, report.Markdown(f))
}

// handleDocumentText returns the rendered plain text of one document.
func (s *Server) handleDocumentText(w http.ResponseWriter, r *http.Request) {
	job := s.job(w, r)
	if job == nil {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		jsonError(w, "invalid document index", http.StatusBadRequest)
		return
	}

	snap := job.Snapshot()
	if snap.Summary == nil {
		jsonError(w, "filing not parsed yet", http.StatusConflict)
		return
	}
	if index >= snap.Progress.TotalDocuments {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	text, ok := job.DocumentText(index)
	if !ok {
		status := http.StatusUnprocessableEntity
		if snap.Status == pipeline.StatusRendering {
			status = http.StatusConflict
		}
		jsonError(w, "document has no rendered text", status)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, text)
}

func (s *Server) job(w http.ResponseWriter, r *http.Request) *pipeline.Job {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
	}
	return job
}
