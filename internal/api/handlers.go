package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/JakeFAU/editorial-harvester/internal/article"
	"github.com/JakeFAU/editorial-harvester/internal/crawler"
	"github.com/JakeFAU/editorial-harvester/internal/dispatcher"
	"github.com/JakeFAU/editorial-harvester/internal/orchestrator"
)

const maxBodyBytes = 1 << 20

type feedFetchRequest struct {
	Sources   []orchestrator.Source `json:"sources"`
	TimeoutMs int                   `json:"timeoutMs"`
}

type articleRequest struct {
	URL  string   `json:"url"`
	URLs []string `json:"urls"`
}

type articleBatchResponse struct {
	Success bool             `json:"success"`
	Results []article.Result `json:"results"`
}

type crawlSubmitResponse struct {
	Success bool   `json:"success"`
	JobID   string `json:"jobId"`
}

type jobResponse struct {
	Success bool        `json:"success"`
	Job     crawler.Job `json:"job"`
}

// decodeBody reads an optional JSON body into dst. An empty body leaves dst
// untouched.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

func (s *Server) fetchFeeds(w http.ResponseWriter, r *http.Request) {
	var req feedFetchRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, s.logger, http.StatusBadRequest, err.Error())
		return
	}
	if req.TimeoutMs < 0 {
		writeError(w, s.logger, http.StatusBadRequest, "timeoutMs must be >= 0")
		return
	}
	sources := req.Sources
	if len(sources) == 0 {
		sources = s.cfg.Feeds.Sources
	}
	if len(sources) == 0 {
		writeError(w, s.logger, http.StatusBadRequest, "no feed sources given or configured")
		return
	}
	runner := s.deps.Feeds.WithTimeout(time.Duration(req.TimeoutMs) * time.Millisecond)
	writeJSON(w, s.logger, http.StatusOK, runner.Run(r.Context(), sources))
}

func (s *Server) latestFeeds(w http.ResponseWriter, _ *http.Request) {
	if s.deps.Batches == nil {
		writeError(w, s.logger, http.StatusNotFound, "scheduled refresh is disabled")
		return
	}
	batch, ok := s.deps.Batches.Latest()
	if !ok {
		writeError(w, s.logger, http.StatusNotFound, "no scheduled batch yet")
		return
	}
	writeJSON(w, s.logger, http.StatusOK, batch)
}

func (s *Server) articleMetadata(w http.ResponseWriter, r *http.Request) {
	var req articleRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, s.logger, http.StatusBadRequest, err.Error())
		return
	}
	switch {
	case len(req.URLs) > 0:
		results := s.deps.Articles.FetchMany(r.Context(), req.URLs)
		writeJSON(w, s.logger, http.StatusOK, articleBatchResponse{Success: true, Results: results})
	case req.URL != "":
		res := s.deps.Articles.Fetch(r.Context(), req.URL)
		if res.Metadata == nil {
			// Only an unusable URL leaves metadata empty.
			writeJSON(w, s.logger, http.StatusBadRequest, res)
			return
		}
		writeJSON(w, s.logger, http.StatusOK, res)
	default:
		writeError(w, s.logger, http.StatusBadRequest, "url or urls required")
	}
}

func (s *Server) submitCrawl(w http.ResponseWriter, r *http.Request) {
	var req crawler.ListingRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, s.logger, http.StatusBadRequest, err.Error())
		return
	}
	if req.MaxPages < 0 {
		writeError(w, s.logger, http.StatusBadRequest, "maxPages must be >= 0")
		return
	}
	jobID, err := s.deps.Dispatcher.Submit(r.Context(), req)
	if err != nil {
		status := http.StatusServiceUnavailable
		if errors.Is(err, dispatcher.ErrMissingBaseURL) {
			status = http.StatusBadRequest
		} else {
			s.logger.Warn("Crawl submission failed", zap.String("base_url", req.BaseURL), zap.Error(err))
		}
		writeError(w, s.logger, status, err.Error())
		return
	}
	writeJSON(w, s.logger, http.StatusAccepted, crawlSubmitResponse{Success: true, JobID: jobID})
}

func (s *Server) getCrawl(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	job, err := s.deps.JobStore.GetJob(r.Context(), jobID)
	if err != nil {
		writeError(w, s.logger, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, s.logger, http.StatusOK, jobResponse{Success: true, Job: job})
}
