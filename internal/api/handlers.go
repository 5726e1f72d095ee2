package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/maltedev/shopify-product-importer/internal/input"
	"github.com/maltedev/shopify-product-importer/internal/jobs"
	"github.com/maltedev/shopify-product-importer/internal/models"
	"github.com/maltedev/shopify-product-importer/internal/shopify"
)

const defaultMaxUpload = 10 << 20

// JobService is implemented by *jobs.Manager.
type JobService interface {
	Submit(ctx context.Context, urls []string, templateColumns []string) (*models.Job, error)
	Get(ctx context.Context, jobID string) (*models.Job, error)
	List(ctx context.Context) ([]*models.Job, error)
	Batch(ctx context.Context, jobID string, n int) (*models.Batch, error)
}

type Handlers struct {
	jobs      JobService
	maxUpload int64
	logger    *slog.Logger
}

func NewHandlers(svc JobService, maxUpload int64, logger *slog.Logger) *Handlers {
	if maxUpload <= 0 {
		maxUpload = defaultMaxUpload
	}
	return &Handlers{
		jobs:      svc,
		maxUpload: maxUpload,
		logger:    logger.With("component", "api"),
	}
}

type CreateImportResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// JobResponse adds the progress fraction and download labels to a job.
type JobResponse struct {
	*models.Job
	Progress  float64    `json:"progress"`
	Downloads []Download `json:"downloads"`
}

type Download struct {
	Batch    int    `json:"batch"`
	Name     string `json:"name"`
	Filename string `json:"filename"`
	URL      string `json:"url"`
}

func newJobResponse(job *models.Job) JobResponse {
	downloads := make([]Download, 0, len(job.Batches))
	for _, b := range job.Batches {
		downloads = append(downloads, Download{
			Batch:    b.Index,
			Name:     shopify.DisplayName(b),
			Filename: b.Filename,
			URL:      fmt.Sprintf("/api/v1/imports/%s/batches/%d", job.ID, b.Index),
		})
	}
	return JobResponse{
		Job:       job,
		Progress:  job.Progress(),
		Downloads: downloads,
	}
}

// CreateImport accepts a multipart form with a "urls" file (CSV or XLSX, URLs
// in the first column) and an optional "template" file.
func (h *Handlers) CreateImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	urls, err := readUpload(r, "urls", input.ReadURLs)
	if err != nil {
		switch {
		case errors.Is(err, http.ErrMissingFile):
			h.respondError(w, http.StatusBadRequest, "urls file is required")
		case errors.Is(err, input.ErrNoURLs):
			h.respondError(w, http.StatusBadRequest, "urls file contains no product URLs")
		default:
			h.respondError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	columns, err := readUpload(r, "template", input.ReadColumns)
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := h.jobs.Submit(r.Context(), urls, columns)
	if err != nil {
		h.logger.Error("failed to submit import", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to create import job")
		return
	}

	h.respondJSON(w, http.StatusCreated, CreateImportResponse{
		JobID:  job.ID,
		Status: job.Status,
	})
}

func (h *Handlers) ListImports(w http.ResponseWriter, r *http.Request) {
	list, err := h.jobs.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list imports", "error", err)
		h.respondError(w, http.StatusInternalServerError, "failed to list import jobs")
		return
	}

	resp := make([]JobResponse, 0, len(list))
	for _, job := range list {
		resp = append(resp, newJobResponse(job))
	}
	h.respondJSON(w, http.StatusOK, resp)
}

func (h *Handlers) GetImport(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")

	job, err := h.jobs.Get(r.Context(), jobID)
	if err != nil {
		h.handleLookupError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, newJobResponse(job))
}

func (h *Handlers) DownloadBatch(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	n, err := strconv.Atoi(chi.URLParam(r, "batch"))
	if err != nil || n < 1 {
		h.respondError(w, http.StatusBadRequest, "batch must be a positive number")
		return
	}

	batch, err := h.jobs.Batch(r.Context(), jobID, n)
	if err != nil {
		h.handleLookupError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", batch.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(batch.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(batch.Data); err != nil {
		h.logger.Error("failed to write batch", "job_id", jobID, "batch", n, "error", err)
	}
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) handleLookupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, jobs.ErrJobNotFound):
		h.respondError(w, http.StatusNotFound, "job not found")
	case errors.Is(err, jobs.ErrBatchNotFound):
		h.respondError(w, http.StatusNotFound, "batch not found")
	default:
		h.logger.Error("lookup failed", "error", err)
		h.respondError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

func readUpload(r *http.Request, field string, read func(name string, src io.Reader) ([]string, error)) ([]string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return read(header.Filename, file)
}
