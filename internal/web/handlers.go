package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gemdesk/inventory/internal/ingest"
	"github.com/gemdesk/inventory/internal/logging"
)

// ingestResponse is returned from a successful submission.
type ingestResponse struct {
	IngestionID string `json:"ingestionId"`
}

// handleIngest accepts a multipart submission and starts an asynchronous
// ingestion. Form fields: "file" (required), "owner" (required), "batchSize"
// (optional override).
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Ingest.MaxFileSize)
	if err := r.ParseMultipartForm(s.cfg.Ingest.MaxFileSize); err != nil {
		writeError(w, r, http.StatusRequestEntityTooLarge, "file too large or malformed form")
		return
	}

	owner := r.FormValue("owner")
	if owner == "" {
		writeError(w, r, http.StatusBadRequest, "owner is required")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "could not read file")
		return
	}

	batchSize := 0
	if v := r.FormValue("batchSize"); v != "" {
		batchSize, err = strconv.Atoi(v)
		if err != nil || batchSize <= 0 {
			writeError(w, r, http.StatusBadRequest, "batchSize must be a positive integer")
			return
		}
	}

	id, err := s.service.StartIngestion(r.Context(), owner, header.Filename, data, batchSize)
	if err != nil {
		if errors.Is(err, ingest.ErrTooManySubmissions) {
			w.Header().Set("Retry-After", "30")
			writeError(w, r, http.StatusTooManyRequests, err.Error())
			return
		}
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	log.Info("submission accepted",
		"ingestion_id", id,
		"owner", owner,
		"file", header.Filename,
		"size", len(data),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(ingestResponse{IngestionID: id})
}

// handleProgress streams progress updates as server-sent events until the
// ingestion finishes or the client disconnects.
func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "ingestionID")

	progressCh, err := s.service.SubscribeProgress(id)
	if err != nil {
		writeError(w, r, http.StatusNotFound, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, r, http.StatusInternalServerError, "streaming not supported")
		return
	}

	for {
		select {
		case progress, ok := <-progressCh:
			if !ok {
				fmt.Fprintf(w, "event: done\ndata: {}\n\n")
				flusher.Flush()
				return
			}
			data, _ := json.Marshal(progress)
			fmt.Fprintf(w, "event: progress\ndata: %s\n\n", data)
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

// handleReport returns the ingestion report, waiting for completion if the
// run is still in flight. A cancelled run returns its partial report.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "ingestionID")

	report, err := s.service.Result(r.Context(), id)
	if report == nil {
		status := http.StatusNotFound
		if r.Context().Err() != nil {
			status = http.StatusRequestTimeout
		}
		writeError(w, r, status, errString(err, "report not available"))
		return
	}

	writeJSON(w, report)
}

// handleErrorCSV serves the downloadable error table for an ingestion.
func (s *Server) handleErrorCSV(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "ingestionID")

	report, _ := s.service.Result(r.Context(), id)
	if report == nil {
		writeError(w, r, http.StatusNotFound, "report not available")
		return
	}

	csvData, err := report.ErrorCSV()
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "ingestion-errors-"+id+".csv"))
	_, _ = w.Write(csvData)
}

// handleCancel requests cooperative cancellation. Batches already persisted
// stay persisted; the report reflects the partial outcome.
func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "ingestionID")

	if err := s.service.Cancel(id); err != nil {
		writeError(w, r, http.StatusNotFound, err.Error())
		return
	}

	logging.FromContext(r.Context()).Info("cancellation requested", "ingestion_id", id)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "cancelling"})
}

// handleLimiterStatus reports submission-slot usage for monitoring.
func (s *Server) handleLimiterStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.service.Limiter().Status())
}

// handleHealth is the liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

func errString(err error, fallback string) string {
	if err != nil {
		return err.Error()
	}
	return fallback
}
