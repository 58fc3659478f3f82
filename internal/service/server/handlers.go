package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/vertextoedge/media-download-web/internal/domain"
	"go.uber.org/zap"
)

const (
	maxBodyBytes        = 1 << 20
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

type infoRequest struct {
	URL string `json:"url"`
}

type downloadRequest struct {
	URL      string `json:"url"`
	FormatID string `json:"format_id"`
}

// decodeBody reads a JSON body; an empty body decodes as the zero value
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeJobError maps job errors to status codes and client messages
func (s *Server) writeJobError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrURLRequired):
		writeError(w, http.StatusBadRequest, "URL is required")
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "Download not found")
	case errors.Is(err, domain.ErrNotReady):
		writeError(w, http.StatusBadRequest, "Download not complete")
	case errors.Is(err, domain.ErrArtifactMissing):
		writeError(w, http.StatusNotFound, "File not found")
	case errors.Is(err, domain.ErrNoSpace):
		writeError(w, http.StatusInsufficientStorage, err.Error())
	default:
		s.logger.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// handleInfo returns media metadata without downloading
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	var req infoRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	info, err := s.jobs.Info(r.Context(), req.URL)
	if err != nil {
		if errors.Is(err, domain.ErrURLRequired) {
			s.writeJobError(w, err)
			return
		}
		s.logger.Debug("info extraction failed", zap.String("url", req.URL), zap.Error(err))
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, info)
}

// handleDownload starts a download job
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	var req downloadRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	id, err := s.jobs.StartDownload(req.URL, req.FormatID)
	if err != nil {
		s.writeJobError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"download_id": id})
}

// handleStatus returns the polled job state
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	view, err := s.jobs.Status(chi.URLParam(r, "download_id"))
	if err != nil {
		s.writeJobError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleFile streams a finished artifact as an attachment
func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "download_id")
	artifact, err := s.jobs.Artifact(id)
	if err != nil {
		s.writeJobError(w, err)
		return
	}

	f, err := os.Open(artifact.Path)
	if err != nil {
		s.logger.Warn("failed to open artifact", zap.String("download_id", id), zap.Error(err))
		writeError(w, http.StatusNotFound, "File not found")
		return
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		s.writeJobError(w, err)
		return
	}

	w.Header().Set("Content-Disposition", contentDisposition(artifact.DisplayName))
	http.ServeContent(w, r, artifact.DisplayName, stat.ModTime(), f)
}

// contentDisposition builds an attachment header that survives non-ASCII titles
func contentDisposition(name string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": name}); v != "" {
		return v
	}
	return "attachment; filename*=UTF-8''" + url.PathEscape(name)
}

// handleCleanup removes a job and its artifact; unknown ids succeed too
func (s *Server) handleCleanup(w http.ResponseWriter, r *http.Request) {
	s.jobs.Cleanup(chi.URLParam(r, "download_id"))
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// handleHistory lists recently finished jobs from the ledger
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	if s.history == nil {
		writeJSON(w, http.StatusOK, map[string]any{"jobs": []domain.HistoryEntry{}})
		return
	}

	entries, err := s.history.Recent(limit)
	if err != nil {
		s.logger.Error("failed to read history", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to read history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": entries})
}

// handleStats reports live job counts and disk usage
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.jobs.Stats())
}
