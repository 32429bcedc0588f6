package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"

	apperrors "github.com/dygy/midi-service/internal/errors"
	"github.com/dygy/midi-service/internal/observability"
	"github.com/dygy/midi-service/internal/pipeline"
)

const maxRequestSize = 1 << 20 // 1MB of JSON is far more than a request needs

// Error strings returned to clients
const (
	msgMissingFields    = "Missing audioUrl or trackId"
	msgInvalidTrackID   = "Invalid trackId"
	msgGenerationFailed = "MIDI generation failed"
)

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

type queuedResponse struct {
	Status  string `json:"status"`
	TrackID string `json:"trackId"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// handleHealth reports liveness without touching any dependency
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:  "healthy",
		Service: serviceName,
		Version: serviceVersion,
	})
}

// handleGenerate downloads the audio, transcribes it and returns the MIDI
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(w, r)
	if err != nil {
		s.writeError(w, r, req, err)
		return
	}

	artifact, err := s.generator.Generate(r.Context(), req)
	if err != nil {
		s.writeError(w, r, req, err)
		return
	}

	w.Header().Set("Content-Type", "audio/midi")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.TrackID+".mid"))
	w.Header().Set("X-MIDI-Size", strconv.Itoa(len(artifact.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(artifact.Data); err != nil {
		s.logger.Debug("write response", slog.String("track_id", req.TrackID), slog.Any("error", err))
	}
}

// handleGenerateAsync validates the request and acknowledges it. Nothing
// is downloaded or transcribed.
func (s *Server) handleGenerateAsync(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRequest(w, r)
	if err != nil {
		s.writeError(w, r, req, err)
		return
	}

	writeJSON(w, http.StatusAccepted, queuedResponse{
		Status:  "queued",
		TrackID: req.TrackID,
		Message: "MIDI generation started",
	})
}

// decodeRequest parses and validates the JSON body
func decodeRequest(w http.ResponseWriter, r *http.Request) (pipeline.Request, error) {
	var req pipeline.Request

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestSize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, &apperrors.ValidationError{Cause: fmt.Errorf("%w: %v", apperrors.ErrMalformedBody, err)}
	}
	return req, req.Validate()
}

// writeError maps err onto a status code and JSON body
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, req pipeline.Request, err error) {
	log := s.logger.With(
		slog.String("track_id", req.TrackID),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	switch {
	case errors.Is(err, apperrors.ErrMalformedBody):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgMissingFields, Message: err.Error()})

	case errors.Is(err, apperrors.ErrInvalidTrackID):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgInvalidTrackID})

	case apperrors.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgMissingFields})

	case apperrors.IsGeneration(err):
		log.Error("no MIDI output", slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msgGenerationFailed})

	case apperrors.IsDownload(err):
		log.Error("audio download failed", slog.Any("error", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msgGenerationFailed, Message: err.Error()})

	default:
		log.Error("generation failed", slog.Any("error", err))
		observability.CaptureError(r.Context(), err, map[string]string{"track_id": req.TrackID})
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msgGenerationFailed, Message: err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
