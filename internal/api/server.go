// internal/api/server.go
package api

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"clinovia-inference/internal/assessment"
	apperrors "clinovia-inference/internal/common/errors"
	"clinovia-inference/internal/common/logger"
	"clinovia-inference/internal/common/validation"
)

const clinicianHeader = "X-Clinician-ID"

// Config holds the HTTP surface settings.
type Config struct {
	BasePath string
}

// Server exposes the assessment catalog over HTTP. Each registered
// definition becomes one POST route; records are readable by id and by
// patient.
type Server struct {
	cfg      *Config
	registry *assessment.Registry
	runner   *assessment.Runner
	repo     assessment.Repository
	log      logger.Logger
}

func NewServer(
	cfg *Config,
	registry *assessment.Registry,
	runner *assessment.Runner,
	repo assessment.Repository,
	log logger.Logger,
) *Server {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.BasePath == "" {
		cfg.BasePath = "/api/v1"
	}
	return &Server{
		cfg:      cfg,
		registry: registry,
		runner:   runner,
		repo:     repo,
		log:      log,
	}
}

// Router builds the full route table: one POST per assessment, record
// lookups, health, and Prometheus metrics.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	for _, def := range s.registry.List() {
		r.HandleFunc(s.cfg.BasePath+def.Route, s.handleAssessment(def)).Methods(http.MethodPost)
	}

	r.HandleFunc(s.cfg.BasePath+"/assessments/{id}", s.handleGetAssessment).Methods(http.MethodGet)
	r.HandleFunc(s.cfg.BasePath+"/patients/{patientID}/assessments", s.handleListPatientAssessments).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	return r
}

func (s *Server) handleAssessment(def *assessment.Definition) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clinicianID := r.Header.Get(clinicianHeader)
		if clinicianID == "" {
			writeError(w, http.StatusBadRequest, "MISSING_CLINICIAN", "X-Clinician-ID header is required")
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", "failed to read request body")
			return
		}

		if def.InputSchema != nil {
			var raw map[string]interface{}
			if err := json.Unmarshal(body, &raw); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", "request body is not a JSON object")
				return
			}
			result, err := validation.ValidateInput(raw, def.InputSchema)
			if err != nil {
				s.log.WithError(err).Error("Schema validation could not run", map[string]interface{}{
					"assessment": def.Name,
				})
				writeError(w, http.StatusInternalServerError, string(apperrors.ErrCodeInternal), "input validation failed to run")
				return
			}
			if !result.Valid {
				writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
					"error": map[string]interface{}{
						"code":    string(apperrors.ErrCodeInvalidInput),
						"message": "input failed schema validation",
						"details": result.Errors,
					},
				})
				return
			}
		}

		input := def.NewInput()
		if err := json.Unmarshal(body, input); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", "request body does not match the assessment input")
			return
		}

		patientID := r.URL.Query().Get("patient_id")

		out, record, err := s.runner.Run(r.Context(), def, input, clinicianID, patientID)
		if err != nil {
			s.writeRunError(w, def, err)
			return
		}

		resultMap, err := out.JSONMap()
		if err != nil {
			s.log.WithError(err).Error("Result serialization failed", map[string]interface{}{
				"assessment": def.Name,
			})
			writeError(w, http.StatusInternalServerError, string(apperrors.ErrCodeInternal), "result serialization failed")
			return
		}
		resultMap["assessment_id"] = record.ID.String()

		writeJSON(w, http.StatusOK, resultMap)
	}
}

func (s *Server) handleGetAssessment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, string(apperrors.ErrCodeInvalidInput), "assessment id must be a UUID")
		return
	}

	record, err := s.repo.GetByID(r.Context(), id)
	if err != nil {
		if apperrors.CodeOf(err) == apperrors.ErrCodeRecordNotFound {
			writeError(w, http.StatusNotFound, string(apperrors.ErrCodeRecordNotFound), "assessment not found")
			return
		}
		s.log.WithError(err).Error("Assessment lookup failed", map[string]interface{}{"id": id.String()})
		writeError(w, http.StatusInternalServerError, string(apperrors.CodeOf(err)), "assessment lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleListPatientAssessments(w http.ResponseWriter, r *http.Request) {
	patientID := mux.Vars(r)["patientID"]

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, string(apperrors.ErrCodeInvalidInput), "limit must be a positive integer")
			return
		}
		if parsed > 200 {
			parsed = 200
		}
		limit = parsed
	}

	records, err := s.repo.ListByPatient(r.Context(), patientID, limit)
	if err != nil {
		s.log.WithError(err).Error("Patient history lookup failed", map[string]interface{}{
			"patient_id": patientID,
		})
		writeError(w, http.StatusInternalServerError, string(apperrors.CodeOf(err)), "patient history lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"patient_id":  patientID,
		"count":       len(records),
		"assessments": records,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeRunError maps pipeline failures onto HTTP statuses. Client-side
// feature problems are 422, storage problems 500; unknown errors fall
// through as 500.
func (s *Server) writeRunError(w http.ResponseWriter, def *assessment.Definition, err error) {
	code := apperrors.CodeOf(err)

	status := http.StatusInternalServerError
	switch code {
	case apperrors.ErrCodeMissingFeature,
		apperrors.ErrCodeInvalidInput,
		apperrors.ErrCodeShapeMismatch:
		status = http.StatusUnprocessableEntity
	case apperrors.ErrCodeArtifactNotFound,
		apperrors.ErrCodeArtifactCorrupted:
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		s.log.WithError(err).Error("Assessment execution failed", map[string]interface{}{
			"assessment": def.Name,
			"error_code": string(code),
		})
	}

	var stdErr *apperrors.StandardError
	message := "assessment execution failed"
	if stderrors.As(err, &stdErr) {
		message = stdErr.Message
	}
	writeError(w, status, string(code), message)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
