package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinovia-inference/internal/assessment"
	"clinovia-inference/internal/clinical/cardiology"
	apperrors "clinovia-inference/internal/common/errors"
	"clinovia-inference/internal/common/logger"
)

type memRepo struct {
	records []*assessment.Record
}

func (m *memRepo) Create(_ context.Context, record *assessment.Record) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	m.records = append(m.records, record)
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id uuid.UUID) (*assessment.Record, error) {
	for _, r := range m.records {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, apperrors.NewRecordNotFoundError(id.String())
}

func (m *memRepo) ListByPatient(_ context.Context, patientID string, limit int) ([]*assessment.Record, error) {
	var out []*assessment.Record
	for _, r := range m.records {
		if r.PatientID != nil && *r.PatientID == patientID {
			out = append(out, r)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type brokenInput struct {
	Value float64 `json:"value"`
}

func (i *brokenInput) JSONMap() (map[string]interface{}, error) {
	return assessment.ToJSONMap(i)
}

func brokenDefinition() *assessment.Definition {
	return &assessment.Definition{
		Name:      "cardiology_broken",
		Type:      "broken",
		Version:   "1.0.0",
		Route:     "/cardiology/broken",
		NewInput:  func() assessment.Input { return &brokenInput{} },
		NewOutput: func() assessment.Output { return &brokenInput{} },
		Run: func(_ context.Context, _ assessment.Input) (assessment.Output, error) {
			return nil, apperrors.NewMissingFeatureError("value")
		},
	}
}

func newTestServer(t *testing.T) (*Server, *memRepo) {
	t.Helper()

	repo := &memRepo{}
	registry := assessment.NewRegistry()
	bp := cardiology.NewBPCategoryDefinition()
	bp.InputSchema = map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"systolic_bp", "diastolic_bp"},
		"properties": map[string]interface{}{
			"systolic_bp":  map[string]interface{}{"type": "number"},
			"diastolic_bp": map[string]interface{}{"type": "number"},
		},
	}
	require.NoError(t, registry.Register(bp))
	require.NoError(t, registry.Register(brokenDefinition()))

	runner := assessment.NewRunner(repo, logger.NewNop())
	return NewServer(nil, registry, runner, repo, logger.NewNop()), repo
}

func postJSON(t *testing.T, router http.Handler, path, body, clinician string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if clinician != "" {
		req.Header.Set(clinicianHeader, clinician)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAssessmentEndpoint(t *testing.T) {
	server, repo := newTestServer(t)
	router := server.Router()

	t.Run("successful run returns result with record id", func(t *testing.T) {
		rec := postJSON(t, router,
			"/api/v1/cardiology/bp-category?patient_id=patient-9",
			`{"systolic_bp": 150, "diastolic_bp": 95}`, "dr-lee")

		require.Equal(t, http.StatusOK, rec.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "hypertension_stage_2", body["category"])

		id, err := uuid.Parse(body["assessment_id"].(string))
		require.NoError(t, err)

		require.Len(t, repo.records, 1)
		assert.Equal(t, id, repo.records[0].ID)
		assert.Equal(t, "dr-lee", repo.records[0].ClinicianID)
		require.NotNil(t, repo.records[0].PatientID)
		assert.Equal(t, "patient-9", *repo.records[0].PatientID)
	})

	t.Run("missing clinician header is rejected", func(t *testing.T) {
		rec := postJSON(t, router, "/api/v1/cardiology/bp-category",
			`{"systolic_bp": 120, "diastolic_bp": 70}`, "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("schema violation returns 422 with details", func(t *testing.T) {
		rec := postJSON(t, router, "/api/v1/cardiology/bp-category",
			`{"systolic_bp": "high"}`, "dr-lee")

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		errObj := body["error"].(map[string]interface{})
		assert.Equal(t, string(apperrors.ErrCodeInvalidInput), errObj["code"])
		assert.NotEmpty(t, errObj["details"])
	})

	t.Run("malformed json body returns 400", func(t *testing.T) {
		rec := postJSON(t, router, "/api/v1/cardiology/bp-category", `{`, "dr-lee")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("hard pipeline failure maps onto error code", func(t *testing.T) {
		before := len(repo.records)

		rec := postJSON(t, router, "/api/v1/cardiology/broken", `{"value": 1}`, "dr-lee")

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		errObj := body["error"].(map[string]interface{})
		assert.Equal(t, string(apperrors.ErrCodeMissingFeature), errObj["code"])
		assert.Len(t, repo.records, before, "failed runs must not persist")
	})
}

func TestRecordEndpoints(t *testing.T) {
	server, repo := newTestServer(t)
	router := server.Router()

	rec := postJSON(t, router,
		"/api/v1/cardiology/bp-category?patient_id=patient-3",
		`{"systolic_bp": 118, "diastolic_bp": 76}`, "dr-kim")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, repo.records, 1)
	id := repo.records[0].ID

	t.Run("get by id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/assessments/"+id.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var record assessment.Record
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &record))
		assert.Equal(t, id, record.ID)
		assert.Equal(t, "cardiology", record.Specialty)
		assert.Equal(t, assessment.StatusCompleted, record.Status)
	})

	t.Run("unknown id is 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/assessments/"+uuid.NewString(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed id is 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/assessments/not-a-uuid", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("patient history", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/patients/patient-3/assessments", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, float64(1), body["count"])
		assert.Equal(t, "patient-3", body["patient_id"])
	})

	t.Run("bad limit is 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/patients/patient-3/assessments?limit=zero", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHealthz(t *testing.T) {
	server, _ := newTestServer(t)
	router := server.Router()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
