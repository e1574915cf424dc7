// Package clinical holds the response metadata shared by every assessment
// output, and the specialty subpackages implementing the catalog.
package clinical

import (
	"time"

	"github.com/google/uuid"
)

// Prediction statuses. Partial marks results computed with defaulted inputs.
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusPartial = "partial"
)

// PredictionMeta is embedded in every assessment output: identity, model
// provenance, and error reporting in one consistent shape, so callers can
// always deserialize a response the same way regardless of outcome.
type PredictionMeta struct {
	PredictionID string    `json:"prediction_id"`
	ModelName    string    `json:"model_name"`
	ModelVersion string    `json:"model_version"`
	Status       string    `json:"status"`
	Error        string    `json:"error,omitempty"`
	Warnings     []string  `json:"warnings,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewMeta stamps a successful prediction.
func NewMeta(modelName, modelVersion string) PredictionMeta {
	return PredictionMeta{
		PredictionID: uuid.NewString(),
		ModelName:    modelName,
		ModelVersion: modelVersion,
		Status:       StatusSuccess,
		Timestamp:    time.Now().UTC(),
	}
}

// NewErrorMeta stamps a failed prediction. The response stays schema-valid;
// predictive fields carry placeholders chosen by the caller.
func NewErrorMeta(modelName, modelVersion string, err error) PredictionMeta {
	meta := NewMeta(modelName, modelVersion)
	meta.Status = StatusError
	meta.Error = err.Error()
	return meta
}

// WithWarnings marks a result partial, typically when defaults filled in
// missing clinical measurements.
func (m PredictionMeta) WithWarnings(warnings ...string) PredictionMeta {
	if len(warnings) == 0 {
		return m
	}
	m.Warnings = append(m.Warnings, warnings...)
	if m.Status == StatusSuccess {
		m.Status = StatusPartial
	}
	return m
}
