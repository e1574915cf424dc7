// Package assessment implements the execution pipeline shared by every
// clinical assessment: run the model function (memoized when enabled),
// persist an immutable provenance record, and hand the result back unchanged.
package assessment

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Serializable is the capability every pipeline payload must carry: a
// JSON-safe map rendering used for cache keys and persisted snapshots.
type Serializable interface {
	JSONMap() (map[string]interface{}, error)
}

// Input is a deserialized assessment request body.
type Input interface {
	Serializable
}

// Output is an assessment result. Error-shaped outputs (status=error from a
// failed model call) implement this the same way as successes, so
// persistence and serialization stay uniform.
type Output interface {
	Serializable
}

// ToJSONMap renders any JSON-taggable value as a map. The round trip through
// the encoder applies struct tags and drops unexported state, giving the
// exact shape that will be persisted and hashed.
func ToJSONMap(v interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize %T: %w", v, err)
	}
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("failed to map %T: %w", v, err)
	}
	return out, nil
}

// Record statuses.
const (
	StatusCompleted = "completed"
	StatusError     = "error"
)

// Record is one persisted assessment: who ran what against which input, and
// what came back. Immutable after creation.
type Record struct {
	ID               uuid.UUID              `json:"id"`
	Specialty        string                 `json:"specialty"`
	AssessmentType   string                 `json:"assessment_type"`
	ClinicianID      string                 `json:"clinician_id"`
	PatientID        *string                `json:"patient_id,omitempty"`
	InputData        map[string]interface{} `json:"input_data"`
	Result           map[string]interface{} `json:"result"`
	AlgorithmVersion string                 `json:"algorithm_version"`
	Status           string                 `json:"status"`
	CreatedAt        time.Time              `json:"created_at"`
}
