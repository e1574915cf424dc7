// Package analytics feeds assessment usage events into Elasticsearch for
// reporting. Indexing is best-effort: a down cluster never fails a request.
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	"clinovia-inference/internal/assessment"
	"clinovia-inference/internal/common/logger"
)

// UsageEvent is the per-assessment document indexed for usage reporting.
// Inputs and results stay out; only the metadata needed to count and slice
// usage is indexed.
type UsageEvent struct {
	AssessmentID     string    `json:"assessment_id"`
	Specialty        string    `json:"specialty"`
	AssessmentType   string    `json:"assessment_type"`
	ClinicianID      string    `json:"clinician_id"`
	HasPatient       bool      `json:"has_patient"`
	AlgorithmVersion string    `json:"algorithm_version"`
	Status           string    `json:"status"`
	Timestamp        time.Time `json:"timestamp"`
}

// UsageIndexer writes usage events to a single index.
type UsageIndexer struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewUsageIndexer(client *elasticsearch.Client, index string, log logger.Logger) *UsageIndexer {
	return &UsageIndexer{client: client, index: index, logger: log}
}

// IndexUsage records one completed assessment. Failures are logged and
// dropped.
func (u *UsageIndexer) IndexUsage(ctx context.Context, record *assessment.Record) {
	event := UsageEvent{
		AssessmentID:     record.ID.String(),
		Specialty:        record.Specialty,
		AssessmentType:   record.AssessmentType,
		ClinicianID:      record.ClinicianID,
		HasPatient:       record.PatientID != nil,
		AlgorithmVersion: record.AlgorithmVersion,
		Status:           record.Status,
		Timestamp:        record.CreatedAt,
	}

	body, err := json.Marshal(event)
	if err != nil {
		u.logger.WithError(err).Warn("Failed to serialize usage event", map[string]interface{}{
			"assessment_id": event.AssessmentID,
		})
		return
	}

	res, err := u.client.Index(u.index, bytes.NewReader(body),
		u.client.Index.WithContext(ctx),
		u.client.Index.WithDocumentID(event.AssessmentID),
	)
	if err != nil {
		u.logger.WithError(err).Warn("Failed to index usage event", map[string]interface{}{
			"assessment_id": event.AssessmentID,
			"index":         u.index,
		})
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		u.logger.Warn("Usage event rejected by index", map[string]interface{}{
			"assessment_id": event.AssessmentID,
			"index":         u.index,
			"status":        res.Status(),
		})
	}
}
