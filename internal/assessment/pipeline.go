// internal/assessment/pipeline.go
package assessment

import (
	"context"
	"encoding/json"
	"time"

	"clinovia-inference/internal/cache"
	apperrors "clinovia-inference/internal/common/errors"
	"clinovia-inference/internal/common/logger"
	"clinovia-inference/internal/common/metrics"
	"clinovia-inference/internal/common/observability"
)

// UsageIndexer records that an assessment ran, for analytics. Indexing is
// best-effort and must never fail a request.
type UsageIndexer interface {
	IndexUsage(ctx context.Context, record *Record)
}

// Runner executes assessments: consult the result cache, run the model
// function, persist exactly one record per invocation, and return the result
// unchanged. The cache covers only the model call; persistence always runs.
type Runner struct {
	repo    Repository
	cache   cache.ResultCache
	indexer UsageIndexer
	logger  logger.Logger
	obs     *observability.Observability
}

// RunnerOption configures optional collaborators.
type RunnerOption func(*Runner)

func WithResultCache(c cache.ResultCache) RunnerOption {
	return func(r *Runner) { r.cache = c }
}

func WithUsageIndexer(indexer UsageIndexer) RunnerOption {
	return func(r *Runner) { r.indexer = indexer }
}

func WithObservability(obs *observability.Observability) RunnerOption {
	return func(r *Runner) { r.obs = obs }
}

func NewRunner(repo Repository, log logger.Logger, opts ...RunnerOption) *Runner {
	r := &Runner{repo: repo, logger: log}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one assessment end to end.
//
// The effective patient identifier is the explicit argument when non-empty,
// else the input's patient_id field, else none; the assessment then belongs
// to the clinician alone. A persistence failure is a hard failure of the
// whole request, even though the prediction itself succeeded.
func (r *Runner) Run(ctx context.Context, def *Definition, input Input, clinicianID, patientID string) (Output, *Record, error) {
	start := time.Now()

	inputMap, err := input.JSONMap()
	if err != nil {
		return nil, nil, apperrors.NewInvalidInputError(err.Error())
	}

	output, err := r.execute(ctx, def, input, inputMap)
	if err != nil {
		r.observe(ctx, def, string(apperrors.CodeOf(err)), start)
		return nil, nil, err
	}

	resultMap, err := output.JSONMap()
	if err != nil {
		r.observe(ctx, def, string(apperrors.ErrCodePredictionFailed), start)
		return nil, nil, apperrors.NewPredictionFailedError(def.Name, err)
	}

	record := &Record{
		Specialty:        def.Specialty(),
		AssessmentType:   def.Type,
		ClinicianID:      clinicianID,
		PatientID:        effectivePatientID(patientID, inputMap),
		InputData:        inputMap,
		Result:           resultMap,
		AlgorithmVersion: def.Version,
		Status:           recordStatus(resultMap),
	}

	if err := r.repo.Create(ctx, record); err != nil {
		r.logger.WithError(err).Error("Failed to persist assessment", map[string]interface{}{
			"assessment_type": def.Type,
			"clinician_id":    clinicianID,
		})
		r.observe(ctx, def, string(apperrors.ErrCodeDatabaseInsertFailed), start)
		return nil, nil, err
	}

	if r.indexer != nil {
		r.indexer.IndexUsage(ctx, record)
	}

	r.logger.Info("Assessment completed", map[string]interface{}{
		"assessment_id":   record.ID.String(),
		"assessment_type": def.Type,
		"specialty":       record.Specialty,
		"status":          record.Status,
		"duration_ms":     time.Since(start).Milliseconds(),
	})

	metrics.AssessmentsCompleted.WithLabelValues(def.Type).Inc()
	metrics.AssessmentDuration.WithLabelValues(def.Type).Observe(time.Since(start).Seconds())
	if r.obs != nil {
		r.obs.RecordAssessment(ctx, def.Type, record.Status)
		r.obs.RecordDuration(ctx, time.Since(start), def.Type)
	}

	return output, record, nil
}

// execute runs the model function, consulting the result cache when the
// definition allows it. Cache backend failures degrade to a fresh
// computation rather than failing the request.
func (r *Runner) execute(ctx context.Context, def *Definition, input Input, inputMap map[string]interface{}) (Output, error) {
	if !def.Cacheable || r.cache == nil {
		return def.Run(ctx, input)
	}

	key := cache.Key(def.Name, inputMap)

	payload, found, err := r.cache.Get(ctx, key)
	if err != nil {
		r.logger.WithError(err).Warn("Result cache lookup failed", map[string]interface{}{
			"assessment_type": def.Type,
		})
	} else if found {
		output := def.NewOutput()
		if err := json.Unmarshal(payload, output); err == nil {
			metrics.ResultCacheHits.WithLabelValues(def.Type).Inc()
			return output, nil
		}
		r.logger.Warn("Discarding undecodable cache entry", map[string]interface{}{
			"assessment_type": def.Type,
			"cache_key":       key,
		})
	}
	metrics.ResultCacheMisses.WithLabelValues(def.Type).Inc()

	output, err := def.Run(ctx, input)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(output); err == nil {
		if err := r.cache.Set(ctx, key, payload); err != nil {
			r.logger.WithError(err).Warn("Result cache store failed", map[string]interface{}{
				"assessment_type": def.Type,
			})
		}
	}
	return output, nil
}

func (r *Runner) observe(ctx context.Context, def *Definition, errorCode string, start time.Time) {
	metrics.AssessmentsFailed.WithLabelValues(def.Type, errorCode).Inc()
	if r.obs != nil {
		r.obs.RecordAssessment(ctx, def.Type, StatusError)
		r.obs.RecordDuration(ctx, time.Since(start), def.Type)
	}
}

func effectivePatientID(explicit string, inputMap map[string]interface{}) *string {
	if explicit != "" {
		return &explicit
	}
	if embedded, ok := inputMap["patient_id"].(string); ok && embedded != "" {
		return &embedded
	}
	return nil
}

// recordStatus mirrors the result's own status field: an error-shaped output
// from a failed model call is persisted as a failed attempt.
func recordStatus(resultMap map[string]interface{}) string {
	if status, ok := resultMap["status"].(string); ok && status == StatusError {
		return StatusError
	}
	return StatusCompleted
}
