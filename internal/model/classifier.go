// internal/model/classifier.go
package model

import (
	"encoding/json"
	"fmt"
	"math"

	apperrors "clinovia-inference/internal/common/errors"
	"clinovia-inference/internal/preprocess"
)

// Artifact kinds as written by the training export.
const (
	artifactLogistic       = "logistic"
	artifactStandardScaler = "standard_scaler"
	artifactPipeline       = "pipeline"
)

// Classifier is a fitted classification model. PredictProba returns one
// probability per class, aligned with Classes, summing to one.
type Classifier interface {
	Classes() []string
	PredictProba(frame *preprocess.Frame) ([]float64, error)
}

// artifactEnvelope carries every field any artifact kind can declare; the
// Type discriminator selects which ones are read.
type artifactEnvelope struct {
	Type         string                 `json:"type"`
	ClassNames   []string               `json:"classes"`
	Coefficients [][]float64            `json:"coefficients"`
	Intercepts   []float64              `json:"intercepts"`
	Mean         []float64              `json:"mean"`
	Scale        []float64              `json:"scale"`
	NumericCols  []string               `json:"numeric_columns"`
	CatCols      []string               `json:"categorical_columns"`
	Categories   map[string][]string    `json:"categories"`
	Scaler       *standardScalerPayload `json:"scaler"`
}

type standardScalerPayload struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// ParseArtifact decodes an artifact document into its runtime form. The
// returned value is one of *LogisticModel, *StandardScaler, or
// *PipelineModel.
func ParseArtifact(key string, data []byte) (interface{}, error) {
	var env artifactEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, apperrors.NewArtifactCorruptedError(key, err)
	}

	switch env.Type {
	case artifactLogistic:
		m := &LogisticModel{
			classes:      env.ClassNames,
			coefficients: env.Coefficients,
			intercepts:   env.Intercepts,
		}
		if err := m.validate(); err != nil {
			return nil, apperrors.NewArtifactCorruptedError(key, err)
		}
		return m, nil

	case artifactStandardScaler:
		s := &StandardScaler{Mean: env.Mean, Scale: env.Scale}
		if err := s.validate(); err != nil {
			return nil, apperrors.NewArtifactCorruptedError(key, err)
		}
		return s, nil

	case artifactPipeline:
		m := &PipelineModel{
			classes:      env.ClassNames,
			coefficients: env.Coefficients,
			intercepts:   env.Intercepts,
			numericCols:  env.NumericCols,
			catCols:      env.CatCols,
			categories:   env.Categories,
		}
		if env.Scaler != nil {
			m.scaler = &StandardScaler{Mean: env.Scaler.Mean, Scale: env.Scaler.Scale}
		}
		if err := m.validate(); err != nil {
			return nil, apperrors.NewArtifactCorruptedError(key, err)
		}
		return m, nil

	default:
		return nil, apperrors.NewArtifactCorruptedError(key,
			fmt.Errorf("unknown artifact type %q", env.Type))
	}
}

// StandardScaler centers and scales a numeric row with training-time
// statistics.
type StandardScaler struct {
	Mean  []float64
	Scale []float64
}

func (s *StandardScaler) validate() error {
	if len(s.Mean) == 0 || len(s.Mean) != len(s.Scale) {
		return fmt.Errorf("scaler has %d means and %d scales", len(s.Mean), len(s.Scale))
	}
	for i, v := range s.Scale {
		if v == 0 {
			return fmt.Errorf("scaler scale[%d] is zero", i)
		}
	}
	return nil
}

func (s *StandardScaler) Transform(row []float64) ([]float64, error) {
	if len(row) != len(s.Mean) {
		return nil, apperrors.NewShapeMismatchError(len(s.Mean), len(row))
	}
	out := make([]float64, len(row))
	for i, v := range row {
		out[i] = (v - s.Mean[i]) / s.Scale[i]
	}
	return out, nil
}

// LogisticModel is a fitted logistic regression over an ordered numeric
// vector. Two classes use a single coefficient row and the sigmoid; more
// classes use one row per class and the softmax.
type LogisticModel struct {
	classes      []string
	coefficients [][]float64
	intercepts   []float64
}

func (m *LogisticModel) validate() error {
	if len(m.classes) < 2 {
		return fmt.Errorf("model declares %d classes", len(m.classes))
	}
	rows := len(m.classes)
	if rows == 2 {
		rows = 1
	}
	if len(m.coefficients) != rows || len(m.intercepts) != rows {
		return fmt.Errorf("model has %d coefficient rows and %d intercepts, want %d",
			len(m.coefficients), len(m.intercepts), rows)
	}
	for i := 1; i < len(m.coefficients); i++ {
		if len(m.coefficients[i]) != len(m.coefficients[0]) {
			return fmt.Errorf("coefficient rows have inconsistent lengths")
		}
	}
	return nil
}

func (m *LogisticModel) Classes() []string { return m.classes }

// NumFeatures reports the input vector length the model was trained on.
func (m *LogisticModel) NumFeatures() int { return len(m.coefficients[0]) }

func (m *LogisticModel) PredictProba(frame *preprocess.Frame) ([]float64, error) {
	row, err := frame.Floats()
	if err != nil {
		return nil, apperrors.NewInvalidInputError(err.Error())
	}
	return m.predictRow(row)
}

func (m *LogisticModel) predictRow(row []float64) ([]float64, error) {
	if len(row) != m.NumFeatures() {
		return nil, apperrors.NewShapeMismatchError(m.NumFeatures(), len(row))
	}

	if len(m.classes) == 2 {
		p := sigmoid(dot(m.coefficients[0], row) + m.intercepts[0])
		return []float64{1 - p, p}, nil
	}

	logits := make([]float64, len(m.classes))
	for i := range m.classes {
		logits[i] = dot(m.coefficients[i], row) + m.intercepts[i]
	}
	return softmax(logits), nil
}

// PipelineModel bundles preprocessing and classification the way a fitted
// sklearn-style pipeline does: it resolves features by column name from the
// frame, scales numerics, one-hot expands string categoricals against the
// training category tables, and classifies the expanded vector. A category
// value unseen at training time contributes an all-zero block.
type PipelineModel struct {
	classes      []string
	coefficients [][]float64
	intercepts   []float64
	numericCols  []string
	catCols      []string
	categories   map[string][]string
	scaler       *StandardScaler
}

func (m *PipelineModel) validate() error {
	core := &LogisticModel{
		classes:      m.classes,
		coefficients: m.coefficients,
		intercepts:   m.intercepts,
	}
	if err := core.validate(); err != nil {
		return err
	}
	if m.scaler != nil {
		if err := m.scaler.validate(); err != nil {
			return err
		}
		if len(m.scaler.Mean) != len(m.numericCols) {
			return fmt.Errorf("scaler covers %d columns, pipeline declares %d numeric",
				len(m.scaler.Mean), len(m.numericCols))
		}
	}
	expanded := len(m.numericCols)
	for _, col := range m.catCols {
		cats, ok := m.categories[col]
		if !ok {
			return fmt.Errorf("categorical column %q has no category table", col)
		}
		expanded += len(cats)
	}
	if expanded != len(m.coefficients[0]) {
		return fmt.Errorf("pipeline expands to %d features, coefficients expect %d",
			expanded, len(m.coefficients[0]))
	}
	return nil
}

func (m *PipelineModel) Classes() []string { return m.classes }

func (m *PipelineModel) PredictProba(frame *preprocess.Frame) ([]float64, error) {
	numeric := make([]float64, len(m.numericCols))
	for i, col := range m.numericCols {
		v, ok := frame.Get(col)
		if !ok {
			return nil, apperrors.NewMissingFeatureError(col)
		}
		fv, isNum := toFloat64(v)
		if !isNum {
			return nil, apperrors.NewInvalidInputError(
				fmt.Sprintf("numeric feature %q: value %v is not numeric", col, v))
		}
		numeric[i] = fv
	}

	if m.scaler != nil {
		scaled, err := m.scaler.Transform(numeric)
		if err != nil {
			return nil, err
		}
		numeric = scaled
	}

	expanded := numeric
	for _, col := range m.catCols {
		v, ok := frame.Get(col)
		if !ok {
			return nil, apperrors.NewMissingFeatureError(col)
		}
		value := fmt.Sprintf("%v", v)
		for _, category := range m.categories[col] {
			if value == category {
				expanded = append(expanded, 1)
			} else {
				expanded = append(expanded, 0)
			}
		}
	}

	core := &LogisticModel{
		classes:      m.classes,
		coefficients: m.coefficients,
		intercepts:   m.intercepts,
	}
	return core.predictRow(expanded)
}

func toFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func sigmoid(x float64) float64 {
	// Guard against overflow in Exp for extreme logits.
	if x > 709 {
		return 1
	}
	if x < -709 {
		return 0
	}
	return 1 / (1 + math.Exp(-x))
}

func softmax(logits []float64) []float64 {
	max := logits[0]
	for _, v := range logits[1:] {
		if v > max {
			max = v
		}
	}

	out := make([]float64, len(logits))
	var sum float64
	for i, v := range logits {
		out[i] = math.Exp(v - max)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
