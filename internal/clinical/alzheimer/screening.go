// internal/clinical/alzheimer/screening.go
package alzheimer

import (
	"context"

	"clinovia-inference/internal/assessment"
	"clinovia-inference/internal/clinical"
	apperrors "clinovia-inference/internal/common/errors"
	"clinovia-inference/internal/common/logger"
	"clinovia-inference/internal/model"
	"clinovia-inference/internal/preprocess"
)

const (
	screeningModelName    = "alzheimer-diagnosis-model-v1"
	screeningModelVersion = "1.0.0"
)

// ScreeningInput carries the short screening battery. Unlike the other
// classifiers, every feature is required; the screening model has no
// training-time defaults to fall back on.
type ScreeningInput struct {
	PatientID      string   `json:"patient_id,omitempty"`
	Age            *int     `json:"age"`
	EducationYears *int     `json:"education_years"`
	MOCAScore      *float64 `json:"moca_score"`
	ADAS13Score    *float64 `json:"adas13_score"`
	CDRSum         *float64 `json:"cdr_sum"`
	FAQTotal       *int     `json:"faq_total"`
	Gender         *string  `json:"gender"`
	Race           *int     `json:"race"`
}

func (i *ScreeningInput) JSONMap() (map[string]interface{}, error) {
	return assessment.ToJSONMap(i)
}

// screeningSpec feeds the pipeline model, which one-hot encodes gender and
// race internally from their string renderings.
var screeningSpec = &preprocess.Spec{
	FeatureOrder: screeningFeatureOrder,
	NumericColumns: []string{
		"age", "education_years", "moca_score", "adas13_score", "cdr_sum", "faq_total",
	},
	CategoricalColumns: []string{"gender", "race"},
	NumericDefaults:    map[string]float64{},
	CategoricalDefaults: map[string]interface{}{
		"gender": "female",
		"race":   "1",
	},
	Codecs: map[string]preprocess.Codec{
		"gender": preprocess.StringCodec{Fallback: "female"},
		"race":   preprocess.StringCodec{Fallback: "1"},
	},
}

// NewScreeningDefinition registers the screening classifier. A missing
// numeric feature is a request failure here, not a defaulted value.
func NewScreeningDefinition(loader *model.Loader, log logger.Logger) *assessment.Definition {
	return &assessment.Definition{
		Name:      "alzheimer_diagnosis_screening",
		Type:      "diagnosis_screening",
		Version:   screeningModelVersion,
		Route:     "/alzheimer/diagnosis/screening",
		NewInput:  func() assessment.Input { return &ScreeningInput{} },
		NewOutput: func() assessment.Output { return &DiagnosisOutput{} },
		Cacheable: true,
		Run: func(ctx context.Context, input assessment.Input) (assessment.Output, error) {
			in := input.(*ScreeningInput)
			if missing := missingScreeningFeature(in); missing != "" {
				return nil, apperrors.NewMissingFeatureError(missing)
			}

			inputMap, err := in.JSONMap()
			if err != nil {
				return nil, apperrors.NewInvalidInputError(err.Error())
			}

			clf, err := loader.Model(ctx, screeningModelKey)
			if err != nil {
				return nil, err
			}

			filled := preprocess.FillDefaults(inputMap,
				screeningSpec.NumericDefaults, screeningSpec.CategoricalDefaults)
			frame, err := preprocess.BuildFrame(filled, screeningSpec, nil)
			if err != nil {
				return nil, err
			}

			pred, err := model.Predict(clf, screeningModelName, frame)
			if err != nil {
				log.WithError(err).Error("Screening prediction failed", map[string]interface{}{
					"artifact_key": screeningModelKey,
				})
				return nil, err
			}

			return &DiagnosisOutput{
				PredictionMeta: clinical.NewMeta(screeningModelName, screeningModelVersion),
				PatientID:      in.PatientID,
				PredictedClass: pred.Class,
				Confidence:     pred.Confidence,
				Probabilities:  pred.Probabilities,
			}, nil
		},
	}
}

func missingScreeningFeature(in *ScreeningInput) string {
	switch {
	case in.Age == nil:
		return "age"
	case in.EducationYears == nil:
		return "education_years"
	case in.MOCAScore == nil:
		return "moca_score"
	case in.ADAS13Score == nil:
		return "adas13_score"
	case in.CDRSum == nil:
		return "cdr_sum"
	case in.FAQTotal == nil:
		return "faq_total"
	}
	return ""
}

// Definitions returns the full Alzheimer's catalog.
func Definitions(loader *model.Loader, log logger.Logger) []*assessment.Definition {
	return []*assessment.Definition{
		NewRiskScreenerDefinition(),
		NewScreeningDefinition(loader, log),
		NewDiagnosisBasicDefinition(loader, log),
		NewDiagnosisExtendedDefinition(loader, log),
		NewPrognosisBasicDefinition(loader, log),
		NewPrognosisExtendedDefinition(loader, log),
	}
}
