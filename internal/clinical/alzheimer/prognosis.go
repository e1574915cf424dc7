// internal/clinical/alzheimer/prognosis.go
package alzheimer

import (
	"context"
	"fmt"

	"clinovia-inference/internal/assessment"
	"clinovia-inference/internal/clinical"
	"clinovia-inference/internal/common/logger"
	"clinovia-inference/internal/model"
	"clinovia-inference/internal/preprocess"
)

const (
	prognosisBasicModelName    = "prognosis_2yr_basic_v1"
	prognosisExtendedModelName = "prognosis_2yr_extended_v1"
	prognosisModelVersion      = "1.0.0"
)

const (
	classStable   = "Stable"
	classProgress = "Progress"
)

// PrognosisBasicInput holds the clinical features of the 2-year progression
// model. All features are optional and default to cohort-typical values.
type PrognosisBasicInput struct {
	PatientID  string   `json:"patient_id,omitempty"`
	Age        *float64 `json:"AGE,omitempty"`
	Gender     *string  `json:"PTGENDER,omitempty"`
	Education  *float64 `json:"PTEDUCAT,omitempty"`
	ADAS13     *float64 `json:"ADAS13,omitempty"`
	MOCA       *float64 `json:"MOCA,omitempty"`
	CDRSB      *float64 `json:"CDRSB,omitempty"`
	FAQ        *float64 `json:"FAQ,omitempty"`
	APOE4Count *int     `json:"APOE4_count,omitempty"`
	GDTotal    *float64 `json:"GDTOTAL,omitempty"`
}

func (i *PrognosisBasicInput) JSONMap() (map[string]interface{}, error) {
	return assessment.ToJSONMap(i)
}

// PrognosisExtendedInput swaps MOCA for the CSF biomarker panel.
type PrognosisExtendedInput struct {
	PatientID  string   `json:"patient_id,omitempty"`
	Age        *float64 `json:"AGE,omitempty"`
	Gender     *string  `json:"PTGENDER,omitempty"`
	Education  *float64 `json:"PTEDUCAT,omitempty"`
	ADAS13     *float64 `json:"ADAS13,omitempty"`
	CDRSB      *float64 `json:"CDRSB,omitempty"`
	FAQ        *float64 `json:"FAQ,omitempty"`
	APOE4Count *int     `json:"APOE4_count,omitempty"`
	GDTotal    *float64 `json:"GDTOTAL,omitempty"`
	ABeta      *float64 `json:"ABETA,omitempty"`
	Tau        *float64 `json:"TAU,omitempty"`
	PTau       *float64 `json:"PTAU,omitempty"`
}

func (i *PrognosisExtendedInput) JSONMap() (map[string]interface{}, error) {
	return assessment.ToJSONMap(i)
}

// PrognosisOutput reports the 2-year progression probabilities with a risk
// level and a natural language summary. Probabilities are nil on failure.
type PrognosisOutput struct {
	clinical.PredictionMeta
	PatientID           string   `json:"patient_id,omitempty"`
	ProbabilityProgress *float64 `json:"probability_progression_to_AD_within_2yrs"`
	ProbabilityStable   *float64 `json:"probability_stable_within_2yrs"`
	RiskLevel           string   `json:"risk_level"`
	SummaryText         string   `json:"summary_text"`
	TopFeatures         []string `json:"top_features,omitempty"`
}

func (o *PrognosisOutput) JSONMap() (map[string]interface{}, error) {
	return assessment.ToJSONMap(o)
}

// progressionRiskLevel maps P(Progress) to a clinical risk band.
func progressionRiskLevel(probProgress float64) string {
	switch {
	case probProgress < 0.20:
		return "low"
	case probProgress < 0.50:
		return "moderate"
	default:
		return "high"
	}
}

func prognose(
	ctx context.Context,
	loader *model.Loader,
	log logger.Logger,
	modelKey, scalerKey, modelName string,
	spec *preprocess.Spec,
	input assessment.Input,
	patientID string,
) *PrognosisOutput {
	pred, err := classify(ctx, loader, modelKey, scalerKey, modelName, spec, input)
	if err != nil {
		log.WithError(err).Error("Prognosis prediction failed", map[string]interface{}{
			"model_name":   modelName,
			"artifact_key": modelKey,
		})
		return &PrognosisOutput{
			PredictionMeta: clinical.NewErrorMeta(modelName, prognosisModelVersion, err),
			PatientID:      patientID,
			RiskLevel:      "unknown",
			SummaryText:    "Prediction failed due to an internal error.",
		}
	}

	probProgress := pred.Probabilities[classProgress]
	probStable := pred.Probabilities[classStable]
	riskLevel := progressionRiskLevel(probProgress)

	return &PrognosisOutput{
		PredictionMeta:      clinical.NewMeta(modelName, prognosisModelVersion),
		PatientID:           patientID,
		ProbabilityProgress: &probProgress,
		ProbabilityStable:   &probStable,
		RiskLevel:           riskLevel,
		SummaryText: fmt.Sprintf(
			"The patient has a %s (%.1f%%) probability of progressing to Alzheimer's dementia within 2 years.",
			riskLevel, probProgress*100),
		TopFeatures: []string{"CDRSB", "ADAS13", "AGE"},
	}
}

// NewPrognosisBasicDefinition registers the basic 2-year progression model.
func NewPrognosisBasicDefinition(loader *model.Loader, log logger.Logger) *assessment.Definition {
	return &assessment.Definition{
		Name:      "alzheimer_prognosis_2yr_basic",
		Type:      "prognosis_2yr_basic",
		Version:   prognosisModelVersion,
		Route:     "/alzheimer/prognosis/2yr-basic",
		NewInput:  func() assessment.Input { return &PrognosisBasicInput{} },
		NewOutput: func() assessment.Output { return &PrognosisOutput{} },
		Cacheable: true,
		Run: func(ctx context.Context, input assessment.Input) (assessment.Output, error) {
			in := input.(*PrognosisBasicInput)
			return prognose(ctx, loader, log,
				prognosisBasicModelKey, prognosisBasicScalerKey, prognosisBasicModelName,
				prognosisBasicSpec, in, in.PatientID), nil
		},
	}
}

// NewPrognosisExtendedDefinition registers the CSF biomarker variant.
func NewPrognosisExtendedDefinition(loader *model.Loader, log logger.Logger) *assessment.Definition {
	return &assessment.Definition{
		Name:      "alzheimer_prognosis_2yr_extended",
		Type:      "prognosis_2yr_extended",
		Version:   prognosisModelVersion,
		Route:     "/alzheimer/prognosis/2yr-extended",
		NewInput:  func() assessment.Input { return &PrognosisExtendedInput{} },
		NewOutput: func() assessment.Output { return &PrognosisOutput{} },
		Cacheable: true,
		Run: func(ctx context.Context, input assessment.Input) (assessment.Output, error) {
			in := input.(*PrognosisExtendedInput)
			return prognose(ctx, loader, log,
				prognosisExtendedModelKey, prognosisExtendedScalerKey, prognosisExtendedModelName,
				prognosisExtendedSpec, in, in.PatientID), nil
		},
	}
}
