// internal/clinical/alzheimer/screener.go
package alzheimer

import (
	"context"
	"fmt"
	"strings"

	"clinovia-inference/internal/assessment"
	"clinovia-inference/internal/clinical"
)

const (
	screenerModelName    = "rule_based_risk_v1"
	screenerModelVersion = "1.0.0"
)

// Screener recommendations by category.
const (
	recommendationLow = "Low risk. Maintain healthy lifestyle (exercise, Mediterranean diet, " +
		"cognitive engagement). Routine cognitive screening every 1-2 years."
	recommendationModerate = "Moderate risk. Consider neuropsychological evaluation and vascular " +
		"risk management (hypertension, diabetes, cholesterol). Discuss biomarker testing " +
		"(e.g., amyloid PET) if indicated."
	recommendationHigh = "High risk. Urgent referral to memory disorders clinic or neurologist. " +
		"Comprehensive evaluation (MRI, CSF biomarkers, cognitive testing) recommended."
	recommendationError = "An error occurred during risk assessment."
)

// RiskScreenerInput holds the CAIDE/ANU-ADRI style screening factors.
// Hippocampal volume (mm3) is optional.
type RiskScreenerInput struct {
	PatientID         string   `json:"patient_id,omitempty"`
	Age               int      `json:"age"`
	Gender            string   `json:"gender"`
	EducationYears    int      `json:"education_years"`
	APOE4Status       bool     `json:"apoe4_status"`
	MemoryScore       float64  `json:"memory_score"`
	HippocampalVolume *float64 `json:"hippocampal_volume,omitempty"`
}

func (i *RiskScreenerInput) JSONMap() (map[string]interface{}, error) {
	return assessment.ToJSONMap(i)
}

// RiskScreenerOutput is the screening score with its recommendation.
type RiskScreenerOutput struct {
	clinical.PredictionMeta
	PatientID      string  `json:"patient_id,omitempty"`
	RiskScore      float64 `json:"risk_score"`
	RiskCategory   string  `json:"risk_category"`
	Recommendation string  `json:"recommendation"`
}

func (o *RiskScreenerOutput) JSONMap() (map[string]interface{}, error) {
	return assessment.ToJSONMap(o)
}

func validateScreenerInput(in *RiskScreenerInput) error {
	switch {
	case in.Age < 40 || in.Age > 90:
		return fmt.Errorf("age must be between 40 and 90")
	case strings.ToLower(in.Gender) != "male" && strings.ToLower(in.Gender) != "female":
		return fmt.Errorf("gender must be 'male' or 'female'")
	case in.EducationYears < 0 || in.EducationYears > 30:
		return fmt.Errorf("education years must be between 0 and 30")
	case in.MemoryScore < 0 || in.MemoryScore > 30:
		return fmt.Errorf("memory score must be between 0 and 30")
	case in.HippocampalVolume != nil && (*in.HippocampalVolume < 2000 || *in.HippocampalVolume > 5000):
		return fmt.Errorf("hippocampal volume must be between 2000 and 5000 mm3 (if provided)")
	}
	return nil
}

// CalculateRiskScore scores Alzheimer's risk from a weighted rule set over
// age, APOE4 carriage, sex, education, memory performance, and optional
// hippocampal volume. The score is clamped to [0.01, 0.90]; weights come
// from the screening heuristic the catalog shipped with and are not tunable
// per request.
func CalculateRiskScore(in *RiskScreenerInput) *RiskScreenerOutput {
	if err := validateScreenerInput(in); err != nil {
		return &RiskScreenerOutput{
			PredictionMeta: clinical.NewErrorMeta(screenerModelName, screenerModelVersion, err),
			PatientID:      in.PatientID,
			RiskScore:      0.0,
			RiskCategory:   "error",
			Recommendation: recommendationError,
		}
	}

	risk := 0.03

	switch {
	case in.Age >= 80:
		risk += 0.40
	case in.Age >= 75:
		risk += 0.30
	case in.Age >= 70:
		risk += 0.20
	case in.Age >= 65:
		risk += 0.10
	}

	if in.APOE4Status {
		risk += 0.25
	}

	if strings.ToLower(in.Gender) == "female" {
		risk += 0.05
	}

	switch {
	case in.EducationYears < 8:
		risk += 0.15
	case in.EducationYears < 12:
		risk += 0.08
	case in.EducationYears >= 16:
		risk -= 0.05
	}

	switch {
	case in.MemoryScore <= 18:
		risk += 0.25
	case in.MemoryScore <= 22:
		risk += 0.15
	case in.MemoryScore <= 25:
		risk += 0.05
	}

	if in.HippocampalVolume != nil {
		if *in.HippocampalVolume < 2500 {
			risk += 0.20
		} else if *in.HippocampalVolume < 2800 {
			risk += 0.10
		}
	}

	score := clamp(risk, 0.01, 0.90)

	var category, recommendation string
	switch {
	case score < 0.3:
		category, recommendation = "low", recommendationLow
	case score < 0.6:
		category, recommendation = "moderate", recommendationModerate
	default:
		category, recommendation = "high", recommendationHigh
	}

	return &RiskScreenerOutput{
		PredictionMeta: clinical.NewMeta(screenerModelName, screenerModelVersion),
		PatientID:      in.PatientID,
		RiskScore:      score,
		RiskCategory:   category,
		Recommendation: recommendation,
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// NewRiskScreenerDefinition registers the rule-based screener.
func NewRiskScreenerDefinition() *assessment.Definition {
	return &assessment.Definition{
		Name:      "alzheimer_risk_screener",
		Type:      "risk_screener",
		Version:   screenerModelVersion,
		Route:     "/alzheimer/risk-screener",
		NewInput:  func() assessment.Input { return &RiskScreenerInput{} },
		NewOutput: func() assessment.Output { return &RiskScreenerOutput{} },
		Cacheable: true,
		Run: func(_ context.Context, input assessment.Input) (assessment.Output, error) {
			return CalculateRiskScore(input.(*RiskScreenerInput)), nil
		},
	}
}
