// internal/clinical/cardiology/bp.go
package cardiology

import (
	"context"
	"fmt"

	"clinovia-inference/internal/assessment"
	"clinovia-inference/internal/clinical"
)

const (
	bpModelName    = "bp_category_rule_v1"
	bpModelVersion = "v1.0"
)

// BPCategoryInput is one blood pressure reading in mmHg.
type BPCategoryInput struct {
	PatientID   string  `json:"patient_id,omitempty"`
	SystolicBP  float64 `json:"systolic_bp"`
	DiastolicBP float64 `json:"diastolic_bp"`
}

func (i *BPCategoryInput) JSONMap() (map[string]interface{}, error) {
	return assessment.ToJSONMap(i)
}

// BPCategoryOutput labels the reading per the 2017 ACC/AHA guideline.
type BPCategoryOutput struct {
	clinical.PredictionMeta
	PatientID   string  `json:"patient_id,omitempty"`
	SystolicBP  float64 `json:"systolic_bp"`
	DiastolicBP float64 `json:"diastolic_bp"`
	Category    string  `json:"category"`
}

func (o *BPCategoryOutput) JSONMap() (map[string]interface{}, error) {
	return assessment.ToJSONMap(o)
}

func validateBPInput(in *BPCategoryInput) error {
	if in.SystolicBP < 70 || in.SystolicBP > 250 {
		return fmt.Errorf("systolic BP must be between 70 and 250 mmHg")
	}
	if in.DiastolicBP < 40 || in.DiastolicBP > 150 {
		return fmt.Errorf("diastolic BP must be between 40 and 150 mmHg")
	}
	return nil
}

// CategorizeBloodPressure classifies a reading per the 2017 ACC/AHA
// guideline: crisis at >=180/>=120, stage 2 at >=140/>=90, stage 1 at
// 130-139 or 80-89, elevated at 120-129 with diastolic <80, else normal.
func CategorizeBloodPressure(in *BPCategoryInput) *BPCategoryOutput {
	if err := validateBPInput(in); err != nil {
		return &BPCategoryOutput{
			PredictionMeta: clinical.NewErrorMeta(bpModelName, bpModelVersion, err),
			PatientID:      in.PatientID,
			SystolicBP:     in.SystolicBP,
			DiastolicBP:    in.DiastolicBP,
			Category:       "error",
		}
	}

	systolic, diastolic := in.SystolicBP, in.DiastolicBP

	var category string
	switch {
	case systolic >= 180 || diastolic >= 120:
		category = "hypertensive_crisis"
	case systolic >= 140 || diastolic >= 90:
		category = "hypertension_stage_2"
	case (systolic >= 130 && systolic < 140) || (diastolic >= 80 && diastolic < 90):
		category = "hypertension_stage_1"
	case systolic >= 120 && systolic < 130 && diastolic < 80:
		category = "elevated"
	default:
		category = "normal"
	}

	return &BPCategoryOutput{
		PredictionMeta: clinical.NewMeta(bpModelName, bpModelVersion),
		PatientID:      in.PatientID,
		SystolicBP:     systolic,
		DiastolicBP:    diastolic,
		Category:       category,
	}
}

// NewBPCategoryDefinition registers the blood pressure categorization.
func NewBPCategoryDefinition() *assessment.Definition {
	return &assessment.Definition{
		Name:      "cardiology_bp_category",
		Type:      "bp_category",
		Version:   bpModelVersion,
		Route:     "/cardiology/bp-category",
		NewInput:  func() assessment.Input { return &BPCategoryInput{} },
		NewOutput: func() assessment.Output { return &BPCategoryOutput{} },
		Cacheable: true,
		Run: func(_ context.Context, input assessment.Input) (assessment.Output, error) {
			return CategorizeBloodPressure(input.(*BPCategoryInput)), nil
		},
	}
}
