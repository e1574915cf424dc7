// internal/clinical/cardiology/cha2ds2vasc.go
package cardiology

import (
	"context"
	"fmt"
	"strings"

	"clinovia-inference/internal/assessment"
	"clinovia-inference/internal/clinical"
)

const (
	chadsModelName    = "cha2ds2vasc_rule_v1"
	chadsModelVersion = "v1.0"
)

// CHA2DS2VAScInput holds the stroke risk factors for a patient with atrial
// fibrillation.
type CHA2DS2VAScInput struct {
	PatientID                string `json:"patient_id,omitempty"`
	Age                      int    `json:"age"`
	Gender                   string `json:"gender"`
	CongestiveHeartFailure   bool   `json:"congestive_heart_failure"`
	Hypertension             bool   `json:"hypertension"`
	Diabetes                 bool   `json:"diabetes"`
	StrokeTIAThromboembolism bool   `json:"stroke_tia_thromboembolism"`
	VascularDisease          bool   `json:"vascular_disease"`
}

func (i *CHA2DS2VAScInput) JSONMap() (map[string]interface{}, error) {
	return assessment.ToJSONMap(i)
}

// CHA2DS2VAScOutput is the score with its risk category.
type CHA2DS2VAScOutput struct {
	clinical.PredictionMeta
	PatientID    string `json:"patient_id,omitempty"`
	Score        int    `json:"score"`
	RiskCategory string `json:"risk_category"`
}

func (o *CHA2DS2VAScOutput) JSONMap() (map[string]interface{}, error) {
	return assessment.ToJSONMap(o)
}

// CalculateCHA2DS2VASc scores stroke risk. The female sex category point
// shifts the category thresholds: females read high at >=3, males at >=2,
// so the sex point alone never raises the category.
func CalculateCHA2DS2VASc(in *CHA2DS2VAScInput) *CHA2DS2VAScOutput {
	gender := strings.ToLower(in.Gender)

	var err error
	switch {
	case in.Age < 0:
		err = fmt.Errorf("age must be non-negative")
	case gender != "male" && gender != "female":
		err = fmt.Errorf("gender must be 'male' or 'female'")
	}
	if err != nil {
		return &CHA2DS2VAScOutput{
			PredictionMeta: clinical.NewErrorMeta(chadsModelName, chadsModelVersion, err),
			PatientID:      in.PatientID,
			RiskCategory:   "low",
		}
	}

	score := boolPoint(in.CongestiveHeartFailure) +
		boolPoint(in.Hypertension) +
		boolPoint(in.Diabetes) +
		boolPoint(in.VascularDisease) +
		2*boolPoint(in.StrokeTIAThromboembolism)

	switch {
	case in.Age >= 75:
		score += 2
	case in.Age >= 65:
		score++
	}
	if gender == "female" {
		score++
	}

	var category string
	if gender == "female" {
		switch {
		case score >= 3:
			category = "high"
		case score >= 2:
			category = "moderate"
		default:
			category = "low"
		}
	} else {
		switch {
		case score >= 2:
			category = "high"
		case score >= 1:
			category = "moderate"
		default:
			category = "low"
		}
	}

	return &CHA2DS2VAScOutput{
		PredictionMeta: clinical.NewMeta(chadsModelName, chadsModelVersion),
		PatientID:      in.PatientID,
		Score:          score,
		RiskCategory:   category,
	}
}

func boolPoint(b bool) int {
	if b {
		return 1
	}
	return 0
}

// NewCHA2DS2VAScDefinition registers the CHA2DS2-VASc assessment.
func NewCHA2DS2VAScDefinition() *assessment.Definition {
	return &assessment.Definition{
		Name:      "cardiology_cha2ds2vasc",
		Type:      "cha2ds2vasc",
		Version:   chadsModelVersion,
		Route:     "/cardiology/cha2ds2vasc",
		NewInput:  func() assessment.Input { return &CHA2DS2VAScInput{} },
		NewOutput: func() assessment.Output { return &CHA2DS2VAScOutput{} },
		Cacheable: true,
		Run: func(_ context.Context, input assessment.Input) (assessment.Output, error) {
			return CalculateCHA2DS2VASc(input.(*CHA2DS2VAScInput)), nil
		},
	}
}
