// Package cardiology implements the rule-based cardiology assessment
// catalog: ASCVD 10-year risk (2013 ACC/AHA Pooled Cohort Equations), blood
// pressure categorization (2017 ACC/AHA), CHA2DS2-VASc stroke risk, and
// basic ECG interpretation.
package cardiology

import (
	"context"
	"fmt"
	"math"
	"strings"

	"clinovia-inference/internal/assessment"
	"clinovia-inference/internal/clinical"
)

const (
	ascvdModelName    = "ascvd_rule_v1"
	ascvdModelVersion = "v1.0"
)

// ASCVDInput holds the Pooled Cohort Equations risk factors.
type ASCVDInput struct {
	PatientID               string  `json:"patient_id,omitempty"`
	Age                     int     `json:"age"`
	Gender                  string  `json:"gender"`
	Race                    string  `json:"race"`
	TotalCholesterol        float64 `json:"total_cholesterol"`
	HDLCholesterol          float64 `json:"hdl_cholesterol"`
	SystolicBP              float64 `json:"systolic_bp"`
	OnHypertensionTreatment bool    `json:"on_hypertension_treatment"`
	Smoker                  bool    `json:"smoker"`
	Diabetes                bool    `json:"diabetes"`
}

func (i *ASCVDInput) JSONMap() (map[string]interface{}, error) {
	return assessment.ToJSONMap(i)
}

// ASCVDOutput is the 10-year risk estimate.
type ASCVDOutput struct {
	clinical.PredictionMeta
	PatientID      string  `json:"patient_id,omitempty"`
	RiskPercentage float64 `json:"risk_percentage"`
	RiskCategory   string  `json:"risk_category"`
}

func (o *ASCVDOutput) JSONMap() (map[string]interface{}, error) {
	return assessment.ToJSONMap(o)
}

func validateASCVDInput(in *ASCVDInput) error {
	switch {
	case in.Age < 40 || in.Age > 79:
		return fmt.Errorf("age must be between 40 and 79")
	case !isValidGender(in.Gender):
		return fmt.Errorf("gender must be 'male' or 'female'")
	case !isValidRace(in.Race):
		return fmt.Errorf("race must be one of: white, black, hispanic, asian, other")
	case in.TotalCholesterol < 130 || in.TotalCholesterol > 320:
		return fmt.Errorf("total cholesterol must be between 130 and 320 mg/dL")
	case in.HDLCholesterol < 20 || in.HDLCholesterol > 100:
		return fmt.Errorf("HDL cholesterol must be between 20 and 100 mg/dL")
	case in.SystolicBP < 90 || in.SystolicBP > 200:
		return fmt.Errorf("systolic BP must be between 90 and 200 mmHg")
	}
	return nil
}

func isValidGender(gender string) bool {
	g := strings.ToLower(gender)
	return g == "male" || g == "female"
}

func isValidRace(race string) bool {
	switch strings.ToLower(race) {
	case "white", "black", "hispanic", "asian", "other":
		return true
	}
	return false
}

// buildFeatureTerms constructs the per-cohort term set. Non-black males and
// all females carry the age-squared and age interactions; black females
// additionally carry age*SBP interactions. Treated and untreated blood
// pressure use distinct coefficients.
func buildFeatureTerms(in *ASCVDInput, gender, race string) map[string]float64 {
	lnAge := math.Log(float64(in.Age))
	lnTC := math.Log(in.TotalCholesterol)
	lnHDL := math.Log(in.HDLCholesterol)
	lnSBP := math.Log(in.SystolicBP)
	smoker := boolTerm(in.Smoker)

	terms := map[string]float64{
		"ln_age":   lnAge,
		"ln_tc":    lnTC,
		"ln_hdl":   lnHDL,
		"smoker":   smoker,
		"diabetes": boolTerm(in.Diabetes),
	}

	if !(gender == "male" && race == "black") {
		terms["ln_age_sq"] = lnAge * lnAge
		terms["ln_age*ln_tc"] = lnAge * lnTC
		terms["ln_age*ln_hdl"] = lnAge * lnHDL
		terms["ln_age*smoker"] = lnAge * smoker
	}

	blackFemale := gender == "female" && race == "black"
	if in.OnHypertensionTreatment {
		terms["ln_sbp_trt"] = lnSBP
		if blackFemale {
			terms["ln_age*ln_sbp_trt"] = lnAge * lnSBP
		}
	} else {
		terms["ln_sbp_untrt"] = lnSBP
		if blackFemale {
			terms["ln_age*ln_sbp_untrt"] = lnAge * lnSBP
		}
	}

	return terms
}

func computeRisk(params pceParams, terms map[string]float64) float64 {
	var lp float64
	for name, value := range terms {
		if beta, ok := params.betas[name]; ok {
			lp += beta * value
		}
	}

	deviation := lp - params.meanLP

	var survival float64
	switch {
	case deviation > 709:
		survival = 0
	case deviation < -709:
		survival = 1
	default:
		survival = math.Pow(params.baselineSurvival, math.Exp(deviation))
	}

	risk := 1 - survival
	return math.Max(0, math.Min(1, risk))
}

func categorizeASCVDRisk(riskPct float64) string {
	switch {
	case riskPct >= 20:
		return "high"
	case riskPct >= 7.5:
		return "intermediate"
	case riskPct >= 5:
		return "borderline"
	default:
		return "low"
	}
}

// CalculateASCVD estimates 10-year atherosclerotic cardiovascular disease
// risk. Hispanic, Asian, and other races use the white cohort equations per
// the guideline. Invalid input degrades to an error-shaped output with
// placeholder risk values.
func CalculateASCVD(in *ASCVDInput) *ASCVDOutput {
	if err := validateASCVDInput(in); err != nil {
		return &ASCVDOutput{
			PredictionMeta: clinical.NewErrorMeta(ascvdModelName, ascvdModelVersion, err),
			PatientID:      in.PatientID,
			RiskPercentage: 0.0,
			RiskCategory:   "low",
		}
	}

	gender := strings.ToLower(in.Gender)
	cohortRace := "white"
	if strings.ToLower(in.Race) == "black" {
		cohortRace = "black"
	}

	params := pceConstants[pceCohort{gender: gender, race: cohortRace}]
	terms := buildFeatureTerms(in, gender, cohortRace)

	risk := computeRisk(params, terms)
	riskPct := math.Round(risk*100*100) / 100

	return &ASCVDOutput{
		PredictionMeta: clinical.NewMeta(ascvdModelName, ascvdModelVersion),
		PatientID:      in.PatientID,
		RiskPercentage: riskPct,
		RiskCategory:   categorizeASCVDRisk(riskPct),
	}
}

func boolTerm(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// NewASCVDDefinition registers the ASCVD risk assessment.
func NewASCVDDefinition() *assessment.Definition {
	return &assessment.Definition{
		Name:      "cardiology_ascvd_risk",
		Type:      "ascvd_risk",
		Version:   ascvdModelVersion,
		Route:     "/cardiology/ascvd",
		NewInput:  func() assessment.Input { return &ASCVDInput{} },
		NewOutput: func() assessment.Output { return &ASCVDOutput{} },
		Cacheable: true,
		Run: func(_ context.Context, input assessment.Input) (assessment.Output, error) {
			return CalculateASCVD(input.(*ASCVDInput)), nil
		},
	}
}
