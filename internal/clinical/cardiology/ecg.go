// internal/clinical/cardiology/ecg.go
package cardiology

import (
	"context"
	"fmt"
	"strings"

	"clinovia-inference/internal/assessment"
	"clinovia-inference/internal/clinical"
)

const (
	ecgModelName    = "ecg_interpreter_rule_v1"
	ecgModelVersion = "1.0.0"
)

// Overall risk levels, in escalation order.
const (
	ECGRiskRoutine  = "routine"
	ECGRiskUrgent   = "urgent"
	ECGRiskEmergent = "emergent"
)

// ECGInterpretationInput holds measured ECG parameters. QT and PR intervals
// are optional; nil means not measured.
type ECGInterpretationInput struct {
	PatientID      string `json:"patient_id,omitempty"`
	HeartRate      int    `json:"heart_rate"`
	QRSDuration    int    `json:"qrs_duration"`
	QTInterval     *int   `json:"qt_interval,omitempty"`
	PRInterval     *int   `json:"pr_interval,omitempty"`
	Rhythm         string `json:"rhythm"`
	STElevation    bool   `json:"st_elevation"`
	TWaveInversion bool   `json:"t_wave_inversion"`
}

func (i *ECGInterpretationInput) JSONMap() (map[string]interface{}, error) {
	return assessment.ToJSONMap(i)
}

// ECGInterpretationOutput lists rule findings with an overall urgency.
type ECGInterpretationOutput struct {
	clinical.PredictionMeta
	PatientID   string   `json:"patient_id,omitempty"`
	Findings    []string `json:"findings"`
	Rhythm      string   `json:"rhythm"`
	OverallRisk string   `json:"overall_risk"`
}

func (o *ECGInterpretationOutput) JSONMap() (map[string]interface{}, error) {
	return assessment.ToJSONMap(o)
}

func validateECGInput(in *ECGInterpretationInput) error {
	if in.HeartRate < 20 || in.HeartRate > 300 {
		return fmt.Errorf("heart rate must be between 20 and 300 bpm")
	}
	if in.QRSDuration < 40 || in.QRSDuration > 200 {
		return fmt.Errorf("QRS duration must be between 40 and 200 ms")
	}
	switch strings.ToLower(in.Rhythm) {
	case "sinus", "afib", "flutter", "other":
	default:
		return fmt.Errorf("rhythm must be one of: afib, flutter, other, sinus")
	}
	if in.QTInterval != nil && (*in.QTInterval < 200 || *in.QTInterval > 600) {
		return fmt.Errorf("QT interval must be between 200 and 600 ms (if provided)")
	}
	if in.PRInterval != nil && (*in.PRInterval < 80 || *in.PRInterval > 400) {
		return fmt.Errorf("PR interval must be between 80 and 400 ms (if provided)")
	}
	return nil
}

// InterpretECG applies the rule set over the measured parameters. ST
// elevation is the one emergent finding; conduction and rhythm abnormalities
// escalate routine to urgent but never downgrade an emergent result.
func InterpretECG(in *ECGInterpretationInput) *ECGInterpretationOutput {
	if err := validateECGInput(in); err != nil {
		return &ECGInterpretationOutput{
			PredictionMeta: clinical.NewErrorMeta(ecgModelName, ecgModelVersion, err),
			PatientID:      in.PatientID,
			Findings:       []string{"error"},
			Rhythm:         "unknown",
			OverallRisk:    ECGRiskRoutine,
		}
	}

	rhythm := strings.ToLower(in.Rhythm)
	findings := []string{}
	risk := ECGRiskRoutine

	escalate := func() {
		if risk == ECGRiskRoutine {
			risk = ECGRiskUrgent
		}
	}

	if in.PRInterval != nil {
		if *in.PRInterval > 200 {
			findings = append(findings, "first_degree_av_block")
			escalate()
		} else if *in.PRInterval < 120 && rhythm == "sinus" {
			findings = append(findings, "short_pr_interval")
			escalate()
		}
	}

	switch rhythm {
	case "afib":
		findings = append(findings, "afib")
		risk = ECGRiskUrgent
	case "flutter":
		findings = append(findings, "atrial_flutter")
		risk = ECGRiskUrgent
	case "sinus":
		if in.HeartRate > 100 {
			findings = append(findings, "sinus_tachycardia")
		} else if in.HeartRate < 60 {
			findings = append(findings, "sinus_bradycardia")
		}
	}

	if in.QRSDuration > 120 {
		findings = append(findings, "wide_qrs_complex")
	}

	if in.STElevation {
		findings = append(findings, "st_elevation")
		risk = ECGRiskEmergent
	}
	if in.TWaveInversion {
		findings = append(findings, "t_wave_inversion")
		escalate()
	}

	if in.QTInterval != nil && *in.QTInterval > 450 {
		findings = append(findings, "prolonged_qt")
		escalate()
	}

	if len(findings) == 0 {
		findings = append(findings, "normal")
	}

	return &ECGInterpretationOutput{
		PredictionMeta: clinical.NewMeta(ecgModelName, ecgModelVersion),
		PatientID:      in.PatientID,
		Findings:       findings,
		Rhythm:         rhythm,
		OverallRisk:    risk,
	}
}

// NewECGDefinition registers the ECG interpretation assessment.
func NewECGDefinition() *assessment.Definition {
	return &assessment.Definition{
		Name:      "cardiology_ecg_interpretation",
		Type:      "ecg_interpretation",
		Version:   ecgModelVersion,
		Route:     "/cardiology/ecg",
		NewInput:  func() assessment.Input { return &ECGInterpretationInput{} },
		NewOutput: func() assessment.Output { return &ECGInterpretationOutput{} },
		Cacheable: true,
		Run: func(_ context.Context, input assessment.Input) (assessment.Output, error) {
			return InterpretECG(input.(*ECGInterpretationInput)), nil
		},
	}
}

// Definitions returns the full cardiology catalog.
func Definitions() []*assessment.Definition {
	return []*assessment.Definition{
		NewASCVDDefinition(),
		NewBPCategoryDefinition(),
		NewCHA2DS2VAScDefinition(),
		NewECGDefinition(),
	}
}
