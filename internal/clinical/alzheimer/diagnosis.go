// internal/clinical/alzheimer/diagnosis.go
package alzheimer

import (
	"context"

	"clinovia-inference/internal/assessment"
	"clinovia-inference/internal/clinical"
	"clinovia-inference/internal/common/logger"
	"clinovia-inference/internal/model"
	"clinovia-inference/internal/preprocess"
)

const (
	diagnosisBasicModelName    = "alzheimer-diagnosis-with-basic-features-v1"
	diagnosisExtendedModelName = "alzheimer-diagnosis-with-extended-features-v1"
	diagnosisModelVersion      = "1.0.0"
)

// DiagnosisOutput is the cognitive status classification (CN, MCI, AD)
// shared by the basic and extended classifiers.
type DiagnosisOutput struct {
	clinical.PredictionMeta
	PatientID      string             `json:"patient_id,omitempty"`
	PredictedClass string             `json:"predicted_class,omitempty"`
	Confidence     float64            `json:"confidence"`
	Probabilities  map[string]float64 `json:"probabilities"`
}

func (o *DiagnosisOutput) JSONMap() (map[string]interface{}, error) {
	return assessment.ToJSONMap(o)
}

// DiagnosisBasicInput carries the cognitive and demographic features of the
// basic classifier. Every field is optional; missing values take the
// training-time defaults.
type DiagnosisBasicInput struct {
	PatientID      string   `json:"patient_id,omitempty"`
	Age            *float64 `json:"AGE,omitempty"`
	MMSEBaseline   *float64 `json:"MMSE_bl,omitempty"`
	CDRSBBaseline  *float64 `json:"CDRSB_bl,omitempty"`
	FAQBaseline    *float64 `json:"FAQ_bl,omitempty"`
	Education      *float64 `json:"PTEDUCAT,omitempty"`
	Gender         *string  `json:"PTGENDER,omitempty"`
	APOE4          *int     `json:"APOE4,omitempty"`
	RAVLTImmediate *float64 `json:"RAVLT_immediate_bl,omitempty"`
	MOCABaseline   *float64 `json:"MOCA_bl,omitempty"`
	ADAS13Baseline *float64 `json:"ADAS13_bl,omitempty"`
}

func (i *DiagnosisBasicInput) JSONMap() (map[string]interface{}, error) {
	return assessment.ToJSONMap(i)
}

// DiagnosisExtendedInput adds imaging and CSF biomarker features to the
// basic set.
type DiagnosisExtendedInput struct {
	DiagnosisBasicInput
	Hippocampus  *float64 `json:"Hippocampus_bl,omitempty"`
	Ventricles   *float64 `json:"Ventricles_bl,omitempty"`
	WholeBrain   *float64 `json:"WholeBrain_bl,omitempty"`
	Entorhinal   *float64 `json:"Entorhinal_bl,omitempty"`
	FDG          *float64 `json:"FDG_bl,omitempty"`
	AV45         *float64 `json:"AV45_bl,omitempty"`
	PIB          *float64 `json:"PIB_bl,omitempty"`
	FBB          *float64 `json:"FBB_bl,omitempty"`
	ABeta        *float64 `json:"ABETA_bl,omitempty"`
	Tau          *float64 `json:"TAU_bl,omitempty"`
	PTau         *float64 `json:"PTAU_bl,omitempty"`
	MPACCDigit   *float64 `json:"mPACCdigit_bl,omitempty"`
	MPACCTrailsB *float64 `json:"mPACCtrailsB_bl,omitempty"`
}

func (i *DiagnosisExtendedInput) JSONMap() (map[string]interface{}, error) {
	return assessment.ToJSONMap(i)
}

// classify runs the shared predictive path: fill defaults exactly once,
// build the feature frame, classify. Errors are returned to the caller for
// conversion into an error-shaped output.
func classify(
	ctx context.Context,
	loader *model.Loader,
	modelKey, scalerKey, name string,
	spec *preprocess.Spec,
	input assessment.Input,
) (*model.Prediction, error) {
	inputMap, err := input.JSONMap()
	if err != nil {
		return nil, err
	}

	clf, err := loader.Model(ctx, modelKey)
	if err != nil {
		return nil, err
	}

	var scaler preprocess.Scaler
	if scalerKey != "" {
		scaler, err = loader.Scaler(ctx, scalerKey)
		if err != nil {
			return nil, err
		}
	}

	filled := preprocess.FillDefaults(inputMap, spec.NumericDefaults, spec.CategoricalDefaults)
	frame, err := preprocess.BuildFrame(filled, spec, scaler)
	if err != nil {
		return nil, err
	}

	return model.Predict(clf, name, frame)
}

// diagnose wraps classify with the soft error contract: any failure during
// loading, preprocessing, or inference becomes an error-shaped output, so
// the pipeline can still persist a record of the failed attempt.
func diagnose(
	ctx context.Context,
	loader *model.Loader,
	log logger.Logger,
	modelKey, scalerKey, modelName string,
	spec *preprocess.Spec,
	input assessment.Input,
	patientID string,
) *DiagnosisOutput {
	pred, err := classify(ctx, loader, modelKey, scalerKey, modelName, spec, input)
	if err != nil {
		log.WithError(err).Error("Diagnosis prediction failed", map[string]interface{}{
			"model_name":   modelName,
			"artifact_key": modelKey,
		})
		return &DiagnosisOutput{
			PredictionMeta: clinical.NewErrorMeta(modelName, diagnosisModelVersion, err),
			PatientID:      patientID,
			Confidence:     0.0,
			Probabilities:  map[string]float64{},
		}
	}

	return &DiagnosisOutput{
		PredictionMeta: clinical.NewMeta(modelName, diagnosisModelVersion),
		PatientID:      patientID,
		PredictedClass: pred.Class,
		Confidence:     pred.Confidence,
		Probabilities:  pred.Probabilities,
	}
}

// NewDiagnosisBasicDefinition registers the basic cognitive status
// classifier.
func NewDiagnosisBasicDefinition(loader *model.Loader, log logger.Logger) *assessment.Definition {
	return &assessment.Definition{
		Name:      "alzheimer_diagnosis_basic",
		Type:      "diagnosis_basic",
		Version:   diagnosisModelVersion,
		Route:     "/alzheimer/diagnosis/basic",
		NewInput:  func() assessment.Input { return &DiagnosisBasicInput{} },
		NewOutput: func() assessment.Output { return &DiagnosisOutput{} },
		Cacheable: true,
		Run: func(ctx context.Context, input assessment.Input) (assessment.Output, error) {
			in := input.(*DiagnosisBasicInput)
			return diagnose(ctx, loader, log,
				diagnosisBasicModelKey, diagnosisBasicScalerKey, diagnosisBasicModelName,
				diagnosisBasicSpec, in, in.PatientID), nil
		},
	}
}

// NewDiagnosisExtendedDefinition registers the extended classifier with
// imaging and biomarker features.
func NewDiagnosisExtendedDefinition(loader *model.Loader, log logger.Logger) *assessment.Definition {
	return &assessment.Definition{
		Name:      "alzheimer_diagnosis_extended",
		Type:      "diagnosis_extended",
		Version:   diagnosisModelVersion,
		Route:     "/alzheimer/diagnosis/extended",
		NewInput:  func() assessment.Input { return &DiagnosisExtendedInput{} },
		NewOutput: func() assessment.Output { return &DiagnosisOutput{} },
		Cacheable: true,
		Run: func(ctx context.Context, input assessment.Input) (assessment.Output, error) {
			in := input.(*DiagnosisExtendedInput)
			return diagnose(ctx, loader, log,
				diagnosisExtendedModelKey, diagnosisExtendedScalerKey, diagnosisExtendedModelName,
				diagnosisExtendedSpec, in, in.PatientID), nil
		},
	}
}
