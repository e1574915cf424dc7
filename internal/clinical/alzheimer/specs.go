// Package alzheimer implements the Alzheimer's assessment catalog: a
// rule-based risk screener plus four trained classifiers (diagnosis basic,
// diagnosis extended, screening, and the 2-year prognosis pair).
package alzheimer

import "clinovia-inference/internal/preprocess"

// Artifact keys. Paths mirror the training export layout.
const (
	diagnosisBasicModelKey     = "alzheimer/diagnosis/basic/v1/model.json"
	diagnosisBasicScalerKey    = "alzheimer/diagnosis/basic/v1/scaler.json"
	diagnosisExtendedModelKey  = "alzheimer/diagnosis/extended/v1/model.json"
	diagnosisExtendedScalerKey = "alzheimer/diagnosis/extended/v1/scaler.json"
	screeningModelKey          = "alzheimer/diagnosis/screening/v1/model.json"
	prognosisBasicModelKey     = "alzheimer/prognosis/2yr_basic/v1/model.json"
	prognosisBasicScalerKey    = "alzheimer/prognosis/2yr_basic/v1/scaler.json"
	prognosisExtendedModelKey  = "alzheimer/prognosis/2yr_extended/v1/model.json"
	prognosisExtendedScalerKey = "alzheimer/prognosis/2yr_extended/v1/scaler.json"
)

// diagnosisBasicSpec is the training-time feature configuration for the
// basic classifier. Order must match training order exactly.
var diagnosisBasicSpec = &preprocess.Spec{
	FeatureOrder: []string{
		"AGE", "MMSE_bl", "CDRSB_bl", "FAQ_bl", "PTEDUCAT",
		"PTGENDER", "APOE4", "RAVLT_immediate_bl", "MOCA_bl", "ADAS13_bl",
	},
	NumericColumns: []string{
		"AGE", "MMSE_bl", "CDRSB_bl", "FAQ_bl", "PTEDUCAT",
		"RAVLT_immediate_bl", "MOCA_bl", "ADAS13_bl",
	},
	CategoricalColumns: []string{"PTGENDER", "APOE4"},
	NumericDefaults: map[string]float64{
		"AGE":                75.0,
		"MMSE_bl":            28.0,
		"CDRSB_bl":           0.5,
		"FAQ_bl":             0.0,
		"PTEDUCAT":           16.0,
		"RAVLT_immediate_bl": 40.0,
		"MOCA_bl":            26.0,
		"ADAS13_bl":          10.5,
	},
	CategoricalDefaults: map[string]interface{}{
		"PTGENDER": "female",
		"APOE4":    -1,
	},
	Codecs: map[string]preprocess.Codec{
		"PTGENDER": preprocess.GenderCodec{},
	},
}

var diagnosisExtendedSpec = &preprocess.Spec{
	FeatureOrder: []string{
		"AGE", "MMSE_bl", "CDRSB_bl", "FAQ_bl", "PTEDUCAT",
		"PTGENDER", "APOE4", "RAVLT_immediate_bl", "MOCA_bl", "ADAS13_bl",
		"Hippocampus_bl", "Ventricles_bl", "WholeBrain_bl", "Entorhinal_bl",
		"FDG_bl", "AV45_bl", "PIB_bl", "FBB_bl",
		"ABETA_bl", "TAU_bl", "PTAU_bl", "mPACCdigit_bl", "mPACCtrailsB_bl",
	},
	NumericColumns: []string{
		"AGE", "MMSE_bl", "CDRSB_bl", "FAQ_bl", "PTEDUCAT",
		"RAVLT_immediate_bl", "MOCA_bl", "ADAS13_bl",
		"Hippocampus_bl", "Ventricles_bl", "WholeBrain_bl", "Entorhinal_bl",
		"FDG_bl", "AV45_bl", "PIB_bl", "FBB_bl",
		"ABETA_bl", "TAU_bl", "PTAU_bl", "mPACCdigit_bl", "mPACCtrailsB_bl",
	},
	CategoricalColumns: []string{"PTGENDER", "APOE4"},
	NumericDefaults: map[string]float64{
		"AGE":                75.0,
		"MMSE_bl":            28.0,
		"CDRSB_bl":           0.5,
		"FAQ_bl":             0.0,
		"PTEDUCAT":           16.0,
		"RAVLT_immediate_bl": 40.0,
		"MOCA_bl":            26.0,
		"ADAS13_bl":          10.5,
		"Hippocampus_bl":     3500.0,
		"Ventricles_bl":      40000.0,
		"WholeBrain_bl":      1.0e6,
		"Entorhinal_bl":      3000.0,
		"FDG_bl":             1.1,
		"AV45_bl":            1.0,
		"PIB_bl":             1.0,
		"FBB_bl":             1.0,
		"ABETA_bl":           800.0,
		"TAU_bl":             250.0,
		"PTAU_bl":            25.0,
		"mPACCdigit_bl":      0.0,
		"mPACCtrailsB_bl":    0.0,
	},
	CategoricalDefaults: map[string]interface{}{
		"PTGENDER": "female",
		"APOE4":    -1,
	},
	Codecs: map[string]preprocess.Codec{
		"PTGENDER": preprocess.GenderCodec{},
	},
}

var prognosisBasicSpec = &preprocess.Spec{
	FeatureOrder: []string{
		"AGE", "PTGENDER", "PTEDUCAT", "ADAS13", "MOCA",
		"CDRSB", "FAQ", "APOE4_count", "GDTOTAL",
	},
	NumericColumns: []string{
		"AGE", "PTEDUCAT", "ADAS13", "MOCA", "CDRSB", "FAQ", "GDTOTAL",
	},
	CategoricalColumns: []string{"PTGENDER", "APOE4_count"},
	NumericDefaults: map[string]float64{
		"AGE":      75,
		"PTEDUCAT": 16,
		"ADAS13":   10.5,
		"MOCA":     26.0,
		"CDRSB":    0.5,
		"FAQ":      0.0,
		"GDTOTAL":  5.0,
	},
	CategoricalDefaults: map[string]interface{}{
		"PTGENDER":    "female",
		"APOE4_count": 0,
	},
	Codecs: map[string]preprocess.Codec{
		"PTGENDER": preprocess.GenderCodec{},
	},
}

var prognosisExtendedSpec = &preprocess.Spec{
	FeatureOrder: []string{
		"AGE", "PTGENDER", "PTEDUCAT", "ADAS13", "CDRSB",
		"FAQ", "APOE4_count", "GDTOTAL", "ABETA", "TAU", "PTAU",
	},
	NumericColumns: []string{
		"AGE", "PTEDUCAT", "ADAS13", "CDRSB", "FAQ", "GDTOTAL",
		"ABETA", "TAU", "PTAU",
	},
	CategoricalColumns: []string{"PTGENDER", "APOE4_count"},
	NumericDefaults: map[string]float64{
		"AGE":      75,
		"PTEDUCAT": 16,
		"ADAS13":   10.5,
		"CDRSB":    0.5,
		"FAQ":      0.0,
		"GDTOTAL":  5.0,
		// CSF biomarker defaults, typical values for MCI patients.
		"ABETA": 700.0,
		"TAU":   300.0,
		"PTAU":  50.0,
	},
	CategoricalDefaults: map[string]interface{}{
		"PTGENDER":    "female",
		"APOE4_count": 0,
	},
	Codecs: map[string]preprocess.Codec{
		"PTGENDER": preprocess.GenderCodec{},
	},
}

// screeningFeatureOrder is the input column order for the screening pipeline
// model; preprocessing is internal to the artifact, categoricals stay as
// strings for its one-hot encoder.
var screeningFeatureOrder = []string{
	"age", "education_years", "moca_score", "adas13_score",
	"cdr_sum", "faq_total", "gender", "race",
}
