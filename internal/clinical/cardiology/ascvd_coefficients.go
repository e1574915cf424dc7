// internal/clinical/cardiology/ascvd_coefficients.go
package cardiology

// pceParams are the 2013 ACC/AHA Pooled Cohort Equations constants for one
// gender/race cohort: baseline 10-year survival, cohort mean linear
// predictor, and term coefficients. Values are published guideline
// constants; do not adjust.
type pceParams struct {
	baselineSurvival float64
	meanLP           float64
	betas            map[string]float64
}

type pceCohort struct {
	gender string
	race   string
}

var pceConstants = map[pceCohort]pceParams{
	{gender: "female", race: "white"}: {
		baselineSurvival: 0.9665,
		meanLP:           -29.18,
		betas: map[string]float64{
			"ln_age":        -29.799,
			"ln_age_sq":     4.884,
			"ln_tc":         13.540,
			"ln_age*ln_tc":  -3.114,
			"ln_hdl":        -13.578,
			"ln_age*ln_hdl": 3.149,
			"ln_sbp_trt":    2.019,
			"ln_sbp_untrt":  1.957,
			"smoker":        7.574,
			"ln_age*smoker": -1.665,
			"diabetes":      0.661,
		},
	},
	{gender: "female", race: "black"}: {
		baselineSurvival: 0.9533,
		meanLP:           86.61,
		betas: map[string]float64{
			"ln_age":              17.114,
			"ln_tc":               0.940,
			"ln_hdl":              -18.920,
			"ln_age*ln_hdl":       4.475,
			"ln_sbp_trt":          29.291,
			"ln_age*ln_sbp_trt":   -6.432,
			"ln_sbp_untrt":        27.820,
			"ln_age*ln_sbp_untrt": -6.087,
			"smoker":              0.691,
			"diabetes":            0.874,
		},
	},
	{gender: "male", race: "white"}: {
		baselineSurvival: 0.9144,
		meanLP:           61.18,
		betas: map[string]float64{
			"ln_age":        12.344,
			"ln_tc":         11.853,
			"ln_age*ln_tc":  -2.664,
			"ln_hdl":        -7.990,
			"ln_age*ln_hdl": 1.769,
			"ln_sbp_trt":    1.797,
			"ln_sbp_untrt":  1.764,
			"smoker":        7.837,
			"ln_age*smoker": -1.795,
			"diabetes":      0.658,
		},
	},
	{gender: "male", race: "black"}: {
		baselineSurvival: 0.8954,
		meanLP:           19.54,
		betas: map[string]float64{
			"ln_age":       2.469,
			"ln_tc":        0.302,
			"ln_hdl":       -0.307,
			"ln_sbp_trt":   1.916,
			"ln_sbp_untrt": 1.809,
			"smoker":       0.549,
			"diabetes":     0.645,
		},
	},
}
