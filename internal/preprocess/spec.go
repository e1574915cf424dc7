// Package preprocess turns heterogeneous, partially-missing clinical inputs
// into model-ready feature vectors. Every predictive assessment model shares
// this path: fill defaults, encode categoricals, scale numerics, project into
// the training-time feature order.
package preprocess

import (
	"fmt"
)

// Scaler is a pre-fitted numeric transformer. Input row length in,
// same-length scaled row out; anything else is treated as opaque.
type Scaler interface {
	Transform(row []float64) ([]float64, error)
}

// Spec is the static per-model feature configuration: the training-time
// feature order, the numeric/categorical split, and the default tables.
type Spec struct {
	FeatureOrder        []string
	NumericColumns      []string
	CategoricalColumns  []string
	NumericDefaults     map[string]float64
	CategoricalDefaults map[string]interface{}

	// Codecs maps a categorical column to its encoder. Columns without a
	// codec pass through unencoded (e.g. APOE4 allele counts).
	Codecs map[string]Codec
}

// Validate checks the structural invariant: FeatureOrder is a disjoint union
// of NumericColumns and CategoricalColumns, and every column has a source
// (default entry). A spec that fails here must never reach prediction.
func (s *Spec) Validate() error {
	kind := make(map[string]string, len(s.FeatureOrder))
	for _, col := range s.NumericColumns {
		kind[col] = "numeric"
	}
	for _, col := range s.CategoricalColumns {
		if _, dup := kind[col]; dup {
			return fmt.Errorf("column %q is both numeric and categorical", col)
		}
		kind[col] = "categorical"
	}

	if len(kind) != len(s.FeatureOrder) {
		return fmt.Errorf("feature order has %d entries but %d columns are declared",
			len(s.FeatureOrder), len(kind))
	}
	for _, name := range s.FeatureOrder {
		if _, ok := kind[name]; !ok {
			return fmt.Errorf("feature %q in order is neither numeric nor categorical", name)
		}
	}

	for _, col := range s.NumericColumns {
		if _, ok := s.NumericDefaults[col]; !ok {
			return fmt.Errorf("numeric column %q has no default", col)
		}
	}
	for _, col := range s.CategoricalColumns {
		if _, ok := s.CategoricalDefaults[col]; !ok {
			return fmt.Errorf("categorical column %q has no default", col)
		}
	}

	return nil
}
