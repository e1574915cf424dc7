// internal/preprocess/vector.go
package preprocess

import (
	"encoding/json"
	"fmt"

	apperrors "clinovia-inference/internal/common/errors"
)

// Frame is a single-row table: column names paired with values in exactly the
// spec's feature order. Models whose encoders resolve features by column name
// (one-hot pipelines) consume the Frame; order-sensitive models take Floats.
type Frame struct {
	Columns []string
	Values  []interface{}
}

// Get returns the value for a named column.
func (f *Frame) Get(column string) (interface{}, bool) {
	for i, c := range f.Columns {
		if c == column {
			return f.Values[i], true
		}
	}
	return nil, false
}

// Floats renders the row as a bare numeric vector. Both representations must
// agree on ordering and values for the same input.
func (f *Frame) Floats() ([]float64, error) {
	out := make([]float64, len(f.Values))
	for i, v := range f.Values {
		fv, err := toFloat(v)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", f.Columns[i], err)
		}
		out[i] = fv
	}
	return out, nil
}

// BuildFrame assembles the model-ready single-row table from a filled input.
//
// Steps: encode categoricals per the Spec's codecs, extract numerics in
// NumericColumns order, pass the numeric row through the fitted scaler when
// one is supplied, merge, then re-project into FeatureOrder. A feature name
// that cannot be resolved after defaulting and encoding is fatal: it means
// the feature tables have drifted from the training order.
func BuildFrame(filled map[string]interface{}, spec *Spec, scaler Scaler) (*Frame, error) {
	encoded := make(map[string]interface{}, len(spec.CategoricalColumns))
	for _, col := range spec.CategoricalColumns {
		v, ok := filled[col]
		if !ok {
			return nil, apperrors.NewMissingFeatureError(col)
		}
		if codec, hasCodec := spec.Codecs[col]; hasCodec {
			encoded[col] = codec.Encode(v)
		} else {
			encoded[col] = v
		}
	}

	numericRow := make([]float64, len(spec.NumericColumns))
	for i, col := range spec.NumericColumns {
		v, ok := filled[col]
		if !ok || v == nil {
			return nil, apperrors.NewMissingFeatureError(col)
		}
		fv, err := toFloat(v)
		if err != nil {
			return nil, apperrors.NewInvalidInputError(
				fmt.Sprintf("numeric feature %q: %v", col, err))
		}
		numericRow[i] = fv
	}

	if scaler != nil {
		scaled, err := scaler.Transform(numericRow)
		if err != nil {
			return nil, err
		}
		if len(scaled) != len(numericRow) {
			return nil, apperrors.NewShapeMismatchError(len(numericRow), len(scaled))
		}
		numericRow = scaled
	}

	merged := make(map[string]interface{}, len(spec.FeatureOrder))
	for i, col := range spec.NumericColumns {
		merged[col] = numericRow[i]
	}
	for col, v := range encoded {
		merged[col] = v
	}

	values := make([]interface{}, 0, len(spec.FeatureOrder))
	for _, name := range spec.FeatureOrder {
		v, ok := merged[name]
		if !ok {
			return nil, apperrors.NewMissingFeatureError(name)
		}
		values = append(values, v)
	}

	if len(values) != len(spec.FeatureOrder) {
		return nil, apperrors.NewShapeMismatchError(len(spec.FeatureOrder), len(values))
	}

	return &Frame{
		Columns: append([]string(nil), spec.FeatureOrder...),
		Values:  values,
	}, nil
}

// BuildVector assembles the model-ready numeric vector. Equivalent to
// BuildFrame followed by Floats; order-sensitive models use this path.
func BuildVector(filled map[string]interface{}, spec *Spec, scaler Scaler) ([]float64, error) {
	frame, err := BuildFrame(filled, spec, scaler)
	if err != nil {
		return nil, err
	}

	row, err := frame.Floats()
	if err != nil {
		return nil, apperrors.NewInvalidInputError(err.Error())
	}

	if len(row) != len(spec.FeatureOrder) {
		return nil, apperrors.NewShapeMismatchError(len(spec.FeatureOrder), len(row))
	}
	return row, nil
}

func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	case json.Number:
		return n.Float64()
	default:
		return 0, fmt.Errorf("value %v (%T) is not numeric", v, v)
	}
}
