package preprocess

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "clinovia-inference/internal/common/errors"
)

func cognitiveSpec() *Spec {
	return &Spec{
		FeatureOrder:       []string{"AGE", "MMSE_bl", "PTGENDER", "APOE4"},
		NumericColumns:     []string{"AGE", "MMSE_bl"},
		CategoricalColumns: []string{"PTGENDER", "APOE4"},
		NumericDefaults: map[string]float64{
			"AGE":     75,
			"MMSE_bl": 28,
		},
		CategoricalDefaults: map[string]interface{}{
			"PTGENDER": "female",
			"APOE4":    -1,
		},
		Codecs: map[string]Codec{
			"PTGENDER": GenderCodec{},
		},
	}
}

func TestFillDefaults(t *testing.T) {
	numeric := map[string]float64{"AGE": 75, "MMSE_bl": 28}
	categorical := map[string]interface{}{"PTGENDER": "female"}

	tests := []struct {
		name     string
		raw      map[string]interface{}
		expected map[string]interface{}
	}{
		{
			name: "missing fields take defaults",
			raw:  map[string]interface{}{"AGE": 81.0},
			expected: map[string]interface{}{
				"AGE": 81.0, "MMSE_bl": 28.0, "PTGENDER": "female",
			},
		},
		{
			name: "explicit nil takes default",
			raw:  map[string]interface{}{"AGE": nil, "PTGENDER": nil},
			expected: map[string]interface{}{
				"AGE": 75.0, "MMSE_bl": 28.0, "PTGENDER": "female",
			},
		},
		{
			name: "provided values survive",
			raw:  map[string]interface{}{"AGE": 62.0, "MMSE_bl": 19.0, "PTGENDER": "male"},
			expected: map[string]interface{}{
				"AGE": 62.0, "MMSE_bl": 19.0, "PTGENDER": "male",
			},
		},
		{
			name: "unknown keys carried through",
			raw:  map[string]interface{}{"patient_id": "p-001"},
			expected: map[string]interface{}{
				"AGE": 75.0, "MMSE_bl": 28.0, "PTGENDER": "female", "patient_id": "p-001",
			},
		},
		{
			name: "empty input yields all defaults",
			raw:  map[string]interface{}{},
			expected: map[string]interface{}{
				"AGE": 75.0, "MMSE_bl": 28.0, "PTGENDER": "female",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filled := FillDefaults(tt.raw, numeric, categorical)
			assert.Equal(t, tt.expected, filled)
		})
	}
}

func TestFillDefaultsDoesNotMutateInput(t *testing.T) {
	raw := map[string]interface{}{"AGE": 81.0}
	FillDefaults(raw, map[string]float64{"MMSE_bl": 28}, nil)
	assert.Equal(t, map[string]interface{}{"AGE": 81.0}, raw)
}

func TestEncodeGender(t *testing.T) {
	tests := []struct {
		name     string
		value    interface{}
		expected int
	}{
		{"lowercase male", "male", GenderMale},
		{"uppercase female", "FEMALE", GenderFemale},
		{"short form m", "m", GenderMale},
		{"short form f", "F", GenderFemale},
		{"padded", " Male ", GenderMale},
		{"unknown string", "other", GenderUnknown},
		{"empty string", "", GenderUnknown},
		{"nil", nil, GenderUnknown},
		{"already encoded male", 0, GenderMale},
		{"already encoded female", 1, GenderFemale},
		{"already encoded unknown", 2, GenderUnknown},
		{"json float code", 1.0, GenderFemale},
		{"out of range int", 7, GenderUnknown},
		{"non-categorical type", []string{"male"}, GenderUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EncodeGender(tt.value))
		})
	}
}

func TestEncodeGenderIdempotent(t *testing.T) {
	for _, v := range []string{"male", "female", "neither"} {
		once := EncodeGender(v)
		assert.Equal(t, once, EncodeGender(once), "re-encoding %q changed the code", v)
	}
}

func TestStringCodec(t *testing.T) {
	codec := StringCodec{Fallback: "female"}

	assert.Equal(t, "male", codec.Encode("Male"))
	assert.Equal(t, "female", codec.Encode(nil))
	assert.Equal(t, "1", codec.Encode(1))
}

func TestSpecValidate(t *testing.T) {
	t.Run("valid spec", func(t *testing.T) {
		require.NoError(t, cognitiveSpec().Validate())
	})

	t.Run("column in both partitions", func(t *testing.T) {
		spec := cognitiveSpec()
		spec.CategoricalColumns = append(spec.CategoricalColumns, "AGE")
		assert.Error(t, spec.Validate())
	})

	t.Run("order not covered by columns", func(t *testing.T) {
		spec := cognitiveSpec()
		spec.FeatureOrder = append(spec.FeatureOrder, "CDRSB_bl")
		assert.Error(t, spec.Validate())
	})

	t.Run("numeric column without default", func(t *testing.T) {
		spec := cognitiveSpec()
		delete(spec.NumericDefaults, "MMSE_bl")
		assert.Error(t, spec.Validate())
	})

	t.Run("categorical column without default", func(t *testing.T) {
		spec := cognitiveSpec()
		delete(spec.CategoricalDefaults, "APOE4")
		assert.Error(t, spec.Validate())
	})
}

func TestBuildVector(t *testing.T) {
	spec := cognitiveSpec()
	require.NoError(t, spec.Validate())

	t.Run("sparse input defaults and encodes", func(t *testing.T) {
		filled := FillDefaults(map[string]interface{}{"AGE": 81.0},
			spec.NumericDefaults, spec.CategoricalDefaults)

		row, err := BuildVector(filled, spec, nil)
		require.NoError(t, err)
		assert.Equal(t, []float64{81, 28, 1, -1}, row)
	})

	t.Run("full input preserves order", func(t *testing.T) {
		filled := FillDefaults(map[string]interface{}{
			"APOE4":    2,
			"PTGENDER": "male",
			"MMSE_bl":  19.0,
			"AGE":      66.0,
		}, spec.NumericDefaults, spec.CategoricalDefaults)

		row, err := BuildVector(filled, spec, nil)
		require.NoError(t, err)
		assert.Equal(t, []float64{66, 19, 0, 2}, row)
	})

	t.Run("missing numeric feature is fatal", func(t *testing.T) {
		// Deliberately skip FillDefaults to simulate order/default drift.
		_, err := BuildVector(map[string]interface{}{
			"AGE": 81.0, "PTGENDER": "female", "APOE4": 0,
		}, spec, nil)

		var stdErr *apperrors.StandardError
		require.ErrorAs(t, err, &stdErr)
		assert.Equal(t, apperrors.ErrCodeMissingFeature, stdErr.Code)
		assert.Contains(t, stdErr.Error(), "MMSE_bl")
	})

	t.Run("missing categorical feature is fatal", func(t *testing.T) {
		_, err := BuildVector(map[string]interface{}{
			"AGE": 81.0, "MMSE_bl": 28.0, "PTGENDER": "female",
		}, spec, nil)

		var stdErr *apperrors.StandardError
		require.ErrorAs(t, err, &stdErr)
		assert.Equal(t, apperrors.ErrCodeMissingFeature, stdErr.Code)
	})

	t.Run("non-numeric value in numeric column", func(t *testing.T) {
		filled := FillDefaults(map[string]interface{}{"AGE": "eighty"},
			spec.NumericDefaults, spec.CategoricalDefaults)

		_, err := BuildVector(filled, spec, nil)
		var stdErr *apperrors.StandardError
		require.ErrorAs(t, err, &stdErr)
		assert.Equal(t, apperrors.ErrCodeInvalidInput, stdErr.Code)
	})
}

type offsetScaler struct {
	offset float64
}

func (s offsetScaler) Transform(row []float64) ([]float64, error) {
	out := make([]float64, len(row))
	for i, v := range row {
		out[i] = v + s.offset
	}
	return out, nil
}

type brokenScaler struct{}

func (brokenScaler) Transform(row []float64) ([]float64, error) {
	return row[:len(row)-1], nil
}

type failingScaler struct{}

func (failingScaler) Transform([]float64) ([]float64, error) {
	return nil, errors.New("scaler artifact corrupted")
}

func TestBuildVectorScaling(t *testing.T) {
	spec := cognitiveSpec()
	filled := FillDefaults(map[string]interface{}{"AGE": 81.0},
		spec.NumericDefaults, spec.CategoricalDefaults)

	t.Run("scaler applies to numerics only", func(t *testing.T) {
		row, err := BuildVector(filled, spec, offsetScaler{offset: 10})
		require.NoError(t, err)
		assert.Equal(t, []float64{91, 38, 1, -1}, row)
	})

	t.Run("length-changing scaler is fatal", func(t *testing.T) {
		_, err := BuildVector(filled, spec, brokenScaler{})
		var stdErr *apperrors.StandardError
		require.ErrorAs(t, err, &stdErr)
		assert.Equal(t, apperrors.ErrCodeShapeMismatch, stdErr.Code)
	})

	t.Run("scaler error propagates", func(t *testing.T) {
		_, err := BuildVector(filled, spec, failingScaler{})
		assert.EqualError(t, err, "scaler artifact corrupted")
	})
}

func TestBuildFrame(t *testing.T) {
	spec := cognitiveSpec()
	filled := FillDefaults(map[string]interface{}{"AGE": 81.0, "PTGENDER": "male"},
		spec.NumericDefaults, spec.CategoricalDefaults)

	frame, err := BuildFrame(filled, spec, nil)
	require.NoError(t, err)
	assert.Equal(t, spec.FeatureOrder, frame.Columns)

	age, ok := frame.Get("AGE")
	require.True(t, ok)
	assert.Equal(t, 81.0, age)

	_, ok = frame.Get("nope")
	assert.False(t, ok)

	t.Run("frame agrees with vector", func(t *testing.T) {
		row, err := BuildVector(filled, spec, nil)
		require.NoError(t, err)

		floats, err := frame.Floats()
		require.NoError(t, err)
		assert.Equal(t, row, floats)
	})
}

func TestBuildFrameStringCategoricals(t *testing.T) {
	spec := &Spec{
		FeatureOrder:       []string{"age", "gender", "race"},
		NumericColumns:     []string{"age"},
		CategoricalColumns: []string{"gender", "race"},
		NumericDefaults:    map[string]float64{"age": 70},
		CategoricalDefaults: map[string]interface{}{
			"gender": "female",
			"race":   "1",
		},
		Codecs: map[string]Codec{
			"gender": StringCodec{Fallback: "female"},
			"race":   StringCodec{Fallback: "1"},
		},
	}
	require.NoError(t, spec.Validate())

	filled := FillDefaults(map[string]interface{}{"gender": "Male"},
		spec.NumericDefaults, spec.CategoricalDefaults)

	frame, err := BuildFrame(filled, spec, nil)
	require.NoError(t, err)
	assert.Equal(t, []interface{}{70.0, "male", "1"}, frame.Values)

	// String categories have no numeric rendering.
	_, err = frame.Floats()
	assert.Error(t, err)
}
