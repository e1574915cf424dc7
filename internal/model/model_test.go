package model

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "clinovia-inference/internal/common/errors"
	"clinovia-inference/internal/common/logger"
	"clinovia-inference/internal/preprocess"
)

const binaryModelDoc = `{
	"type": "logistic",
	"classes": ["Stable", "Progress"],
	"coefficients": [[1.0, -2.0]],
	"intercepts": [0.5]
}`

const multiclassModelDoc = `{
	"type": "logistic",
	"classes": ["CN", "MCI", "AD"],
	"coefficients": [[1.0, 0.0], [0.0, 1.0], [-1.0, -1.0]],
	"intercepts": [0.0, 0.0, 0.0]
}`

const scalerDoc = `{
	"type": "standard_scaler",
	"mean": [75.0, 28.0],
	"scale": [10.0, 4.0]
}`

const pipelineModelDoc = `{
	"type": "pipeline",
	"classes": ["negative", "positive"],
	"coefficients": [[0.5, 1.0, -1.0]],
	"intercepts": [0.0],
	"numeric_columns": ["age"],
	"categorical_columns": ["gender"],
	"categories": {"gender": ["female", "male"]},
	"scaler": {"mean": [70.0], "scale": [10.0]}
}`

func frameOf(columns []string, values []interface{}) *preprocess.Frame {
	return &preprocess.Frame{Columns: columns, Values: values}
}

func TestParseArtifact(t *testing.T) {
	t.Run("binary logistic", func(t *testing.T) {
		artifact, err := ParseArtifact("k", []byte(binaryModelDoc))
		require.NoError(t, err)

		m, ok := artifact.(*LogisticModel)
		require.True(t, ok)
		assert.Equal(t, []string{"Stable", "Progress"}, m.Classes())
		assert.Equal(t, 2, m.NumFeatures())
	})

	t.Run("standard scaler", func(t *testing.T) {
		artifact, err := ParseArtifact("k", []byte(scalerDoc))
		require.NoError(t, err)

		s, ok := artifact.(*StandardScaler)
		require.True(t, ok)

		row, err := s.Transform([]float64{85, 32})
		require.NoError(t, err)
		assert.InDelta(t, 1.0, row[0], 1e-9)
		assert.InDelta(t, 1.0, row[1], 1e-9)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := ParseArtifact("k", []byte("{not json"))
		var stdErr *apperrors.StandardError
		require.ErrorAs(t, err, &stdErr)
		assert.Equal(t, apperrors.ErrCodeArtifactCorrupted, stdErr.Code)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := ParseArtifact("k", []byte(`{"type":"gradient_boost"}`))
		var stdErr *apperrors.StandardError
		require.ErrorAs(t, err, &stdErr)
		assert.Equal(t, apperrors.ErrCodeArtifactCorrupted, stdErr.Code)
	})

	t.Run("inconsistent shapes rejected", func(t *testing.T) {
		doc := `{"type":"logistic","classes":["a","b","c"],"coefficients":[[1.0]],"intercepts":[0.0]}`
		_, err := ParseArtifact("k", []byte(doc))
		assert.Error(t, err)
	})

	t.Run("zero scale rejected", func(t *testing.T) {
		doc := `{"type":"standard_scaler","mean":[1.0],"scale":[0.0]}`
		_, err := ParseArtifact("k", []byte(doc))
		assert.Error(t, err)
	})
}

func TestLogisticModelPredictProba(t *testing.T) {
	t.Run("binary probabilities sum to one", func(t *testing.T) {
		artifact, err := ParseArtifact("k", []byte(binaryModelDoc))
		require.NoError(t, err)
		m := artifact.(*LogisticModel)

		probs, err := m.PredictProba(frameOf([]string{"x", "y"}, []interface{}{2.0, 1.0}))
		require.NoError(t, err)
		require.Len(t, probs, 2)
		assert.InDelta(t, 1.0, probs[0]+probs[1], 1e-9)
		// logit = 1*2 - 2*1 + 0.5 = 0.5 > 0, positive class favored
		assert.Greater(t, probs[1], probs[0])
	})

	t.Run("multiclass argmax follows dominant logit", func(t *testing.T) {
		artifact, err := ParseArtifact("k", []byte(multiclassModelDoc))
		require.NoError(t, err)
		m := artifact.(*LogisticModel)

		probs, err := m.PredictProba(frameOf([]string{"x", "y"}, []interface{}{5.0, 0.0}))
		require.NoError(t, err)
		require.Len(t, probs, 3)

		var sum float64
		for _, p := range probs {
			sum += p
		}
		assert.InDelta(t, 1.0, sum, 1e-9)
		assert.Greater(t, probs[0], probs[1])
		assert.Greater(t, probs[0], probs[2])
	})

	t.Run("wrong length input", func(t *testing.T) {
		artifact, err := ParseArtifact("k", []byte(binaryModelDoc))
		require.NoError(t, err)
		m := artifact.(*LogisticModel)

		_, err = m.PredictProba(frameOf([]string{"x"}, []interface{}{2.0}))
		var stdErr *apperrors.StandardError
		require.ErrorAs(t, err, &stdErr)
		assert.Equal(t, apperrors.ErrCodeShapeMismatch, stdErr.Code)
	})
}

func TestPipelineModelPredictProba(t *testing.T) {
	artifact, err := ParseArtifact("k", []byte(pipelineModelDoc))
	require.NoError(t, err)
	m := artifact.(*PipelineModel)

	t.Run("one-hot expansion by column name", func(t *testing.T) {
		male, err := m.PredictProba(frameOf(
			[]string{"age", "gender"}, []interface{}{80.0, "male"}))
		require.NoError(t, err)

		female, err := m.PredictProba(frameOf(
			[]string{"age", "gender"}, []interface{}{80.0, "female"}))
		require.NoError(t, err)

		// gender=female carries coefficient +1.0, male -1.0
		assert.Greater(t, female[1], male[1])
	})

	t.Run("unseen category contributes nothing", func(t *testing.T) {
		probs, err := m.PredictProba(frameOf(
			[]string{"age", "gender"}, []interface{}{70.0, "unspecified"}))
		require.NoError(t, err)
		// age scales to 0, one-hot block all zero: logit 0 -> 0.5
		assert.InDelta(t, 0.5, probs[1], 1e-9)
	})

	t.Run("missing column is fatal", func(t *testing.T) {
		_, err := m.PredictProba(frameOf([]string{"age"}, []interface{}{70.0}))
		var stdErr *apperrors.StandardError
		require.ErrorAs(t, err, &stdErr)
		assert.Equal(t, apperrors.ErrCodeMissingFeature, stdErr.Code)
	})
}

func TestPredict(t *testing.T) {
	artifact, err := ParseArtifact("k", []byte(multiclassModelDoc))
	require.NoError(t, err)
	m := artifact.(*LogisticModel)

	pred, err := Predict(m, "diagnosis_basic", frameOf(
		[]string{"x", "y"}, []interface{}{0.0, 5.0}))
	require.NoError(t, err)

	assert.Equal(t, "MCI", pred.Class)
	assert.Equal(t, pred.Probabilities["MCI"], pred.Confidence)
	assert.Len(t, pred.Probabilities, 3)
}

func writeArtifacts(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for key, doc := range files {
		path := filepath.Join(root, filepath.FromSlash(key))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	}
	return root
}

type countingStore struct {
	inner   Store
	fetches int
}

func (s *countingStore) Fetch(ctx context.Context, key string) ([]byte, error) {
	s.fetches++
	return s.inner.Fetch(ctx, key)
}

func TestLocalStore(t *testing.T) {
	root := writeArtifacts(t, map[string]string{
		"alzheimer/diagnosis/basic/v1/model.json": binaryModelDoc,
	})
	store := NewLocalStore(root)

	t.Run("existing artifact", func(t *testing.T) {
		data, err := store.Fetch(context.Background(), "alzheimer/diagnosis/basic/v1/model.json")
		require.NoError(t, err)
		assert.Equal(t, []byte(binaryModelDoc), data)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := store.Fetch(context.Background(), "alzheimer/diagnosis/basic/v9/model.json")
		var stdErr *apperrors.StandardError
		require.ErrorAs(t, err, &stdErr)
		assert.Equal(t, apperrors.ErrCodeArtifactNotFound, stdErr.Code)
	})
}

func TestLoader(t *testing.T) {
	ctx := context.Background()
	root := writeArtifacts(t, map[string]string{
		"alzheimer/diagnosis/basic/v1/model.json":  multiclassModelDoc,
		"alzheimer/diagnosis/basic/v1/scaler.json": scalerDoc,
	})

	t.Run("memoizes parsed artifacts", func(t *testing.T) {
		store := &countingStore{inner: NewLocalStore(root)}
		loader, err := NewLoader(store, 4, logger.NewNop())
		require.NoError(t, err)

		first, err := loader.Model(ctx, "alzheimer/diagnosis/basic/v1/model.json")
		require.NoError(t, err)
		second, err := loader.Model(ctx, "alzheimer/diagnosis/basic/v1/model.json")
		require.NoError(t, err)

		assert.Same(t, first, second)
		assert.Equal(t, 1, store.fetches)
	})

	t.Run("evict forces reload", func(t *testing.T) {
		store := &countingStore{inner: NewLocalStore(root)}
		loader, err := NewLoader(store, 4, logger.NewNop())
		require.NoError(t, err)

		_, err = loader.Model(ctx, "alzheimer/diagnosis/basic/v1/model.json")
		require.NoError(t, err)
		loader.Evict("alzheimer/diagnosis/basic/v1/model.json")
		_, err = loader.Model(ctx, "alzheimer/diagnosis/basic/v1/model.json")
		require.NoError(t, err)

		assert.Equal(t, 2, store.fetches)
	})

	t.Run("scaler artifact", func(t *testing.T) {
		loader, err := NewLoader(NewLocalStore(root), 4, logger.NewNop())
		require.NoError(t, err)

		scaler, err := loader.Scaler(ctx, "alzheimer/diagnosis/basic/v1/scaler.json")
		require.NoError(t, err)

		row, err := scaler.Transform([]float64{75, 28})
		require.NoError(t, err)
		assert.Equal(t, []float64{0, 0}, row)
	})

	t.Run("kind mismatch is corrupted artifact", func(t *testing.T) {
		loader, err := NewLoader(NewLocalStore(root), 4, logger.NewNop())
		require.NoError(t, err)

		_, err = loader.Model(ctx, "alzheimer/diagnosis/basic/v1/scaler.json")
		var stdErr *apperrors.StandardError
		require.ErrorAs(t, err, &stdErr)
		assert.Equal(t, apperrors.ErrCodeArtifactCorrupted, stdErr.Code)
	})

	t.Run("missing artifact is fatal", func(t *testing.T) {
		loader, err := NewLoader(NewLocalStore(root), 4, logger.NewNop())
		require.NoError(t, err)

		_, err = loader.Model(ctx, "cardiology/nothing/v1/model.json")
		var stdErr *apperrors.StandardError
		require.ErrorAs(t, err, &stdErr)
		assert.Equal(t, apperrors.ErrCodeArtifactNotFound, stdErr.Code)
	})
}
