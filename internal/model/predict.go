// internal/model/predict.go
package model

import (
	"fmt"
	"math"

	apperrors "clinovia-inference/internal/common/errors"
	"clinovia-inference/internal/preprocess"
)

// Prediction is the classified outcome for one input row.
type Prediction struct {
	Class         string             `json:"class"`
	Confidence    float64            `json:"confidence"`
	Probabilities map[string]float64 `json:"probabilities"`
}

// Predict runs a classifier over a prepared frame and picks the argmax
// class. A probability that is NaN or infinite marks the artifact or input
// as unusable and fails the request.
func Predict(clf Classifier, name string, frame *preprocess.Frame) (*Prediction, error) {
	probs, err := clf.PredictProba(frame)
	if err != nil {
		return nil, err
	}

	classes := clf.Classes()
	if len(probs) != len(classes) {
		return nil, apperrors.NewShapeMismatchError(len(classes), len(probs))
	}

	best := 0
	byClass := make(map[string]float64, len(classes))
	for i, p := range probs {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return nil, apperrors.NewPredictionFailedError(name,
				fmt.Errorf("probability for class %s is not finite", classes[i]))
		}
		byClass[classes[i]] = p
		if p > probs[best] {
			best = i
		}
	}

	return &Prediction{
		Class:         classes[best],
		Confidence:    probs[best],
		Probabilities: byClass,
	}, nil
}
