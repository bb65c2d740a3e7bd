package ml

import "errors"

// Evaluation holds held-out metrics for the rotate class (label 1).
type Evaluation struct {
	Accuracy  float64
	Precision float64
	Recall    float64
	Samples   int
}

func Accuracy(expected, predicted []int) (float64, error) {
	if len(expected) != len(predicted) {
		return 0, errors.New("expected/predicted length mismatch")
	}
	if len(expected) == 0 {
		return 0, errors.New("nothing to evaluate")
	}
	correct := 0
	for i := range expected {
		if expected[i] == predicted[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(expected)), nil
}

func EvaluateModel(model Predictor, testX [][]float64, testY []int) (Evaluation, error) {
	if len(testX) != len(testY) {
		return Evaluation{}, errors.New("features and labels size mismatch")
	}
	predicted := make([]int, len(testX))
	for i, feature := range testX {
		label, _, err := model.Predict(feature)
		if err != nil {
			return Evaluation{}, err
		}
		predicted[i] = label
	}

	accuracy, err := Accuracy(testY, predicted)
	if err != nil {
		return Evaluation{}, err
	}

	var truePositive, predictedPositive, actualPositive int
	for i, label := range predicted {
		if label == 1 {
			predictedPositive++
		}
		if testY[i] == 1 {
			actualPositive++
			if label == 1 {
				truePositive++
			}
		}
	}

	eval := Evaluation{Accuracy: accuracy, Samples: len(testY)}
	if predictedPositive > 0 {
		eval.Precision = float64(truePositive) / float64(predictedPositive)
	}
	if actualPositive > 0 {
		eval.Recall = float64(truePositive) / float64(actualPositive)
	}
	return eval, nil
}
