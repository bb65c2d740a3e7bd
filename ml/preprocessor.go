package ml

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// FeatureStat summarises one feature column of a training set.
type FeatureStat struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
}

// FeatureStats maps feature name to its training-time summary.
type FeatureStats map[string]FeatureStat

func ComputeFeatureStats(schema Schema, features [][]float64) (FeatureStats, error) {
	if len(features) == 0 {
		return nil, errors.New("features is empty")
	}
	stats := make(FeatureStats, len(schema))
	column := make([]float64, len(features))
	for idx, name := range schema {
		for i, row := range features {
			if len(row) != len(schema) {
				return nil, fmt.Errorf("row %d has %d features, want %d", i, len(row), len(schema))
			}
			column[i] = row[idx]
		}
		mean, std := stat.MeanStdDev(column, nil)
		if len(column) < 2 {
			std = 0
		}
		stats[name] = FeatureStat{
			Min:    floats.Min(column),
			Max:    floats.Max(column),
			Mean:   mean,
			StdDev: std,
		}
	}
	return stats, nil
}

// OutOfRange lists the features of vector that fall outside the training
// range, in schema order.
func (s FeatureStats) OutOfRange(schema Schema, vector []float64) []string {
	if len(s) == 0 {
		return nil
	}
	var out []string
	for i, name := range schema {
		if i >= len(vector) {
			break
		}
		st, ok := s[name]
		if !ok {
			continue
		}
		if vector[i] < st.Min || vector[i] > st.Max {
			out = append(out, name)
		}
	}
	return out
}

// ClassBalance returns the fraction of positive labels.
func ClassBalance(labels []int) float64 {
	if len(labels) == 0 {
		return 0
	}
	values := make([]float64, len(labels))
	for i, label := range labels {
		values[i] = float64(label)
	}
	return stat.Mean(values, nil)
}
