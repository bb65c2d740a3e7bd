package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	ledger, err := Open(filepath.Join(t.TempDir(), "runs", "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { ledger.Close() })
	return ledger
}

func TestTrainingLogRoundTrip(t *testing.T) {
	ledger := openTestLedger(t)

	older := TrainingLog{
		RunID:             "run-1",
		ModelName:         "random_forest",
		ModelPath:         "ch_rotation_model.json",
		InputPath:         "dataset.csv",
		LabelsSynthesized: true,
		Accuracy:          0.8,
		Precision:         0.75,
		Recall:            0.9,
		TrainRows:         70,
		TestRows:          30,
		TrainedAt:         time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		DataPoints:        100,
	}
	newer := older
	newer.RunID = "run-2"
	newer.LabelsSynthesized = false
	newer.TrainedAt = older.TrainedAt.Add(time.Hour)

	require.NoError(t, ledger.SaveTrainingLog(older))
	require.NoError(t, ledger.SaveTrainingLog(newer))

	logs, err := ledger.LoadTrainingLog()
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "run-2", logs[0].RunID)
	assert.False(t, logs[0].LabelsSynthesized)
	assert.Equal(t, older.RunID, logs[1].RunID)
	assert.True(t, logs[1].LabelsSynthesized)
	assert.Equal(t, 0.8, logs[1].Accuracy)
	assert.True(t, older.TrainedAt.Equal(logs[1].TrainedAt))

	assert.Error(t, ledger.SaveTrainingLog(older), "run ids are unique")
}

func TestPredictionLogRoundTrip(t *testing.T) {
	ledger := openTestLedger(t)

	entry := PredictionLog{
		RunID:          "pred-1",
		ModelPath:      "ch_rotation_model.json",
		InputPath:      "newest_dataset.csv",
		OutputPath:     "predicted_ch_rotation1.csv",
		Rows:           10,
		RotateCount:    4,
		OutOfRangeRows: 1,
		PredictedAt:    time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC),
	}
	require.NoError(t, ledger.SavePredictionLog(entry))

	logs, err := ledger.LoadPredictionLog()
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, 4, logs[0].RotateCount)
	assert.Equal(t, 1, logs[0].OutOfRangeRows)
	assert.True(t, entry.PredictedAt.Equal(logs[0].PredictedAt))
}

func TestNilLedger(t *testing.T) {
	var ledger *Ledger
	assert.NoError(t, ledger.Close())
	assert.Error(t, ledger.SaveTrainingLog(TrainingLog{}))
	_, err := Open("")
	assert.Error(t, err)
}
