package pipeline

import (
	"bytes"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"chrotation/ml"
	"github.com/stretchr/testify/require"
)

// writeNodeCSV writes n cluster head readings, optionally with a label
// column, and returns the file path.
func writeNodeCSV(t *testing.T, dir, name string, n int, seed int64, withLabel bool) string {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	var b strings.Builder
	b.WriteString("NodeID,TrafficLoad,PacketReceived,ResidualEnergy,DistanceToBS")
	if withLabel {
		b.WriteString(",OptimalCHRotation")
	}
	b.WriteString("\n")
	for i := 0; i < n; i++ {
		energy := rng.Float64() * 100
		load := rng.Float64() * 150
		fmt.Fprintf(&b, "node-%03d,%.2f,%d,%.2f,%.1f", i, load, rng.Intn(500), energy, rng.Float64()*200)
		if withLabel {
			label := 0
			if energy < 30 || load > 100 {
				label = 1
			}
			fmt.Fprintf(&b, ",%d", label)
		}
		b.WriteString("\n")
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func testTrainConfig(dir, input string) TrainConfig {
	return TrainConfig{
		InputPath:   input,
		UpdatedPath: filepath.Join(dir, "dataset_updated.csv"),
		ModelPath:   filepath.Join(dir, "ch_rotation_model.json"),
		TestRatio:   0.3,
		Forest:      ml.DefaultForestConfig(),
		LabelRand:   rand.New(rand.NewSource(1)),
		SplitRand:   rand.New(rand.NewSource(2)),
	}
}

func trainFixture(t *testing.T, dir string) string {
	t.Helper()
	input := writeNodeCSV(t, dir, "dataset.csv", 100, 5, false)
	var out bytes.Buffer
	_, err := NewTrainer(testTrainConfig(dir, input), nil, &out, nil).Run()
	require.NoError(t, err)
	return filepath.Join(dir, "ch_rotation_model.json")
}
