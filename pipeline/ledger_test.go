package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestOpenLedger(t *testing.T) {
	t.Run("empty path disables the ledger", func(t *testing.T) {
		assert.Nil(t, OpenLedger("", nil))
	})

	t.Run("opens a database", func(t *testing.T) {
		ledger := OpenLedger(filepath.Join(t.TempDir(), "runs.db"), nil)
		require.NotNil(t, ledger)
		assert.NoError(t, ledger.Close())
	})

	t.Run("unopenable database warns and continues", func(t *testing.T) {
		dir := t.TempDir()
		blocker := filepath.Join(dir, "blocker")
		require.NoError(t, os.WriteFile(blocker, []byte("file, not dir"), 0o644))

		core, logs := observer.New(zap.WarnLevel)
		ledger := OpenLedger(filepath.Join(blocker, "runs.db"), zap.New(core))
		assert.Nil(t, ledger)
		require.Equal(t, 1, logs.Len())
		assert.Equal(t, "run ledger unavailable", logs.All()[0].Message)

		// a run without a ledger still succeeds
		input := writeNodeCSV(t, dir, "dataset.csv", 40, 3, true)
		_, err := NewTrainer(testTrainConfig(dir, input), nil, nil, ledger).Run()
		require.NoError(t, err)
	})
}
