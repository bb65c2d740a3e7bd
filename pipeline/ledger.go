package pipeline

import (
	"chrotation/db"
	"go.uber.org/zap"
)

// OpenLedger opens the run ledger at path. It returns nil when path is empty
// or the database cannot be opened; runs then proceed unrecorded.
func OpenLedger(path string, logger *zap.Logger) *db.Ledger {
	if path == "" {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ledger, err := db.Open(path)
	if err != nil {
		logger.Warn("run ledger unavailable", zap.String("path", path), zap.Error(err))
		return nil
	}
	return ledger
}
