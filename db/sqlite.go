package db

import (
	"database/sql"
	"errors"
	"path/filepath"
	"time"

	"chrotation/fsutil"
	_ "github.com/mattn/go-sqlite3"
)

// Ledger records training and prediction runs in SQLite.
type Ledger struct {
	database *sql.DB
}

// Open creates the database file and tables when missing.
func Open(path string) (*Ledger, error) {
	if path == "" {
		return nil, errors.New("database path required")
	}
	if err := fsutil.EnsureDir(filepath.Dir(path)); err != nil {
		return nil, err
	}
	database, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	query := `
    CREATE TABLE IF NOT EXISTS training_log (
        id INTEGER PRIMARY KEY,
        run_id TEXT NOT NULL UNIQUE,
        model_name VARCHAR(50),
        model_path TEXT,
        input_path TEXT,
        labels_synthesized INTEGER,
        accuracy REAL,
        precision REAL,
        recall REAL,
        train_rows INTEGER,
        test_rows INTEGER,
        trained_at DATETIME,
        data_points INTEGER
    );
    CREATE TABLE IF NOT EXISTS prediction_log (
        id INTEGER PRIMARY KEY,
        run_id TEXT NOT NULL UNIQUE,
        model_path TEXT,
        input_path TEXT,
        output_path TEXT,
        row_count INTEGER,
        rotate_count INTEGER,
        out_of_range_rows INTEGER,
        predicted_at DATETIME
    );
    `
	if _, err := database.Exec(query); err != nil {
		database.Close()
		return nil, err
	}
	return &Ledger{database: database}, nil
}

func (l *Ledger) Close() error {
	if l == nil || l.database == nil {
		return nil
	}
	return l.database.Close()
}

type TrainingLog struct {
	RunID             string    `json:"run_id"`
	ModelName         string    `json:"model_name"`
	ModelPath         string    `json:"model_path"`
	InputPath         string    `json:"input_path"`
	LabelsSynthesized bool      `json:"labels_synthesized"`
	Accuracy          float64   `json:"accuracy"`
	Precision         float64   `json:"precision"`
	Recall            float64   `json:"recall"`
	TrainRows         int       `json:"train_rows"`
	TestRows          int       `json:"test_rows"`
	TrainedAt         time.Time `json:"trained_at"`
	DataPoints        int       `json:"data_points"`
}

func (l *Ledger) SaveTrainingLog(entry TrainingLog) error {
	if l == nil || l.database == nil {
		return errors.New("database not initialized")
	}
	_, err := l.database.Exec(`
        INSERT INTO training_log (
            run_id, model_name, model_path, input_path, labels_synthesized,
            accuracy, precision, recall, train_rows, test_rows, trained_at, data_points
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `,
		entry.RunID,
		entry.ModelName,
		entry.ModelPath,
		entry.InputPath,
		entry.LabelsSynthesized,
		entry.Accuracy,
		entry.Precision,
		entry.Recall,
		entry.TrainRows,
		entry.TestRows,
		entry.TrainedAt.UTC(),
		entry.DataPoints,
	)
	return err
}

func (l *Ledger) LoadTrainingLog() ([]TrainingLog, error) {
	if l == nil || l.database == nil {
		return nil, errors.New("database not initialized")
	}
	rows, err := l.database.Query(`
        SELECT run_id, model_name, model_path, input_path, labels_synthesized,
               accuracy, precision, recall, train_rows, test_rows, trained_at, data_points
        FROM training_log
        ORDER BY trained_at DESC, id DESC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]TrainingLog, 0)
	for rows.Next() {
		var log TrainingLog
		if err := rows.Scan(&log.RunID, &log.ModelName, &log.ModelPath, &log.InputPath, &log.LabelsSynthesized,
			&log.Accuracy, &log.Precision, &log.Recall, &log.TrainRows, &log.TestRows, &log.TrainedAt, &log.DataPoints); err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

type PredictionLog struct {
	RunID          string    `json:"run_id"`
	ModelPath      string    `json:"model_path"`
	InputPath      string    `json:"input_path"`
	OutputPath     string    `json:"output_path"`
	Rows           int       `json:"rows"`
	RotateCount    int       `json:"rotate_count"`
	OutOfRangeRows int       `json:"out_of_range_rows"`
	PredictedAt    time.Time `json:"predicted_at"`
}

func (l *Ledger) SavePredictionLog(entry PredictionLog) error {
	if l == nil || l.database == nil {
		return errors.New("database not initialized")
	}
	_, err := l.database.Exec(`
        INSERT INTO prediction_log (
            run_id, model_path, input_path, output_path, row_count, rotate_count, out_of_range_rows, predicted_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `,
		entry.RunID,
		entry.ModelPath,
		entry.InputPath,
		entry.OutputPath,
		entry.Rows,
		entry.RotateCount,
		entry.OutOfRangeRows,
		entry.PredictedAt.UTC(),
	)
	return err
}

func (l *Ledger) LoadPredictionLog() ([]PredictionLog, error) {
	if l == nil || l.database == nil {
		return nil, errors.New("database not initialized")
	}
	rows, err := l.database.Query(`
        SELECT run_id, model_path, input_path, output_path, row_count, rotate_count, out_of_range_rows, predicted_at
        FROM prediction_log
        ORDER BY predicted_at DESC, id DESC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]PredictionLog, 0)
	for rows.Next() {
		var log PredictionLog
		if err := rows.Scan(&log.RunID, &log.ModelPath, &log.InputPath, &log.OutputPath,
			&log.Rows, &log.RotateCount, &log.OutOfRangeRows, &log.PredictedAt); err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}
