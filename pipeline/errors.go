package pipeline

import (
	"errors"
	"fmt"

	"chrotation/dataset"
)

// Failure classes surfaced to the operator. Every error returned by Trainer
// and Predictor wraps exactly one of these.
var (
	ErrDataFormat     = errors.New("data format error")
	ErrSchemaMismatch = errors.New("schema mismatch")
	ErrArtifactLoad   = errors.New("artifact load error")
	ErrIO             = errors.New("io error")
)

func classify(class error, err error) error {
	return fmt.Errorf("%w: %w", class, err)
}

// classifyDatasetError maps dataset failures onto the taxonomy. Missing
// feature columns are reported as missingAs, which differs between training
// (a format problem) and prediction (a mismatch with the model schema).
func classifyDatasetError(err error, missingAs error) error {
	var missing *dataset.MissingColumnError
	var parseErr *dataset.ParseError
	switch {
	case errors.As(err, &missing):
		return classify(missingAs, err)
	case errors.As(err, &parseErr), errors.Is(err, dataset.ErrMalformed):
		return classify(ErrDataFormat, err)
	default:
		return classify(ErrIO, err)
	}
}
