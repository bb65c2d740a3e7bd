package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"chrotation/fsutil"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ReadFile loads a CSV file with a header row.
func ReadFile(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return Read(file)
}

// Read decodes a CSV table. A leading byte order mark is stripped and
// UTF-16 input is converted. Input without a byte order mark is read as raw
// bytes, so cells in other encodings come back unchanged.
func Read(r io.Reader) (*Dataset, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(transform.Nop))
	reader := csv.NewReader(decoded)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: no header row", ErrMalformed)
	}
	if err != nil {
		return nil, wrapCSVError(err)
	}

	seen := make(map[string]struct{}, len(header))
	for _, column := range header {
		if _, ok := seen[column]; ok {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrMalformed, column)
		}
		seen[column] = struct{}{}
	}

	ds := New(header)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, wrapCSVError(err)
		}
		ds.Rows = append(ds.Rows, record)
	}
	return ds, nil
}

func wrapCSVError(err error) error {
	var parseErr *csv.ParseError
	if errors.As(err, &parseErr) {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return err
}

// Write encodes the dataset as CSV with a header row.
func (d *Dataset) Write(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(d.Columns); err != nil {
		return err
	}
	if err := writer.WriteAll(d.Rows); err != nil {
		return err
	}
	return writer.Error()
}

// WriteFile replaces path with the dataset in one step.
func (d *Dataset) WriteFile(path string) error {
	return fsutil.WriteFileAtomic(path, d.Write)
}
