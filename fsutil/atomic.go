package fsutil

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// StagedFile is content written to a temporary file next to its target and
// not yet renamed into place.
type StagedFile struct {
	path    string
	tmpName string
	done    bool
}

// Stage writes the content for path to a temporary file in the same
// directory. Nothing is visible at path until Commit.
func Stage(path string, write func(w io.Writer) error) (*StagedFile, error) {
	dir := filepath.Dir(path)
	if err := EnsureDir(dir); err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	staged := &StagedFile{path: path, tmpName: tmp.Name()}
	fail := func(err error) (*StagedFile, error) {
		tmp.Close()
		os.Remove(staged.tmpName)
		return nil, err
	}

	buf := bufio.NewWriter(tmp)
	if err := write(buf); err != nil {
		return fail(err)
	}
	if err := buf.Flush(); err != nil {
		return fail(fmt.Errorf("flush %s: %w", staged.tmpName, err))
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fail(fmt.Errorf("chmod %s: %w", staged.tmpName, err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(staged.tmpName)
		return nil, fmt.Errorf("close %s: %w", staged.tmpName, err)
	}
	return staged, nil
}

// Path is the final destination of the staged content.
func (s *StagedFile) Path() string {
	return s.path
}

// Commit renames the staged content into place.
func (s *StagedFile) Commit() error {
	if s.done {
		return fmt.Errorf("%s already committed or discarded", s.path)
	}
	s.done = true
	if err := os.Rename(s.tmpName, s.path); err != nil {
		os.Remove(s.tmpName)
		return fmt.Errorf("rename %s: %w", s.path, err)
	}
	return nil
}

// Discard drops the staged content. It is a no-op after Commit.
func (s *StagedFile) Discard() {
	if s == nil || s.done {
		return
	}
	s.done = true
	os.Remove(s.tmpName)
}

// WriteFileAtomic writes path through a temporary file in the same directory
// and renames it into place, so readers never observe a half-written file and
// a failed write leaves any previous file untouched.
func WriteFileAtomic(path string, write func(w io.Writer) error) error {
	staged, err := Stage(path, write)
	if err != nil {
		return err
	}
	return staged.Commit()
}

// EnsureDir creates dir (and parents) when it does not exist yet.
func EnsureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir %s: %w", dir, err)
	}
	return nil
}
