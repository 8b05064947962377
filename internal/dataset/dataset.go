package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const maxLineBytes = 4 << 20

// Open opens an input source for reading.
func Open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &MissingInputError{Path: path, Err: err}
	}
	return f, nil
}

// ScanRecords calls fn for every data line in r. The first line is treated as
// a header and skipped. Lines are trimmed and blank lines are dropped; lineNo
// is the 1-based physical line number.
func ScanRecords(r io.Reader, fn func(lineNo int, line string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo == 1 {
			continue
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fn(lineNo, line)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan line %d: %w", lineNo+1, err)
	}
	return nil
}

// WriteJSON encodes v with four-space indentation into path. The file is
// written next to its destination and renamed into place, so a failed write
// leaves any previous artifact untouched.
func WriteJSON(path string, v any) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err = enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod output: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename output: %w", err)
	}
	return nil
}
