package storage

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/OCharnyshevich/fortress-finder/internal/finder"
)

// ExportRecord is one line of a match export.
type ExportRecord struct {
	RunID string `json:"run_id"`
	Seed  int64  `json:"seed"`
	finder.Match
}

// ExportWriter appends zstd-compressed JSON lines to a single file.
type ExportWriter struct {
	mu  sync.Mutex
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
	n   int
}

// NewExportWriter creates (or truncates) path.
func NewExportWriter(path string) (*ExportWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("zstd writer: %w", err)
	}
	return &ExportWriter{f: f, enc: enc, w: bufio.NewWriterSize(enc, 128*1024)}, nil
}

// Write appends v as one JSON line.
func (w *ExportWriter) Write(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.w == nil {
		return errors.New("export writer closed")
	}

	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal export record: %w", err)
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	w.n++
	return nil
}

// WriteResult appends one record per match of res.
func (w *ExportWriter) WriteResult(runID string, res *finder.Result) error {
	for _, m := range res.Matches {
		if err := w.Write(ExportRecord{RunID: runID, Seed: res.Seed, Match: m}); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of lines written so far.
func (w *ExportWriter) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.n
}

// Close flushes the compressed stream and closes the file.
func (w *ExportWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.w == nil {
		return nil
	}
	var errs []error
	errs = append(errs, w.w.Flush(), w.enc.Close(), w.f.Close())
	w.w, w.enc, w.f = nil, nil, nil
	return errors.Join(errs...)
}

// ReadExport decodes every record of an export file.
func ReadExport(path string) ([]ExportRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()

	var out []ExportRecord
	jd := json.NewDecoder(dec)
	for {
		var rec ExportRecord
		if err := jd.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return out, fmt.Errorf("decode export %s: %w", path, err)
		}
		out = append(out, rec)
	}
}
