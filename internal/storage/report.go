package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/OCharnyshevich/fortress-finder/internal/finder"
)

// ReportVersion is the format version written into every report.
const ReportVersion = 1

// Report is the JSON document written for one finder run.
type Report struct {
	Version     int              `json:"version"`
	RunID       string           `json:"run_id"`
	GeneratedAt time.Time        `json:"generated_at"`
	Results     []*finder.Result `json:"results"`
	Analysis    *finder.Analysis `json:"analysis,omitempty"`
}

// NewRunID returns a fresh identifier shared by a run's report, export and
// index rows.
func NewRunID() string {
	return uuid.NewString()
}

// NewReport wraps search results in a Report stamped with runID.
func NewReport(runID string, results ...*finder.Result) *Report {
	if results == nil {
		results = []*finder.Result{}
	}
	return &Report{
		Version:     ReportVersion,
		RunID:       runID,
		GeneratedAt: time.Now().UTC(),
		Results:     results,
	}
}

// ResultRunID is the run ID under which Results[i] is exported and
// indexed. The first result uses RunID itself; later ones append their
// position so every seed of a batch keeps a distinct index row.
func (r *Report) ResultRunID(i int) string {
	if i == 0 {
		return r.RunID
	}
	return fmt.Sprintf("%s-%d", r.RunID, i)
}

// WriteReport writes r to path atomically, creating parent directories.
func WriteReport(path string, r *Report) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return atomicWriteJSON(path, r)
}

// ReadReport reads a report written by WriteReport.
func ReadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse report %s: %w", path, err)
	}
	if r.Version != ReportVersion {
		return nil, fmt.Errorf("report %s: unsupported version %d", path, r.Version)
	}
	return &r, nil
}

// atomicWriteJSON marshals v to JSON and writes it atomically using a temp file + rename.
func atomicWriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	data = append(data, '\n')

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
