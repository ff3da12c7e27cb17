// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists a run's deduplicated records. Every run writes
// {run_id}.csv, {run_id}.html and {run_id}.log.json into the output
// directory; snapshots and a CSL-YAML bibliography are optional extras.
//
// Writes are not transactional. A filesystem error stops Persist at the
// failing file and is returned to the caller; files written before it stay
// on disk.
package store

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/pdiddy/research-aggregator/pkg/types"
)

// Output keys used in Outputs.Map and the run log's files section.
const (
	KeyCSV  = "csv"
	KeyHTML = "html"
	KeyLog  = "log"
	KeyCSL  = "csl"
)

// Options describes one run's persistence request.
type Options struct {
	OutDir    string
	RunID     string
	Query     string
	Generated time.Time

	// Snapshots are written only when non-empty. SnapshotLimit caps each
	// one in bytes; zero means unlimited.
	Snapshots     []Snapshot
	SnapshotLimit int

	// CSL also writes {run_id}.csl.yaml.
	CSL bool

	Counts        Counts
	Failures      []FailureEntry
	KeylessPolicy types.KeylessPolicy
}

// Outputs holds the paths Persist wrote. CSL is empty unless requested.
type Outputs struct {
	CSV       string
	HTML      string
	Log       string
	CSL       string
	Snapshots map[types.Source]string
}

// Map returns the output paths keyed by "csv", "html", "log" and, when
// written, "csl".
func (o Outputs) Map() map[string]string {
	m := map[string]string{KeyCSV: o.CSV, KeyHTML: o.HTML, KeyLog: o.Log}
	if o.CSL != "" {
		m[KeyCSL] = o.CSL
	}
	return m
}

// Persist creates opts.OutDir if needed and writes the run outputs for
// records. The log is written last so that it only names files that exist.
// An empty record set still produces a header-only CSV, an empty table and
// a log with a zero count.
func Persist(records []types.Record, opts Options) (Outputs, error) {
	if opts.RunID == "" {
		return Outputs{}, fmt.Errorf("persist: run ID is required")
	}
	if opts.OutDir == "" {
		opts.OutDir = "."
	}
	if opts.Generated.IsZero() {
		opts.Generated = time.Now()
	}
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return Outputs{}, fmt.Errorf("creating output directory %s: %w", opts.OutDir, err)
	}

	base := filepath.Join(opts.OutDir, opts.RunID)
	out := Outputs{
		CSV:  base + ".csv",
		HTML: base + ".html",
		Log:  base + ".log.json",
	}

	refs := make(map[types.Source]SnapshotRef, len(opts.Snapshots))
	for _, s := range opts.Snapshots {
		data, truncated := capBytes(s.Raw, opts.SnapshotLimit)
		path := filepath.Join(opts.OutDir, snapshotName(opts.RunID, s))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return out, fmt.Errorf("writing %s snapshot: %w", s.Source, err)
		}
		if out.Snapshots == nil {
			out.Snapshots = make(map[types.Source]string)
		}
		out.Snapshots[s.Source] = path
		refs[s.Source] = SnapshotRef{
			File:        filepath.Base(path),
			ContentType: s.ContentType,
			Bytes:       len(data),
			Truncated:   truncated,
		}
	}

	if err := writeFile(out.CSV, func(w io.Writer) error {
		return WriteCSV(w, records)
	}); err != nil {
		return out, err
	}
	if err := writeFile(out.HTML, func(w io.Writer) error {
		return WriteHTML(w, records, opts.Query, opts.Generated)
	}); err != nil {
		return out, err
	}
	if opts.CSL {
		out.CSL = base + ".csl.yaml"
		if err := writeFile(out.CSL, func(w io.Writer) error {
			return WriteCSL(w, records)
		}); err != nil {
			return out, err
		}
	}

	counts := opts.Counts
	counts.TotalRecords = len(records)
	runLog := RunLog{
		RunID:         opts.RunID,
		Query:         opts.Query,
		GeneratedAt:   opts.Generated.UTC().Format(time.RFC3339),
		Counts:        counts,
		Files:         out.Map(),
		Failures:      opts.Failures,
		KeylessPolicy: opts.KeylessPolicy,
	}
	if len(refs) > 0 {
		runLog.Snapshots = refs
	}
	if err := writeFile(out.Log, func(w io.Writer) error {
		return WriteLog(w, runLog)
	}); err != nil {
		return out, err
	}
	return out, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
