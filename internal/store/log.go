// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pdiddy/research-aggregator/pkg/types"
)

// Counts summarizes how many records each stage produced.
type Counts struct {
	TotalRecords      int                  `json:"total_records"`
	FetchedBytes      map[types.Source]int `json:"fetched_bytes,omitempty"`
	Normalized        map[types.Source]int `json:"normalized,omitempty"`
	DuplicatesRemoved int                  `json:"duplicates_removed"`
}

// FailureEntry records a source that was skipped during the run.
type FailureEntry struct {
	Source types.Source `json:"source"`
	URL    string       `json:"url"`
	Error  string       `json:"error"`
}

// SnapshotRef points at a raw payload written next to the other outputs.
type SnapshotRef struct {
	File        string `json:"file"`
	ContentType string `json:"content_type"`
	Bytes       int    `json:"bytes"`
	Truncated   bool   `json:"truncated"`
}

// RunLog is the JSON document written to {run_id}.log.json.
type RunLog struct {
	RunID         string                       `json:"run_id"`
	Query         string                       `json:"query"`
	GeneratedAt   string                       `json:"generated_at"`
	Counts        Counts                       `json:"counts"`
	Files         map[string]string            `json:"files"`
	Snapshots     map[types.Source]SnapshotRef `json:"snapshots,omitempty"`
	Failures      []FailureEntry               `json:"failures"`
	KeylessPolicy types.KeylessPolicy          `json:"keyless_policy,omitempty"`
}

// WriteLog encodes l as indented JSON.
func WriteLog(w io.Writer, l RunLog) error {
	if l.Failures == nil {
		l.Failures = []FailureEntry{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(l); err != nil {
		return fmt.Errorf("encoding run log: %w", err)
	}
	return nil
}

// ReadLog decodes a run log written by WriteLog.
func ReadLog(r io.Reader) (RunLog, error) {
	var l RunLog
	if err := json.NewDecoder(r).Decode(&l); err != nil {
		return RunLog{}, fmt.Errorf("decoding run log: %w", err)
	}
	return l, nil
}
