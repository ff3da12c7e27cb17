// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/research-aggregator/pkg/types"
)

// Snapshot is a raw source payload to keep alongside the run outputs.
type Snapshot struct {
	Source      types.Source
	ContentType string
	Raw         []byte
}

// snapshotName returns {run_id}.{source}.snapshot.{ext}.
func snapshotName(runID string, s Snapshot) string {
	return runID + "." + s.Source.String() + ".snapshot." + snapshotExt(s.ContentType)
}

func snapshotExt(contentType string) string {
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, "json"):
		return "json"
	case strings.Contains(ct, "xml"):
		return "xml"
	default:
		return "txt"
	}
}

// capBytes truncates b to at most limit bytes without splitting a UTF-8
// sequence. A limit of zero or less means no cap.
func capBytes(b []byte, limit int) ([]byte, bool) {
	if limit <= 0 || len(b) <= limit {
		return b, false
	}
	n := limit
	for n > 0 && !utf8.RuneStart(b[n]) {
		n--
	}
	return b[:n], true
}
