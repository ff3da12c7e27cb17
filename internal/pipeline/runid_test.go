// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/research-aggregator/pkg/types"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Graph Neural Networks", "graph-neural-networks"},
		{"  fraud & detection!! ", "fraud-detection"},
		{"COVID-19 / vaccines", "covid-19-vaccines"},
		{"über café", "ber-caf"},
		{"***", ""},
		{strings.Repeat("ab ", 40), strings.TrimRight(strings.Repeat("ab-", 27)[:80], "-")},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Slugify(tt.in)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, len(got), 80)
		})
	}
}

func TestNewRunID(t *testing.T) {
	local := time.FixedZone("UTC+2", 2*60*60)
	now := time.Date(2025, 2, 3, 6, 5, 6, 0, local)

	assert.Equal(t, "graph-neural-networks_20250203_040506", NewRunID("Graph Neural Networks", now))
	assert.Equal(t, "run_20250203_040506", NewRunID("???", now))
}

func TestFormatTable(t *testing.T) {
	long := types.NewRecord(types.SourceCrossref)
	long.Title = strings.Repeat("x", 100)
	long.Authors = []string{"Ada Lovelace", "Alan Turing"}
	long.Year = types.Int(2021)

	short := types.NewRecord(types.SourceArxiv)
	short.Title = "Short"
	short.Authors = []string{"Grace Hopper"}

	third := types.NewRecord(types.SourceDOAJ)
	third.Title = "Hidden"

	var buf bytes.Buffer
	FormatTable([]types.Record{long, short, third}, 2, &buf)
	out := buf.String()

	assert.Contains(t, out, "SOURCE")
	assert.Contains(t, out, strings.Repeat("x", 57)+"...")
	assert.NotContains(t, out, strings.Repeat("x", 61))
	assert.Contains(t, out, "Ada Lovelace et al.")
	assert.Contains(t, out, "Grace Hopper")
	assert.Contains(t, out, "2021")
	assert.NotContains(t, out, "Hidden")
	assert.Contains(t, out, "... and 1 more")
}

func TestFormatTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(nil, 20, &buf)
	assert.Equal(t, "No records found.\n", buf.String())
}
