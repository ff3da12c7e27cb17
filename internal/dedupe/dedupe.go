// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dedupe merges canonical records that describe the same work.
//
// Identity is decided by a derived key: the lowercased DOI, else the arXiv
// ID as given, else the lowercased title truncated to maxTitleKey runes.
// The first record seen for a key survives; later duplicates only fill its
// empty fields and extend its author and subject lists.
package dedupe

import (
	"strings"

	"github.com/pdiddy/research-aggregator/pkg/types"
)

// maxTitleKey bounds the size of title-derived keys.
const maxTitleKey = 120

// Result holds the surviving records and how many were merged away.
type Result struct {
	Records []types.Record
	Removed int
}

// Key derives the identity key for r. Keys are namespaced by kind so a
// title can never collide with a DOI. The boolean is false when r has no
// DOI, no arXiv ID, and a blank title.
func Key(r types.Record) (string, bool) {
	if !types.IsBlank(r.DOI) {
		return "doi:" + strings.ToLower(strings.TrimSpace(*r.DOI)), true
	}
	if !types.IsBlank(r.ArxivID) {
		return "arxiv:" + *r.ArxivID, true
	}
	title := strings.ToLower(strings.TrimSpace(r.Title))
	if title == "" {
		return "", false
	}
	if runes := []rune(title); len(runes) > maxTitleKey {
		title = string(runes[:maxTitleKey])
	}
	return "title:" + title, true
}

// Deduplicate collapses records sharing a key, preserving first-seen order.
// Keyless records are all kept under KeylessKeep; under KeylessCollide they
// merge into the first keyless record. The input slice and its records are
// never modified.
func Deduplicate(records []types.Record, policy types.KeylessPolicy) Result {
	seen := make(map[string]int) // key → index in out
	out := make([]types.Record, 0, len(records))
	keyless := -1
	removed := 0

	for _, r := range records {
		key, ok := Key(r)
		if !ok {
			if policy != types.KeylessCollide {
				out = append(out, r.Clone())
				continue
			}
			if keyless >= 0 {
				out[keyless] = Merge(out[keyless], r)
				removed++
				continue
			}
			keyless = len(out)
			out = append(out, r.Clone())
			continue
		}

		if idx, dup := seen[key]; dup {
			out[idx] = Merge(out[idx], r)
			removed++
			continue
		}
		seen[key] = len(out)
		out = append(out, r.Clone())
	}
	return Result{Records: out, Removed: removed}
}

// Merge returns a copy of dst with empty scalar fields filled from src and
// list fields extended by src's elements that dst lacks. Non-empty dst
// values are never overwritten. Neither argument is modified.
func Merge(dst, src types.Record) types.Record {
	m := dst.Clone()

	if m.Source == "" && src.Source != "" {
		m.Source = src.Source
	}
	if m.Title == "" && src.Title != "" {
		m.Title = src.Title
	}
	m.DOI = fillString(m.DOI, src.DOI)
	m.ArxivID = fillString(m.ArxivID, src.ArxivID)
	m.Abstract = fillString(m.Abstract, src.Abstract)
	m.URL = fillString(m.URL, src.URL)
	if (m.Year == nil || *m.Year == 0) && src.Year != nil && *src.Year != 0 {
		m.Year = types.Int(*src.Year)
	}

	m.Authors = union(m.Authors, src.Authors)
	m.Subjects = union(m.Subjects, src.Subjects)
	return m
}

func fillString(cur, next *string) *string {
	if (cur == nil || *cur == "") && next != nil && *next != "" {
		return types.String(*next)
	}
	return cur
}

// union appends the elements of b not already present, keeping a intact
// and in order followed by b's new elements.
func union(a, b []string) []string {
	have := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, s := range a {
		have[s] = struct{}{}
		out = append(out, s)
	}
	for _, s := range b {
		if _, ok := have[s]; ok {
			continue
		}
		have[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
