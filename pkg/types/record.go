// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the research-aggregator pipeline:
// the canonical Record every source is normalized into, the Source tag that
// identifies where a Record came from, and the configuration structs.
package types

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownSource is returned when a source tag is not one of the known APIs.
var ErrUnknownSource = errors.New("unknown source")

// ErrInvalidRecord is returned by Record.Validate.
var ErrInvalidRecord = errors.New("invalid record")

// Source identifies which public API produced a Record.
type Source string

const (
	SourceArxiv    Source = "arxiv"
	SourceCrossref Source = "crossref"
	SourceDOAJ     Source = "doaj"
)

// Sources lists the known sources in pipeline order.
var Sources = []Source{SourceArxiv, SourceCrossref, SourceDOAJ}

// ParseSource converts a tag such as "crossref" into a Source. Matching is
// case-insensitive and ignores surrounding whitespace.
func ParseSource(s string) (Source, error) {
	src := Source(strings.ToLower(strings.TrimSpace(s)))
	if !src.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownSource, s)
	}
	return src, nil
}

// Valid reports whether s is one of the known sources.
func (s Source) Valid() bool {
	switch s {
	case SourceArxiv, SourceCrossref, SourceDOAJ:
		return true
	}
	return false
}

func (s Source) String() string { return string(s) }

// RecordColumns is the fixed column order for tabular output of a Record.
var RecordColumns = []string{
	"source", "doi", "arxiv_id", "title", "authors", "abstract", "year", "url", "subjects",
}

// Record is the unified, source-agnostic representation of one paper.
//
// Optional scalars are pointers: nil means the source did not provide the
// field, which is distinct from a present empty string. Authors and Subjects
// are never nil once a Record leaves a normalizer; absent means empty.
type Record struct {
	// Source identifies which backend produced this record.
	Source Source `json:"source" yaml:"source"`

	// DOI is the Digital Object Identifier as given by the source.
	DOI *string `json:"doi" yaml:"doi"`

	// ArxivID is the arXiv entry identifier as given by the source.
	ArxivID *string `json:"arxiv_id" yaml:"arxiv_id"`

	// Title is the paper title, possibly empty.
	Title string `json:"title" yaml:"title"`

	// Authors lists display names in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Abstract is the paper abstract, when the source has one.
	Abstract *string `json:"abstract" yaml:"abstract"`

	// Year is the publication year.
	Year *int `json:"year" yaml:"year"`

	// URL is the canonical landing page.
	URL *string `json:"url" yaml:"url"`

	// Subjects lists topical tags in source order.
	Subjects []string `json:"subjects" yaml:"subjects"`
}

// NewRecord returns an empty Record for src with non-nil list fields.
func NewRecord(src Source) Record {
	return Record{Source: src, Authors: []string{}, Subjects: []string{}}
}

// Clone returns a deep copy of r. The copy shares no pointers or slices with r.
func (r Record) Clone() Record {
	c := r
	c.DOI = cloneString(r.DOI)
	c.ArxivID = cloneString(r.ArxivID)
	c.Abstract = cloneString(r.Abstract)
	c.URL = cloneString(r.URL)
	if r.Year != nil {
		c.Year = Int(*r.Year)
	}
	c.Authors = append(make([]string, 0, len(r.Authors)), r.Authors...)
	c.Subjects = append(make([]string, 0, len(r.Subjects)), r.Subjects...)
	return c
}

// Validate checks the structural invariants of a Record.
func (r Record) Validate() error {
	if !r.Source.Valid() {
		return fmt.Errorf("%w: source %q", ErrInvalidRecord, r.Source)
	}
	if r.Authors == nil {
		return fmt.Errorf("%w: authors is nil", ErrInvalidRecord)
	}
	if r.Subjects == nil {
		return fmt.Errorf("%w: subjects is nil", ErrInvalidRecord)
	}
	return nil
}

// HasIdentity reports whether r carries at least one of DOI, arXiv ID, or
// a non-blank title.
func (r Record) HasIdentity() bool {
	return !IsBlank(r.DOI) || !IsBlank(r.ArxivID) || strings.TrimSpace(r.Title) != ""
}

// YearString renders Year, or "" when absent.
func (r Record) YearString() string {
	if r.Year == nil {
		return ""
	}
	return strconv.Itoa(*r.Year)
}

// String returns a pointer to s.
func String(s string) *string { return &s }

// Int returns a pointer to n.
func Int(n int) *int { return &n }

// Value dereferences p, returning "" for nil.
func Value(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// IsBlank reports whether p is nil or holds only whitespace.
func IsBlank(p *string) bool {
	return p == nil || strings.TrimSpace(*p) == ""
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	return String(*p)
}
