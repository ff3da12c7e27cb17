// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"regexp"
	"strings"
	"time"
)

const maxSlugLen = 80

// runIDLayout is the UTC timestamp suffix of a run ID.
const runIDLayout = "20060102_150405"

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases s, collapses every run of characters outside [a-z0-9]
// into one hyphen, trims hyphens from both ends and caps the result at 80
// characters.
func Slugify(s string) string {
	slug := nonSlug.ReplaceAllString(strings.ToLower(s), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > maxSlugLen {
		slug = strings.TrimRight(slug[:maxSlugLen], "-")
	}
	return slug
}

// NewRunID derives a filesystem-safe run identifier from the query slug and
// the UTC time, e.g. "graph-neural-networks_20250203_040506". A query with
// no slug-able characters uses "run".
func NewRunID(query string, now time.Time) string {
	slug := Slugify(query)
	if slug == "" {
		slug = "run"
	}
	return slug + "_" + now.UTC().Format(runIDLayout)
}
