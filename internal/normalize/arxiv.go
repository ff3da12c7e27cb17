// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"strings"

	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed/atom"

	"github.com/pdiddy/research-aggregator/pkg/types"
)

// FromArxiv maps an arXiv Atom feed (as text) to canonical records, keeping
// at most cap entries in feed order. A payload that is not text or not a
// parseable feed yields no records.
func FromArxiv(payload any, cap int) []types.Record {
	text, ok := asText(payload)
	if !ok {
		return []types.Record{}
	}
	feed, err := (&atom.Parser{}).Parse(strings.NewReader(text))
	if err != nil || feed == nil {
		return []types.Record{}
	}

	entries := limit(feed.Entries, cap)
	out := make([]types.Record, 0, len(entries))
	for _, e := range entries {
		if e == nil {
			continue
		}
		r := types.NewRecord(types.SourceArxiv)
		if e.ID != "" {
			r.ArxivID = types.String(e.ID)
		}
		r.Title = strings.TrimSpace(e.Title)
		r.Abstract = types.String(strings.TrimSpace(e.Summary))
		for _, a := range e.Authors {
			if a == nil {
				continue
			}
			r.Authors = append(r.Authors, strings.TrimSpace(a.Name))
		}
		r.Year = publishedYear(e.Published)
		r.URL = primaryLink(e.Links)
		r.DOI = doiLink(e.Links)
		out = append(out, r)
	}
	return out
}

// publishedYear parses the entry's published timestamp leniently. Any
// parse failure leaves the year absent.
func publishedYear(published string) *int {
	published = strings.TrimSpace(published)
	if published == "" {
		return nil
	}
	t, err := dateparse.ParseAny(published)
	if err != nil {
		return nil
	}
	return types.Int(t.Year())
}

// primaryLink returns the first alternate link. Atom treats a link without
// rel as alternate.
func primaryLink(links []*atom.Link) *string {
	for _, l := range links {
		if l == nil || l.Href == "" {
			continue
		}
		if l.Rel == "" || strings.EqualFold(l.Rel, "alternate") {
			return types.String(l.Href)
		}
	}
	return nil
}

// doiLink returns the href of the last link titled "doi".
func doiLink(links []*atom.Link) *string {
	var doi *string
	for _, l := range links {
		if l != nil && strings.EqualFold(l.Title, "doi") {
			doi = types.String(l.Href)
		}
	}
	return doi
}

func asText(payload any) (string, bool) {
	switch p := payload.(type) {
	case string:
		return p, true
	case []byte:
		return string(p), true
	}
	return "", false
}
