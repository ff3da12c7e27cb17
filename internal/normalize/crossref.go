// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"strings"

	"github.com/pdiddy/research-aggregator/pkg/types"
)

// FromCrossref maps a Crossref /works response ({"message": {"items": [...]}})
// to canonical records, keeping at most cap items in response order.
func FromCrossref(payload any, cap int) []types.Record {
	items := limit(asSlice(asMap(asMap(payload)["message"])["items"]), cap)
	out := make([]types.Record, 0, len(items))
	for _, raw := range items {
		it := asMap(raw)
		if it == nil {
			continue
		}
		r := types.NewRecord(types.SourceCrossref)
		if title, ok := asString(first(it["title"])); ok {
			r.Title = strings.TrimSpace(title)
		}
		r.Authors = crossrefAuthors(it["author"])
		r.Year = optInt(first(first(asMap(it["issued"])["date-parts"])))
		r.DOI = optString(it["DOI"])
		r.URL = optString(it["URL"])
		r.Abstract = optString(it["abstract"])
		r.Subjects = stringList(it["subject"])
		out = append(out, r)
	}
	return out
}

// crossrefAuthors joins given and family names; authors with neither are
// dropped.
func crossrefAuthors(v any) []string {
	authors := []string{}
	for _, a := range asSlice(v) {
		m := asMap(a)
		given, _ := asString(m["given"])
		family, _ := asString(m["family"])
		name := strings.TrimSpace(given + " " + family)
		if name == "" {
			continue
		}
		authors = append(authors, name)
	}
	return authors
}
