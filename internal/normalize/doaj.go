// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"strings"

	"github.com/pdiddy/research-aggregator/pkg/types"
)

// FromDOAJ maps a DOAJ article search response to canonical records,
// keeping at most cap items. Items are read from "results", or from "hits"
// when "results" is absent or empty. Each item's metadata is its "bibjson"
// object, else the older "source" object, else the item itself.
func FromDOAJ(payload any, cap int) []types.Record {
	obj := asMap(payload)
	items := asSlice(obj["results"])
	if len(items) == 0 {
		items = asSlice(obj["hits"])
	}
	items = limit(items, cap)

	out := make([]types.Record, 0, len(items))
	for _, raw := range items {
		it := asMap(raw)
		if it == nil {
			continue
		}
		meta := firstMap(it["bibjson"], it["source"])
		if meta == nil {
			meta = it
		}

		r := types.NewRecord(types.SourceDOAJ)
		r.DOI = doajDOI(meta["identifier"])
		if title, ok := asString(meta["title"]); ok {
			r.Title = strings.TrimSpace(title)
		}
		for _, a := range asSlice(meta["author"]) {
			m := asMap(a)
			if m == nil {
				continue
			}
			name, _ := asString(m["name"])
			r.Authors = append(r.Authors, strings.TrimSpace(name))
		}
		r.Abstract = optString(meta["abstract"])
		r.Year = optInt(meta["year"])
		if links := asSlice(meta["link"]); len(links) > 0 {
			r.URL = optString(asMap(links[0])["url"])
		}
		for _, s := range asSlice(meta["subject"]) {
			if term, ok := asString(asMap(s)["term"]); ok {
				r.Subjects = append(r.Subjects, term)
			}
		}
		out = append(out, r)
	}
	return out
}

// doajDOI returns the id of the last identifier whose type is "doi".
func doajDOI(v any) *string {
	var doi *string
	for _, idf := range asSlice(v) {
		m := asMap(idf)
		typ, _ := asString(m["type"])
		if !strings.EqualFold(typ, "doi") {
			continue
		}
		if id, ok := asString(m["id"]); ok {
			doi = types.String(id)
		}
	}
	return doi
}
