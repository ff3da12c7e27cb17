// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"bytes"
	"strings"
	"testing"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-aggregator/pkg/types"
)

func TestToCSLItemCrossref(t *testing.T) {
	r := types.NewRecord(types.SourceCrossref)
	r.DOI = types.String(" 10.5555/XYZ ")
	r.Title = "A Study on Widgets"
	r.Authors = []string{"Ada Lovelace", "Plato", "  "}
	r.Year = types.Int(2021)
	r.Subjects = []string{"Engineering", "Widgets"}

	item := toCSLItem(r, 0)

	if item.ID != "10.5555/xyz" {
		t.Errorf("ID = %q, want %q", item.ID, "10.5555/xyz")
	}
	if item.Type != "article-journal" {
		t.Errorf("Type = %q, want %q", item.Type, "article-journal")
	}
	if item.DOI != "10.5555/XYZ" {
		t.Errorf("DOI = %q, want %q", item.DOI, "10.5555/XYZ")
	}
	if len(item.Author) != 2 {
		t.Fatalf("len(Author) = %d, want 2 (blank names dropped)", len(item.Author))
	}
	if item.Author[0] != (CSLName{Given: "Ada", Family: "Lovelace"}) {
		t.Errorf("Author[0] = %+v", item.Author[0])
	}
	if item.Author[1] != (CSLName{Literal: "Plato"}) {
		t.Errorf("Author[1] = %+v", item.Author[1])
	}
	if item.Issued == nil || item.Issued.DateParts[0][0] != 2021 {
		t.Errorf("Issued year should be 2021")
	}
	if item.Keyword != "Engineering, Widgets" {
		t.Errorf("Keyword = %q", item.Keyword)
	}
}

func TestToCSLItemArxiv(t *testing.T) {
	r := types.NewRecord(types.SourceArxiv)
	r.ArxivID = types.String("http://arxiv.org/abs/1234.5678v1")
	r.Title = "Sample Paper Title"

	item := toCSLItem(r, 4)

	if item.ID != "arXiv:1234.5678v1" {
		t.Errorf("ID = %q, want %q", item.ID, "arXiv:1234.5678v1")
	}
	if item.Type != "article" {
		t.Errorf("Type = %q, want %q", item.Type, "article")
	}
	if item.Issued != nil {
		t.Errorf("Issued should be nil without a year")
	}
}

func TestWriteCSLUniqueIDs(t *testing.T) {
	a := types.NewRecord(types.SourceDOAJ)
	a.DOI = types.String("10.1/a")
	b := types.NewRecord(types.SourceDOAJ)
	b.DOI = types.String("10.1/A")
	c := types.NewRecord(types.SourceDOAJ)
	c.DOI = types.String("10.1/a")
	keyless := types.NewRecord(types.SourceDOAJ)

	var buf bytes.Buffer
	if err := WriteCSL(&buf, []types.Record{a, b, c, keyless}); err != nil {
		t.Fatalf("WriteCSL: %v", err)
	}

	var items []CSLItem
	if err := yaml.Unmarshal(buf.Bytes(), &items); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	want := []string{"10.1/a", "10.1/a-2", "10.1/a-3", "item4"}
	if len(items) != len(want) {
		t.Fatalf("got %d items, want %d", len(items), len(want))
	}
	for i, id := range want {
		if items[i].ID != id {
			t.Errorf("items[%d].ID = %q, want %q", i, items[i].ID, id)
		}
	}
	if !strings.Contains(buf.String(), "DOI: 10.1/a") {
		t.Errorf("expected CSL DOI key in output:\n%s", buf.String())
	}
}

func TestWriteCSLEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSL(&buf, nil); err != nil {
		t.Fatalf("WriteCSL: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("empty bibliography = %q, want []", buf.String())
	}
}
