package store

import (
	"fmt"
	"io"
	"path"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/research-aggregator/pkg/types"
)

// CSLItem is a bibliographic entry in CSL (Citation Style Language) form.
// Field names follow the CSL-YAML schema so Pandoc and reference managers
// can consume the file directly.
type CSLItem struct {
	ID       string    `yaml:"id"`
	Type     string    `yaml:"type"`
	Title    string    `yaml:"title"`
	Author   []CSLName `yaml:"author,omitempty"`
	Abstract string    `yaml:"abstract,omitempty"`
	Issued   *CSLDate  `yaml:"issued,omitempty"`
	DOI      string    `yaml:"DOI,omitempty"`
	URL      string    `yaml:"URL,omitempty"`
	Keyword  string    `yaml:"keyword,omitempty"`
	Source   string    `yaml:"source,omitempty"`
}

// CSLName is a person's name in CSL form.
type CSLName struct {
	Family  string `yaml:"family,omitempty"`
	Given   string `yaml:"given,omitempty"`
	Literal string `yaml:"literal,omitempty"`
}

// CSLDate is a CSL date expressed as date-parts.
type CSLDate struct {
	DateParts [][]int `yaml:"date-parts"`
}

// WriteCSL writes records as a CSL-YAML list to w.
func WriteCSL(w io.Writer, records []types.Record) error {
	items := make([]CSLItem, len(records))
	seen := make(map[string]int, len(records))
	for i, r := range records {
		item := toCSLItem(r, i)
		// Citation keys must be unique within one bibliography.
		base := item.ID
		seen[base]++
		if n := seen[base]; n > 1 {
			item.ID = fmt.Sprintf("%s-%d", base, n)
		}
		items[i] = item
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(items); err != nil {
		return fmt.Errorf("encoding CSL: %w", err)
	}
	return enc.Close()
}

func toCSLItem(r types.Record, index int) CSLItem {
	item := CSLItem{
		ID:       citationID(r, index),
		Type:     "article-journal",
		Title:    r.Title,
		Abstract: types.Value(r.Abstract),
		DOI:      strings.TrimSpace(types.Value(r.DOI)),
		URL:      types.Value(r.URL),
		Keyword:  strings.Join(r.Subjects, ", "),
		Source:   r.Source.String(),
	}
	if r.Source == types.SourceArxiv {
		item.Type = "article"
	}
	for _, a := range r.Authors {
		if name := parseAuthorName(a); name != (CSLName{}) {
			item.Author = append(item.Author, name)
		}
	}
	if r.Year != nil && *r.Year > 0 {
		item.Issued = &CSLDate{DateParts: [][]int{{*r.Year}}}
	}
	return item
}

// citationID prefers the DOI, then the short arXiv identifier, then a
// positional key.
func citationID(r types.Record, index int) string {
	if !types.IsBlank(r.DOI) {
		return strings.ToLower(strings.TrimSpace(*r.DOI))
	}
	if !types.IsBlank(r.ArxivID) {
		id := strings.TrimRight(strings.TrimSpace(*r.ArxivID), "/")
		return "arXiv:" + path.Base(id)
	}
	return fmt.Sprintf("item%d", index+1)
}

// parseAuthorName splits a full name into CSL family/given parts on the
// last space. Single-token names use the literal field.
func parseAuthorName(name string) CSLName {
	name = strings.TrimSpace(name)
	if name == "" {
		return CSLName{}
	}
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return CSLName{Literal: name}
	}
	return CSLName{
		Given:  strings.TrimSpace(name[:idx]),
		Family: name[idx+1:],
	}
}
