// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"fmt"
	"html"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/pdiddy/research-aggregator/pkg/types"
)

// markup strips tags such as the JATS elements Crossref embeds in abstracts.
var markup = bluemonday.StrictPolicy()

// displayText removes markup from s and decodes the entities the policy
// leaves behind, so the template escapes the plain text exactly once.
func displayText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	return strings.TrimSpace(html.UnescapeString(markup.Sanitize(s)))
}

type htmlRow struct {
	Source   string
	DOI      string
	ArxivID  string
	Title    string
	URL      string
	Authors  string
	Year     string
	Subjects string
	Abstract string
}

type htmlPage struct {
	Query     string
	Generated string
	Rows      []htmlRow
}

// The page has no external assets. html/template escapes every value for
// the context it lands in, including href attributes.
var pageTemplate = template.Must(template.New("results").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Results: {{.Query}}</title>
<style>
body { font-family: system-ui, sans-serif; margin: 1.5rem; color: #222; }
h1 { font-size: 1.3rem; }
.meta { color: #666; font-size: 0.9rem; }
#q { width: 100%; max-width: 40rem; padding: 0.4rem; margin: 0.5rem 0 1rem; font-size: 1rem; }
table { border-collapse: collapse; width: 100%; font-size: 0.85rem; }
th, td { border: 1px solid #ddd; padding: 0.35rem; vertical-align: top; text-align: left; }
th { background: #f4f4f4; position: sticky; top: 0; }
td.abstract { max-width: 36rem; }
</style>
</head>
<body>
<h1>Results for {{.Query}}</h1>
<p class="meta">Generated {{.Generated}}. Showing <span id="count">{{len .Rows}}</span> of {{len .Rows}} records.</p>
<input id="q" type="search" placeholder="Filter rows" autocomplete="off">
<table id="results">
<thead>
<tr><th>Source</th><th>DOI</th><th>arXiv ID</th><th>Title</th><th>Authors</th><th>Year</th><th>Subjects</th><th>Abstract</th></tr>
</thead>
<tbody>
{{- range .Rows}}
<tr>
<td>{{.Source}}</td>
<td>{{.DOI}}</td>
<td>{{.ArxivID}}</td>
<td>{{if .URL}}<a href="{{.URL}}" target="_blank" rel="noopener noreferrer">{{.Title}}</a>{{else}}{{.Title}}{{end}}</td>
<td>{{.Authors}}</td>
<td>{{.Year}}</td>
<td>{{.Subjects}}</td>
<td class="abstract">{{.Abstract}}</td>
</tr>
{{- end}}
</tbody>
</table>
<script>
(function () {
  var input = document.getElementById("q");
  var count = document.getElementById("count");
  var rows = Array.prototype.slice.call(document.querySelectorAll("#results tbody tr"));
  input.addEventListener("input", function () {
    var needle = input.value.toLowerCase();
    var shown = 0;
    rows.forEach(function (tr) {
      var hit = tr.innerText.toLowerCase().indexOf(needle) !== -1;
      tr.style.display = hit ? "" : "none";
      if (hit) { shown++; }
    });
    count.textContent = shown;
  });
})();
</script>
</body>
</html>
`))

// WriteHTML renders records as a standalone page with a client-side
// substring filter over row text.
func WriteHTML(w io.Writer, records []types.Record, query string, generated time.Time) error {
	page := htmlPage{
		Query:     query,
		Generated: generated.UTC().Format(time.RFC3339),
		Rows:      make([]htmlRow, len(records)),
	}
	for i, r := range records {
		page.Rows[i] = htmlRow{
			Source:   r.Source.String(),
			DOI:      types.Value(r.DOI),
			ArxivID:  types.Value(r.ArxivID),
			Title:    r.Title,
			URL:      types.Value(r.URL),
			Authors:  strings.Join(r.Authors, ", "),
			Year:     r.YearString(),
			Subjects: strings.Join(r.Subjects, ", "),
			Abstract: displayText(types.Value(r.Abstract)),
		}
	}
	if err := pageTemplate.Execute(w, page); err != nil {
		return fmt.Errorf("rendering HTML: %w", err)
	}
	return nil
}
