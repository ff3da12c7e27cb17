// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-aggregator/pkg/types"
)

var generated = time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)

func sampleRecords() []types.Record {
	a := types.NewRecord(types.SourceArxiv)
	a.ArxivID = types.String("http://arxiv.org/abs/1234.5678v1")
	a.Title = "Sample Paper Title"
	a.Authors = []string{"Jane Doe", "John Roe"}
	a.Abstract = types.String("Line one,\nline \"two\".")
	a.Year = types.Int(2024)
	a.URL = types.String("http://arxiv.org/abs/1234.5678v1")

	c := types.NewRecord(types.SourceCrossref)
	c.DOI = types.String("10.5555/xyz")
	c.Title = "A Study on Widgets"
	c.Authors = []string{"Ada Lovelace", "Alan Turing"}
	c.Year = types.Int(2021)
	c.Subjects = []string{"Engineering", "Widgets"}

	d := types.NewRecord(types.SourceDOAJ)
	return []types.Record{a, c, d}
}

func TestCSVRoundTrip(t *testing.T) {
	records := sampleRecords()

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, records))

	firstLine, _, _ := strings.Cut(buf.String(), "\n")
	assert.Equal(t, "source,doi,arxiv_id,title,authors,abstract,year,url,subjects", firstLine)

	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	require.Len(t, got, len(records))
	if diff := cmp.Diff(records, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCSVJoinsLists(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleRecords()[1:2]))
	assert.Contains(t, buf.String(), "Ada Lovelace; Alan Turing")
	assert.Contains(t, buf.String(), "Engineering; Widgets")
	assert.Contains(t, buf.String(), "crossref,10.5555/xyz,,A Study on Widgets")
}

func TestReadCSVRejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"wrong header", "a,b,c,d,e,f,g,h,i\n"},
		{"unknown source", strings.Join(types.RecordColumns, ",") + "\npubmed,,,,,,,,\n"},
		{"bad year", strings.Join(types.RecordColumns, ",") + "\narxiv,,,t,,,soon,,\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestHTMLEscapesUntrustedText(t *testing.T) {
	r := types.NewRecord(types.SourceCrossref)
	r.Title = `Cats <script>alert(1)</script> & Dogs`
	r.URL = types.String("https://example.org/a?x=1&y=2")
	r.Abstract = types.String("x < y & y > z")

	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, []types.Record{r}, "cats & <dogs>", generated))
	page := buf.String()

	assert.NotContains(t, page, "<script>alert(1)</script>")
	assert.NotContains(t, page, "Cats <")
	assert.NotContains(t, page, "x < y & y")
	assert.NotContains(t, page, "cats & <dogs>")
	assert.Contains(t, page, "&lt;script&gt;")
	assert.Contains(t, page, "&amp; Dogs")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)
	rows := doc.Find("#results tbody tr")
	require.Equal(t, 1, rows.Length())

	link := rows.Find("a")
	assert.Equal(t, r.Title, link.Text())
	href, ok := link.Attr("href")
	require.True(t, ok)
	assert.Equal(t, *r.URL, href)
	assert.Equal(t, *r.Abstract, rows.Find("td.abstract").Text())
	assert.Equal(t, 1, doc.Find("input#q").Length())
	assert.Equal(t, 0, doc.Find("script[src], link[rel=stylesheet]").Length(), "page must be self-contained")
}

func TestHTMLColumnsAndPlainTitle(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, sampleRecords(), "widgets", generated))

	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)

	var headers []string
	doc.Find("#results thead th").Each(func(_ int, s *goquery.Selection) {
		headers = append(headers, s.Text())
	})
	assert.Equal(t, []string{"Source", "DOI", "arXiv ID", "Title", "Authors", "Year", "Subjects", "Abstract"}, headers)

	rows := doc.Find("#results tbody tr")
	require.Equal(t, 3, rows.Length())
	crossref := rows.Eq(1)
	assert.Equal(t, 0, crossref.Find("a").Length(), "no link without a URL")
	assert.Equal(t, "A Study on Widgets", crossref.Find("td").Eq(3).Text())
	assert.Equal(t, "2021", crossref.Find("td").Eq(5).Text())
	assert.Equal(t, "3", doc.Find("#count").Text())
}

func TestHTMLStripsAbstractMarkup(t *testing.T) {
	r := types.NewRecord(types.SourceCrossref)
	r.Title = "Widgets"
	r.Abstract = types.String("<jats:title>Abstract</jats:title><jats:p>Fast &amp; cheap widgets.</jats:p>")

	var buf bytes.Buffer
	require.NoError(t, WriteHTML(&buf, []types.Record{r}, "widgets", generated))
	assert.NotContains(t, buf.String(), "jats:p")
	assert.NotContains(t, buf.String(), "&amp;amp;")

	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	assert.Equal(t, "AbstractFast & cheap widgets.", doc.Find("td.abstract").Text())
}

func TestPersistWritesOutputs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	records := sampleRecords()

	out, err := Persist(records, Options{
		OutDir:    dir,
		RunID:     "widgets_20250203_040506",
		Query:     "widgets",
		Generated: generated,
		Snapshots: []Snapshot{
			{Source: types.SourceArxiv, ContentType: "application/atom+xml", Raw: []byte("<feed>0123456789</feed>")},
			{Source: types.SourceCrossref, ContentType: "application/json", Raw: []byte(`{"message":{}}`)},
		},
		SnapshotLimit: 16,
		CSL:           true,
		Counts: Counts{
			FetchedBytes:      map[types.Source]int{types.SourceArxiv: 24, types.SourceCrossref: 14},
			DuplicatesRemoved: 2,
		},
		Failures:      []FailureEntry{{Source: types.SourceDOAJ, URL: "https://doaj.org", Error: "HTTP 500"}},
		KeylessPolicy: types.KeylessKeep,
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "widgets_20250203_040506.csv"), out.CSV)
	assert.Equal(t, filepath.Join(dir, "widgets_20250203_040506.html"), out.HTML)
	assert.Equal(t, filepath.Join(dir, "widgets_20250203_040506.log.json"), out.Log)
	assert.Equal(t, filepath.Join(dir, "widgets_20250203_040506.csl.yaml"), out.CSL)
	for _, p := range out.Map() {
		assert.FileExists(t, p)
	}

	f, err := os.Open(out.Log)
	require.NoError(t, err)
	defer f.Close()
	runLog, err := ReadLog(f)
	require.NoError(t, err)

	assert.Equal(t, "widgets_20250203_040506", runLog.RunID)
	assert.Equal(t, "widgets", runLog.Query)
	assert.Equal(t, "2025-02-03T04:05:06Z", runLog.GeneratedAt)
	assert.Equal(t, 3, runLog.Counts.TotalRecords)
	assert.Equal(t, 2, runLog.Counts.DuplicatesRemoved)
	assert.Equal(t, 24, runLog.Counts.FetchedBytes[types.SourceArxiv])
	assert.Equal(t, out.Map(), runLog.Files)
	require.Len(t, runLog.Failures, 1)
	assert.Equal(t, types.SourceDOAJ, runLog.Failures[0].Source)
	assert.Equal(t, types.KeylessKeep, runLog.KeylessPolicy)

	arxivRef := runLog.Snapshots[types.SourceArxiv]
	assert.Equal(t, "widgets_20250203_040506.arxiv.snapshot.xml", arxivRef.File)
	assert.True(t, arxivRef.Truncated)
	assert.Equal(t, 16, arxivRef.Bytes)
	data, err := os.ReadFile(filepath.Join(dir, arxivRef.File))
	require.NoError(t, err)
	assert.Equal(t, "<feed>0123456789", string(data))

	crossrefRef := runLog.Snapshots[types.SourceCrossref]
	assert.Equal(t, "widgets_20250203_040506.crossref.snapshot.json", crossrefRef.File)
	assert.False(t, crossrefRef.Truncated)
}

func TestPersistEmptyResultSet(t *testing.T) {
	dir := t.TempDir()
	out, err := Persist(nil, Options{OutDir: dir, RunID: "empty_run", Query: "nothing"})
	require.NoError(t, err)

	csvData, err := os.ReadFile(out.CSV)
	require.NoError(t, err)
	assert.Equal(t, strings.Join(types.RecordColumns, ",")+"\n", string(csvData))

	htmlFile, err := os.Open(out.HTML)
	require.NoError(t, err)
	defer htmlFile.Close()
	doc, err := goquery.NewDocumentFromReader(htmlFile)
	require.NoError(t, err)
	assert.Equal(t, 0, doc.Find("#results tbody tr").Length())

	logFile, err := os.Open(out.Log)
	require.NoError(t, err)
	defer logFile.Close()
	runLog, err := ReadLog(logFile)
	require.NoError(t, err)
	assert.Equal(t, 0, runLog.Counts.TotalRecords)
	assert.Empty(t, runLog.Snapshots)
	assert.NotNil(t, runLog.Failures)
	assert.Empty(t, out.CSL)
	_, hasCSL := out.Map()[KeyCSL]
	assert.False(t, hasCSL)
}

func TestPersistFilesystemError(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, err := Persist(nil, Options{OutDir: filepath.Join(blocker, "sub"), RunID: "r"})
	assert.Error(t, err)

	_, err = Persist(nil, Options{OutDir: t.TempDir()})
	assert.Error(t, err, "run ID is required")
}

func TestCapBytes(t *testing.T) {
	b, cut := capBytes([]byte("héllo"), 2)
	assert.Equal(t, "h", string(b), "never splits a multi-byte rune")
	assert.True(t, cut)

	b, cut = capBytes([]byte("abc"), 0)
	assert.Equal(t, "abc", string(b))
	assert.False(t, cut)

	b, cut = capBytes([]byte("abc"), 3)
	assert.Equal(t, "abc", string(b))
	assert.False(t, cut)
}
