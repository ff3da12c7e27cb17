// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package discover turns a free-text query into per-source request plans.
// It performs no network I/O: a Plan only describes the request the fetch
// stage will make.
package discover

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/research-aggregator/pkg/types"
)

// API endpoints. Declared as vars so tests can substitute an httptest server.
var (
	ArxivBase    = "https://export.arxiv.org/api/query"
	CrossrefBase = "https://api.crossref.org/works"
	DOAJBase     = "https://doaj.org/api/v3/search/articles"
)

// Vendor-side page size limits.
const (
	ArxivMaxItems    = 200
	CrossrefMaxItems = 100
	DOAJMaxItems     = 100
)

// crossrefFields is the field-selection list sent to Crossref.
const crossrefFields = "DOI,title,author,abstract,URL,issued,subject,type"

// Options holds the inputs to BuildPlans.
type Options struct {
	Query    string
	MaxItems int
	WithDOAJ bool
	// Mailto is the polite-contact address; empty means none is sent.
	Mailto string
}

// Plan describes one HTTP request against one source. A plan either carries
// a fully encoded URL (Params nil) or a base URL plus Params to encode.
type Plan struct {
	Source  types.Source      `json:"source" yaml:"source"`
	Method  string            `json:"method" yaml:"method"`
	URL     string            `json:"url" yaml:"url"`
	Params  url.Values        `json:"params,omitempty" yaml:"params,omitempty"`
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
}

// RequestURL returns the URL to request, encoding Params into the query
// string when present. Existing query parameters in URL are preserved.
func (p Plan) RequestURL() (string, error) {
	if len(p.Params) == 0 {
		return p.URL, nil
	}
	u, err := url.Parse(p.URL)
	if err != nil {
		return "", fmt.Errorf("parsing plan URL %q: %w", p.URL, err)
	}
	q := u.Query()
	for k, vs := range p.Params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// BuildPlans returns one plan per enabled source in the fixed order
// arXiv, Crossref, DOAJ.
func BuildPlans(opts Options) []Plan {
	q := strings.TrimSpace(opts.Query)
	n := max(1, opts.MaxItems)

	plans := []Plan{arxivPlan(q, min(n, ArxivMaxItems)), crossrefPlan(q, min(n, CrossrefMaxItems), strings.TrimSpace(opts.Mailto))}
	if opts.WithDOAJ {
		plans = append(plans, doajPlan(q, min(n, DOAJMaxItems)))
	}
	return plans
}

// arxivPlan pre-encodes the "all fields" search predicate into the URL.
func arxivPlan(q string, n int) Plan {
	return Plan{
		Source: types.SourceArxiv,
		Method: "GET",
		URL: fmt.Sprintf("%s?search_query=all:%s&start=0&max_results=%d",
			ArxivBase, url.QueryEscape(q), n),
	}
}

func crossrefPlan(q string, n int, mailto string) Plan {
	params := url.Values{
		"query":  {q},
		"rows":   {strconv.Itoa(n)},
		"select": {crossrefFields},
	}
	if mailto != "" {
		params.Set("mailto", mailto)
	}
	return Plan{Source: types.SourceCrossref, Method: "GET", URL: CrossrefBase, Params: params}
}

func doajPlan(q string, n int) Plan {
	params := url.Values{
		"q":        {q},
		"page":     {"1"},
		"pageSize": {strconv.Itoa(n)},
	}
	return Plan{Source: types.SourceDOAJ, Method: "GET", URL: DOAJBase, Params: params}
}
