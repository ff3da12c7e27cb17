// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one end-to-end aggregation: build request plans,
// fetch each source, normalize payloads into canonical records, remove
// duplicates and persist the outputs.
//
// Source failures are not errors. A run with every source failing still
// writes an empty CSV, HTML page and log. Only invalid options, a cancelled
// context and filesystem failures make Run return an error.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/research-aggregator/internal/dedupe"
	"github.com/pdiddy/research-aggregator/internal/discover"
	"github.com/pdiddy/research-aggregator/internal/fetch"
	"github.com/pdiddy/research-aggregator/internal/normalize"
	"github.com/pdiddy/research-aggregator/internal/store"
	"github.com/pdiddy/research-aggregator/pkg/types"
)

// ErrEmptyQuery is returned when the query is blank after trimming.
var ErrEmptyQuery = errors.New("query is empty")

// Options configures a single run. Zero values fall back to the defaults
// in types.DefaultConfig except where noted.
type Options struct {
	Query string
	types.Config

	// RunID overrides the derived run identifier.
	RunID string

	// Now returns the run timestamp. Defaults to time.Now.
	Now func() time.Time

	// Client is shared by every request of the run. Defaults to
	// fetch.NewClient().
	Client *http.Client

	// Logger receives progress and warnings. Defaults to slog.Default().
	Logger *slog.Logger
}

// Result summarizes a completed run.
type Result struct {
	RunID    string
	Query    string
	Plans    []discover.Plan
	Records  []types.Record
	Counts   store.Counts
	Failures []fetch.Failure
	Outputs  store.Outputs
}

// Run executes the pipeline once for opts.Query.
func Run(ctx context.Context, opts Options) (Result, error) {
	query := strings.TrimSpace(opts.Query)
	if query == "" {
		return Result{}, ErrEmptyQuery
	}
	cfg := withDefaults(opts.Config)
	if !cfg.Keyless.Valid() {
		return Result{}, fmt.Errorf("invalid keyless policy %q", cfg.Keyless)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	started := now()

	res := Result{RunID: opts.RunID, Query: query}
	if res.RunID == "" {
		res.RunID = NewRunID(query, started)
	}
	logger = logger.With("run_id", res.RunID)

	res.Plans = discover.BuildPlans(discover.Options{
		Query:    query,
		MaxItems: cfg.MaxItems,
		WithDOAJ: cfg.WithDOAJ,
		Mailto:   cfg.Mailto,
	})
	logger.InfoContext(ctx, "built request plans", "query", query, "plans", len(res.Plans))

	executor := fetch.NewExecutor(opts.Client, logger)
	executor.MaxRetries = cfg.MaxRetries
	if cfg.UserAgent != "" {
		executor.UserAgent = cfg.UserAgent
	}
	payloads, failures := executor.Execute(ctx, res.Plans)
	res.Failures = failures
	if err := ctx.Err(); err != nil {
		return res, fmt.Errorf("run %s: %w", res.RunID, err)
	}

	res.Counts = store.Counts{
		FetchedBytes: make(map[types.Source]int, len(payloads)),
		Normalized:   make(map[types.Source]int, len(payloads)),
	}
	var all []types.Record
	var snapshots []store.Snapshot
	limit := max(1, cfg.MaxItems)
	for _, p := range payloads {
		res.Counts.FetchedBytes[p.Source] = len(p.Raw)

		records, err := normalize.Normalize(p.Source, p.Body, limit)
		if err != nil {
			logger.WarnContext(ctx, "cannot normalize payload, skipping source",
				"source", p.Source, "content_type", p.ContentType, "error", err)
			res.Failures = append(res.Failures, fetch.Failure{Source: p.Source, URL: p.URL, Err: err})
			continue
		}
		kept := 0
		for _, r := range records {
			if err := r.Validate(); err != nil {
				logger.WarnContext(ctx, "dropping record", "source", p.Source, "error", err)
				continue
			}
			all = append(all, r)
			kept++
		}
		res.Counts.Normalized[p.Source] = kept
		logger.InfoContext(ctx, "normalized records", "source", p.Source, "records", kept)

		if cfg.SaveSnapshots {
			snapshots = append(snapshots, store.Snapshot{Source: p.Source, ContentType: p.ContentType, Raw: p.Raw})
		}
	}

	deduped := dedupe.Deduplicate(all, cfg.Keyless)
	res.Records = deduped.Records
	res.Counts.DuplicatesRemoved = deduped.Removed
	res.Counts.TotalRecords = len(deduped.Records)
	logger.InfoContext(ctx, "deduplicated records",
		"input", len(all), "kept", len(deduped.Records), "removed", deduped.Removed)

	out, err := store.Persist(res.Records, store.Options{
		OutDir:        cfg.OutDir,
		RunID:         res.RunID,
		Query:         query,
		Generated:     started,
		Snapshots:     snapshots,
		SnapshotLimit: cfg.SnapshotLimit,
		CSL:           cfg.CSL,
		Counts:        res.Counts,
		Failures:      failureEntries(res.Failures),
		KeylessPolicy: cfg.Keyless,
	})
	res.Outputs = out
	if err != nil {
		return res, fmt.Errorf("persisting run %s: %w", res.RunID, err)
	}
	logger.InfoContext(ctx, "wrote outputs", "csv", out.CSV, "html", out.HTML, "log", out.Log)
	return res, nil
}

func withDefaults(cfg types.Config) types.Config {
	def := types.DefaultConfig()
	if cfg.OutDir == "" {
		cfg.OutDir = def.OutDir
	}
	if cfg.MaxItems == 0 {
		cfg.MaxItems = def.MaxItems
	}
	if cfg.Keyless == "" {
		cfg.Keyless = def.Keyless
	}
	return cfg
}

func failureEntries(failures []fetch.Failure) []store.FailureEntry {
	entries := make([]store.FailureEntry, len(failures))
	for i, f := range failures {
		entries[i] = store.FailureEntry{Source: f.Source, URL: f.URL}
		if f.Err != nil {
			entries[i].Error = f.Err.Error()
		}
	}
	return entries
}
