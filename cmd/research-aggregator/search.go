package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-aggregator/internal/pipeline"
	"github.com/pdiddy/research-aggregator/internal/secrets"
	"github.com/pdiddy/research-aggregator/internal/store"
	"github.com/pdiddy/research-aggregator/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Query every source and write CSV, HTML and a run log",
	Long: `Search builds one request per source for the query, fetches them in order
with a short pause between requests, normalizes and deduplicates the results,
and writes {run_id}.csv, {run_id}.html and {run_id}.log.json to the output
directory. The run ID is a slug of the query plus a UTC timestamp.

Crossref's polite contact is taken from --mailto, then .secrets/crossref-mailto,
then CROSSREF_MAILTO in .env.`,
	Args: cobra.MinimumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(viper.GetViper(), cmd.Flags())
	},
	RunE: runSearch,
}

func init() {
	def := types.DefaultConfig()
	searchCmd.Flags().Int("max-items", def.MaxItems, "per-source item cap (clamped to 1..200)")
	searchCmd.Flags().String("out-dir", def.OutDir, "directory for output files")
	searchCmd.Flags().Bool("with-doaj", false, "also query the Directory of Open Access Journals")
	searchCmd.Flags().Bool("save-snapshots", def.SaveSnapshots, "save raw source payloads next to the run log")
	searchCmd.Flags().Int("snapshot-limit", def.SnapshotLimit, "maximum bytes kept per snapshot (0 = unlimited)")
	searchCmd.Flags().String("mailto", "", "contact address for the Crossref polite pool")
	searchCmd.Flags().Bool("csl", false, "also write a CSL-YAML bibliography")
	searchCmd.Flags().String("keyless", string(def.Keyless), "records with no DOI, arXiv ID or title: keep or collide")
	searchCmd.Flags().Int("max-retries", 0, "retries on HTTP 429/503 (0 = single attempt)")
	searchCmd.Flags().Int("table-rows", 20, "records shown in the summary table (0 = none)")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return fmt.Errorf("provide a non-empty query")
	}

	cfg, err := configFrom(viper.GetViper())
	if err != nil {
		return err
	}
	cfg.Mailto = secrets.ResolveMailto(cfg.Mailto, secrets.DefaultDir, secrets.DefaultEnvFile)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	res, err := pipeline.Run(ctx, pipeline.Options{
		Query:  query,
		Config: cfg,
		Logger: slog.Default(),
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if rows, _ := cmd.Flags().GetInt("table-rows"); rows > 0 {
		pipeline.FormatTable(res.Records, rows, out)
		fmt.Fprintln(out)
	}
	printSummary(out, res)
	return nil
}

func printSummary(w io.Writer, res pipeline.Result) {
	fmt.Fprintf(w, "%d records", res.Counts.TotalRecords)
	if res.Counts.DuplicatesRemoved > 0 {
		fmt.Fprintf(w, " (%d duplicates removed)", res.Counts.DuplicatesRemoved)
	}
	fmt.Fprintln(w)

	warn := color.New(color.FgYellow)
	for _, f := range res.Failures {
		warn.Fprintf(w, "skipped %s: %v\n", f.Source, f.Err)
	}

	label := color.New(color.FgCyan)
	paths := res.Outputs.Map()
	keys := make([]string, 0, len(paths))
	for k := range paths {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return outputRank(keys[i]) < outputRank(keys[j]) })
	for _, k := range keys {
		label.Fprintf(w, "%-5s", k)
		fmt.Fprintf(w, " %s\n", paths[k])
	}
}

// outputRank orders the printed paths csv, html, log, then extras.
func outputRank(key string) int {
	switch key {
	case store.KeyCSV:
		return 0
	case store.KeyHTML:
		return 1
	case store.KeyLog:
		return 2
	}
	return 3
}
