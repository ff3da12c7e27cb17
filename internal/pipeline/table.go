// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pdiddy/research-aggregator/pkg/types"
)

const (
	titleWidth  = 60
	authorWidth = 24
)

// FormatTable writes up to limit records as an aligned table, followed by
// a line saying how many were omitted. A limit of zero or less prints all.
func FormatTable(records []types.Record, limit int, w io.Writer) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No records found.")
		return
	}

	shown := records
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)

	rows := make([][]string, len(shown))
	for i, r := range shown {
		rows[i] = []string{
			fmt.Sprintf("%d", i+1),
			r.Source.String(),
			r.YearString(),
			truncate(r.Title, titleWidth),
			formatAuthors(r.Authors),
		}
	}
	table.Header([]string{"#", "Source", "Year", "Title", "Authors"})
	table.Bulk(rows)
	table.Render()

	if rest := len(records) - len(shown); rest > 0 {
		fmt.Fprintf(w, "... and %d more\n", rest)
	}
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0], authorWidth)
	default:
		return truncate(authors[0], authorWidth-7) + " et al."
	}
}

// truncate shortens s to max runes, ending with "..." when cut.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
