// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/pdiddy/research-aggregator/pkg/types"
)

// ListSeparator joins list-valued fields in a single CSV cell.
const ListSeparator = "; "

// WriteCSV writes a header row in types.RecordColumns order followed by one
// row per record. Absent values are written as empty cells.
func WriteCSV(w io.Writer, records []types.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(types.RecordColumns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for i, r := range records {
		if err := cw.Write(csvRow(r)); err != nil {
			return fmt.Errorf("writing CSV row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRow(r types.Record) []string {
	return []string{
		r.Source.String(),
		types.Value(r.DOI),
		types.Value(r.ArxivID),
		r.Title,
		strings.Join(r.Authors, ListSeparator),
		types.Value(r.Abstract),
		r.YearString(),
		types.Value(r.URL),
		strings.Join(r.Subjects, ListSeparator),
	}
}

// ReadCSV parses a file produced by WriteCSV. Empty cells become absent
// optional fields and empty lists; the header must match RecordColumns.
func ReadCSV(r io.Reader) ([]types.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(types.RecordColumns)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("reading CSV: missing header")
	}
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	if !slices.Equal(header, types.RecordColumns) {
		return nil, fmt.Errorf("reading CSV: unexpected header %v", header)
	}

	records := []types.Record{}
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV: %w", err)
		}
		rec, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("reading CSV line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseRow(row []string) (types.Record, error) {
	src, err := types.ParseSource(row[0])
	if err != nil {
		return types.Record{}, err
	}
	rec := types.NewRecord(src)
	rec.DOI = optional(row[1])
	rec.ArxivID = optional(row[2])
	rec.Title = row[3]
	rec.Authors = splitList(row[4])
	rec.Abstract = optional(row[5])
	if row[6] != "" {
		year, err := strconv.Atoi(row[6])
		if err != nil {
			return types.Record{}, fmt.Errorf("year %q: %w", row[6], err)
		}
		rec.Year = types.Int(year)
	}
	rec.URL = optional(row[7])
	rec.Subjects = splitList(row[8])
	return rec, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return types.String(s)
}

func splitList(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ListSeparator)
}
