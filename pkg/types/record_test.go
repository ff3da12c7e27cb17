// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSource(t *testing.T) {
	tests := []struct {
		input   string
		want    Source
		wantErr bool
	}{
		{"arxiv", SourceArxiv, false},
		{"Crossref", SourceCrossref, false},
		{"  DOAJ ", SourceDOAJ, false},
		{"pubmed", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSource(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnknownSource))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewRecordHasEmptyLists(t *testing.T) {
	r := NewRecord(SourceCrossref)
	assert.NotNil(t, r.Authors)
	assert.NotNil(t, r.Subjects)
	assert.NoError(t, r.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
	}{
		{"unknown source", Record{Source: "scopus", Authors: []string{}, Subjects: []string{}}},
		{"nil authors", Record{Source: SourceArxiv, Subjects: []string{}}},
		{"nil subjects", Record{Source: SourceArxiv, Authors: []string{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rec.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidRecord))
		})
	}
}

func TestCloneIsDeep(t *testing.T) {
	orig := Record{
		Source:   SourceDOAJ,
		DOI:      String("10.1/a"),
		Title:    "A",
		Authors:  []string{"Ada"},
		Year:     Int(2020),
		Subjects: []string{"CS"},
	}
	c := orig.Clone()
	*c.DOI = "changed"
	*c.Year = 1999
	c.Authors[0] = "Bob"
	c.Subjects = append(c.Subjects, "Math")

	assert.Equal(t, "10.1/a", *orig.DOI)
	assert.Equal(t, 2020, *orig.Year)
	assert.Equal(t, []string{"Ada"}, orig.Authors)
	assert.Equal(t, []string{"CS"}, orig.Subjects)
}

func TestHasIdentity(t *testing.T) {
	assert.False(t, NewRecord(SourceArxiv).HasIdentity())
	assert.False(t, Record{Title: "   ", DOI: String(" ")}.HasIdentity())
	assert.True(t, Record{Title: "A"}.HasIdentity())
	assert.True(t, Record{ArxivID: String("http://arxiv.org/abs/1")}.HasIdentity())
}

func TestYearString(t *testing.T) {
	assert.Equal(t, "", Record{}.YearString())
	assert.Equal(t, "2021", Record{Year: Int(2021)}.YearString())
}

func TestKeylessPolicyValid(t *testing.T) {
	assert.True(t, KeylessKeep.Valid())
	assert.True(t, KeylessCollide.Valid())
	assert.False(t, KeylessPolicy("merge").Valid())
}
