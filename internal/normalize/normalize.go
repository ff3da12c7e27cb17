// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize maps each source's raw payload onto the canonical
// types.Record. There is one mapping function per source, selected through
// a dispatch table keyed by source tag. Mappings are pure: they never
// mutate the payload, never fail on missing or mistyped nested data, and
// preserve the source's native ordering while truncating to a cap.
package normalize

import (
	"errors"
	"fmt"

	"github.com/pdiddy/research-aggregator/pkg/types"
)

// ErrUnsupportedPayload is returned when a payload's decoded shape cannot
// belong to the requested source (for example a JSON object handed to the
// arXiv mapping).
var ErrUnsupportedPayload = errors.New("unsupported payload shape")

// Func maps one raw payload to at most cap records.
type Func func(payload any, cap int) []types.Record

var registry = map[types.Source]Func{
	types.SourceArxiv:    FromArxiv,
	types.SourceCrossref: FromCrossref,
	types.SourceDOAJ:     FromDOAJ,
}

// For returns the mapping function registered for src.
func For(src types.Source) (Func, bool) {
	fn, ok := registry[src]
	return fn, ok
}

// Normalize dispatches payload to the mapping for src. It returns
// ErrUnknownSource for an unregistered tag and ErrUnsupportedPayload when
// the payload kind does not match the source (text for arXiv, a JSON
// object for Crossref and DOAJ). In both cases the record slice is empty.
func Normalize(src types.Source, payload any, cap int) ([]types.Record, error) {
	fn, ok := For(src)
	if !ok {
		return []types.Record{}, fmt.Errorf("%w: %q", types.ErrUnknownSource, src)
	}
	if !payloadMatches(src, payload) {
		return []types.Record{}, fmt.Errorf("%w: %s payload is %T", ErrUnsupportedPayload, src, payload)
	}
	return fn(payload, cap), nil
}

func payloadMatches(src types.Source, payload any) bool {
	if src == types.SourceArxiv {
		_, ok := asText(payload)
		return ok
	}
	_, ok := payload.(map[string]any)
	return ok
}
