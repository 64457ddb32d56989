package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Feature is one candidate record of a feature collection.
type Feature struct {
	Index      int             // position in the source document
	Raw        json.RawMessage // source bytes, re-emitted verbatim on output
	Geometry   orb.Geometry    // nil when the feature has no geometry
	Properties geojson.Properties
	DecodeErr  error // set when the feature could not be decoded
}

// Collection is an ordered feature collection. Order is source order.
type Collection struct {
	Type     string
	Features []Feature
}

// Boundary is the reference polygon candidates are tested against.
type Boundary struct {
	Polygon    orb.Polygon
	Properties geojson.Properties
}

// Outer returns the outer ring. Holes are not interpreted.
func (b Boundary) Outer() orb.Ring {
	if len(b.Polygon) == 0 {
		return nil
	}
	return b.Polygon[0]
}

// PredicateKind selects the spatial test applied by the filter.
type PredicateKind int

const (
	Intersects PredicateKind = iota
	ContainsPoint
)

func (k PredicateKind) String() string {
	switch k {
	case Intersects:
		return "intersects"
	case ContainsPoint:
		return "contains-point"
	default:
		return fmt.Sprintf("predicate(%d)", int(k))
	}
}

// ParsePredicate maps a config/flag value to a PredicateKind.
func ParsePredicate(s string) (PredicateKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "intersects", "intersect":
		return Intersects, nil
	case "contains-point", "contains", "point-in-polygon":
		return ContainsPoint, nil
	default:
		return 0, fmt.Errorf("unknown predicate %q (want intersects or contains-point)", s)
	}
}

// Accepts reports whether the predicate can evaluate geometries of the given kind.
func (k PredicateKind) Accepts(g orb.Geometry) bool {
	switch k {
	case Intersects:
		switch g.(type) {
		case orb.Polygon, orb.MultiPolygon:
			return true
		}
	case ContainsPoint:
		_, ok := g.(orb.Point)
		return ok
	}
	return false
}

// Warning is a non-fatal, per-feature problem: the feature was skipped.
type Warning struct {
	Index      int
	Reason     string
	Properties geojson.Properties
	Err        error
}

func (w Warning) String() string {
	if w.Err != nil {
		return fmt.Sprintf("feature %d skipped: %s: %v", w.Index, w.Reason, w.Err)
	}
	return fmt.Sprintf("feature %d skipped: %s", w.Index, w.Reason)
}

// FilterResult is the outcome of one filtering pass.
type FilterResult struct {
	Collection Collection
	Total      int
	Kept       int
	Warnings   []Warning
}
