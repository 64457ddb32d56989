package geo

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/rendis/geofilter/internal/model"
)

// Intersects reports whether an area geometry shares at least one point with
// the boundary outer ring: overlap, containment either way, or touching.
// Candidate holes are honoured: a boundary lying wholly inside a hole does not
// intersect.
func Intersects(g orb.Geometry, b model.Boundary) (bool, error) {
	outer := b.Outer()
	switch g := g.(type) {
	case orb.Polygon:
		if err := validateCandidate(g); err != nil {
			return false, err
		}
		return polygonIntersects(g, outer), nil
	case orb.MultiPolygon:
		if len(g) == 0 {
			return false, errors.New("multipolygon has no polygons")
		}
		for i, p := range g {
			if err := validateCandidate(p); err != nil {
				return false, fmt.Errorf("polygon %d: %w", i, err)
			}
		}
		for _, p := range g {
			if polygonIntersects(p, outer) {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, fmt.Errorf("intersects: unsupported geometry %T", g)
	}
}

// ContainsPoint reports whether a point lies inside the boundary outer ring.
// Points on the ring itself count as inside.
func ContainsPoint(g orb.Geometry, b model.Boundary) (bool, error) {
	p, ok := g.(orb.Point)
	if !ok {
		return false, fmt.Errorf("contains-point: unsupported geometry %T", g)
	}
	if !finite(p) {
		return false, fmt.Errorf("point %v has non-finite coordinates", p)
	}

	outer := b.Outer()
	if !outer.Bound().Contains(p) {
		return false, nil
	}
	return planar.RingContains(outer, p), nil
}

func evaluate(kind model.PredicateKind, g orb.Geometry, b model.Boundary) (bool, error) {
	switch kind {
	case model.Intersects:
		return Intersects(g, b)
	case model.ContainsPoint:
		return ContainsPoint(g, b)
	default:
		return false, fmt.Errorf("unknown predicate %v", kind)
	}
}

func validatePolygon(p orb.Polygon) error {
	if len(p) == 0 {
		return errors.New("polygon has no rings")
	}
	return validateRing(p[0])
}

// validateCandidate checks the outer ring and every hole.
func validateCandidate(p orb.Polygon) error {
	if err := validatePolygon(p); err != nil {
		return err
	}
	for i, h := range p[1:] {
		if err := validateRing(h); err != nil {
			return fmt.Errorf("hole %d: %w", i, err)
		}
	}
	return nil
}

func validateRing(r orb.Ring) error {
	if len(r) < 4 {
		return fmt.Errorf("ring has %d positions, need at least 4", len(r))
	}
	if !r.Closed() {
		return errors.New("ring is not closed")
	}
	for _, p := range r {
		if !finite(p) {
			return fmt.Errorf("ring position %v has non-finite coordinates", p)
		}
	}
	return nil
}

func finite(p orb.Point) bool {
	for _, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// polygonIntersects assumes every ring is valid and closed.
func polygonIntersects(p orb.Polygon, outer orb.Ring) bool {
	shell := p[0]
	if !shell.Bound().Intersects(outer.Bound()) {
		return false
	}
	if ringsCross(shell, outer) {
		return true
	}

	// no edge crossings: one ring encloses the other or they are disjoint
	if planar.RingContains(outer, shell[0]) {
		return true
	}
	if !planar.RingContains(shell, outer[0]) {
		return false
	}

	// the boundary lies within the shell; it misses the candidate only when it
	// sits wholly inside a hole
	for _, h := range p[1:] {
		if ringsCross(h, outer) {
			return true
		}
		if planar.RingContains(h, outer[0]) {
			return false
		}
	}
	return true
}

// ringsCross reports whether any edge of a touches or crosses any edge of b.
func ringsCross(a, b orb.Ring) bool {
	if !a.Bound().Intersects(b.Bound()) {
		return false
	}
	for i := 0; i < len(a)-1; i++ {
		for j := 0; j < len(b)-1; j++ {
			if segmentsIntersect(a[i], a[i+1], b[j], b[j+1]) {
				return true
			}
		}
	}
	return false
}

func segmentsIntersect(p1, p2, q1, q2 orb.Point) bool {
	d1 := orientation(q1, q2, p1)
	d2 := orientation(q1, q2, p2)
	d3 := orientation(p1, p2, q1)
	d4 := orientation(p1, p2, q2)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	// collinear or touching cases
	switch {
	case d1 == 0 && onSegment(q1, q2, p1):
		return true
	case d2 == 0 && onSegment(q1, q2, p2):
		return true
	case d3 == 0 && onSegment(p1, p2, q1):
		return true
	case d4 == 0 && onSegment(p1, p2, q2):
		return true
	}
	return false
}

// orientation is the cross product of (b-a) and (c-a).
func orientation(a, b, c orb.Point) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

// onSegment assumes p is collinear with a-b.
func onSegment(a, b, p orb.Point) bool {
	return math.Min(a[0], b[0]) <= p[0] && p[0] <= math.Max(a[0], b[0]) &&
		math.Min(a[1], b[1]) <= p[1] && p[1] <= math.Max(a[1], b[1])
}
