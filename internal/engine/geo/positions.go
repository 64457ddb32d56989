package geo

import (
	"encoding/json"
	"errors"
	"fmt"
)

// rawGeometry mirrors a GeoJSON geometry object without interpreting it.
type rawGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
	Geometries  []rawGeometry   `json:"geometries"`
}

// Array nesting above the position level for each geometry type.
var positionDepth = map[string]int{
	"Point":           0,
	"MultiPoint":      1,
	"LineString":      1,
	"MultiLineString": 2,
	"Polygon":         2,
	"MultiPolygon":    3,
}

// checkPositions rejects positions with fewer than two numbers. orb decodes
// [] and [x] into zero-padded points, so this runs on the source bytes.
func checkPositions(raw json.RawMessage) error {
	var doc struct {
		Geometry *rawGeometry `json:"geometry"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return err
	}
	if doc.Geometry == nil {
		return nil
	}
	return checkGeometry(*doc.Geometry)
}

func checkGeometry(g rawGeometry) error {
	if g.Type == "GeometryCollection" {
		for i, sub := range g.Geometries {
			if err := checkGeometry(sub); err != nil {
				return fmt.Errorf("geometry %d: %w", i, err)
			}
		}
		return nil
	}

	depth, ok := positionDepth[g.Type]
	if !ok || len(g.Coordinates) == 0 {
		return nil
	}
	var coords any
	if err := json.Unmarshal(g.Coordinates, &coords); err != nil {
		return err
	}
	return checkNested(coords, depth)
}

func checkNested(v any, depth int) error {
	arr, ok := v.([]any)
	if !ok {
		return errors.New("coordinates are not an array")
	}
	if depth == 0 {
		if len(arr) < 2 {
			return fmt.Errorf("position %v has %d coordinates, need at least 2", arr, len(arr))
		}
		for _, n := range arr {
			if _, ok := n.(float64); !ok {
				return fmt.Errorf("position %v has a non-numeric coordinate", arr)
			}
		}
		return nil
	}
	for _, child := range arr {
		if err := checkNested(child, depth-1); err != nil {
			return err
		}
	}
	return nil
}
