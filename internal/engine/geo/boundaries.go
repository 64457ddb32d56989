package geo

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"

	"github.com/rendis/geofilter/internal/model"
)

var errNoGeometry = errors.New("first feature has no geometry")

// LoadBoundary reads a feature collection and returns its first feature as the
// boundary. The document must parse, carry at least one feature, and that
// feature must have a Polygon geometry with a valid outer ring.
func LoadBoundary(path string) (model.Boundary, error) {
	doc, err := readDocument(path)
	if err != nil {
		return model.Boundary{}, err
	}
	if doc.Features == nil {
		return model.Boundary{}, newError(ErrMissingBoundary, path, errNoFeatures)
	}
	if len(*doc.Features) == 0 {
		return model.Boundary{}, newError(ErrMissingBoundary, path, errors.New("features array is empty"))
	}

	f := decodeFeature(0, (*doc.Features)[0])
	if f.DecodeErr != nil {
		return model.Boundary{}, newError(ErrInvalidGeometry, path, f.DecodeErr)
	}
	if f.Geometry == nil {
		return model.Boundary{}, newError(ErrMissingBoundary, path, errNoGeometry)
	}

	poly, ok := f.Geometry.(orb.Polygon)
	if !ok {
		return model.Boundary{}, newError(ErrInvalidGeometry, path,
			fmt.Errorf("geometry is %s, want Polygon", f.Geometry.GeoJSONType()))
	}
	if err := validatePolygon(poly); err != nil {
		return model.Boundary{}, newError(ErrInvalidGeometry, path, err)
	}

	return model.Boundary{Polygon: poly, Properties: f.Properties}, nil
}
