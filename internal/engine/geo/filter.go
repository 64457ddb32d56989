package geo

import (
	"fmt"

	"github.com/rendis/geofilter/internal/model"
)

// Filter keeps the features that satisfy the predicate against the boundary.
// Features that cannot be evaluated are dropped and reported as warnings; they
// never abort the pass. Output order follows input order.
func Filter(features model.Collection, boundary model.Boundary, kind model.PredicateKind) model.FilterResult {
	res := model.FilterResult{
		Total: len(features.Features),
		Collection: model.Collection{
			Type:     "FeatureCollection",
			Features: make([]model.Feature, 0, len(features.Features)),
		},
	}

	for _, f := range features.Features {
		skip := func(reason string, err error) {
			res.Warnings = append(res.Warnings, model.Warning{
				Index:      f.Index,
				Reason:     reason,
				Properties: f.Properties,
				Err:        err,
			})
		}

		switch {
		case f.DecodeErr != nil:
			skip("undecodable feature", f.DecodeErr)
			continue
		case f.Geometry == nil:
			skip("missing geometry", nil)
			continue
		case !kind.Accepts(f.Geometry):
			skip(fmt.Sprintf("%s geometry not supported by %s", f.Geometry.GeoJSONType(), kind), nil)
			continue
		}

		ok, err := evaluate(kind, f.Geometry, boundary)
		if err != nil {
			skip("spatial check failed", err)
			continue
		}
		if ok {
			res.Collection.Features = append(res.Collection.Features, f)
		}
	}

	res.Kept = len(res.Collection.Features)
	return res
}
