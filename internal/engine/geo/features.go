package geo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/paulmach/orb/geojson"

	"github.com/rendis/geofilter/internal/model"
)

// document is the top level of a feature collection. Features stay raw so that
// one bad feature cannot fail the whole document.
type document struct {
	Type     string             `json:"type"`
	Features *[]json.RawMessage `json:"features"`
}

var errNoFeatures = errors.New("no features array")

func readDocument(path string) (document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return document{}, newError(ErrFormat, path, err)
	}
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return document{}, newError(ErrFormat, path, err)
	}
	return doc, nil
}

// LoadFeatures reads a candidate feature collection. An empty features array is
// valid. Features that fail to decode are kept with DecodeErr set so the filter
// can report them as skipped.
func LoadFeatures(path string) (model.Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.Collection{}, newError(ErrFormat, path, err)
	}
	return DecodeFeatures(path, data)
}

// DecodeFeatures decodes an in-memory feature collection. path is only used in errors.
func DecodeFeatures(path string, data []byte) (model.Collection, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return model.Collection{}, newError(ErrFormat, path, err)
	}
	if doc.Features == nil {
		return model.Collection{}, newError(ErrFormat, path, errNoFeatures)
	}

	c := model.Collection{
		Type:     doc.Type,
		Features: make([]model.Feature, 0, len(*doc.Features)),
	}
	for i, raw := range *doc.Features {
		c.Features = append(c.Features, decodeFeature(i, raw))
	}
	return c, nil
}

func decodeFeature(i int, raw json.RawMessage) model.Feature {
	f := model.Feature{Index: i, Raw: raw}

	gf, err := geojson.UnmarshalFeature(raw)
	if err == nil {
		err = checkPositions(raw)
	}
	if err != nil {
		f.DecodeErr = err
		// best effort, only used to identify the feature in warnings
		var loose struct {
			Properties geojson.Properties `json:"properties"`
		}
		if json.Unmarshal(raw, &loose) == nil {
			f.Properties = loose.Properties
		}
		return f
	}

	f.Geometry = gf.Geometry
	f.Properties = gf.Properties
	return f
}

// Encode renders a collection as a FeatureCollection document with 2-space
// indentation. Features are written from their source bytes so properties pass
// through unchanged.
func Encode(c model.Collection) ([]byte, error) {
	var compact bytes.Buffer
	compact.WriteString(`{"type":"FeatureCollection","features":[`)
	for i, f := range c.Features {
		if i > 0 {
			compact.WriteByte(',')
		}
		raw := f.Raw
		if len(raw) == 0 {
			var err error
			if raw, err = marshalFeature(f); err != nil {
				return nil, fmt.Errorf("encoding feature %d: %w", f.Index, err)
			}
		}
		compact.Write(raw)
	}
	compact.WriteString("]}")

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return nil, fmt.Errorf("indenting collection: %w", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

func marshalFeature(f model.Feature) ([]byte, error) {
	gf := geojson.NewFeature(f.Geometry)
	if f.Properties != nil {
		gf.Properties = f.Properties
	}
	return gf.MarshalJSON()
}
