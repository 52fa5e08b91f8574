// Package geo joins department counts against a department boundary
// GeoJSON reference.
package geo

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/02loveslollipop/irve-dashboard/internal/irve"
)

// CodeProperty is the feature property holding the department code.
const CodeProperty = "code"

// CountProperty is the property set on choropleth features.
const CountProperty = "count"

var errNoFeatures = errors.New("no department features")

// NormalizeCode zero-pads numeric department codes and upper-cases the
// Corsican 2A/2B codes, so "1", "01" and " 01 " join the same feature.
func NormalizeCode(code string) string {
	return irve.NormalizeDepartmentCode(code)
}

// Departments is a parsed boundary reference keyed by department code.
type Departments struct {
	features []*geojson.Feature
	byCode   map[string]*geojson.Feature
	bound    orb.Bound
}

// LoadDepartments reads a FeatureCollection whose features carry a "code"
// property.
func LoadDepartments(path string) (*Departments, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read departments %s: %w", path, err)
	}
	return ParseDepartments(data)
}

// ParseDepartments parses GeoJSON bytes. Features without a code are
// skipped.
func ParseDepartments(data []byte) (*Departments, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse departments: %w", err)
	}
	d := &Departments{byCode: make(map[string]*geojson.Feature, len(fc.Features))}
	for _, f := range fc.Features {
		code := NormalizeCode(f.Properties.MustString(CodeProperty, ""))
		if code == "" || f.Geometry == nil {
			continue
		}
		f.Properties[CodeProperty] = code
		if len(d.features) == 0 {
			d.bound = f.Geometry.Bound()
		} else {
			d.bound = d.bound.Union(f.Geometry.Bound())
		}
		d.features = append(d.features, f)
		d.byCode[code] = f
	}
	if len(d.features) == 0 {
		return nil, errNoFeatures
	}
	return d, nil
}

// Codes returns the known department codes in ascending order.
func (d *Departments) Codes() []string {
	codes := make([]string, 0, len(d.byCode))
	for c := range d.byCode {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// Bound is the bounding box of every department.
func (d *Departments) Bound() orb.Bound { return d.bound }

// Choropleth returns a new FeatureCollection where every department carries
// its point count (zero when absent) and the codes of counts that matched no
// feature.
func (d *Departments) Choropleth(counts map[string]int) (*geojson.FeatureCollection, []string) {
	fc := geojson.NewFeatureCollection()
	for _, f := range d.features {
		out := geojson.NewFeature(f.Geometry)
		for k, v := range f.Properties {
			out.Properties[k] = v
		}
		code := out.Properties.MustString(CodeProperty)
		out.Properties[CountProperty] = counts[code]
		fc.Append(out)
	}

	var unmatched []string
	for code := range counts {
		if _, ok := d.byCode[NormalizeCode(code)]; !ok {
			unmatched = append(unmatched, code)
		}
	}
	sort.Strings(unmatched)
	return fc, unmatched
}
