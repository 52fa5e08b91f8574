package irve

import "github.com/paulmach/orb"

// Default validity bounds. The box keeps metropolitan France and the
// nearest overseas departments and excludes most other territories.
const (
	DefaultMaxPowerKW = 400.0
	DefaultLatMin     = -22.0
	DefaultLatMax     = 52.0
	DefaultLonMin     = -63.0
	DefaultLonMax     = 55.0
)

// Bounds are the outlier thresholds. Box is [lon, lat] ordered as orb uses.
type Bounds struct {
	MaxPowerKW float64
	Box        orb.Bound
}

// DefaultBounds returns the documented thresholds.
func DefaultBounds() Bounds {
	return NewBounds(DefaultMaxPowerKW, DefaultLatMin, DefaultLatMax, DefaultLonMin, DefaultLonMax)
}

// NewBounds builds Bounds from latitude and longitude intervals.
func NewBounds(maxPowerKW, latMin, latMax, lonMin, lonMax float64) Bounds {
	return Bounds{
		MaxPowerKW: maxPowerKW,
		Box: orb.Bound{
			Min: orb.Point{lonMin, latMin},
			Max: orb.Point{lonMax, latMax},
		},
	}
}

// PowerOK is false only for a present power above the bound.
func (b Bounds) PowerOK(p *ChargePoint) bool {
	return p.RatedPowerKW == nil || *p.RatedPowerKW <= b.MaxPowerKW
}

// GeoOK checks each present coordinate against its interval. Absent
// coordinates cannot be judged and pass.
func (b Bounds) GeoOK(p *ChargePoint) bool {
	if p.Latitude != nil && (*p.Latitude < b.Box.Min.Lat() || *p.Latitude > b.Box.Max.Lat()) {
		return false
	}
	if p.Longitude != nil && (*p.Longitude < b.Box.Min.Lon() || *p.Longitude > b.Box.Max.Lon()) {
		return false
	}
	return true
}

// FilterOutliers drops rows failing either rule. The counts are per rule and
// a row failing both is counted twice.
func FilterOutliers(t *CleanTable, b Bounds) (*CleanTable, int, int) {
	var removedPower, removedGeo int
	kept := make([]ChargePoint, 0, len(t.Points))
	for i := range t.Points {
		p := &t.Points[i]
		powerOK, geoOK := b.PowerOK(p), b.GeoOK(p)
		if !powerOK {
			removedPower++
		}
		if !geoOK {
			removedGeo++
		}
		if powerOK && geoOK {
			kept = append(kept, *p)
		}
	}
	return t.WithPoints(kept), removedPower, removedGeo
}
