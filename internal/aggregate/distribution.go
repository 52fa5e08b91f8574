package aggregate

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/02loveslollipop/irve-dashboard/internal/irve"
)

// Mix labels.
const (
	LabelAC         = "AC"
	LabelDC         = "DC"
	LabelAlwaysOpen = "24/7"
	LabelRestricted = "restricted"
)

// CurrentMix counts AC and DC points. It is empty when the table has no
// current-type column.
func CurrentMix(t *irve.CleanTable) []Count {
	if !t.Has(irve.ColIsDC) || t.Len() == 0 {
		return nil
	}
	return boolMix(t, func(p *irve.ChargePoint) bool { return p.IsDC }, LabelDC, LabelAC)
}

// AccessMix counts round-the-clock and restricted points.
func AccessMix(t *irve.CleanTable) []Count {
	if t.Len() == 0 {
		return nil
	}
	return boolMix(t, func(p *irve.ChargePoint) bool { return p.Is247 }, LabelAlwaysOpen, LabelRestricted)
}

func boolMix(t *irve.CleanTable, flag func(p *irve.ChargePoint) bool, yes, no string) []Count {
	var n int
	for i := range t.Points {
		if flag(&t.Points[i]) {
			n++
		}
	}
	out := []Count{{Label: yes, Count: n}, {Label: no, Count: t.Len() - n}}
	sortCounts(out)
	return out
}

// Bin is one histogram bucket over (Lower, Upper].
type Bin struct {
	Label string  `json:"label"`
	Lower float64 `json:"-"`
	Upper float64 `json:"-"`
	Count int     `json:"count"`
}

// PowerBins are the right-closed power histogram edges in kW.
var PowerBins = []Bin{
	{Label: "<7", Lower: math.Inf(-1), Upper: 7},
	{Label: "7–22", Lower: 7, Upper: 22},
	{Label: "22–50", Lower: 22, Upper: 50},
	{Label: "50–150", Lower: 50, Upper: 150},
	{Label: "150–300", Lower: 150, Upper: 300},
	{Label: "≥300", Lower: 300, Upper: math.Inf(1)},
}

// PowerHistogram counts points with a known power per bin, in bin order.
func PowerHistogram(t *irve.CleanTable) []Bin {
	out := make([]Bin, len(PowerBins))
	copy(out, PowerBins)
	for i := range t.Points {
		kw := t.Points[i].RatedPowerKW
		if kw == nil {
			continue
		}
		for b := range out {
			if *kw > out[b].Lower && *kw <= out[b].Upper {
				out[b].Count++
				break
			}
		}
	}
	return out
}

// PowerCategoryCounts counts points per power tier, in tier order.
func PowerCategoryCounts(t *irve.CleanTable) []Count {
	if !t.Has(irve.ColPowerCategory) {
		return nil
	}
	counts := make(map[irve.PowerCategory]int)
	for i := range t.Points {
		counts[t.Points[i].PowerCategory]++
	}
	out := make([]Count, 0, len(irve.PowerCategories))
	for _, c := range irve.PowerCategories {
		out = append(out, Count{Label: string(c), Count: counts[c]})
	}
	return out
}

// PowerSummary is the descriptive statistics row of rated power.
type PowerSummary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// DescribePower summarises the known power values. ok is false when there
// are none.
func DescribePower(t *irve.CleanTable) (PowerSummary, bool) {
	values := make([]float64, 0, t.Len())
	for i := range t.Points {
		if kw := t.Points[i].RatedPowerKW; kw != nil {
			values = append(values, *kw)
		}
	}
	if len(values) == 0 {
		return PowerSummary{}, false
	}
	sort.Float64s(values)

	s := PowerSummary{
		Count:  len(values),
		Mean:   stat.Mean(values, nil),
		Min:    values[0],
		Q1:     stat.Quantile(0.25, stat.LinInterp, values, nil),
		Median: stat.Quantile(0.5, stat.LinInterp, values, nil),
		Q3:     stat.Quantile(0.75, stat.LinInterp, values, nil),
		Max:    values[len(values)-1],
	}
	if len(values) > 1 {
		s.Std = stat.StdDev(values, nil)
	}
	return s, true
}

// MapPoint is one located charging point for the map view.
type MapPoint struct {
	PointID   string             `json:"point_id,omitempty"`
	Station   string             `json:"station,omitempty"`
	Latitude  float64            `json:"lat"`
	Longitude float64            `json:"lon"`
	PowerKW   *float64           `json:"power_kw,omitempty"`
	Category  irve.PowerCategory `json:"power_category,omitempty"`
	IsDC      bool               `json:"is_dc"`
	Operator  string             `json:"operator,omitempty"`
}

// MapPoints returns located points. When limit is positive and smaller than
// the number of located points, an evenly strided sample is returned.
func MapPoints(t *irve.CleanTable, limit int) []MapPoint {
	located := make([]*irve.ChargePoint, 0, t.Len())
	for i := range t.Points {
		if t.Points[i].HasCoordinates() {
			located = append(located, &t.Points[i])
		}
	}
	n := len(located)
	if limit > 0 && n > limit {
		n = limit
	}
	out := make([]MapPoint, 0, n)
	for i := 0; i < n; i++ {
		p := located[i*len(located)/n]
		out = append(out, MapPoint{
			PointID:   p.PointID,
			Station:   p.StationName,
			Latitude:  *p.Latitude,
			Longitude: *p.Longitude,
			PowerKW:   p.RatedPowerKW,
			Category:  p.PowerCategory,
			IsDC:      p.IsDC,
			Operator:  p.OperatorName,
		})
	}
	return out
}
