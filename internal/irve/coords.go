package irve

import "regexp"

// CoordinateSources names the header columns feeding the consolidator.
// Empty names are absent sources.
type CoordinateSources struct {
	Latitude          string   `json:"latitude,omitempty"`
	Longitude         string   `json:"longitude,omitempty"`
	FallbackLatitude  []string `json:"fallback_latitude,omitempty"`
	FallbackLongitude []string `json:"fallback_longitude,omitempty"`
	Pair              string   `json:"pair,omitempty"`
}

// Any reports whether at least one coordinate source exists.
func (s CoordinateSources) Any() bool {
	return s.Latitude != "" || s.Longitude != "" || s.Pair != "" ||
		len(s.FallbackLatitude) > 0 || len(s.FallbackLongitude) > 0
}

// CoordinateGaps counts rows left without a latitude or longitude.
type CoordinateGaps struct {
	MissingLatitude  int `json:"missing_latitude"`
	MissingLongitude int `json:"missing_longitude"`
}

// "[lon, lat]" as published in coordonneesXY.
var pairRE = regexp.MustCompile(`^\s*\[?\s*(-?\d+(?:\.\d+)?)\s*[,; ]\s*(-?\d+(?:\.\d+)?)\s*\]?\s*$`)

// ParseCoordinatePair parses a "[lon, lat]" cell.
func ParseCoordinatePair(text string) (lon, lat *float64) {
	m := pairRE.FindStringSubmatch(text)
	if m == nil {
		return nil, nil
	}
	return ParseNumber(m[1]), ParseNumber(m[2])
}

// Consolidate resolves one latitude and one longitude per row: the primary
// column when parseable, else the first parseable fallback in order, else
// the combined pair column. Source columns are left untouched.
func Consolidate(raw *RawTable, src CoordinateSources) (lat, lon []*float64, gaps CoordinateGaps) {
	latIdx := indexes(raw, src.Latitude, src.FallbackLatitude)
	lonIdx := indexes(raw, src.Longitude, src.FallbackLongitude)
	pairIdx := raw.Index(src.Pair)

	lat = make([]*float64, len(raw.Rows))
	lon = make([]*float64, len(raw.Rows))
	for i, row := range raw.Rows {
		lat[i] = firstNumber(raw, row, latIdx)
		lon[i] = firstNumber(raw, row, lonIdx)
		if (lat[i] == nil || lon[i] == nil) && pairIdx >= 0 {
			pLon, pLat := ParseCoordinatePair(raw.Cell(row, pairIdx))
			if lat[i] == nil {
				lat[i] = pLat
			}
			if lon[i] == nil {
				lon[i] = pLon
			}
		}
		if lat[i] == nil {
			gaps.MissingLatitude++
		}
		if lon[i] == nil {
			gaps.MissingLongitude++
		}
	}
	return lat, lon, gaps
}

func indexes(raw *RawTable, primary string, fallbacks []string) []int {
	var out []int
	if idx := raw.Index(primary); idx >= 0 {
		out = append(out, idx)
	}
	for _, name := range fallbacks {
		if idx := raw.Index(name); idx >= 0 {
			out = append(out, idx)
		}
	}
	return out
}

func firstNumber(raw *RawTable, row []string, idxs []int) *float64 {
	for _, idx := range idxs {
		if v := ParseNumber(raw.Cell(row, idx)); v != nil {
			return v
		}
	}
	return nil
}
