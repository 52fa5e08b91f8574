package aggregate

import "github.com/02loveslollipop/irve-dashboard/internal/irve"

// FastDCThresholdKW is the power from which a point counts as fast DC in the
// KPI row.
const FastDCThresholdKW = 50.0

// KPIs is the headline metric row of a filtered view. Shares are
// percentages rounded to one decimal; nil when the column is missing or the
// view is empty.
type KPIs struct {
	Points            int      `json:"points"`
	Stations          int      `json:"stations"`
	DCSharePct        *float64 `json:"dc_share_pct"`
	FastDCSharePct    *float64 `json:"fast_dc_share_pct"`
	Always247SharePct *float64 `json:"always_open_share_pct"`
	PublicSharePct    *float64 `json:"public_share_pct"`
	InServiceSharePct *float64 `json:"in_service_share_pct"`
	SocketsPerStation float64  `json:"sockets_per_station"`
	AvgPowerKW        *float64 `json:"avg_power_kw"`
}

// ComputeKPIs derives the metric row. Stations are distinct addresses.
func ComputeKPIs(t *irve.CleanTable) KPIs {
	k := KPIs{Points: t.Len()}

	addresses := make(map[string]struct{})
	var dc, fast, open, public, inService, powered int
	var powerSum float64
	for i := range t.Points {
		p := &t.Points[i]
		if p.Address != "" {
			addresses[p.Address] = struct{}{}
		}
		if p.IsDC {
			dc++
		}
		if p.Is247 {
			open++
		}
		if p.IsPublic {
			public++
		}
		if p.Status == irve.StatusInService {
			inService++
		}
		if p.RatedPowerKW != nil {
			powered++
			powerSum += *p.RatedPowerKW
			if *p.RatedPowerKW >= FastDCThresholdKW {
				fast++
			}
		}
	}
	k.Stations = len(addresses)
	if k.Stations > 0 {
		k.SocketsPerStation = round1(float64(k.Points) / float64(k.Stations))
	}
	if k.Points == 0 {
		return k
	}

	share := func(col string, n int) *float64 {
		if !t.Has(col) {
			return nil
		}
		v := pct(n, k.Points)
		return &v
	}
	k.DCSharePct = share(irve.ColIsDC, dc)
	k.FastDCSharePct = share(irve.ColRatedPower, fast)
	k.Always247SharePct = share(irve.ColIs247, open)
	k.PublicSharePct = share(irve.ColIsPublic, public)
	k.InServiceSharePct = share(irve.ColStatusNormalized, inService)
	if powered > 0 {
		avg := round1(powerSum / float64(powered))
		k.AvgPowerKW = &avg
	}
	return k
}
