// Package report renders aggregate views as an XLSX workbook.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/02loveslollipop/irve-dashboard/internal/aggregate"
	"github.com/02loveslollipop/irve-dashboard/internal/irve"
)

// Sheet names.
const (
	SheetSummary       = "summary"
	SheetDepartments   = "departments"
	SheetOperators     = "operators"
	SheetDCShare       = "dc_share"
	SheetCoverage      = "coverage"
	SheetInstallations = "installations"
	SheetPower         = "power"
	SheetMissing       = "missing"
)

// Summary is the set of views exported in one workbook.
type Summary struct {
	GeneratedAt   time.Time
	Source        string
	KPIs          aggregate.KPIs
	Departments   []aggregate.Count
	Operators     []aggregate.Count
	DCShare       []aggregate.DCShare
	Coverage      []aggregate.Coverage
	Installations []aggregate.MonthCount
	Power         []aggregate.Bin
	Missing       aggregate.MissingReport
}

// BuildSummary computes every exported view over t.
func BuildSummary(t *irve.CleanTable, pop aggregate.Population, top, minDCPoints int, source string) Summary {
	return Summary{
		GeneratedAt:   time.Now().UTC(),
		Source:        source,
		KPIs:          aggregate.ComputeKPIs(t),
		Departments:   aggregate.TopDepartments(t, top),
		Operators:     aggregate.TopOperators(t, top),
		DCShare:       aggregate.DCShareByDepartment(t, minDCPoints, top),
		Coverage:      aggregate.PeoplePerCharger(t, pop),
		Installations: aggregate.MonthlyInstallations(t, aggregate.DefaultTimelineStart),
		Power:         aggregate.PowerHistogram(t),
		Missing:       aggregate.MissingValues(t),
	}
}

// BuildXLSX renders the summary as a workbook.
func BuildXLSX(s Summary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	w := &sheetWriter{f: f}

	w.rows(SheetSummary, []any{"IRVE charging points", s.Source}, [][]any{
		{"Generated at", s.GeneratedAt.Format(time.RFC3339)},
		{"Charging points", s.KPIs.Points},
		{"Unique stations", s.KPIs.Stations},
		{"Sockets per station", s.KPIs.SocketsPerStation},
		{"DC share (%)", optional(s.KPIs.DCSharePct)},
		{"Fast DC share (%)", optional(s.KPIs.FastDCSharePct)},
		{"24/7 share (%)", optional(s.KPIs.Always247SharePct)},
		{"Public share (%)", optional(s.KPIs.PublicSharePct)},
		{"In service share (%)", optional(s.KPIs.InServiceSharePct)},
		{"Average power (kW)", optional(s.KPIs.AvgPowerKW)},
	})

	w.sheet(SheetDepartments, []any{"Department", "Points"}, len(s.Departments), func(i int) []any {
		return []any{s.Departments[i].Label, s.Departments[i].Count}
	})
	w.sheet(SheetOperators, []any{"Operator", "Points"}, len(s.Operators), func(i int) []any {
		return []any{s.Operators[i].Label, s.Operators[i].Count}
	})
	w.sheet(SheetDCShare, []any{"Department", "Points", "DC points", "DC share (%)"}, len(s.DCShare), func(i int) []any {
		d := s.DCShare[i]
		return []any{d.Department, d.Points, d.DC, d.SharePct}
	})
	w.sheet(SheetCoverage, []any{"Department", "Points", "Population", "People per charger"}, len(s.Coverage), func(i int) []any {
		c := s.Coverage[i]
		return []any{c.Department, c.Points, c.Population, c.PeoplePerCharger}
	})
	w.sheet(SheetInstallations, []any{"Month", "Installations"}, len(s.Installations), func(i int) []any {
		return []any{s.Installations[i].Month, s.Installations[i].Count}
	})
	w.sheet(SheetPower, []any{"Power (kW)", "Points"}, len(s.Power), func(i int) []any {
		return []any{s.Power[i].Label, s.Power[i].Count}
	})
	w.sheet(SheetMissing, []any{"Column", "Missing", "Missing (%)"}, len(s.Missing.Columns), func(i int) []any {
		m := s.Missing.Columns[i]
		return []any{m.Column, m.Missing, m.Pct}
	})
	if w.err != nil {
		return nil, w.err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func optional(v *float64) any {
	if v == nil {
		return "N/A"
	}
	return *v
}

// sheetWriter keeps the first error so callers check once.
type sheetWriter struct {
	f   *excelize.File
	err error
}

func (w *sheetWriter) sheet(name string, header []any, n int, row func(i int) []any) {
	rows := make([][]any, n)
	for i := range rows {
		rows[i] = row(i)
	}
	if w.err != nil {
		return
	}
	if _, err := w.f.NewSheet(name); err != nil {
		w.err = fmt.Errorf("new sheet %s: %w", name, err)
		return
	}
	w.rows(name, header, rows)
}

func (w *sheetWriter) rows(sheet string, header []any, rows [][]any) {
	if w.err != nil {
		return
	}
	all := append([][]any{header}, rows...)
	for r, values := range all {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			w.err = err
			return
		}
		if err := w.f.SetSheetRow(sheet, cell, &values); err != nil {
			w.err = fmt.Errorf("write %s row %d: %w", sheet, r+1, err)
			return
		}
	}
}
