package irve

import (
	"errors"
	"fmt"
	"time"
)

// ErrNotTabular is returned when the input has no header row.
var ErrNotTabular = errors.New("input is not tabular")

// StageError reports which pipeline stage failed and how much had been
// processed before the failure.
type StageError struct {
	Stage   string
	Rows    int
	Columns int
	Err     error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage failed after %d rows, %d columns: %v", e.Stage, e.Rows, e.Columns, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Options tune the cleaning pipeline.
type Options struct {
	Keywords           Keywords
	DepartmentRule     DepartmentRule
	DCPowerThresholdKW float64
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		Keywords:           DefaultKeywords(),
		DepartmentRule:     DepartmentNaive,
		DCPowerThresholdKW: 24,
	}
}

// CleanReport summarises one cleaning run. Gap counts are aggregate only.
type CleanReport struct {
	Rows              int            `json:"rows"`
	SourceColumns     int            `json:"source_columns"`
	Columns           int            `json:"columns"`
	Schema            Schema         `json:"schema"`
	Coordinates       CoordinateGaps `json:"coordinates"`
	MissingPostalCode int            `json:"missing_postal_code"`
	InvalidPower      int            `json:"invalid_power"`
	InvalidDates      int            `json:"invalid_dates"`
}

// columnOrder is the canonical front block followed by the other canonical
// columns.
var columnOrder = []string{
	ColStationID, ColPointID, ColStationName, ColAddress, ColPostalCode,
	ColCommune, ColDepartmentCode, ColDepartmentName, ColRegionCode,
	ColRegionName, ColLatitude, ColLongitude, ColRatedPower, ColPowerCategory,
	ColIsDC, ColIs247, ColIsPublic, ColStatusNormalized, ColOperatorName,
	ColBrandName, ColNetworkName, ColLastUpdate, ColCommissioning,
	ColAccessibility, ColAccessConditions, ColHours, ColReservation,
	ColPaymentModalities, ColStatusRaw, ColConnectorType, ColOwnerName,
}

// CanonicalColumns returns every canonical column in output order.
func CanonicalColumns() []string {
	return append([]string(nil), columnOrder...)
}

// Clean turns a raw table into the canonical table. Missing optional columns
// and malformed cells never fail the run; only a table without a header does.
func Clean(raw *RawTable, opts Options) (*CleanTable, CleanReport, error) {
	if raw == nil || len(raw.Header) == 0 {
		return nil, CleanReport{}, &StageError{Stage: "select", Err: ErrNotTabular}
	}
	if opts.DepartmentRule == "" {
		opts.DepartmentRule = DepartmentNaive
	}
	cls := NewClassifier(opts.Keywords)

	// 1. select
	schema := ResolveSchema(raw.Header, Fields)
	present := make(map[string]bool, len(columnOrder))
	for field := range schema.Sources {
		present[field] = true
	}
	report := CleanReport{Rows: len(raw.Rows), SourceColumns: len(raw.Header), Schema: schema}

	// 2. coordinates
	lat, lon, gaps := Consolidate(raw, schema.Coordinates)
	if schema.Coordinates.Any() {
		present[ColLatitude] = true
		present[ColLongitude] = true
		report.Coordinates = gaps
	}

	// postal code and department ride on the address or a postal column.
	hasPostal := schema.Has(ColAddress) || schema.Has(ColPostalCode)
	present[ColPostalCode] = hasPostal
	present[ColDepartmentCode] = hasPostal

	// 3. power
	present[ColPowerCategory] = present[ColRatedPower]

	// 4. current type: connector text wins over the power threshold.
	dcByConnector := schema.Has(ColConnectorType)
	present[ColIsDC] = dcByConnector || schema.Has(ColRatedPower)

	// 5, 6. always derived.
	present[ColIs247] = true
	present[ColIsPublic] = true

	// 7. status
	present[ColStatusNormalized] = schema.Has(ColStatusRaw)

	idx := make(map[string]int, len(schema.Sources))
	for field, name := range schema.Sources {
		idx[field] = raw.Index(name)
	}
	auxIdx := make([]int, len(schema.Auxiliary))
	for i, name := range schema.Auxiliary {
		auxIdx[i] = raw.Index(name)
	}
	text := func(row []string, field string) string {
		i, ok := idx[field]
		if !ok {
			return ""
		}
		return raw.Cell(row, i)
	}

	points := make([]ChargePoint, len(raw.Rows))
	for r, row := range raw.Rows {
		p := ChargePoint{
			StationID:             text(row, ColStationID),
			PointID:               text(row, ColPointID),
			StationName:           text(row, ColStationName),
			Address:               text(row, ColAddress),
			Commune:               text(row, ColCommune),
			DepartmentName:        text(row, ColDepartmentName),
			RegionCode:            text(row, ColRegionCode),
			RegionName:            text(row, ColRegionName),
			Latitude:              lat[r],
			Longitude:             lon[r],
			AccessibilityText:     text(row, ColAccessibility),
			AccessConditionsText:  text(row, ColAccessConditions),
			HoursText:             text(row, ColHours),
			PaymentModalitiesText: text(row, ColPaymentModalities),
			StatusRaw:             text(row, ColStatusRaw),
			ConnectorTypeText:     text(row, ColConnectorType),
			OperatorName:          text(row, ColOperatorName),
			BrandName:             text(row, ColBrandName),
			NetworkName:           text(row, ColNetworkName),
			OwnerName:             text(row, ColOwnerName),
		}

		if hasPostal {
			p.PostalCode = ExtractPostalCode(p.Address)
			if p.PostalCode == "" {
				p.PostalCode = ExtractPostalCode(text(row, ColPostalCode))
			}
			if p.PostalCode == "" {
				report.MissingPostalCode++
			}
			p.DepartmentCode = opts.DepartmentRule.Derive(p.PostalCode)
		}

		if present[ColReservation] {
			p.Reservation = cls.ParseBool(text(row, ColReservation))
		}
		p.LastUpdate = parseDateCell(text(row, ColLastUpdate), &report)
		p.Commissioning = parseDateCell(text(row, ColCommissioning), &report)

		if present[ColRatedPower] {
			rawPower := text(row, ColRatedPower)
			p.RatedPowerKW = ParsePower(rawPower)
			if p.RatedPowerKW == nil && rawPower != "" {
				report.InvalidPower++
			}
			p.PowerCategory = ClassifyPower(p.RatedPowerKW)
		}

		switch {
		case dcByConnector:
			p.IsDC = cls.IsDCConnector(p.ConnectorTypeText)
		case present[ColRatedPower]:
			p.IsDC = IsDCByPower(p.RatedPowerKW, opts.DCPowerThresholdKW)
		}

		p.Is247 = cls.Is247(p.HoursText)
		p.IsPublic = cls.IsPublic(p.AccessibilityText, p.AccessConditionsText)

		if present[ColStatusNormalized] {
			p.Status = cls.NormalizeStatus(p.StatusRaw)
		}

		for i, name := range schema.Auxiliary {
			if v := raw.Cell(row, auxIdx[i]); v != "" {
				if p.Extra == nil {
					p.Extra = make(map[string]string, len(schema.Auxiliary))
				}
				p.Extra[name] = v
			}
		}
		points[r] = p
	}

	// 8, 9. working columns never enter the output; canonical block first.
	cols := make([]string, 0, len(columnOrder)+len(schema.Auxiliary))
	for _, c := range columnOrder {
		if present[c] {
			cols = append(cols, c)
		}
	}
	cols = append(cols, schema.Auxiliary...)
	report.Columns = len(cols)

	return &CleanTable{Columns: cols, Points: points}, report, nil
}

func parseDateCell(text string, report *CleanReport) *time.Time {
	if text == "" {
		return nil
	}
	t := ParseDate(text)
	if t == nil {
		report.InvalidDates++
	}
	return t
}

// DropMissingPostal removes rows without a postal code.
func DropMissingPostal(t *CleanTable) (*CleanTable, int) {
	kept := make([]ChargePoint, 0, len(t.Points))
	for _, p := range t.Points {
		if p.PostalCode != "" {
			kept = append(kept, p)
		}
	}
	return t.WithPoints(kept), len(t.Points) - len(kept)
}

// Rederive recomputes the derived fields of p from its own inputs. A cleaned
// point is a fixed point of Rederive.
func Rederive(p ChargePoint, cls *Classifier, dcByConnector bool, opts Options) ChargePoint {
	if p.RatedPowerKW != nil || p.PowerCategory != "" {
		p.PowerCategory = ClassifyPower(p.RatedPowerKW)
	}
	if dcByConnector {
		p.IsDC = cls.IsDCConnector(p.ConnectorTypeText)
	} else {
		p.IsDC = IsDCByPower(p.RatedPowerKW, opts.DCPowerThresholdKW)
	}
	p.Is247 = cls.Is247(p.HoursText)
	p.IsPublic = cls.IsPublic(p.AccessibilityText, p.AccessConditionsText)
	if p.Status != "" {
		p.Status = cls.NormalizeStatus(p.StatusRaw)
	}
	p.DepartmentCode = opts.DepartmentRule.Derive(p.PostalCode)
	return p
}
