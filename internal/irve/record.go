package irve

import (
	"strings"
	"time"
)

// DateLayout is the textual form of date columns in persisted tables.
const DateLayout = "2006-01-02"

// Canonical column names of the cleaned table.
const (
	ColStationID         = "station_id"
	ColPointID           = "point_id"
	ColStationName       = "station_name"
	ColAddress           = "address"
	ColPostalCode        = "postal_code"
	ColCommune           = "commune"
	ColDepartmentCode    = "department_code"
	ColDepartmentName    = "department_name"
	ColRegionCode        = "region_code"
	ColRegionName        = "region_name"
	ColLatitude          = "latitude"
	ColLongitude         = "longitude"
	ColAccessibility     = "accessibility_text"
	ColAccessConditions  = "access_conditions_text"
	ColHours             = "hours_text"
	ColReservation       = "reservation_flag"
	ColPaymentModalities = "payment_modalities_text"
	ColStatusRaw         = "operational_status_raw"
	ColStatusNormalized  = "status_normalized"
	ColLastUpdate        = "last_update_date"
	ColCommissioning     = "commissioning_date"
	ColRatedPower        = "rated_power_kw"
	ColConnectorType     = "connector_type_text"
	ColPowerCategory     = "power_category"
	ColIsDC              = "is_dc"
	ColIs247             = "is_24_7"
	ColIsPublic          = "is_public"
	ColOperatorName      = "operator_name"
	ColBrandName         = "brand_name"
	ColNetworkName       = "network_name"
	ColOwnerName         = "owner_name"
)

// Kind is the storage type of a cleaned-table column.
type Kind int

const (
	KindText Kind = iota
	KindFloat
	KindBool
	KindDate
)

// Status is the normalized operational status of a charging point.
type Status string

const (
	StatusInService    Status = "in_service"
	StatusOutOfService Status = "out_of_service"
	StatusMaintenance  Status = "maintenance"
	StatusUnknown      Status = "unknown"
)

// PowerCategory is the rated-power tier of a charging point.
type PowerCategory string

const (
	PowerACSlow     PowerCategory = "ac_slow"
	PowerACStandard PowerCategory = "ac_standard"
	PowerDCMedium   PowerCategory = "dc_medium"
	PowerDCFast     PowerCategory = "dc_fast"
	PowerDCUltra    PowerCategory = "dc_ultra"
	PowerUnknown    PowerCategory = "unknown"
)

// PowerCategories lists the tiers in ascending power order.
var PowerCategories = []PowerCategory{PowerACSlow, PowerACStandard, PowerDCMedium, PowerDCFast, PowerDCUltra, PowerUnknown}

// RawTable is one ingested delimited file: a header and string cells.
// An empty cell is an absent value.
type RawTable struct {
	Header []string
	Rows   [][]string
}

// Cell returns the trimmed value at column idx, or "" when idx is out of range.
func (t *RawTable) Cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// Index returns the position of the exact header name, or -1.
func (t *RawTable) Index(name string) int {
	if name == "" {
		return -1
	}
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// ChargePoint is one row of the cleaned table. Text fields use "" for absent.
type ChargePoint struct {
	StationID             string
	PointID               string
	StationName           string
	Address               string
	PostalCode            string
	Commune               string
	DepartmentCode        string
	DepartmentName        string
	RegionCode            string
	RegionName            string
	Latitude              *float64
	Longitude             *float64
	AccessibilityText     string
	AccessConditionsText  string
	HoursText             string
	Reservation           bool
	PaymentModalitiesText string
	StatusRaw             string
	Status                Status
	LastUpdate            *time.Time
	Commissioning         *time.Time
	RatedPowerKW          *float64
	ConnectorTypeText     string
	PowerCategory         PowerCategory
	IsDC                  bool
	Is247                 bool
	IsPublic              bool
	OperatorName          string
	BrandName             string
	NetworkName           string
	OwnerName             string

	// Extra holds retained auxiliary source columns by their source name.
	Extra map[string]string
}

// HasCoordinates reports whether both latitude and longitude are present.
func (p *ChargePoint) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}

type column struct {
	kind Kind
	get  func(p *ChargePoint) any
	set  func(p *ChargePoint, v any)
}

func textColumn(ref func(p *ChargePoint) *string) column {
	return column{
		kind: KindText,
		get: func(p *ChargePoint) any {
			if s := *ref(p); s != "" {
				return s
			}
			return nil
		},
		set: func(p *ChargePoint, v any) {
			s, _ := v.(string)
			*ref(p) = s
		},
	}
}

func floatColumn(ref func(p *ChargePoint) **float64) column {
	return column{
		kind: KindFloat,
		get: func(p *ChargePoint) any {
			if f := *ref(p); f != nil {
				return *f
			}
			return nil
		},
		set: func(p *ChargePoint, v any) {
			if f, ok := v.(float64); ok {
				*ref(p) = &f
				return
			}
			*ref(p) = nil
		},
	}
}

func boolColumn(ref func(p *ChargePoint) *bool) column {
	return column{
		kind: KindBool,
		get:  func(p *ChargePoint) any { return *ref(p) },
		set: func(p *ChargePoint, v any) {
			b, _ := v.(bool)
			*ref(p) = b
		},
	}
}

func dateColumn(ref func(p *ChargePoint) **time.Time) column {
	return column{
		kind: KindDate,
		get: func(p *ChargePoint) any {
			if t := *ref(p); t != nil {
				return *t
			}
			return nil
		},
		set: func(p *ChargePoint, v any) {
			if t, ok := v.(time.Time); ok {
				*ref(p) = &t
				return
			}
			*ref(p) = nil
		},
	}
}

var columns = map[string]column{
	ColStationID:         textColumn(func(p *ChargePoint) *string { return &p.StationID }),
	ColPointID:           textColumn(func(p *ChargePoint) *string { return &p.PointID }),
	ColStationName:       textColumn(func(p *ChargePoint) *string { return &p.StationName }),
	ColAddress:           textColumn(func(p *ChargePoint) *string { return &p.Address }),
	ColPostalCode:        textColumn(func(p *ChargePoint) *string { return &p.PostalCode }),
	ColCommune:           textColumn(func(p *ChargePoint) *string { return &p.Commune }),
	ColDepartmentCode:    textColumn(func(p *ChargePoint) *string { return &p.DepartmentCode }),
	ColDepartmentName:    textColumn(func(p *ChargePoint) *string { return &p.DepartmentName }),
	ColRegionCode:        textColumn(func(p *ChargePoint) *string { return &p.RegionCode }),
	ColRegionName:        textColumn(func(p *ChargePoint) *string { return &p.RegionName }),
	ColLatitude:          floatColumn(func(p *ChargePoint) **float64 { return &p.Latitude }),
	ColLongitude:         floatColumn(func(p *ChargePoint) **float64 { return &p.Longitude }),
	ColAccessibility:     textColumn(func(p *ChargePoint) *string { return &p.AccessibilityText }),
	ColAccessConditions:  textColumn(func(p *ChargePoint) *string { return &p.AccessConditionsText }),
	ColHours:             textColumn(func(p *ChargePoint) *string { return &p.HoursText }),
	ColReservation:       boolColumn(func(p *ChargePoint) *bool { return &p.Reservation }),
	ColPaymentModalities: textColumn(func(p *ChargePoint) *string { return &p.PaymentModalitiesText }),
	ColStatusRaw:         textColumn(func(p *ChargePoint) *string { return &p.StatusRaw }),
	ColStatusNormalized:  textColumn(func(p *ChargePoint) *string { return (*string)(&p.Status) }),
	ColLastUpdate:        dateColumn(func(p *ChargePoint) **time.Time { return &p.LastUpdate }),
	ColCommissioning:     dateColumn(func(p *ChargePoint) **time.Time { return &p.Commissioning }),
	ColRatedPower:        floatColumn(func(p *ChargePoint) **float64 { return &p.RatedPowerKW }),
	ColConnectorType:     textColumn(func(p *ChargePoint) *string { return &p.ConnectorTypeText }),
	ColPowerCategory:     textColumn(func(p *ChargePoint) *string { return (*string)(&p.PowerCategory) }),
	ColIsDC:              boolColumn(func(p *ChargePoint) *bool { return &p.IsDC }),
	ColIs247:             boolColumn(func(p *ChargePoint) *bool { return &p.Is247 }),
	ColIsPublic:          boolColumn(func(p *ChargePoint) *bool { return &p.IsPublic }),
	ColOperatorName:      textColumn(func(p *ChargePoint) *string { return &p.OperatorName }),
	ColBrandName:         textColumn(func(p *ChargePoint) *string { return &p.BrandName }),
	ColNetworkName:       textColumn(func(p *ChargePoint) *string { return &p.NetworkName }),
	ColOwnerName:         textColumn(func(p *ChargePoint) *string { return &p.OwnerName }),
}

// IsCanonical reports whether name is one of the canonical columns.
func IsCanonical(name string) bool {
	_, ok := columns[name]
	return ok
}

// ColumnKind returns the storage kind of a column. Auxiliary columns are text.
func ColumnKind(name string) Kind {
	if c, ok := columns[name]; ok {
		return c.kind
	}
	return KindText
}

// Value returns the typed value of a column (string, float64, bool or
// time.Time), or nil when absent.
func (p *ChargePoint) Value(name string) any {
	if c, ok := columns[name]; ok {
		return c.get(p)
	}
	if s := p.Extra[name]; s != "" {
		return s
	}
	return nil
}

// SetValue assigns a typed value produced by ParseValue.
func (p *ChargePoint) SetValue(name string, v any) {
	if c, ok := columns[name]; ok {
		c.set(p, v)
		return
	}
	s, _ := v.(string)
	if s == "" {
		return
	}
	if p.Extra == nil {
		p.Extra = make(map[string]string)
	}
	p.Extra[name] = s
}

// ParseValue converts persisted text into the typed value for kind.
// Unparseable input yields nil, never an error.
func ParseValue(kind Kind, text string) any {
	text = strings.TrimSpace(text)
	switch kind {
	case KindFloat:
		if f := ParseNumber(text); f != nil {
			return *f
		}
		return nil
	case KindBool:
		return defaultTruthy.match(text)
	case KindDate:
		if t := ParseDate(text); t != nil {
			return *t
		}
		return nil
	default:
		if text == "" {
			return nil
		}
		return text
	}
}

// CleanTable is the canonical cleaned table: the ordered set of columns
// present in this run and one ChargePoint per row.
type CleanTable struct {
	Columns []string
	Points  []ChargePoint
}

// Len returns the number of rows.
func (t *CleanTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Points)
}

// Has reports whether column name is part of the table.
func (t *CleanTable) Has(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// WithPoints returns a table with the same columns and the given rows.
func (t *CleanTable) WithPoints(points []ChargePoint) *CleanTable {
	return &CleanTable{Columns: append([]string(nil), t.Columns...), Points: points}
}
