package irve

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var postalCodeRE = regexp.MustCompile(`\b(\d{5})\b`)

// ExtractPostalCode returns the first standalone run of exactly five digits
// in text, or "" when there is none.
func ExtractPostalCode(text string) string {
	m := postalCodeRE.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

// DepartmentRule selects how a department code is derived from a postal code.
type DepartmentRule string

const (
	// DepartmentNaive takes the first two characters of the postal code.
	// Corsica yields "20" and overseas codes yield "97".
	DepartmentNaive DepartmentRule = "naive"
	// DepartmentINSEE maps Corsica to 2A/2B and overseas to three digits.
	DepartmentINSEE DepartmentRule = "insee"
)

// ParseDepartmentRule accepts "naive", "insee" or "" (naive).
func ParseDepartmentRule(s string) (DepartmentRule, bool) {
	switch DepartmentRule(strings.ToLower(strings.TrimSpace(s))) {
	case "", DepartmentNaive:
		return DepartmentNaive, true
	case DepartmentINSEE:
		return DepartmentINSEE, true
	default:
		return "", false
	}
}

// Derive returns the department code for a postal code, or "" when the
// postal code is absent.
func (r DepartmentRule) Derive(postal string) string {
	if len(postal) < 2 {
		return ""
	}
	if r == DepartmentINSEE {
		return departmentINSEE(postal)
	}
	return postal[:2]
}

func departmentINSEE(postal string) string {
	switch {
	case strings.HasPrefix(postal, "97") && len(postal) >= 3:
		return postal[:3]
	case strings.HasPrefix(postal, "20") && len(postal) >= 3:
		// 200xx and 201xx are Corse-du-Sud, 202xx and 206xx Haute-Corse.
		if postal[2] == '0' || postal[2] == '1' {
			return "2A"
		}
		return "2B"
	default:
		return postal[:2]
	}
}

// ParseNumber parses a decimal number, accepting a comma decimal separator.
// Empty, non-numeric, NaN and infinite inputs yield nil.
func ParseNumber(text string) *float64 {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if !strings.Contains(text, ".") {
		text = strings.Replace(text, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// ParsePower parses a rated power in kW and clamps negatives to zero.
func ParsePower(text string) *float64 {
	v := ParseNumber(text)
	if v == nil {
		return nil
	}
	kw := math.Max(0, *v)
	return &kw
}

// ClassifyPower maps a power in kW to its tier. Bin upper bounds are
// inclusive.
func ClassifyPower(kw *float64) PowerCategory {
	if kw == nil {
		return PowerUnknown
	}
	switch v := *kw; {
	case v <= 7:
		return PowerACSlow
	case v <= 22:
		return PowerACStandard
	case v <= 49:
		return PowerDCMedium
	case v <= 149:
		return PowerDCFast
	default:
		return PowerDCUltra
	}
}

// IsDCByPower is the fallback current-type rule when no connector column
// exists.
func IsDCByPower(kw *float64, threshold float64) bool {
	return kw != nil && *kw >= threshold
}

var dateLayouts = []string{
	DateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.000000",
	"2006-01-02 15:04:05-07:00",
	"02/01/2006",
	"2006/01/02",
}

// ParseDate parses ISO dates, ISO timestamps and dd/mm/yyyy. The result is
// truncated to the calendar day in UTC. Unparseable text yields nil.
func ParseDate(text string) *time.Time {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			return &d
		}
	}
	return nil
}

// Classifier applies the keyword-driven text rules. Build one per run with
// NewClassifier; it is safe for concurrent use.
type Classifier struct {
	truthy       tokenSet
	dc           matcher
	alwaysOpen   matcher
	public       matcher
	inService    matcher
	outOfService matcher
	maintenance  matcher
}

// NewClassifier folds the keyword lists once.
func NewClassifier(k Keywords) *Classifier {
	return &Classifier{
		truthy:       tokenSet(k.Truthy),
		dc:           newMatcher(k.DCConnector),
		alwaysOpen:   newMatcher(k.AlwaysOpen),
		public:       newMatcher(k.Public),
		inService:    newMatcher(k.InService),
		outOfService: newMatcher(k.OutOfService),
		maintenance:  newMatcher(k.Maintenance),
	}
}

// ParseBool is true iff the trimmed, lower-cased text is a truthy token.
func (c *Classifier) ParseBool(text string) bool {
	return c.truthy.match(text)
}

// IsDCConnector reports whether connector text names a DC connector.
func (c *Classifier) IsDCConnector(text string) bool {
	return c.dc.match(text)
}

// Is247 reports whether opening-hours text describes round-the-clock access.
func (c *Classifier) Is247(hours string) bool {
	return c.alwaysOpen.match(hours)
}

// IsPublic checks the concatenated accessibility and access-condition text.
func (c *Classifier) IsPublic(accessibility, conditions string) bool {
	return c.public.match(accessibility + " " + conditions)
}

// NormalizeStatus matches keyword groups in priority order: in service,
// out of service, maintenance.
func (c *Classifier) NormalizeStatus(raw string) Status {
	switch {
	case c.inService.match(raw):
		return StatusInService
	case c.outOfService.match(raw):
		return StatusOutOfService
	case c.maintenance.match(raw):
		return StatusMaintenance
	default:
		return StatusUnknown
	}
}

// NormalizeDepartmentCode zero-pads one-digit numeric codes and upper-cases
// the Corsican letters so codes join against the boundary reference.
func NormalizeDepartmentCode(code string) string {
	s := strings.ToUpper(strings.TrimSpace(code))
	if s == "2A" || s == "2B" {
		return s
	}
	if len(s) == 1 && s[0] >= '0' && s[0] <= '9' {
		return "0" + s
	}
	return s
}
