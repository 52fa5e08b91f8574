package aggregate

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/02loveslollipop/irve-dashboard/internal/irve"
)

// TopDepartments ranks departments by number of points.
func TopDepartments(t *irve.CleanTable, n int) []Count {
	return Top(CountBy(t, func(p *irve.ChargePoint) string { return p.DepartmentCode }), n)
}

// TopOperators ranks operators by number of points.
func TopOperators(t *irve.CleanTable, n int) []Count {
	return Top(CountBy(t, func(p *irve.ChargePoint) string { return p.OperatorName }), n)
}

// DepartmentCounts returns point counts keyed by normalized department code.
func DepartmentCounts(t *irve.CleanTable) map[string]int {
	out := make(map[string]int)
	for i := range t.Points {
		if code := irve.NormalizeDepartmentCode(t.Points[i].DepartmentCode); code != "" {
			out[code]++
		}
	}
	return out
}

// DCShare is the fast-charging share of one department.
type DCShare struct {
	Department string  `json:"department"`
	Points     int     `json:"points"`
	DC         int     `json:"dc"`
	SharePct   float64 `json:"share_pct"`
}

// DCShareByDepartment ranks departments by DC share, keeping those with at
// least minPoints points. When none qualifies every department is ranked.
func DCShareByDepartment(t *irve.CleanTable, minPoints, n int) []DCShare {
	if !t.Has(irve.ColIsDC) {
		return nil
	}
	byDept := make(map[string]*DCShare)
	for i := range t.Points {
		p := &t.Points[i]
		if p.DepartmentCode == "" {
			continue
		}
		s, ok := byDept[p.DepartmentCode]
		if !ok {
			s = &DCShare{Department: p.DepartmentCode}
			byDept[p.DepartmentCode] = s
		}
		s.Points++
		if p.IsDC {
			s.DC++
		}
	}

	all := make([]DCShare, 0, len(byDept))
	for _, s := range byDept {
		s.SharePct = pct(s.DC, s.Points)
		all = append(all, *s)
	}
	qualified := make([]DCShare, 0, len(all))
	for _, s := range all {
		if s.Points >= minPoints {
			qualified = append(qualified, s)
		}
	}
	if len(qualified) == 0 {
		qualified = all
	}
	sort.SliceStable(qualified, func(i, j int) bool {
		if qualified[i].SharePct != qualified[j].SharePct {
			return qualified[i].SharePct > qualified[j].SharePct
		}
		return qualified[i].Department < qualified[j].Department
	})
	return Top(qualified, n)
}

// Population maps a department code to its number of inhabitants.
type Population map[string]int

//go:embed population.csv
var populationCSV []byte

// DefaultPopulation returns the bundled department population estimates.
func DefaultPopulation() Population {
	pop, err := ReadPopulation(bytes.NewReader(populationCSV))
	if err != nil {
		panic(fmt.Sprintf("embedded population table: %v", err))
	}
	return pop
}

// LoadPopulation reads a population CSV from disk.
func LoadPopulation(path string) (Population, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open population %s: %w", path, err)
	}
	defer f.Close()
	return ReadPopulation(f)
}

// ReadPopulation parses "department_code,population" rows after a header.
func ReadPopulation(r io.Reader) (Population, error) {
	rows, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read population: %w", err)
	}
	pop := make(Population, len(rows))
	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(row[1]))
		if err != nil {
			return nil, fmt.Errorf("population row %d: %w", i+1, err)
		}
		pop[irve.NormalizeDepartmentCode(row[0])] = n
	}
	return pop, nil
}

// Coverage is the number of inhabitants per charging point in a department.
type Coverage struct {
	Department       string  `json:"department"`
	Points           int     `json:"points"`
	Population       int     `json:"population"`
	PeoplePerCharger float64 `json:"people_per_charger"`
}

// PeoplePerCharger computes coverage for departments present in both the
// table and pop, least equipped first.
func PeoplePerCharger(t *irve.CleanTable, pop Population) []Coverage {
	counts := DepartmentCounts(t)
	out := make([]Coverage, 0, len(counts))
	for code, n := range counts {
		inhabitants, ok := pop[code]
		if !ok {
			continue
		}
		out = append(out, Coverage{
			Department:       code,
			Points:           n,
			Population:       inhabitants,
			PeoplePerCharger: math.Round(float64(inhabitants) / float64(n)),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PeoplePerCharger != out[j].PeoplePerCharger {
			return out[i].PeoplePerCharger > out[j].PeoplePerCharger
		}
		return out[i].Department < out[j].Department
	})
	return out
}
