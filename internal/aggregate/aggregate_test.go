package aggregate

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/02loveslollipop/irve-dashboard/internal/irve"
)

func kw(v float64) *float64 { return &v }

func day(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

var allColumns = []string{
	irve.ColPointID, irve.ColAddress, irve.ColPostalCode, irve.ColDepartmentCode,
	irve.ColLatitude, irve.ColLongitude, irve.ColRatedPower, irve.ColPowerCategory,
	irve.ColIsDC, irve.ColIs247, irve.ColIsPublic, irve.ColStatusNormalized,
	irve.ColOperatorName, irve.ColCommissioning,
}

func point(id, dept, op, addr string, power *float64, dc, open bool, commissioned *time.Time) irve.ChargePoint {
	return irve.ChargePoint{
		PointID:        id,
		Address:        addr,
		PostalCode:     dept + "000",
		DepartmentCode: dept,
		Latitude:       kw(45),
		Longitude:      kw(3),
		RatedPowerKW:   power,
		PowerCategory:  irve.ClassifyPower(power),
		IsDC:           dc,
		Is247:          open,
		IsPublic:       true,
		Status:         irve.StatusInService,
		OperatorName:   op,
		Commissioning:  commissioned,
	}
}

func fixture() *irve.CleanTable {
	return &irve.CleanTable{
		Columns: allColumns,
		Points: []irve.ChargePoint{
			point("1", "75", "Izivia", "1 rue A", kw(22), false, true, day(2021, 1, 15)),
			point("2", "75", "Izivia", "1 rue A", kw(150), true, true, day(2021, 3, 2)),
			point("3", "75", "Tesla", "2 rue B", kw(250), true, false, day(2021, 3, 20)),
			point("4", "13", "Tesla", "3 rue C", kw(7), false, false, day(2020, 6, 1)),
			point("5", "13", "Ionity", "4 rue D", kw(350), true, true, nil),
			point("6", "01", "Ionity", "5 rue E", nil, false, false, day(2021, 2, 10)),
		},
	}
}

func TestComputeKPIs(t *testing.T) {
	t.Parallel()

	k := ComputeKPIs(fixture())
	assert.Equal(t, 6, k.Points)
	assert.Equal(t, 5, k.Stations)
	assert.Equal(t, 1.2, k.SocketsPerStation)
	require.NotNil(t, k.DCSharePct)
	assert.Equal(t, 50.0, *k.DCSharePct)
	require.NotNil(t, k.Always247SharePct)
	assert.Equal(t, 50.0, *k.Always247SharePct)
	require.NotNil(t, k.FastDCSharePct)
	assert.Equal(t, 50.0, *k.FastDCSharePct)
	require.NotNil(t, k.AvgPowerKW)
	assert.Equal(t, 155.8, *k.AvgPowerKW)
	assert.Equal(t, 100.0, *k.PublicSharePct)
}

func TestComputeKPIsEmptyAndMissingColumns(t *testing.T) {
	t.Parallel()

	k := ComputeKPIs(&irve.CleanTable{Columns: allColumns})
	assert.Equal(t, 0, k.Points)
	assert.Nil(t, k.DCSharePct)
	assert.Nil(t, k.AvgPowerKW)

	bare := &irve.CleanTable{
		Columns: []string{irve.ColIs247, irve.ColIsPublic},
		Points:  []irve.ChargePoint{{Is247: true}, {}},
	}
	k = ComputeKPIs(bare)
	assert.Nil(t, k.DCSharePct)
	assert.Nil(t, k.FastDCSharePct)
	require.NotNil(t, k.Always247SharePct)
	assert.Equal(t, 50.0, *k.Always247SharePct)
}

func TestFilter(t *testing.T) {
	t.Parallel()

	tbl := fixture()
	ids := func(t *irve.CleanTable) []string {
		var out []string
		for _, p := range t.Points {
			out = append(out, p.PointID)
		}
		return out
	}

	assert.Equal(t, []string{"1", "2", "3", "4", "5", "6"}, ids(Filter(tbl, Criteria{})))
	assert.Equal(t, []string{"4", "5", "6"}, ids(Filter(tbl, Criteria{Departments: []string{"13", "1"}})))
	assert.Equal(t, []string{"3", "4"}, ids(Filter(tbl, Criteria{Operators: []string{"Tesla"}})))
	assert.Equal(t, []string{"2", "3", "5"}, ids(Filter(tbl, Criteria{Current: CurrentDC})))
	assert.Equal(t, []string{"1", "4", "6"}, ids(Filter(tbl, Criteria{Current: CurrentAC})))
	assert.Equal(t, []string{"1", "2", "5"}, ids(Filter(tbl, Criteria{Only247: true})))
	assert.Equal(t, []string{"2", "3"}, ids(Filter(tbl, Criteria{From: day(2021, 3, 1), To: day(2021, 12, 31)})))
	assert.Equal(t, []string{"1", "4"}, ids(Filter(tbl, Criteria{MaxPowerKW: kw(22)})))
	assert.Equal(t, []string{"3", "5"}, ids(Filter(tbl, Criteria{MinPowerKW: kw(200), MaxPowerKW: kw(400)})))

	// the source table is untouched
	assert.Equal(t, 6, tbl.Len())
}

func TestParseCurrentType(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]CurrentType{"": CurrentAll, "ALL": CurrentAll, "dc": CurrentDC, " Ac ": CurrentAC} {
		got, ok := ParseCurrentType(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseCurrentType("hybrid")
	assert.False(t, ok)
}

func TestRankings(t *testing.T) {
	t.Parallel()

	tbl := fixture()
	assert.Equal(t, []Count{{"75", 3}, {"13", 2}, {"01", 1}}, TopDepartments(tbl, 15))
	assert.Equal(t, []Count{{"75", 3}, {"13", 2}}, TopDepartments(tbl, 2))
	// ties break on label
	assert.Equal(t, []Count{{"Ionity", 2}, {"Izivia", 2}, {"Tesla", 2}}, TopOperators(tbl, 10))
}

func TestDCShareByDepartment(t *testing.T) {
	t.Parallel()

	tbl := fixture()
	shares := DCShareByDepartment(tbl, 2, 20)
	require.Len(t, shares, 2)
	assert.Equal(t, DCShare{Department: "75", Points: 3, DC: 2, SharePct: 66.7}, shares[0])
	assert.Equal(t, DCShare{Department: "13", Points: 2, DC: 1, SharePct: 50}, shares[1])

	// nobody reaches the threshold: fall back to every department
	shares = DCShareByDepartment(tbl, 20, 20)
	require.Len(t, shares, 3)
	assert.Equal(t, "01", shares[2].Department)
}

func TestPeoplePerCharger(t *testing.T) {
	t.Parallel()

	pop := DefaultPopulation()
	assert.Equal(t, 2125000, pop["75"])
	assert.Equal(t, 177000, pop["2A"])
	assert.Equal(t, 865000, pop["974"])

	tbl := fixture()
	tbl.Points = append(tbl.Points, point("7", "20", "Corsica", "6 rue F", kw(22), false, false, nil))
	cov := PeoplePerCharger(tbl, pop)
	// the naive "20" code has no population entry and is dropped
	require.Len(t, cov, 3)
	assert.Equal(t, "13", cov[0].Department)
	assert.Equal(t, 1021500.0, cov[0].PeoplePerCharger)
	assert.Equal(t, "75", cov[1].Department)
	assert.Equal(t, 708333.0, cov[1].PeoplePerCharger)
	assert.Equal(t, "01", cov[2].Department)
}

func TestReadPopulation(t *testing.T) {
	t.Parallel()

	pop, err := ReadPopulation(strings.NewReader("department_code,population\n1,100\n2a,50\n"))
	require.NoError(t, err)
	assert.Equal(t, Population{"01": 100, "2A": 50}, pop)

	_, err = ReadPopulation(strings.NewReader("department_code,population\n01,many\n"))
	assert.Error(t, err)
}

func TestMixes(t *testing.T) {
	t.Parallel()

	tbl := fixture()
	assert.Equal(t, []Count{{LabelAC, 3}, {LabelDC, 3}}, CurrentMix(tbl))
	assert.Equal(t, []Count{{LabelAlwaysOpen, 3}, {LabelRestricted, 3}}, AccessMix(tbl))

	noDC := &irve.CleanTable{Columns: []string{irve.ColIs247}, Points: []irve.ChargePoint{{}}}
	assert.Nil(t, CurrentMix(noDC))
	assert.Equal(t, []Count{{LabelRestricted, 1}, {LabelAlwaysOpen, 0}}, AccessMix(noDC))
}

func TestPowerDistributions(t *testing.T) {
	t.Parallel()

	tbl := fixture()
	hist := PowerHistogram(tbl)
	counts := map[string]int{}
	for _, b := range hist {
		counts[b.Label] = b.Count
	}
	assert.Equal(t, map[string]int{"<7": 1, "7–22": 1, "22–50": 0, "50–150": 1, "150–300": 1, "≥300": 1}, counts)
	assert.Equal(t, "<7", hist[0].Label)

	_, err := json.Marshal(hist)
	assert.NoError(t, err)

	cats := PowerCategoryCounts(tbl)
	require.Len(t, cats, len(irve.PowerCategories))
	byLabel := map[string]int{}
	for _, c := range cats {
		byLabel[c.Label] = c.Count
	}
	assert.Equal(t, 1, byLabel[string(irve.PowerACSlow)])
	assert.Equal(t, 1, byLabel[string(irve.PowerACStandard)])
	assert.Equal(t, 0, byLabel[string(irve.PowerDCFast)])
	assert.Equal(t, 3, byLabel[string(irve.PowerDCUltra)])
	assert.Equal(t, 1, byLabel[string(irve.PowerUnknown)])
}

func TestDescribePower(t *testing.T) {
	t.Parallel()

	s, ok := DescribePower(fixture())
	require.True(t, ok)
	assert.Equal(t, 5, s.Count)
	assert.Equal(t, 7.0, s.Min)
	assert.Equal(t, 350.0, s.Max)
	assert.InDelta(t, 155.8, s.Mean, 1e-9)
	assert.Greater(t, s.Std, 0.0)
	assert.True(t, s.Min <= s.Q1 && s.Q1 <= s.Median && s.Median <= s.Q3 && s.Q3 <= s.Max)

	_, ok = DescribePower(&irve.CleanTable{})
	assert.False(t, ok)
}

func TestMonthlyInstallations(t *testing.T) {
	t.Parallel()

	months := MonthlyInstallations(fixture(), DefaultTimelineStart)
	assert.Equal(t, []MonthCount{
		{"2021-01", 1},
		{"2021-02", 1},
		{"2021-03", 2},
	}, months)

	// before the start everything is cut
	assert.Nil(t, MonthlyInstallations(fixture(), time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)))

	// falls back to the last update date
	tbl := &irve.CleanTable{
		Columns: []string{irve.ColLastUpdate},
		Points: []irve.ChargePoint{
			{LastUpdate: day(2021, 1, 3)},
			{LastUpdate: day(2021, 3, 3)},
		},
	}
	assert.Equal(t, []MonthCount{{"2021-01", 1}, {"2021-02", 0}, {"2021-03", 1}}, MonthlyInstallations(tbl, DefaultTimelineStart))
	assert.Nil(t, MonthlyInstallations(&irve.CleanTable{}, DefaultTimelineStart))
}

func TestMapPoints(t *testing.T) {
	t.Parallel()

	tbl := fixture()
	tbl.Points[5].Latitude = nil
	all := MapPoints(tbl, 0)
	assert.Len(t, all, 5)

	sample := MapPoints(tbl, 2)
	require.Len(t, sample, 2)
	assert.Equal(t, "1", sample[0].PointID)
	assert.Equal(t, "3", sample[1].PointID)
}

func TestMissingValuesAndDuplicates(t *testing.T) {
	t.Parallel()

	tbl := fixture()
	rep := MissingValues(tbl)
	require.Len(t, rep.Columns, len(allColumns))
	assert.Equal(t, irve.ColRatedPower, rep.Columns[0].Column)
	assert.Equal(t, 1, rep.Columns[0].Missing)
	assert.Equal(t, 16.7, rep.Columns[0].Pct)
	assert.Equal(t, 2, rep.Incomplete)
	assert.Equal(t, len(allColumns)-2, rep.Complete)

	assert.Equal(t, 0, DuplicateRows(tbl))
	tbl.Points = append(tbl.Points, tbl.Points[0])
	assert.Equal(t, 1, DuplicateRows(tbl))
}
