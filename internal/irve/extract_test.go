package irve

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestExtractPostalCode(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"single token", "12 Rue de Paris, 75010 Paris", "75010"},
		{"first match wins", "ZA 13290 Aix, CEDEX 13100", "13290"},
		{"no token", "Place du Marché", ""},
		{"six digits are not a code", "Lot 123456 Lyon", ""},
		{"four digits are not a code", "1234 Route", ""},
		{"empty", "", ""},
		{"code at start", "01000 Bourg-en-Bresse", "01000"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractPostalCode(tc.in))
		})
	}
}

func TestDepartmentRule(t *testing.T) {
	t.Parallel()

	cases := []struct {
		postal string
		naive  string
		insee  string
	}{
		{"75010", "75", "75"},
		{"01000", "01", "01"},
		{"20000", "20", "2A"},
		{"20137", "20", "2A"},
		{"20200", "20", "2B"},
		{"20600", "20", "2B"},
		{"97400", "97", "974"},
		{"97110", "97", "971"},
		{"", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.postal, func(t *testing.T) {
			assert.Equal(t, tc.naive, DepartmentNaive.Derive(tc.postal))
			assert.Equal(t, tc.insee, DepartmentINSEE.Derive(tc.postal))
		})
	}

	rule, ok := ParseDepartmentRule("")
	assert.True(t, ok)
	assert.Equal(t, DepartmentNaive, rule)
	rule, ok = ParseDepartmentRule(" INSEE ")
	assert.True(t, ok)
	assert.Equal(t, DepartmentINSEE, rule)
	_, ok = ParseDepartmentRule("region")
	assert.False(t, ok)
}

func TestParsePower(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want *float64
	}{
		{"150", ptr(150)},
		{"-5", ptr(0)},
		{"22,5", ptr(22.5)},
		{" 7.4 ", ptr(7.4)},
		{"", nil},
		{"n/a", nil},
		{"NaN", nil},
		{"Inf", nil},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got := ParsePower(tc.in)
			if tc.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tc.want, *got, 1e-9)
		})
	}
}

func TestClassifyPower(t *testing.T) {
	t.Parallel()

	cases := []struct {
		kw   *float64
		want PowerCategory
	}{
		{nil, PowerUnknown},
		{ptr(0), PowerACSlow},
		{ptr(7), PowerACSlow},
		{ptr(7.4), PowerACStandard},
		{ptr(22), PowerACStandard},
		{ptr(22.1), PowerDCMedium},
		{ptr(49), PowerDCMedium},
		{ptr(50), PowerDCFast},
		{ptr(149), PowerDCFast},
		{ptr(150), PowerDCUltra},
		{ptr(350), PowerDCUltra},
	}
	for _, tc := range cases {
		got := ClassifyPower(tc.kw)
		assert.Equal(t, tc.want, got)
		// re-classifying the same input is stable
		assert.Equal(t, got, ClassifyPower(tc.kw))
	}
}

func TestIsDCByPower(t *testing.T) {
	t.Parallel()

	assert.True(t, IsDCByPower(ptr(24), 24))
	assert.True(t, IsDCByPower(ptr(50), 24))
	assert.False(t, IsDCByPower(ptr(22), 24))
	assert.False(t, IsDCByPower(nil, 24))
}

func TestClassifierText(t *testing.T) {
	t.Parallel()
	cls := NewClassifier(DefaultKeywords())

	t.Run("bool", func(t *testing.T) {
		for _, in := range []string{"1", "true", "TRUE", " Vrai ", "oui", "yes"} {
			assert.True(t, cls.ParseBool(in), in)
		}
		for _, in := range []string{"", "0", "false", "non", "y", "oui!"} {
			assert.False(t, cls.ParseBool(in), in)
		}
	})

	t.Run("dc connector", func(t *testing.T) {
		for _, in := range []string{"CCS", "combo ccs", "Type 2, CHAdeMO", "dc"} {
			assert.True(t, cls.IsDCConnector(in), in)
		}
		for _, in := range []string{"", "Type 2", "E/F"} {
			assert.False(t, cls.IsDCConnector(in), in)
		}
	})

	t.Run("24/7", func(t *testing.T) {
		for _, in := range []string{"24/7", "Ouvert 24h/24 et 7j/7", "24 H sur 24", "Accessible 24 heures"} {
			assert.True(t, cls.Is247(in), in)
		}
		for _, in := range []string{"", "Mo-Fr 08:00-18:00", "lundi au vendredi"} {
			assert.False(t, cls.Is247(in), in)
		}
	})

	t.Run("public", func(t *testing.T) {
		assert.True(t, cls.IsPublic("Accès public", ""))
		assert.True(t, cls.IsPublic("", "Libre accès"))
		assert.True(t, cls.IsPublic("", "libre acces"))
		assert.False(t, cls.IsPublic("Réservé aux clients", "Accès réservé"))
		assert.False(t, cls.IsPublic("", ""))
	})

	t.Run("status", func(t *testing.T) {
		assert.Equal(t, StatusInService, cls.NormalizeStatus("En service"))
		assert.Equal(t, StatusInService, cls.NormalizeStatus("En opération"))
		assert.Equal(t, StatusOutOfService, cls.NormalizeStatus("Hors service"))
		assert.Equal(t, StatusOutOfService, cls.NormalizeStatus("En panne"))
		assert.Equal(t, StatusMaintenance, cls.NormalizeStatus("Maintenance"))
		assert.Equal(t, StatusUnknown, cls.NormalizeStatus("en travaux"))
		assert.Equal(t, StatusUnknown, cls.NormalizeStatus(""))
	})
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	want := time.Date(2023, 4, 17, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2023-04-17", "2023-04-17T10:30:00Z", "2023-04-17 10:30:00", "17/04/2023", "2023-04-17T10:30:00+02:00"} {
		got := ParseDate(in)
		require.NotNil(t, got, in)
		assert.True(t, want.Equal(*got), in)
	}
	assert.Nil(t, ParseDate(""))
	assert.Nil(t, ParseDate("not a date"))
	assert.Nil(t, ParseDate("2023-13-45"))
}

func TestParseValue(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 22.0, ParseValue(KindFloat, "22"))
	assert.Nil(t, ParseValue(KindFloat, "x"))
	assert.Equal(t, true, ParseValue(KindBool, "true"))
	assert.Equal(t, false, ParseValue(KindBool, ""))
	assert.Equal(t, "abc", ParseValue(KindText, " abc "))
	assert.Nil(t, ParseValue(KindText, "  "))
	assert.Equal(t, time.Date(2022, 1, 2, 0, 0, 0, 0, time.UTC), ParseValue(KindDate, "2022-01-02"))
}

func TestNormalizeDepartmentCode(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"1":   "01",
		"01":  "01",
		"75":  "75",
		"2a":  "2A",
		" 2B": "2B",
		"974": "974",
		"":    "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeDepartmentCode(in), in)
	}
}
