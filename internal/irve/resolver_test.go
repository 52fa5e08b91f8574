package irve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name       string
		columns    []string
		candidates []string
		want       string
		found      bool
	}{
		{
			name:       "exact case-insensitive",
			columns:    []string{"ID_PDC", "Puissance_Nominale"},
			candidates: []string{"puissance_nominale"},
			want:       "Puissance_Nominale",
			found:      true,
		},
		{
			name:       "exact beats loose",
			columns:    []string{"puissance_nominale_kw", "puissance"},
			candidates: []string{"puissance_nominale", "puissance"},
			want:       "puissance",
			found:      true,
		},
		{
			name:       "candidate priority",
			columns:    []string{"statut_pdc", "etat_pdc"},
			candidates: []string{"etat_pdc", "statut_pdc"},
			want:       "etat_pdc",
			found:      true,
		},
		{
			name:       "loose substring",
			columns:    []string{"id", "horaires_ouverture"},
			candidates: []string{"horaires"},
			want:       "horaires_ouverture",
			found:      true,
		},
		{
			name:       "loose follows candidate order",
			columns:    []string{"x_puissance", "puissance_nominale_kw"},
			candidates: []string{"puissance_nominale", "puissance"},
			want:       "puissance_nominale_kw",
			found:      true,
		},
		{
			name:       "absent",
			columns:    []string{"a", "b"},
			candidates: []string{"horaires"},
			found:      false,
		},
		{
			name:       "no columns",
			candidates: []string{"horaires"},
			found:      false,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Resolve(tc.columns, tc.candidates)
			assert.Equal(t, tc.found, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolveSchema(t *testing.T) {
	t.Parallel()

	header := []string{
		"id_station_itinerance", "adresse_station", "code_insee_commune",
		"consolidated_longitude", "consolidated_latitude", "consolidated_lagitude",
		"coordonneesXY", "puissance_nominale", "statut_pdc", "horaires", "gratuit",
	}
	s := ResolveSchema(header, Fields)

	src, ok := s.Source(ColStationID)
	assert.True(t, ok)
	assert.Equal(t, "id_station_itinerance", src)
	assert.True(t, s.Has(ColRatedPower))
	assert.True(t, s.Has(ColStatusRaw))
	assert.False(t, s.Has(ColConnectorType))

	// "latitude" loosely resolves to the first consolidated column.
	assert.Equal(t, "consolidated_latitude", s.Coordinates.Latitude)
	assert.Equal(t, []string{"consolidated_lagitude"}, s.Coordinates.FallbackLatitude)
	assert.Equal(t, "consolidated_longitude", s.Coordinates.Longitude)
	assert.Empty(t, s.Coordinates.FallbackLongitude)
	assert.Equal(t, "coordonneesXY", s.Coordinates.Pair)

	assert.Equal(t, []string{"gratuit"}, s.Auxiliary)
	assert.ElementsMatch(t, []string{
		"code_insee_commune", "coordonneesXY", "consolidated_latitude",
		"consolidated_lagitude", "consolidated_longitude",
	}, s.Dropped)
}
