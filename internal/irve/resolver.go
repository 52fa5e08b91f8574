package irve

import "strings"

// Resolve finds the header column for a logical field. Candidates are tried
// in priority order, first as exact case-insensitive names, then as
// case-insensitive substrings of a header name.
func Resolve(columns []string, candidates []string) (string, bool) {
	if name, ok := ResolveExact(columns, candidates); ok {
		return name, true
	}
	for _, cand := range candidates {
		needle := strings.ToLower(strings.TrimSpace(cand))
		if needle == "" {
			continue
		}
		for _, col := range columns {
			if strings.Contains(strings.ToLower(col), needle) {
				return col, true
			}
		}
	}
	return "", false
}

// ResolveExact is Resolve without the loose pass.
func ResolveExact(columns []string, candidates []string) (string, bool) {
	for _, cand := range candidates {
		cand = strings.TrimSpace(cand)
		if cand == "" {
			continue
		}
		for _, col := range columns {
			if strings.EqualFold(strings.TrimSpace(col), cand) {
				return col, true
			}
		}
	}
	return "", false
}

// Field maps a canonical column to its source-name candidates.
type Field struct {
	Column     string
	Candidates []string
}

// Fields lists the passthrough and derivation sources of the canonical
// columns. Derived columns resolve through their inputs.
var Fields = []Field{
	{ColStationID, []string{"id_station_itinerance", "id_station"}},
	{ColPointID, []string{"id_pdc_itinerance", "id_pdc"}},
	{ColStationName, []string{"nom_station"}},
	{ColAddress, []string{"adresse_station"}},
	{ColPostalCode, []string{"code_postal", "consolidated_code_postal"}},
	{ColCommune, []string{"nom_commune", "consolidated_commune"}},
	{ColDepartmentName, []string{"nom_departement"}},
	{ColRegionCode, []string{"code_region"}},
	{ColRegionName, []string{"nom_region"}},
	{ColAccessibility, []string{"accessibilite"}},
	{ColAccessConditions, []string{"conditions_acces", "condition_acces"}},
	{ColHours, []string{"horaires"}},
	{ColReservation, []string{"reservation"}},
	{ColPaymentModalities, []string{"modalites_paiement"}},
	{ColStatusRaw, []string{"etat_pdc", "statut_pdc"}},
	{ColLastUpdate, []string{"date_maj", "last_update"}},
	{ColCommissioning, []string{"date_mise_en_service"}},
	{ColRatedPower, []string{"puissance_nominale", "puissance_kw", "puissance"}},
	{ColConnectorType, []string{"connecteur", "type_prise"}},
	{ColOperatorName, []string{"nom_operateur", "operateur"}},
	{ColBrandName, []string{"nom_enseigne", "enseigne"}},
	{ColNetworkName, []string{"reseau"}},
	{ColOwnerName, []string{"proprietaire", "nom_amenageur"}},
}

// Coordinate source candidates. Fallbacks resolve by exact name only.
var (
	LatitudeCandidates          = []string{"latitude", "y_latitude", "ylat", "lat"}
	LongitudeCandidates         = []string{"longitude", "x_longitude", "xlong", "lon"}
	FallbackLatitudeCandidates  = []string{"consolidated_latitude", "consolidated_lagitude"}
	FallbackLongitudeCandidates = []string{"consolidated_longitude"}
	CoordinatePairCandidates    = []string{"coordonneesxy", "coordonnees_xy"}
)

// AuxiliaryColumns are source columns kept verbatim after the canonical block.
var AuxiliaryColumns = []string{
	"nbre_pdc", "prise_type_2", "prise_type_combo_ccs", "prise_type_chademo",
	"prise_type_ef", "gratuit", "paiement_acte", "paiement_cb", "type_charge",
	"format_recharge", "consolidated_commune", "consolidated_code_postal", "source",
}

// WorkingColumns are source columns consumed by derivations and never kept.
var WorkingColumns = []string{"code_insee_commune", "coordonneesxy"}

// Schema records which logical fields exist in one raw table. It is built
// once per run and threaded through every step.
type Schema struct {
	Sources     map[string]string `json:"sources"`
	Coordinates CoordinateSources `json:"coordinates"`
	Auxiliary   []string          `json:"auxiliary"`
	Dropped     []string          `json:"dropped"`
}

// Source returns the header column backing a canonical field.
func (s Schema) Source(field string) (string, bool) {
	name, ok := s.Sources[field]
	return name, ok
}

// Has reports whether a canonical field has a source column.
func (s Schema) Has(field string) bool {
	_, ok := s.Sources[field]
	return ok
}

// ResolveSchema resolves every field against the header.
func ResolveSchema(header []string, fields []Field) Schema {
	s := Schema{Sources: make(map[string]string, len(fields))}
	for _, f := range fields {
		if name, ok := Resolve(header, f.Candidates); ok {
			s.Sources[f.Column] = name
		}
	}

	coords := CoordinateSources{}
	coords.Latitude, _ = Resolve(header, LatitudeCandidates)
	coords.Longitude, _ = Resolve(header, LongitudeCandidates)
	for _, cand := range FallbackLatitudeCandidates {
		if name, ok := ResolveExact(header, []string{cand}); ok && name != coords.Latitude {
			coords.FallbackLatitude = append(coords.FallbackLatitude, name)
		}
	}
	for _, cand := range FallbackLongitudeCandidates {
		if name, ok := ResolveExact(header, []string{cand}); ok && name != coords.Longitude {
			coords.FallbackLongitude = append(coords.FallbackLongitude, name)
		}
	}
	coords.Pair, _ = ResolveExact(header, CoordinatePairCandidates)
	s.Coordinates = coords

	for _, aux := range AuxiliaryColumns {
		if name, ok := ResolveExact(header, []string{aux}); ok {
			s.Auxiliary = append(s.Auxiliary, name)
		}
	}

	dropped := append([]string{}, WorkingColumns...)
	dropped = append(dropped, FallbackLatitudeCandidates...)
	dropped = append(dropped, FallbackLongitudeCandidates...)
	for _, w := range dropped {
		if name, ok := ResolveExact(header, []string{w}); ok {
			s.Dropped = append(s.Dropped, name)
		}
	}
	return s
}
