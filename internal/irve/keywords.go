package irve

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Keywords holds the locale-specific token lists used by the text
// classifiers. Matching happens on lower-cased, accent-folded text.
type Keywords struct {
	Truthy       []string `yaml:"truthy"`
	DCConnector  []string `yaml:"dc_connector"`
	AlwaysOpen   []string `yaml:"always_open"`
	Public       []string `yaml:"public"`
	InService    []string `yaml:"in_service"`
	OutOfService []string `yaml:"out_of_service"`
	Maintenance  []string `yaml:"maintenance"`
}

// DefaultKeywords returns the French token lists of the IRVE registry.
func DefaultKeywords() Keywords {
	return Keywords{
		Truthy:       []string{"1", "true", "vrai", "oui", "yes"},
		DCConnector:  []string{"DC", "CCS", "Combo", "CHAdeMO"},
		AlwaysOpen:   []string{"24/7", "24h", "24 h", "24 heures"},
		Public:       []string{"public", "libre acces", "libre accès"},
		InService:    []string{"en service", "disponible", "opération", "operation"},
		OutOfService: []string{"hors service", "panne", "indisponible"},
		Maintenance:  []string{"maintenance"},
	}
}

var defaultTruthy = tokenSet(DefaultKeywords().Truthy)

// LoadKeywords reads a YAML keyword file. Lists missing from the file keep
// their defaults.
func LoadKeywords(path string) (Keywords, error) {
	kw := DefaultKeywords()
	if path == "" {
		return kw, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return kw, fmt.Errorf("read keywords: %w", err)
	}
	if err := yaml.Unmarshal(raw, &kw); err != nil {
		return kw, fmt.Errorf("parse keywords %s: %w", path, err)
	}
	if err := kw.Validate(); err != nil {
		return kw, fmt.Errorf("keywords %s: %w", path, err)
	}
	return kw, nil
}

// Validate rejects empty keyword groups.
func (k Keywords) Validate() error {
	groups := map[string][]string{
		"truthy":         k.Truthy,
		"dc_connector":   k.DCConnector,
		"always_open":    k.AlwaysOpen,
		"public":         k.Public,
		"in_service":     k.InService,
		"out_of_service": k.OutOfService,
		"maintenance":    k.Maintenance,
	}
	for name, list := range groups {
		if len(list) == 0 {
			return fmt.Errorf("%s: %w", name, errEmptyGroup)
		}
	}
	return nil
}

var errEmptyGroup = errors.New("keyword group is empty")

// fold lower-cases s and strips combining marks so "Opération" matches
// "operation".
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

type tokenSet []string

func (ts tokenSet) match(text string) bool {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return false
	}
	for _, tok := range ts {
		if strings.ToLower(tok) == text {
			return true
		}
	}
	return false
}

// matcher holds folded keywords for substring matching.
type matcher []string

func newMatcher(keywords []string) matcher {
	m := make(matcher, 0, len(keywords))
	for _, kw := range keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			m = append(m, fold(kw))
		}
	}
	return m
}

// match reports whether the folded text contains any keyword.
func (m matcher) match(text string) bool {
	if strings.TrimSpace(text) == "" {
		return false
	}
	folded := fold(text)
	for _, kw := range m {
		if strings.Contains(folded, kw) {
			return true
		}
	}
	return false
}
