package irve

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadKeywords(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "keywords.yaml")
	require.NoError(t, os.WriteFile(path, []byte("public:\n  - public\n  - accès libre\n"), 0o644))

	kw, err := LoadKeywords(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"public", "accès libre"}, kw.Public)
	// untouched groups keep their defaults
	assert.Equal(t, DefaultKeywords().InService, kw.InService)

	cls := NewClassifier(kw)
	assert.True(t, cls.IsPublic("", "Accès libre"))
}

func TestLoadKeywordsErrors(t *testing.T) {
	t.Parallel()

	kw, err := LoadKeywords("")
	require.NoError(t, err)
	assert.Equal(t, DefaultKeywords(), kw)

	_, err = LoadKeywords(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	empty := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("maintenance: []\n"), 0o644))
	_, err = LoadKeywords(empty)
	assert.ErrorIs(t, err, errEmptyGroup)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("public: [unterminated\n"), 0o644))
	_, err = LoadKeywords(bad)
	assert.Error(t, err)
}

func TestFold(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "operation", fold("Opération"))
	assert.Equal(t, "libre acces", fold("Libre Accès"))
	assert.Equal(t, "24/7", fold("24/7"))
}

func TestShippedKeywordsMatchDefaults(t *testing.T) {
	t.Parallel()

	kw, err := LoadKeywords(filepath.Join("..", "..", "config", "keywords.yaml"))
	require.NoError(t, err)

	cls, def := NewClassifier(kw), NewClassifier(DefaultKeywords())
	for _, text := range []string{"Libre accès", "EN SERVICE", "Hors service", "24 heures", "Combo CCS", "Type 2", "operation"} {
		assert.Equal(t, def.IsPublic(text, ""), cls.IsPublic(text, ""), text)
		assert.Equal(t, def.NormalizeStatus(text), cls.NormalizeStatus(text), text)
		assert.Equal(t, def.Is247(text), cls.Is247(text), text)
		assert.Equal(t, def.IsDCConnector(text), cls.IsDCConnector(text), text)
	}
}
