package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const export = "id_pdc_itinerance;adresse_station;puissance_nominale\nFR1;1 Rue, 75001 Paris;22\n"

func TestIsRemote(t *testing.T) {
	t.Parallel()

	assert.True(t, IsRemote("https://www.data.gouv.fr/irve.csv"))
	assert.True(t, IsRemote("HTTP://example.org/x"))
	assert.False(t, IsRemote("data/irve.csv"))
	assert.False(t, IsRemote("C:\\data\\irve.csv"))
	assert.False(t, IsRemote("https://"))
}

func TestFetchLocal(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "irve.csv")
	require.NoError(t, os.WriteFile(path, []byte(export), 0o644))

	raw, err := Fetch(context.Background(), http.DefaultClient, path)
	require.NoError(t, err)
	assert.Equal(t, []string{"id_pdc_itinerance", "adresse_station", "puissance_nominale"}, raw.Header)
	require.Len(t, raw.Rows, 1)

	_, err = Fetch(context.Background(), http.DefaultClient, filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestFetchRemote(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/irve.csv" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(export))
	}))
	defer srv.Close()

	raw, err := Fetch(context.Background(), srv.Client(), srv.URL+"/irve.csv")
	require.NoError(t, err)
	assert.Len(t, raw.Rows, 1)

	_, err = Fetch(context.Background(), srv.Client(), srv.URL+"/gone.csv")
	assert.ErrorContains(t, err, "unexpected status")
}

func TestFetchEmpty(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	_, err := Fetch(context.Background(), http.DefaultClient, path)
	assert.Error(t, err)
}
