package ingest

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/02loveslollipop/irve-dashboard/internal/irve"
	"github.com/02loveslollipop/irve-dashboard/internal/table"
	"github.com/02loveslollipop/irve-dashboard/services/pipeline/internal/config"
	"github.com/02loveslollipop/irve-dashboard/services/pipeline/internal/models"
)

const export = `id_pdc_itinerance;adresse_station;puissance_nominale;latitude;longitude;horaires
FR1;1 Rue de Rivoli 75001 Paris;22;48.86;2.34;24/7
FR2;2 Rue du Louvre 75002 Paris;500;48.87;2.35;
FR3;Sans code;50;48.9;2.3;
FR4;3 Quai du Port 13001 Marseille;150;85;5.4;
`

type fakeSink struct {
	replaced *irve.CleanTable
	runs     []models.IngestRun
	failCopy bool
}

func (f *fakeSink) ReplacePoints(_ context.Context, t *irve.CleanTable) (int64, error) {
	if f.failCopy {
		return 0, errors.New("connection reset")
	}
	f.replaced = t
	return int64(t.Len()), nil
}

func (f *fakeSink) InsertRun(_ context.Context, run models.IngestRun) error {
	f.runs = append(f.runs, run)
	return nil
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	input := filepath.Join(dir, "irve.csv")
	require.NoError(t, os.WriteFile(input, []byte(export), 0o644))

	b := irve.DefaultBounds()
	return config.Config{
		InputPath:          input,
		OutputDir:          filepath.Join(dir, "out"),
		DepartmentRule:     irve.DepartmentNaive,
		DCPowerThresholdKW: 24,
		MaxPowerKW:         b.MaxPowerKW,
		LatMin:             irve.DefaultLatMin,
		LatMax:             irve.DefaultLatMax,
		LonMin:             irve.DefaultLonMin,
		LonMax:             irve.DefaultLonMax,
		DropMissingPostal:  true,
	}
}

func TestRun(t *testing.T) {
	cfg := testConfig(t)
	sink := &fakeSink{}

	res, err := Run(context.Background(), cfg, http.DefaultClient, sink)
	require.NoError(t, err)

	assert.Equal(t, 4, res.Run.RawRows)
	assert.Equal(t, 1, res.Run.DroppedPostal)
	assert.Equal(t, 1, res.Run.RemovedPower)
	assert.Equal(t, 1, res.Run.RemovedGeo)
	assert.Equal(t, 1, res.Run.CleanRows)
	assert.Equal(t, models.RunSucceeded, res.Run.Status)
	assert.Equal(t, int64(1), res.Stored)

	require.NotNil(t, sink.replaced)
	assert.Equal(t, "FR1", sink.replaced.Points[0].PointID)
	assert.True(t, sink.replaced.Points[0].Is247)
	require.Len(t, sink.runs, 1)
	assert.Equal(t, res.Run.ID, sink.runs[0].ID)

	for _, p := range res.Persisted {
		require.NoError(t, p.Err)
		loaded, err := table.Load(context.Background(), p.Path)
		require.NoError(t, err)
		assert.Equal(t, 1, loaded.Len())
	}
}

func TestRunDryRun(t *testing.T) {
	cfg := testConfig(t)
	cfg.DryRun = true
	sink := &fakeSink{}

	res, err := Run(context.Background(), cfg, http.DefaultClient, sink)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Table.Len())
	assert.Empty(t, res.Persisted)
	assert.Nil(t, sink.replaced)
	assert.Empty(t, sink.runs)

	_, err = os.Stat(cfg.OutputDir)
	assert.True(t, os.IsNotExist(err))
}

func TestRunKeepsMissingPostal(t *testing.T) {
	cfg := testConfig(t)
	cfg.DropMissingPostal = false

	res, err := Run(context.Background(), cfg, http.DefaultClient, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Run.DroppedPostal)
	assert.Equal(t, 2, res.Run.CleanRows)
}

func TestRunPersistFailure(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.OutputDir, []byte("not a dir"), 0o644))
	sink := &fakeSink{}

	res, err := Run(context.Background(), cfg, http.DefaultClient, sink)
	require.ErrorIs(t, err, ErrPersist)
	assert.Equal(t, models.RunFailed, res.Run.Status)
	require.Len(t, res.Persisted, 2)
	require.Len(t, sink.runs, 1)
	assert.NotEmpty(t, sink.runs[0].Error)
}

func TestRunSinkFailure(t *testing.T) {
	cfg := testConfig(t)
	sink := &fakeSink{failCopy: true}

	res, err := Run(context.Background(), cfg, http.DefaultClient, sink)
	require.Error(t, err)
	assert.Equal(t, models.RunPartial, res.Run.Status)
	for _, p := range res.Persisted {
		assert.NoError(t, p.Err)
	}
}

func TestRunMissingInput(t *testing.T) {
	cfg := testConfig(t)
	cfg.InputPath = filepath.Join(t.TempDir(), "missing.csv")

	_, err := Run(context.Background(), cfg, http.DefaultClient, nil)
	var stageErr *irve.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "read", stageErr.Stage)
}
