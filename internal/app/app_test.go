package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"dgii_fiscal/internal/adapters/publisher"
	"dgii_fiscal/internal/config"
	"dgii_fiscal/internal/config/connections/sqlite"
	"dgii_fiscal/internal/fiscal/report"
	"dgii_fiscal/internal/services/importer"
	"dgii_fiscal/internal/services/importer/processors"
	"dgii_fiscal/internal/services/reports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func localConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	conn, err := sqlite.NewConnection(sqlite.ConnectionInfo{Path: filepath.Join(dir, "registry.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &config.Config{
		Settings: &config.Settings{
			RegistryDriver: config.DriverSQLite,
			LockDriver:     config.LockAuto,
			SourceDir:      dir,
			ReportsDir:     filepath.Join(dir, "out"),
			Import:         importer.Options{BatchSize: 2}.WithDefaults(),
		},
		SQLite: conn,
	}
}

func TestBuildLocalModeEndToEnd(t *testing.T) {
	cfg := localConfig(t)
	dir := cfg.Settings.SourceDir
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rnc.txt"), []byte(
		"101010632|MINISTERIO DE HACIENDA||ADMINISTRACION PUBLICA||||||01/01/1960|ACTIVO\n"+
			"short|line\n"+
			"131246796|FUNDACION SOL||ONG||||||02/02/2002|ACTIVO|\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sales.csv"), []byte(
		"counterparty_id,ncf,subtotal,tax,total,date\n00113918205,B0100000001,100,18,118,2024-03-01\n"), 0o644))

	a, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	assert.Nil(t, a.Journal)
	assert.Nil(t, a.Locker)
	assert.NotNil(t, a.Checkpoints)
	assert.IsType(t, &publisher.FilePublisher{}, a.Publisher)
	assert.NoError(t, a.Ping(context.Background()))

	res, err := a.Importer.Import(context.Background(), importer.Request{Type: processors.TypeTaxpayers, Source: "rnc.txt"})
	require.NoError(t, err)
	assert.Equal(t, importer.StatusDone, res.Status)
	assert.Equal(t, 2, res.Inserted)
	assert.Equal(t, 1, res.Malformed)
	assert.Equal(t, 2, res.Batches)

	tp, err := a.Store.Find(context.Background(), "00101010632")
	require.NoError(t, err)
	assert.EqualValues(t, "government", tp.Category)
	tp, err = a.Store.Find(context.Background(), "00131246796")
	require.NoError(t, err)
	assert.EqualValues(t, "non_profit", tp.Category)

	out, err := a.Reports.Generate(context.Background(), reports.Request{
		Kind: report.KindSales, RNC: "101010632", Period: "202403", Source: "sales.csv", Publish: true,
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cfg.Settings.ReportsDir, "DGII_F_607_101010632_202403.TXT"), out.Location)
	body, err := os.ReadFile(out.Location)
	require.NoError(t, err)
	assert.Equal(t, "00113918205|1|B0100000001||20240301|18.00|100.00", string(body))
}

func TestBuildRejectsPostgresLockWithoutPostgres(t *testing.T) {
	cfg := localConfig(t)
	cfg.Settings.LockDriver = config.LockPostgres
	_, err := Build(context.Background(), cfg)
	assert.Error(t, err)
}
