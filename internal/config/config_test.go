package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phonefinder/internal/engine"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, SourceCSV, cfg.Catalog.Source)
	assert.Equal(t, "data/phones_clean.csv", cfg.Catalog.CSVPath)
	assert.True(t, cfg.Catalog.EstimatePrices)
	assert.Equal(t, 3, cfg.Recommend.DefaultTopN)
	assert.Equal(t, 10, cfg.Recommend.MaxTopN)
	assert.False(t, cfg.Extractor.UseLLM)
	assert.Equal(t, engine.DefaultParams(), cfg.LadderParams())
	assert.Empty(t, cfg.DatabaseDriver())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CATALOG_SOURCE", "SQLite")
	t.Setenv("SQLITE_PATH", "/tmp/phones.db")
	t.Setenv("LADDER_MIN_RESULTS", "5")
	t.Setenv("LADDER_BUDGET_RELAX", "1.25")
	t.Setenv("USE_LLM", "true")
	t.Setenv("RECOMMEND_TOP_N", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, SourceSQLite, cfg.Catalog.Source)
	assert.Equal(t, SourceSQLite, cfg.DatabaseDriver())
	assert.Equal(t, "/tmp/phones.db", cfg.DatabaseDSN())
	assert.Equal(t, 5, cfg.LadderParams().MinResults)
	assert.InDelta(t, 1.25, cfg.LadderParams().BudgetRelaxFactor, 1e-9)
	assert.True(t, cfg.Extractor.UseLLM)
	assert.Equal(t, 3, cfg.Recommend.DefaultTopN, "invalid values fall back to defaults")
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]map[string]string{
		"unknown source":    {"CATALOG_SOURCE": "mongo"},
		"sqlite needs path": {"CATALOG_SOURCE": "sqlite"},
		"bad driver":        {"DB_DRIVER": "mysql"},
		"bad top n":         {"RECOMMEND_TOP_N": "20", "RECOMMEND_MAX_TOP_N": "10"},
		"bad ladder":        {"LADDER_BATTERY_RELAX": "1.5"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestDatabaseDriver(t *testing.T) {
	cfg := &Config{Catalog: CatalogConfig{Source: SourceCSV}}
	assert.Empty(t, cfg.DatabaseDriver())

	cfg.Database.DSN = "postgres://localhost/phones"
	assert.Equal(t, SourcePostgres, cfg.DatabaseDriver())
	assert.Equal(t, "postgres://localhost/phones", cfg.DatabaseDSN())

	cfg.Database.Driver = SourceSQLite
	cfg.Database.SQLitePath = "logs.db"
	assert.Equal(t, SourceSQLite, cfg.DatabaseDriver())
	assert.Equal(t, "logs.db", cfg.DatabaseDSN())
}

func TestGetPostgreSQLDSN_FromParts(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{
		Host: "db", Port: 5433, User: "app", Password: "secret", Database: "phones", SSLMode: "require",
	}}

	assert.Equal(t, "host=db port=5433 user=app password=secret dbname=phones sslmode=require", cfg.GetPostgreSQLDSN())
}
