package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnv_Defaults(t *testing.T) {
	c, err := FromEnv(envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, "mssql", c.DBType)
	assert.Equal(t, "localhost", c.DBServer)
	assert.Equal(t, "erp", c.DBName)
	assert.Equal(t, "1433", c.DBPort)
	assert.Equal(t, ConnectionSQL, c.DBConnection)
	assert.Equal(t, "erp", c.SourceID)
	assert.Equal(t, time.Hour, c.CacheTTL)
	assert.Equal(t, 5*time.Minute, c.QueryTimeout)
	assert.Equal(t, 500, c.FetchBatchSize)
	assert.Equal(t, 10, c.TopN)
	assert.Equal(t, ":8080", c.ListenAddr)
	assert.False(t, c.OpenBrowser)
	assert.Empty(t, c.LogOutput)
	assert.False(t, c.LogDevelopment)
	assert.True(t, c.UsesIntegratedAuth())
	assert.Equal(t, map[string]string{"WH": "WAREHOUSE", "WIP": "WIP", "EXLPICK": "EXTERNAL_PICK"}, c.ZoneMap)
}

func TestFromEnv_Overrides(t *testing.T) {
	c, err := FromEnv(envMap(map[string]string{
		"DB_TYPE":         "PostgreSQL",
		"DB_NAME":         "/data/snapshots/plant7.db",
		"DB_USER":         "report",
		"DB_PASSWORD":     "s3cret",
		"DB_CONNECTION":   "ODBC",
		"CACHE_TTL":       "15m",
		"ZONE_MAP":        "A1=warehouse, B2=wip",
		"OPEN_BROWSER":    "true",
		"LOG_OUTPUT":      "/var/log/invcost.log",
		"LOG_DEVELOPMENT": "1",
	}))
	require.NoError(t, err)

	assert.Equal(t, "postgresql", c.DBType)
	assert.Equal(t, "5432", c.DBPort)
	assert.Equal(t, ConnectionODBC, c.DBConnection)
	assert.Equal(t, "plant7", c.SourceID)
	assert.Equal(t, 15*time.Minute, c.CacheTTL)
	assert.Equal(t, map[string]string{"A1": "WAREHOUSE", "B2": "WIP"}, c.ZoneMap)
	assert.True(t, c.OpenBrowser)
	assert.Equal(t, "/var/log/invcost.log", c.LogOutput)
	assert.True(t, c.LogDevelopment)
	assert.False(t, c.UsesIntegratedAuth())
}

func TestFromEnv_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"bad ttl":        {"CACHE_TTL": "soon"},
		"negative ttl":   {"CACHE_TTL": "-1m"},
		"bad batch":      {"FETCH_BATCH_SIZE": "0"},
		"bad top n":      {"TOP_N": "ten"},
		"bad zone map":   {"ZONE_MAP": "WH"},
		"bad connection": {"DB_CONNECTION": "jdbc"},
		"bad bool":       {"OPEN_BROWSER": "maybe"},
		"bad log dev":    {"LOG_DEVELOPMENT": "verbose"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := FromEnv(envMap(env))
			assert.Error(t, err)
		})
	}
}

func TestRedacted(t *testing.T) {
	c := Config{DBPassword: "pw", ZoneMap: map[string]string{"WH": "WAREHOUSE"}}
	r := c.Redacted()
	assert.Equal(t, "********", r.DBPassword)
	assert.Equal(t, "pw", c.DBPassword)

	r.ZoneMap["X"] = "WIP"
	assert.NotContains(t, c.ZoneMap, "X")
}

func TestLoadConfig_StoresCurrent(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DB_NAME", "plant9")

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "plant9", c.DBName)
	assert.Equal(t, c, GetConfig())
}

// chdir changes the working directory for the duration of the test and
// restores it on cleanup (equivalent to testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
