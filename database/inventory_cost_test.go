package database

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"invcost/config"
	"invcost/loader"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(t *testing.T, env map[string]string) config.Config {
	t.Helper()
	cfg, err := config.FromEnv(func(k string) string { return env[k] })
	require.NoError(t, err)
	return cfg
}

// newSnapshot creates a seeded SQLite file and returns its path. A file-backed
// database is used because every connection to :memory: sees its own database.
func newSnapshot(t *testing.T, seed func(db *sqlx.DB)) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "erp.db")
	db, err := sqlx.Open("sqlite3", "file:"+path)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, loader.InitSnapshot(db))
	if seed != nil {
		seed(db)
	}
	return path
}

func sqliteSource(t *testing.T, path string, batch int) *Source {
	cfg := testConfig(t, map[string]string{"DB_TYPE": "sqlite", "DB_NAME": path})
	return NewSource(NewStrategy(cfg), zap.NewNop(), batch, time.Minute)
}

func TestFetchRawRows_ReadsAllChunks(t *testing.T) {
	path := newSnapshot(t, func(db *sqlx.DB) {
		db.MustExec(`INSERT INTO part_master VALUES ('P1','Gear','A','L1','X',5), ('P2',NULL,NULL,'L2',NULL,2)`)
		for i := 0; i < 5; i++ {
			db.MustExec(`INSERT INTO location_detail (ld_part, ld_loc, ld_lot, qty_avail) VALUES ('P1', ?, '', ?)`,
				fmt.Sprintf("LOC%d", i), i+1)
		}
		db.MustExec(`INSERT INTO location_detail VALUES ('P2','WH','A',1), ('P2','WH','B',2), ('P2','WIP','',0)`)
	})

	rows, err := sqliteSource(t, path, 2).FetchRawRows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 6)

	assert.Equal(t, "P1", rows[0].PartID)
	assert.Equal(t, "LOC0", rows[0].Location)
	assert.Equal(t, 1.0, rows[0].QtyOnHand)
	assert.Equal(t, 5.0, rows[0].UnitCost.Float64)
	assert.Equal(t, "Gear", rows[0].Description.String)

	p2 := rows[5]
	assert.Equal(t, "P2", p2.PartID)
	assert.Equal(t, "WH", p2.Location)
	assert.Equal(t, 3.0, p2.QtyOnHand, "lots are summed per location")
	assert.False(t, p2.DesignGroup.Valid)
	assert.True(t, p2.ProductLine.Valid)
}

func TestFetchRawRows_EmptyResultIsNotAnError(t *testing.T) {
	path := newSnapshot(t, nil)
	rows, err := sqliteSource(t, path, 0).FetchRawRows(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestFetchRawRows_MissingDatabaseIsConnectionError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "erp.db")
	_, err := sqliteSource(t, path, 0).FetchRawRows(context.Background())

	var connErr *ConnectionError
	require.True(t, errors.As(err, &connErr), "got %v", err)
	assert.Equal(t, "sql", connErr.Strategy)

	kind, msg := Classify(err)
	assert.Equal(t, KindConnection, kind)
	assert.Contains(t, msg, "Could not connect")
}

func TestFetchRawRows_MissingTablesIsQueryError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	db, err := sqlx.Connect("sqlite3", "file:"+path)
	require.NoError(t, err)
	db.MustExec(`CREATE TABLE unrelated (id INTEGER)`)
	db.Close()

	_, err = sqliteSource(t, path, 0).FetchRawRows(context.Background())

	var queryErr *QueryError
	require.True(t, errors.As(err, &queryErr), "got %v", err)
	kind, msg := Classify(err)
	assert.Equal(t, KindQuery, kind)
	assert.NotContains(t, msg, "no such table")
}

func TestFetchRawRows_UnsupportedTypeIsConnectionError(t *testing.T) {
	cfg := testConfig(t, map[string]string{"DB_TYPE": "oracle"})
	source := NewSource(NewStrategy(cfg), zap.NewNop(), 0, 0)

	_, err := source.FetchRawRows(context.Background())
	var connErr *ConnectionError
	require.True(t, errors.As(err, &connErr))
	assert.Contains(t, err.Error(), "unsupported database type")
	assert.Equal(t, "unconfigured", source.Target())
}

func TestTestConnection(t *testing.T) {
	path := newSnapshot(t, nil)
	assert.NoError(t, sqliteSource(t, path, 0).TestConnection(context.Background()))

	err := sqliteSource(t, filepath.Join(t.TempDir(), "x", "y.db"), 0).TestConnection(context.Background())
	var connErr *ConnectionError
	assert.True(t, errors.As(err, &connErr))
}

func TestSQLDataSource(t *testing.T) {
	driver, dsn, err := SQLDataSource(testConfig(t, map[string]string{
		"DB_SERVER": "db", "DB_USER": "report", "DB_PASSWORD": "pw",
	}))
	require.NoError(t, err)
	assert.Equal(t, "sqlserver", driver)
	assert.True(t, strings.HasPrefix(dsn, "sqlserver://report:pw@db:1433?"), dsn)
	assert.Contains(t, dsn, "database=erp")

	_, dsn, err = SQLDataSource(testConfig(t, map[string]string{"DB_SERVER": "db"}))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(dsn, "sqlserver://db?"), dsn)
	assert.NotContains(t, dsn, "@")

	driver, dsn, err = SQLDataSource(testConfig(t, map[string]string{
		"DB_TYPE": "postgresql", "DB_SERVER": "pg", "DB_USER": "u", "DB_PASSWORD": "p", "DB_NAME": "mfg",
	}))
	require.NoError(t, err)
	assert.Equal(t, "pgx", driver)
	assert.Equal(t, "postgres://u:p@pg:5432/mfg", dsn)

	driver, dsn, err = SQLDataSource(testConfig(t, map[string]string{
		"DB_TYPE": "mysql", "DB_SERVER": "my", "DB_USER": "u", "DB_PASSWORD": "p",
	}))
	require.NoError(t, err)
	assert.Equal(t, "mysql", driver)
	assert.True(t, strings.HasPrefix(dsn, "u:p@tcp(my:3306)/erp"), dsn)

	_, _, err = SQLDataSource(testConfig(t, map[string]string{"DB_TYPE": "db2"}))
	assert.Error(t, err)
}

func TestODBCConnectionString(t *testing.T) {
	trusted := ODBCConnectionString(testConfig(t, map[string]string{"DB_SERVER": "erp01", "DB_CONNECTION": "odbc"}))
	assert.Equal(t, "Driver={ODBC Driver 17 for SQL Server};Server=erp01,1433;Database=erp;Trusted_Connection=yes;", trusted)

	withUser := ODBCConnectionString(testConfig(t, map[string]string{
		"DB_SERVER": "erp01", "DB_USER": "sa", "DB_PASSWORD": "pw", "DB_DRIVER": "FreeTDS",
	}))
	assert.Equal(t, "Driver={FreeTDS};Server=erp01,1433;Database=erp;UID=sa;PWD=pw;", withUser)
}

func TestNewStrategy_ODBC(t *testing.T) {
	s := NewStrategy(testConfig(t, map[string]string{"DB_CONNECTION": "odbc", "DB_SERVER": "erp01"}))
	assert.Equal(t, "odbc", s.Name())
	assert.Contains(t, s.Target(), "integrated auth")
	assert.NotContains(t, s.Target(), "PWD")
}

func TestClassify(t *testing.T) {
	kind, msg := Classify(fmt.Errorf("wrapped: %w", &QueryError{Err: errors.New("x")}))
	assert.Equal(t, KindQuery, kind)
	assert.NotEmpty(t, msg)

	kind, _ = Classify(context.DeadlineExceeded)
	assert.Equal(t, KindOther, kind)
}
