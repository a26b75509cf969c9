package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

const (
	ConnectionSQL  = "sql"
	ConnectionODBC = "odbc"
)

type Config struct {
	DBType       string `json:"dbType"`
	DBServer     string `json:"dbServer"`
	DBName       string `json:"dbName"`
	DBUser       string `json:"dbUser"`
	DBPassword   string `json:"dbPassword"`
	DBPort       string `json:"dbPort"`
	DBDriver     string `json:"dbDriver"`
	DBConnection string `json:"dbConnection"`

	SourceID       string            `json:"sourceId"`
	CacheTTL       time.Duration     `json:"cacheTtl"`
	QueryTimeout   time.Duration     `json:"queryTimeout"`
	FetchBatchSize int               `json:"fetchBatchSize"`
	ZoneMap        map[string]string `json:"zoneMap"`
	TopN           int               `json:"topN"`

	ListenAddr     string `json:"listenAddr"`
	LogLevel       string `json:"logLevel"`
	LogFormat      string `json:"logFormat"`
	LogOutput      string `json:"logOutput"`
	LogDevelopment bool   `json:"logDevelopment"`
	OpenBrowser    bool   `json:"openBrowser"`
}

var (
	cfg Config
	mu  sync.RWMutex
)

const (
	defaultZoneMap = "WH=WAREHOUSE,WIP=WIP,EXLPICK=EXTERNAL_PICK"
	envFilePath    = ".env"
)

// LoadConfig reads .env (when present) and the process environment, stores
// the result as the current configuration and returns it.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(envFilePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to read %s: %w", envFilePath, err)
	}

	c, err := FromEnv(os.Getenv)
	if err != nil {
		return Config{}, err
	}

	mu.Lock()
	cfg = c
	mu.Unlock()
	return c, nil
}

// FromEnv builds a Config from a lookup function, applying defaults.
func FromEnv(getenv func(string) string) (Config, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v
		}
		return def
	}

	c := Config{
		DBType:       strings.ToLower(get("DB_TYPE", "mssql")),
		DBServer:     get("DB_SERVER", "localhost"),
		DBName:       get("DB_NAME", "erp"),
		DBUser:       get("DB_USER", ""),
		DBPassword:   getenv("DB_PASSWORD"),
		DBDriver:     get("DB_DRIVER", "ODBC Driver 17 for SQL Server"),
		DBConnection: strings.ToLower(get("DB_CONNECTION", ConnectionSQL)),
		ListenAddr:   get("LISTEN_ADDR", ":8080"),
		LogLevel:     get("LOG_LEVEL", "info"),
		LogFormat:    get("LOG_FORMAT", "json"),
		LogOutput:    get("LOG_OUTPUT", ""),
	}
	c.DBPort = get("DB_PORT", defaultPort(c.DBType))
	c.SourceID = get("SOURCE_ID", defaultSourceID(c.DBName))

	var err error
	if c.CacheTTL, err = parseDuration("CACHE_TTL", get("CACHE_TTL", "1h")); err != nil {
		return Config{}, err
	}
	if c.QueryTimeout, err = parseDuration("QUERY_TIMEOUT", get("QUERY_TIMEOUT", "5m")); err != nil {
		return Config{}, err
	}
	if c.FetchBatchSize, err = parsePositiveInt("FETCH_BATCH_SIZE", get("FETCH_BATCH_SIZE", "500")); err != nil {
		return Config{}, err
	}
	if c.TopN, err = parsePositiveInt("TOP_N", get("TOP_N", "10")); err != nil {
		return Config{}, err
	}
	if c.ZoneMap, err = ParseZoneMap(get("ZONE_MAP", defaultZoneMap)); err != nil {
		return Config{}, err
	}
	if c.OpenBrowser, err = strconv.ParseBool(get("OPEN_BROWSER", "false")); err != nil {
		return Config{}, fmt.Errorf("OPEN_BROWSER: %w", err)
	}
	if c.LogDevelopment, err = strconv.ParseBool(get("LOG_DEVELOPMENT", "false")); err != nil {
		return Config{}, fmt.Errorf("LOG_DEVELOPMENT: %w", err)
	}

	switch c.DBConnection {
	case ConnectionSQL, ConnectionODBC:
	default:
		return Config{}, fmt.Errorf("DB_CONNECTION must be %q or %q, got %q", ConnectionSQL, ConnectionODBC, c.DBConnection)
	}

	return c, nil
}

// GetConfig returns the configuration stored by the last LoadConfig.
func GetConfig() Config {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

// Redacted returns a copy safe to show to users.
func (c Config) Redacted() Config {
	out := c
	if out.DBPassword != "" {
		out.DBPassword = "********"
	}
	out.ZoneMap = make(map[string]string, len(c.ZoneMap))
	for k, v := range c.ZoneMap {
		out.ZoneMap[k] = v
	}
	return out
}

// UsesIntegratedAuth reports whether no explicit credentials were configured.
func (c Config) UsesIntegratedAuth() bool {
	return c.DBUser == ""
}

// ParseZoneMap parses "LOC=ZONE,LOC=ZONE". Location codes are kept as given;
// zone names are upper-cased.
func ParseZoneMap(s string) (map[string]string, error) {
	m := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		loc, zone, ok := strings.Cut(pair, "=")
		loc = strings.TrimSpace(loc)
		zone = strings.ToUpper(strings.TrimSpace(zone))
		if !ok || loc == "" || zone == "" {
			return nil, fmt.Errorf("ZONE_MAP: malformed entry %q", pair)
		}
		m[loc] = zone
	}
	return m, nil
}

func defaultPort(dbType string) string {
	switch dbType {
	case "postgresql", "postgres":
		return "5432"
	case "mysql":
		return "3306"
	default:
		return "1433"
	}
}

func defaultSourceID(dbName string) string {
	base := filepath.Base(dbName)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func parseDuration(key, v string) (time.Duration, error) {
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, v)
	}
	return d, nil
}

func parsePositiveInt(key, v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %d", key, n)
	}
	return n, nil
}
