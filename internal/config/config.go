package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Port                int
	DatabaseURL         string
	DataDir             string
	SQLitePath          string
	FastStoreQuotaBytes int64
	IngestBatchSize     int
	IngestWorkers       int
	PreviewTTL          time.Duration
	ImportRatePerMinute int
	LogLevel            string
	LogFormat           string
}

// fileConfig is the layout of the optional TOML file.
type fileConfig struct {
	Server struct {
		Port int `toml:"port"`
	} `toml:"server"`
	Storage struct {
		DatabaseURL         string `toml:"database_url"`
		DataDir             string `toml:"data_dir"`
		SQLitePath          string `toml:"sqlite_path"`
		FastStoreQuotaBytes int64  `toml:"fast_store_quota_bytes"`
	} `toml:"storage"`
	Ingest struct {
		BatchSize int `toml:"batch_size"`
		Workers   int `toml:"workers"`
	} `toml:"ingest"`
	Import struct {
		PreviewTTL    string `toml:"preview_ttl"`
		RatePerMinute int    `toml:"rate_per_minute"`
	} `toml:"import"`
	Log struct {
		Level  string `toml:"level"`
		Format string `toml:"format"`
	} `toml:"log"`
}

func Defaults() Config {
	return Config{
		Port:                8080,
		DataDir:             "data",
		FastStoreQuotaBytes: 5 << 20,
		IngestBatchSize:     500,
		IngestWorkers:       4,
		PreviewTTL:          15 * time.Minute,
		ImportRatePerMinute: 30,
		LogLevel:            "info",
		LogFormat:           "json",
	}
}

// Load reads the configuration from ./config.toml (or CONFIG_FILE), ./.env
// and the process environment, each layer overriding the previous one.
func Load() (Config, error) {
	return load(os.Getenv, filepath.Join(".", ".env"), filepath.Join(".", "config.toml"))
}

func load(getenv func(string) string, envPath, defaultTOML string) (Config, error) {
	values := map[string]string{}
	if _, err := os.Stat(envPath); err == nil {
		fileValues, err := loadDotEnvFile(envPath)
		if err != nil {
			return Config{}, err
		}
		values = fileValues
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("stat %s: %w", envPath, err)
	}
	lookup := func(key string) string {
		return firstNonEmpty(getenv(key), values[key])
	}

	cfg := Defaults()

	tomlPath := lookup("CONFIG_FILE")
	required := tomlPath != ""
	if !required {
		tomlPath = defaultTOML
	}
	if err := applyTOML(&cfg, tomlPath, required); err != nil {
		return Config{}, err
	}

	if err := applyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}

	if cfg.SQLitePath == "" {
		cfg.SQLitePath = filepath.Join(cfg.DataDir, "sales.db")
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyTOML(cfg *Config, path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !required {
			return nil
		}
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.Server.Port != 0 {
		cfg.Port = fc.Server.Port
	}
	if fc.Storage.DatabaseURL != "" {
		cfg.DatabaseURL = fc.Storage.DatabaseURL
	}
	if fc.Storage.DataDir != "" {
		cfg.DataDir = fc.Storage.DataDir
	}
	if fc.Storage.SQLitePath != "" {
		cfg.SQLitePath = fc.Storage.SQLitePath
	}
	if fc.Storage.FastStoreQuotaBytes != 0 {
		cfg.FastStoreQuotaBytes = fc.Storage.FastStoreQuotaBytes
	}
	if fc.Ingest.BatchSize != 0 {
		cfg.IngestBatchSize = fc.Ingest.BatchSize
	}
	if fc.Ingest.Workers != 0 {
		cfg.IngestWorkers = fc.Ingest.Workers
	}
	if fc.Import.PreviewTTL != "" {
		ttl, err := time.ParseDuration(fc.Import.PreviewTTL)
		if err != nil {
			return fmt.Errorf("invalid import.preview_ttl: %q", fc.Import.PreviewTTL)
		}
		cfg.PreviewTTL = ttl
	}
	if fc.Import.RatePerMinute != 0 {
		cfg.ImportRatePerMinute = fc.Import.RatePerMinute
	}
	if fc.Log.Level != "" {
		cfg.LogLevel = fc.Log.Level
	}
	if fc.Log.Format != "" {
		cfg.LogFormat = fc.Log.Format
	}
	return nil
}

func applyEnv(cfg *Config, lookup func(string) string) error {
	intVar := func(key string, dst *int) error {
		raw := lookup(key)
		if raw == "" {
			return nil
		}
		value, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid %s: %q", key, raw)
		}
		*dst = value
		return nil
	}

	if err := intVar("PORT", &cfg.Port); err != nil {
		return err
	}
	if err := intVar("INGEST_BATCH_SIZE", &cfg.IngestBatchSize); err != nil {
		return err
	}
	if err := intVar("INGEST_WORKERS", &cfg.IngestWorkers); err != nil {
		return err
	}
	if err := intVar("IMPORT_RATE_PER_MINUTE", &cfg.ImportRatePerMinute); err != nil {
		return err
	}

	if raw := lookup("FAST_STORE_QUOTA_BYTES"); raw != "" {
		quota, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid FAST_STORE_QUOTA_BYTES: %q", raw)
		}
		cfg.FastStoreQuotaBytes = quota
	}
	if raw := lookup("PREVIEW_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid PREVIEW_TTL: %q", raw)
		}
		cfg.PreviewTTL = ttl
	}

	if v := lookup("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := lookup("DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := lookup("SQLITE_PATH"); v != "" {
		cfg.SQLitePath = v
	}
	if v := lookup("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := lookup("LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	return nil
}

func (c Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.FastStoreQuotaBytes <= 0 {
		return fmt.Errorf("fast store quota must be positive, got %d", c.FastStoreQuotaBytes)
	}
	if c.IngestBatchSize <= 0 {
		return fmt.Errorf("ingest batch size must be positive, got %d", c.IngestBatchSize)
	}
	if c.IngestWorkers <= 0 {
		return fmt.Errorf("ingest workers must be positive, got %d", c.IngestWorkers)
	}
	if c.PreviewTTL <= 0 {
		return fmt.Errorf("preview ttl must be positive, got %s", c.PreviewTTL)
	}
	if c.ImportRatePerMinute < 0 {
		return fmt.Errorf("import rate must not be negative, got %d", c.ImportRatePerMinute)
	}
	return nil
}

// UsesPostgres reports whether the fallback tier is PostgreSQL rather than
// the local SQLite file.
func (c Config) UsesPostgres() bool {
	return c.DatabaseURL != ""
}

func firstNonEmpty(candidates ...string) string {
	for _, candidate := range candidates {
		if value := strings.TrimSpace(candidate); value != "" {
			return value
		}
	}
	return ""
}

func loadDotEnvFile(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	values := map[string]string{}
	scanner := bufio.NewScanner(file)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		keyValue := strings.SplitN(line, "=", 2)
		if len(keyValue) != 2 {
			return nil, fmt.Errorf("invalid .env line %d: %q", lineNo, line)
		}

		key := strings.TrimSpace(keyValue[0])
		value := strings.TrimSpace(keyValue[1])
		if key == "" {
			return nil, fmt.Errorf("invalid .env line %d: empty key", lineNo)
		}
		key = strings.TrimSpace(strings.TrimPrefix(key, "export "))

		if len(value) >= 2 {
			if (value[0] == '\'' && value[len(value)-1] == '\'') ||
				(value[0] == '"' && value[len(value)-1] == '"') {
				value = value[1 : len(value)-1]
			}
		}

		values[key] = value
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return values, nil
}
