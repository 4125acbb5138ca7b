package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fairwaylabs/sgrid/internal/engine"
	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory.
const FileName = "sgrid.cfg.json"

// EnvPrefix prefixes environment overrides, e.g. SGRID_STORAGE_TYPE.
const EnvPrefix = "SGRID"

// LogConfig holds logging settings
type LogConfig struct {
	Level          string
	LogsDir        string
	GraylogEnabled bool
	GraylogAddress string
}

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds SQLite storage backend settings
type SQLiteConfig struct {
	Path     string `json:"path" mapstructure:"path"`         // empty means shared in-memory
	DumpPath string `json:"dumpPath" mapstructure:"dumpPath"` // in-memory DB is vacuumed here on shutdown
}

// StorageConfig selects and configures the evaluation storage backend
type StorageConfig struct {
	Type   string       `json:"type" mapstructure:"type"`
	Memory MemoryConfig `json:"memory" mapstructure:"memory"`
	SQLite SQLiteConfig `json:"sqlite" mapstructure:"sqlite"`
}

// DBConfig holds Postgres connection settings
type DBConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
	SSLMode  string
}

// InfluxConfig holds InfluxDB settings
type InfluxConfig struct {
	Enabled  bool
	Protocol string
	Host     string
	Port     string
	Token    string
	Org      string
	Bucket   string
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled        bool
	ServiceName    string
	ExportInterval time.Duration
	Endpoint       string
	Insecure       bool
}

// APIConfig holds statistics service settings
type APIConfig struct {
	Enabled   bool
	ServerURL string
	APIKey    string
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Address        string
	Mode           string
	TargetDebounce time.Duration
	MaxBodyBytes   int64
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// SetDefaults registers every default value. Load calls it; callers running
// without a config file call it directly.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./sgridlogs")

	defaults := engine.DefaultConfig()
	viper.SetDefault("engine.outcomeCells", defaults.OutcomeCells)
	viper.SetDefault("engine.outcomeRadius", defaults.OutcomeRadius)
	viper.SetDefault("engine.superGridCells", defaults.SuperGridCells)
	viper.SetDefault("engine.superGridRadius", defaults.SuperGridRadius)
	viper.SetDefault("engine.candidateCells", defaults.CandidateCells)
	viper.SetDefault("engine.candidateRadius", defaults.CandidateRadius)
	viper.SetDefault("engine.subsetRadius", defaults.SubsetRadius)
	viper.SetDefault("engine.minCellSide", defaults.MinCellSide)
	viper.SetDefault("engine.maxCellSide", defaults.MaxCellSide)
	viper.SetDefault("engine.dispersionFloor", defaults.DispersionFloor)
	viper.SetDefault("engine.maxDispersion", defaults.MaxDispersion)
	viper.SetDefault("engine.holeRadius", defaults.HoleRadius)
	viper.SetDefault("engine.workers", defaults.Workers)

	viper.SetDefault("regression.tablePath", "")

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./evaluations")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.sqlite.path", "")
	viper.SetDefault("storage.sqlite.dumpPath", "")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "sgrid")
	viper.SetDefault("db.sslmode", "disable")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "sgrid")
	viper.SetDefault("influx.bucket", "sgrid_evaluations")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "sgrid")
	viper.SetDefault("otel.exportInterval", "1m")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetDefault("api.enabled", false)
	viper.SetDefault("api.serverUrl", "http://localhost:5000")
	viper.SetDefault("api.apiKey", "")

	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("server.mode", "release")
	viper.SetDefault("server.targetDebounce", "400ms")
	viper.SetDefault("server.maxBodyBytes", 8<<20)
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetLogConfig returns logging settings.
func GetLogConfig() LogConfig {
	return LogConfig{
		Level:          viper.GetString("logLevel"),
		LogsDir:        viper.GetString("logsDir"),
		GraylogEnabled: viper.GetBool("graylog.enabled"),
		GraylogAddress: viper.GetString("graylog.address"),
	}
}

// GetEngineConfig returns grid sizing and numeric settings.
func GetEngineConfig() engine.Config {
	return engine.Config{
		OutcomeCells:    viper.GetInt("engine.outcomeCells"),
		OutcomeRadius:   viper.GetFloat64("engine.outcomeRadius"),
		SuperGridCells:  viper.GetInt("engine.superGridCells"),
		SuperGridRadius: viper.GetFloat64("engine.superGridRadius"),
		CandidateCells:  viper.GetInt("engine.candidateCells"),
		CandidateRadius: viper.GetFloat64("engine.candidateRadius"),
		SubsetRadius:    viper.GetFloat64("engine.subsetRadius"),
		MinCellSide:     viper.GetFloat64("engine.minCellSide"),
		MaxCellSide:     viper.GetFloat64("engine.maxCellSide"),
		DispersionFloor: viper.GetFloat64("engine.dispersionFloor"),
		MaxDispersion:   viper.GetFloat64("engine.maxDispersion"),
		HoleRadius:      viper.GetFloat64("engine.holeRadius"),
		Workers:         viper.GetInt("engine.workers"),
	}
}

// GetRegressionTablePath returns the coefficient table path, empty for built-in defaults.
func GetRegressionTablePath() string {
	return viper.GetString("regression.tablePath")
}

// GetStorageConfig returns the storage backend settings.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
		SQLite: SQLiteConfig{
			Path:     viper.GetString("storage.sqlite.path"),
			DumpPath: viper.GetString("storage.sqlite.dumpPath"),
		},
	}
}

// GetDBConfig returns Postgres connection settings.
func GetDBConfig() DBConfig {
	return DBConfig{
		Host:     viper.GetString("db.host"),
		Port:     viper.GetString("db.port"),
		Username: viper.GetString("db.username"),
		Password: viper.GetString("db.password"),
		Database: viper.GetString("db.database"),
		SSLMode:  viper.GetString("db.sslmode"),
	}
}

// GetInfluxConfig returns InfluxDB settings.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:  viper.GetBool("influx.enabled"),
		Protocol: viper.GetString("influx.protocol"),
		Host:     viper.GetString("influx.host"),
		Port:     viper.GetString("influx.port"),
		Token:    viper.GetString("influx.token"),
		Org:      viper.GetString("influx.org"),
		Bucket:   viper.GetString("influx.bucket"),
	}
}

// GetOTelConfig returns OpenTelemetry settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:        viper.GetBool("otel.enabled"),
		ServiceName:    viper.GetString("otel.serviceName"),
		ExportInterval: viper.GetDuration("otel.exportInterval"),
		Endpoint:       viper.GetString("otel.endpoint"),
		Insecure:       viper.GetBool("otel.insecure"),
	}
}

// GetAPIConfig returns statistics service settings.
func GetAPIConfig() APIConfig {
	return APIConfig{
		Enabled:   viper.GetBool("api.enabled"),
		ServerURL: viper.GetString("api.serverUrl"),
		APIKey:    viper.GetString("api.apiKey"),
	}
}

// GetServerConfig returns HTTP server settings.
func GetServerConfig() ServerConfig {
	return ServerConfig{
		Address:        viper.GetString("server.address"),
		Mode:           viper.GetString("server.mode"),
		TargetDebounce: viper.GetDuration("server.targetDebounce"),
		MaxBodyBytes:   viper.GetInt64("server.maxBodyBytes"),
	}
}
