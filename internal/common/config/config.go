// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabaseConfig    `mapstructure:"database"`
	ModelStore  ModelStoreConfig  `mapstructure:"model_store"`
	ResultCache ResultCacheConfig `mapstructure:"result_cache"`
	Analytics   AnalyticsConfig   `mapstructure:"analytics"`
	Registry    RegistryConfig    `mapstructure:"registry"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Enabled   bool     `mapstructure:"enabled"`
}

// ModelStoreConfig selects where model artifacts are resolved from.
// If Bucket is set, artifacts come from S3; otherwise from Root on local disk.
type ModelStoreConfig struct {
	Root       string `mapstructure:"root"`
	Bucket     string `mapstructure:"bucket"`
	Region     string `mapstructure:"region"`
	MaxCached  int    `mapstructure:"max_cached"`
	StagingDir string `mapstructure:"staging_dir"`
}

// ResultCacheConfig controls memoization of model outputs.
type ResultCacheConfig struct {
	Backend  string `mapstructure:"backend"`  // "memory" or "redis"
	Capacity int    `mapstructure:"capacity"` // memory backend only
	TTL      int    `mapstructure:"ttl"`      // seconds, redis backend only
}

type AnalyticsConfig struct {
	UsageIndex string `mapstructure:"usage_index"`
}

type RegistryConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
