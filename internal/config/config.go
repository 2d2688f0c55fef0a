// Package config loads storefront settings from config.yaml, .env files and
// STOREFRONT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/storefront/internal/paths"
	"github.com/mesh-intelligence/storefront/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	envPrefix = "STOREFRONT"
)

// Config keys.
const (
	KeyBackend         = "backend"
	KeyDataDir         = "data_dir"
	KeyDatabaseURL     = "database_url"
	KeyBucket          = "bucket"
	KeyPublicBaseURL   = "public_base_url"
	KeyCacheDriver     = "cache.driver"
	KeyCacheRedisAddr  = "cache.redis_addr"
	KeyCacheRedisPass  = "cache.redis_password"
	KeyCacheRedisDB    = "cache.redis_db"
	KeyCacheTTL        = "cache.ttl"
	KeyCacheMaxEntries = "cache.max_entries"
	KeyLogLevel        = "log.level"
	KeyLogFormat       = "log.format"
	KeyServerAddr      = "server.addr"
	KeyServerTimeout   = "server.request_timeout"
	KeyAdminTokens     = "auth.admin_tokens"
)

// Cache drivers.
const (
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheNone   = "none"
)

// Config validation errors.
var (
	ErrCacheDriverUnknown = errors.New("unknown cache driver")
	ErrRedisAddrEmpty     = errors.New("cache.redis_addr must be set for the redis cache")
	ErrBucketInvalid      = errors.New("bucket must be a single path segment")
)

type CacheConfig struct {
	Driver        string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TTL           time.Duration
	MaxEntries    int
}

type LogConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	Addr           string
	RequestTimeout time.Duration
}

type AuthConfig struct {
	AdminTokens []string
}

// Config is the fully resolved configuration.
type Config struct {
	ConfigDir     string
	Store         types.Config
	Bucket        string
	PublicBaseURL string
	Cache         CacheConfig
	Log           LogConfig
	Server        ServerConfig
	Auth          AuthConfig
}

// fileConfig is the layout of the default config.yaml.
type fileConfig struct {
	Backend       string `yaml:"backend"`
	DataDir       string `yaml:"data_dir,omitempty"`
	DatabaseURL   string `yaml:"database_url,omitempty"`
	Bucket        string `yaml:"bucket"`
	PublicBaseURL string `yaml:"public_base_url"`
	Cache         struct {
		Driver string `yaml:"driver"`
		TTL    string `yaml:"ttl"`
	} `yaml:"cache"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Auth struct {
		AdminTokens []string `yaml:"admin_tokens"`
	} `yaml:"auth"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyBackend, types.BackendSQLite)
	v.SetDefault(KeyBucket, "site-images")
	v.SetDefault(KeyPublicBaseURL, "/storage")
	v.SetDefault(KeyCacheDriver, CacheMemory)
	v.SetDefault(KeyCacheTTL, "5m")
	v.SetDefault(KeyCacheMaxEntries, 1000)
	v.SetDefault(KeyCacheRedisDB, 0)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "json")
	v.SetDefault(KeyServerAddr, ":8080")
	v.SetDefault(KeyServerTimeout, "30s")
}

// Load resolves the config directory, writes a default config.yaml on first
// run, reads .env files and returns the merged configuration. Environment
// variables override config.yaml; dataDirFlag overrides both.
func Load(configDirFlag, dataDirFlag string) (*Config, error) {
	configDir, err := paths.ResolveConfigDir(configDirFlag)
	if err != nil {
		return nil, fmt.Errorf("resolve config dir: %w", err)
	}
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := EnsureDefaultFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	// A missing .env is normal.
	_ = godotenv.Load(paths.EnvFile(configDir))
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg, err := fromViper(v)
	if err != nil {
		return nil, err
	}
	cfg.ConfigDir = configDir

	dataDir, err := paths.ResolveDataDir(dataDirFlag, v.GetString(KeyDataDir))
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}
	cfg.Store.DataDir = dataDir

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromViper(v *viper.Viper) (*Config, error) {
	ttl, err := time.ParseDuration(v.GetString(KeyCacheTTL))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", KeyCacheTTL, err)
	}
	timeout, err := time.ParseDuration(v.GetString(KeyServerTimeout))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", KeyServerTimeout, err)
	}
	return &Config{
		Store: types.Config{
			Backend:     v.GetString(KeyBackend),
			DatabaseURL: v.GetString(KeyDatabaseURL),
		},
		Bucket:        v.GetString(KeyBucket),
		PublicBaseURL: strings.TrimRight(v.GetString(KeyPublicBaseURL), "/"),
		Cache: CacheConfig{
			Driver:        strings.ToLower(v.GetString(KeyCacheDriver)),
			RedisAddr:     v.GetString(KeyCacheRedisAddr),
			RedisPassword: v.GetString(KeyCacheRedisPass),
			RedisDB:       v.GetInt(KeyCacheRedisDB),
			TTL:           ttl,
			MaxEntries:    v.GetInt(KeyCacheMaxEntries),
		},
		Log: LogConfig{
			Level:  v.GetString(KeyLogLevel),
			Format: v.GetString(KeyLogFormat),
		},
		Server: ServerConfig{
			Addr:           v.GetString(KeyServerAddr),
			RequestTimeout: timeout,
		},
		Auth: AuthConfig{AdminTokens: tokens(v.Get(KeyAdminTokens))},
	}, nil
}

// tokens accepts a YAML list or a comma separated environment value.
func tokens(raw any) []string {
	var parts []string
	switch t := raw.(type) {
	case string:
		parts = strings.Split(t, ",")
	case []string:
		parts = t
	case []any:
		for _, p := range t {
			parts = append(parts, fmt.Sprint(p))
		}
	}
	out := []string{}
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks the store settings and the cache and bucket settings.
func (c *Config) Validate() error {
	if err := c.Store.Validate(); err != nil {
		return err
	}
	switch c.Cache.Driver {
	case CacheMemory, CacheNone:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return ErrRedisAddrEmpty
		}
	default:
		return fmt.Errorf("%w: %q", ErrCacheDriverUnknown, c.Cache.Driver)
	}
	if c.Bucket == "" || strings.ContainsAny(c.Bucket, `/\`) || c.Bucket == "." || c.Bucket == ".." {
		return fmt.Errorf("%w: %q", ErrBucketInvalid, c.Bucket)
	}
	return nil
}

// EnsureDefaultFile writes config.yaml with default values if it does not
// exist yet.
func EnsureDefaultFile(configDir string) error {
	path := paths.ConfigFile(configDir)
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	var fc fileConfig
	fc.Backend = types.BackendSQLite
	fc.Bucket = "site-images"
	fc.PublicBaseURL = "/storage"
	fc.Cache.Driver = CacheMemory
	fc.Cache.TTL = "5m"
	fc.Log.Level = "info"
	fc.Log.Format = "json"
	fc.Server.Addr = ":8080"
	fc.Auth.AdminTokens = []string{}

	data, err := yaml.Marshal(&fc)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	header := []byte("# storefront configuration\n# Every key can be overridden with STOREFRONT_<KEY> (dots become underscores).\n\n")
	return os.WriteFile(path, append(header, data...), 0o644)
}
