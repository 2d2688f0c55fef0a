package types

import (
	"errors"
	"net/url"
)

// Config holds backend selection and parameters for Store.Attach.
type Config struct {
	Backend     string `json:"backend" yaml:"backend"`
	DataDir     string `json:"data_dir" yaml:"data_dir"`
	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url,omitempty"`
}

// Supported backend names.
const (
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Config validation errors.
var (
	ErrBackendEmpty     = errors.New("backend must not be empty")
	ErrBackendUnknown   = errors.New("unknown backend")
	ErrDatabaseURLEmpty = errors.New("database_url must be set for the postgres backend")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite:   true,
	BackendPostgres: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.Backend == BackendPostgres && c.DatabaseURL == "" {
		return ErrDatabaseURLEmpty
	}
	return nil
}

// Location describes where the store keeps its data, for logs. A password
// in the database URL is masked; keyword/value DSNs are not echoed at all.
func (c Config) Location() string {
	if c.Backend != BackendPostgres {
		return c.DataDir
	}
	u, err := url.Parse(c.DatabaseURL)
	if err != nil || u.Host == "" {
		return BackendPostgres
	}
	return u.Redacted()
}
