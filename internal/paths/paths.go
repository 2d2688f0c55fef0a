// Package paths resolves the storefront directory layout: where the
// configuration lives, where the store keeps its data and where object
// buckets are rooted under the data directory.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// DefaultDataDirName is the data directory created under the working
// directory when nothing else is configured.
const DefaultDataDirName = ".storefront-data"

const appDirName = "storefront"

// EnvConfigDir overrides the configuration directory.
const EnvConfigDir = "STOREFRONT_CONFIG_DIR"

// File and directory names inside the config and data directories.
const (
	ConfigFileName = "config.yaml"
	EnvFileName    = ".env"
	BucketsDirName = "buckets"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	goos          string
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	goos:          runtime.GOOS,
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/storefront (fallback ~/.config/storefront)
// macOS:   ~/Library/Application Support/storefront
// Windows: %APPDATA%/storefront
func DefaultConfigDir() (string, error) {
	if platformDir.goos == "linux" {
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appDirName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", appDirName), nil
	}
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, appDirName), nil
}

// ResolveConfigDir returns the configuration directory: flag, then
// STOREFRONT_CONFIG_DIR, then DefaultConfigDir. The result is absolute.
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory: flag, then the configured
// data_dir (config.yaml with STOREFRONT_DATA_DIR already applied), then
// .storefront-data in the working directory. The result is absolute.
func ResolveDataDir(flag, configured string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configured != "" {
		return filepath.Abs(configured)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}

// ConfigFile is the path of config.yaml in configDir.
func ConfigFile(configDir string) string {
	return filepath.Join(configDir, ConfigFileName)
}

// EnvFile is the path of the .env file read next to config.yaml.
func EnvFile(configDir string) string {
	return filepath.Join(configDir, EnvFileName)
}

// BucketDir is the root of the named object bucket under dataDir.
func BucketDir(dataDir, bucket string) string {
	return filepath.Join(dataDir, BucketsDirName, bucket)
}
