// Package where resolves the directories spacetime reads from and writes to.
package where

import (
	"os"
	"path/filepath"

	"github.com/samber/lo"

	"github.com/anisan-cli/spacetime/constant"
	"github.com/anisan-cli/spacetime/filesystem"
)

// EnvConfigPath overrides the configuration directory.
const EnvConfigPath = "SPACETIME_CONFIG_PATH"

func ensureDir(path string) string {
	lo.Must0(filesystem.API().MkdirAll(path, os.ModePerm))
	return path
}

// Config returns the configuration directory, honouring EnvConfigPath.
func Config() string {
	if custom, ok := os.LookupEnv(EnvConfigPath); ok {
		return ensureDir(custom)
	}

	base := lo.Must(os.UserConfigDir())
	return ensureDir(filepath.Join(base, constant.Spacetime))
}

// ConfigFile returns the path of the TOML configuration file.
func ConfigFile() string {
	return filepath.Join(Config(), constant.Spacetime+".toml")
}

// Cache returns the cache directory, falling back to ./cache.
func Cache() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = filepath.Join(".", "cache")
	}
	return ensureDir(filepath.Join(base, constant.Spacetime))
}

func Logs() string {
	return ensureDir(filepath.Join(Config(), "logs"))
}

// Metrics returns the directory where play writes metric snapshots.
func Metrics() string {
	return ensureDir(filepath.Join(Cache(), "metrics"))
}

// Temp returns a scratch directory that is wiped on every start.
func Temp() string {
	return ensureDir(filepath.Join(os.TempDir(), constant.Spacetime))
}
