// Package config loads capidx's configuration through a single viper
// instance, following the teacher's internal/config package: a precedence
// walk for the config file location, automatic environment variable
// binding, and package-level Get* accessors over a process-wide singleton.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/arkohut/pensieve/internal/debug"
	"github.com/spf13/viper"
)

var v *viper.Viper

// Initialize sets up the viper configuration singleton. Should be called
// once at application startup, before any Get* accessor.
func Initialize() error {
	v = viper.New()
	v.SetConfigType("yaml")

	// Precedence: project .capidx/config.yaml > ~/.config/capidx/config.yaml.
	configFileSet := false

	if cwd, err := os.Getwd(); err == nil {
		for dir := cwd; dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
			configPath := filepath.Join(dir, ".capidx", "config.yaml")
			if _, statErr := os.Stat(configPath); statErr == nil {
				v.SetConfigFile(configPath)
				configFileSet = true
				break
			}
		}
	}
	if !configFileSet {
		if configDir, err := os.UserConfigDir(); err == nil {
			configPath := filepath.Join(configDir, "capidx", "config.yaml")
			if _, statErr := os.Stat(configPath); statErr == nil {
				v.SetConfigFile(configPath)
				configFileSet = true
			}
		}
	}

	// Environment variables take precedence over the config file:
	// CAPIDX_DATABASE_URL maps to "database_url", CAPIDX_EMBEDDING_OLLAMA_HOST
	// to "embedding.ollama_host", and so on.
	v.SetEnvPrefix("CAPIDX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("database_url", "sqlite://capidx.db")
	v.SetDefault("default_library", "default")

	v.SetDefault("embedding.num_dim", 768)
	v.SetDefault("embedding.ollama_host", "")
	v.SetDefault("embedding.ollama_model", "nomic-embed-text")

	v.SetDefault("tokenizer.wasm_path", "")

	v.SetDefault("pool.max_open", 30)
	v.SetDefault("pool.max_idle", 10)
	v.SetDefault("pool.conn_max_lifetime", "1h")
	v.SetDefault("pool.checkout_timeout", "60s")

	if configFileSet {
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file: %w", err)
		}
		debug.Logf("config: loaded from %s\n", v.ConfigFileUsed())
	} else {
		debug.Logf("config: no config.yaml found; using defaults and environment variables\n")
	}

	return nil
}

// GetString retrieves a string configuration value.
func GetString(key string) string {
	if v == nil {
		return ""
	}
	return v.GetString(key)
}

// GetInt retrieves an integer configuration value.
func GetInt(key string) int {
	if v == nil {
		return 0
	}
	return v.GetInt(key)
}

// GetDuration retrieves a duration configuration value.
func GetDuration(key string) time.Duration {
	if v == nil {
		return 0
	}
	return v.GetDuration(key)
}

// Set overrides a configuration value, used by the CLI layer to apply
// explicit flags over the config file/environment precedence chain.
func Set(key string, value interface{}) {
	if v != nil {
		v.Set(key, value)
	}
}
