package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// EnvConfigFile names the environment variable that points at an explicit
// config file. When unset, nimbusview.yaml is searched for in the working
// directory and ~/.config/nimbusview.
const EnvConfigFile = "NIMBUSVIEW_CONFIG"

// envBinding maps a viper key to the environment variable that overrides it.
type envBinding struct {
	Key string
	Env string
}

// envBindings is the complete set of environment overrides. Bindings are
// explicit rather than derived with AutomaticEnv so the supported surface
// is visible in one place.
var envBindings = []envBinding{
	{Key: "server.host", Env: "NIMBUSVIEW_HOST"},
	{Key: "server.port", Env: "NIMBUSVIEW_PORT"},
	{Key: "server.read_timeout", Env: "NIMBUSVIEW_READ_TIMEOUT"},
	{Key: "server.write_timeout", Env: "NIMBUSVIEW_WRITE_TIMEOUT"},
	{Key: "server.idle_timeout", Env: "NIMBUSVIEW_IDLE_TIMEOUT"},
	{Key: "server.shutdown_timeout", Env: "NIMBUSVIEW_SHUTDOWN_TIMEOUT"},
	{Key: "logging.level", Env: "NIMBUSVIEW_LOG_LEVEL"},
	{Key: "logging.profile", Env: "NIMBUSVIEW_LOG_PROFILE"},
	{Key: "metrics.enabled", Env: "NIMBUSVIEW_METRICS_ENABLED"},
	{Key: "metrics.port", Env: "NIMBUSVIEW_METRICS_PORT"},
	{Key: "health.enabled", Env: "NIMBUSVIEW_HEALTH_ENABLED"},
	{Key: "debug.enabled", Env: "NIMBUSVIEW_DEBUG"},
	{Key: "debug.pprof_enabled", Env: "NIMBUSVIEW_PPROF"},
}

var (
	configMu  sync.RWMutex
	appConfig *Config
)

// Load builds the configuration from defaults, an optional config file,
// environment variables, and runtime overrides, in ascending precedence.
// The loaded config becomes the one returned by GetConfig.
func Load(ctx context.Context, overrides ...map[string]any) (*Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	for _, b := range envBindings {
		if err := v.BindEnv(b.Key, b.Env); err != nil {
			return nil, fmt.Errorf("config: bind %s: %w", b.Env, err)
		}
	}

	if err := readConfigFile(v); err != nil {
		return nil, err
	}

	for _, o := range overrides {
		for key, value := range flatten("", o) {
			v.Set(key, value)
		}
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	configMu.Lock()
	appConfig = &cfg
	configMu.Unlock()

	return &cfg, nil
}

// GetConfig returns the most recently loaded configuration, or nil if
// Load has not been called.
func GetConfig() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", DefaultHost)
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.read_timeout", DefaultReadTimeout)
	v.SetDefault("server.write_timeout", DefaultWriteTimeout)
	v.SetDefault("server.idle_timeout", DefaultIdleTimeout)
	v.SetDefault("server.shutdown_timeout", DefaultShutdownTimeout)
	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.profile", DefaultLogProfile)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", DefaultMetricsPort)
	v.SetDefault("health.enabled", true)
	v.SetDefault("debug.enabled", false)
	v.SetDefault("debug.pprof_enabled", false)
}

// readConfigFile loads an explicit config file when NIMBUSVIEW_CONFIG is
// set, otherwise searches the standard locations. A missing file is only
// an error when it was named explicitly.
func readConfigFile(v *viper.Viper) error {
	if path := os.Getenv(EnvConfigFile); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("config: read %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName("nimbusview")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "nimbusview"))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("config: read config file: %w", err)
	}
	return nil
}

// flatten converts nested override maps into dotted viper keys so sibling
// keys in the same section keep their defaults.
func flatten(prefix string, in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, val := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := val.(map[string]any); ok {
			for nk, nv := range flatten(key, nested) {
				out[nk] = nv
			}
			continue
		}
		out[key] = val
	}
	return out
}
