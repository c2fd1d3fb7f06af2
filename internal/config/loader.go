package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all settings.
const envPrefix = "ADVISOR"

// newViper builds a Viper instance with YAML file type, the ADVISOR_ env
// prefix, and a "." to "_" key replacer so that "redis.addr" resolves to
// ADVISOR_REDIS_ADDR.  Every known key is bound explicitly because
// AutomaticEnv alone does not surface keys absent from the file on Unmarshal.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range configKeys(reflect.TypeOf(Config{}), "") {
		_ = v.BindEnv(key)
	}
	return v
}

// configKeys walks the mapstructure tags of t and returns the dotted key of
// every leaf field.
func configKeys(t reflect.Type, prefix string) []string {
	var keys []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("mapstructure")
		if tag == "" || tag == "-" {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		if f.Type.Kind() == reflect.Struct && f.Type.PkgPath() == t.PkgPath() {
			keys = append(keys, configKeys(f.Type, key)...)
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

// Load reads the YAML file at configPath, merges ADVISOR_* overrides, applies
// defaults and validates the result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config from ADVISOR_* environment variables and
// defaults, with no config file.
//
//	ADVISOR_<SECTION>_<FIELD>   e.g.  ADVISOR_REDIS_ADDR, ADVISOR_TEXTGEN_API_KEY
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

// LoadFromFileOrEnv loads configPath when it exists and falls back to
// LoadFromEnv otherwise.  An empty path probes the usual locations.
func LoadFromFileOrEnv(configPath string) (*Config, error) {
	if configPath != "" {
		return Load(configPath)
	}
	for _, p := range searchPaths() {
		if _, err := os.Stat(p); err == nil {
			return Load(p)
		}
	}
	return LoadFromEnv()
}

func searchPaths() []string {
	paths := []string{"./advisor.yaml", "./configs/config.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, home+"/.advisor/config.yaml")
	}
	return append(paths, "/etc/advisor/config.yaml")
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// Watch monitors configPath and invokes onChange with the re-parsed Config
// whenever the file changes.  A change that fails to parse or validate is
// reported to onError (when non-nil) and onChange is skipped.  Callers apply
// only the safe subset of settings at runtime (log level, rate limits).
func Watch(configPath string, onChange func(*Config), onError func(error)) error {
	v := newViper()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}

// MustLoad wraps Load and panics on error.  For main() only.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
