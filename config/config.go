// Package config loads the settings of quilldoc from a YAML file, the
// environment (QUILLDOC_ prefix) and command-line flags, in increasing order
// of precedence.
package config

import (
	"errors"
	"strings"

	"github.com/cozy/quill-go/editor"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the whole configuration.
type Config struct {
	Log struct {
		Level       string `mapstructure:"level"`
		Development bool   `mapstructure:"development"`
	} `mapstructure:"log"`
	Store struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"store"`
	Editor editor.Options `mapstructure:"editor"`
}

// Flags bound to configuration keys.
var flagKeys = map[string]string{
	"log-level":         "log.level",
	"dev":               "log.development",
	"dsn":               "store.dsn",
	"history-delay":     "editor.history.delay",
	"history-max-stack": "editor.history.max_stack",
}

// Flags returns the flag set understood by Load.
func Flags() *pflag.FlagSet {
	defaults := editor.DefaultOptions()
	fs := pflag.NewFlagSet("quilldoc", pflag.ContinueOnError)
	fs.StringP("config", "c", "", "configuration file")
	fs.String("log-level", "info", "log level")
	fs.Bool("dev", false, "development logging")
	fs.String("dsn", "quilldoc.db", "snapshot database")
	fs.Duration("history-delay", defaults.History.Delay, "changes closer than this are undone together")
	fs.Int("history-max-stack", defaults.History.MaxStack, "number of undo entries")
	return fs
}

func setDefaults(v *viper.Viper) {
	defaults := editor.DefaultOptions()
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("store.dsn", "quilldoc.db")
	v.SetDefault("editor.history.delay", defaults.History.Delay)
	v.SetDefault("editor.history.max_stack", defaults.History.MaxStack)
	v.SetDefault("editor.history.user_only", defaults.History.UserOnly)
}

// Load reads the configuration. Without a path, quilldoc.yaml is looked up
// in the working directory and is optional. Only the flags that were set
// override the other sources.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("QUILLDOC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	} else {
		v.SetConfigName("quilldoc")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, err
			}
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
