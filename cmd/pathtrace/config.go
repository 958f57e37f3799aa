package main

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Build variables - set by ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
)

const (
	defaultSessionFields = "ipaddr,useragent"
	defaultFormat        = "dot-graph"
	defaultOutput        = "-"
)

// appConfig is the fully resolved configuration for one run, layered
// defaults < config file < environment < flags, mirroring
// cmd/lotus/main.go's loadConfig precedence.
type appConfig struct {
	LogPath          string `mapstructure:"log-path"`
	Concurrency      int    `mapstructure:"concurrency"`
	IndexOverrides   string `mapstructure:"index"`
	SessionFields    string `mapstructure:"session"`
	TruncatePatterns string `mapstructure:"truncate-patterns"`
	Format           string `mapstructure:"format"`
	Output           string `mapstructure:"output"`
	DumpSchema       bool   `mapstructure:"dump-schema"`
	ConfigPath       string `mapstructure:"-"`
}

// loadConfig builds the base configuration from defaults, an optional
// config file, and PATHTRACE_-prefixed environment variables. Flag
// values are applied by the caller afterwards, since pflag values take
// precedence over everything viper contributes.
func loadConfig(configPath string) (appConfig, error) {
	var cfg appConfig

	v := viper.New()
	v.SetEnvPrefix("PATHTRACE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("concurrency", 0)
	v.SetDefault("session", defaultSessionFields)
	v.SetDefault("format", defaultFormat)
	v.SetDefault("output", defaultOutput)
	v.SetDefault("dump-schema", false)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return cfg, err
			}
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}
	cfg.ConfigPath = v.ConfigFileUsed()
	return cfg, nil
}
