// Package config loads a sched.Config overlay from environment variables
// and an optional YAML file, for callers (like cmd/schedctl) that want to
// configure a Scheduler without wiring viper into the core package itself.
// The core sched.Scheduler never reads environment or files directly; it
// only accepts Options built from values this package produces.
package config

import (
	"time"

	"github.com/spf13/viper"
)

// Overlay is the subset of scheduler configuration a deployment typically
// wants to set from the environment or a config file.
type Overlay struct {
	LogLevel        string
	IdleWaitMS      int
	MetricsEnabled  bool
	MetricsAddr     string
	MetricsInterval time.Duration
}

// Load reads an Overlay from environment variables prefixed SCHEDCTL_ and,
// if present, a YAML file named config.yaml in the current directory or
// /etc/schedctl. A missing file is not an error; missing keys fall back to
// the defaults below.
func Load() (*Overlay, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/schedctl")

	v.SetDefault("loglevel", "info")
	v.SetDefault("idlewaitms", 1000)
	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.addr", ":9090")
	v.SetDefault("metrics.interval", 10*time.Second)

	v.SetEnvPrefix("SCHEDCTL")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, err
		}
	}

	return &Overlay{
		LogLevel:        v.GetString("loglevel"),
		IdleWaitMS:      v.GetInt("idlewaitms"),
		MetricsEnabled:  v.GetBool("metrics.enabled"),
		MetricsAddr:     v.GetString("metrics.addr"),
		MetricsInterval: v.GetDuration("metrics.interval"),
	}, nil
}
