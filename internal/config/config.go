// Package config contains convenience functions for reading tuneloop settings
// with viper.
package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/thalesfsp/tuneloop"
	"github.com/thalesfsp/tuneloop/tuners"
)

const (
	// EnvPrefix prefixes every environment override, e.g. TUNELOOP_TUNER_SEED.
	EnvPrefix = "TUNELOOP"

	// LegacyDebugEnv is the environment variable older benchmark harnesses
	// use to enable debug capture.
	LegacyDebugEnv = "GCP_DEBUG_PATH"
)

// Keys read from the configuration file and the environment.
const (
	KeyDebugBasePath   = "debug.base_path"
	KeyLogLevel        = "logging.level"
	KeyLogFormat       = "logging.format"
	KeySeed            = "tuner.seed"
	KeyNumCandidates   = "tuner.candidates"
	KeyMinTrials       = "tuner.min_trials"
	KeyAllowDuplicates = "tuner.allow_duplicates"
)

var logger = logrus.WithFields(logrus.Fields{
	"app":       "tuneloop",
	"component": "config",
})

// View is a read-only view of the configuration. *viper.Viper implements it.
type View interface {
	IsSet(string) bool
	GetString(string) string
	GetInt(string) int
	GetInt64(string) int64
	GetBool(string) bool
}

// Settings holds everything a tuning run can be configured with from outside
// the process.
type Settings struct {
	DebugBasePath   string
	LogLevel        string
	LogFormat       string
	Seed            int64
	NumCandidates   int
	MinTrials       int
	AllowDuplicates bool
}

// Read loads settings from the optional config file at path (YAML or JSON,
// empty for none), then applies environment overrides.
func Read(path string) (*Settings, error) {
	cfg := viper.New()

	defaults := tuners.DefaultOptions()
	cfg.SetDefault(KeyLogLevel, "info")
	cfg.SetDefault(KeyLogFormat, "text")
	cfg.SetDefault(KeyNumCandidates, defaults.NumCandidates)
	cfg.SetDefault(KeyMinTrials, defaults.MinTrials)
	cfg.SetDefault(KeyAllowDuplicates, defaults.AllowDuplicates)

	cfg.SetEnvPrefix(EnvPrefix)
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()

	if err := cfg.BindEnv(KeyDebugBasePath, EnvPrefix+"_DEBUG_BASE_PATH", LegacyDebugEnv); err != nil {
		return nil, errors.Wrap(err, "binding debug path environment")
	}

	if path != "" {
		cfg.SetConfigFile(path)

		if err := cfg.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "reading config file %s", path)
		}

		logger.WithField("filename", cfg.ConfigFileUsed()).Debug("Configuration file loaded.")
	}

	return FromView(cfg), nil
}

// FromView extracts Settings from any configuration view.
func FromView(cfg View) *Settings {
	return &Settings{
		DebugBasePath:   cfg.GetString(KeyDebugBasePath),
		LogLevel:        cfg.GetString(KeyLogLevel),
		LogFormat:       cfg.GetString(KeyLogFormat),
		Seed:            cfg.GetInt64(KeySeed),
		NumCandidates:   cfg.GetInt(KeyNumCandidates),
		MinTrials:       cfg.GetInt(KeyMinTrials),
		AllowDuplicates: cfg.GetBool(KeyAllowDuplicates),
	}
}

// TunerOptions returns the tuner construction options.
func (s *Settings) TunerOptions() tuneloop.TunerOptions {
	return tuneloop.TunerOptions{
		Seed:            s.Seed,
		NumCandidates:   s.NumCandidates,
		MinTrials:       s.MinTrials,
		AllowDuplicates: s.AllowDuplicates,
	}
}

// DriverConfig returns a run configuration. label names the scoring function
// and becomes the debug subdirectory when debug capture is enabled.
func (s *Settings) DriverConfig(label string) tuneloop.Config {
	config := tuneloop.DefaultConfig()
	config.DebugBasePath = s.DebugBasePath
	config.DebugLabel = label
	config.Tuner = s.TunerOptions()

	return config
}
