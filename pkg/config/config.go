// Loquat is configured through flags; a config file is just another way to
// set them. The file is YAML, its keys are flag names (nested sections join
// with underscores), and its values are applied with flag.Set so every
// setting has exactly one authoritative name.

package config

import (
	"flag"
	"log/slog"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

var configFilePath = flag.String("config_file", "", "Path to an optional YAML configuration file.")

// InitFlags parses the command line and then applies the config file on top.
// It should be called after defining all flags and before using them. A
// missing or broken config file is logged and skipped; the flags keep their
// command-line values, plus whatever file keys were applied before the
// failure.
func InitFlags() {
	flag.Parse()

	if *configFilePath == "" {
		slog.Info("Config file not specified. Skipping config initialization.")
		return
	}
	if err := ApplyFile(*configFilePath); err != nil {
		slog.Error("Failed to apply config file.", "path", *configFilePath, "error", err)
	}
}

// ApplyFile reads the YAML file at path and sets every key onto its flag.
// A key that names no registered flag makes ApplyFile return an error, so
// typos surface instead of silently configuring nothing; keys applied before
// that key stay set.
func ApplyFile(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return errors.Wrap(err, "failed to read config file")
	}

	for _, key := range v.AllKeys() {
		flagName := strings.ReplaceAll(key, ".", "_")
		if flag.Lookup(flagName) == nil {
			return errors.Newf("config key '%s' does not name a flag", flagName)
		}
		if err := flag.Set(flagName, v.GetString(key)); err != nil {
			return errors.Wrapf(err, "failed to set flag %s", flagName)
		}
	}
	return nil
}
