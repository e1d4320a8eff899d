// Package config loads the defaults of the fixcol command from the
// environment and optional dotenv files.
package config

import (
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/ianlopshire/go-fixcol"
)

// Config holds the settings shared by every fixcol subcommand. Command line
// flags take precedence over these values.
type Config struct {
	Layout     string `env:"FIXCOL_LAYOUT"`
	Strict     bool   `env:"FIXCOL_STRICT" envDefault:"false"`
	Codepoints bool   `env:"FIXCOL_CODEPOINTS" envDefault:"false"`
	Charset    string `env:"FIXCOL_CHARSET" envDefault:"utf-8"`
	LogLevel   string `env:"FIXCOL_LOG_LEVEL" envDefault:"info"`
	FailFast   bool   `env:"FIXCOL_FAIL_FAST" envDefault:"false"`
}

// Load reads the configuration from the environment after loading files
// into it. Variables already set are not overridden by the files, and
// missing files are skipped. Without files, ".env" is tried.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, errors.Wrapf(err, "config: load %s", f)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "config: parse environment")
	}
	return cfg, nil
}

// Options returns the codec options selected by c. Strict is only passed
// when set, so a layout that is strict on its own stays strict.
func (c Config) Options() []fixcol.Option {
	opts := []fixcol.Option{fixcol.WithCodepointIndices(c.Codepoints)}
	if c.Strict {
		opts = append(opts, fixcol.WithStrict(true))
	}
	return opts
}
