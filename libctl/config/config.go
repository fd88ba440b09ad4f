package config

import (
	"os"
	"path/filepath"

	"github.com/Astemirdum/library-frontend/internal/lifecycle"
	"github.com/Astemirdum/library-frontend/internal/service/api"
	"github.com/Astemirdum/library-frontend/pkg/logger"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

const stateFile = "state.db"

type Config struct {
	API       api.Config
	ImageHost string `envconfig:"IMAGE_HOST" default:"http://localhost:8082"`
	// State is the sqlite file holding the identity of the OS user.
	State     string `envconfig:"LIBCTL_STATE"`
	Lifecycle lifecycle.Config
	Log       logger.Log
}

type Option func(cfg *Config)

func WithState(path string) Option {
	return func(cfg *Config) {
		cfg.State = path
	}
}

func WithAPIURL(url string) Option {
	return func(cfg *Config) {
		cfg.API.BaseURL = url
	}
}

// NewConfig reads config from environment. The state file and the log sink
// default to the user config dir so the terminal only shows command output.
func NewConfig(ops ...Option) (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "envconfig")
	}
	for _, op := range ops {
		op(&cfg)
	}
	if cfg.State == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, errors.Wrap(err, "user config dir")
		}
		cfg.State = filepath.Join(dir, "libctl", stateFile)
	}
	if cfg.Log.Sink == "" {
		cfg.Log.Sink = filepath.Join(filepath.Dir(cfg.State), "libctl.log")
	}
	return &cfg, nil
}
