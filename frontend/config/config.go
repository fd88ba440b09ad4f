package config

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/Astemirdum/library-frontend/internal/lifecycle"
	"github.com/Astemirdum/library-frontend/internal/service/api"
	"github.com/Astemirdum/library-frontend/pkg/kafka"
	"github.com/Astemirdum/library-frontend/pkg/logger"
	"github.com/Astemirdum/library-frontend/pkg/postgres"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

type HTTPServer struct {
	Host         string        `yaml:"host" envconfig:"FRONTEND_HTTP_HOST" default:"0.0.0.0"`
	Port         string        `yaml:"port" envconfig:"FRONTEND_HTTP_PORT" default:"3000"`
	ReadTimeout  time.Duration `yaml:"readTimeout" envconfig:"HTTP_READ" default:"10s"`
	WriteTimeout time.Duration `yaml:"writeTimeout" envconfig:"HTTP_WRITE" default:"40s"`
}

const (
	SessionCookie   = "cookie"
	SessionPostgres = "postgres"

	// DefaultSessionSecret is a placeholder. The cookie backend refuses it.
	DefaultSessionSecret = "change-me"
)

var ErrSessionSecret = errors.New("SESSION_SECRET must be set to a private value for the cookie session backend")

type Session struct {
	Backend string        `envconfig:"SESSION_BACKEND" default:"cookie"`
	Secret  string        `json:"-" envconfig:"SESSION_SECRET" default:"change-me"`
	TTL     time.Duration `envconfig:"SESSION_TTL" default:"24h"`
	Secure  bool          `envconfig:"SESSION_SECURE"`
}

// Validate rejects a cookie backend signing with a secret anyone knows.
func (s Session) Validate() error {
	if s.Backend != SessionCookie {
		return nil
	}
	if secret := strings.TrimSpace(s.Secret); secret == "" || secret == DefaultSessionSecret {
		return ErrSessionSecret
	}
	return nil
}

type Config struct {
	Server    HTTPServer       `yaml:"server"`
	API       api.Config       `yaml:"api"`
	ImageHost string           `yaml:"imageHost" envconfig:"IMAGE_HOST" default:"http://localhost:8082"`
	Session   Session          `yaml:"session"`
	Lifecycle lifecycle.Config `yaml:"lifecycle"`
	Kafka     kafka.Config     `yaml:"kafka"`
	Database  postgres.DB      `yaml:"db"`
	Log       logger.Log       `yaml:"log"`
}

var (
	once sync.Once
	cfg  *Config
)

// NewConfig reads config from environment.
func NewConfig(ops ...Option) *Config {
	once.Do(func() {
		var config Config
		err := envconfig.Process("", &config)
		if err != nil {
			log.Fatal("NewConfig ", err)
		}
		for _, op := range ops {
			op(&config)
		}
		cfg = &config
		printConfig(cfg)
	})

	return cfg
}

func printConfig(cfg *Config) {
	jscfg, _ := json.MarshalIndent(cfg, "", "	") //nolint:errcheck
	fmt.Println(string(jscfg))
}
