package config

import (
	"time"

	"go.uber.org/zap/zapcore"
)

// Option overrides a field after the environment has been read.
type Option func(*Config)

func WithAPIURL(url string) Option {
	return func(c *Config) {
		c.API.BaseURL = url
	}
}

func WithImageHost(host string) Option {
	return func(c *Config) {
		c.ImageHost = host
	}
}

func WithSessionBackend(backend string) Option {
	return func(c *Config) {
		c.Session.Backend = backend
	}
}

func WithRedirectDelay(d time.Duration) Option {
	return func(c *Config) {
		c.Lifecycle.RedirectDelay = d
	}
}

func WithLogLevel(level zapcore.Level) Option {
	return func(c *Config) {
		c.Log.LogLevel = level
	}
}

func WithWriteTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.Server.WriteTimeout = d
	}
}
