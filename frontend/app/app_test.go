package app

import (
	"testing"

	"github.com/Astemirdum/library-frontend/frontend/config"
	"github.com/stretchr/testify/require"
)

func TestRun_RefusesDefaultSessionSecret(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{Session: config.Session{Backend: config.SessionCookie, Secret: config.DefaultSessionSecret}}
	require.ErrorIs(t, Run(cfg), config.ErrSessionSecret)
}
