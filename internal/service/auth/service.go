package auth

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Astemirdum/library-frontend/internal/model"
	"github.com/Astemirdum/library-frontend/internal/service/api"
	"go.uber.org/zap"
)

type Service struct {
	*api.Client
}

func NewService(log *zap.Logger, cfg api.Config) *Service {
	return &Service{Client: api.NewClient(log, cfg, "auth")}
}

// Login returns the raw body of a successful login; its shape is decoded
// by ParseIdentity.
func (s *Service) Login(ctx context.Context, c model.Credentials) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := s.JSON(ctx, http.MethodPost, "/auth/login", nil, c, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (s *Service) Signup(ctx context.Context, req model.SignupRequest) error {
	return s.JSON(ctx, http.MethodPost, "/auth/signup", nil, req, nil)
}
