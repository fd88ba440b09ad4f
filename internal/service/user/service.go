package user

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Astemirdum/library-frontend/internal/model"
	"github.com/Astemirdum/library-frontend/internal/service/api"
	"go.uber.org/zap"
)

type Service struct {
	*api.Client
}

func NewService(log *zap.Logger, cfg api.Config) *Service {
	return &Service{Client: api.NewClient(log, cfg, "users")}
}

func (s *Service) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := s.JSON(ctx, http.MethodGet, "/users", nil, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Service) Blacklist(ctx context.Context, id int64) error {
	return s.JSON(ctx, http.MethodPatch, fmt.Sprintf("/users/%d/blacklist", id), nil, nil, nil)
}

func (s *Service) Unblacklist(ctx context.Context, id int64) error {
	return s.JSON(ctx, http.MethodPatch, fmt.Sprintf("/users/%d/unblacklist", id), nil, nil, nil)
}
