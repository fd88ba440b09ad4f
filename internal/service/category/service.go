package category

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
	return &Service{Client: api.NewClient(log, cfg, "categories")}
}

func (s *Service) List(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := s.JSON(ctx, http.MethodGet, "/categories", nil, nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *Service) Create(ctx context.Context, name string) (model.Category, error) {
	var c model.Category
	if err := s.JSON(ctx, http.MethodPost, "/categories", nil, model.Category{Name: name}, &c); err != nil {
		return model.Category{}, err
	}
	return c, nil
}

func (s *Service) Update(ctx context.Context, id int64, name string) (model.Category, error) {
	var c model.Category
	if err := s.JSON(ctx, http.MethodPut, fmt.Sprintf("/categories/%d", id), nil, model.Category{Name: name}, &c); err != nil {
		return model.Category{}, err
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.JSON(ctx, http.MethodDelete, fmt.Sprintf("/categories/%d", id), nil, nil, nil)
}
