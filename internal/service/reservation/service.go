package reservation

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
	log *zap.Logger
}

func NewService(log *zap.Logger, cfg api.Config) *Service {
	return &Service{
		Client: api.NewClient(log, cfg, "reservations"),
		log:    log.Named("reservations"),
	}
}

func (s *Service) Create(ctx context.Context, req model.CreateReservationRequest) (model.Reservation, error) {
	var rsv model.Reservation
	if err := s.JSON(ctx, http.MethodPost, "/reservations", nil, req, &rsv); err != nil {
		return model.Reservation{}, err
	}
	return rsv, nil
}

// List returns every reservation; the API allows it for librarians only.
func (s *Service) List(ctx context.Context) ([]model.Reservation, error) {
	var items []model.Reservation
	if err := s.JSON(ctx, http.MethodGet, "/reservations", nil, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ListByUser answers an empty list without calling the API when the user
// id is not known yet.
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]model.Reservation, error) {
	if userID == 0 {
		s.log.Warn("ListByUser called without a user id")
		return []model.Reservation{}, nil
	}
	var items []model.Reservation
	if err := s.JSON(ctx, http.MethodGet, fmt.Sprintf("/reservations/user/%d", userID), nil, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Service) MarkReturned(ctx context.Context, id int64) (model.Reservation, error) {
	var rsv model.Reservation
	if err := s.JSON(ctx, http.MethodPatch, fmt.Sprintf("/reservations/%d/return", id), nil, nil, &rsv); err != nil {
		return model.Reservation{}, err
	}
	return rsv, nil
}
