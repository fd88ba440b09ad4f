package book

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Astemirdum/library-frontend/internal/model"
	"github.com/Astemirdum/library-frontend/internal/service/api"
	"go.uber.org/zap"
)

type Service struct {
	*api.Client
}

func NewService(log *zap.Logger, cfg api.Config) *Service {
	return &Service{Client: api.NewClient(log, cfg, "books")}
}

func (s *Service) List(ctx context.Context) ([]model.Book, error) {
	var books []model.Book
	if err := s.JSON(ctx, http.MethodGet, "/books", nil, nil, &books); err != nil {
		return nil, err
	}
	return books, nil
}

func (s *Service) Get(ctx context.Context, id int64) (model.Book, error) {
	var book model.Book
	if err := s.JSON(ctx, http.MethodGet, fmt.Sprintf("/books/%d", id), nil, nil, &book); err != nil {
		return model.Book{}, err
	}
	return book, nil
}

// Filter delegates matching to the server. An empty filter lists everything.
func (s *Service) Filter(ctx context.Context, f model.BookFilter) ([]model.Book, error) {
	if f.IsEmpty() {
		return s.List(ctx)
	}
	q := url.Values{}
	for k, v := range map[string]string{
		"category": f.Category,
		"author":   f.Author,
		"genre":    f.Genre,
		"language": f.Language,
	} {
		if v = strings.TrimSpace(v); v != "" {
			q.Set(k, v)
		}
	}
	var books []model.Book
	if err := s.JSON(ctx, http.MethodGet, "/books/filter", q, nil, &books); err != nil {
		return nil, err
	}
	return books, nil
}

func (s *Service) Create(ctx context.Context, b model.Book) (model.Book, error) {
	var created model.Book
	if err := s.JSON(ctx, http.MethodPost, "/books", nil, b, &created); err != nil {
		return model.Book{}, err
	}
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, b model.Book) (model.Book, error) {
	var updated model.Book
	if err := s.JSON(ctx, http.MethodPut, fmt.Sprintf("/books/%d", id), nil, b, &updated); err != nil {
		return model.Book{}, err
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.JSON(ctx, http.MethodDelete, fmt.Sprintf("/books/%d", id), nil, nil, nil)
}

// UploadCover posts the image as multipart field "image".
func (s *Service) UploadCover(ctx context.Context, id int64, filename string, image io.Reader) (model.Book, error) {
	var book model.Book
	if err := s.Multipart(ctx, fmt.Sprintf("/books/%d/upload-image", id), "image", filename, image, &book); err != nil {
		return model.Book{}, err
	}
	return book, nil
}

func (s *Service) SetStatus(ctx context.Context, id int64, status model.BookStatus) (model.Book, error) {
	q := url.Values{"status": []string{string(status)}}
	var book model.Book
	if err := s.JSON(ctx, http.MethodPatch, fmt.Sprintf("/books/%d/status", id), q, nil, &book); err != nil {
		return model.Book{}, err
	}
	return book, nil
}
