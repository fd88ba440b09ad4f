package handler

import (
	"context"
	"encoding/json"
	"io"

	"github.com/Astemirdum/library-frontend/frontend/internal/storage"
	"github.com/Astemirdum/library-frontend/internal/lifecycle"
	"github.com/Astemirdum/library-frontend/internal/model"
	"github.com/Astemirdum/library-frontend/internal/service/auth"
	"github.com/Astemirdum/library-frontend/internal/service/book"
	"github.com/Astemirdum/library-frontend/internal/service/category"
	"github.com/Astemirdum/library-frontend/internal/service/reservation"
	"github.com/Astemirdum/library-frontend/internal/service/user"
	"github.com/Astemirdum/library-frontend/internal/session"
	"github.com/labstack/echo/v4"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

var (
	_ AuthService                  = (*auth.Service)(nil)
	_ session.AuthService          = (AuthService)(nil)
	_ BookService                  = (*book.Service)(nil)
	_ CategoryService              = (*category.Service)(nil)
	_ UserService                  = (*user.Service)(nil)
	_ ReservationService           = (*reservation.Service)(nil)
	_ lifecycle.ReservationService = (ReservationService)(nil)
	_ SessionStorage               = (storage.Factory)(nil)
)

type AuthService interface {
	Login(ctx context.Context, c model.Credentials) (json.RawMessage, error)
	Signup(ctx context.Context, req model.SignupRequest) error
}

type BookService interface {
	List(ctx context.Context) ([]model.Book, error)
	Get(ctx context.Context, id int64) (model.Book, error)
	Filter(ctx context.Context, f model.BookFilter) ([]model.Book, error)
	Create(ctx context.Context, b model.Book) (model.Book, error)
	Update(ctx context.Context, id int64, b model.Book) (model.Book, error)
	Delete(ctx context.Context, id int64) error
	UploadCover(ctx context.Context, id int64, filename string, image io.Reader) (model.Book, error)
	SetStatus(ctx context.Context, id int64, status model.BookStatus) (model.Book, error)
}

type CategoryService interface {
	List(ctx context.Context) ([]model.Category, error)
	Create(ctx context.Context, name string) (model.Category, error)
	Update(ctx context.Context, id int64, name string) (model.Category, error)
	Delete(ctx context.Context, id int64) error
}

type UserService interface {
	List(ctx context.Context) ([]model.User, error)
	Blacklist(ctx context.Context, id int64) error
	Unblacklist(ctx context.Context, id int64) error
}

type ReservationService interface {
	Create(ctx context.Context, req model.CreateReservationRequest) (model.Reservation, error)
	List(ctx context.Context) ([]model.Reservation, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Reservation, error)
	MarkReturned(ctx context.Context, id int64) (model.Reservation, error)
}

type SessionStorage interface {
	For(c echo.Context) session.Storage
}
