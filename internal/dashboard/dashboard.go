package dashboard

import (
	"context"

	"github.com/Astemirdum/library-frontend/internal/filter"
	"github.com/Astemirdum/library-frontend/internal/guard"
	"github.com/Astemirdum/library-frontend/internal/model"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

type (
	BookLister interface {
		List(ctx context.Context) ([]model.Book, error)
	}
	CategoryLister interface {
		List(ctx context.Context) ([]model.Category, error)
	}
	UserLister interface {
		List(ctx context.Context) ([]model.User, error)
	}
	ReservationLister interface {
		List(ctx context.Context) ([]model.Reservation, error)
	}
)

type Stats struct {
	TotalBooks         int `json:"totalBooks"`
	AvailableBooks     int `json:"availableBooks"`
	ReservedBooks      int `json:"reservedBooks"`
	TotalCategories    int `json:"totalCategories"`
	TotalUsers         int `json:"totalUsers"`
	ActiveReservations int `json:"activeReservations"`
}

type Dashboard struct {
	Stats        Stats        `json:"stats"`
	QuickActions []guard.Link `json:"quickActions"`
}

var QuickActions = []guard.Link{
	{Title: "Manage Books", Path: guard.ManageBooksPath},
	{Title: "Manage Categories", Path: guard.ManageCategoryPath},
	{Title: "Manage Users", Path: guard.ManageUsersPath},
	{Title: "View All Reservations", Path: guard.ViewReservations},
}

type Loader struct {
	books        BookLister
	categories   CategoryLister
	users        UserLister
	reservations ReservationLister
}

func NewLoader(books BookLister, categories CategoryLister, users UserLister, reservations ReservationLister) *Loader {
	return &Loader{
		books:        books,
		categories:   categories,
		users:        users,
		reservations: reservations,
	}
}

// Load fetches the four collections concurrently. Any failure fails the
// whole dashboard.
func (l *Loader) Load(ctx context.Context) (Dashboard, error) {
	var (
		books        []model.Book
		categories   []model.Category
		users        []model.User
		reservations []model.Reservation
	)
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		books, err = l.books.List(ctx)
		return errors.Wrap(err, "books")
	})
	eg.Go(func() (err error) {
		categories, err = l.categories.List(ctx)
		return errors.Wrap(err, "categories")
	})
	eg.Go(func() (err error) {
		users, err = l.users.List(ctx)
		return errors.Wrap(err, "users")
	})
	eg.Go(func() (err error) {
		reservations, err = l.reservations.List(ctx)
		return errors.Wrap(err, "reservations")
	})
	if err := eg.Wait(); err != nil {
		return Dashboard{}, err
	}

	bc := filter.CountBooks(books)
	active := 0
	for _, r := range reservations {
		if r.Status == model.ReservationActive {
			active++
		}
	}
	return Dashboard{
		Stats: Stats{
			TotalBooks:         bc.Total,
			AvailableBooks:     bc.Available,
			ReservedBooks:      bc.Reserved,
			TotalCategories:    len(categories),
			TotalUsers:         len(users),
			ActiveReservations: active,
		},
		QuickActions: QuickActions,
	}, nil
}
