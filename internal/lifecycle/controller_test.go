package lifecycle

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/Astemirdum/library-frontend/internal/errs"
	"github.com/Astemirdum/library-frontend/internal/model"
	"github.com/Astemirdum/library-frontend/internal/view"
	"github.com/Astemirdum/library-frontend/pkg/kafka"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	lifecycle_mocks "github.com/Astemirdum/library-frontend/internal/lifecycle/mocks"
)

var (
	reader    = &model.Identity{ID: 42, Email: "reader@lib.io", Role: model.RoleUser}
	librarian = &model.Identity{ID: 1, Email: "admin@lib.io", Role: model.RoleLibrarian}
	clock     = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
)

type recordedEvents struct {
	events []kafka.ActivityEvent
}

func (r *recordedEvents) Log(ev kafka.ActivityEvent) error {
	r.events = append(r.events, ev)
	return nil
}

func newController(t *testing.T) (*Controller, *lifecycle_mocks.MockReservationService, *view.BookCache, *recordedEvents) {
	t.Helper()
	ctrl := gomock.NewController(t)
	svc := lifecycle_mocks.NewMockReservationService(ctrl)
	books := view.NewBookCache()
	events := &recordedEvents{}
	c := NewController(svc, books, events, zap.NewNop(), Config{RedirectDelay: 2 * time.Second})
	c.now = func() time.Time { return clock }
	return c, svc, books, events
}

func seed(t *testing.T, books *view.BookCache, items ...model.Book) {
	t.Helper()
	_, err := books.Refresh(context.Background(), func(context.Context) ([]model.Book, error) { return items, nil })
	require.NoError(t, err)
}

func TestController_Reserve_Preconditions(t *testing.T) {
	t.Parallel()
	available := model.Book{ID: 9, Title: "Dune", Status: model.BookAvailable}

	tests := []struct {
		name     string
		identity *model.Identity
		book     model.Book
		days     int
		wantErr  error
	}{
		{name: "anonymous", identity: nil, book: available, days: 7, wantErr: errs.ErrNotAuthenticated},
		{name: "profile not loaded", identity: &model.Identity{Email: "x@lib.io", Role: model.RoleUser}, book: available, days: 7, wantErr: errs.ErrProfileNotLoaded},
		{name: "zero days", identity: reader, book: available, days: 0, wantErr: errs.ErrInvalidDuration},
		{name: "ten days", identity: reader, book: available, days: 10, wantErr: errs.ErrInvalidDuration},
		{name: "reserved book", identity: reader, book: model.Book{ID: 9, Status: model.BookReserved}, days: 14, wantErr: errs.ErrBookUnavailable},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			// no expectations: a rejected reservation never reaches the API
			c, _, _, events := newController(t)
			_, err := c.Reserve(context.Background(), tt.identity, tt.book, tt.days)
			require.ErrorIs(t, err, tt.wantErr)
			require.Empty(t, events.events)
		})
	}
}

func TestController_Reserve(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("fills missing dates and marks the book reserved", func(t *testing.T) {
		t.Parallel()
		c, svc, books, events := newController(t)
		seed(t, books, model.Book{ID: 9, Title: "Dune", Status: model.BookAvailable})

		refetched := []model.Reservation{{ID: 5, Status: model.ReservationActive}}
		gomock.InOrder(
			svc.EXPECT().
				Create(gomock.Any(), model.CreateReservationRequest{UserID: 42, BookID: 9, Days: 14}).
				Return(model.Reservation{ID: 5}, nil),
			svc.EXPECT().ListByUser(gomock.Any(), int64(42)).Return(refetched, nil),
		)

		out, err := c.Reserve(ctx, reader, model.Book{ID: 9, Title: "Dune", Status: model.BookAvailable}, 14)
		require.NoError(t, err)
		require.Equal(t, "Book reserved successfully!", out.Message)
		require.Equal(t, ReservationsPath, out.Redirect)
		require.Equal(t, 2*time.Second, out.RedirectAfter)
		require.Equal(t, model.ReservationActive, out.Reservation.Status)
		require.True(t, out.Reservation.ReservationDate.Equal(clock))
		require.True(t, out.Reservation.DueDate.Equal(clock.AddDate(0, 0, 14)))
		require.Equal(t, refetched, out.Reservations)

		cached, ok := books.Get(9)
		require.True(t, ok)
		require.Equal(t, model.BookReserved, cached.Status)

		require.Len(t, events.events, 1)
		require.Equal(t, kafka.EventReserve, events.events[0].EventType)
		require.Equal(t, 14, events.events[0].Days)
	})

	t.Run("server due date is kept", func(t *testing.T) {
		t.Parallel()
		c, svc, _, _ := newController(t)
		due := model.NewDate(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
		svc.EXPECT().Create(gomock.Any(), gomock.Any()).
			Return(model.Reservation{ID: 5, DueDate: due, Status: model.ReservationActive}, nil)
		svc.EXPECT().ListByUser(gomock.Any(), int64(42)).Return(nil, errors.New("timeout"))

		out, err := c.Reserve(ctx, reader, model.Book{ID: 9, Status: model.BookAvailable}, 7)
		require.NoError(t, err)
		require.Equal(t, due, out.Reservation.DueDate)
		require.Nil(t, out.Reservations)
	})

	t.Run("embedded book follows the reservation", func(t *testing.T) {
		t.Parallel()
		c, svc, books, _ := newController(t)
		seed(t, books, model.Book{ID: 9, Title: "Dune", Status: model.BookAvailable})
		svc.EXPECT().Create(gomock.Any(), gomock.Any()).
			Return(model.Reservation{ID: 5, Book: &model.Book{ID: 9, Title: "Dune", Status: model.BookAvailable}}, nil)
		svc.EXPECT().ListByUser(gomock.Any(), int64(42)).Return(nil, nil)

		out, err := c.Reserve(ctx, reader, model.Book{ID: 9, Title: "Dune", Status: model.BookAvailable}, 7)
		require.NoError(t, err)
		require.NotNil(t, out.Reservation.Book)
		require.Equal(t, model.BookReserved, out.Reservation.Book.Status)
		require.Equal(t, out.Book, *out.Reservation.Book)
	})

	t.Run("server message is surfaced", func(t *testing.T) {
		t.Parallel()
		c, svc, books, _ := newController(t)
		seed(t, books, model.Book{ID: 9, Status: model.BookAvailable})
		svc.EXPECT().Create(gomock.Any(), gomock.Any()).
			Return(model.Reservation{}, &errs.APIError{Code: http.StatusConflict, Payload: "User is blacklisted"})

		_, err := c.Reserve(ctx, reader, model.Book{ID: 9, Status: model.BookAvailable}, 21)
		require.Error(t, err)
		require.Equal(t, "User is blacklisted", errs.UserMessage(err, ""))
		require.Equal(t, http.StatusConflict, errs.StatusCode(err))

		cached, _ := books.Get(9)
		require.Equal(t, model.BookAvailable, cached.Status)
	})

	t.Run("generic failure", func(t *testing.T) {
		t.Parallel()
		c, svc, _, _ := newController(t)
		svc.EXPECT().Create(gomock.Any(), gomock.Any()).Return(model.Reservation{}, errors.New("dial tcp"))

		_, err := c.Reserve(ctx, reader, model.Book{ID: 9, Status: model.BookAvailable}, 21)
		require.Equal(t, "Failed to reserve book. Please try again.", errs.UserMessage(err, ""))
	})
}

func TestController_Return(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	active := model.Reservation{
		ID:     5,
		Book:   &model.Book{ID: 9, Status: model.BookReserved},
		Status: model.ReservationActive,
	}

	t.Run("requires confirmation", func(t *testing.T) {
		t.Parallel()
		c, _, _, _ := newController(t)
		_, err := c.Return(ctx, reader, active, false)
		require.ErrorIs(t, err, errs.ErrConfirmationRequired)
	})

	t.Run("returned rows are not sent again", func(t *testing.T) {
		t.Parallel()
		c, _, _, _ := newController(t)
		done := active
		done.Status = model.ReservationReturned
		_, err := c.Return(ctx, reader, done, true)
		require.ErrorIs(t, err, errs.ErrAlreadyReturned)
	})

	t.Run("reader", func(t *testing.T) {
		t.Parallel()
		c, svc, books, events := newController(t)
		seed(t, books, model.Book{ID: 9, Status: model.BookReserved})
		svc.EXPECT().MarkReturned(gomock.Any(), int64(5)).Return(model.Reservation{}, nil)
		svc.EXPECT().ListByUser(gomock.Any(), int64(42)).Return([]model.Reservation{}, nil)

		out, err := c.Return(ctx, reader, active, true)
		require.NoError(t, err)
		require.Equal(t, "Book returned successfully!", out.Message)
		require.Equal(t, int64(5), out.Reservation.ID)
		require.Equal(t, model.ReservationReturned, out.Reservation.Status)
		require.NotNil(t, out.Reservations)

		cached, _ := books.Get(9)
		require.Equal(t, model.BookAvailable, cached.Status)
		require.Equal(t, kafka.EventReturn, events.events[0].EventType)
		require.Equal(t, int64(9), events.events[0].BookID)
	})

	t.Run("librarian messages", func(t *testing.T) {
		t.Parallel()
		c, svc, _, _ := newController(t)
		svc.EXPECT().MarkReturned(gomock.Any(), int64(5)).Return(model.Reservation{ID: 5, Status: model.ReservationReturned}, nil)
		svc.EXPECT().List(gomock.Any()).Return([]model.Reservation{active}, nil)

		out, err := c.Return(ctx, librarian, active, true)
		require.NoError(t, err)
		require.Equal(t, "Book marked as returned!", out.Message)
		require.Len(t, out.Reservations, 1)

		c, svc, _, _ = newController(t)
		svc.EXPECT().MarkReturned(gomock.Any(), int64(5)).Return(model.Reservation{}, errors.New("boom"))
		_, err = c.Return(ctx, librarian, active, true)
		require.Equal(t, "Failed to process return", errs.UserMessage(err, ""))
	})
}

func TestController_Find(t *testing.T) {
	t.Parallel()
	c, svc, _, _ := newController(t)
	svc.EXPECT().ListByUser(gomock.Any(), int64(42)).Return([]model.Reservation{{ID: 1}, {ID: 2}}, nil).Times(2)

	r, err := c.Find(context.Background(), reader, 2)
	require.NoError(t, err)
	require.Equal(t, int64(2), r.ID)

	_, err = c.Find(context.Background(), reader, 3)
	require.ErrorIs(t, err, errs.ErrNotFound)

	_, err = c.Find(context.Background(), nil, 3)
	require.ErrorIs(t, err, errs.ErrNotAuthenticated)
}

func TestOverdue(t *testing.T) {
	t.Parallel()
	past := model.NewDate(clock.AddDate(0, 0, -1))
	items := []model.Reservation{
		{ID: 1, Status: model.ReservationActive, DueDate: past},
		{ID: 2, Status: model.ReservationReturned, DueDate: past},
		{ID: 3, Status: model.ReservationActive, DueDate: model.NewDate(clock.AddDate(0, 0, 1))},
		{ID: 4, Status: model.ReservationActive},
	}
	got := Overdue(items, clock)
	require.Len(t, got, 1)
	require.Equal(t, int64(1), got[0].ID)
}
