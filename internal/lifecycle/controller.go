package lifecycle

import (
	"context"
	"time"

	"github.com/Astemirdum/library-frontend/internal/activity"
	"github.com/Astemirdum/library-frontend/internal/errs"
	"github.com/Astemirdum/library-frontend/internal/model"
	"github.com/Astemirdum/library-frontend/internal/view"
	"github.com/Astemirdum/library-frontend/pkg/kafka"
	"go.uber.org/zap"
)

//go:generate go run github.com/golang/mock/mockgen -source=controller.go -destination=mocks/mock.go

type ReservationService interface {
	Create(ctx context.Context, req model.CreateReservationRequest) (model.Reservation, error)
	List(ctx context.Context) ([]model.Reservation, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Reservation, error)
	MarkReturned(ctx context.Context, id int64) (model.Reservation, error)
}

type Config struct {
	RedirectDelay time.Duration `envconfig:"RESERVE_REDIRECT_DELAY" default:"2s"`
}

const (
	reservedMessage       = "Book reserved successfully!"
	returnedMessage       = "Book returned successfully!"
	markedReturnedMessage = "Book marked as returned!"

	reserveFailed       = "Failed to reserve book. Please try again."
	returnFailed        = "Failed to return book"
	processReturnFailed = "Failed to process return"

	ReservationsPath = "/reservations"
)

// Controller drives reservations through ACTIVE -> RETURNED from the
// client side. The API stays the authority; checks made here only spare
// requests that are bound to fail.
type Controller struct {
	reservations ReservationService
	books        *view.BookCache
	activity     activity.Logger
	log          *zap.Logger
	delay        time.Duration
	now          func() time.Time
}

func NewController(reservations ReservationService, books *view.BookCache, activityLog activity.Logger, log *zap.Logger, cfg Config) *Controller {
	if activityLog == nil {
		activityLog = activity.Nop()
	}
	return &Controller{
		reservations: reservations,
		books:        books,
		activity:     activityLog,
		log:          log.Named("lifecycle"),
		delay:        cfg.RedirectDelay,
		now:          time.Now,
	}
}

type ReserveOutcome struct {
	Reservation model.Reservation
	Book        model.Book
	// Reservations is the refetched list of the reader, nil if the refetch failed.
	Reservations  []model.Reservation
	Message       string
	Redirect      string
	RedirectAfter time.Duration
}

// Reserve books a copy for days days. Every precondition is checked
// before the request is sent.
func (c *Controller) Reserve(ctx context.Context, identity *model.Identity, book model.Book, days int) (ReserveOutcome, error) {
	if identity == nil {
		return ReserveOutcome{}, errs.ErrNotAuthenticated
	}
	if !identity.Resolved() {
		c.log.Warn("reserve without resolved user id", zap.String("email", identity.Email))
		return ReserveOutcome{}, errs.ErrProfileNotLoaded
	}
	if !model.IsAllowedDuration(days) {
		return ReserveOutcome{}, errs.ErrInvalidDuration
	}
	if book.Status == model.BookReserved {
		return ReserveOutcome{}, errs.ErrBookUnavailable
	}

	requestedAt := c.now()
	rsv, err := c.reservations.Create(ctx, model.CreateReservationRequest{
		UserID: identity.ID,
		BookID: book.ID,
		Days:   days,
	})
	if err != nil {
		c.log.Info("reservation rejected",
			zap.Int64("userId", identity.ID),
			zap.Int64("bookId", book.ID),
			zap.Error(err))
		return ReserveOutcome{}, &errs.Failure{Message: errs.UserMessage(err, reserveFailed), Err: err}
	}
	if rsv.ReservationDate.IsZero() {
		rsv.ReservationDate = model.NewDate(requestedAt)
	}
	if rsv.DueDate.IsZero() {
		rsv.DueDate = model.NewDate(model.DueDate(rsv.ReservationDate.Time, days))
	}
	if rsv.Status == "" {
		rsv.Status = model.ReservationActive
	}

	book.Status = model.BookReserved
	if rsv.Book == nil {
		rsv.Book = &book
	} else {
		embedded := *rsv.Book
		embedded.Status = model.BookReserved
		rsv.Book = &embedded
	}
	c.books.Put(book)

	if err := c.activity.Log(kafka.ActivityEvent{
		UserID:        identity.ID,
		Email:         identity.Email,
		EventType:     kafka.EventReserve,
		ReservationID: rsv.ID,
		BookID:        book.ID,
		Days:          days,
	}); err != nil {
		c.log.Warn("activity", zap.Error(err))
	}

	out := ReserveOutcome{
		Reservation:   rsv,
		Book:          book,
		Message:       reservedMessage,
		Redirect:      ReservationsPath,
		RedirectAfter: c.delay,
	}
	items, err := c.reservations.ListByUser(ctx, identity.ID)
	if err != nil {
		c.log.Warn("refetch reservations", zap.Error(err))
		return out, nil
	}
	out.Reservations = items
	return out, nil
}

type ReturnOutcome struct {
	Reservation model.Reservation
	// Reservations is the refetched collection of the calling view.
	Reservations []model.Reservation
	Message      string
}

// Return marks an ACTIVE reservation RETURNED. confirmed must carry the
// explicit consent of the user.
func (c *Controller) Return(ctx context.Context, identity *model.Identity, rsv model.Reservation, confirmed bool) (ReturnOutcome, error) {
	if identity == nil {
		return ReturnOutcome{}, errs.ErrNotAuthenticated
	}
	if !confirmed {
		return ReturnOutcome{}, errs.ErrConfirmationRequired
	}
	if !rsv.CanReturn() {
		return ReturnOutcome{}, errs.ErrAlreadyReturned
	}

	failed, done := returnFailed, returnedMessage
	if identity.IsLibrarian() {
		failed, done = processReturnFailed, markedReturnedMessage
	}

	returned, err := c.reservations.MarkReturned(ctx, rsv.ID)
	if err != nil {
		c.log.Info("return rejected", zap.Int64("reservationId", rsv.ID), zap.Error(err))
		return ReturnOutcome{}, &errs.Failure{Message: failed, Err: err}
	}
	if returned.ID == 0 {
		returned = rsv
	}
	returned.Status = model.ReservationReturned
	if rsv.Book != nil {
		c.books.MarkStatus(rsv.Book.ID, model.BookAvailable)
	}

	if err := c.activity.Log(kafka.ActivityEvent{
		UserID:        identity.ID,
		Email:         identity.Email,
		EventType:     kafka.EventReturn,
		ReservationID: rsv.ID,
		BookID:        bookID(rsv),
	}); err != nil {
		c.log.Warn("activity", zap.Error(err))
	}

	out := ReturnOutcome{Reservation: returned, Message: done}
	items, err := c.Collection(ctx, identity)
	if err != nil {
		c.log.Warn("refetch reservations", zap.Error(err))
		return out, nil
	}
	out.Reservations = items
	return out, nil
}

// Collection is the reservation list a view shows to identity: everything
// for a librarian, the own reservations otherwise.
func (c *Controller) Collection(ctx context.Context, identity *model.Identity) ([]model.Reservation, error) {
	if identity == nil {
		return nil, errs.ErrNotAuthenticated
	}
	if identity.IsLibrarian() {
		return c.reservations.List(ctx)
	}
	return c.reservations.ListByUser(ctx, identity.ID)
}

// Find looks a reservation up in the collection visible to identity.
func (c *Controller) Find(ctx context.Context, identity *model.Identity, id int64) (model.Reservation, error) {
	items, err := c.Collection(ctx, identity)
	if err != nil {
		return model.Reservation{}, err
	}
	for _, r := range items {
		if r.ID == id {
			return r, nil
		}
	}
	return model.Reservation{}, errs.ErrNotFound
}

// Overdue returns the ACTIVE reservations past their due date at now.
func Overdue(items []model.Reservation, now time.Time) []model.Reservation {
	var out []model.Reservation
	for _, r := range items {
		if r.IsOverdue(now) {
			out = append(out, r)
		}
	}
	return out
}

func bookID(r model.Reservation) int64 {
	if r.Book == nil {
		return 0
	}
	return r.Book.ID
}
