package handler

import (
	"fmt"
	"net/http"

	"github.com/Astemirdum/library-frontend/internal/filter"
	"github.com/Astemirdum/library-frontend/internal/model"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type bookView struct {
	model.Book
	CoverURL string `json:"coverUrl"`
}

func (h *Handler) newBookView(b model.Book) bookView {
	return bookView{Book: b, CoverURL: model.CoverURL(h.imageHost, b.ImageURL, model.PlaceholderCover)}
}

func (h *Handler) newBookViews(items []model.Book) []bookView {
	out := make([]bookView, 0, len(items))
	for _, b := range items {
		out = append(out, h.newBookView(b))
	}
	return out
}

type booksQuery struct {
	model.BookFilter
	Search string `query:"q"`
}

type booksResponse struct {
	Items      []bookView       `json:"items"`
	Total      int              `json:"total"`
	Categories []model.Category `json:"categories"`
	Filter     model.BookFilter `json:"filter"`
}

const loadBooksFailed = "Failed to load books"

// GetBooks
// @Summary      Browse books
// @Description  Filters are applied by the API, q narrows the result locally.
// @Tags         books
// @Produce      json
// @Param        category query string false "category"
// @Param        author   query string false "author"
// @Param        genre    query string false "genre"
// @Param        language query string false "language"
// @Param        q        query string false "free text"
// @Success      200  {object}  booksResponse
// @Router       /books [get]
func (h *Handler) GetBooks(c echo.Context) error {
	var q booksQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, messageResponse{Message: err.Error()})
	}
	ctx := c.Request().Context()

	var (
		items []model.Book
		err   error
	)
	if q.BookFilter.IsEmpty() {
		items, err = h.books.Refresh(ctx, h.bookSvc.List)
	} else {
		items, err = h.bookSvc.Filter(ctx, q.BookFilter)
	}
	if err != nil {
		h.log.Error("load books", zap.Error(err))
		return h.fail(err, loadBooksFailed)
	}
	categories, err := h.categorySvc.List(ctx)
	if err != nil {
		h.log.Warn("load categories", zap.Error(err))
		categories = []model.Category{}
	}

	items = filter.Books(items, q.Search)
	return c.JSON(http.StatusOK, booksResponse{
		Items:      h.newBookViews(items),
		Total:      len(items),
		Categories: categories,
		Filter:     q.BookFilter,
	})
}

type bookDetailResponse struct {
	Book        bookView `json:"book"`
	CanReserve  bool     `json:"canReserve"`
	AllowedDays []int    `json:"allowedDays"`
}

// GetBook
// @Summary      Book details
// @Tags         books
// @Produce      json
// @Param        id path int true "book id"
// @Success      200  {object}  bookDetailResponse
// @Failure      404  {object}  messageResponse
// @Router       /books/{id} [get]
func (h *Handler) GetBook(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	b, err := h.books.Fetch(c.Request().Context(), id, h.bookSvc.Get)
	if err != nil {
		return h.fail(err, "Failed to load book details")
	}
	return c.JSON(http.StatusOK, bookDetailResponse{
		Book:        h.newBookView(b),
		CanReserve:  b.Status == model.BookAvailable && !identityOf(c).IsLibrarian(),
		AllowedDays: model.AllowedDurations,
	})
}

type reserveForm struct {
	Days int `json:"days" form:"days" validate:"required,oneof=7 14 21"`
}

type reserveResponse struct {
	Message      string              `json:"message"`
	Reservation  model.Reservation   `json:"reservation"`
	Book         bookView            `json:"book"`
	Reservations []model.Reservation `json:"reservations,omitempty"`
	Redirect     string              `json:"redirect"`
	RedirectIn   float64             `json:"redirectIn"`
}

// ReserveBook
// @Summary      Reserve a book
// @Description  Days must be one of 7, 14 or 21. The page moves on to the reservations after a short delay.
// @Tags         books
// @Accept       json
// @Produce      json
// @Param        id path int true "book id"
// @Param        request body reserveForm true "loan length"
// @Success      201  {object}  reserveResponse
// @Failure      400  {object}  messageResponse
// @Failure      409  {object}  messageResponse
// @Router       /books/{id}/reserve [post]
func (h *Handler) ReserveBook(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req reserveForm
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, messageResponse{Message: err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return h.invalid(c, err)
	}
	ctx := c.Request().Context()
	identity := identityOf(c)

	b, err := h.books.Fetch(ctx, id, h.bookSvc.Get)
	if err != nil {
		return h.fail(err, "Failed to load book details")
	}
	out, err := h.lifecycle.Reserve(ctx, identity, b, req.Days)
	if err != nil {
		return h.fail(err, "Failed to reserve book. Please try again.")
	}
	c.Response().Header().Set("Refresh", fmt.Sprintf("%d; url=%s", int(out.RedirectAfter.Seconds()), out.Redirect))
	return c.JSON(http.StatusCreated, reserveResponse{
		Message:      out.Message,
		Reservation:  out.Reservation,
		Book:         h.newBookView(out.Book),
		Reservations: out.Reservations,
		Redirect:     out.Redirect,
		RedirectIn:   out.RedirectAfter.Seconds(),
	})
}

type profileResponse struct {
	User         *model.Identity          `json:"user"`
	Reservations *filter.ReservationCounts `json:"reservations,omitempty"`
}

// Profile
// @Summary      Own profile
// @Description  Readers also get the counts of their reservations.
// @Tags         profile
// @Produce      json
// @Success      200  {object}  profileResponse
// @Router       /profile [get]
func (h *Handler) Profile(c echo.Context) error {
	identity := identityOf(c)
	resp := profileResponse{User: identity}
	if identity.IsLibrarian() {
		return c.JSON(http.StatusOK, resp)
	}
	counts := filter.ReservationCounts{}
	items, err := h.lifecycle.Collection(c.Request().Context(), identity)
	if err != nil {
		h.log.Warn("profile stats", zap.Error(err))
	} else {
		counts = filter.CountReservations(items, h.now())
	}
	resp.Reservations = &counts
	return c.JSON(http.StatusOK, resp)
}
