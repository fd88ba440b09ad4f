package handler

import (
	"net/http"
	"strconv"

	"github.com/Astemirdum/library-frontend/internal/errs"
	"github.com/Astemirdum/library-frontend/internal/filter"
	"github.com/Astemirdum/library-frontend/internal/model"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type reservationView struct {
	model.Reservation
	IsOverdue bool `json:"isOverdue"`
	CanReturn bool `json:"canReturn"`
}

func (h *Handler) newReservationViews(items []model.Reservation) []reservationView {
	now := h.now()
	out := make([]reservationView, 0, len(items))
	for _, r := range items {
		out = append(out, reservationView{
			Reservation: r,
			IsOverdue:   r.IsOverdue(now),
			CanReturn:   r.CanReturn(),
		})
	}
	return out
}

type reservationsResponse struct {
	Items  []reservationView        `json:"items"`
	Counts filter.ReservationCounts `json:"counts"`
}

const loadReservationsFailed = "Failed to load reservations"

// MyReservations
// @Summary      Reservations of the reader
// @Tags         reservations
// @Produce      json
// @Success      200  {object}  reservationsResponse
// @Router       /reservations [get]
func (h *Handler) MyReservations(c echo.Context) error {
	items, err := h.lifecycle.Collection(c.Request().Context(), identityOf(c))
	if err != nil {
		h.log.Error("load reservations", zap.Error(err))
		return h.fail(err, loadReservationsFailed)
	}
	return c.JSON(http.StatusOK, reservationsResponse{
		Items:  h.newReservationViews(items),
		Counts: filter.CountReservations(items, h.now()),
	})
}

// AllReservations
// @Summary      Reservations of all readers
// @Description  Reservations held by librarians are never listed.
// @Tags         reservations
// @Produce      json
// @Param        status query string false "ALL, ACTIVE or RETURNED"
// @Param        q      query string false "user email or book title"
// @Success      200  {object}  reservationsResponse
// @Router       /view-reservations [get]
func (h *Handler) AllReservations(c echo.Context) error {
	var q filter.ReservationQuery
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &q); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, messageResponse{Message: err.Error()})
	}
	items, err := h.lifecycle.Collection(c.Request().Context(), identityOf(c))
	if err != nil {
		h.log.Error("load reservations", zap.Error(err))
		return h.fail(err, loadReservationsFailed)
	}
	readers := filter.Reservations(items, filter.ReservationQuery{Status: filter.StatusAll})
	items = filter.Reservations(items, q)
	return c.JSON(http.StatusOK, reservationsResponse{
		Items:  h.newReservationViews(items),
		Counts: filter.CountReservations(readers, h.now()),
	})
}

type returnResponse struct {
	Message      string            `json:"message"`
	Reservation  model.Reservation `json:"reservation"`
	Reservations []reservationView `json:"reservations,omitempty"`
}

// ReturnReservation
// @Summary      Return a reservation
// @Description  Needs confirm=true. Readers return their own loans, librarians any.
// @Tags         reservations
// @Produce      json
// @Param        id      path  int  true "reservation id"
// @Param        confirm query bool true "explicit confirmation"
// @Success      200  {object}  returnResponse
// @Failure      400  {object}  messageResponse
// @Failure      409  {object}  messageResponse
// @Router       /reservations/{id}/return [post]
// @Router       /view-reservations/{id}/return [post]
func (h *Handler) ReturnReservation(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	confirmed, _ := strconv.ParseBool(c.QueryParam("confirm")) //nolint:errcheck
	ctx := c.Request().Context()
	identity := identityOf(c)

	if !confirmed {
		return h.fail(errs.ErrConfirmationRequired, "")
	}
	rsv, err := h.lifecycle.Find(ctx, identity, id)
	if err != nil {
		return h.fail(err, loadReservationsFailed)
	}
	out, err := h.lifecycle.Return(ctx, identity, rsv, confirmed)
	if err != nil {
		return h.fail(err, "Failed to return book")
	}
	resp := returnResponse{Message: out.Message, Reservation: out.Reservation}
	if out.Reservations != nil {
		resp.Reservations = h.newReservationViews(out.Reservations)
	}
	return c.JSON(http.StatusOK, resp)
}
