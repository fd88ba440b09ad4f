package handler

import (
	"net/http"

	"github.com/Astemirdum/library-frontend/internal/guard"
	"github.com/Astemirdum/library-frontend/internal/model"
	"github.com/Astemirdum/library-frontend/internal/session"
	"github.com/Astemirdum/library-frontend/pkg/kafka"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const sessionCtxKey = "session"

// withSession restores the session of the caller before any page runs.
func (h *Handler) withSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		store := session.NewStore(h.authSvc, h.sessions.For(c), h.log)
		if _, err := store.Restore(c.Request().Context()); err != nil {
			h.log.Warn("restore session", zap.Error(err))
		}
		c.Set(sessionCtxKey, store)
		return next(c)
	}
}

func sessionOf(c echo.Context) *session.Store {
	store, _ := c.Get(sessionCtxKey).(*session.Store)
	return store
}

func identityOf(c echo.Context) *model.Identity {
	if store := sessionOf(c); store != nil {
		return store.Identity()
	}
	return nil
}

// requireAccess re-evaluates the guard on every request, so a changed
// identity is picked up on the next navigation.
func (h *Handler) requireAccess(access guard.Access) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			d := guard.Decide(identityOf(c), access)
			if !d.Allow {
				return c.Redirect(http.StatusSeeOther, d.Redirect)
			}
			return next(c)
		}
	}
}

type sessionResponse struct {
	Identity      *model.Identity `json:"user"`
	Authenticated bool            `json:"authenticated"`
	Librarian     bool            `json:"isLibrarian"`
	Menu          []guard.Link    `json:"menu"`
}

func newSessionResponse(identity *model.Identity) sessionResponse {
	return sessionResponse{
		Identity:      identity,
		Authenticated: identity != nil,
		Librarian:     identity.IsLibrarian(),
		Menu:          guard.Menu(identity),
	}
}

// Home
// @Summary      Landing page
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Success      303
// @Router       / [get]
func (h *Handler) Home(c echo.Context) error {
	if identity := identityOf(c); identity != nil {
		return c.Redirect(http.StatusSeeOther, guard.Landing(identity))
	}
	return c.JSON(http.StatusOK, newSessionResponse(nil))
}

// Session
// @Summary      Current identity and navigation
// @Tags         session
// @Produce      json
// @Success      200  {object}  sessionResponse
// @Router       /session [get]
func (h *Handler) Session(c echo.Context) error {
	return c.JSON(http.StatusOK, newSessionResponse(identityOf(c)))
}

type loginForm struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// Login
// @Summary      Log in
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        request body loginForm true "credentials"
// @Success      303
// @Failure      400  {object}  errs.ValidationErrorResponse
// @Failure      401  {object}  messageResponse
// @Router       /login [post]
func (h *Handler) Login(c echo.Context) error {
	var req loginForm
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, messageResponse{Message: err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return h.invalid(c, err)
	}
	identity, err := sessionOf(c).Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, messageResponse{Message: err.Error()})
	}
	h.logActivity(kafka.EventLogin, &identity)
	return c.Redirect(http.StatusSeeOther, guard.Landing(&identity))
}

type signupForm struct {
	Email           string     `json:"email" form:"email" validate:"required,email"`
	Password        string     `json:"password" form:"password" validate:"required,min=6"`
	ConfirmPassword string     `json:"confirmPassword" form:"confirmPassword" validate:"required,eqfield=Password"`
	Role            model.Role `json:"role" form:"role" validate:"omitempty,oneof=USER LIBRARIAN"`
}

const signupSucceeded = "Account created successfully! Please log in."

// Signup
// @Summary      Register an account
// @Description  Never logs the caller in.
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        request body signupForm true "account"
// @Success      201  {object}  messageResponse
// @Failure      400  {object}  errs.ValidationErrorResponse
// @Router       /signup [post]
func (h *Handler) Signup(c echo.Context) error {
	var req signupForm
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, messageResponse{Message: err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return h.invalid(c, err)
	}
	if err := sessionOf(c).Signup(c.Request().Context(), req.Email, req.Password, req.Role); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, messageResponse{Message: err.Error()})
	}
	return c.JSON(http.StatusCreated, messageResponse{Message: signupSucceeded, Redirect: guard.LoginPath})
}

// Logout
// @Summary      Log out
// @Tags         session
// @Success      303
// @Router       /logout [post]
func (h *Handler) Logout(c echo.Context) error {
	store := sessionOf(c)
	identity := store.Identity()
	if err := store.Logout(c.Request().Context()); err != nil {
		h.log.Warn("logout", zap.Error(err))
	}
	if identity != nil {
		h.logActivity(kafka.EventLogout, identity)
	}
	return c.Redirect(http.StatusSeeOther, guard.LoginPath)
}

func (h *Handler) logActivity(t kafka.EventType, identity *model.Identity) {
	if err := h.activity.Log(kafka.ActivityEvent{
		UserID:    identity.ID,
		Email:     identity.Email,
		EventType: t,
	}); err != nil {
		h.log.Warn("activity", zap.String("event", string(t)), zap.Error(err))
	}
}
