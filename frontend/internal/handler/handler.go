package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Astemirdum/library-frontend/frontend/config"
	"github.com/Astemirdum/library-frontend/internal/activity"
	"github.com/Astemirdum/library-frontend/internal/dashboard"
	"github.com/Astemirdum/library-frontend/internal/errs"
	"github.com/Astemirdum/library-frontend/internal/guard"
	"github.com/Astemirdum/library-frontend/internal/lifecycle"
	"github.com/Astemirdum/library-frontend/internal/service/api"
	"github.com/Astemirdum/library-frontend/internal/service/auth"
	"github.com/Astemirdum/library-frontend/internal/service/book"
	"github.com/Astemirdum/library-frontend/internal/service/category"
	"github.com/Astemirdum/library-frontend/internal/service/reservation"
	"github.com/Astemirdum/library-frontend/internal/service/user"
	"github.com/Astemirdum/library-frontend/internal/view"
	mw "github.com/Astemirdum/library-frontend/pkg/middleware"
	"github.com/Astemirdum/library-frontend/pkg/validate"
	_ "github.com/Astemirdum/library-frontend/swagger"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"
)

type Services struct {
	Auth         AuthService
	Books        BookService
	Categories   CategoryService
	Users        UserService
	Reservations ReservationService
}

// NewServices builds the API clients the pages talk to.
func NewServices(log *zap.Logger, cfg api.Config) Services {
	return Services{
		Auth:         auth.NewService(log, cfg),
		Books:        book.NewService(log, cfg),
		Categories:   category.NewService(log, cfg),
		Users:        user.NewService(log, cfg),
		Reservations: reservation.NewService(log, cfg),
	}
}

type Handler struct {
	authSvc        AuthService
	bookSvc        BookService
	categorySvc    CategoryService
	userSvc        UserService
	reservationSvc ReservationService
	sessions       SessionStorage

	books     *view.BookCache
	lifecycle *lifecycle.Controller
	dashboard *dashboard.Loader
	activity  activity.Logger
	feed      ActivityFeed
	imageHost string
	log       *zap.Logger
	now       func() time.Time
}

func New(log *zap.Logger, cfg *config.Config, svc Services, sessions SessionStorage, activityLog activity.Logger) *Handler {
	if activityLog == nil {
		activityLog = activity.Nop()
	}
	books := view.NewBookCache()
	return &Handler{
		authSvc:        svc.Auth,
		bookSvc:        svc.Books,
		categorySvc:    svc.Categories,
		userSvc:        svc.Users,
		reservationSvc: svc.Reservations,
		sessions:       sessions,
		books:          books,
		lifecycle:      lifecycle.NewController(svc.Reservations, books, activityLog, log, cfg.Lifecycle),
		dashboard:      dashboard.NewLoader(svc.Books, svc.Categories, svc.Users, svc.Reservations),
		activity:       activityLog,
		imageHost:      cfg.ImageHost,
		log:            log.Named("handler"),
		now:            time.Now,
	}
}

// WithFeed adds recent activity to the dashboard.
func (h *Handler) WithFeed(feed ActivityFeed) *Handler {
	h.feed = feed
	return h
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		pageRPS = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))
	e.Validator = validate.NewCustomValidator()

	base := e.Group("", mw.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)
	base.GET("/swagger/*", echoSwagger.WrapHandler)

	pages := e.Group("",
		middleware.RequestLoggerWithConfig(mw.RequestLoggerConfig(h.log)),
		middleware.RequestID(),
		mw.NewRateLimiter(pageRPS),
		h.withSession,
	)

	public := pages.Group("")
	public.GET(guard.HomePath, h.Home)
	public.GET("/session", h.Session)
	public.POST(guard.LoginPath, h.Login)
	public.POST(guard.SignupPath, h.Signup)
	public.POST("/logout", h.Logout)

	authed := pages.Group("", h.requireAccess(guard.Authenticated))
	authed.GET(guard.BooksPath, h.GetBooks)
	authed.GET(guard.BookPath, h.GetBook)
	authed.POST(guard.BookPath+"/reserve", h.ReserveBook)
	authed.GET(guard.ProfilePath, h.Profile)

	reader := pages.Group(guard.ReservationsPath, h.requireAccess(guard.UserOnly))
	reader.GET("", h.MyReservations)
	reader.POST("/:id/return", h.ReturnReservation)

	librarian := pages.Group("", h.requireAccess(guard.LibrarianOnly))
	librarian.GET(guard.DashboardPath, h.Dashboard)

	librarian.GET(guard.ManageBooksPath, h.ManageBooks)
	librarian.POST(guard.ManageBooksPath, h.CreateBook)
	librarian.PUT(guard.ManageBooksPath+"/:id", h.UpdateBook)
	librarian.DELETE(guard.ManageBooksPath+"/:id", h.DeleteBook)
	librarian.POST(guard.ManageBooksPath+"/:id/image", h.UploadBookImage)
	librarian.PATCH(guard.ManageBooksPath+"/:id/status", h.SetBookStatus)

	librarian.GET(guard.ManageCategoryPath, h.ManageCategories)
	librarian.POST(guard.ManageCategoryPath, h.CreateCategory)
	librarian.PUT(guard.ManageCategoryPath+"/:id", h.UpdateCategory)
	librarian.DELETE(guard.ManageCategoryPath+"/:id", h.DeleteCategory)

	librarian.GET(guard.ManageUsersPath, h.ManageUsers)
	librarian.PATCH(guard.ManageUsersPath+"/:id/blacklist", h.BlacklistUser)
	librarian.PATCH(guard.ManageUsersPath+"/:id/unblacklist", h.UnblacklistUser)

	librarian.GET(guard.ViewReservations, h.AllReservations)
	librarian.POST(guard.ViewReservations+"/:id/return", h.ReturnReservation)

	return e
}

// Health
// @Summary      Health
// @Tags         manage
// @Success      200  {string}  string "OK"
// @Router       /manage/health [get]
func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

type messageResponse struct {
	Message  string `json:"message"`
	Redirect string `json:"redirect,omitempty"`
}

// fail answers with the banner text of err. fallback covers errors that
// carry no text of their own.
func (h *Handler) fail(err error, fallback string) error {
	return echo.NewHTTPError(errs.StatusCode(err), messageResponse{Message: errs.UserMessage(err, fallback)})
}

func (h *Handler) invalid(c echo.Context, err error) error {
	fields := validate.FieldErrors(err)
	if fields == nil {
		return echo.NewHTTPError(http.StatusBadRequest, messageResponse{Message: err.Error()})
	}
	return c.JSON(http.StatusBadRequest, errs.ValidationErrorResponse{
		Message: "validation failed",
		Errors:  fields,
	})
}

func paramID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, messageResponse{Message: "invalid id"})
	}
	return id, nil
}
