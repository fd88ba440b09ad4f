package handler

import (
	"net/http"

	"github.com/Astemirdum/library-frontend/internal/errs"
	"github.com/Astemirdum/library-frontend/internal/dashboard"
	"github.com/Astemirdum/library-frontend/internal/filter"
	"github.com/Astemirdum/library-frontend/internal/model"
	"github.com/Astemirdum/library-frontend/pkg/kafka"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ActivityFeed serves the newest activity events, newest first.
type ActivityFeed interface {
	Recent(n int) []kafka.ActivityEvent
}

const recentActivity = 10

type dashboardResponse struct {
	dashboard.Dashboard
	RecentActivity []kafka.ActivityEvent `json:"recentActivity"`
}

// Dashboard
// @Summary      Librarian dashboard
// @Description  Loads books, categories, users and reservations at once; any failure fails the page.
// @Tags         librarian
// @Produce      json
// @Success      200  {object}  dashboardResponse
// @Failure      502  {object}  messageResponse
// @Router       /dashboard [get]
func (h *Handler) Dashboard(c echo.Context) error {
	d, err := h.dashboard.Load(c.Request().Context())
	if err != nil {
		h.log.Error("dashboard", zap.Error(err))
		return h.fail(err, "Failed to load dashboard")
	}
	resp := dashboardResponse{Dashboard: d, RecentActivity: []kafka.ActivityEvent{}}
	if h.feed != nil {
		resp.RecentActivity = h.feed.Recent(recentActivity)
	}
	return c.JSON(http.StatusOK, resp)
}

type manageBooksResponse struct {
	Items      []bookView        `json:"items"`
	Counts     filter.BookCounts `json:"counts"`
	Categories []model.Category  `json:"categories"`
}

// ManageBooks
// @Summary      Book catalogue
// @Tags         librarian
// @Produce      json
// @Param        q query string false "free text"
// @Success      200  {object}  manageBooksResponse
// @Router       /manage-books [get]
func (h *Handler) ManageBooks(c echo.Context) error {
	ctx := c.Request().Context()
	items, err := h.books.Refresh(ctx, h.bookSvc.List)
	if err != nil {
		return h.fail(err, loadBooksFailed)
	}
	categories, err := h.categorySvc.List(ctx)
	if err != nil {
		h.log.Warn("load categories", zap.Error(err))
		categories = []model.Category{}
	}
	counts := filter.CountBooks(items)
	items = filter.Books(items, c.QueryParam("q"))
	return c.JSON(http.StatusOK, manageBooksResponse{
		Items:      h.newBookViews(items),
		Counts:     counts,
		Categories: categories,
	})
}

type bookForm struct {
	Title      string `json:"title" form:"title" validate:"required"`
	Author     string `json:"author" form:"author" validate:"required"`
	CategoryID int64  `json:"categoryId" form:"categoryId"`
	Genre      string `json:"genre" form:"genre"`
	Language   string `json:"language" form:"language"`
	ISBN       string `json:"isbn" form:"isbn"`
}

func (f bookForm) book() model.Book {
	b := model.Book{
		Title:    f.Title,
		Author:   f.Author,
		Genre:    f.Genre,
		Language: f.Language,
		ISBN:     f.ISBN,
	}
	if f.CategoryID > 0 {
		b.Category = &model.Category{ID: f.CategoryID}
	}
	return b
}

type bookResponse struct {
	Message string   `json:"message"`
	Book    bookView `json:"book"`
}

// CreateBook
// @Summary      Add a book
// @Tags         librarian
// @Accept       json
// @Produce      json
// @Param        request body bookForm true "book"
// @Success      201  {object}  bookResponse
// @Failure      400  {object}  errs.ValidationErrorResponse
// @Router       /manage-books [post]
func (h *Handler) CreateBook(c echo.Context) error {
	var req bookForm
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, messageResponse{Message: err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return h.invalid(c, err)
	}
	b, err := h.bookSvc.Create(c.Request().Context(), req.book())
	if err != nil {
		return h.fail(err, "Failed to save book")
	}
	h.books.Put(b)
	return c.JSON(http.StatusCreated, bookResponse{Message: "Book created successfully!", Book: h.newBookView(b)})
}

// UpdateBook
// @Summary      Edit a book
// @Tags         librarian
// @Accept       json
// @Produce      json
// @Param        id path int true "book id"
// @Param        request body bookForm true "book"
// @Success      200  {object}  bookResponse
// @Failure      400  {object}  errs.ValidationErrorResponse
// @Router       /manage-books/{id} [put]
func (h *Handler) UpdateBook(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req bookForm
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, messageResponse{Message: err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return h.invalid(c, err)
	}
	b, err := h.bookSvc.Update(c.Request().Context(), id, req.book())
	if err != nil {
		return h.fail(err, "Failed to save book")
	}
	h.books.Put(b)
	return c.JSON(http.StatusOK, bookResponse{Message: "Book updated successfully!", Book: h.newBookView(b)})
}

// DeleteBook
// @Summary      Remove a book
// @Tags         librarian
// @Produce      json
// @Param        id path int true "book id"
// @Success      200  {object}  messageResponse
// @Router       /manage-books/{id} [delete]
func (h *Handler) DeleteBook(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.bookSvc.Delete(c.Request().Context(), id); err != nil {
		return h.fail(&errs.Failure{Message: "Failed to delete book", Err: err}, "")
	}
	h.books.Remove(id)
	return c.JSON(http.StatusOK, messageResponse{Message: "Book deleted successfully!"})
}

// UploadBookImage
// @Summary      Upload a cover
// @Tags         librarian
// @Accept       multipart/form-data
// @Produce      json
// @Param        id    path     int  true "book id"
// @Param        image formData file true "cover image"
// @Success      200  {object}  bookResponse
// @Router       /manage-books/{id}/image [post]
func (h *Handler) UploadBookImage(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	fh, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, messageResponse{Message: "image is required"})
	}
	f, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, messageResponse{Message: err.Error()})
	}
	defer f.Close()

	b, err := h.bookSvc.UploadCover(c.Request().Context(), id, fh.Filename, f)
	if err != nil {
		return h.fail(err, "Failed to upload image")
	}
	if b.ID != 0 {
		h.books.Put(b)
	} else {
		h.books.Invalidate()
	}
	return c.JSON(http.StatusOK, bookResponse{Message: "Image uploaded successfully!", Book: h.newBookView(b)})
}

type statusForm struct {
	Status model.BookStatus `json:"status" query:"status" form:"status" validate:"required,oneof=AVAILABLE RESERVED"`
}

// SetBookStatus
// @Summary      Set availability
// @Tags         librarian
// @Produce      json
// @Param        id     path  int    true "book id"
// @Param        status query string true "AVAILABLE or RESERVED"
// @Success      200  {object}  bookResponse
// @Router       /manage-books/{id}/status [patch]
func (h *Handler) SetBookStatus(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req statusForm
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, messageResponse{Message: err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return h.invalid(c, err)
	}
	b, err := h.bookSvc.SetStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return h.fail(&errs.Failure{Message: "Failed to update status", Err: err}, "")
	}
	if b.ID == 0 {
		h.books.MarkStatus(id, req.Status)
	} else {
		h.books.Put(b)
	}
	return c.JSON(http.StatusOK, bookResponse{Message: "Book status updated!", Book: h.newBookView(b)})
}

// ManageCategories
// @Summary      Categories
// @Tags         librarian
// @Produce      json
// @Success      200  {array}  model.Category
// @Router       /manage-categories [get]
func (h *Handler) ManageCategories(c echo.Context) error {
	items, err := h.categorySvc.List(c.Request().Context())
	if err != nil {
		return h.fail(err, "Failed to load categories")
	}
	return c.JSON(http.StatusOK, items)
}

type categoryForm struct {
	Name string `json:"name" form:"name" validate:"required"`
}

type categoryResponse struct {
	Message  string         `json:"message"`
	Category model.Category `json:"category"`
}

// CreateCategory
// @Summary      Add a category
// @Tags         librarian
// @Accept       json
// @Produce      json
// @Param        request body categoryForm true "category"
// @Success      201  {object}  categoryResponse
// @Failure      400  {object}  errs.ValidationErrorResponse
// @Router       /manage-categories [post]
func (h *Handler) CreateCategory(c echo.Context) error {
	var req categoryForm
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, messageResponse{Message: err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return h.invalid(c, err)
	}
	cat, err := h.categorySvc.Create(c.Request().Context(), req.Name)
	if err != nil {
		return h.fail(err, "Failed to save category")
	}
	return c.JSON(http.StatusCreated, categoryResponse{Message: "Category created successfully!", Category: cat})
}

// UpdateCategory
// @Summary      Rename a category
// @Tags         librarian
// @Accept       json
// @Produce      json
// @Param        id path int true "category id"
// @Param        request body categoryForm true "category"
// @Success      200  {object}  categoryResponse
// @Router       /manage-categories/{id} [put]
func (h *Handler) UpdateCategory(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req categoryForm
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, messageResponse{Message: err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return h.invalid(c, err)
	}
	cat, err := h.categorySvc.Update(c.Request().Context(), id, req.Name)
	if err != nil {
		return h.fail(err, "Failed to save category")
	}
	// books embed their category
	h.books.Invalidate()
	return c.JSON(http.StatusOK, categoryResponse{Message: "Category updated successfully!", Category: cat})
}

// DeleteCategory
// @Summary      Remove a category
// @Tags         librarian
// @Produce      json
// @Param        id path int true "category id"
// @Success      200  {object}  messageResponse
// @Router       /manage-categories/{id} [delete]
func (h *Handler) DeleteCategory(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.categorySvc.Delete(c.Request().Context(), id); err != nil {
		return h.fail(&errs.Failure{Message: "Failed to delete category", Err: err}, "")
	}
	h.books.Invalidate()
	return c.JSON(http.StatusOK, messageResponse{Message: "Category deleted successfully!"})
}

type usersResponse struct {
	Items       []model.User `json:"items"`
	Active      int          `json:"active"`
	Blacklisted int          `json:"blacklisted"`
}

// ManageUsers
// @Summary      Accounts
// @Tags         librarian
// @Produce      json
// @Success      200  {object}  usersResponse
// @Router       /manage-users [get]
func (h *Handler) ManageUsers(c echo.Context) error {
	items, err := h.userSvc.List(c.Request().Context())
	if err != nil {
		return h.fail(&errs.Failure{Message: "Failed to load users", Err: err}, "")
	}
	resp := usersResponse{Items: items}
	for _, u := range items {
		if u.IsBlacklisted {
			resp.Blacklisted++
		} else {
			resp.Active++
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// BlacklistUser
// @Summary      Blacklist an account
// @Tags         librarian
// @Produce      json
// @Param        id path int true "user id"
// @Success      200  {object}  messageResponse
// @Router       /manage-users/{id}/blacklist [patch]
func (h *Handler) BlacklistUser(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.userSvc.Blacklist(c.Request().Context(), id); err != nil {
		return h.fail(&errs.Failure{Message: "Failed to blacklist user", Err: err}, "")
	}
	identity := identityOf(c)
	if err := h.activity.Log(kafka.ActivityEvent{
		UserID:    identity.ID,
		Email:     identity.Email,
		EventType: kafka.EventBlacklist,
		TargetID:  id,
	}); err != nil {
		h.log.Warn("activity", zap.Error(err))
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "User blacklisted successfully!"})
}

// UnblacklistUser
// @Summary      Lift a blacklisting
// @Tags         librarian
// @Produce      json
// @Param        id path int true "user id"
// @Success      200  {object}  messageResponse
// @Router       /manage-users/{id}/unblacklist [patch]
func (h *Handler) UnblacklistUser(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.userSvc.Unblacklist(c.Request().Context(), id); err != nil {
		return h.fail(&errs.Failure{Message: "Failed to unblacklist user", Err: err}, "")
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "User unblacklisted successfully!"})
}
