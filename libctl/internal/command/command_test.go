package command_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Astemirdum/library-frontend/internal/dashboard"
	"github.com/Astemirdum/library-frontend/internal/lifecycle"
	"github.com/Astemirdum/library-frontend/internal/model"
	"github.com/Astemirdum/library-frontend/internal/service/api"
	"github.com/Astemirdum/library-frontend/internal/service/auth"
	"github.com/Astemirdum/library-frontend/internal/service/book"
	"github.com/Astemirdum/library-frontend/internal/service/category"
	"github.com/Astemirdum/library-frontend/internal/service/reservation"
	"github.com/Astemirdum/library-frontend/internal/service/user"
	"github.com/Astemirdum/library-frontend/internal/session"
	"github.com/Astemirdum/library-frontend/internal/view"
	"github.com/Astemirdum/library-frontend/libctl/internal/command"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var now = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

// fakeAPI is an in-memory library API.
type fakeAPI struct {
	mu           sync.Mutex
	books        []model.Book
	reservations []model.Reservation
	calls        []string
}

func newFakeAPI() *fakeAPI {
	readerUser := &model.User{ID: 42, Email: "reader@lib.io", Role: model.RoleUser}
	staff := &model.User{ID: 1, Email: "admin@lib.io", Role: model.RoleLibrarian}
	return &fakeAPI{
		books: []model.Book{
			{ID: 1, Title: "Dune", Author: "Frank Herbert", Category: &model.Category{ID: 1, Name: "Sci-Fi"}, Status: model.BookAvailable},
			{ID: 2, Title: "Emma", Author: "Jane Austen", Status: model.BookReserved},
		},
		reservations: []model.Reservation{
			{
				ID: 5, User: readerUser, Book: &model.Book{ID: 2, Title: "Emma"}, Status: model.ReservationActive,
				ReservationDate: model.NewDate(now.AddDate(0, 0, -20)), DueDate: model.NewDate(now.AddDate(0, 0, -6)),
			},
			{
				ID: 6, User: staff, Book: &model.Book{ID: 1, Title: "Dune"}, Status: model.ReservationReturned,
			},
		},
	}
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	route := r.Method + " " + r.URL.Path
	f.calls = append(f.calls, route)

	write := func(v any) {
		_ = json.NewEncoder(w).Encode(v) //nolint:errcheck
	}
	switch route {
	case "POST /auth/login":
		var c model.Credentials
		_ = json.NewDecoder(r.Body).Decode(&c) //nolint:errcheck
		switch {
		case c.Password != "secret":
			http.Error(w, "Invalid email or password", http.StatusUnauthorized)
		case c.Email == "admin@lib.io":
			write(map[string]any{"id": 1, "email": c.Email, "role": "LIBRARIAN"})
		default:
			write(map[string]any{"userId": 42, "email": c.Email, "role": "USER"})
		}
	case "POST /auth/signup":
		w.WriteHeader(http.StatusCreated)
	case "GET /books":
		write(f.books)
	case "GET /books/1":
		write(f.books[0])
	case "GET /books/2":
		write(f.books[1])
	case "GET /categories":
		write([]model.Category{{ID: 1, Name: "Sci-Fi"}})
	case "GET /users":
		write([]model.User{{ID: 42}, {ID: 1}})
	case "GET /reservations":
		write(f.reservations)
	case "GET /reservations/user/42":
		write(f.reservations[:1])
	case "POST /reservations":
		var req model.CreateReservationRequest
		_ = json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
		f.books[0].Status = model.BookReserved
		write(model.Reservation{
			ID:              7,
			Status:          model.ReservationActive,
			ReservationDate: model.NewDate(now),
			DueDate:         model.NewDate(now.AddDate(0, 0, req.Days)),
		})
	case "PATCH /reservations/5/return":
		f.reservations[0].Status = model.ReservationReturned
		write(f.reservations[0])
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeAPI) called(route string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == route {
			return true
		}
	}
	return false
}

type env struct {
	api     *fakeAPI
	url     string
	storage *session.MemoryStorage
}

func newEnv(t *testing.T) *env {
	t.Helper()
	fake := newFakeAPI()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return &env{api: fake, url: srv.URL, storage: session.NewMemoryStorage()}
}

// run executes one invocation with a fresh process state over the shared storage.
func (e *env) run(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	log := zap.NewNop()
	cfg := api.Config{BaseURL: e.url, Timeout: 5 * time.Second}
	books := book.NewService(log, cfg)
	reservations := reservation.NewService(log, cfg)
	cache := view.NewBookCache()

	var out bytes.Buffer
	root := command.NewRoot(command.Deps{
		Store:     session.NewStore(auth.NewService(log, cfg), e.storage, log),
		Books:     books,
		Cache:     cache,
		Lifecycle: lifecycle.NewController(reservations, cache, nil, log, lifecycle.Config{}),
		Dashboard: dashboard.NewLoader(books, category.NewService(log, cfg), user.NewService(log, cfg), reservations),
		ImageHost: "http://img",
		In:        strings.NewReader(input),
		Out:       &out,
		ReadPassword: func() (string, error) {
			return "secret", nil
		},
		Now: func() time.Time { return now },
	})
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *env) login(t *testing.T, email string) {
	t.Helper()
	out, err := e.run(t, "", "login", "--email", email)
	require.NoError(t, err)
	require.Contains(t, out, "Logged in as "+email)
}

func TestEveryCommandDeclaresAccess(t *testing.T) {
	t.Parallel()
	root := command.NewRoot(command.Deps{Out: io.Discard})
	var walk func(cmd *cobra.Command)
	walk = func(cmd *cobra.Command) {
		if cmd.Name() != "help" && cmd.Name() != "completion" {
			require.Contains(t, cmd.Annotations, "access", cmd.Name())
		}
		for _, sub := range cmd.Commands() {
			walk(sub)
		}
	}
	walk(root)
}

func TestGuard(t *testing.T) {
	t.Parallel()

	t.Run("anonymous is sent to login", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t)
		out, err := e.run(t, "", "books")
		require.ErrorIs(t, err, command.ErrRedirected)
		require.Contains(t, out, "Redirecting to /login")
		require.False(t, e.api.called("GET /books"))
	})

	t.Run("reader is sent to books", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t)
		e.login(t, "reader@lib.io")
		out, err := e.run(t, "", "dashboard")
		require.ErrorIs(t, err, command.ErrRedirected)
		require.Contains(t, out, "Redirecting to /books")
		require.Contains(t, out, "Dune")
		require.False(t, e.api.called("GET /users"))
	})

	t.Run("librarian is sent to dashboard", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t)
		e.login(t, "admin@lib.io")
		out, err := e.run(t, "", "reservations")
		require.ErrorIs(t, err, command.ErrRedirected)
		require.Contains(t, out, "Redirecting to /dashboard")
		require.Contains(t, out, "Total books")
	})
}

func TestLoginLogout(t *testing.T) {
	t.Parallel()
	e := newEnv(t)

	_, err := e.run(t, "", "login", "--email", "not-an-email")
	require.EqualError(t, err, "Please enter a valid email address.")
	require.False(t, e.api.called("POST /auth/login"))

	out, err := e.run(t, "reader@lib.io\n", "login")
	require.NoError(t, err)
	require.Contains(t, out, "Next: libctl books")

	out, err = e.run(t, "", "whoami")
	require.NoError(t, err)
	require.Contains(t, out, "reader@lib.io")
	require.Contains(t, out, "1 overdue")

	_, err = e.run(t, "", "logout")
	require.NoError(t, err)
	_, err = e.run(t, "", "whoami")
	require.ErrorIs(t, err, command.ErrRedirected)
}

func TestSignup(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	out, err := e.run(t, "", "signup", "--email", "new@lib.io")
	require.NoError(t, err)
	require.Contains(t, out, "Account created successfully! Please log in.")

	_, err = e.run(t, "", "whoami")
	require.ErrorIs(t, err, command.ErrRedirected)

	_, err = e.run(t, "", "signup", "--email", "new@lib.io", "--role", "admin")
	require.EqualError(t, err, "Role must be USER or LIBRARIAN.")
}

func TestBooks(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	e.login(t, "reader@lib.io")

	out, err := e.run(t, "", "books", "--search", "austen")
	require.NoError(t, err)
	require.Contains(t, out, "Emma")
	require.NotContains(t, out, "Dune")

	out, err = e.run(t, "", "book", "1")
	require.NoError(t, err)
	require.Contains(t, out, model.PlaceholderCover)
	require.Contains(t, out, "libctl reserve 1")

	out, err = e.run(t, "", "book", "2")
	require.NoError(t, err)
	require.Contains(t, out, "This book is currently reserved.")
}

func TestReserve(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	e.login(t, "reader@lib.io")

	_, err := e.run(t, "", "reserve", "1", "--days", "10")
	require.EqualError(t, err, "Please choose a reservation period of 7, 14 or 21 days.")
	require.False(t, e.api.called("GET /books/1"))

	_, err = e.run(t, "", "reserve", "2")
	require.EqualError(t, err, "This book is currently reserved.")
	require.False(t, e.api.called("POST /reservations"))

	out, err := e.run(t, "", "reserve", "1", "--days", "14")
	require.NoError(t, err)
	require.Contains(t, out, "Book reserved successfully!")
	require.Contains(t, out, "2024-05-24")
}

func TestReturn(t *testing.T) {
	t.Parallel()

	t.Run("declined", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t)
		e.login(t, "reader@lib.io")
		out, err := e.run(t, "n\n", "return", "5")
		require.NoError(t, err)
		require.Contains(t, out, "Are you sure you want to return this book?")
		require.Contains(t, out, "Cancelled.")
		require.False(t, e.api.called("PATCH /reservations/5/return"))
	})

	t.Run("confirmed", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t)
		e.login(t, "reader@lib.io")
		out, err := e.run(t, "y\n", "return", "5")
		require.NoError(t, err)
		require.Contains(t, out, "Book returned successfully!")

		_, err = e.run(t, "", "return", "5", "--yes")
		require.EqualError(t, err, "This reservation has already been returned.")
	})

	t.Run("librarian", func(t *testing.T) {
		t.Parallel()
		e := newEnv(t)
		e.login(t, "admin@lib.io")
		out, err := e.run(t, "", "return", "5", "--yes")
		require.NoError(t, err)
		require.Contains(t, out, "Book marked as returned!")
		require.NotContains(t, out, "admin@lib.io")
	})
}

func TestAllReservations(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	e.login(t, "admin@lib.io")

	out, err := e.run(t, "", "all-reservations")
	require.NoError(t, err)
	require.Contains(t, out, "Total 1  Active 1  Returned 0  Overdue 1")
	require.Contains(t, out, "ACTIVE (OVERDUE)")
	require.NotContains(t, out, "admin@lib.io")

	out, err = e.run(t, "", "all-reservations", "--status", "returned")
	require.NoError(t, err)
	require.Contains(t, out, "No reservations found.")

	out, err = e.run(t, "", "dashboard")
	require.NoError(t, err)
	require.Contains(t, out, "libctl all-reservations")
}
