package book

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Astemirdum/library-frontend/internal/errs"
	"github.com/Astemirdum/library-frontend/internal/model"
	"github.com/Astemirdum/library-frontend/internal/service/api"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newService(t *testing.T, h http.HandlerFunc) *Service {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewService(zap.NewNop(), api.Config{BaseURL: srv.URL})
}

func TestService_Filter(t *testing.T) {
	t.Parallel()

	t.Run("empty filter lists everything", func(t *testing.T) {
		t.Parallel()
		svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/books", r.URL.Path)
			_, _ = io.WriteString(w, `[{"id":1,"title":"Dune","status":"AVAILABLE"}]`)
		})
		books, err := svc.Filter(context.Background(), model.BookFilter{Author: "  "})
		require.NoError(t, err)
		require.Len(t, books, 1)
	})

	t.Run("only set fields are sent", func(t *testing.T) {
		t.Parallel()
		svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/books/filter", r.URL.Path)
			q := r.URL.Query()
			require.Equal(t, "Herbert", q.Get("author"))
			require.Equal(t, "EN", q.Get("language"))
			require.False(t, q.Has("genre"))
			require.False(t, q.Has("category"))
			_, _ = io.WriteString(w, `[]`)
		})
		books, err := svc.Filter(context.Background(), model.BookFilter{Author: " Herbert ", Language: "EN"})
		require.NoError(t, err)
		require.Empty(t, books)
	})
}

func TestService_SetStatus(t *testing.T) {
	t.Parallel()
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/books/7/status", r.URL.Path)
		require.Equal(t, "RESERVED", r.URL.Query().Get("status"))
		_, _ = io.WriteString(w, `{"id":7,"status":"RESERVED"}`)
	})
	b, err := svc.SetStatus(context.Background(), 7, model.BookReserved)
	require.NoError(t, err)
	require.Equal(t, model.BookReserved, b.Status)
}

func TestService_UploadCover(t *testing.T) {
	t.Parallel()
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/books/7/upload-image", r.URL.Path)
		_, hdr, err := r.FormFile("image")
		require.NoError(t, err)
		require.Equal(t, "c.jpg", hdr.Filename)
		_, _ = io.WriteString(w, `{"id":7,"imageUrl":"/uploads/c.jpg"}`)
	})
	b, err := svc.UploadCover(context.Background(), 7, "c.jpg", strings.NewReader("jpg"))
	require.NoError(t, err)
	require.Equal(t, "/uploads/c.jpg", b.ImageURL)
}

func TestService_GetNotFound(t *testing.T) {
	t.Parallel()
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Book not found", http.StatusNotFound)
	})
	_, err := svc.Get(context.Background(), 42)
	apiErr, ok := errs.AsAPIError(err)
	require.True(t, ok)
	require.Equal(t, http.StatusNotFound, apiErr.Code)
	require.Equal(t, "Book not found", apiErr.Message())
}

func TestService_Writes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	book := model.Book{Title: "Solaris", Author: "Lem"}

	tests := []struct {
		name   string
		call   func(s *Service) error
		method string
		path   string
		body   string
	}{
		{
			name:   "create",
			call:   func(s *Service) error { _, err := s.Create(ctx, book); return err },
			method: http.MethodPost,
			path:   "/books",
			body:   `{"id":0,"title":"Solaris","author":"Lem"}`,
		},
		{
			name:   "update",
			call:   func(s *Service) error { _, err := s.Update(ctx, 7, book); return err },
			method: http.MethodPut,
			path:   "/books/7",
			body:   `{"id":0,"title":"Solaris","author":"Lem"}`,
		},
		{
			name:   "delete",
			call:   func(s *Service) error { return s.Delete(ctx, 7) },
			method: http.MethodDelete,
			path:   "/books/7",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			requests := make(chan [3]string, 1)
			svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
				data, _ := io.ReadAll(r.Body)
				requests <- [3]string{r.Method, r.URL.Path, string(data)}
				if r.Method != http.MethodDelete {
					_, _ = io.WriteString(w, `{"id":7,"title":"Solaris","author":"Lem"}`)
				}
			})
			require.NoError(t, tt.call(svc))
			got := <-requests
			require.Equal(t, tt.method, got[0])
			require.Equal(t, tt.path, got[1])
			if tt.body == "" {
				require.Empty(t, got[2])
			} else {
				require.JSONEq(t, tt.body, got[2])
			}
		})
	}
}
