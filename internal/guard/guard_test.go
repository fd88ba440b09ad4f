package guard_test

import (
	"testing"

	"github.com/Astemirdum/library-frontend/internal/guard"
	"github.com/Astemirdum/library-frontend/internal/model"
	"github.com/stretchr/testify/require"
)

func TestDecide(t *testing.T) {
	t.Parallel()
	reader := &model.Identity{ID: 42, Email: "reader@lib.io", Role: model.RoleUser}
	librarian := &model.Identity{ID: 1, Email: "admin@lib.io", Role: model.RoleLibrarian}

	tests := []struct {
		name     string
		identity *model.Identity
		access   guard.Access
		want     guard.Decision
	}{
		{"public anonymous", nil, guard.Public, guard.Decision{Allow: true}},
		{"authenticated anonymous", nil, guard.Authenticated, guard.Decision{Redirect: guard.LoginPath}},
		{"librarian only anonymous", nil, guard.LibrarianOnly, guard.Decision{Redirect: guard.LoginPath}},
		{"user only anonymous", nil, guard.UserOnly, guard.Decision{Redirect: guard.LoginPath}},
		{"reader on librarian page", reader, guard.LibrarianOnly, guard.Decision{Redirect: guard.BooksPath}},
		{"librarian on reader page", librarian, guard.UserOnly, guard.Decision{Redirect: guard.DashboardPath}},
		{"reader on reader page", reader, guard.UserOnly, guard.Decision{Allow: true}},
		{"librarian on librarian page", librarian, guard.LibrarianOnly, guard.Decision{Allow: true}},
		{"reader authenticated", reader, guard.Authenticated, guard.Decision{Allow: true}},
		{"librarian authenticated", librarian, guard.Authenticated, guard.Decision{Allow: true}},
		{"unresolved id still counts as logged in", &model.Identity{Role: model.RoleUser}, guard.Authenticated, guard.Decision{Allow: true}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, guard.Decide(tt.identity, tt.access))
		})
	}
}

func TestDecideRoute(t *testing.T) {
	t.Parallel()
	reader := &model.Identity{ID: 42, Role: model.RoleUser}
	librarian := &model.Identity{ID: 1, Role: model.RoleLibrarian}

	for route, access := range guard.Routes {
		if access != guard.LibrarianOnly {
			continue
		}
		require.Equal(t, guard.BooksPath, guard.DecideRoute(reader, route).Redirect, route)
		require.True(t, guard.DecideRoute(librarian, route).Allow, route)
		require.Equal(t, guard.LoginPath, guard.DecideRoute(nil, route).Redirect, route)
	}
	require.Equal(t, guard.DashboardPath, guard.DecideRoute(librarian, guard.ReservationsPath).Redirect)
	require.Equal(t, guard.LoginPath, guard.DecideRoute(nil, "/unknown").Redirect)
}

func TestLandingAndMenu(t *testing.T) {
	t.Parallel()
	require.Equal(t, guard.LoginPath, guard.Landing(nil))
	require.Equal(t, guard.BooksPath, guard.Landing(&model.Identity{ID: 42, Role: model.RoleUser}))
	require.Equal(t, guard.DashboardPath, guard.Landing(&model.Identity{ID: 1, Role: model.RoleLibrarian}))

	menu := guard.Menu(&model.Identity{ID: 42, Role: model.RoleUser})
	for _, l := range menu {
		require.True(t, guard.DecideRoute(&model.Identity{ID: 42, Role: model.RoleUser}, l.Path).Allow, l.Path)
	}
	menu = guard.Menu(&model.Identity{ID: 1, Role: model.RoleLibrarian})
	for _, l := range menu {
		require.True(t, guard.DecideRoute(&model.Identity{ID: 1, Role: model.RoleLibrarian}, l.Path).Allow, l.Path)
	}
}

func TestParseAccess(t *testing.T) {
	t.Parallel()
	for _, a := range []guard.Access{guard.Public, guard.Authenticated, guard.LibrarianOnly, guard.UserOnly} {
		require.Equal(t, a, guard.ParseAccess(a.String()))
	}
	require.Equal(t, guard.Authenticated, guard.ParseAccess(""))
}
