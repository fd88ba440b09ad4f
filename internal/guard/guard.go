package guard

import (
	"github.com/Astemirdum/library-frontend/internal/model"
)

type Access uint8

const (
	Public Access = iota
	Authenticated
	LibrarianOnly
	UserOnly
)

func (a Access) String() string {
	switch a {
	case Public:
		return "public"
	case Authenticated:
		return "authenticated"
	case LibrarianOnly:
		return "librarian"
	case UserOnly:
		return "user"
	}
	return "unknown"
}

// ParseAccess is the inverse of String. Unknown names need a login.
func ParseAccess(s string) Access {
	for _, a := range []Access{Public, Authenticated, LibrarianOnly, UserOnly} {
		if a.String() == s {
			return a
		}
	}
	return Authenticated
}

const (
	HomePath           = "/"
	LoginPath          = "/login"
	SignupPath         = "/signup"
	BooksPath          = "/books"
	BookPath           = "/books/:id"
	ReservationsPath   = "/reservations"
	ProfilePath        = "/profile"
	DashboardPath      = "/dashboard"
	ManageBooksPath    = "/manage-books"
	ManageCategoryPath = "/manage-categories"
	ManageUsersPath    = "/manage-users"
	ViewReservations   = "/view-reservations"
)

// Routes lists every page with the access it requires.
var Routes = map[string]Access{
	HomePath:           Public,
	LoginPath:          Public,
	SignupPath:         Public,
	BooksPath:          Authenticated,
	BookPath:           Authenticated,
	ProfilePath:        Authenticated,
	ReservationsPath:   UserOnly,
	DashboardPath:      LibrarianOnly,
	ManageBooksPath:    LibrarianOnly,
	ManageCategoryPath: LibrarianOnly,
	ManageUsersPath:    LibrarianOnly,
	ViewReservations:   LibrarianOnly,
}

type Decision struct {
	Allow    bool
	Redirect string
}

// Decide tells whether identity may open a page requiring access and
// where to send it otherwise.
func Decide(identity *model.Identity, access Access) Decision {
	if access == Public {
		return Decision{Allow: true}
	}
	if identity == nil {
		return Decision{Redirect: LoginPath}
	}
	switch access {
	case LibrarianOnly:
		if !identity.IsLibrarian() {
			return Decision{Redirect: BooksPath}
		}
	case UserOnly:
		if identity.IsLibrarian() {
			return Decision{Redirect: DashboardPath}
		}
	}
	return Decision{Allow: true}
}

// DecideRoute is Decide for a registered route. Unknown routes need a login.
func DecideRoute(identity *model.Identity, route string) Decision {
	access, ok := Routes[route]
	if !ok {
		access = Authenticated
	}
	return Decide(identity, access)
}

// Landing is where an identity goes right after login.
func Landing(identity *model.Identity) string {
	switch {
	case identity == nil:
		return LoginPath
	case identity.IsLibrarian():
		return DashboardPath
	default:
		return BooksPath
	}
}

type Link struct {
	Title string `json:"title"`
	Path  string `json:"path"`
}

// Menu is the navigation offered to identity.
func Menu(identity *model.Identity) []Link {
	switch {
	case identity == nil:
		return []Link{{"Login", LoginPath}, {"Sign Up", SignupPath}}
	case identity.IsLibrarian():
		return []Link{
			{"Dashboard", DashboardPath},
			{"Books", ManageBooksPath},
			{"Categories", ManageCategoryPath},
			{"Users", ManageUsersPath},
			{"Reservations", ViewReservations},
			{"Profile", ProfilePath},
		}
	default:
		return []Link{
			{"Browse Books", BooksPath},
			{"My Reservations", ReservationsPath},
			{"Profile", ProfilePath},
		}
	}
}
