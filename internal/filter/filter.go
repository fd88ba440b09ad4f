package filter

import (
	"strings"
	"time"

	"github.com/Astemirdum/library-frontend/internal/model"
)

// StatusAll matches reservations in any status.
const StatusAll = "ALL"

type ReservationQuery struct {
	Status string `query:"status"`
	Search string `query:"q"`
}

func contains(field, needle string) bool {
	return strings.Contains(strings.ToLower(field), needle)
}

func normalize(search string) string {
	return strings.ToLower(strings.TrimSpace(search))
}

// Books narrows items to those whose title, author, genre, language,
// isbn or category name contains search. Empty search keeps everything.
func Books(items []model.Book, search string) []model.Book {
	needle := normalize(search)
	out := make([]model.Book, 0, len(items))
	for _, b := range items {
		if needle == "" ||
			contains(b.Title, needle) ||
			contains(b.Author, needle) ||
			contains(b.Genre, needle) ||
			contains(b.Language, needle) ||
			contains(b.ISBN, needle) ||
			contains(b.CategoryName(), needle) {
			out = append(out, b)
		}
	}
	return out
}

// Reservations drops reservations held by librarians, then applies the
// status and the search over user email and book title.
func Reservations(items []model.Reservation, q ReservationQuery) []model.Reservation {
	status := strings.ToUpper(strings.TrimSpace(q.Status))
	needle := normalize(q.Search)
	out := make([]model.Reservation, 0, len(items))
	for _, r := range items {
		if r.User != nil && r.User.Role == model.RoleLibrarian {
			continue
		}
		if status != "" && status != StatusAll && string(r.Status) != status {
			continue
		}
		if needle != "" && !contains(r.UserEmail(), needle) && !contains(r.BookTitle(), needle) {
			continue
		}
		out = append(out, r)
	}
	return out
}

type ReservationCounts struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Returned int `json:"returned"`
	Overdue  int `json:"overdue"`
}

func CountReservations(items []model.Reservation, now time.Time) ReservationCounts {
	var c ReservationCounts
	for _, r := range items {
		c.Total++
		switch r.Status {
		case model.ReservationActive:
			c.Active++
		case model.ReservationReturned:
			c.Returned++
		}
		if r.IsOverdue(now) {
			c.Overdue++
		}
	}
	return c
}

type BookCounts struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Reserved  int `json:"reserved"`
}

func CountBooks(items []model.Book) BookCounts {
	var c BookCounts
	for _, b := range items {
		c.Total++
		switch b.Status {
		case model.BookAvailable:
			c.Available++
		case model.BookReserved:
			c.Reserved++
		}
	}
	return c
}
