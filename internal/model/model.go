package model

import (
	"strings"
	"time"
)

type Role string

const (
	RoleUser      Role = "USER"
	RoleLibrarian Role = "LIBRARIAN"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleLibrarian
}

// Identity is the authenticated principal of one client session.
// ID == 0 means the server response did not carry a usable id yet.
type Identity struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (i *Identity) Resolved() bool {
	return i != nil && i.ID != 0
}

func (i *Identity) IsLibrarian() bool {
	return i != nil && i.Role == RoleLibrarian
}

type BookStatus string

const (
	BookAvailable BookStatus = "AVAILABLE"
	BookReserved  BookStatus = "RESERVED"
)

func (s BookStatus) Valid() bool {
	return s == BookAvailable || s == BookReserved
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name" validate:"required"`
}

type Book struct {
	ID       int64      `json:"id"`
	Title    string     `json:"title" validate:"required"`
	Author   string     `json:"author" validate:"required"`
	Category *Category  `json:"category,omitempty"`
	Genre    string     `json:"genre,omitempty"`
	Language string     `json:"language,omitempty"`
	ISBN     string     `json:"isbn,omitempty"`
	ImageURL string     `json:"imageUrl,omitempty"`
	Status   BookStatus `json:"status,omitempty"`
}

func (b Book) CategoryName() string {
	if b.Category == nil {
		return ""
	}
	return b.Category.Name
}

type User struct {
	ID            int64  `json:"id"`
	Email         string `json:"email"`
	Role          Role   `json:"role"`
	IsBlacklisted bool   `json:"isBlacklisted"`
}

type ReservationStatus string

const (
	ReservationActive   ReservationStatus = "ACTIVE"
	ReservationReturned ReservationStatus = "RETURNED"
)

type Reservation struct {
	ID              int64             `json:"id"`
	User            *User             `json:"user,omitempty"`
	Book            *Book             `json:"book,omitempty"`
	ReservationDate Date              `json:"reservationDate"`
	DueDate         Date              `json:"dueDate"`
	Status          ReservationStatus `json:"status"`
}

// IsOverdue is derived at read time and never persisted. A row without a
// due date is never overdue.
func (r Reservation) IsOverdue(now time.Time) bool {
	return r.Status == ReservationActive && !r.DueDate.IsZero() && r.DueDate.Before(now)
}

// CanReturn reports whether a return may be offered for the row.
func (r Reservation) CanReturn() bool {
	return r.Status == ReservationActive
}

func (r Reservation) UserEmail() string {
	if r.User == nil {
		return ""
	}
	return r.User.Email
}

func (r Reservation) BookTitle() string {
	if r.Book == nil {
		return ""
	}
	return r.Book.Title
}

type CreateReservationRequest struct {
	UserID int64 `json:"userId" validate:"required"`
	BookID int64 `json:"bookId" validate:"required"`
	Days   int   `json:"days" validate:"required,oneof=7 14 21"`
}

// AllowedDurations are the loan lengths offered to readers, in days.
var AllowedDurations = []int{7, 14, 21}

func IsAllowedDuration(days int) bool {
	for _, d := range AllowedDurations {
		if d == days {
			return true
		}
	}
	return false
}

// DueDate is the return deadline of a loan started at reservedAt.
func DueDate(reservedAt time.Time, days int) time.Time {
	return reservedAt.AddDate(0, 0, days)
}

type BookFilter struct {
	Category string `json:"category,omitempty" query:"category"`
	Author   string `json:"author,omitempty" query:"author"`
	Genre    string `json:"genre,omitempty" query:"genre"`
	Language string `json:"language,omitempty" query:"language"`
}

func (f BookFilter) IsEmpty() bool {
	return strings.TrimSpace(f.Category) == "" &&
		strings.TrimSpace(f.Author) == "" &&
		strings.TrimSpace(f.Genre) == "" &&
		strings.TrimSpace(f.Language) == ""
}

type Credentials struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}
