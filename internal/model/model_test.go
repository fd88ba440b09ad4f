package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/Astemirdum/library-frontend/internal/model"
	"github.com/stretchr/testify/require"
)

func TestReservation_IsOverdue(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		rsv  model.Reservation
		want bool
	}{
		{"active past due", model.Reservation{Status: model.ReservationActive, DueDate: model.NewDate(now.Add(-time.Hour))}, true},
		{"active not due", model.Reservation{Status: model.ReservationActive, DueDate: model.NewDate(now.Add(time.Hour))}, false},
		{"returned past due", model.Reservation{Status: model.ReservationReturned, DueDate: model.NewDate(now.AddDate(0, 0, -5))}, false},
		{"no due date", model.Reservation{Status: model.ReservationActive}, false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, tt.rsv.IsOverdue(now))
		})
	}
}

func TestDueDate(t *testing.T) {
	t.Parallel()
	start := time.Date(2024, 1, 28, 9, 30, 0, 0, time.UTC)
	for _, days := range model.AllowedDurations {
		require.True(t, model.IsAllowedDuration(days))
		due := model.DueDate(start, days)
		require.Equal(t, days*24, int(due.Sub(start).Hours()))
	}
	require.False(t, model.IsAllowedDuration(10))
	require.False(t, model.IsAllowedDuration(0))
}

func TestDate_UnmarshalJSON(t *testing.T) {
	t.Parallel()
	var rsv model.Reservation
	err := json.Unmarshal([]byte(`{"id":7,"reservationDate":"2024-05-01","dueDate":"2024-05-15T10:00:00","status":"ACTIVE"}`), &rsv)
	require.NoError(t, err)
	require.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), rsv.ReservationDate.Time)
	require.Equal(t, time.Date(2024, 5, 15, 10, 0, 0, 0, time.UTC), rsv.DueDate.Time)

	err = json.Unmarshal([]byte(`{"dueDate":null}`), &rsv)
	require.NoError(t, err)
	require.True(t, rsv.DueDate.IsZero())

	b, err := json.Marshal(model.Reservation{ID: 1})
	require.NoError(t, err)
	require.Contains(t, string(b), `"dueDate":null`)

	require.Error(t, json.Unmarshal([]byte(`{"dueDate":"next week"}`), &rsv))
}

func TestCoverURL(t *testing.T) {
	t.Parallel()
	host := "http://localhost:8082"
	require.Equal(t, "http://localhost:8082/covers/1.png", model.CoverURL(host, "/covers/1.png", model.PlaceholderCover))
	require.Equal(t, "https://cdn.example.org/x.jpg", model.CoverURL(host, "https://cdn.example.org/x.jpg", model.PlaceholderCover))
	require.Equal(t, model.PlaceholderCover, model.CoverURL(host, "", model.PlaceholderCover))
}
