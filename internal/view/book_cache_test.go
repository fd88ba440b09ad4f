package view

import (
	"context"
	"errors"
	"testing"

	"github.com/Astemirdum/library-frontend/internal/model"
	"github.com/stretchr/testify/require"
)

func TestLatest_StaleLoadIsDropped(t *testing.T) {
	t.Parallel()
	var l Latest[int]

	old := l.Begin()
	newer := l.Begin()
	require.True(t, l.Commit(newer, 2))
	require.False(t, l.Commit(old, 1))

	v, ok := l.Get()
	require.True(t, ok)
	require.Equal(t, 2, v)
}

func TestLatest_Load(t *testing.T) {
	t.Parallel()
	var l Latest[string]
	ctx := context.Background()

	_, err := l.Load(ctx, func(context.Context) (string, error) { return "", errors.New("down") })
	require.Error(t, err)
	_, ok := l.Get()
	require.False(t, ok)

	v, err := l.Load(ctx, func(context.Context) (string, error) { return "first", nil })
	require.NoError(t, err)
	require.Equal(t, "first", v)

	v, err = l.Load(ctx, func(context.Context) (string, error) {
		// a local write lands while the fetch is in flight
		l.Update(func(string) string { return "local" })
		return "remote", nil
	})
	require.ErrorIs(t, err, ErrStale)
	require.Equal(t, "remote", v)
	got, _ := l.Get()
	require.Equal(t, "local", got)
}

func TestBookCache(t *testing.T) {
	t.Parallel()
	c := NewBookCache()
	ctx := context.Background()

	_, ok := c.List()
	require.False(t, ok)

	books, err := c.Refresh(ctx, func(context.Context) ([]model.Book, error) {
		return []model.Book{
			{ID: 1, Title: "Dune", Status: model.BookAvailable},
			{ID: 2, Title: "Emma", Status: model.BookAvailable},
		}, nil
	})
	require.NoError(t, err)
	require.Len(t, books, 2)

	c.MarkStatus(1, model.BookReserved)
	c.MarkStatus(99, model.BookReserved)
	b, ok := c.Get(1)
	require.True(t, ok)
	require.Equal(t, model.BookReserved, b.Status)

	c.Put(model.Book{ID: 3, Title: "Ulysses"})
	c.Remove(2)
	list, ok := c.List()
	require.True(t, ok)
	require.Len(t, list, 2)
	list[0].Title = "mutated"
	b, _ = c.Get(1)
	require.Equal(t, "Dune", b.Title)

	got, err := c.Refresh(ctx, func(context.Context) ([]model.Book, error) {
		c.MarkStatus(1, model.BookAvailable)
		return []model.Book{{ID: 7}}, nil
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, int64(1), got[0].ID)
	require.Equal(t, model.BookAvailable, got[0].Status)
	_, ok = c.Get(7)
	require.False(t, ok)

	c.Invalidate()
	_, ok = c.List()
	require.False(t, ok)
}

func TestLatest_UpdateBeforeLoad(t *testing.T) {
	t.Parallel()
	var l Latest[[]int]
	require.False(t, l.Update(func(v []int) []int { return append(v, 1) }))
	_, ok := l.Get()
	require.False(t, ok)
	require.False(t, l.Merge(l.Writes(), func(v []int) []int { return append(v, 2) }))
}

func TestBookCache_PatchBeforeLoad(t *testing.T) {
	t.Parallel()
	c := NewBookCache()

	c.Put(model.Book{ID: 3, Title: "Ulysses"})
	c.MarkStatus(3, model.BookReserved)
	c.Remove(4)

	_, ok := c.Get(3)
	require.False(t, ok)
	_, ok = c.List()
	require.False(t, ok)
}

func TestBookCache_RefreshOvertakenBeforeFirstLoad(t *testing.T) {
	t.Parallel()
	c := NewBookCache()
	ctx := context.Background()

	calls := 0
	books, err := c.Refresh(ctx, func(context.Context) ([]model.Book, error) {
		calls++
		if calls == 1 {
			// a book is added while the first load is in flight
			c.Put(model.Book{ID: 2})
			return []model.Book{{ID: 1}}, nil
		}
		return []model.Book{{ID: 1}, {ID: 2}}, nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, calls)
	require.Len(t, books, 2)
	list, ok := c.List()
	require.True(t, ok)
	require.Len(t, list, 2)
}

func TestBookCache_Fetch(t *testing.T) {
	t.Parallel()
	c := NewBookCache()
	ctx := context.Background()

	_, err := c.Refresh(ctx, func(context.Context) ([]model.Book, error) {
		return []model.Book{{ID: 1, Title: "Dune", Status: model.BookAvailable}}, nil
	})
	require.NoError(t, err)

	b, err := c.Fetch(ctx, 1, func(context.Context, int64) (model.Book, error) {
		return model.Book{ID: 1, Title: "Dune II", Status: model.BookAvailable}, nil
	})
	require.NoError(t, err)
	require.Equal(t, "Dune II", b.Title)
	cached, _ := c.Get(1)
	require.Equal(t, "Dune II", cached.Title)

	b, err = c.Fetch(ctx, 1, func(context.Context, int64) (model.Book, error) {
		// reserved locally while the book is being read
		c.MarkStatus(1, model.BookReserved)
		return model.Book{ID: 1, Title: "Dune II", Status: model.BookAvailable}, nil
	})
	require.NoError(t, err)
	require.Equal(t, model.BookReserved, b.Status)

	_, err = c.Fetch(ctx, 5, func(context.Context, int64) (model.Book, error) {
		return model.Book{}, errors.New("not found")
	})
	require.Error(t, err)
	_, ok := c.Get(5)
	require.False(t, ok)
}
