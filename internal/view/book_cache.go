package view

import (
	"context"
	"errors"

	"github.com/Astemirdum/library-frontend/internal/model"
)

// BookCache mirrors the book collection of the API. Views read through it and
// every mutating call either patches it locally or invalidates it. Patches
// are skipped until the first full load.
type BookCache struct {
	books Latest[[]model.Book]
}

func NewBookCache() *BookCache {
	return &BookCache{}
}

// Refresh loads the collection. A result overtaken by a newer refresh or a
// local write is dropped and the caller gets the cached list instead. When
// nothing is cached the fetch is repeated once.
func (c *BookCache) Refresh(ctx context.Context, fetch func(ctx context.Context) ([]model.Book, error)) ([]model.Book, error) {
	for attempt := 0; ; attempt++ {
		books, err := c.books.Load(ctx, fetch)
		if !errors.Is(err, ErrStale) {
			return books, err
		}
		if cached, ok := c.List(); ok {
			return cached, nil
		}
		if attempt > 0 {
			return books, nil
		}
	}
}

// Fetch loads one book. If the cache changed while the request was in flight
// the cached status wins, otherwise the fetched book is written back.
func (c *BookCache) Fetch(ctx context.Context, id int64, fetch func(ctx context.Context, id int64) (model.Book, error)) (model.Book, error) {
	writes := c.books.Writes()
	b, err := fetch(ctx, id)
	if err != nil {
		return model.Book{}, err
	}
	if c.books.Merge(writes, func(books []model.Book) []model.Book { return upsert(books, b) }) {
		return b, nil
	}
	if cached, ok := c.Get(id); ok {
		b.Status = cached.Status
	}
	return b, nil
}

func (c *BookCache) List() ([]model.Book, bool) {
	books, ok := c.books.Get()
	if !ok {
		return nil, false
	}
	return append([]model.Book(nil), books...), true
}

func (c *BookCache) Get(id int64) (model.Book, bool) {
	books, _ := c.books.Get()
	for _, b := range books {
		if b.ID == id {
			return b, true
		}
	}
	return model.Book{}, false
}

// Put inserts or replaces a single book.
func (c *BookCache) Put(book model.Book) {
	c.books.Update(func(books []model.Book) []model.Book { return upsert(books, book) })
}

func upsert(books []model.Book, book model.Book) []model.Book {
	out := make([]model.Book, 0, len(books)+1)
	replaced := false
	for _, b := range books {
		if b.ID == book.ID {
			out = append(out, book)
			replaced = true
			continue
		}
		out = append(out, b)
	}
	if !replaced {
		out = append(out, book)
	}
	return out
}

func (c *BookCache) Remove(id int64) {
	c.books.Update(func(books []model.Book) []model.Book {
		out := make([]model.Book, 0, len(books))
		for _, b := range books {
			if b.ID != id {
				out = append(out, b)
			}
		}
		return out
	})
}

// MarkStatus patches the status of a cached book. Unknown ids are ignored.
func (c *BookCache) MarkStatus(id int64, status model.BookStatus) {
	c.books.Update(func(books []model.Book) []model.Book {
		out := make([]model.Book, len(books))
		copy(out, books)
		for i := range out {
			if out[i].ID == id {
				out[i].Status = status
			}
		}
		return out
	})
}

func (c *BookCache) Invalidate() {
	c.books.Invalidate()
}
