package view

import (
	"context"
	"errors"
	"sync"
)

// ErrStale is returned by Load when a newer load or a local write happened
// while the fetch was in flight. The fetched value is dropped.
var ErrStale = errors.New("stale result discarded")

// Latest keeps the value of the most recent request only. Every Begin issues
// a ticket; a Commit is applied only while its ticket is still the newest.
type Latest[T any] struct {
	mu     sync.Mutex
	ticket uint64
	writes uint64
	value  T
	loaded bool
}

func (l *Latest[T]) Begin() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ticket++
	return l.ticket
}

func (l *Latest[T]) Commit(ticket uint64, v T) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if ticket != l.ticket {
		return false
	}
	l.value = v
	l.loaded = true
	return true
}

// Update invalidates in-flight loads and applies fn to the current value.
// Nothing is patched before the first load.
func (l *Latest[T]) Update(fn func(v T) T) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ticket++
	l.writes++
	if !l.loaded {
		return false
	}
	l.value = fn(l.value)
	return true
}

// Writes counts the local writes so far. Loads do not count.
func (l *Latest[T]) Writes() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.writes
}

// Merge folds fetched data into the value. It is refused when a local write
// happened after writes was read or when nothing is loaded yet.
func (l *Latest[T]) Merge(writes uint64, fn func(v T) T) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if writes != l.writes || !l.loaded {
		return false
	}
	l.value = fn(l.value)
	return true
}

func (l *Latest[T]) Get() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.value, l.loaded
}

// Load runs fetch under a fresh ticket and commits its result.
func (l *Latest[T]) Load(ctx context.Context, fetch func(ctx context.Context) (T, error)) (T, error) {
	ticket := l.Begin()
	v, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	if !l.Commit(ticket, v) {
		return v, ErrStale
	}
	return v, nil
}
