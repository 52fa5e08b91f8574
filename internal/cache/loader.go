// Package cache memoizes loaded files keyed by path and modification time.
package cache

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// LoadFunc reads the value stored at path.
type LoadFunc[T any] func(path string) (T, error)

type entry[T any] struct {
	modTime time.Time
	size    int64
	value   T
}

// Loader caches one value per path. A cached value is served until the
// file's modification time or size changes or Invalidate is called.
type Loader[T any] struct {
	mu      sync.Mutex
	load    LoadFunc[T]
	entries map[string]entry[T]

	// OnLoad, when set, is called after every successful (re)load.
	OnLoad func(path string, took time.Duration)
}

// NewLoader returns an empty cache around load.
func NewLoader[T any](load LoadFunc[T]) *Loader[T] {
	return &Loader[T]{load: load, entries: make(map[string]entry[T])}
}

// Get returns the cached value for path, loading it when absent or stale.
// Loads are serialized.
func (l *Loader[T]) Get(path string) (T, error) {
	var zero T
	info, err := os.Stat(path)
	if err != nil {
		return zero, fmt.Errorf("stat %s: %w", path, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.entries[path]; ok && e.modTime.Equal(info.ModTime()) && e.size == info.Size() {
		return e.value, nil
	}

	start := time.Now()
	v, err := l.load(path)
	if err != nil {
		return zero, err
	}
	l.entries[path] = entry[T]{modTime: info.ModTime(), size: info.Size(), value: v}
	if l.OnLoad != nil {
		l.OnLoad(path, time.Since(start))
	}
	return v, nil
}

// Invalidate drops the cached value for path.
func (l *Loader[T]) Invalidate(path string) {
	l.mu.Lock()
	delete(l.entries, path)
	l.mu.Unlock()
}

// Reset drops every cached value.
func (l *Loader[T]) Reset() {
	l.mu.Lock()
	l.entries = make(map[string]entry[T])
	l.mu.Unlock()
}

// Len returns the number of cached paths.
func (l *Loader[T]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
