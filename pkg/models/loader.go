// Package models manages the face model bundles and their process-wide
// loading. Loading is asynchronous and memoized: the first caller starts
// the load, concurrent callers share the in-flight attempt, and a failed
// attempt clears the memo so a later call can retry.
package models

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ddmareo/Visitor-Management-System-V2-sub000/pkg/logging"
)

// ErrModelLoad is the fatal model loading failure. Load errors wrap it
// regardless of the underlying source.
var ErrModelLoad = errors.New("model load failed")

type attempt struct {
	done chan struct{}
	err  error
}

// Loader memoizes a single load function process-wide.
type Loader struct {
	mu     sync.Mutex
	fn     func() error
	cur    *attempt
	loaded bool
}

// NewLoader creates a loader around fn. fn runs at most once successfully;
// after a failure the next Load call runs it again.
func NewLoader(fn func() error) *Loader {
	return &Loader{fn: fn}
}

// Load blocks until the models are loaded, the shared in-flight attempt
// fails, or ctx is done. The attempt itself is never cancelled by ctx;
// a caller that gives up leaves the load running for the others.
func (l *Loader) Load(ctx context.Context) error {
	l.mu.Lock()
	if l.loaded {
		l.mu.Unlock()
		return nil
	}
	a := l.cur
	if a == nil {
		a = &attempt{done: make(chan struct{})}
		l.cur = a
		go l.run(a)
	}
	l.mu.Unlock()

	select {
	case <-a.done:
		return a.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (l *Loader) run(a *attempt) {
	err := l.fn()

	l.mu.Lock()
	if err == nil {
		l.loaded = true
	} else {
		err = fmt.Errorf("%w: %v", ErrModelLoad, err)
		logging.Component("models").WithError(err).Error("model load attempt failed")
	}
	a.err = err
	l.cur = nil
	l.mu.Unlock()

	close(a.done)
}

// Loaded reports whether a load has completed successfully.
func (l *Loader) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded
}

// Reset clears the loaded flag. Intended for tests and explicit reloads;
// it does not interrupt an in-flight attempt.
func (l *Loader) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loaded = false
}
