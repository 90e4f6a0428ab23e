// Package store holds observable client-side state for admin resources.
// Each store moves Idle -> Loading -> Loaded or Failed, and any fetch
// re-enters Loading regardless of the current phase.
package store

import (
	"context"
	"errors"
	"slices"
	"sync"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// Phase is the lifecycle position of a store.
type Phase int

const (
	Idle Phase = iota
	Loading
	Loaded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// State is the observable snapshot of a store.
type State[T any] struct {
	Items   []T
	Loading bool
	Error   string
	Phase   Phase
}

type actionKind int

const (
	fetchStarted actionKind = iota
	fetchSucceeded
	fetchFailed
)

type action[T any] struct {
	kind  actionKind
	items []T
	err   string
}

// reduce is the only place state changes. A failure keeps the previous
// items so stale data stays visible next to the error.
func reduce[T any](s State[T], a action[T]) State[T] {
	switch a.kind {
	case fetchStarted:
		s.Loading = true
		s.Error = ""
		s.Phase = Loading
	case fetchSucceeded:
		s.Items = a.items
		s.Loading = false
		s.Phase = Loaded
	case fetchFailed:
		s.Error = a.err
		s.Loading = false
		s.Phase = Failed
	}
	return s
}

// Store is a generic {items, loading, error} container. Overlapping fetches
// are not ordered: whichever call resolves last decides the final state.
type Store[T any] struct {
	mu       sync.Mutex
	state    State[T]
	subs     map[uint64]func(State[T])
	nextSub  uint64
	fallback string
}

// New creates an idle store. fallback is the error shown when a failure
// carries no server message.
func New[T any](fallback string) *Store[T] {
	return &Store[T]{
		subs:     make(map[uint64]func(State[T])),
		fallback: fallback,
	}
}

// State returns a copy of the current state.
func (s *Store[T]) State() State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.state)
}

// Subscribe registers fn for every state transition and returns a func
// that removes it. fn receives the snapshot produced by that transition.
// Notifications run outside the lock, so under overlapping fetches they may
// arrive out of order relative to each other and to State: a Loading
// snapshot can follow a Loaded one.
func (s *Store[T]) Subscribe(fn func(State[T])) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Fetch moves the store to Loading, calls fn once and records its outcome.
func (s *Store[T]) Fetch(ctx context.Context, fn func(context.Context) ([]T, error)) {
	s.dispatch(action[T]{kind: fetchStarted})

	items, err := fn(ctx)
	if err != nil {
		s.dispatch(action[T]{kind: fetchFailed, err: ErrorMessage(err, s.fallback)})
		return
	}
	if items == nil {
		items = []T{}
	}
	s.dispatch(action[T]{kind: fetchSucceeded, items: items})
}

func (s *Store[T]) dispatch(a action[T]) {
	s.mu.Lock()
	s.state = reduce(s.state, a)
	state := snapshot(s.state)
	subs := make([]func(State[T]), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}

func snapshot[T any](s State[T]) State[T] {
	s.Items = slices.Clone(s.Items)
	return s
}

// ErrorMessage returns the server-provided message carried by err, or
// fallback when there is none.
func ErrorMessage(err error, fallback string) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return fallback
}
