// Package realtime keeps live, locally-ordered views over filtered slices of
// the order and review collections and pushes full snapshots to subscribers
// whenever the underlying collection changes.
package realtime

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/duwalace/App-Rango-sub000/apperrors"
	"github.com/duwalace/App-Rango-sub000/models"
	"github.com/duwalace/App-Rango-sub000/repository"
)

// FilterSpec selects the slice of a collection a subscription observes.
// Statuses is optional and only meaningful for order views.
type FilterSpec struct {
	StoreID  string
	Statuses []models.OrderStatus
}

// FetchFunc re-queries the current result set for a filter. The store is
// never asked for a compound filter+sort; ordering is applied locally.
type FetchFunc[T any] func(ctx context.Context, filter FilterSpec) ([]T, error)

// WatchFunc opens the collection's change stream.
type WatchFunc func(ctx context.Context) (<-chan repository.ChangeEvent, <-chan error, error)

// Handler receives a subscription's snapshots and errors. Every snapshot is
// the full current result set, most recent first — never a delta.
// OnCountIncrease fires when the result set grows past the count seen at the
// previous snapshot; the initial snapshot only seeds the count.
type Handler[T any] struct {
	OnSnapshot      func(items []T)
	OnError         func(err error)
	OnCountIncrease func(previous, current int)
}

// Subscription is a live view handle. Unsubscribe is idempotent and silences
// the handler immediately.
type Subscription[T any] struct {
	id      string
	filter  FilterSpec
	handler Handler[T]
	closed  atomic.Bool

	// mu serializes deliveries to this subscription: Subscribe pushes the
	// initial snapshot from the caller's goroutine while the event loop
	// delivers the rest, so the handler and the count bookkeeping below must
	// never run concurrently with themselves.
	mu             sync.Mutex
	lastKnownCount int
	seeded         bool
}

// Unsubscribe stops further handler invocations. Calling it again has no effect.
func (s *Subscription[T]) Unsubscribe() {
	s.closed.Store(true)
}

// Synchronizer fans one collection change stream out to any number of
// independent filtered views. Change-driven deliveries run on a single event
// loop goroutine; the initial snapshot is pushed from the subscriber's
// goroutine, so deliveries to each subscription are serialized on its own
// lock and a handler never runs concurrently with itself.
type Synchronizer[T any] struct {
	fetch     FetchFunc[T]
	watch     WatchFunc
	createdAt func(T) time.Time
	logger    *zap.Logger

	mu     sync.Mutex
	subs   map[string]*Subscription[T]
	failed bool

	done chan struct{}
}

// NewSynchronizer creates a synchronizer over one collection. createdAt
// extracts the timestamp snapshots are sorted by (descending).
func NewSynchronizer[T any](fetch FetchFunc[T], watch WatchFunc, createdAt func(T) time.Time, logger *zap.Logger) *Synchronizer[T] {
	return &Synchronizer[T]{
		fetch:     fetch,
		watch:     watch,
		createdAt: createdAt,
		logger:    logger,
		subs:      make(map[string]*Subscription[T]),
	}
}

// Start opens the change stream and runs the event loop until ctx is
// cancelled or the stream fails. After a failure every subscriber has been
// handed a SubscriptionError and no further snapshots are emitted; a caller
// that wants live data again calls Start once more with live subscriptions.
func (s *Synchronizer[T]) Start(ctx context.Context) error {
	events, errs, err := s.watch(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.failed = false
	s.done = make(chan struct{})
	s.mu.Unlock()

	go s.loop(ctx, events, errs)
	return nil
}

// Done reports when the event loop has stopped.
func (s *Synchronizer[T]) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Subscribe registers a live view and synchronously delivers the initial
// snapshot. Handlers for different subscriptions observe the same change
// stream independently; there is no ordering guarantee across subscriptions.
func (s *Synchronizer[T]) Subscribe(ctx context.Context, filter FilterSpec, handler Handler[T]) (*Subscription[T], error) {
	sub := &Subscription[T]{
		id:      uuid.NewString(),
		filter:  filter,
		handler: handler,
	}

	s.mu.Lock()
	if s.failed {
		s.mu.Unlock()
		return nil, &apperrors.SubscriptionError{Cause: context.Canceled}
	}
	s.subs[sub.id] = sub
	s.mu.Unlock()

	s.deliver(ctx, sub)
	return sub, nil
}

func (s *Synchronizer[T]) loop(ctx context.Context, events <-chan repository.ChangeEvent, errs <-chan error) {
	defer close(s.done)

	for {
		select {
		case <-ctx.Done():
			return
		case err := <-errs:
			s.fail(err)
			return
		case _, ok := <-events:
			if !ok {
				return
			}
			// Each subscription independently re-filters; a change that
			// does not match a given filter just yields an equal snapshot.
			for _, sub := range s.activeSubs() {
				s.deliver(ctx, sub)
			}
		}
	}
}

func (s *Synchronizer[T]) activeSubs() []*Subscription[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Subscription[T], 0, len(s.subs))
	for id, sub := range s.subs {
		if sub.closed.Load() {
			delete(s.subs, id)
			continue
		}
		out = append(out, sub)
	}
	return out
}

// deliver recomputes the full result set for one subscription, sorts it most
// recent first and invokes the handler.
func (s *Synchronizer[T]) deliver(ctx context.Context, sub *Subscription[T]) {
	sub.mu.Lock()
	defer sub.mu.Unlock()

	if sub.closed.Load() {
		return
	}

	items, err := s.fetch(ctx, sub.filter)
	if err != nil {
		s.logger.Error("Failed to refresh live view", zap.String("subscription_id", sub.id), zap.Error(err))
		if !sub.closed.Load() && sub.handler.OnError != nil {
			sub.handler.OnError(&apperrors.SubscriptionError{Cause: err})
		}
		return
	}

	sort.SliceStable(items, func(i, j int) bool {
		return s.createdAt(items[i]).After(s.createdAt(items[j]))
	})

	if sub.closed.Load() {
		return
	}
	if sub.handler.OnSnapshot != nil {
		sub.handler.OnSnapshot(items)
	}

	prev := sub.lastKnownCount
	sub.lastKnownCount = len(items)
	if sub.seeded && len(items) > prev && sub.handler.OnCountIncrease != nil {
		sub.handler.OnCountIncrease(prev, len(items))
	}
	sub.seeded = true
}

// fail hands a SubscriptionError to every live subscriber and stops the
// synchronizer. Stale snapshots are never silently re-emitted afterward.
func (s *Synchronizer[T]) fail(cause error) {
	s.logger.Error("Change stream failed, live views stopped", zap.Error(cause))

	s.mu.Lock()
	s.failed = true
	subs := make([]*Subscription[T], 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.subs = make(map[string]*Subscription[T])
	s.mu.Unlock()

	serr := &apperrors.SubscriptionError{Cause: cause}
	for _, sub := range subs {
		sub.mu.Lock()
		if !sub.closed.Load() && sub.handler.OnError != nil {
			sub.handler.OnError(serr)
		}
		sub.closed.Store(true)
		sub.mu.Unlock()
	}
}
