package realtime_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/duwalace/App-Rango-sub000/apperrors"
	"github.com/duwalace/App-Rango-sub000/models"
	"github.com/duwalace/App-Rango-sub000/realtime"
	"github.com/duwalace/App-Rango-sub000/repository"
)

// fakeOrderStore is an in-memory stand-in for the orders collection plus its
// change stream.
type fakeOrderStore struct {
	mu     sync.Mutex
	orders []models.Order

	events chan repository.ChangeEvent
	errs   chan error
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{
		events: make(chan repository.ChangeEvent),
		errs:   make(chan error, 1),
	}
}

func (s *fakeOrderStore) fetch(_ context.Context, f realtime.FilterSpec) ([]models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Order
	for _, o := range s.orders {
		if o.StoreID != f.StoreID {
			continue
		}
		if len(f.Statuses) > 0 {
			match := false
			for _, st := range f.Statuses {
				if o.Status == st {
					match = true
				}
			}
			if !match {
				continue
			}
		}
		out = append(out, o)
	}
	return out, nil
}

func (s *fakeOrderStore) watch(_ context.Context) (<-chan repository.ChangeEvent, <-chan error, error) {
	return s.events, s.errs, nil
}

func (s *fakeOrderStore) addOrder(storeID string, status models.OrderStatus, createdAt time.Time) models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := models.Order{
		ID:        uuid.NewString(),
		StoreID:   storeID,
		Status:    status,
		CreatedAt: createdAt,
	}
	s.orders = append(s.orders, o)
	return o
}

// notifyChange mimics a committed mutation reaching the change stream.
func (s *fakeOrderStore) notifyChange() {
	s.events <- repository.ChangeEvent{Collection: "orders", OperationType: "insert"}
}

type collected struct {
	snapshots chan []models.Order
	errors    chan error
	deltas    chan [2]int
}

func newCollected() *collected {
	return &collected{
		snapshots: make(chan []models.Order, 16),
		errors:    make(chan error, 16),
		deltas:    make(chan [2]int, 16),
	}
}

func (c *collected) handler() realtime.Handler[models.Order] {
	return realtime.Handler[models.Order]{
		OnSnapshot:      func(items []models.Order) { c.snapshots <- items },
		OnError:         func(err error) { c.errors <- err },
		OnCountIncrease: func(prev, cur int) { c.deltas <- [2]int{prev, cur} },
	}
}

func waitSnapshot(t *testing.T, c *collected) []models.Order {
	t.Helper()
	select {
	case snap := <-c.snapshots:
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func assertNoSnapshot(t *testing.T, c *collected) {
	t.Helper()
	select {
	case snap := <-c.snapshots:
		t.Fatalf("unexpected snapshot with %d items", len(snap))
	case <-time.After(150 * time.Millisecond):
	}
}

func startSynchronizer(t *testing.T, store *fakeOrderStore) *realtime.Synchronizer[models.Order] {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	s := realtime.NewSynchronizer(store.fetch, store.watch,
		func(o models.Order) time.Time { return o.CreatedAt }, zap.NewNop())
	assert.NoError(t, s.Start(ctx))
	return s
}

// --- Tests ---

func TestSynchronizer_InitialSnapshotOnSubscribe(t *testing.T) {
	store := newFakeOrderStore()
	store.addOrder("store-1", models.StatusPending, time.Now())
	s := startSynchronizer(t, store)

	c := newCollected()
	_, err := s.Subscribe(context.Background(), realtime.FilterSpec{StoreID: "store-1"}, c.handler())
	assert.NoError(t, err)

	snap := waitSnapshot(t, c)
	assert.Len(t, snap, 1)
}

func TestSynchronizer_TwoSubscriptionsObserveIndependently(t *testing.T) {
	store := newFakeOrderStore()
	s := startSynchronizer(t, store)

	kanban := newCollected()
	overview := newCollected()

	activeFilter := realtime.FilterSpec{StoreID: "store-1", Statuses: models.ActiveStatuses}
	sub1, err := s.Subscribe(context.Background(), activeFilter, kanban.handler())
	assert.NoError(t, err)
	_, err = s.Subscribe(context.Background(), activeFilter, overview.handler())
	assert.NoError(t, err)

	assert.Empty(t, waitSnapshot(t, kanban))
	assert.Empty(t, waitSnapshot(t, overview))

	store.addOrder("store-1", models.StatusPending, time.Now())
	store.notifyChange()

	assert.Len(t, waitSnapshot(t, kanban), 1)
	assert.Len(t, waitSnapshot(t, overview), 1)

	// Dropping one view must not affect the other.
	sub1.Unsubscribe()
	store.addOrder("store-1", models.StatusPending, time.Now())
	store.notifyChange()

	assert.Len(t, waitSnapshot(t, overview), 2)
	assertNoSnapshot(t, kanban)
}

func TestSynchronizer_FilterExcludesNonMatchingStatuses(t *testing.T) {
	store := newFakeOrderStore()
	store.addOrder("store-1", models.StatusDelivered, time.Now())
	store.addOrder("store-1", models.StatusPending, time.Now())
	store.addOrder("store-2", models.StatusPending, time.Now())
	s := startSynchronizer(t, store)

	c := newCollected()
	_, err := s.Subscribe(context.Background(),
		realtime.FilterSpec{StoreID: "store-1", Statuses: models.ActiveStatuses}, c.handler())
	assert.NoError(t, err)

	snap := waitSnapshot(t, c)
	assert.Len(t, snap, 1)
	assert.Equal(t, models.StatusPending, snap[0].Status)
}

func TestSynchronizer_SnapshotsSortedMostRecentFirst(t *testing.T) {
	store := newFakeOrderStore()
	base := time.Now()
	oldest := store.addOrder("store-1", models.StatusPending, base.Add(-2*time.Hour))
	middle := store.addOrder("store-1", models.StatusPending, base.Add(-time.Hour))
	newest := store.addOrder("store-1", models.StatusPending, base)
	s := startSynchronizer(t, store)

	c := newCollected()
	_, err := s.Subscribe(context.Background(), realtime.FilterSpec{StoreID: "store-1"}, c.handler())
	assert.NoError(t, err)

	snap := waitSnapshot(t, c)
	assert.Equal(t, []string{newest.ID, middle.ID, oldest.ID},
		[]string{snap[0].ID, snap[1].ID, snap[2].ID})
}

func TestSynchronizer_UnsubscribeIsIdempotent(t *testing.T) {
	store := newFakeOrderStore()
	s := startSynchronizer(t, store)

	c := newCollected()
	sub, err := s.Subscribe(context.Background(), realtime.FilterSpec{StoreID: "store-1"}, c.handler())
	assert.NoError(t, err)
	waitSnapshot(t, c)

	sub.Unsubscribe()
	sub.Unsubscribe() // second call has no effect

	store.addOrder("store-1", models.StatusPending, time.Now())
	store.notifyChange()
	assertNoSnapshot(t, c)
}

func TestSynchronizer_CountIncreaseFiresOnGrowth(t *testing.T) {
	store := newFakeOrderStore()
	store.addOrder("store-1", models.StatusPending, time.Now())
	s := startSynchronizer(t, store)

	c := newCollected()
	_, err := s.Subscribe(context.Background(),
		realtime.FilterSpec{StoreID: "store-1", Statuses: models.ActiveStatuses}, c.handler())
	assert.NoError(t, err)
	waitSnapshot(t, c)

	// The initial snapshot only seeds the count.
	select {
	case d := <-c.deltas:
		t.Fatalf("unexpected count-increase %v on initial snapshot", d)
	case <-time.After(100 * time.Millisecond):
	}

	store.addOrder("store-1", models.StatusPending, time.Now())
	store.notifyChange()
	waitSnapshot(t, c)

	select {
	case d := <-c.deltas:
		assert.Equal(t, [2]int{1, 2}, d)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for count-increase")
	}
}

func TestSynchronizer_StreamFailureFansOutAndStops(t *testing.T) {
	store := newFakeOrderStore()
	s := startSynchronizer(t, store)

	a := newCollected()
	b := newCollected()
	_, err := s.Subscribe(context.Background(), realtime.FilterSpec{StoreID: "store-1"}, a.handler())
	assert.NoError(t, err)
	_, err = s.Subscribe(context.Background(), realtime.FilterSpec{StoreID: "store-1"}, b.handler())
	assert.NoError(t, err)
	waitSnapshot(t, a)
	waitSnapshot(t, b)

	store.errs <- errors.New("permission denied")

	for _, c := range []*collected{a, b} {
		select {
		case err := <-c.errors:
			var serr *apperrors.SubscriptionError
			assert.ErrorAs(t, err, &serr)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for subscription error")
		}
	}

	select {
	case <-s.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("synchronizer did not stop after stream failure")
	}

	// No stale snapshots after the failure; a new Subscribe is rejected
	// until the synchronizer is started again.
	store.addOrder("store-1", models.StatusPending, time.Now())
	assertNoSnapshot(t, a)
	_, err = s.Subscribe(context.Background(), realtime.FilterSpec{StoreID: "store-1"}, newCollected().handler())
	assert.Error(t, err)
}

func TestSynchronizer_SubscribeWhileEventsFlow(t *testing.T) {
	store := newFakeOrderStore()
	store.addOrder("store-1", models.StatusPending, time.Now())
	s := startSynchronizer(t, store)

	// Pump change events continuously so initial deliveries from Subscribe
	// overlap change-driven deliveries from the event loop.
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			case store.events <- repository.ChangeEvent{Collection: "orders", OperationType: "insert"}:
			}
		}
	}()

	var delivered atomic.Int64
	for i := 0; i < 200; i++ {
		handler := realtime.Handler[models.Order]{
			OnSnapshot:      func([]models.Order) { delivered.Add(1) },
			OnCountIncrease: func(int, int) {},
		}
		sub, err := s.Subscribe(context.Background(), realtime.FilterSpec{StoreID: "store-1"}, handler)
		assert.NoError(t, err)
		sub.Unsubscribe()
	}

	close(stop)
	wg.Wait()

	// Every Subscribe delivers its initial snapshot before returning.
	assert.GreaterOrEqual(t, delivered.Load(), int64(200))
}

func TestSynchronizer_FetchErrorSurfacesToSubscriber(t *testing.T) {
	store := newFakeOrderStore()
	fetchErr := errors.New("network down")

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	failing := realtime.NewSynchronizer(
		func(context.Context, realtime.FilterSpec) ([]models.Order, error) { return nil, fetchErr },
		store.watch,
		func(o models.Order) time.Time { return o.CreatedAt },
		zap.NewNop(),
	)
	assert.NoError(t, failing.Start(ctx))

	c := newCollected()
	_, err := failing.Subscribe(context.Background(), realtime.FilterSpec{StoreID: "store-1"}, c.handler())
	assert.NoError(t, err)

	select {
	case err := <-c.errors:
		var serr *apperrors.SubscriptionError
		assert.ErrorAs(t, err, &serr)
		assert.ErrorIs(t, err, fetchErr)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for fetch error")
	}
}
