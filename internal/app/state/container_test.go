package state

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"clientadmin/internal/app/backend"
	"clientadmin/internal/app/ds"
	"clientadmin/internal/app/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBackendDown = errors.New("backend down")

type fakeResource[T Record, C any, U Record] struct {
	list       func(ctx context.Context) ([]T, error)
	get        func(ctx context.Context, id int64) (T, error)
	create     func(ctx context.Context, req C) (T, error)
	update     func(ctx context.Context, req U) (*T, error)
	deactivate func(ctx context.Context, id int64) error

	mu    sync.Mutex
	calls map[string]int
}

func (f *fakeResource[T, C, U]) count(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[op]++
}

func (f *fakeResource[T, C, U]) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeResource[T, C, U]) List(ctx context.Context) ([]T, error) {
	f.count("list")
	return f.list(ctx)
}

func (f *fakeResource[T, C, U]) Get(ctx context.Context, id int64) (T, error) {
	f.count("get")
	return f.get(ctx, id)
}

func (f *fakeResource[T, C, U]) Create(ctx context.Context, req C) (T, error) {
	f.count("create")
	return f.create(ctx, req)
}

func (f *fakeResource[T, C, U]) Update(ctx context.Context, req U) (*T, error) {
	f.count("update")
	return f.update(ctx, req)
}

func (f *fakeResource[T, C, U]) Deactivate(ctx context.Context, id int64) error {
	f.count("deactivate")
	return f.deactivate(ctx, id)
}

type clientResource = fakeResource[ds.Client, ds.CreateClientRequest, ds.UpdateClientRequest]
type subscriptionResource = fakeResource[ds.Subscription, ds.CreateSubscriptionRequest, ds.UpdateSubscriptionRequest]

func seededClients() []ds.Client {
	return []ds.Client{
		{ClientCompID: 3, ClientCompCode: "C003", ClientCompName: "Zeta", IsActive: true},
		{ClientCompID: 1, ClientCompCode: "C001", ClientCompName: "Acme", IsActive: true},
	}
}

func newClients(t *testing.T, res *clientResource) (*ClientContainer, *notify.Feed) {
	t.Helper()
	if res.list == nil {
		res.list = func(context.Context) ([]ds.Client, error) { return seededClients(), nil }
	}
	feed := notify.NewFeed(10)
	return NewContainer(ClientEntity, res, feed, nil,
		WithKey(func(c ds.Client) string { return c.ClientCompCode })), feed
}

func TestLoadReplacesItemsInBackendOrder(t *testing.T) {
	c, feed := newClients(t, &clientResource{})
	assert.True(t, c.Loading(), "loading until the first load settles")

	require.True(t, c.Load(context.Background()))
	assert.False(t, c.Loading())
	assert.Equal(t, seededClients(), c.Items())
	assert.Empty(t, feed.Drain(), "a successful load is silent")

	got, ok := c.LookupKey("C001")
	require.True(t, ok)
	assert.Equal(t, "Acme", got.ClientCompName)
}

func TestLoadFailureKeepsItemsAndNotifiesOnce(t *testing.T) {
	fail := false
	res := &clientResource{list: func(context.Context) ([]ds.Client, error) {
		if fail {
			return nil, errBackendDown
		}
		return seededClients(), nil
	}}
	c, feed := newClients(t, res)
	require.True(t, c.Load(context.Background()))

	fail = true
	assert.False(t, c.Load(context.Background()))
	assert.Equal(t, seededClients(), c.Items())
	assert.False(t, c.Loading())

	got := feed.Drain()
	require.Len(t, got, 1)
	assert.Equal(t, notify.Failure, got[0].Level)
	assert.Equal(t, "Failed to load clients. Please try again.", got[0].Message)
}

func TestFirstLoadFailureStillSettles(t *testing.T) {
	c, _ := newClients(t, &clientResource{list: func(context.Context) ([]ds.Client, error) {
		return nil, errBackendDown
	}})
	assert.False(t, c.Load(context.Background()))
	assert.False(t, c.Loading())
	assert.Empty(t, c.Items())
}

func TestCreateAppendsServerRecord(t *testing.T) {
	res := &clientResource{create: func(_ context.Context, req ds.CreateClientRequest) (ds.Client, error) {
		return ds.Client{ClientCompID: 7, ClientCompCode: "C007", ClientCompName: req.ClientCompName, IsActive: true}, nil
	}}
	c, feed := newClients(t, res)
	require.True(t, c.Load(context.Background()))

	created, ok := c.Create(context.Background(), ds.CreateClientRequest{ClientCompName: "Acme", IsActive: true})
	require.True(t, ok)
	assert.Equal(t, "C007", created.ClientCompCode)

	items := c.Items()
	require.Len(t, items, 3)
	assert.Equal(t, created, items[2])
	_, found := c.LookupKey("C007")
	assert.True(t, found)

	got := feed.Drain()
	require.Len(t, got, 1)
	assert.Equal(t, notify.Success, got[0].Level)
	assert.Equal(t, "Client created successfully", got[0].Message)
	assert.Equal(t, 1, res.Calls("create"))
}

func TestCreateFailureLeavesItemsAndNotifiesOnce(t *testing.T) {
	res := &clientResource{create: func(context.Context, ds.CreateClientRequest) (ds.Client, error) {
		return ds.Client{}, &backend.Error{Op: "create", Status: 500, Err: backend.ErrStatus}
	}}
	c, feed := newClients(t, res)
	require.True(t, c.Load(context.Background()))

	_, ok := c.Create(context.Background(), ds.CreateClientRequest{ClientCompName: "Acme"})
	assert.False(t, ok)
	assert.Equal(t, seededClients(), c.Items())
	assert.False(t, c.Creating())

	got := feed.Drain()
	require.Len(t, got, 1)
	assert.Equal(t, notify.Failure, got[0].Level)
	assert.Equal(t, "Failed to create client. Please try again.", got[0].Message)
}

func TestDeleteRemovesRecord(t *testing.T) {
	var deleted int64
	res := &clientResource{deactivate: func(_ context.Context, id int64) error {
		deleted = id
		return nil
	}}
	c, feed := newClients(t, res)
	require.True(t, c.Load(context.Background()))

	require.True(t, c.Delete(context.Background(), 3))
	assert.Equal(t, int64(3), deleted)
	assert.Equal(t, []ds.Client{seededClients()[1]}, c.Items())
	_, ok := c.Lookup(3)
	assert.False(t, ok)
	_, ok = c.LookupKey("C003")
	assert.False(t, ok)

	got := feed.Drain()
	require.Len(t, got, 1)
	assert.Equal(t, "Client deleted successfully", got[0].Message)
}

func TestDeleteFailureKeepsRecord(t *testing.T) {
	res := &clientResource{deactivate: func(context.Context, int64) error { return errBackendDown }}
	c, feed := newClients(t, res)
	require.True(t, c.Load(context.Background()))

	assert.False(t, c.Delete(context.Background(), 3))
	assert.Len(t, c.Items(), 2)
	got := feed.Drain()
	require.Len(t, got, 1)
	assert.Equal(t, "Failed to delete client. Please try again.", got[0].Message)
}

func newPlans(t *testing.T, res *subscriptionResource) (*SubscriptionContainer, *notify.Feed) {
	t.Helper()
	res.list = func(context.Context) ([]ds.Subscription, error) {
		return []ds.Subscription{
			{SubscriptionID: 1, SubscriptionName: "Basic", SubscriptionPrice: 100, DurationDays: 30, IsActive: true},
			{SubscriptionID: 2, SubscriptionName: "Pro", SubscriptionPrice: 250, DurationDays: 365, IsActive: true},
		}, nil
	}
	feed := notify.NewFeed(10)
	c := NewContainer(SubscriptionEntity, res, feed, nil)
	require.True(t, c.Load(context.Background()))
	return c, feed
}

func TestUpdateAppliesEchoedRecord(t *testing.T) {
	res := &subscriptionResource{update: func(_ context.Context, req ds.UpdateSubscriptionRequest) (*ds.Subscription, error) {
		return &ds.Subscription{SubscriptionID: req.SubscriptionID, SubscriptionName: "Basic", SubscriptionPrice: 150, DurationDays: 30, IsActive: true}, nil
	}}
	c, feed := newPlans(t, res)

	require.True(t, c.Update(context.Background(), ds.UpdateSubscriptionRequest{SubscriptionID: 1, SubscriptionName: "Basic", SubscriptionPrice: 150, DurationDays: 30, IsActive: true}))

	got, ok := c.Lookup(1)
	require.True(t, ok)
	assert.Equal(t, 150.0, got.SubscriptionPrice)
	assert.Equal(t, int64(1), c.Items()[0].SubscriptionID, "position is kept")
	assert.Equal(t, 0, res.Calls("get"))
	assert.Equal(t, "Subscription updated successfully", feed.Drain()[0].Message)
}

func TestUpdateRefetchesWhenNothingEchoed(t *testing.T) {
	res := &subscriptionResource{
		update: func(context.Context, ds.UpdateSubscriptionRequest) (*ds.Subscription, error) { return nil, nil },
		get: func(_ context.Context, id int64) (ds.Subscription, error) {
			return ds.Subscription{SubscriptionID: id, SubscriptionName: "Basic", SubscriptionPrice: 150, DurationDays: 30, IsActive: true}, nil
		},
	}
	c, _ := newPlans(t, res)

	require.True(t, c.Update(context.Background(), ds.UpdateSubscriptionRequest{SubscriptionID: 1, SubscriptionPrice: 150}))
	got, _ := c.Lookup(1)
	assert.Equal(t, 150.0, got.SubscriptionPrice)
	assert.Equal(t, 1, res.Calls("get"))
}

func TestUpdateRefetchesWhenEchoIsAnotherRecord(t *testing.T) {
	res := &subscriptionResource{
		update: func(context.Context, ds.UpdateSubscriptionRequest) (*ds.Subscription, error) {
			// {"affected_rows":1} decodes into a zero record
			return &ds.Subscription{}, nil
		},
		get: func(_ context.Context, id int64) (ds.Subscription, error) {
			return ds.Subscription{SubscriptionID: id, SubscriptionName: "Basic", SubscriptionPrice: 150, DurationDays: 30, IsActive: true}, nil
		},
	}
	c, feed := newPlans(t, res)

	require.True(t, c.Update(context.Background(), ds.UpdateSubscriptionRequest{SubscriptionID: 1, SubscriptionPrice: 150}))
	got, _ := c.Lookup(1)
	assert.Equal(t, 150.0, got.SubscriptionPrice)
	assert.Equal(t, 1, res.Calls("get"))
	assert.Equal(t, "Subscription updated successfully", feed.Drain()[0].Message)
}

func TestUpdateNeverMergesRequest(t *testing.T) {
	res := &subscriptionResource{
		update: func(context.Context, ds.UpdateSubscriptionRequest) (*ds.Subscription, error) { return nil, nil },
		get: func(context.Context, int64) (ds.Subscription, error) {
			return ds.Subscription{}, &backend.Error{Op: "get", Err: backend.ErrTransport}
		},
	}
	c, feed := newPlans(t, res)

	require.True(t, c.Update(context.Background(), ds.UpdateSubscriptionRequest{SubscriptionID: 1, SubscriptionPrice: 999}))
	got, _ := c.Lookup(1)
	assert.Equal(t, 100.0, got.SubscriptionPrice, "refetch failed, the old record stays")
	assert.Len(t, feed.Drain(), 1)
}

func TestUpdateRemovesRecordNoLongerActive(t *testing.T) {
	res := &subscriptionResource{
		update: func(context.Context, ds.UpdateSubscriptionRequest) (*ds.Subscription, error) { return nil, nil },
		get: func(context.Context, int64) (ds.Subscription, error) {
			return ds.Subscription{}, &backend.Error{Op: "get", Err: backend.ErrNotFound}
		},
	}
	c, _ := newPlans(t, res)

	require.True(t, c.Update(context.Background(), ds.UpdateSubscriptionRequest{SubscriptionID: 2, IsActive: false}))
	_, ok := c.Lookup(2)
	assert.False(t, ok)
	assert.Len(t, c.Items(), 1)
}

func TestUpdateFailureKeepsRecord(t *testing.T) {
	res := &subscriptionResource{update: func(context.Context, ds.UpdateSubscriptionRequest) (*ds.Subscription, error) {
		return nil, &backend.Error{Op: "update", Err: backend.ErrRejected, Msg: "invalid price"}
	}}
	c, feed := newPlans(t, res)

	assert.False(t, c.Update(context.Background(), ds.UpdateSubscriptionRequest{SubscriptionID: 1, SubscriptionPrice: -1}))
	got, _ := c.Lookup(1)
	assert.Equal(t, 100.0, got.SubscriptionPrice)

	n := feed.Drain()
	require.Len(t, n, 1)
	assert.Equal(t, "Failed to update subscription. Please try again.", n[0].Message)
}

func TestLateUpdateDoesNotResurrectDeletedRecord(t *testing.T) {
	res := &subscriptionResource{
		update: func(_ context.Context, req ds.UpdateSubscriptionRequest) (*ds.Subscription, error) {
			return &ds.Subscription{SubscriptionID: req.SubscriptionID, IsActive: true}, nil
		},
		deactivate: func(context.Context, int64) error { return nil },
	}
	c, _ := newPlans(t, res)

	require.True(t, c.Delete(context.Background(), 1))
	require.True(t, c.Update(context.Background(), ds.UpdateSubscriptionRequest{SubscriptionID: 1}))
	_, ok := c.Lookup(1)
	assert.False(t, ok)
}

func TestStaleLoadIsDiscarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var calls int
	var mu sync.Mutex
	res := &clientResource{list: func(context.Context) ([]ds.Client, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			close(started)
			<-release
			return []ds.Client{{ClientCompID: 1, ClientCompCode: "OLD"}}, nil
		}
		return []ds.Client{{ClientCompID: 2, ClientCompCode: "NEW"}}, nil
	}}
	c, _ := newClients(t, res)

	first := make(chan bool)
	go func() { first <- c.Load(context.Background()) }()
	<-started

	require.True(t, c.Load(context.Background()))
	close(release)
	assert.False(t, <-first)

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "NEW", items[0].ClientCompCode)
}

func TestLoadRacingCreateKeepsCreatedRecord(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	res := &clientResource{
		list: func(context.Context) ([]ds.Client, error) {
			close(started)
			<-release
			return seededClients(), nil
		},
		create: func(context.Context, ds.CreateClientRequest) (ds.Client, error) {
			return ds.Client{ClientCompID: 9, ClientCompCode: "C009"}, nil
		},
	}
	c, _ := newClients(t, res)

	loaded := make(chan bool)
	go func() { loaded <- c.Load(context.Background()) }()
	<-started

	_, ok := c.Create(context.Background(), ds.CreateClientRequest{ClientCompName: "New"})
	require.True(t, ok)
	close(release)
	assert.False(t, <-loaded, "the snapshot predates the create")

	_, found := c.Lookup(9)
	assert.True(t, found)
}

func TestCancelledCallerDoesNotTouchItems(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	res := &clientResource{create: func(context.Context, ds.CreateClientRequest) (ds.Client, error) {
		cancel()
		return ds.Client{ClientCompID: 7}, nil
	}}
	c, feed := newClients(t, res)
	require.True(t, c.Load(context.Background()))

	_, ok := c.Create(ctx, ds.CreateClientRequest{ClientCompName: "Gone"})
	assert.False(t, ok)
	assert.Equal(t, seededClients(), c.Items())
	assert.Empty(t, feed.Drain())
	assert.False(t, c.Creating())
}

func TestFlagsReflectInFlightActions(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	res := &clientResource{deactivate: func(context.Context, int64) error {
		entered <- struct{}{}
		<-release
		return nil
	}}
	c, _ := newClients(t, res)
	require.True(t, c.Load(context.Background()))

	done := make(chan struct{})
	for _, id := range []int64{1, 3} {
		go func() {
			c.Delete(context.Background(), id)
			done <- struct{}{}
		}()
		<-entered
	}
	assert.True(t, c.Deleting())
	assert.True(t, c.Snapshot().Deleting)

	release <- struct{}{}
	<-done
	assert.True(t, c.Deleting(), "one delete still in flight")

	release <- struct{}{}
	<-done
	assert.Eventually(t, func() bool { return !c.Deleting() }, time.Second, 5*time.Millisecond)
	assert.Empty(t, c.Items())
}

func TestFilterKeepsOrder(t *testing.T) {
	c, _ := newClients(t, &clientResource{})
	require.True(t, c.Load(context.Background()))

	got := c.Filter(func(cl ds.Client) bool { return cl.ClientCompID > 0 })
	assert.Equal(t, seededClients(), got)
}
