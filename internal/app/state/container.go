package state

import (
	"context"
	"errors"
	"sync"

	"clientadmin/internal/app/backend"
	"clientadmin/internal/app/notify"

	"github.com/sirupsen/logrus"
)

// Record is an entity with a backend-assigned identifier.
type Record interface {
	ID() int64
}

// Resource is the backend endpoint a container synchronises with.
type Resource[T Record, C any, U Record] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id int64) (T, error)
	Create(ctx context.Context, req C) (T, error)
	Update(ctx context.Context, req U) (*T, error)
	Deactivate(ctx context.Context, id int64) error
}

// Observer receives container metrics.
type Observer interface {
	ObserveAction(entity, action string, ok bool)
	SetItems(entity string, n int)
}

// Entity names one collection in messages and metrics.
type Entity struct {
	Singular string // client
	Plural   string // clients
	Title    string // Client
}

// Failed is the message of a failed action, e.g. "Failed to create client. Please try again.".
func (e Entity) Failed(verb string) string {
	noun := e.Singular
	if verb == "load" {
		noun = e.Plural
	}
	return "Failed to " + verb + " " + noun + ". Please try again."
}

// Succeeded is the message of a successful action, e.g. "Client created successfully".
func (e Entity) Succeeded(pastVerb string) string {
	return e.Title + " " + pastVerb + " successfully"
}

type actionKind int

const (
	actionLoad actionKind = iota
	actionCreate
	actionUpdate
	actionDelete
	actionPlan
	actionKinds
)

func (k actionKind) String() string {
	return [...]string{"load", "create", "update", "delete", "update_plan"}[k]
}

// Snapshot is a consistent read of a container.
type Snapshot[T any] struct {
	Items    []T  `json:"items"`
	Loading  bool `json:"loading"`
	Creating bool `json:"creating"`
	Updating bool `json:"updating"`
	Deleting bool `json:"deleting"`
}

// Container is the single owner of one entity collection and the only caller of
// its backend endpoint. Operations never return errors: failures are reported
// through one notification and a false result, and leave items untouched.
type Container[T Record, C any, U Record] struct {
	entity   Entity
	api      Resource[T, C, U]
	notifier notify.Notifier
	observer Observer
	keyOf    func(T) string

	mu       sync.RWMutex
	items    []T
	byID     map[int64]int
	byKey    map[string]int
	inflight [actionKinds]int
	outbox   []notify.Notification
	// settled flips once the first load finishes, successfully or not
	settled bool
	// generation increases on every load start and every applied mutation;
	// a load response is applied only if no newer load or mutation happened meanwhile
	generation uint64
}

type Option[T Record] func(*containerOptions[T])

type containerOptions[T Record] struct {
	keyOf func(T) string
}

// WithKey maintains a secondary index, looked up with LookupKey.
func WithKey[T Record](keyOf func(T) string) Option[T] {
	return func(o *containerOptions[T]) { o.keyOf = keyOf }
}

func NewContainer[T Record, C any, U Record](entity Entity, api Resource[T, C, U], notifier notify.Notifier, observer Observer, opts ...Option[T]) *Container[T, C, U] {
	var o containerOptions[T]
	for _, opt := range opts {
		opt(&o)
	}
	c := &Container[T, C, U]{
		entity:   entity,
		api:      api,
		notifier: notifier,
		observer: observer,
		keyOf:    o.keyOf,
		items:    []T{},
	}
	c.reindex()
	return c
}

func (c *Container[T, C, U]) Entity() Entity {
	return c.entity
}

// Items returns a copy of the collection in backend order.
func (c *Container[T, C, U]) Items() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]T(nil), c.items...)
}

func (c *Container[T, C, U]) Snapshot() Snapshot[T] {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot[T]{
		Items:    append([]T{}, c.items...),
		Loading:  !c.settled || c.inflight[actionLoad] > 0,
		Creating: c.inflight[actionCreate] > 0,
		Updating: c.inflight[actionUpdate] > 0,
		Deleting: c.inflight[actionDelete] > 0,
	}
}

// Loading is true from construction until the first load settles, and while any load runs.
func (c *Container[T, C, U]) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.settled || c.inflight[actionLoad] > 0
}

func (c *Container[T, C, U]) Creating() bool { return c.busy(actionCreate) }
func (c *Container[T, C, U]) Updating() bool { return c.busy(actionUpdate) }
func (c *Container[T, C, U]) Deleting() bool { return c.busy(actionDelete) }

func (c *Container[T, C, U]) busy(kind actionKind) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.inflight[kind] > 0
}

// Lookup finds a record by identifier.
func (c *Container[T, C, U]) Lookup(id int64) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i, ok := c.byID[id]; ok {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// LookupKey finds a record by the secondary key configured with WithKey.
func (c *Container[T, C, U]) LookupKey(key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i, ok := c.byKey[key]; ok {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// Filter returns the records matching keep, in collection order.
func (c *Container[T, C, U]) Filter(keep func(T) bool) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, 0, len(c.items))
	for _, item := range c.items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

// Load replaces the collection with the backend's active records.
// It returns true only when the response was applied.
func (c *Container[T, C, U]) Load(ctx context.Context) bool {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.inflight[actionLoad]++
	c.mu.Unlock()

	items, err := c.api.List(ctx)

	c.mu.Lock()
	defer c.unlockAndFlush(ctx)
	c.inflight[actionLoad]--
	c.settled = true

	if c.abandonedLocked(ctx, actionLoad) {
		return false
	}
	if err != nil {
		c.failLocked(actionLoad, err, c.entity.Failed("load"))
		return false
	}
	if gen != c.generation {
		logrus.Debugf("%s load discarded: superseded", c.entity.Plural)
		return false
	}

	c.items = append([]T{}, items...)
	c.changedLocked()
	c.observe(actionLoad, true)
	return true
}

// Create posts req and appends the record returned by the backend.
func (c *Container[T, C, U]) Create(ctx context.Context, req C) (T, bool) {
	c.start(actionCreate)
	created, err := c.api.Create(ctx, req)

	c.mu.Lock()
	defer c.unlockAndFlush(ctx)
	c.inflight[actionCreate]--

	if c.abandonedLocked(ctx, actionCreate) {
		var zero T
		return zero, false
	}
	if err != nil {
		c.failLocked(actionCreate, err, c.entity.Failed("create"))
		var zero T
		return zero, false
	}

	// a load that raced this create may already hold the record
	if i, ok := c.byID[created.ID()]; ok {
		c.items[i] = created
	} else {
		c.items = append(c.items, created)
	}
	c.changedLocked()
	c.succeedLocked(actionCreate, c.entity.Succeeded("created"))
	return created, true
}

// Update puts req, then applies the backend's view of the record: the echoed
// record when the response carries one, otherwise a fresh single-record fetch.
// The outgoing request is never merged into local state.
func (c *Container[T, C, U]) Update(ctx context.Context, req U) bool {
	c.start(actionUpdate)
	id := req.ID()

	echoed, err := c.api.Update(ctx, req)
	if echoed != nil && (*echoed).ID() != id {
		// a status row rather than the record
		logrus.Debugf("%s %d update echoed id %d, refetching", c.entity.Singular, id, (*echoed).ID())
		echoed = nil
	}
	var (
		fresh     T
		refetched bool
		gone      bool
	)
	if err == nil && echoed == nil {
		fresh, refetched, gone = c.refetch(ctx, id)
	}

	c.mu.Lock()
	defer c.unlockAndFlush(ctx)
	c.inflight[actionUpdate]--

	if c.abandonedLocked(ctx, actionUpdate) {
		return false
	}
	if err != nil {
		c.failLocked(actionUpdate, err, c.entity.Failed("update"))
		return false
	}

	switch {
	case echoed != nil:
		c.replaceLocked(*echoed)
	case refetched:
		c.replaceLocked(fresh)
	case gone:
		c.removeLocked(id)
	}
	c.changedLocked()
	c.succeedLocked(actionUpdate, c.entity.Succeeded("updated"))
	return true
}

// refetch reads one record after an update that echoed nothing. gone reports that
// the record is no longer among the active records.
func (c *Container[T, C, U]) refetch(ctx context.Context, id int64) (record T, ok bool, gone bool) {
	record, err := c.api.Get(ctx, id)
	if err == nil {
		return record, true, false
	}
	if isNotFound(err) {
		return record, false, true
	}
	// the update itself was accepted; keep the old record until the next load
	logrus.Warnf("%s %d updated but refetch failed: %v", c.entity.Singular, id, err)
	return record, false, false
}

// Delete soft-deletes the record and drops it from the collection.
func (c *Container[T, C, U]) Delete(ctx context.Context, id int64) bool {
	c.start(actionDelete)
	err := c.api.Deactivate(ctx, id)

	c.mu.Lock()
	defer c.unlockAndFlush(ctx)
	c.inflight[actionDelete]--

	if c.abandonedLocked(ctx, actionDelete) {
		return false
	}
	if err != nil {
		c.failLocked(actionDelete, err, c.entity.Failed("delete"))
		return false
	}

	c.removeLocked(id)
	c.changedLocked()
	c.succeedLocked(actionDelete, c.entity.Succeeded("deleted"))
	return true
}

// abandonedLocked reports a caller that went away before the response arrived.
// Its result is dropped without touching items or notifying.
func (c *Container[T, C, U]) abandonedLocked(ctx context.Context, kind actionKind) bool {
	if ctx.Err() == nil {
		return false
	}
	logrus.Warnf("%s %s abandoned: %v", c.entity.Singular, kind, ctx.Err())
	return true
}

func isNotFound(err error) bool {
	return errors.Is(err, backend.ErrNotFound)
}

func (c *Container[T, C, U]) start(kind actionKind) {
	c.mu.Lock()
	c.inflight[kind]++
	c.mu.Unlock()
}

// replaceLocked swaps in a fresher copy of a known record. Unknown records are
// ignored so a late update cannot resurrect a deleted one.
func (c *Container[T, C, U]) replaceLocked(record T) {
	i, ok := c.byID[record.ID()]
	if !ok {
		return
	}
	if active, ok := any(record).(interface{ Active() bool }); ok && !active.Active() {
		c.removeLocked(record.ID())
		return
	}
	c.items[i] = record
}

func (c *Container[T, C, U]) removeLocked(id int64) {
	kept := c.items[:0]
	for _, item := range c.items {
		if item.ID() != id {
			kept = append(kept, item)
		}
	}
	c.items = kept
	c.reindex()
}

// changedLocked rebuilds the indexes and invalidates loads still in flight.
func (c *Container[T, C, U]) changedLocked() {
	c.generation++
	c.reindex()
	if c.observer != nil {
		c.observer.SetItems(c.entity.Singular, len(c.items))
	}
}

func (c *Container[T, C, U]) reindex() {
	c.byID = make(map[int64]int, len(c.items))
	for i, item := range c.items {
		c.byID[item.ID()] = i
	}
	if c.keyOf == nil {
		return
	}
	c.byKey = make(map[string]int, len(c.items))
	for i, item := range c.items {
		c.byKey[c.keyOf(item)] = i
	}
}

func (c *Container[T, C, U]) succeedLocked(kind actionKind, message string) {
	c.observe(kind, true)
	c.notify(notify.Success, kind, message)
}

func (c *Container[T, C, U]) failLocked(kind actionKind, err error, message string) {
	logrus.Errorf("%s %s failed: %v", c.entity.Singular, kind, err)
	c.observe(kind, false)
	c.notify(notify.Failure, kind, message)
}

func (c *Container[T, C, U]) observe(kind actionKind, ok bool) {
	if c.observer != nil {
		c.observer.ObserveAction(c.entity.Singular, kind.String(), ok)
	}
}

// notify queues a notification; it is delivered once the lock is released.
func (c *Container[T, C, U]) notify(level notify.Level, kind actionKind, message string) {
	c.outbox = append(c.outbox, notify.New(level, c.entity.Singular, kind.String(), message))
}

func (c *Container[T, C, U]) unlockAndFlush(ctx context.Context) {
	out := c.outbox
	c.outbox = nil
	c.mu.Unlock()

	if c.notifier == nil {
		return
	}
	for _, n := range out {
		c.notifier.Notify(ctx, n)
	}
}
