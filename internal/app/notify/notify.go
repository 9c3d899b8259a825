package notify

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Level string

const (
	Success Level = "success"
	Failure Level = "error"
)

// Notification is one user-facing toast.
type Notification struct {
	ID      string    `json:"id"`
	Level   Level     `json:"level"`
	Entity  string    `json:"entity"`
	Action  string    `json:"action"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Notifier receives user-facing notifications.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Sink persists notifications. Failures are logged and otherwise ignored.
type Sink interface {
	Record(ctx context.Context, n Notification) error
}

// New fills in the id and timestamp of a notification.
func New(level Level, entity, action, message string) Notification {
	return Notification{
		ID:      uuid.NewString(),
		Level:   level,
		Entity:  entity,
		Action:  action,
		Message: message,
		At:      time.Now().UTC(),
	}
}

// Feed keeps undelivered toasts in a bounded queue until the UI drains them.
type Feed struct {
	mu       sync.Mutex
	pending  []Notification
	capacity int
	sinks    []Sink
}

func NewFeed(capacity int, sinks ...Sink) *Feed {
	if capacity <= 0 {
		capacity = 100
	}
	return &Feed{capacity: capacity, sinks: sinks}
}

func (f *Feed) Notify(ctx context.Context, n Notification) {
	entry := logrus.WithFields(logrus.Fields{
		"entity": n.Entity,
		"action": n.Action,
		"id":     n.ID,
	})
	if n.Level == Failure {
		entry.Warn(n.Message)
	} else {
		entry.Info(n.Message)
	}

	f.mu.Lock()
	f.pending = append(f.pending, n)
	if over := len(f.pending) - f.capacity; over > 0 {
		f.pending = append([]Notification(nil), f.pending[over:]...)
	}
	f.mu.Unlock()

	for _, sink := range f.sinks {
		if err := sink.Record(context.WithoutCancel(ctx), n); err != nil {
			logrus.Errorf("notification sink failed for %s: %v", n.ID, err)
		}
	}
}

// Drain returns pending notifications oldest first and clears the queue.
func (f *Feed) Drain() []Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := f.pending
	f.pending = nil
	if out == nil {
		return []Notification{}
	}
	return out
}

// Pending reports how many notifications wait to be drained.
func (f *Feed) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}
