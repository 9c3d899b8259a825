package notify

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSink struct {
	mock.Mock
}

func (m *mockSink) Record(ctx context.Context, n Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func TestFeedDrainOrderAndClear(t *testing.T) {
	feed := NewFeed(10)
	feed.Notify(context.Background(), New(Success, "client", "create", "Client created successfully"))
	feed.Notify(context.Background(), New(Failure, "client", "delete", "Failed to delete client. Please try again."))

	assert.Equal(t, 2, feed.Pending())
	got := feed.Drain()
	require.Len(t, got, 2)
	assert.Equal(t, "create", got[0].Action)
	assert.Equal(t, Failure, got[1].Level)
	assert.NotEmpty(t, got[0].ID)
	assert.False(t, got[0].At.IsZero())

	assert.Empty(t, feed.Drain())
	assert.Equal(t, 0, feed.Pending())
}

func TestFeedDropsOldestOnOverflow(t *testing.T) {
	feed := NewFeed(3)
	for i := 0; i < 5; i++ {
		feed.Notify(context.Background(), New(Success, "product", "update", fmt.Sprintf("m%d", i)))
	}

	got := feed.Drain()
	require.Len(t, got, 3)
	assert.Equal(t, "m2", got[0].Message)
	assert.Equal(t, "m4", got[2].Message)
}

func TestFeedForwardsToSinksAndSurvivesSinkErrors(t *testing.T) {
	sink := &mockSink{}
	sink.On("Record", mock.Anything, mock.MatchedBy(func(n Notification) bool {
		return n.Entity == "license"
	})).Return(errors.New("db down")).Once()

	feed := NewFeed(0, sink)
	feed.Notify(context.Background(), New(Failure, "license", "load", "Failed to load licenses. Please try again."))

	sink.AssertExpectations(t)
	assert.Equal(t, 1, feed.Pending())
}
