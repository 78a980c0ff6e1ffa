package notify

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"testadmin/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return mr, client
}

type recordingSink struct {
	mu    sync.Mutex
	kinds []models.EventKind
	block chan struct{}
	err   error
}

func (s *recordingSink) Publish(_ context.Context, kind models.EventKind, _ any) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kinds = append(s.kinds, kind)
	return s.err
}

func (s *recordingSink) seen() []models.EventKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.EventKind(nil), s.kinds...)
}

func TestRedisSinkPublishesJSON(t *testing.T) {
	_, rdb := setupTestRedis(t)
	ctx := context.Background()
	sink := NewRedisSink(rdb, "notifications.")

	sub := rdb.Subscribe(ctx, "notifications.test.assigned")
	t.Cleanup(func() { sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	event := &models.TestAssignedEvent{
		EventType:  models.EventTestAssigned,
		TestID:     "t1",
		TestName:   "Quiz1",
		TestLink:   "http://localhost:3000/test/t1",
		Candidates: []models.CandidateInfo{{ID: "c1", Name: "Ann", Email: "ann@example.com"}},
	}
	require.NoError(t, sink.Publish(ctx, models.EventTestAssigned, event))

	select {
	case msg := <-sub.Channel():
		var got models.TestAssignedEvent
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		assert.Equal(t, "t1", got.TestID)
		assert.Len(t, got.Candidates, 1)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for published message")
	}
}

func TestRedisSinkFailsWhenBrokerDown(t *testing.T) {
	mr, rdb := setupTestRedis(t)
	mr.Close()

	err := NewRedisSink(rdb, "").Publish(context.Background(), models.EventTestStarted, &models.TestLifecycleEvent{TestID: "t1"})
	assert.Error(t, err)
}

func TestDispatcherDeliversInBackground(t *testing.T) {
	sink := &recordingSink{}
	d := NewDispatcher(sink, zap.NewNop(), DispatcherConfig{Workers: 1, QueueSize: 8})

	d.Notify(models.EventTestScheduled, nil)
	d.Notify(models.EventTestStarted, nil)
	d.Close()

	assert.Equal(t, []models.EventKind{models.EventTestScheduled, models.EventTestStarted}, sink.seen())
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	sink := &recordingSink{block: make(chan struct{})}
	d := NewDispatcher(sink, zap.NewNop(), DispatcherConfig{Workers: 1, QueueSize: 1})

	done := make(chan struct{})
	go func() {
		// first occupies the worker, second the queue slot, the rest are dropped
		for i := 0; i < 5; i++ {
			d.Notify(models.EventTestEnded, nil)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Notify blocked on a full queue")
	}

	close(sink.block)
	d.Close()
	assert.LessOrEqual(t, len(sink.seen()), 2)
	assert.GreaterOrEqual(t, len(sink.seen()), 1)
}

func TestDispatcherSwallowsSinkErrors(t *testing.T) {
	sink := &recordingSink{err: errors.New("broker down")}
	d := NewDispatcher(sink, zap.NewNop(), DispatcherConfig{})

	d.Notify(models.EventTestAssigned, nil)
	d.Close()
	d.Close()
	d.Notify(models.EventTestAssigned, nil)

	assert.Len(t, sink.seen(), 1)
}
