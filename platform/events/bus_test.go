package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"bosfinder_backend/platform/logger"
)

type pinged struct {
	BaseEvent
	N int
}

func (pinged) EventName() string { return "test.pinged" }

func TestPublishSyncRunsHandlersInOrder(t *testing.T) {
	bus := NewInMemoryBus(logger.Discard())
	var seen []int
	bus.Subscribe("test.pinged", HandlerFunc(func(ctx context.Context, e Event) error {
		seen = append(seen, 1)
		return nil
	}))
	bus.Subscribe("test.pinged", HandlerFunc(func(ctx context.Context, e Event) error {
		seen = append(seen, 2)
		return errors.New("second failed")
	}))

	err := bus.PublishSync(context.Background(), pinged{BaseEvent: NewBaseEvent(), N: 1})
	if err == nil || err.Error() != "second failed" {
		t.Fatalf("PublishSync() error = %v", err)
	}
	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Fatalf("handlers ran as %v", seen)
	}
}

func TestPublishSurvivesCanceledContextAndPanics(t *testing.T) {
	bus := NewInMemoryBus(logger.Discard())
	var calls atomic.Int32
	bus.Subscribe("test.pinged", HandlerFunc(func(ctx context.Context, e Event) error {
		if ctx.Err() != nil {
			t.Errorf("handler context canceled: %v", ctx.Err())
		}
		calls.Add(1)
		return nil
	}))
	bus.Subscribe("test.pinged", HandlerFunc(func(ctx context.Context, e Event) error {
		calls.Add(1)
		panic("boom")
	}))
	bus.Subscribe("test.other", HandlerFunc(func(ctx context.Context, e Event) error {
		t.Error("unrelated handler called")
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bus.Publish(ctx, pinged{BaseEvent: NewBaseEvent()})
	bus.Wait()

	if got := calls.Load(); got != 2 {
		t.Fatalf("calls = %d, want 2", got)
	}
}

func TestNewBaseEventStampsIDAndUTC(t *testing.T) {
	a, b := NewBaseEvent(), NewBaseEvent()
	if a.EventID() == "" || a.EventID() == b.EventID() {
		t.Fatalf("event ids = %q, %q", a.EventID(), b.EventID())
	}
	if a.OccurredAt().Location() != time.UTC {
		t.Fatalf("timestamp location = %v", a.OccurredAt().Location())
	}
}
