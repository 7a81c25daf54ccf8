package bus

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestTryPublishInbound_QueueFull(t *testing.T) {
	mb := New(3)

	// Fill the queue without a consumer.
	for i := 0; i < 3; i++ {
		if err := mb.TryPublishInbound(InboundMessage{MessageID: fmt.Sprintf("%d", i)}); err != nil {
			t.Fatalf("enqueue %d: unexpected error %v", i, err)
		}
	}

	// Every excess submission must fail with ErrQueueFull — no silent loss.
	for i := 0; i < 5; i++ {
		err := mb.TryPublishInbound(InboundMessage{MessageID: "excess"})
		if !errors.Is(err, ErrQueueFull) {
			t.Fatalf("excess submission %d: got %v, want ErrQueueFull", i, err)
		}
	}

	// Draining one slot makes room again.
	<-mb.Inbound()
	if err := mb.TryPublishInbound(InboundMessage{MessageID: "after-drain"}); err != nil {
		t.Fatalf("after drain: unexpected error %v", err)
	}
}

func TestTryPublishInbound_Closed(t *testing.T) {
	mb := New(1)
	mb.Close()

	if err := mb.TryPublishInbound(InboundMessage{}); !errors.Is(err, ErrBusClosed) {
		t.Fatalf("got %v, want ErrBusClosed", err)
	}
}

func TestNew_DefaultCapacity(t *testing.T) {
	mb := New(0)
	for i := 0; i < DefaultInboundCapacity; i++ {
		if err := mb.TryPublishInbound(InboundMessage{}); err != nil {
			t.Fatalf("enqueue %d within default capacity: %v", i, err)
		}
	}
	if err := mb.TryPublishInbound(InboundMessage{}); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("got %v, want ErrQueueFull beyond default capacity", err)
	}
}

func TestOutboundRoundTrip(t *testing.T) {
	mb := New(2)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	want := OutboundMessage{Channel: "telegram", ChatID: "42", ReplyToID: "7", Content: "done"}
	if err := mb.PublishOutbound(ctx, want); err != nil {
		t.Fatalf("publish: %v", err)
	}

	got, ok := mb.SubscribeOutbound(ctx)
	if !ok {
		t.Fatal("subscribe returned not-ok")
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestSubscribeOutbound_CancelledContext(t *testing.T) {
	mb := New(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, ok := mb.SubscribeOutbound(ctx); ok {
		t.Fatal("expected not-ok on cancelled context")
	}
}
