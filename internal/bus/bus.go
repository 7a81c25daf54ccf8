package bus

import (
	"context"
	"errors"
	"sync/atomic"
)

// ErrBusClosed is returned when publishing to a closed MessageBus.
var ErrBusClosed = errors.New("message bus closed")

// ErrQueueFull is returned by TryPublishInbound when the bounded inbound
// queue is at capacity. Callers are expected to log and drop the message;
// data loss under sustained overload is an accepted policy, not a bug.
var ErrQueueFull = errors.New("inbound queue full")

// DefaultInboundCapacity bounds the inbound queue between message
// arrival and dispatch.
const DefaultInboundCapacity = 20

// MessageBus decouples channels from the consumer pipeline. The inbound
// side is a bounded queue with fail-fast submission; the outbound side
// carries replies back to the originating channel.
type MessageBus struct {
	inbound  chan InboundMessage
	outbound chan OutboundMessage
	done     chan struct{}
	closed   atomic.Bool
}

// New creates a MessageBus. capacity bounds the inbound queue;
// non-positive values fall back to DefaultInboundCapacity.
func New(capacity int) *MessageBus {
	if capacity <= 0 {
		capacity = DefaultInboundCapacity
	}
	return &MessageBus{
		inbound:  make(chan InboundMessage, capacity),
		outbound: make(chan OutboundMessage, capacity),
		done:     make(chan struct{}),
	}
}

// TryPublishInbound enqueues msg without blocking. Returns ErrQueueFull
// when the queue is at capacity and ErrBusClosed after Close.
func (mb *MessageBus) TryPublishInbound(msg InboundMessage) error {
	if mb.closed.Load() {
		return ErrBusClosed
	}
	select {
	case mb.inbound <- msg:
		return nil
	case <-mb.done:
		return ErrBusClosed
	default:
		return ErrQueueFull
	}
}

// Inbound exposes the receive side of the bounded queue so the consumer
// loop can race message arrival against its quiet-period timer.
func (mb *MessageBus) Inbound() <-chan InboundMessage {
	return mb.inbound
}

// PublishOutbound enqueues an outbound reply, blocking until there is
// room, the bus closes, or ctx is cancelled.
func (mb *MessageBus) PublishOutbound(ctx context.Context, msg OutboundMessage) error {
	if mb.closed.Load() {
		return ErrBusClosed
	}
	select {
	case mb.outbound <- msg:
		return nil
	case <-mb.done:
		return ErrBusClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SubscribeOutbound blocks until an outbound message is available.
// The second return is false once the bus is closed or ctx cancelled.
func (mb *MessageBus) SubscribeOutbound(ctx context.Context) (OutboundMessage, bool) {
	select {
	case msg, ok := <-mb.outbound:
		return msg, ok
	case <-mb.done:
		return OutboundMessage{}, false
	case <-ctx.Done():
		return OutboundMessage{}, false
	}
}

// Close shuts the bus down. Pending messages are discarded; in-flight
// batches are intentionally not flushed on shutdown.
func (mb *MessageBus) Close() {
	if mb.closed.CompareAndSwap(false, true) {
		close(mb.done)
	}
}
