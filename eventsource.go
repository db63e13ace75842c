package statetree

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"log/slog"

	"github.com/danielorbach/go-component"
	"gocloud.dev/pubsub"
)

// EventSource wraps a pubsub subscription and decodes incoming messages into
// values of type T, which it forwards into a Queue. Wrap that Queue with
// NewStreamCell to expose the messages to a tree of components.
type EventSource[T any] struct {
	name         string
	subscription *pubsub.Subscription
	decoder      func(p []byte, v *T) error
}

// NewEventSource returns an EventSource decoding gob-encoded messages received
// from sub. The name labels the source's telemetry (e.g. "settings").
func NewEventSource[T any](name string, sub *pubsub.Subscription) EventSource[T] {
	return EventSource[T]{
		name:         name,
		subscription: sub,
		decoder: func(p []byte, v *T) error {
			return gob.NewDecoder(bytes.NewReader(p)).Decode(v)
		},
	}
}

// WithDecoder returns a copy of s that decodes messages using fn.
func (s EventSource[T]) WithDecoder(fn func(p []byte, v *T) error) EventSource[T] {
	s.decoder = fn
	return s
}

// errShutdown is returned by receive once the context is done.
var errShutdown = errors.New("shutting down")

// Forward receives messages until ctx is done, pushing each decoded value into
// q. It returns nil when ctx is done and a non-nil error if the subscription
// fails or a message cannot be decoded.
func (s EventSource[T]) Forward(ctx context.Context, q *Queue[T]) error {
	for {
		if err := s.receive(ctx, q); err != nil {
			if errors.Is(err, errShutdown) {
				return nil
			}
			return err
		}
	}
}

// Pump returns a component.Proc that forwards messages into q for as long as the
// procedure runs. A decoding or subscription failure is fatal to the procedure.
func (s EventSource[T]) Pump(q *Queue[T]) component.Proc {
	return func(l *component.L) {
		logger := component.Logger(l.Context()).With(slog.String(sourceName, s.name))
		for l.Continue() {
			err := s.receive(l.GraceContext(), q)
			if errors.Is(err, errShutdown) {
				// we're shutting down
				return
			}
			if err != nil {
				logger.Error("Event source stopped", slog.Any("error", err))
				l.Fatal(err)
				return
			}
		}
	}
}

func (s EventSource[T]) receive(ctx context.Context, q *Queue[T]) error {
	msg, err := s.subscription.Receive(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return errShutdown
		}
		return fmt.Errorf("receive: %w", err)
	}
	// always ack, even if we fail to decode.
	// otherwise, we might get stuck processing
	// the same failed message
	msg.Ack()

	var v T
	if err := s.decoder(msg.Body, &v); err != nil {
		measureEvent(ctx, s.name, false)
		return fmt.Errorf("decode: %w", err)
	}
	measureEvent(ctx, s.name, true)
	q.Push(v)
	return nil
}
