package statetree

import (
	"bytes"
	"context"
	"encoding/gob"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"gocloud.dev/pubsub"
	"gocloud.dev/pubsub/mempubsub"
	"golang.org/x/sync/errgroup"
)

type reading struct {
	Sensor string
	Value  int
}

func encodeReading(t *testing.T, r reading) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(r); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newTestSubscription(t *testing.T) (*pubsub.Topic, *pubsub.Subscription) {
	t.Helper()
	topic := mempubsub.NewTopic()
	sub := mempubsub.NewSubscription(topic, time.Minute)
	t.Cleanup(func() {
		ctx := context.Background()
		_ = sub.Shutdown(ctx)
		_ = topic.Shutdown(ctx)
	})
	return topic, sub
}

func TestEventSourceForward(t *testing.T) {
	topic, sub := newTestSubscription(t)

	wakes := make(chan struct{}, 16)
	q := NewQueue[reading](WakerFunc(func() { wakes <- struct{}{} }))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return NewEventSource[reading]("sensors", sub).Forward(ctx, q)
	})

	want := []reading{{"a", 1}, {"b", 2}}
	for _, r := range want {
		if err := topic.Send(ctx, &pubsub.Message{Body: encodeReading(t, r)}); err != nil {
			t.Fatal(err)
		}
	}
	for q.Len() < len(want) {
		select {
		case <-wakes:
		case <-time.After(5 * time.Second):
			t.Fatalf("forwarded %d messages, want %d", q.Len(), len(want))
		}
	}

	cancel()
	if err := g.Wait(); err != nil {
		t.Errorf("Forward() = %v, want nil after cancellation", err)
	}

	var got []reading
	for v, ok := q.Next(nil); ok; v, ok = q.Next(nil) {
		got = append(got, v)
	}
	// Delivery order is up to the subscription.
	slices.SortFunc(got, func(a, b reading) int { return strings.Compare(a.Sensor, b.Sensor) })
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("forwarded values mismatch (-want +got):\n%s", diff)
	}
}

func TestEventSourceDecodeFailure(t *testing.T) {
	topic, sub := newTestSubscription(t)
	ctx := context.Background()
	if err := topic.Send(ctx, &pubsub.Message{Body: []byte("not gob")}); err != nil {
		t.Fatal(err)
	}

	q := NewQueue[reading](nil)
	err := NewEventSource[reading]("sensors", sub).Forward(ctx, q)
	if err == nil || !strings.Contains(err.Error(), "decode") {
		t.Errorf("Forward() = %v, want a decode error", err)
	}
	if n := q.Len(); n != 0 {
		t.Errorf("Queue holds %d values, want 0", n)
	}
}

func TestEventSourceWithDecoder(t *testing.T) {
	topic, sub := newTestSubscription(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := topic.Send(ctx, &pubsub.Message{Body: []byte("hello")}); err != nil {
		t.Fatal(err)
	}

	src := NewEventSource[string]("greetings", sub).WithDecoder(func(p []byte, v *string) error {
		*v = strings.ToUpper(string(p))
		return nil
	})
	q := NewQueue[string](WakerFunc(cancel))
	if err := src.Forward(ctx, q); err != nil {
		t.Fatalf("Forward() = %v, want nil", err)
	}
	if v, ok := q.Next(nil); !ok || v != "HELLO" {
		t.Errorf("Next() = (%q, %v), want (%q, true)", v, ok, "HELLO")
	}
}
