package statetree

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("github.com/go-digitaltwin/go-statetree")

// ---- eventsource.go ----

const (
	// sourceName is the attribute key used to associate each record with the
	// EventSource that produced it, allowing both collective examination across all
	// sources and individual analysis per source.
	sourceName = "statetree.source"
)

var (
	// eventsForwarded counts the messages decoded and pushed into a Queue.
	//
	// Each record is associated with the sourceName.
	eventsForwarded metric.Int64Counter
	// eventFailures counts the messages that could not be decoded.
	//
	// Each record is associated with the sourceName.
	eventFailures metric.Int64Counter
)

func init() {
	var err error
	eventsForwarded, err = meter.Int64Counter(
		"statetree.eventsource.messages",
		metric.WithDescription("The number of messages decoded and forwarded into a stream."),
	)
	if err != nil {
		panic("statetree: failed to init 'statetree.eventsource.messages' instrument")
	}

	eventFailures, err = meter.Int64Counter(
		"statetree.eventsource.failures",
		metric.WithDescription("The number of messages that could not be decoded."),
	)
	if err != nil {
		panic("statetree: failed to init 'statetree.eventsource.failures' instrument")
	}
}

// measureEvent records the outcome of handling a single message with either
// eventsForwarded or eventFailures, labelled with the source's name.
//
// According to [metric] documentation, [metric.WithAttributeSet] should be used
// instead of [metric.WithAttributes] for performance optimization.
func measureEvent(ctx context.Context, name string, succeeded bool) {
	attrs := attribute.NewSet(attribute.String(sourceName, name))
	if succeeded {
		eventsForwarded.Add(ctx, 1, metric.WithAttributeSet(attrs))
	} else {
		eventFailures.Add(ctx, 1, metric.WithAttributeSet(attrs))
	}
}
