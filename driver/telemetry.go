package driver

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/go-digitaltwin/go-statetree"
)

var tracer = otel.Tracer("github.com/go-digitaltwin/go-statetree/driver")
var meter = otel.Meter("github.com/go-digitaltwin/go-statetree/driver")

const (
	// driverName is the attribute key used to associate each record with the
	// driver that produced it (see Options.Name).
	driverName = "statetree.driver"
	// turnOutcome is the attribute key holding the Summary of a turn, e.g.
	// "pending" or "state|stream".
	turnOutcome = "statetree.summary"
)

var (
	// turnCount counts the turns of every driver, labelled with their outcome.
	turnCount metric.Int64Counter
	// turnDuration measures how long a turn took, from resetting the Signal until
	// the Handler returned.
	turnDuration metric.Float64Histogram
)

func init() {
	// Failing to create an instrument indicates a programming error (e.g. an
	// invalid instrument name) rather than a runtime condition.
	var err error
	turnCount, err = meter.Int64Counter(
		"statetree.driver.turns",
		metric.WithDescription("The number of turns taken by drivers, labelled with the Summary each turn reported."),
	)
	if err != nil {
		panic(fmt.Sprintf("driver: failed to init 'statetree.driver.turns' instrument: %v", err))
	}

	turnDuration, err = meter.Float64Histogram(
		"statetree.driver.turn.duration",
		metric.WithDescription("The duration of a single turn, including the Handler."),
		metric.WithUnit("ms"),
	)
	if err != nil {
		panic(fmt.Sprintf("driver: failed to init 'statetree.driver.turn.duration' instrument: %v", err))
	}
}

func measureTurn(ctx context.Context, name string, s statetree.Summary, d time.Duration) {
	attrs := attribute.NewSet(
		attribute.String(driverName, name),
		attribute.String(turnOutcome, s.String()),
	)
	turnCount.Add(ctx, 1, metric.WithAttributeSet(attrs))
	// We use floating-point division here for higher precision (instead of the
	// Millisecond method).
	turnDuration.Record(ctx, float64(d)/float64(time.Millisecond), metric.WithAttributeSet(attrs))
}
