// Package driver runs the poll loop of a tree of components: it waits to be
// woken, polls the root, and hands the reported changes to a Handler.
//
// A Driver is a [component.Procedure], so it can be forked by any go-component
// lifecycle. Hosts that own their event loop (a windowing system, for example)
// call Wait and Turn themselves instead.
package driver

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/danielorbach/go-component"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-digitaltwin/go-statetree"
)

// A Handler reacts to the changes reported by a turn, typically by redrawing
// or recomputing whatever depends on the tree. It runs on the driver's
// goroutine; the Summary tells state changes from stream events.
type Handler func(ctx context.Context, s statetree.Summary)

// Options configure a Driver. The zero value is valid.
type Options struct {
	// Name labels the driver's logs and telemetry. Defaults to "statetree".
	Name string
	// Handler is called after every turn that reported changes; it may be nil.
	Handler Handler
}

// A Driver owns the Signal of a tree of components and drives its polling.
type Driver struct {
	name    string
	handler Handler
	signal  *statetree.Signal
	cx      *statetree.Context
	root    statetree.Component
	wake    chan struct{}
	running atomic.Bool
}

// New creates a Driver and builds its root component by calling build with the
// driver's Context. The first turn of a new Driver always polls, so that the
// initial state of every cell is observed.
func New[C statetree.Component](opts Options, build func(cx *statetree.Context) C) (*Driver, C) {
	if opts.Name == "" {
		opts.Name = "statetree"
	}
	d := &Driver{
		name:    opts.Name,
		handler: opts.Handler,
		signal:  statetree.NewSignal(),
		wake:    make(chan struct{}, 1),
	}
	d.cx = statetree.NewContext(d.signal)
	d.signal.Register(statetree.WakerFunc(d.notify))

	root := build(d.cx)
	if any(root) == nil {
		panic("driver: build returned a nil root component")
	}
	d.root = root

	d.signal.Wake()
	return d, root
}

// notify is the Waker registered with the driver's Signal. The Signal already
// guarantees a single call per Reset; the channel keeps at most one token.
func (d *Driver) notify() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// Context returns the Context the root was built with. Use it to construct
// cells that are added to the tree later.
func (d *Driver) Context() *statetree.Context { return d.cx }

// Root returns the root component.
func (d *Driver) Root() statetree.Component { return d.root }

// Wait blocks until the driver is woken or ctx is done, in which case it
// returns ctx.Err().
func (d *Driver) Wait(ctx context.Context) error {
	select {
	case <-d.wake:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Turn polls the root once and returns the reported Summary. If the Summary is
// not empty, the Handler is called before Turn returns.
//
// The Signal is reset immediately before polling, so a wake arriving during
// the poll (a callback mutating a cell, for instance) schedules another turn.
// Turn must not be called concurrently.
func (d *Driver) Turn(ctx context.Context) (s statetree.Summary) {
	ctx, span := tracer.Start(ctx, "driver.Turn", trace.WithAttributes(
		attribute.String(driverName, d.name),
	))
	defer span.End()

	defer func(start time.Time) {
		measureTurn(ctx, d.name, s, time.Since(start))
	}(time.Now())

	select {
	case <-d.wake:
	default:
	}
	d.signal.Reset()
	s = d.root.Poll(d.signal)
	span.SetAttributes(attribute.Stringer(turnOutcome, s))

	if !s.Empty() && d.handler != nil {
		d.handler(ctx, s)
	}
	return s
}

// Run alternates Wait and Turn until ctx is done, and then returns nil. A
// Driver runs at most once at a time: calling Run (or Exec) while it is
// already running panics.
func (d *Driver) Run(ctx context.Context) error {
	d.acquire()
	defer d.running.Store(false)

	logger := component.Logger(ctx).With(slog.String(driverName, d.name))
	logger.Info("Driver started", slog.Int("components", statetree.Count(d.root)))
	for {
		if err := d.Wait(ctx); err != nil {
			logger.Info("Driver stopped")
			return nil
		}
		d.turn(ctx, logger)
	}
}

// Exec implements component.Procedure. It behaves like Run, stopping once the
// lifecycle no longer continues.
func (d *Driver) Exec(l *component.L) {
	d.acquire()
	defer d.running.Store(false)

	logger := component.Logger(l.Context()).With(slog.String(driverName, d.name))
	logger.Info("Driver started", slog.Int("components", statetree.Count(d.root)))
	for l.Continue() {
		if err := d.Wait(l.GraceContext()); err != nil {
			// we're shutting down
			break
		}
		d.turn(l.Context(), logger)
	}
	logger.Info("Driver stopped")
}

func (d *Driver) turn(ctx context.Context, logger *slog.Logger) {
	s := d.Turn(ctx)
	logger.Debug("Turn completed", slog.String("summary", s.String()))
}

func (d *Driver) acquire() {
	if !d.running.CompareAndSwap(false, true) {
		component.Logger(context.Background()).Error("Driver started twice", slog.String(driverName, d.name))
		panic("driver: " + d.name + " is already running")
	}
}
