package framework

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now    time.Time
	delays []time.Duration
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.delays = append(c.delays, d)
	c.now = c.now.Add(d)
	ch := make(chan time.Time, 1)
	ch <- c.now
	return ch
}

func TestLoopPriorityOrder(t *testing.T) {
	var order []string
	record := func(name string) Controller {
		return ControlFunc(func(cc ControlContext) error {
			order = append(order, name)
			return nil
		})
	}
	l := NewLoop()
	l.AddController(PrLvAcuate, record("actuate"))
	l.AddController(PrLvPostProc, record("post"))
	l.AddController(PrLvSense, record("sense-left"), record("sense-right"))
	l.AddController(PrLvControl, record("control"))

	l.RunIteration(context.Background())
	require.Equal(t, []string{"sense-left", "sense-right", "control", "actuate", "post"}, order)
	require.Equal(t, uint64(1), l.Ticks())
}

func TestLoopControllerErrorDoesNotStopIteration(t *testing.T) {
	var ran bool
	l := NewLoop()
	l.AddController(PrLvControl, ControlFunc(func(ControlContext) error {
		return errors.New("boom")
	}))
	l.AddController(PrLvAcuate, ControlFunc(func(ControlContext) error {
		ran = true
		return nil
	}))
	l.RunIteration(context.Background())
	require.True(t, ran)
}

func TestLoopFixedDelay(t *testing.T) {
	clock := &fakeClock{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewLoop()
	l.Clock = clock
	var ticks []uint64
	l.AddController(PrLvControl, ControlFunc(func(cc ControlContext) error {
		ticks = append(ticks, cc.Tick())
		require.Equal(t, PrLvControl, cc.PriorityLevel())
		if cc.Tick() == 3 {
			cancel()
		}
		return nil
	}))

	err := l.Run(ctx)
	require.Equal(t, context.Canceled, err)
	require.Equal(t, []uint64{1, 2, 3}, ticks)
	require.Equal(t, []time.Duration{DefaultInterval, DefaultInterval, DefaultInterval}, clock.delays)
}

func TestLoopTriggerNext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l := NewLoop()
	l.Interval = time.Hour
	l.AddController(PrLvControl, ControlFunc(func(cc ControlContext) error {
		if cc.Tick() >= 2 {
			cancel()
			return nil
		}
		cc.TriggerNext()
		return nil
	}))

	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()
	select {
	case err := <-done:
		require.Equal(t, context.Canceled, err)
	case <-time.After(time.Second):
		t.Fatal("TriggerNext did not wake up the loop")
	}
	require.Equal(t, uint64(2), l.Ticks())
}

func TestAggregate(t *testing.T) {
	require.NoError(t, Aggregate(nil, nil))
	err := Aggregate(nil, errors.New("left"))
	require.EqualError(t, err, "left")
	err = Aggregate(errors.New("left"), errors.New("right"))
	require.EqualError(t, err, "Multiple errors:\nleft\nright")
}

type runFunc func(context.Context) error

func (f runFunc) Run(ctx context.Context) error { return f(ctx) }

func TestRunnerNamedRun(t *testing.T) {
	hub := NamedRun("see", runFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))
	named, ok := hub.(Named)
	require.True(t, ok)
	require.Equal(t, "see", named.Name())

	ctx, cancel := context.WithCancel(context.Background())
	failing := NamedRun("link", runFunc(func(context.Context) error {
		cancel()
		return errors.New("port closed")
	}))
	err := NewRunnerWith(ctx).Go(hub, failing).Wait()
	require.EqualError(t, err, "port closed")
}
