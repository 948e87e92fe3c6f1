package framework

import (
	"context"
	"time"

	"github.com/golang/glog"
)

// DefaultInterval is the delay between the end of one iteration
// and the start of the next one.
const DefaultInterval = 10 * time.Millisecond

// Loop runs sensors, controllers and acuators in priority order,
// then waits a fixed delay before the next iteration.
type Loop struct {
	Interval time.Duration
	Clock    Clock

	controllers [PriorityLevels][]Controller
	runners     []Runnable
	tick        uint64

	wakeUpCh chan struct{}
}

// LoopAdder provides specific logic to add components to loop.
type LoopAdder interface {
	AddToLoop(*Loop)
}

type loopIteration struct {
	loop          *Loop
	ctx           context.Context
	time          time.Time
	tick          uint64
	priorityLevel int
}

// NewLoop creates a Loop.
func NewLoop() *Loop {
	return &Loop{Interval: DefaultInterval, Clock: SystemClock{}}
}

// Add adds LoopAdders.
func (l *Loop) Add(adders ...LoopAdder) *Loop {
	for _, adder := range adders {
		adder.AddToLoop(l)
	}
	return l
}

// AddController registers controllers to the loop.
func (l *Loop) AddController(priorityLevel int, ctls ...Controller) *Loop {
	l.controllers[priorityLevel] = append(l.controllers[priorityLevel], ctls...)
	for _, ctl := range ctls {
		if runner, ok := ctl.(Runnable); ok {
			l.runners = append(l.runners, runner)
		}
	}
	return l
}

// Ticks returns the number of completed iterations.
func (l *Loop) Ticks() uint64 {
	return l.tick
}

// Run implements Runnable. It never returns until ctx is canceled.
func (l *Loop) Run(ctx context.Context) error {
	if l.wakeUpCh == nil {
		l.wakeUpCh = make(chan struct{}, 1)
	}
	clock := l.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	interval := l.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	runner := NewRunnerWith(ctx)
	runner.Go(l.runners...)
	defer runner.Wait()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		l.RunIteration(ctx)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-clock.After(interval):
		case <-l.wakeUpCh:
		}
	}
}

// TriggerNext implements LoopControl.
func (l *Loop) TriggerNext() {
	if l.wakeUpCh == nil {
		return
	}
	select {
	case l.wakeUpCh <- struct{}{}:
	default:
	}
}

// RunIteration runs all controllers once, from the top priority
// level down to idle.
func (l *Loop) RunIteration(ctx context.Context) {
	l.tick++
	clock := l.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	iter := &loopIteration{loop: l, ctx: ctx, time: clock.Now(), tick: l.tick}
	for i := 0; i < PriorityLevels; i++ {
		iter.priorityLevel = i
		for _, ctl := range l.controllers[i] {
			if err := ctl.Control(iter); err != nil {
				glog.Errorf("tick %d: controller error: %v", iter.tick, err)
			}
		}
	}
}

func (t *loopIteration) Context() context.Context {
	return t.ctx
}

func (t *loopIteration) Time() time.Time {
	return t.time
}

func (t *loopIteration) PriorityLevel() int {
	return t.priorityLevel
}

func (t *loopIteration) Tick() uint64 {
	return t.tick
}

func (t *loopIteration) TriggerNext() {
	t.loop.TriggerNext()
}
