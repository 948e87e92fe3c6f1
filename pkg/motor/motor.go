// Package motor builds differential speed commands and dispatches
// them to the motor driver.
package motor

import (
	"fmt"
	"math"

	fx "github.com/robotalks/linebot/pkg/framework"
)

// Speed range in percent.
const (
	MinSpeed = 0
	MaxSpeed = 100
)

// Actuator is the motor driver. Speeds are percentages in 0..100.
type Actuator interface {
	SetLeftSpeed(percent int) error
	SetRightSpeed(percent int) error
}

// Command is the speed pair for one tick.
type Command struct {
	Left  int
	Right int
}

// String implements fmt.Stringer.
func (c Command) String() string {
	return fmt.Sprintf("L%d/R%d", c.Left, c.Right)
}

// Build combines the base speed and the correction. Each side is
// clamped independently.
func Build(base, correction int) Command {
	return Command{
		Left:  clampSum(base, correction),
		Right: clampSum(base, negate(correction)),
	}
}

// Apply sends the command to the actuator. Both sides are always set.
func (c Command) Apply(a Actuator) error {
	return fx.Aggregate(
		a.SetLeftSpeed(c.Left),
		a.SetRightSpeed(c.Right),
	)
}

// Clamp limits a speed to MinSpeed..MaxSpeed.
func Clamp(v int) int {
	if v > MaxSpeed {
		return MaxSpeed
	} else if v < MinSpeed {
		return MinSpeed
	}
	return v
}

func clampSum(a, b int) int {
	if b > 0 && a > math.MaxInt-b {
		return MaxSpeed
	}
	if b < 0 && a < math.MinInt-b {
		return MinSpeed
	}
	return Clamp(a + b)
}

func negate(v int) int {
	if v == math.MinInt {
		return math.MaxInt
	}
	return -v
}
