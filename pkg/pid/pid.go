// Package pid implements an integer PID controller for a discretized
// error signal.
package pid

import "fmt"

// Gains are the fixed controller gains.
type Gains struct {
	Kp int `yaml:"kp"`
	Ki int `yaml:"ki"`
	Kd int `yaml:"kd"`
}

// DefaultGains are tuned for the {-1, 0, +1} error domain. On that
// domain any change of error swings the derivative term by up to 2*Kd,
// so Kd dominates the correction.
var DefaultGains = Gains{Kp: 1, Ki: 1, Kd: 5}

// String implements fmt.Stringer.
func (g Gains) String() string {
	return fmt.Sprintf("kp=%d ki=%d kd=%d", g.Kp, g.Ki, g.Kd)
}

// DefaultIntegralLimit bounds the integral to the int16 range.
const DefaultIntegralLimit = 1<<15 - 1

// State is the persistent memory of the controller.
type State struct {
	PreviousError int
	Integral      int
	Derivative    int
	Correction    int
}

// Controller holds the running PID state. It has no reset: the state
// lives as long as the controller.
type Controller struct {
	Gains Gains
	// IntegralLimit saturates the integral at +/- the limit.
	// A non-positive value means DefaultIntegralLimit.
	IntegralLimit int

	state State
}

// New creates a Controller.
func New(gains Gains) *Controller {
	return &Controller{Gains: gains, IntegralLimit: DefaultIntegralLimit}
}

// Step feeds a new error sample and returns the correction.
// The previous error is updated only after the correction is computed.
func (c *Controller) Step(err int) int {
	s := &c.state
	s.Integral = c.saturate(s.Integral + err)
	s.Derivative = err - s.PreviousError
	s.Correction = c.Gains.Kp*err + c.Gains.Ki*s.Integral + c.Gains.Kd*s.Derivative
	s.PreviousError = err
	return s.Correction
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	return c.state
}

func (c *Controller) saturate(v int) int {
	limit := c.IntegralLimit
	if limit <= 0 {
		limit = DefaultIntegralLimit
	}
	if v > limit {
		return limit
	} else if v < -limit {
		return -limit
	}
	return v
}
