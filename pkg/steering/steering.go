// Package steering maps the two line sensors into a discretized
// steering error.
package steering

import "fmt"

// Error is the discretized directional error, one of -1, 0, +1.
type Error int8

// Errors
const (
	// TurnLeft is reported when only the right sensor detects.
	TurnLeft Error = -1
	// Centered is reported when both sensors detect.
	Centered Error = 0
	// TurnRight is reported when only the left sensor detects.
	TurnRight Error = 1
)

// LostPolicy decides the error when neither sensor detects.
type LostPolicy string

// Policies
const (
	// HoldLast keeps the error of the previous tick.
	HoldLast LostPolicy = "hold"
	// Recenter reports Centered.
	Recenter LostPolicy = "center"
)

// ParseLostPolicy parses LostPolicy from string.
func ParseLostPolicy(s string) (LostPolicy, error) {
	switch p := LostPolicy(s); p {
	case HoldLast, Recenter:
		return p, nil
	case "":
		return HoldLast, nil
	}
	return "", fmt.Errorf("unknown lost policy: %q", s)
}

// Discretize maps the sensor pair. ok is false when both sensors
// are off, which has no mapping of its own.
func Discretize(left, right bool) (e Error, ok bool) {
	switch {
	case left && right:
		return Centered, true
	case left:
		return TurnRight, true
	case right:
		return TurnLeft, true
	}
	return Centered, false
}

// Resolve applies the policy for a lost reading.
func (p LostPolicy) Resolve(prev Error) Error {
	if p == Recenter {
		return Centered
	}
	return prev
}

// Mapper keeps the last error across ticks.
type Mapper struct {
	Policy LostPolicy

	last Error
	lost bool
}

// Map maps the sensor pair into an error and remembers it.
func (m *Mapper) Map(left, right bool) Error {
	e, ok := Discretize(left, right)
	if m.lost = !ok; m.lost {
		e = m.Policy.Resolve(m.last)
	}
	m.last = e
	return e
}

// Last returns the error of the last Map.
func (m *Mapper) Last() Error {
	return m.last
}

// Lost indicates the last Map had neither sensor detecting.
func (m *Mapper) Lost() bool {
	return m.lost
}
