// Package sensor reads photodetectors and normalizes them into
// line detection readings.
//
// Two strategies are provided: Digital reads an input line directly,
// Analog runs a single ADC conversion and compares it against a
// threshold, either calibrated or derived from a percentage of supply.
package sensor

import (
	"fmt"
	"strings"
)

// DigitalLine is a single digital input provided by the GPIO layer.
type DigitalLine interface {
	// Configure sets the line direction to input.
	Configure() error
	// ReadLine returns true when the line is electrically high.
	ReadLine() bool
}

// ADC is an analog to digital converter provided by the peripheral layer.
type ADC interface {
	SelectChannel(n int)
	StartConversion()
	IsConversionDone() bool
	ReadResult() int
}

// Sensor produces a normalized detection: true when light is detected.
type Sensor interface {
	Detect() bool
}

// Sample is a raw analog conversion result.
type Sample int

// Threshold is the decision boundary to binarize a Sample.
type Threshold int

// Detects returns true when the sample is at or above the threshold.
func (t Threshold) Detects(s Sample) bool {
	return int(s) >= int(t)
}

// Mode selects the sensor strategy.
type Mode string

// Modes
const (
	ModeDigital Mode = "digital"
	ModeAnalog  Mode = "analog"
)

// ParseMode parses a Mode from string.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(s)); m {
	case ModeDigital, ModeAnalog:
		return m, nil
	case "":
		return ModeDigital, nil
	}
	return "", fmt.Errorf("unknown sensor mode: %q", s)
}

// Justify is the alignment of the conversion result.
type Justify int

// Justification
const (
	// RightAdjusted keeps the full 10-bit result, 0..1023.
	RightAdjusted Justify = iota
	// LeftAdjusted only keeps the high byte, 0..255.
	LeftAdjusted
)

// Resolution constants.
const (
	FullScale10 = 1023
	FullScale8  = 255
)

// FullScale returns the maximum sample value for the justification.
func (j Justify) FullScale() Sample {
	if j == LeftAdjusted {
		return FullScale8
	}
	return FullScale10
}

// Apply converts a raw 10-bit result into the justified sample.
func (j Justify) Apply(raw int) Sample {
	raw &= FullScale10
	if j == LeftAdjusted {
		return Sample(raw >> 2)
	}
	return Sample(raw)
}

// ParseJustify parses Justify from string: "right" (default) or "left".
func ParseJustify(s string) (Justify, error) {
	switch strings.ToLower(s) {
	case "", "right":
		return RightAdjusted, nil
	case "left":
		return LeftAdjusted, nil
	}
	return 0, fmt.Errorf("unknown justification: %q", s)
}
