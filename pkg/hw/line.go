// Package hw binds the sensor and motor capabilities to real
// peripherals: GPIO lines and an I2C ADC through periph.io, and the
// motor firmware over a serial port.
package hw

import (
	"fmt"
	"strings"

	"periph.io/x/conn/v3/gpio"
)

// ParsePull parses the input pull of sensor lines.
// Photodetector boards either drive the line (float) or are open
// collector (up).
func ParsePull(s string) (gpio.Pull, error) {
	switch strings.ToLower(s) {
	case "", "float":
		return gpio.Float, nil
	case "up":
		return gpio.PullUp, nil
	case "down":
		return gpio.PullDown, nil
	}
	return gpio.PullNoChange, fmt.Errorf("unknown pull: %q", s)
}

// Line implements sensor.DigitalLine on a GPIO pin.
type Line struct {
	Pin  gpio.PinIn
	Pull gpio.Pull
}

// NewLine creates a Line.
func NewLine(pin gpio.PinIn, pull gpio.Pull) *Line {
	return &Line{Pin: pin, Pull: pull}
}

// Configure implements sensor.DigitalLine.
func (l *Line) Configure() error {
	if err := l.Pin.In(l.Pull, gpio.NoEdge); err != nil {
		return fmt.Errorf("%s: %v", l.Pin, err)
	}
	return nil
}

// ReadLine implements sensor.DigitalLine.
func (l *Line) ReadLine() bool {
	return l.Pin.Read() == gpio.High
}
