package sensor

import (
	"errors"
	"fmt"
)

// Seed selects how the running minimum and maximum start.
type Seed int

const (
	// SeedFirstSample starts both extremes at the first sample.
	SeedFirstSample Seed = iota
	// SeedZero starts both extremes at 0. The minimum then stays at 0
	// unless a sample is 0, which skews the threshold downwards.
	// It reproduces the behavior of the AVR firmware.
	SeedZero
)

// ParseSeed parses Seed from string.
func ParseSeed(s string) (Seed, error) {
	switch s {
	case "", "first":
		return SeedFirstSample, nil
	case "zero":
		return SeedZero, nil
	}
	return 0, fmt.Errorf("unknown calibration seed: %q", s)
}

// ErrNoSamples indicates the calibration batch is empty.
var ErrNoSamples = errors.New("calibration requires at least one sample")

// Calibration is the result of Calibrate.
type Calibration struct {
	Threshold Threshold
	Min       int
	Max       int
	Samples   int
}

// String implements fmt.Stringer.
func (c Calibration) String() string {
	return fmt.Sprintf("threshold=%d min=%d max=%d samples=%d", c.Threshold, c.Min, c.Max, c.Samples)
}

// Calibrate performs n sequential conversions on channel and returns
// the midpoint of the extremes, truncated.
func Calibrate(adc ADC, channel, n int, seed Seed) (Calibration, error) {
	if n <= 0 {
		return Calibration{}, ErrNoSamples
	}
	c := Calibration{Samples: n}
	for i := 0; i < n; i++ {
		v := Convert(adc, channel)
		if i == 0 && seed == SeedFirstSample {
			c.Min, c.Max = v, v
			continue
		}
		if v > c.Max {
			c.Max = v
		} else if v < c.Min {
			c.Min = v
		}
	}
	c.Threshold = Threshold((c.Max + c.Min) / 2)
	return c, nil
}

// CalibrateAnalog calibrates the sensor on its own channel and installs
// the resulting threshold, converted to the sensor justification.
func CalibrateAnalog(a *Analog, n int, seed Seed) (Calibration, error) {
	c, err := Calibrate(a.ADC, a.Channel, n, seed)
	if err != nil {
		return c, err
	}
	a.Threshold = Threshold(a.Justify.Apply(int(c.Threshold)))
	return c, nil
}
