package sim

import (
	"math/rand"
)

// Line simulates the digital output of a photodetector: high when
// the floor under it reflects light.
type Line struct {
	Bot   *Bot
	Track Track
	Side  string

	configured bool
}

// Configure implements sensor.DigitalLine.
func (l *Line) Configure() error {
	l.configured = true
	return nil
}

// Configured returns true once Configure is called.
func (l *Line) Configured() bool {
	return l.configured
}

// ReadLine implements sensor.DigitalLine.
func (l *Line) ReadLine() bool {
	return !l.Track.OnLine(l.Bot.SensorPos(l.Side))
}

// ADC simulates the analog photodetectors: channel 0 is the left
// sensor, channel 1 the right one, other channels read 0.
// Results are 10-bit with a deterministic noise.
type ADC struct {
	Bot   *Bot
	Track Track
	// Bright and Dark are the readings off and over the line.
	Bright int
	Dark   int
	Noise  int
	// ConversionPolls is the number of polls before a conversion completes.
	ConversionPolls int

	rnd     *rand.Rand
	channel int
	pending int
	result  int
}

// NewADC creates the ADC with noise drawn from seed.
func NewADC(bot *Bot, track Track, seed int64) *ADC {
	return &ADC{
		Bot:             bot,
		Track:           track,
		Bright:          900,
		Dark:            120,
		Noise:           20,
		ConversionPolls: 2,
		rnd:             rand.New(rand.NewSource(seed)),
	}
}

// SelectChannel implements sensor.ADC.
func (a *ADC) SelectChannel(n int) {
	a.channel = n
}

// StartConversion implements sensor.ADC.
func (a *ADC) StartConversion() {
	a.pending = a.ConversionPolls
	var side string
	switch a.channel {
	case 0:
		side = SideLeft
	case 1:
		side = SideRight
	default:
		a.result = 0
		return
	}
	v := a.Bright
	if a.Track.OnLine(a.Bot.SensorPos(side)) {
		v = a.Dark
	}
	if a.Noise > 0 {
		v += a.rnd.Intn(2*a.Noise+1) - a.Noise
	}
	if v < 0 {
		v = 0
	} else if v > 1023 {
		v = 1023
	}
	a.result = v
}

// IsConversionDone implements sensor.ADC.
func (a *ADC) IsConversionDone() bool {
	if a.pending > 0 {
		a.pending--
		return false
	}
	return true
}

// ReadResult implements sensor.ADC.
func (a *ADC) ReadResult() int {
	return a.result
}
