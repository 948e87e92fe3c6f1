package sensor

// ChannelMask keeps the channel selector within ADC0..ADC7.
const ChannelMask = 0x07

// Digital is the fast digital strategy: one instantaneous sample
// of the input line, no filtering or debounce.
type Digital struct {
	Line DigitalLine
}

// NewDigital creates a Digital sensor.
func NewDigital(line DigitalLine) *Digital {
	return &Digital{Line: line}
}

// Init implements framework.Initializer.
func (d *Digital) Init() error {
	return d.Line.Configure()
}

// Detect implements Sensor.
func (d *Digital) Detect() bool {
	return d.Line.ReadLine()
}

// Convert runs a single conversion on the channel and busy-polls until
// it completes. Out of range channels are masked.
// There is no timeout: if the hardware never signals completion,
// Convert never returns.
func Convert(adc ADC, channel int) int {
	adc.SelectChannel(channel & ChannelMask)
	adc.StartConversion()
	for !adc.IsConversionDone() {
	}
	return adc.ReadResult()
}

// Analog is the calibrated analog strategy.
type Analog struct {
	ADC       ADC
	Channel   int
	Justify   Justify
	Threshold Threshold
}

// NewAnalog creates an Analog sensor with the threshold set at
// half of the supply.
func NewAnalog(adc ADC, channel int, justify Justify) *Analog {
	return &Analog{
		ADC:       adc,
		Channel:   channel,
		Justify:   justify,
		Threshold: PercentThreshold(50, justify),
	}
}

// Read returns the justified sample of a single conversion.
func (a *Analog) Read() Sample {
	return a.Justify.Apply(Convert(a.ADC, a.Channel))
}

// Detect implements Sensor.
func (a *Analog) Detect() bool {
	return a.Threshold.Detects(a.Read())
}

// PercentThreshold converts a percentage of the supply voltage into a
// threshold in the sample range of the justification.
func PercentThreshold(percent int, justify Justify) Threshold {
	if percent < 0 {
		percent = 0
	} else if percent > 100 {
		percent = 100
	}
	t := percent*(int(justify.FullScale())+1)/100 - 1
	if t < 0 {
		t = 0
	}
	return Threshold(t)
}
