package sensor

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeLine struct {
	configured bool
	level      bool
}

func (l *fakeLine) Configure() error { l.configured = true; return nil }
func (l *fakeLine) ReadLine() bool   { return l.level }

// fakeADC returns queued samples per channel and reports completion
// only after busyPolls calls to IsConversionDone.
type fakeADC struct {
	samples   map[int][]int
	busyPolls int

	channel     int
	selected    []int
	pending     int
	polls       int
	conversions int
}

func (a *fakeADC) SelectChannel(n int) {
	a.channel = n
	a.selected = append(a.selected, n)
}

func (a *fakeADC) StartConversion() {
	a.pending = a.busyPolls
	a.conversions++
}

func (a *fakeADC) IsConversionDone() bool {
	a.polls++
	if a.pending > 0 {
		a.pending--
		return false
	}
	return true
}

func (a *fakeADC) ReadResult() int {
	queue := a.samples[a.channel]
	if len(queue) == 0 {
		return 0
	}
	v := queue[0]
	a.samples[a.channel] = queue[1:]
	return v
}

func TestDigital(t *testing.T) {
	line := &fakeLine{}
	s := NewDigital(line)
	require.NoError(t, s.Init())
	require.True(t, line.configured)
	require.False(t, s.Detect())
	line.level = true
	require.True(t, s.Detect())
}

func TestConvertBusyPolls(t *testing.T) {
	adc := &fakeADC{samples: map[int][]int{3: {812}}, busyPolls: 13}
	require.Equal(t, 812, Convert(adc, 3))
	require.Equal(t, 14, adc.polls)
	require.Equal(t, 1, adc.conversions)
}

func TestConvertMasksChannel(t *testing.T) {
	testCases := []struct {
		channel int
		expect  int
	}{
		{0, 0},
		{7, 7},
		{8, 0},
		{11, 3},
		{0xff, 7},
		{-1, 7},
	}
	for _, tc := range testCases {
		adc := &fakeADC{samples: map[int][]int{}}
		Convert(adc, tc.channel)
		require.Equal(t, []int{tc.expect}, adc.selected, "channel %d", tc.channel)
	}
}

func TestJustify(t *testing.T) {
	require.Equal(t, Sample(1023), RightAdjusted.Apply(1023))
	require.Equal(t, Sample(255), LeftAdjusted.Apply(1023))
	require.Equal(t, Sample(128), LeftAdjusted.Apply(512))
	require.Equal(t, Sample(1), RightAdjusted.Apply(1025))
	require.Equal(t, Sample(FullScale8), LeftAdjusted.FullScale())
	require.Equal(t, Sample(FullScale10), RightAdjusted.FullScale())
}

func TestPercentThreshold(t *testing.T) {
	testCases := []struct {
		name    string
		percent int
		justify Justify
		expect  Threshold
	}{
		{"half 8-bit", 50, LeftAdjusted, 127},
		{"half 10-bit", 50, RightAdjusted, 511},
		{"full 8-bit", 100, LeftAdjusted, 255},
		{"zero", 0, RightAdjusted, 0},
		{"negative", -20, LeftAdjusted, 0},
		{"above full", 150, RightAdjusted, 1023},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expect, PercentThreshold(tc.percent, tc.justify))
		})
	}
}

func TestAnalogDetect(t *testing.T) {
	adc := &fakeADC{samples: map[int][]int{1: {600, 511, 510}}}
	s := NewAnalog(adc, 1, RightAdjusted)
	require.Equal(t, Threshold(511), s.Threshold)
	require.True(t, s.Detect())
	require.True(t, s.Detect(), "at threshold")
	require.False(t, s.Detect())
}

func TestAnalogLeftAdjusted(t *testing.T) {
	adc := &fakeADC{samples: map[int][]int{2: {1020}}}
	s := NewAnalog(adc, 2, LeftAdjusted)
	require.Equal(t, Sample(255), s.Read())
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("Analog")
	require.NoError(t, err)
	require.Equal(t, ModeAnalog, m)
	m, err = ParseMode("")
	require.NoError(t, err)
	require.Equal(t, ModeDigital, m)
	_, err = ParseMode("sonar")
	require.Error(t, err)
}

func TestParseJustify(t *testing.T) {
	j, err := ParseJustify("LEFT")
	require.NoError(t, err)
	require.Equal(t, LeftAdjusted, j)
	j, err = ParseJustify("")
	require.NoError(t, err)
	require.Equal(t, RightAdjusted, j)
	_, err = ParseJustify("center")
	require.Error(t, err)
}
