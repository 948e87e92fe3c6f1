package linefollow

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/linebot/pkg/motor"
	"github.com/robotalks/linebot/pkg/pid"
	"github.com/robotalks/linebot/pkg/sensor"
	"github.com/robotalks/linebot/pkg/steering"
)

type fakeLine struct {
	high       bool
	configured bool
}

func (l *fakeLine) Configure() error { l.configured = true; return nil }
func (l *fakeLine) ReadLine() bool   { return l.high }

type constADC struct {
	values  map[int][]int
	channel int
}

func (a *constADC) SelectChannel(n int)    { a.channel = n }
func (a *constADC) StartConversion()       {}
func (a *constADC) IsConversionDone() bool { return true }
func (a *constADC) ReadResult() int {
	q := a.values[a.channel]
	v := q[0]
	if len(q) > 1 {
		a.values[a.channel] = q[1:]
	}
	return v
}

type fakeHardware struct {
	lines    map[string]*fakeLine
	adc      *constADC
	actuator *recordingActuator
	inited   bool
}

func newFakeHardware() *fakeHardware {
	return &fakeHardware{
		lines:    make(map[string]*fakeLine),
		adc:      &constADC{values: make(map[int][]int)},
		actuator: &recordingActuator{},
	}
}

func (h *fakeHardware) Init() error { h.inited = true; return nil }

func (h *fakeHardware) Line(name string) (sensor.DigitalLine, error) {
	if name == "" {
		return nil, errors.New("no pin")
	}
	l := &fakeLine{}
	h.lines[name] = l
	return l, nil
}

func (h *fakeHardware) ADC() (sensor.ADC, error) { return h.adc, nil }

func (h *fakeHardware) Motors() (motor.Actuator, error) { return h.actuator, nil }

const testYAML = `
base_speed: 40
gains:
  kp: 2
  ki: 0
  kd: 3
period: 25ms
lost_policy: center
sensors:
  mode: analog
  justify: left
  calibration_samples: 3
  left:
    channel: 4
  right:
    channel: 5
`

func TestConfigLoad(t *testing.T) {
	conf := NewConfig()
	require.NoError(t, conf.Load([]byte(testYAML)))
	require.Equal(t, 40, conf.BaseSpeed)
	require.Equal(t, pid.Gains{Kp: 2, Ki: 0, Kd: 3}, conf.Gains)
	require.Equal(t, 25*time.Millisecond, conf.Period)
	require.Equal(t, "center", conf.LostPolicy)
	require.Equal(t, "analog", conf.Sensors.Mode)
	require.Equal(t, 4, conf.Sensors.Left.Channel)
	// untouched values keep their defaults
	require.Equal(t, pid.DefaultIntegralLimit, conf.IntegralLimit)
	require.Equal(t, "GPIO17", conf.Sensors.Left.Pin)
	require.Equal(t, pid.DefaultGains, Default().Gains)
}

func TestConfigLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linebot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testYAML), 0644))
	conf := NewConfig()
	require.NoError(t, conf.LoadFile(path))
	require.Equal(t, 40, conf.BaseSpeed)
	require.Error(t, conf.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")))
	require.Error(t, conf.Load([]byte("base_speed: [")))
}

func TestConfigFileFlag(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linebot.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base_speed: 33\n"), 0644))
	conf := NewConfig()
	require.NoError(t, configFileFlag{conf}.Set(path))
	require.Equal(t, 33, conf.BaseSpeed)
}

func TestNewFollowerDigital(t *testing.T) {
	hw := newFakeHardware()
	conf := NewConfig()
	f, err := conf.NewFollower(hw)
	require.NoError(t, err)
	require.False(t, hw.inited)
	require.NoError(t, f.Init())
	require.True(t, hw.inited)
	left, right := hw.lines["GPIO17"], hw.lines["GPIO27"]
	require.True(t, left.configured)
	require.True(t, right.configured)

	left.high = true
	cmd, err := f.Tick()
	require.NoError(t, err)
	require.Equal(t, motor.Command{Left: 57, Right: 43}, cmd)
	require.Equal(t, []motor.Command{cmd}, hw.actuator.commands)
}

type calibrationRecorder struct {
	sides    []string
	channels []int
	cals     []sensor.Calibration
	err      error
}

func (r *calibrationRecorder) RecordCalibration(side string, channel int, cal sensor.Calibration) error {
	r.sides = append(r.sides, side)
	r.channels = append(r.channels, channel)
	r.cals = append(r.cals, cal)
	return r.err
}

func TestNewFollowerAnalogCalibrated(t *testing.T) {
	hw := newFakeHardware()
	hw.adc.values[4] = []int{100, 900, 500, 1000}
	hw.adc.values[5] = []int{200, 600, 400, 10}
	conf := NewConfig()
	require.NoError(t, conf.Load([]byte(testYAML)))
	f, err := conf.NewFollower(hw)
	require.NoError(t, err)
	rec := &calibrationRecorder{}
	f.Recorder = rec
	require.NoError(t, f.Init())
	require.Equal(t, []string{"left", "right"}, rec.sides)
	require.Equal(t, []int{4, 5}, rec.channels)
	require.Equal(t, 500, int(rec.cals[0].Threshold))
	require.Equal(t, 3, rec.cals[1].Samples)

	left, right := f.Left.(*sensor.Analog), f.Right.(*sensor.Analog)
	// (900+100)/2=500 -> 125 left adjusted
	require.Equal(t, sensor.Threshold(125), left.Threshold)
	// (600+200)/2=400 -> 100 left adjusted
	require.Equal(t, sensor.Threshold(100), right.Threshold)
	require.Equal(t, steering.Recenter, f.Steering.Policy)
	require.Equal(t, 40, f.BaseSpeed)

	// left reads 1000 -> 250 detects, right reads 10 -> 2 does not
	cmd, err := f.Tick()
	require.NoError(t, err)
	require.Equal(t, steering.TurnRight, f.SteeringError())
	// kp=2 ki=0 kd=3: 2+0+3
	require.Equal(t, motor.Command{Left: 45, Right: 35}, cmd)
}

func TestNewFollowerRecorderError(t *testing.T) {
	hw := newFakeHardware()
	hw.adc.values[4] = []int{300}
	hw.adc.values[5] = []int{300}
	conf := NewConfig()
	require.NoError(t, conf.Load([]byte(testYAML)))
	f, err := conf.NewFollower(hw)
	require.NoError(t, err)
	f.Recorder = &calibrationRecorder{err: errors.New("disk full")}
	require.EqualError(t, f.Init(), "disk full")
}

func TestNewFollowerAnalogFixedThreshold(t *testing.T) {
	hw := newFakeHardware()
	conf := NewConfig()
	conf.Sensors.Mode = "analog"
	conf.Sensors.CalibrationSamples = 0
	conf.Sensors.ThresholdPercent = 25
	f, err := conf.NewFollower(hw)
	require.NoError(t, err)
	require.Empty(t, f.Startup[1:])
	require.Equal(t, sensor.Threshold(255), f.Left.(*sensor.Analog).Threshold)
}

func TestNewFollowerErrors(t *testing.T) {
	testCases := []struct {
		name  string
		setup func(*Config)
	}{
		{"mode", func(c *Config) { c.Sensors.Mode = "sonar" }},
		{"policy", func(c *Config) { c.LostPolicy = "spin" }},
		{"pin", func(c *Config) { c.Sensors.Right.Pin = "" }},
		{"justify", func(c *Config) { c.Sensors.Mode, c.Sensors.Justify = "analog", "middle" }},
		{"seed", func(c *Config) { c.Sensors.Mode, c.Sensors.CalibrationSeed = "analog", "random" }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			conf := NewConfig()
			tc.setup(conf)
			_, err := conf.NewFollower(newFakeHardware())
			require.Error(t, err)
		})
	}
}

type closableHardware struct {
	*fakeHardware
	closed int
}

func (h *closableHardware) Close() error { h.closed++; return nil }

func TestStartFollowerClosesHardwareOnFailure(t *testing.T) {
	cases := []struct {
		name  string
		setup func(c *Config) CalibrationRecorder
	}{
		{"build", func(c *Config) CalibrationRecorder {
			c.Sensors.Left.Pin = ""
			return nil
		}},
		{"startup", func(c *Config) CalibrationRecorder {
			require.NoError(t, c.Load([]byte(testYAML)))
			return &calibrationRecorder{err: errors.New("disk full")}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hw := &closableHardware{fakeHardware: newFakeHardware()}
			hw.adc.values[4] = []int{300}
			hw.adc.values[5] = []int{300}
			conf := NewConfig()
			rec := tc.setup(conf)
			f, err := conf.StartFollower(hw, rec)
			require.Error(t, err)
			require.Nil(t, f)
			require.Equal(t, 1, hw.closed)
		})
	}
}

func TestStartFollower(t *testing.T) {
	hw := &closableHardware{fakeHardware: newFakeHardware()}
	hw.adc.values[4] = []int{100, 900, 500}
	hw.adc.values[5] = []int{200, 600, 400}
	conf := NewConfig()
	require.NoError(t, conf.Load([]byte(testYAML)))
	rec := &calibrationRecorder{}
	f, err := conf.StartFollower(hw, rec)
	require.NoError(t, err)
	require.True(t, hw.inited)
	require.Equal(t, []string{"left", "right"}, rec.sides)
	require.Equal(t, rec, f.Recorder)
	require.Equal(t, 0, hw.closed)
}
