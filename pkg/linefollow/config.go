package linefollow

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/golang/glog"
	"gopkg.in/yaml.v3"

	fx "github.com/robotalks/linebot/pkg/framework"
	"github.com/robotalks/linebot/pkg/motor"
	"github.com/robotalks/linebot/pkg/pid"
	"github.com/robotalks/linebot/pkg/sensor"
	"github.com/robotalks/linebot/pkg/steering"
)

// Hardware provides the peripherals the follower is built on.
// If it also implements framework.Initializer, Init runs first
// during startup.
type Hardware interface {
	Line(name string) (sensor.DigitalLine, error)
	ADC() (sensor.ADC, error)
	Motors() (motor.Actuator, error)
}

// SensorConfig locates a single sensor.
type SensorConfig struct {
	// Pin is the GPIO name used in digital mode.
	Pin string `yaml:"pin"`
	// Channel is the ADC channel used in analog mode.
	Channel int `yaml:"channel"`
}

// SensorsConfig configures both sensors.
type SensorsConfig struct {
	Mode    string `yaml:"mode"`
	Justify string `yaml:"justify"`
	// ThresholdPercent is the fixed threshold used when calibration
	// is disabled.
	ThresholdPercent int `yaml:"threshold_percent"`
	// CalibrationSamples is the batch size per sensor, 0 disables calibration.
	CalibrationSamples int          `yaml:"calibration_samples"`
	CalibrationSeed    string       `yaml:"calibration_seed"`
	Left               SensorConfig `yaml:"left"`
	Right              SensorConfig `yaml:"right"`
}

// Config defines the line follower configuration.
type Config struct {
	BaseSpeed     int           `yaml:"base_speed"`
	Gains         pid.Gains     `yaml:"gains"`
	IntegralLimit int           `yaml:"integral_limit"`
	Period        time.Duration `yaml:"period"`
	LostPolicy    string        `yaml:"lost_policy"`
	Sensors       SensorsConfig `yaml:"sensors"`
}

// Defaults
const (
	DefaultThresholdPercent   = 50
	DefaultCalibrationSamples = 100
)

var defaultConfig = Config{
	BaseSpeed:     DefaultBaseSpeed,
	Gains:         pid.DefaultGains,
	IntegralLimit: pid.DefaultIntegralLimit,
	Period:        fx.DefaultInterval,
	LostPolicy:    string(steering.HoldLast),
	Sensors: SensorsConfig{
		Mode:               string(sensor.ModeDigital),
		Justify:            "right",
		ThresholdPercent:   DefaultThresholdPercent,
		CalibrationSamples: DefaultCalibrationSamples,
		CalibrationSeed:    "first",
		Left:               SensorConfig{Pin: "GPIO17", Channel: 0},
		Right:              SensorConfig{Pin: "GPIO27", Channel: 1},
	},
}

func init() {
	if val := os.Getenv("LINEBOT_CONFIG"); val != "" {
		if err := defaultConfig.LoadFile(val); err != nil {
			glog.Warningf("LINEBOT_CONFIG: %v", err)
		}
	}
}

// SetupFlags sets command line flags.
// The -config flag loads the file when parsed, flags after it override
// the values from the file.
func SetupFlags() {
	flag.Var(configFileFlag{&defaultConfig}, "config", "YAML configuration file.")
	flag.IntVar(&defaultConfig.BaseSpeed, "base-speed", defaultConfig.BaseSpeed, "Speed (%) of both motors when centered.")
	flag.IntVar(&defaultConfig.Gains.Kp, "kp", defaultConfig.Gains.Kp, "Proportional gain.")
	flag.IntVar(&defaultConfig.Gains.Ki, "ki", defaultConfig.Gains.Ki, "Integral gain.")
	flag.IntVar(&defaultConfig.Gains.Kd, "kd", defaultConfig.Gains.Kd, "Derivative gain.")
	flag.IntVar(&defaultConfig.IntegralLimit, "integral-limit", defaultConfig.IntegralLimit, "Saturation bound of the integral term.")
	flag.DurationVar(&defaultConfig.Period, "period", defaultConfig.Period, "Delay between control ticks.")
	flag.StringVar(&defaultConfig.LostPolicy, "lost-policy", defaultConfig.LostPolicy, "Error when both sensors are off the line: hold, center.")
	flag.StringVar(&defaultConfig.Sensors.Mode, "sensor-mode", defaultConfig.Sensors.Mode, "Sensor mode: digital, analog.")
	flag.StringVar(&defaultConfig.Sensors.Justify, "adc-justify", defaultConfig.Sensors.Justify, "ADC result justification: right (10-bit), left (8-bit).")
	flag.IntVar(&defaultConfig.Sensors.ThresholdPercent, "threshold", defaultConfig.Sensors.ThresholdPercent, "Fixed analog threshold (% of supply) when calibration is disabled.")
	flag.IntVar(&defaultConfig.Sensors.CalibrationSamples, "calibrate", defaultConfig.Sensors.CalibrationSamples, "Calibration samples per sensor, 0 to disable.")
	flag.StringVar(&defaultConfig.Sensors.CalibrationSeed, "calibrate-seed", defaultConfig.Sensors.CalibrationSeed, "Calibration extremes seed: first, zero.")
	flag.StringVar(&defaultConfig.Sensors.Left.Pin, "left-pin", defaultConfig.Sensors.Left.Pin, "GPIO of the left sensor.")
	flag.StringVar(&defaultConfig.Sensors.Right.Pin, "right-pin", defaultConfig.Sensors.Right.Pin, "GPIO of the right sensor.")
	flag.IntVar(&defaultConfig.Sensors.Left.Channel, "left-channel", defaultConfig.Sensors.Left.Channel, "ADC channel of the left sensor.")
	flag.IntVar(&defaultConfig.Sensors.Right.Channel, "right-channel", defaultConfig.Sensors.Right.Channel, "ADC channel of the right sensor.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates the default configuration.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// LoadFile loads the YAML file on top of current values.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return c.Load(data)
}

// Load decodes YAML on top of current values.
func (c *Config) Load(data []byte) error {
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("invalid config: %v", err)
	}
	return nil
}

// NewLoop creates the control loop with the configured period.
func (c *Config) NewLoop() *fx.Loop {
	l := fx.NewLoop()
	if c.Period > 0 {
		l.Interval = c.Period
	}
	return l
}

// NewFollower builds the Follower on hw. Peripheral setup and
// calibration are installed as startup hooks.
func (c *Config) NewFollower(hw Hardware) (*Follower, error) {
	mode, err := sensor.ParseMode(c.Sensors.Mode)
	if err != nil {
		return nil, err
	}
	policy, err := steering.ParseLostPolicy(c.LostPolicy)
	if err != nil {
		return nil, err
	}
	actuator, err := hw.Motors()
	if err != nil {
		return nil, fmt.Errorf("motors: %v", err)
	}

	f := NewFollower(nil, nil, actuator)
	f.BaseSpeed = c.BaseSpeed
	f.PID = pid.New(c.Gains)
	f.PID.IntegralLimit = c.IntegralLimit
	f.Steering.Policy = policy
	if init, ok := hw.(fx.Initializer); ok {
		f.Startup = append(f.Startup, init.Init)
	}

	switch mode {
	case sensor.ModeDigital:
		if f.Left, err = c.digital(f, hw, c.Sensors.Left.Pin); err != nil {
			return nil, err
		}
		if f.Right, err = c.digital(f, hw, c.Sensors.Right.Pin); err != nil {
			return nil, err
		}
	case sensor.ModeAnalog:
		adc, err := hw.ADC()
		if err != nil {
			return nil, fmt.Errorf("adc: %v", err)
		}
		justify, err := sensor.ParseJustify(c.Sensors.Justify)
		if err != nil {
			return nil, err
		}
		seed, err := sensor.ParseSeed(c.Sensors.CalibrationSeed)
		if err != nil {
			return nil, err
		}
		f.Left = c.analog(f, adc, "left", c.Sensors.Left.Channel, justify, seed)
		f.Right = c.analog(f, adc, "right", c.Sensors.Right.Channel, justify, seed)
	}
	return f, nil
}

// StartFollower builds the Follower on hw, installs rec (optional) and
// runs the startup. On failure hw is closed if it implements io.Closer.
func (c *Config) StartFollower(hw Hardware, rec CalibrationRecorder) (f *Follower, err error) {
	defer func() {
		if err == nil {
			return
		}
		if closer, ok := hw.(io.Closer); ok {
			if cerr := closer.Close(); cerr != nil {
				glog.Warningf("close hardware: %v", cerr)
			}
		}
	}()
	if f, err = c.NewFollower(hw); err != nil {
		return nil, err
	}
	f.Recorder = rec
	if err = f.Init(); err != nil {
		return nil, fmt.Errorf("startup: %v", err)
	}
	return f, nil
}

func (c *Config) digital(f *Follower, hw Hardware, pin string) (sensor.Sensor, error) {
	line, err := hw.Line(pin)
	if err != nil {
		return nil, fmt.Errorf("line %s: %v", pin, err)
	}
	s := sensor.NewDigital(line)
	f.Startup = append(f.Startup, s.Init)
	return s, nil
}

func (c *Config) analog(f *Follower, adc sensor.ADC, side string, channel int, justify sensor.Justify, seed sensor.Seed) sensor.Sensor {
	s := sensor.NewAnalog(adc, channel, justify)
	n := c.Sensors.CalibrationSamples
	if n <= 0 {
		s.Threshold = sensor.PercentThreshold(c.Sensors.ThresholdPercent, justify)
		glog.V(1).Infof("%s sensor: fixed threshold %d", side, s.Threshold)
		return s
	}
	f.Startup = append(f.Startup, func() error {
		cal, err := sensor.CalibrateAnalog(s, n, seed)
		if err != nil {
			return fmt.Errorf("calibrate %s sensor: %v", side, err)
		}
		return f.Calibrated(side, channel, cal)
	})
	return s
}

type configFileFlag struct {
	conf *Config
}

func (f configFileFlag) String() string {
	return ""
}

func (f configFileFlag) Set(path string) error {
	return f.conf.LoadFile(path)
}
