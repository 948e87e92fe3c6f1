// Package sim simulates a line following robot on a track so the
// control loop can run end to end without hardware.
package sim

import (
	"flag"
	"fmt"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/linebot/pkg/framework"
	"github.com/robotalks/linebot/pkg/motor"
	"github.com/robotalks/linebot/pkg/sensor"
)

// Config defines the simulated world.
type Config struct {
	Track         string
	TrackRadius   float64
	LineWidth     float64
	BotSize       float64
	WheelBase     float64
	SpeedMax      float64
	SensorOffset  float64
	SensorSpacing float64
	// StartOffset shifts the bot laterally from the line at start,
	// positive to the left.
	StartOffset float64
	Noise       int
	Seed        int64
}

// Defaults
const (
	DefaultTrackRadius   float64 = 400
	DefaultLineWidth     float64 = 15
	DefaultBotSize       float64 = 100
	DefaultWheelBase     float64 = 80
	DefaultSpeedMax      float64 = 200
	DefaultSensorOffset  float64 = 40
	DefaultSensorSpacing float64 = 25
)

var defaultConfig = Config{
	Track:         "ring",
	TrackRadius:   DefaultTrackRadius,
	LineWidth:     DefaultLineWidth,
	BotSize:       DefaultBotSize,
	WheelBase:     DefaultWheelBase,
	SpeedMax:      DefaultSpeedMax,
	SensorOffset:  DefaultSensorOffset,
	SensorSpacing: DefaultSensorSpacing,
	Noise:         20,
	Seed:          1,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Track, "track", defaultConfig.Track, "Track: ring, straight.")
	flag.Float64Var(&defaultConfig.TrackRadius, "track-radius", defaultConfig.TrackRadius, "Radius (mm) of the ring track.")
	flag.Float64Var(&defaultConfig.LineWidth, "line-width", defaultConfig.LineWidth, "Width (mm) of the line.")
	flag.Float64Var(&defaultConfig.BotSize, "bot-size", defaultConfig.BotSize, "Size (mm) of the bot, it's square.")
	flag.Float64Var(&defaultConfig.WheelBase, "wheel-base", defaultConfig.WheelBase, "Distance (mm) between wheels.")
	flag.Float64Var(&defaultConfig.SpeedMax, "speed-max", defaultConfig.SpeedMax, "Wheel speed (mm/s) at 100%.")
	flag.Float64Var(&defaultConfig.SensorOffset, "sensor-offset", defaultConfig.SensorOffset, "Distance (mm) of sensors ahead of the axle.")
	flag.Float64Var(&defaultConfig.SensorSpacing, "sensor-spacing", defaultConfig.SensorSpacing, "Distance (mm) between sensors.")
	flag.Float64Var(&defaultConfig.StartOffset, "start-offset", defaultConfig.StartOffset, "Lateral offset (mm) from the line at start, positive to the left.")
	flag.IntVar(&defaultConfig.Noise, "adc-noise", defaultConfig.Noise, "Amplitude of simulated ADC noise.")
	flag.Int64Var(&defaultConfig.Seed, "seed", defaultConfig.Seed, "Seed of simulated ADC noise.")
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

// NewSim creates the simulation.
func (c *Config) NewSim() (*Sim, error) {
	if c.LineWidth >= c.SensorSpacing {
		return nil, fmt.Errorf("line width %v must be less than sensor spacing %v", c.LineWidth, c.SensorSpacing)
	}
	track, err := NewTrack(c.Track, c.TrackRadius, c.LineWidth)
	if err != nil {
		return nil, err
	}
	bot := &Bot{
		ID:            "linebot",
		Size:          Size2D{CX: c.BotSize, CY: c.BotSize},
		WheelBase:     c.WheelBase,
		SpeedMax:      c.SpeedMax,
		SensorOffset:  c.SensorOffset,
		SensorSpacing: c.SensorSpacing,
	}
	start := track.Start()
	start.Pos2D = start.Ahead(0, c.StartOffset)
	bot.SetPose2D(start)
	s := New(track, bot)
	adc := s.adc
	adc.Noise = c.Noise
	adc.rnd.Seed(c.Seed)
	return s, nil
}

// Sim implements linefollow.Hardware on a simulated bot, and advances
// the bot in the post processing stage of the loop.
type Sim struct {
	Track Track
	Bot   *Bot
	ObjectsChangeCaster

	adc      *ADC
	pins     map[string]string
	lines    map[string]*Line
	lastTime time.Time
}

// New creates a Sim.
func New(track Track, bot *Bot) *Sim {
	return &Sim{
		Track: track,
		Bot:   bot,
		adc:   NewADC(bot, track, 1),
		pins:  map[string]string{SideLeft: SideLeft, SideRight: SideRight},
		lines: make(map[string]*Line),
	}
}

// MapPin makes the GPIO name pin read the sensor on side.
func (s *Sim) MapPin(pin, side string) {
	s.pins[pin] = side
}

// Line implements linefollow.Hardware. The name is either a sensor
// side or a pin mapped by MapPin.
func (s *Sim) Line(name string) (sensor.DigitalLine, error) {
	side, ok := s.pins[name]
	if !ok {
		return nil, fmt.Errorf("unknown line %q", name)
	}
	l := &Line{Bot: s.Bot, Track: s.Track, Side: side}
	s.lines[side] = l
	return l, nil
}

// ADC implements linefollow.Hardware.
func (s *Sim) ADC() (sensor.ADC, error) {
	return s.adc, nil
}

// Motors implements linefollow.Hardware.
func (s *Sim) Motors() (motor.Actuator, error) {
	return s.Bot, nil
}

// AddToLoop implements LoopAdder.
func (s *Sim) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvPostProc, fx.ControlFunc(s.Execute))
}

// Execute advances the bot by the time elapsed since the last tick.
func (s *Sim) Execute(cc fx.ControlContext) error {
	now := cc.Time()
	if !s.lastTime.IsZero() {
		s.Step(now.Sub(s.lastTime))
	}
	s.lastTime = now
	s.ObjectsChanged(cc, s.Bot)
	return nil
}

// Step advances the bot for dt.
func (s *Sim) Step(dt time.Duration) Pose2D {
	pose := s.Bot.Advance(dt)
	if glog.V(3) {
		glog.Infof("sim: dt=%v pose=(%.1f, %.1f) %.1f° speeds=%s", dt, pose.X, pose.Y, pose.Orientation.Degrees(), s.Bot.Speeds())
	}
	return pose
}

// OnLine returns true when the axle center is over the line.
func (s *Sim) OnLine() bool {
	return s.Track.OnLine(s.Bot.Position2D().Pos2D)
}
