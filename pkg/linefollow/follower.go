// Package linefollow ties sensors, the PID controller and the motors
// together into the line following control loop.
package linefollow

import (
	"github.com/golang/glog"

	fx "github.com/robotalks/linebot/pkg/framework"
	"github.com/robotalks/linebot/pkg/motor"
	"github.com/robotalks/linebot/pkg/pid"
	"github.com/robotalks/linebot/pkg/sensor"
	"github.com/robotalks/linebot/pkg/steering"
)

// DefaultBaseSpeed is the speed in percent of both motors when centered.
const DefaultBaseSpeed = 50

// CalibrationRecorder keeps the calibration history.
type CalibrationRecorder interface {
	RecordCalibration(side string, channel int, cal sensor.Calibration) error
}

// Follower is the line following controller. It owns the PID state
// for its whole lifetime.
type Follower struct {
	Left      sensor.Sensor
	Right     sensor.Sensor
	PID       *pid.Controller
	Actuator  motor.Actuator
	BaseSpeed int
	Steering  steering.Mapper

	// Startup hooks run once by Startup, in order.
	Startup []func() error
	// Recorder is optional, it receives every calibration.
	Recorder CalibrationRecorder

	left, right bool
	err         steering.Error
	command     motor.Command
}

// NewFollower creates a Follower with default gains and base speed.
func NewFollower(left, right sensor.Sensor, actuator motor.Actuator) *Follower {
	return &Follower{
		Left:      left,
		Right:     right,
		PID:       pid.New(pid.DefaultGains),
		Actuator:  actuator,
		BaseSpeed: DefaultBaseSpeed,
		Steering:  steering.Mapper{Policy: steering.HoldLast},
	}
}

// Name implements Named.
func (f *Follower) Name() string {
	return "linefollow"
}

// Init implements framework.Initializer. It runs the startup hooks,
// which must complete before the first tick.
func (f *Follower) Init() error {
	for _, hook := range f.Startup {
		if err := hook(); err != nil {
			return err
		}
	}
	return nil
}

// Calibrated reports a completed calibration of the sensor on side.
func (f *Follower) Calibrated(side string, channel int, cal sensor.Calibration) error {
	glog.Infof("%s sensor calibrated: %s", side, cal)
	if f.Recorder == nil {
		return nil
	}
	return f.Recorder.RecordCalibration(side, channel, cal)
}

// AddToLoop implements LoopAdder.
func (f *Follower) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvSense, fx.ControlFunc(f.sense))
	l.AddController(fx.PrLvControl, fx.ControlFunc(f.control))
	l.AddController(fx.PrLvAcuate, fx.ControlFunc(f.actuate))
}

// Tick runs one full iteration synchronously and returns the
// dispatched command.
func (f *Follower) Tick() (motor.Command, error) {
	f.sense(nil)
	f.control(nil)
	return f.command, f.actuate(nil)
}

// Command returns the last built command.
func (f *Follower) Command() motor.Command {
	return f.command
}

// SteeringError returns the last steering error.
func (f *Follower) SteeringError() steering.Error {
	return f.err
}

func (f *Follower) sense(fx.ControlContext) error {
	f.left, f.right = f.Left.Detect(), f.Right.Detect()
	return nil
}

func (f *Follower) control(fx.ControlContext) error {
	f.err = f.Steering.Map(f.left, f.right)
	correction := f.PID.Step(int(f.err))
	f.command = motor.Build(f.BaseSpeed, correction)
	if glog.V(2) {
		s := f.PID.State()
		glog.Infof("sensors=%v/%v error=%d lost=%v integral=%d derivative=%d correction=%d command=%s",
			f.left, f.right, f.err, f.Steering.Lost(), s.Integral, s.Derivative, s.Correction, f.command)
	}
	return nil
}

func (f *Follower) actuate(fx.ControlContext) error {
	return f.command.Apply(f.Actuator)
}
