package sh

import (
	"fmt"
	"io"

	fx "github.com/robotalks/linebot/pkg/framework"
	"github.com/robotalks/linebot/pkg/linefollow"
	"github.com/robotalks/linebot/pkg/motor"
	"github.com/robotalks/linebot/pkg/pid"
	"github.com/robotalks/linebot/pkg/sensor"
	"github.com/robotalks/linebot/pkg/steering"
)

// Target creates the hardware to attach to.
type Target func() (linefollow.Hardware, error)

// Session is a follower attached to hardware, driven step by step.
type Session struct {
	Name     string
	Config   *linefollow.Config
	Hardware linefollow.Hardware
	Follower *linefollow.Follower
}

// SensorReading is the result of a single read of both sensors.
type SensorReading struct {
	Left        bool   `json:"left"`
	Right       bool   `json:"right"`
	LeftSample  *int   `json:"left_sample,omitempty"`
	RightSample *int   `json:"right_sample,omitempty"`
	Error       string `json:"error"`
}

// String implements fmt.Stringer.
func (r SensorReading) String() string {
	s := fmt.Sprintf("left=%v right=%v", r.Left, r.Right)
	if r.LeftSample != nil && r.RightSample != nil {
		s += fmt.Sprintf(" samples=%d/%d", *r.LeftSample, *r.RightSample)
	}
	return s + " " + r.Error
}

// TickResult is the outcome of a single control iteration.
type TickResult struct {
	Error   steering.Error `json:"error"`
	Lost    bool           `json:"lost"`
	State   pid.State      `json:"pid"`
	Command motor.Command  `json:"command"`
}

// String implements fmt.Stringer.
func (r TickResult) String() string {
	return fmt.Sprintf("error=%d lost=%v integral=%d derivative=%d correction=%d command=%s",
		r.Error, r.Lost, r.State.Integral, r.State.Derivative, r.State.Correction, r.Command)
}

// Attach builds the follower on the hardware and runs its startup.
// rec is optional and receives the calibrations.
func Attach(name string, conf *linefollow.Config, hw linefollow.Hardware, rec linefollow.CalibrationRecorder) (*Session, error) {
	f, err := conf.StartFollower(hw, rec)
	if err != nil {
		return nil, err
	}
	return &Session{Name: name, Config: conf, Hardware: hw, Follower: f}, nil
}

// Sensors reads both sensors once.
func (s *Session) Sensors() SensorReading {
	f := s.Follower
	r := SensorReading{Left: f.Left.Detect(), Right: f.Right.Detect()}
	if a, ok := f.Left.(*sensor.Analog); ok {
		v := int(a.Read())
		r.LeftSample = &v
	}
	if a, ok := f.Right.(*sensor.Analog); ok {
		v := int(a.Read())
		r.RightSample = &v
	}
	if e, ok := steering.Discretize(r.Left, r.Right); ok {
		r.Error = fmt.Sprintf("error=%d", e)
	} else {
		r.Error = "lost"
	}
	return r
}

// Calibrate recalibrates both analog sensors with n samples each.
func (s *Session) Calibrate(n int) ([]sensor.Calibration, error) {
	seed, err := sensor.ParseSeed(s.Config.Sensors.CalibrationSeed)
	if err != nil {
		return nil, err
	}
	f := s.Follower
	sides := []struct {
		name string
		sn   sensor.Sensor
	}{{"left", f.Left}, {"right", f.Right}}
	var cals []sensor.Calibration
	for _, side := range sides {
		a, ok := side.sn.(*sensor.Analog)
		if !ok {
			return nil, fmt.Errorf("calibration requires analog sensors")
		}
		cal, err := sensor.CalibrateAnalog(a, n, seed)
		if err != nil {
			return nil, err
		}
		if err := f.Calibrated(side.name, a.Channel, cal); err != nil {
			return nil, err
		}
		cals = append(cals, cal)
	}
	return cals, nil
}

// Motor sets both motor speeds directly.
func (s *Session) Motor(left, right int) error {
	cmd := motor.Command{Left: left, Right: right}
	if cmd.Left != motor.Clamp(cmd.Left) || cmd.Right != motor.Clamp(cmd.Right) {
		return fmt.Errorf("speeds must be within %d..%d", motor.MinSpeed, motor.MaxSpeed)
	}
	return cmd.Apply(s.Follower.Actuator)
}

// PIDStep feeds err into the PID controller of the follower.
func (s *Session) PIDStep(err int) (pid.State, error) {
	if err < int(steering.TurnLeft) || err > int(steering.TurnRight) {
		return pid.State{}, fmt.Errorf("error must be -1, 0 or 1")
	}
	s.Follower.PID.Step(err)
	return s.Follower.PID.State(), nil
}

// PIDState returns the PID state.
func (s *Session) PIDState() pid.State {
	return s.Follower.PID.State()
}

// Tick runs one control iteration.
func (s *Session) Tick() (TickResult, error) {
	cmd, err := s.Follower.Tick()
	return TickResult{
		Error:   s.Follower.SteeringError(),
		Lost:    s.Follower.Steering.Lost(),
		State:   s.Follower.PID.State(),
		Command: cmd,
	}, err
}

// Close stops the motors and releases the hardware.
func (s *Session) Close() error {
	errs := []error{motor.Command{}.Apply(s.Follower.Actuator)}
	if closer, ok := s.Hardware.(io.Closer); ok {
		errs = append(errs, closer.Close())
	}
	return fx.Aggregate(errs...)
}
