// Package bench registers the commands to exercise the follower
// components one at a time.
package bench

import (
	"fmt"
	"strconv"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/linebot/pkg/cli/sh"
)

var (
	// SensorsCmd reads both sensors.
	SensorsCmd = ishell.Cmd{
		Name:    "sensors",
		Aliases: []string{"s"},
		Help:    "",
		Func: sh.MustBeAttached(func(c *ishell.Context, s *sh.Session) {
			sh.Print(c, s.Sensors())
		}),
	}

	// CalibrateCmd recalibrates analog sensors.
	CalibrateCmd = ishell.Cmd{
		Name:    "calibrate",
		Aliases: []string{"cal"},
		Help:    "[SAMPLES]",
		Func: sh.MustBeAttached(func(c *ishell.Context, s *sh.Session) {
			n := s.Config.Sensors.CalibrationSamples
			if len(c.Args) > 0 {
				val, err := strconv.Atoi(c.Args[0])
				if err != nil {
					c.Err(fmt.Errorf("Invalid SAMPLES: %v", err))
					return
				}
				n = val
			}
			cals, err := s.Calibrate(n)
			if err != nil {
				c.Err(err)
				return
			}
			if jsonOutput(c) {
				sh.Print(c, cals)
				return
			}
			for _, cal := range cals {
				c.Println(cal)
			}
		}),
	}

	// CalibrationsCmd lists recorded calibrations.
	CalibrationsCmd = ishell.Cmd{
		Name:    "calibrations",
		Aliases: []string{"cals"},
		Help:    "[left|right]",
		Func: func(c *ishell.Context) {
			st, err := sh.ShellFrom(c).OpenStore()
			if err != nil {
				c.Err(err)
				return
			}
			var side string
			if len(c.Args) > 0 {
				side = c.Args[0]
			}
			recs, err := st.Calibrations(side)
			if err != nil {
				c.Err(err)
				return
			}
			if jsonOutput(c) {
				sh.Print(c, recs)
				return
			}
			for _, rec := range recs {
				c.Println(rec)
			}
		},
	}

	// MotorCmd sets motor speeds.
	MotorCmd = ishell.Cmd{
		Name:    "motor",
		Aliases: []string{"m"},
		Help:    "LEFT(%) RIGHT(%)",
		Func: sh.MustBeAttached(func(c *ishell.Context, s *sh.Session) {
			if len(c.Args) < 2 {
				c.Err(fmt.Errorf("LEFT and RIGHT required"))
				return
			}
			left, err := strconv.Atoi(c.Args[0])
			if err != nil {
				c.Err(fmt.Errorf("Invalid LEFT: %v", err))
				return
			}
			right, err := strconv.Atoi(c.Args[1])
			if err != nil {
				c.Err(fmt.Errorf("Invalid RIGHT: %v", err))
				return
			}
			if err := s.Motor(left, right); err != nil {
				c.Err(err)
				return
			}
			c.Println("OK")
		}),
	}

	// PIDStepCmd feeds an error into the PID controller.
	PIDStepCmd = ishell.Cmd{
		Name:    "pid.step",
		Aliases: []string{"ps"},
		Help:    "ERROR(-1|0|1)",
		Func: sh.MustBeAttached(func(c *ishell.Context, s *sh.Session) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("ERROR required"))
				return
			}
			e, err := strconv.Atoi(c.Args[0])
			if err != nil {
				c.Err(fmt.Errorf("Invalid ERROR: %v", err))
				return
			}
			state, err := s.PIDStep(e)
			if err != nil {
				c.Err(err)
				return
			}
			sh.Print(c, state)
		}),
	}

	// PIDStateCmd shows the PID state.
	PIDStateCmd = ishell.Cmd{
		Name:    "pid.state",
		Aliases: []string{"pid"},
		Help:    "",
		Func: sh.MustBeAttached(func(c *ishell.Context, s *sh.Session) {
			sh.Print(c, s.PIDState())
		}),
	}

	// TickCmd runs control iterations.
	TickCmd = ishell.Cmd{
		Name:    "tick",
		Aliases: []string{"t"},
		Help:    "[COUNT]",
		Func: sh.MustBeAttached(func(c *ishell.Context, s *sh.Session) {
			count := 1
			if len(c.Args) > 0 {
				val, err := strconv.Atoi(c.Args[0])
				if err != nil || val <= 0 {
					c.Err(fmt.Errorf("Invalid COUNT: %s", c.Args[0]))
					return
				}
				count = val
			}
			for i := 0; i < count; i++ {
				res, err := s.Tick()
				if err != nil {
					c.Err(err)
					return
				}
				sh.Print(c, res)
			}
		}),
	}
)

func jsonOutput(c *ishell.Context) bool {
	return sh.ShellFrom(c).OutputJSON
}

func init() {
	sh.AddCmds(
		&SensorsCmd,
		&CalibrateCmd,
		&CalibrationsCmd,
		&MotorCmd,
		&PIDStepCmd,
		&PIDStateCmd,
		&TickCmd,
	)
}
