package main

import (
	"github.com/robotalks/linebot/pkg/cli/sh"
	"github.com/robotalks/linebot/pkg/hw"
	"github.com/robotalks/linebot/pkg/linefollow"
	"github.com/robotalks/linebot/pkg/sim"
	"github.com/robotalks/linebot/pkg/store"

	_ "github.com/robotalks/linebot/pkg/cli/cmds/bench"
)

func init() {
	linefollow.SetupFlags()
	hw.SetupFlags()
	sim.SetupFlags()
	store.SetupFlags()

	sh.AddTarget("board", func() (linefollow.Hardware, error) {
		return hw.NewConfig().NewBoard()
	})
	sh.AddTarget("sim", func() (linefollow.Hardware, error) {
		world, err := sim.NewConfig().NewSim()
		if err != nil {
			return nil, err
		}
		conf := linefollow.Default()
		world.MapPin(conf.Sensors.Left.Pin, sim.SideLeft)
		world.MapPin(conf.Sensors.Right.Pin, sim.SideRight)
		return world, nil
	})
}

func main() {
	sh.Main()
}
