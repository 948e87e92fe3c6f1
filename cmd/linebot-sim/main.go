package main

import (
	"flag"
	"log"

	"github.com/golang/glog"

	fx "github.com/robotalks/linebot/pkg/framework"
	"github.com/robotalks/linebot/pkg/linefollow"
	"github.com/robotalks/linebot/pkg/sim"
	"github.com/robotalks/linebot/pkg/sim/see"
	"github.com/robotalks/linebot/pkg/store"
)

func init() {
	linefollow.SetupFlags()
	sim.SetupFlags()
	see.SetupFlags()
	store.SetupFlags()
}

func main() {
	flag.Parse()
	defer glog.Flush()

	conf := linefollow.NewConfig()
	world, err := sim.NewConfig().NewSim()
	if err != nil {
		log.Fatalln(err)
	}
	world.MapPin(conf.Sensors.Left.Pin, sim.SideLeft)
	world.MapPin(conf.Sensors.Right.Pin, sim.SideRight)

	var rec linefollow.CalibrationRecorder
	if storeConf := store.NewConfig(); storeConf.Enabled() {
		st, err := storeConf.Open()
		if err != nil {
			log.Fatalln(err)
		}
		defer st.Close()
		rec = st
	}
	f, err := conf.StartFollower(world, rec)
	if err != nil {
		log.Fatalln(err)
	}

	runner := fx.NewRunner().HandleSignals()
	loop := conf.NewLoop().Add(f, world)
	if visConf := see.NewConfig(); visConf.Active() {
		vis, hub := visConf.NewAdapter()
		vis.Track = world.Track
		loop.Add(vis.Subscribe(world))
		if hub != nil {
			runner.Go(fx.NamedRun("see", hub))
		}
	}

	err = runner.Go(loop).Wait()
	if err != nil {
		glog.Error(err)
	}
}
