package main

import (
	"flag"
	"log"

	"github.com/golang/glog"

	fx "github.com/robotalks/linebot/pkg/framework"
	"github.com/robotalks/linebot/pkg/hw"
	"github.com/robotalks/linebot/pkg/linefollow"
	"github.com/robotalks/linebot/pkg/store"
)

func init() {
	linefollow.SetupFlags()
	hw.SetupFlags()
	store.SetupFlags()
}

func main() {
	flag.Parse()
	defer glog.Flush()
	if err := run(); err != nil {
		glog.Flush()
		log.Fatalln(err)
	}
}

func run() error {
	conf := linefollow.NewConfig()
	var rec linefollow.CalibrationRecorder
	if storeConf := store.NewConfig(); storeConf.Enabled() {
		st, err := storeConf.Open()
		if err != nil {
			return err
		}
		defer st.Close()
		rec = st
	}

	board, err := hw.NewConfig().NewBoard()
	if err != nil {
		return err
	}
	// the board is closed by StartFollower on failure
	f, err := conf.StartFollower(board, rec)
	if err != nil {
		return err
	}
	defer board.Close()
	glog.Infof("following: %s base=%d period=%v", conf.Gains, conf.BaseSpeed, conf.Period)

	return fx.NewRunner().
		HandleSignals().
		Go(conf.NewLoop().Add(f)).
		Wait()
}
