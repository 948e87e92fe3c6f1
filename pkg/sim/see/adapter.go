// Package see reports the simulated world as JSON lines, in the
// message format of github.com/robotalks/see.
package see

import (
	"encoding/json"
	"io"

	fx "github.com/robotalks/linebot/pkg/framework"
	"github.com/robotalks/linebot/pkg/sim"
)

// Adapter collects object changes and reports them in the post
// processing stage.
type Adapter struct {
	Config *Config
	Mapper ObjectMapper
	Track  sim.Track

	enc     *json.Encoder
	initial bool
	updated map[string]sim.Object
}

// NewAdapter creates the adapter.
func NewAdapter(config *Config, w io.Writer) *Adapter {
	return &Adapter{
		Config:  config,
		Mapper:  MapObjectFunc(BotObjects),
		enc:     json.NewEncoder(w),
		initial: true,
	}
}

// Subscribe is a helper to subscribe object changes.
func (a *Adapter) Subscribe(sub sim.ObjectsChangeSubscriber) *Adapter {
	sub.SubscribeObjectsChange(a)
	return a
}

// ObjectsChanged implements ObjectsChangeListener.
func (a *Adapter) ObjectsChanged(cc fx.ControlContext, objs ...sim.Object) {
	if a.updated == nil {
		a.updated = make(map[string]sim.Object)
	}
	for _, obj := range objs {
		a.updated[obj.Name()] = obj
	}
}

// AddToLoop implements LoopAdder.
func (a *Adapter) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvPostProc, fx.ControlFunc(a.ReportChanges))
}

// ReportChanges is a controller to report changes.
func (a *Adapter) ReportChanges(cc fx.ControlContext) error {
	var msgs []Message
	if a.initial {
		msgs = append(msgs, Message{Action: ActionReset})
		if a.Track != nil {
			msgs = append(msgs, Message{Action: ActionObject, Object: TrackObject(a.Track)})
		}
		a.initial = false
	} else if every := uint64(a.Config.Every); every > 1 && cc.Tick()%every != 0 {
		return nil
	}

	for _, obj := range a.updated {
		if vo, ok := obj.(VisibleObject); ok {
			for _, mapped := range a.Mapper.MapObject(vo) {
				if mapped == nil {
					continue
				}
				msgs = append(msgs, Message{Action: ActionObject, Object: mapped})
			}
		}
	}
	a.updated = nil
	if len(msgs) == 0 {
		return nil
	}
	return a.enc.Encode(msgs)
}
