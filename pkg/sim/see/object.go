package see

import (
	"strings"

	"github.com/robotalks/linebot/pkg/sim"
)

// VisibleObject is an object which can be visualized.
type VisibleObject interface {
	sim.Object
	sim.Rectangular
	sim.Positionable2D
}

// Object is the data model used to represents an object.
type Object map[string]interface{}

// Pos is a position.
type Pos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ObjectMapper maps VisibleObject into Object data model.
type ObjectMapper interface {
	MapObject(VisibleObject) []Object
}

// MapObjectFunc is the func form of ObjectMapper.
type MapObjectFunc func(VisibleObject) []Object

// MapObject implements ObjectMapper.
func (f MapObjectFunc) MapObject(obj VisibleObject) []Object {
	return f(obj)
}

// Message is the message for see.
type Message struct {
	Action string `json:"action"`
	Object Object `json:"object,omitempty"`
}

// Actions
const (
	ActionReset  = "reset"
	ActionObject = "object"
)

// Properties
const (
	PropID     = "id"
	PropType   = "type"
	PropOrigin = "origin"
	PropRadius = "radius"
	PropRotate = "rotate"
	PropWidth  = "width"
)

// ObjectID converts object name to ID.
func ObjectID(name string) string {
	return strings.Replace(name, "/", ".", -1)
}

// NewObject creates Object.
func NewObject(typ, id string) Object {
	o := make(Object)
	o[PropID] = id
	o[PropType] = typ
	return o
}

// ObjectFrom constructs an object from VisibleObject.
func ObjectFrom(typ string, vo VisibleObject) Object {
	rc, po := vo.OutlineRect(), vo.Position2D()
	rad := rc.CX
	if rc.CY > rad {
		rad = rc.CY
	}
	return NewObject(typ, ObjectID(vo.Name())).
		At(po.X, po.Y).
		Radius(rad / 2).
		Rotate(po.Orientation.Degrees())
}

// TrackObject describes the track.
func TrackObject(track sim.Track) Object {
	switch t := track.(type) {
	case *sim.RingTrack:
		return NewObject("ring", track.Name()).
			At(t.Center.X, t.Center.Y).
			Radius(t.Radius).
			With(PropWidth, t.Width)
	case *sim.StraightTrack:
		return NewObject("hline", track.Name()).
			At(0, 0).
			With(PropWidth, t.Width)
	}
	return NewObject("unknown", track.Name())
}

// BotObjects maps the bot and its sensors.
func BotObjects(vo VisibleObject) []Object {
	objs := []Object{ObjectFrom("linebot", vo)}
	if bot, ok := vo.(*sim.Bot); ok {
		for _, side := range []string{sim.SideLeft, sim.SideRight} {
			pos := bot.SensorPos(side)
			objs = append(objs, NewObject("sensor", ObjectID(bot.Name()+"/"+side)).
				At(pos.X, pos.Y).
				Radius(2))
		}
	}
	return objs
}

// At sets origin.
func (o Object) At(x, y float64) Object {
	o[PropOrigin] = &Pos{X: x, Y: y}
	return o
}

// Radius sets radius.
func (o Object) Radius(r float64) Object {
	o[PropRadius] = r
	return o
}

// Rotate sets rotate.
func (o Object) Rotate(deg float64) Object {
	o[PropRotate] = deg
	return o
}

// With sets a custom property.
func (o Object) With(key string, val interface{}) Object {
	o[key] = val
	return o
}
