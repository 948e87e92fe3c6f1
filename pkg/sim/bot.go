package sim

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/robotalks/linebot/pkg/motor"
)

// Sensor sides.
const (
	SideLeft  = "left"
	SideRight = "right"
)

// Bot is a differential drive robot with two line sensors mounted
// ahead of the wheel axle. It implements motor.Actuator.
type Bot struct {
	ID   string
	Size Size2D
	// WheelBase is the distance (mm) between the wheels.
	WheelBase float64
	// SpeedMax is the wheel speed (mm/s) at 100%.
	SpeedMax float64
	// SensorOffset is the distance (mm) of the sensors ahead of the axle.
	SensorOffset float64
	// SensorSpacing is the distance (mm) between the sensors.
	SensorSpacing float64

	pose        Pose2D
	left, right int
	lock        sync.RWMutex
}

// Name implements Object.
func (b *Bot) Name() string {
	return b.ID
}

// OutlineRect implements Rectangular.
func (b *Bot) OutlineRect() Rect {
	return Rect{
		Pos2D:  Pos2D{X: -b.Size.CX / 2, Y: -b.Size.CY / 2},
		Size2D: b.Size,
	}
}

// Position2D implements Positionable2D.
func (b *Bot) Position2D() Pose2D {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return b.pose
}

// SetPose2D implements Placeable2D.
func (b *Bot) SetPose2D(pose Pose2D) Pose2D {
	b.lock.Lock()
	b.pose = pose
	b.lock.Unlock()
	return pose
}

// SetLeftSpeed implements motor.Actuator.
func (b *Bot) SetLeftSpeed(percent int) error {
	return b.setSpeed(&b.left, percent)
}

// SetRightSpeed implements motor.Actuator.
func (b *Bot) SetRightSpeed(percent int) error {
	return b.setSpeed(&b.right, percent)
}

// Speeds returns the current wheel speeds in percent.
func (b *Bot) Speeds() motor.Command {
	b.lock.RLock()
	defer b.lock.RUnlock()
	return motor.Command{Left: b.left, Right: b.right}
}

// SensorPos returns the position of the sensor on side.
func (b *Bot) SensorPos(side string) Pos2D {
	lateral := b.SensorSpacing / 2
	if side == SideRight {
		lateral = -lateral
	}
	return b.Position2D().Ahead(b.SensorOffset, lateral)
}

// Advance moves the bot for dt at the current wheel speeds.
func (b *Bot) Advance(dt time.Duration) Pose2D {
	b.lock.Lock()
	defer b.lock.Unlock()
	secs := dt.Seconds()
	vl := float64(b.left) * b.SpeedMax / motor.MaxSpeed
	vr := float64(b.right) * b.SpeedMax / motor.MaxSpeed
	v, w := (vl+vr)/2, (vr-vl)/b.WheelBase
	pose := b.pose
	if math.Abs(w) < 1e-9 {
		pose.OffsetBy(pose.Orientation.Project(v * secs))
	} else {
		// exact arc around the instantaneous center of rotation
		r, th := v/w, pose.Orientation.Radians()
		pose.X += r * (math.Sin(th+w*secs) - math.Sin(th))
		pose.Y -= r * (math.Cos(th+w*secs) - math.Cos(th))
		pose.Orientation = pose.Orientation.AddRadians(w * secs)
	}
	b.pose = pose
	return pose
}

func (b *Bot) setSpeed(side *int, percent int) error {
	if percent != motor.Clamp(percent) {
		return fmt.Errorf("speed %d out of range", percent)
	}
	b.lock.Lock()
	*side = percent
	b.lock.Unlock()
	return nil
}
