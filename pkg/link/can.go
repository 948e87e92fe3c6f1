package link

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/golang/glog"
	"go.einride.tech/can"

	"github.com/robotalks/linebot/pkg/motor"
)

// DefaultCANID is the frame ID the motor firmware listens on.
const DefaultCANID uint32 = 0x120

// DefaultCANTimeout bounds a single frame transmission.
const DefaultCANTimeout = 5 * time.Millisecond

// FrameTransmitter sends CAN frames, e.g. socketcan.Transmitter.
type FrameTransmitter interface {
	TransmitFrame(context.Context, can.Frame) error
}

// CANMotorActuator implements motor.Actuator over a CAN bus.
// Each speed is a 2-byte frame: [code] [percent], using the same
// command codes as the serial link.
type CANMotorActuator struct {
	Transmitter FrameTransmitter
	ID          uint32
	Timeout     time.Duration

	closer io.Closer
}

// NewCANMotorActuator creates a CANMotorActuator. closer is closed by
// Close, it can be nil.
func NewCANMotorActuator(tx FrameTransmitter, closer io.Closer) *CANMotorActuator {
	return &CANMotorActuator{
		Transmitter: tx,
		ID:          DefaultCANID,
		Timeout:     DefaultCANTimeout,
		closer:      closer,
	}
}

// SetLeftSpeed implements motor.Actuator.
func (m *CANMotorActuator) SetLeftSpeed(percent int) error {
	return m.send(CodeSetLeftSpeed, percent)
}

// SetRightSpeed implements motor.Actuator.
func (m *CANMotorActuator) SetRightSpeed(percent int) error {
	return m.send(CodeSetRightSpeed, percent)
}

// Close implements io.Closer.
func (m *CANMotorActuator) Close() error {
	if m.closer != nil {
		return m.closer.Close()
	}
	return nil
}

func (m *CANMotorActuator) send(code byte, percent int) error {
	if percent != motor.Clamp(percent) {
		return fmt.Errorf("speed %d out of range", percent)
	}
	frame := can.Frame{ID: m.ID, Length: 2}
	frame.Data[0], frame.Data[1] = code, byte(percent)
	ctx := context.Background()
	if m.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.Timeout)
		defer cancel()
	}
	if err := m.Transmitter.TransmitFrame(ctx, frame); err != nil {
		return err
	}
	if glog.V(3) {
		glog.Infof("CAN %#x code=%x data=%d", frame.ID, code, percent)
	}
	return nil
}
