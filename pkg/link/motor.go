package link

import (
	"fmt"

	"github.com/robotalks/linebot/pkg/motor"
)

// Command codes understood by the motor firmware.
const (
	CodeSetLeftSpeed  byte = 0x01
	CodeSetRightSpeed byte = 0x02
)

// MotorActuator implements motor.Actuator over the link.
type MotorActuator struct {
	Writer *Writer
}

// NewMotorActuator creates a MotorActuator.
func NewMotorActuator(w *Writer) *MotorActuator {
	return &MotorActuator{Writer: w}
}

// SetLeftSpeed implements motor.Actuator.
func (m *MotorActuator) SetLeftSpeed(percent int) error {
	return m.send(CodeSetLeftSpeed, percent)
}

// SetRightSpeed implements motor.Actuator.
func (m *MotorActuator) SetRightSpeed(percent int) error {
	return m.send(CodeSetRightSpeed, percent)
}

// Close implements io.Closer.
func (m *MotorActuator) Close() error {
	return m.Writer.Close()
}

func (m *MotorActuator) send(code byte, percent int) error {
	if percent != motor.Clamp(percent) {
		return fmt.Errorf("speed %d out of range", percent)
	}
	return m.Writer.Send(code, byte(percent))
}
