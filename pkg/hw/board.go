package hw

import (
	"context"
	"flag"
	"fmt"

	"github.com/caarlos0/env/v6"
	"github.com/golang/glog"
	"go.bug.st/serial"
	"go.einride.tech/can/pkg/socketcan"
	"periph.io/x/conn/v3/driver/driverreg"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"

	fx "github.com/robotalks/linebot/pkg/framework"
	"github.com/robotalks/linebot/pkg/link"
	"github.com/robotalks/linebot/pkg/motor"
	"github.com/robotalks/linebot/pkg/sensor"
)

// Config defines the peripherals of the board.
type Config struct {
	Pull string `env:"LINEBOT_PULL"`
	// MotorBus selects the motor link: serial or can.
	MotorBus  string `env:"LINEBOT_MOTOR_BUS"`
	MotorPort string `env:"LINEBOT_MOTOR_PORT"`
	MotorBaud int    `env:"LINEBOT_MOTOR_BAUD"`
	CANIface  string `env:"LINEBOT_CAN_IFACE"`
	CANID     uint   `env:"LINEBOT_CAN_ID"`
	I2CBus    string `env:"LINEBOT_I2C_BUS"`
	ADCAddr   uint   `env:"LINEBOT_ADC_ADDR"`
}

// Motor buses
const (
	MotorBusSerial = "serial"
	MotorBusCAN    = "can"
)

// Defaults
const (
	DefaultMotorPort = "/dev/ttyAMA0"
	DefaultMotorBaud = 115200
	DefaultCANIface  = "can0"
)

var defaultConfig = Config{
	Pull:      "float",
	MotorBus:  MotorBusSerial,
	MotorPort: DefaultMotorPort,
	MotorBaud: DefaultMotorBaud,
	CANIface:  DefaultCANIface,
	CANID:     uint(link.DefaultCANID),
	ADCAddr:   uint(ADS1015DefaultAddr),
}

func init() {
	if err := env.Parse(&defaultConfig); err != nil {
		glog.Warningf("board env: %v", err)
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Pull, "pull", defaultConfig.Pull, "Pull of sensor lines: float, up, down.")
	flag.StringVar(&defaultConfig.MotorBus, "motor-bus", defaultConfig.MotorBus, "Link to the motor firmware: serial, can.")
	flag.StringVar(&defaultConfig.MotorPort, "motor-port", defaultConfig.MotorPort, "Serial port of the motor firmware.")
	flag.IntVar(&defaultConfig.MotorBaud, "motor-baud", defaultConfig.MotorBaud, "Baud rate of the motor serial port.")
	flag.StringVar(&defaultConfig.CANIface, "can-iface", defaultConfig.CANIface, "CAN interface of the motor firmware.")
	flag.UintVar(&defaultConfig.CANID, "can-id", defaultConfig.CANID, "CAN frame ID of motor commands.")
	flag.StringVar(&defaultConfig.I2CBus, "i2c-bus", defaultConfig.I2CBus, "I2C bus of the ADC, empty for the first one.")
	flag.UintVar(&defaultConfig.ADCAddr, "adc-addr", defaultConfig.ADCAddr, "I2C address of the ADS1015.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates the default configuration.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewBoard initializes the host drivers and creates the Board.
func (c *Config) NewBoard() (*Board, error) {
	pull, err := ParsePull(c.Pull)
	if err != nil {
		return nil, err
	}
	if _, err := driverreg.Init(); err != nil {
		return nil, fmt.Errorf("periph init: %v", err)
	}
	return &Board{Config: *c, pull: pull}, nil
}

// Board implements linefollow.Hardware on the host peripherals.
// Buses and ports are opened on first use.
type Board struct {
	Config Config

	pull   gpio.Pull
	bus    i2c.BusCloser
	adc    *ADS1015
	motors motorLink
}

type motorLink interface {
	motor.Actuator
	Close() error
}

// Line opens the GPIO pin by name.
func (b *Board) Line(name string) (sensor.DigitalLine, error) {
	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, fmt.Errorf("unknown pin %q", name)
	}
	return NewLine(pin, b.pull), nil
}

// ADC opens the I2C bus and returns the ADS1015 on it.
func (b *Board) ADC() (sensor.ADC, error) {
	if b.adc != nil {
		return b.adc, nil
	}
	bus, err := i2creg.Open(b.Config.I2CBus)
	if err != nil {
		return nil, err
	}
	b.bus = bus
	b.adc = NewADS1015(bus, uint16(b.Config.ADCAddr))
	return b.adc, nil
}

// Motors opens the link to the motor firmware.
func (b *Board) Motors() (motor.Actuator, error) {
	if b.motors != nil {
		return b.motors, nil
	}
	switch b.Config.MotorBus {
	case "", MotorBusSerial:
		port, err := serial.Open(b.Config.MotorPort, &serial.Mode{BaudRate: b.Config.MotorBaud})
		if err != nil {
			return nil, fmt.Errorf("%s: %v", b.Config.MotorPort, err)
		}
		glog.V(1).Infof("motor link on %s at %d baud", b.Config.MotorPort, b.Config.MotorBaud)
		b.motors = link.NewMotorActuator(link.NewWriter(port))
	case MotorBusCAN:
		conn, err := socketcan.DialContext(context.Background(), "can", b.Config.CANIface)
		if err != nil {
			return nil, fmt.Errorf("%s: %v", b.Config.CANIface, err)
		}
		glog.V(1).Infof("motor link on %s id=%#x", b.Config.CANIface, b.Config.CANID)
		m := link.NewCANMotorActuator(socketcan.NewTransmitter(conn), conn)
		m.ID = uint32(b.Config.CANID)
		b.motors = m
	default:
		return nil, fmt.Errorf("unknown motor bus: %q", b.Config.MotorBus)
	}
	return b.motors, nil
}

// Close stops the motors and releases the port and bus.
func (b *Board) Close() error {
	var errs []error
	if b.motors != nil {
		errs = append(errs, motor.Command{}.Apply(b.motors), b.motors.Close())
	}
	if b.bus != nil {
		errs = append(errs, b.bus.Close())
	}
	return fx.Aggregate(errs...)
}
