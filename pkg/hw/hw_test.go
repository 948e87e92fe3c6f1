package hw

import (
	"testing"

	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/gpio/gpiotest"
	"periph.io/x/conn/v3/i2c/i2ctest"

	"github.com/robotalks/linebot/pkg/sensor"
)

func TestParsePull(t *testing.T) {
	testCases := []struct {
		in     string
		expect gpio.Pull
	}{
		{"", gpio.Float},
		{"float", gpio.Float},
		{"Up", gpio.PullUp},
		{"down", gpio.PullDown},
	}
	for _, tc := range testCases {
		pull, err := ParsePull(tc.in)
		require.NoError(t, err)
		require.Equal(t, tc.expect, pull)
	}
	_, err := ParsePull("strong")
	require.Error(t, err)
}

func TestLine(t *testing.T) {
	pin := &gpiotest.Pin{N: "GPIO17"}
	l := NewLine(pin, gpio.Float)
	require.NoError(t, l.Configure())
	require.Equal(t, gpio.Float, pin.P)

	pin.L = gpio.High
	require.True(t, l.ReadLine())
	pin.L = gpio.Low
	require.False(t, l.ReadLine())

	d := sensor.NewDigital(l)
	require.NoError(t, d.Init())
	pin.L = gpio.High
	require.True(t, d.Detect())
}

func TestADS1015Convert(t *testing.T) {
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x48, W: []byte{0x01, 0xd3, 0x83}},
			{Addr: 0x48, W: []byte{0x01}, R: []byte{0x53, 0x83}},
			{Addr: 0x48, W: []byte{0x01}, R: []byte{0xd3, 0x83}},
			{Addr: 0x48, W: []byte{0x00}, R: []byte{0x5d, 0xc0}},
		},
		DontPanic: true,
	}
	adc := NewADS1015(bus, ADS1015DefaultAddr)
	require.Equal(t, 750, sensor.Convert(adc, 1))
	require.NoError(t, adc.Err())
	require.NoError(t, bus.Close())
}

func TestADS1015NegativeReadsZero(t *testing.T) {
	bus := &i2ctest.Playback{
		Ops: []i2ctest.IO{
			{Addr: 0x48, W: []byte{0x00}, R: []byte{0xff, 0xf0}},
		},
		DontPanic: true,
	}
	adc := NewADS1015(bus, ADS1015DefaultAddr)
	require.Equal(t, 0, adc.ReadResult())
}

func TestADS1015BusError(t *testing.T) {
	bus := &i2ctest.Playback{DontPanic: true}
	adc := NewADS1015(bus, ADS1015DefaultAddr)
	require.Equal(t, 0, sensor.Convert(adc, 0))
	require.Error(t, adc.Err())
	require.NoError(t, adc.Err())
}

func TestBoard(t *testing.T) {
	require.NoError(t, gpioreg.Register(&gpiotest.Pin{N: "LINEBOT_TEST_PIN", L: gpio.High}))
	conf := NewConfig()
	conf.Pull = "up"
	board, err := conf.NewBoard()
	require.NoError(t, err)

	l, err := board.Line("LINEBOT_TEST_PIN")
	require.NoError(t, err)
	require.NoError(t, l.Configure())
	require.True(t, l.ReadLine())
	_, err = board.Line("NO_SUCH_PIN")
	require.Error(t, err)

	board.Config.MotorBus = "spi"
	_, err = board.Motors()
	require.Error(t, err)
	require.NoError(t, board.Close())

	conf.Pull = "sideways"
	_, err = conf.NewBoard()
	require.Error(t, err)
}
