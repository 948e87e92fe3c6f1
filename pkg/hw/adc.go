package hw

import (
	"github.com/golang/glog"
	"periph.io/x/conn/v3/i2c"
)

// ADS1015 registers and config bits.
const (
	ADS1015DefaultAddr uint16 = 0x48

	regConversion byte = 0x00
	regConfig     byte = 0x01

	cfgOS        uint16 = 1 << 15
	cfgMuxSingle uint16 = 0x4 << 12
	cfgPGA4V     uint16 = 0x1 << 9
	cfgSingle    uint16 = 1 << 8
	cfgDR1600    uint16 = 0x4 << 5
	cfgNoComp    uint16 = 0x3
)

// ADS1015 implements sensor.ADC on a TI ADS1015 in single-shot mode.
// Only the four single-ended inputs are addressable, results are
// scaled down to 10 bits.
//
// A failed bus transaction is logged and recorded in Err, the pending
// conversion is then considered done and reads 0.
type ADS1015 struct {
	Dev *i2c.Dev

	mux uint16
	err error
}

// NewADS1015 creates the ADC on bus.
func NewADS1015(bus i2c.Bus, addr uint16) *ADS1015 {
	return &ADS1015{Dev: &i2c.Dev{Bus: bus, Addr: addr}}
}

// Err returns the last bus error and clears it.
func (a *ADS1015) Err() error {
	err := a.err
	a.err = nil
	return err
}

// SelectChannel implements sensor.ADC.
func (a *ADS1015) SelectChannel(n int) {
	a.mux = cfgMuxSingle | uint16(n&0x3)<<12
}

// StartConversion implements sensor.ADC.
func (a *ADS1015) StartConversion() {
	cfg := cfgOS | a.mux | cfgPGA4V | cfgSingle | cfgDR1600 | cfgNoComp
	a.tx([]byte{regConfig, byte(cfg >> 8), byte(cfg)}, nil)
}

// IsConversionDone implements sensor.ADC.
func (a *ADS1015) IsConversionDone() bool {
	var r [2]byte
	if !a.tx([]byte{regConfig}, r[:]) {
		return true
	}
	return uint16(r[0])<<8&cfgOS != 0
}

// ReadResult implements sensor.ADC.
func (a *ADS1015) ReadResult() int {
	var r [2]byte
	if !a.tx([]byte{regConversion}, r[:]) {
		return 0
	}
	v := int(int16(uint16(r[0])<<8|uint16(r[1]))) >> 4
	if v < 0 {
		return 0
	}
	return v >> 1
}

func (a *ADS1015) tx(w, r []byte) bool {
	if err := a.Dev.Tx(w, r); err != nil {
		glog.Errorf("ADS1015 %#x: %v", a.Dev.Addr, err)
		a.err = err
		return false
	}
	return true
}
