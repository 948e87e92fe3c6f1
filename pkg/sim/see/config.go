package see

import (
	"flag"
	"io"
	"os"
)

// Config represents configuration for see.
type Config struct {
	Enabled bool
	// Listen is the address to stream reports over websocket.
	Listen string
	// Every reports one tick out of Every.
	Every int
}

var defaultConfig = Config{
	Every: 10,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.BoolVar(&defaultConfig.Enabled, "see", defaultConfig.Enabled, "Report the simulated world as JSON lines on stdout.")
	flag.StringVar(&defaultConfig.Listen, "see-listen", defaultConfig.Listen, "Address to stream reports over websocket, e.g. :3500.")
	flag.IntVar(&defaultConfig.Every, "see-every", defaultConfig.Every, "Report once every N ticks.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a default config.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Active returns true when reports have any destination.
func (c *Config) Active() bool {
	return c.Enabled || c.Listen != ""
}

// NewAdapter creates adapter writing to stdout when enabled, and to a
// Hub when Listen is set. The Hub must be run to serve clients.
func (c *Config) NewAdapter() (*Adapter, *Hub) {
	var writers []io.Writer
	if c.Enabled {
		writers = append(writers, os.Stdout)
	}
	var hub *Hub
	if c.Listen != "" {
		hub = NewHub(c.Listen)
		writers = append(writers, hub)
	}
	return c.NewAdapterTo(io.MultiWriter(writers...)), hub
}

// NewAdapterTo creates adapter writing to w.
func (c *Config) NewAdapterTo(w io.Writer) *Adapter {
	return NewAdapter(c, w)
}
