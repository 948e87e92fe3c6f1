package store

import (
	"flag"
	"os"
)

// Config defines where calibrations are recorded.
type Config struct {
	// Path is the database file, empty disables recording.
	Path string
}

var defaultConfig Config

func init() {
	defaultConfig.Path = os.Getenv("LINEBOT_CALIBRATION_DB")
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Path, "calibration-db", defaultConfig.Path, "Database file recording sensor calibrations.")
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

// Enabled returns true when a database file is configured.
func (c *Config) Enabled() bool {
	return c.Path != ""
}

// Open opens the configured database.
func (c *Config) Open() (*Store, error) {
	return Open(c.Path)
}
