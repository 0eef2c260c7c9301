// Package serialport opens the serial link between device and console.
package serialport

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/golang/glog"
	"github.com/tarm/serial"
)

// Defaults
const (
	DefaultBaud        = 9600
	DefaultReadTimeout = 10 * time.Millisecond
)

// ErrNoPort indicates the port name is not configured.
var ErrNoPort = errors.New("serial port not specified")

// Config defines the serial port settings.
type Config struct {
	Name string `yaml:"name"`
	Baud int    `yaml:"baud"`
	// ReadTimeout makes Read return when no data is available,
	// the device loop relies on it to poll without blocking.
	ReadTimeout time.Duration `yaml:"read_timeout"`
}

var defaultConfig = Config{
	Baud:        DefaultBaud,
	ReadTimeout: DefaultReadTimeout,
}

func init() {
	if val := os.Getenv("CDH_SERIAL_PORT"); val != "" {
		defaultConfig.Name = val
	}
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Name, "port", defaultConfig.Name, "Serial port, e.g. /dev/ttyUSB0.")
	flag.IntVar(&defaultConfig.Baud, "baud", defaultConfig.Baud, "Serial port baud rate.")
	flag.DurationVar(&defaultConfig.ReadTimeout, "read-timeout", defaultConfig.ReadTimeout, "Serial port read timeout.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Open opens the port.
func (c *Config) Open() (io.ReadWriteCloser, error) {
	if c.Name == "" {
		return nil, ErrNoPort
	}
	baud := c.Baud
	if baud == 0 {
		baud = DefaultBaud
	}
	glog.Infof("opening serial port %s at %d baud", c.Name, baud)
	port, err := serial.OpenPort(&serial.Config{
		Name:        c.Name,
		Baud:        baud,
		ReadTimeout: c.ReadTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s error: %v", c.Name, err)
	}
	return port, nil
}
