// Package gateway implements the L1 controller which owns the console
// end of the serial link and republishes telemetry to L2 tools.
package gateway

import (
	"flag"
	"io"
	"time"

	fx "github.com/robotalks/cdh.go/pkg/framework"
	"github.com/robotalks/cdh.go/pkg/l0/cdh"
	"github.com/robotalks/cdh.go/pkg/l0/serialport"
	"github.com/robotalks/cdh.go/pkg/l1"
	env "github.com/robotalks/cdh.go/pkg/l1/env/controller"
)

// Config defines the gateway configuration.
type Config struct {
	Serial serialport.Config `yaml:"serial"`
	L1     env.Config        `yaml:"l1"`

	ResyncTimeout time.Duration `yaml:"resync_timeout"`

	// Packet IDs must match the device.
	CountersPacketID cdh.PacketID `yaml:"counters_packet_id"`
	LEDPacketID      cdh.PacketID `yaml:"led_packet_id"`
}

var (
	defaultConfig = Config{
		ResyncTimeout:    DefaultResyncTimeout,
		CountersPacketID: cdh.DefaultCommandCountersID,
		LEDPacketID:      cdh.DefaultLEDTelemetryID,
	}

	configFile string
)

// SetupFlags sets command line flags.
func SetupFlags() {
	serialport.SetupFlags()
	env.SetupFlags()
	flag.StringVar(&configFile, "config", configFile, "YAML config file, flags on the command line take precedence.")
	flag.DurationVar(&defaultConfig.ResyncTimeout, "resync-timeout", defaultConfig.ResyncTimeout, "Drop a partial telemetry record after this duration.")
	flag.Var(&defaultConfig.CountersPacketID, "counters-id", "Packet ID of command counters telemetry.")
	flag.Var(&defaultConfig.LEDPacketID, "led-id", "Packet ID of LED state telemetry.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	conf.Serial = *serialport.Default()
	conf.L1 = *env.Default()
	return &conf
}

// ConfigFile returns the config file specified on command line.
func ConfigFile() string {
	return configFile
}

// LoadFile loads a YAML file. Flags already set in fs are kept.
func (c *Config) LoadFile(path string, fs *flag.FlagSet) error {
	saved := *c
	if err := fx.LoadYAMLFile(path, c); err != nil {
		return err
	}
	c.L1.Info = saved.L1.Info
	if fs != nil {
		fs.Visit(func(f *flag.Flag) {
			c.restore(f.Name, &saved)
		})
	}
	return nil
}

func (c *Config) restore(name string, saved *Config) {
	switch name {
	case "port":
		c.Serial.Name = saved.Serial.Name
	case "baud":
		c.Serial.Baud = saved.Serial.Baud
	case "read-timeout":
		c.Serial.ReadTimeout = saved.Serial.ReadTimeout
	case "mqtt":
		c.L1.MQTT = saved.L1.MQTT
	case "ws":
		c.L1.WS = saved.L1.WS
	case "tcp":
		c.L1.TCP = saved.L1.TCP
	case "resync-timeout":
		c.ResyncTimeout = saved.ResyncTimeout
	case "counters-id":
		c.CountersPacketID = saved.CountersPacketID
	case "led-id":
		c.LEDPacketID = saved.LEDPacketID
	}
}

// NewLink creates the link on an already opened port.
func (c *Config) NewLink(port io.ReadWriter) (*Link, error) {
	layouts, err := cdh.NewLayouts(c.CountersPacketID, c.LEDPacketID)
	if err != nil {
		return nil, err
	}
	link := NewLink(port, layouts)
	link.ResyncTimeout = c.ResyncTimeout
	link.ReadTimeout = c.Serial.ReadTimeout > 0
	return link, nil
}

// NewController opens the serial port and creates the controller
// registered with reg. The returned io.Closer closes the serial port.
func (c *Config) NewController(reg l1.Registrar) (*Controller, io.Closer, error) {
	port, err := c.Serial.Open()
	if err != nil {
		return nil, nil, err
	}
	link, err := c.NewLink(port)
	if err != nil {
		port.Close()
		return nil, nil, err
	}
	return NewController(link, reg), port, nil
}
