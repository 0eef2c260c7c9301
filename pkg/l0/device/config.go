// Package device assembles the device loop from configuration.
package device

import (
	"flag"
	"io"
	"time"

	fx "github.com/robotalks/cdh.go/pkg/framework"
	"github.com/robotalks/cdh.go/pkg/l0/board"
	"github.com/robotalks/cdh.go/pkg/l0/cdh"
	"github.com/robotalks/cdh.go/pkg/l0/serialport"
)

// Config defines the device configuration.
type Config struct {
	Serial serialport.Config `yaml:"serial"`
	Board  board.Config      `yaml:"board"`

	// Pace is each of the two pauses per loop iteration.
	Pace time.Duration `yaml:"pace"`
	// CommandTimeout drops partial commands.
	CommandTimeout time.Duration `yaml:"command_timeout"`

	CountersPacketID cdh.PacketID `yaml:"counters_packet_id"`
	LEDPacketID      cdh.PacketID `yaml:"led_packet_id"`
}

var (
	defaultConfig = Config{
		Pace:             cdh.DefaultPace,
		CommandTimeout:   cdh.DefaultCommandTimeout,
		CountersPacketID: cdh.DefaultCommandCountersID,
		LEDPacketID:      cdh.DefaultLEDTelemetryID,
	}

	configFile string
)

// SetupFlags sets command line flags.
func SetupFlags() {
	serialport.SetupFlags()
	board.SetupFlags()
	flag.StringVar(&configFile, "config", configFile, "YAML config file, flags on the command line take precedence.")
	flag.DurationVar(&defaultConfig.Pace, "pace", defaultConfig.Pace, "Pause between receiving and sending telemetry.")
	flag.DurationVar(&defaultConfig.CommandTimeout, "cmd-timeout", defaultConfig.CommandTimeout, "Drop a partial command after this duration.")
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
	conf.Board = *board.Default()
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
	case "led-out":
		c.Board.OutputPin = saved.Board.OutputPin
	case "led-in":
		c.Board.InputPin = saved.Board.InputPin
	case "sim":
		c.Board.Sim = saved.Board.Sim
	case "pace":
		c.Pace = saved.Pace
	case "cmd-timeout":
		c.CommandTimeout = saved.CommandTimeout
	case "counters-id":
		c.CountersPacketID = saved.CountersPacketID
	case "led-id":
		c.LEDPacketID = saved.LEDPacketID
	}
}

// NewState creates the device state with the configured packet IDs.
func (c *Config) NewState() (*cdh.State, error) {
	return cdh.NewState(c.CountersPacketID, c.LEDPacketID)
}

// NewBridgeWith creates the bridge on an already opened port and lines.
func (c *Config) NewBridgeWith(port io.ReadWriter, lines *board.Lines) (*cdh.Bridge, error) {
	state, err := c.NewState()
	if err != nil {
		return nil, err
	}
	b := cdh.NewBridge(port, lines.LED, lines.Sense)
	b.State = state
	b.Pace = c.Pace
	b.Receiver.Timeout = c.CommandTimeout
	return b, nil
}

// NewBridge opens the serial port and lines and creates the bridge.
// The returned io.Closer closes the serial port.
func (c *Config) NewBridge() (*cdh.Bridge, io.Closer, error) {
	lines, err := c.Board.Open()
	if err != nil {
		return nil, nil, err
	}
	port, err := c.Serial.Open()
	if err != nil {
		return nil, nil, err
	}
	b, err := c.NewBridgeWith(port, lines)
	if err != nil {
		port.Close()
		return nil, nil, err
	}
	return b, port, nil
}
