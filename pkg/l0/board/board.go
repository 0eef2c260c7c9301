// Package board provides the digital lines used by the device.
package board

import (
	"flag"
	"fmt"

	"github.com/golang/glog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// OutputLine is a digital output.
type OutputLine interface {
	Out(l gpio.Level) error
}

// InputLine is a digital input.
type InputLine interface {
	Read() gpio.Level
}

// Lines are the lines wired to the device loop.
type Lines struct {
	// LED is driven by LED_ON/LED_OFF.
	LED OutputLine
	// Sense is sampled for LED telemetry.
	Sense InputLine
}

// Config defines which lines to use.
type Config struct {
	OutputPin string `yaml:"output_pin"`
	InputPin  string `yaml:"input_pin"`
	// Sim uses an in-memory loopback instead of real pins.
	Sim bool `yaml:"sim"`
}

var defaultConfig = Config{
	OutputPin: "GPIO7",
	InputPin:  "GPIO9",
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.OutputPin, "led-out", defaultConfig.OutputPin, "LED output pin name.")
	flag.StringVar(&defaultConfig.InputPin, "led-in", defaultConfig.InputPin, "LED sense input pin name.")
	flag.BoolVar(&defaultConfig.Sim, "sim", defaultConfig.Sim, "Simulate pins, the input line mirrors the output line.")
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

// Open opens the lines.
func (c *Config) Open() (*Lines, error) {
	if c.Sim {
		glog.Info("using simulated pins")
		return NewLoopback().Lines(), nil
	}
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("host init error: %v", err)
	}
	out := gpioreg.ByName(c.OutputPin)
	if out == nil {
		return nil, fmt.Errorf("unknown output pin %q", c.OutputPin)
	}
	in := gpioreg.ByName(c.InputPin)
	if in == nil {
		return nil, fmt.Errorf("unknown input pin %q", c.InputPin)
	}
	if err := out.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("setup output pin %s error: %v", out, err)
	}
	if err := in.In(gpio.Float, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("setup input pin %s error: %v", in, err)
	}
	glog.Infof("pins: LED=%s sense=%s", out, in)
	return &Lines{LED: out, Sense: in}, nil
}
