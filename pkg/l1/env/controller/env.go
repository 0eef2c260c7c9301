// Package controller wires a gateway to its L1 endpoints: an MQTT
// registration and optional websocket and TCP listeners.
package controller

import (
	"errors"
	"flag"
	"fmt"

	fx "github.com/robotalks/cdh.go/pkg/framework"
	"github.com/robotalks/cdh.go/pkg/l1"
	"github.com/robotalks/cdh.go/pkg/l1/comm"
	"github.com/robotalks/cdh.go/pkg/l1/comm/mqtt"
	"github.com/robotalks/cdh.go/pkg/l1/comm/stream"
	"github.com/robotalks/cdh.go/pkg/l1/comm/websocket"
	"github.com/robotalks/cdh.go/pkg/l1/env"
)

// DefaultBrokerURL is used unless CDH_MQTT_URL is set.
const DefaultBrokerURL = "mqtt://localhost:1883/cdh/"

// ErrNoEndpoint means the gateway would be unreachable.
var ErrNoEndpoint = errors.New("no MQTT broker, websocket or TCP address configured")

// Config selects how the gateway can be reached.
type Config struct {
	// Info is the identity, it comes from flags and the environment only.
	Info l1.GatewayInfo `yaml:"-"`

	// MQTT is the broker URL, e.g. mqtt://host:1883/prefix. Empty disables
	// the registration.
	MQTT string `yaml:"mqtt"`
	// WS is the listen address of the websocket endpoint, e.g. :8080.
	WS string `yaml:"ws"`
	// TCP is the listen address of the framed TCP endpoint.
	TCP string `yaml:"tcp"`
}

var defaultConfig = Config{
	Info: l1.GatewayInfo{Ref: l1.GatewayRef{
		Type: comm.DefaultGatewayType,
		ID:   env.Getenv("", "CDH_ID"),
	}},
	MQTT: env.Getenv(DefaultBrokerURL, "CDH_MQTT_URL"),
}

func init() {
	if defaultConfig.Info.Ref.ID == "" {
		defaultConfig.Info.Ref.ID = env.MachineID()
	}
}

// SetupFlags registers the flags on the default config.
func SetupFlags() {
	c := &defaultConfig
	flag.StringVar(&c.Info.Ref.Type, "type", c.Info.Ref.Type, "Gateway type")
	flag.StringVar(&c.Info.Ref.ID, "id", c.Info.Ref.ID, "Gateway ID, defaults to $CDH_ID or the machine ID")
	flag.StringVar(&c.Info.Meta.Description, "desc", c.Info.Meta.Description, "Gateway description")
	flag.StringVar(&c.MQTT, "mqtt", c.MQTT, "MQTT broker URL, empty disables MQTT")
	flag.StringVar(&c.WS, "ws", c.WS, "Websocket listen address")
	flag.StringVar(&c.TCP, "tcp", c.TCP, "TCP listen address")
}

// Default is the config flags are bound to.
func Default() *Config {
	return &defaultConfig
}

// NewConfig copies the default config.
func NewConfig() *Config {
	c := defaultConfig
	return &c
}

// SetGatewayMeta sets the metadata a binary registers with. Call it in init.
func SetGatewayMeta(meta l1.GatewayMeta) {
	defaultConfig.Info.Meta = meta
}

// Env holds the endpoints of a gateway. Add it to the gateway loop.
type Env struct {
	// Events fans out to every endpoint, give it to the gateway controller.
	Events *comm.Hub
	// Server is set when a listener is configured.
	Server    *comm.Server
	Listeners []fx.Runnable
}

// NewEnv creates the endpoints.
func (c *Config) NewEnv() (*Env, error) {
	if !c.Info.Ref.Valid() {
		return nil, fmt.Errorf("invalid gateway %q: type and id are required", c.Info.Ref)
	}
	e := &Env{Events: &comm.Hub{}}
	if c.MQTT != "" {
		reg, err := mqtt.NewRegistrar(c.MQTT, c.Info)
		if err != nil {
			return nil, fmt.Errorf("mqtt registrar: %v", err)
		}
		e.Events.Add(reg)
	}
	if c.WS != "" || c.TCP != "" {
		e.Server = comm.NewServer(e.Events)
	}
	if c.WS != "" {
		e.Listeners = append(e.Listeners, websocket.NewListener(c.WS, e.Server))
	}
	if c.TCP != "" {
		e.Listeners = append(e.Listeners, stream.NewListener(c.TCP, e.Server))
	}
	if len(e.Events.Registrars()) == 0 && e.Server == nil {
		return nil, ErrNoEndpoint
	}
	return e, nil
}

// AddToLoop implements fx.LoopAdder.
func (e *Env) AddToLoop(loop *fx.Loop) {
	loop.Add(e.Events, comm.RejectUnhandled{})
	if e.Server != nil {
		loop.AddRunnable(e.Server)
		loop.AddRunnable(e.Listeners...)
	}
}
