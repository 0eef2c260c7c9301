// Package connector opens the tool side of L1 from flags and environment.
package connector

import (
	"flag"
	"fmt"
	"net/url"

	"github.com/robotalks/cdh.go/pkg/l1"
	"github.com/robotalks/cdh.go/pkg/l1/comm/mqtt"
	"github.com/robotalks/cdh.go/pkg/l1/comm/stream"
	"github.com/robotalks/cdh.go/pkg/l1/comm/websocket"
	"github.com/robotalks/cdh.go/pkg/l1/env"
)

// Config tells where to find gateways and which one to use.
type Config struct {
	Gateway l1.GatewayRef
	// URL is an MQTT broker (mqtt://, mqtts://) or a gateway endpoint
	// (ws://host:port/l1, tcp://host:port).
	URL string
}

var defaultConfig = Config{
	Gateway: l1.GatewayRef{
		Type: env.Getenv("", "CDH_TYPE"),
		ID:   env.Getenv("", "CDH_ID"),
	},
	URL: env.Getenv("mqtt://localhost:1883/cdh/", "CDH_REGISTRY_URL"),
}

// SetupFlags registers the flags on the default config.
func SetupFlags() {
	c := &defaultConfig
	flag.StringVar(&c.Gateway.Type, "gw-type", c.Gateway.Type, "Gateway type to connect to")
	flag.StringVar(&c.Gateway.ID, "gw-id", c.Gateway.ID, "Gateway ID to connect to")
	flag.StringVar(&c.URL, "gw-reg", c.URL, "MQTT broker or gateway URL")
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

// NewConnector picks the connector by URL scheme.
func (c *Config) NewConnector() (l1.Connector, error) {
	u, err := url.Parse(c.URL)
	if err != nil {
		return nil, fmt.Errorf("gateway URL: %v", err)
	}
	var connector l1.Connector
	switch u.Scheme {
	case "mqtt", "mqtts":
		connector, err = mqtt.NewConnector(c.URL)
	case "ws":
		connector, err = websocket.NewConnector(c.URL)
	case "tcp":
		connector, err = stream.NewConnector(c.URL)
	default:
		err = fmt.Errorf("gateway URL: unsupported scheme %q", u.Scheme)
	}
	if err != nil {
		return nil, err
	}
	return connector, nil
}
