// Package l1 defines how operator tools find and talk to gateways, and how
// gateways publish to them.
package l1

import (
	"context"
	"strings"

	fx "github.com/robotalks/cdh.go/pkg/framework"
)

// GatewayRef names a gateway as "<type>/<id>".
type GatewayRef struct {
	Type string
	ID   string
}

// ParseGatewayRef parses "<type>/<id>".
func ParseGatewayRef(s string) (ref GatewayRef, ok bool) {
	ref.Type, ref.ID, ok = strings.Cut(s, "/")
	return ref, ok && ref.Valid() && !strings.Contains(ref.ID, "/")
}

func (r GatewayRef) String() string {
	return r.Type + "/" + r.ID
}

// Valid reports whether both parts are set.
func (r GatewayRef) Valid() bool {
	return r.Type != "" && r.ID != ""
}

// GatewayMeta is what a gateway tells about itself when registering.
type GatewayMeta struct {
	Description string            `json:"description,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
}

// GatewayInfo is a discovered or registering gateway.
type GatewayInfo struct {
	Ref  GatewayRef
	Meta GatewayMeta
}

// Registrar is the gateway end of the L1 link. Incoming commands are
// posted to the gateway loop as *CommandMsg.
type Registrar interface {
	// SendEvent publishes an event to every connected tool.
	SendEvent(context.Context, fx.Message) error
}

// Command is a received command waiting for its reply.
type Command interface {
	Msg() fx.Message
	// Reply sends the result, a *msgs.CommandErr for failures.
	Reply(fx.Message) error
}

// CommandMsg carries a Command through the gateway loop.
type CommandMsg struct {
	Command
}

// NewMessage implements fx.Message.
func (*CommandMsg) NewMessage() fx.Message { return new(CommandMsg) }

// Connector is the tool end: it finds gateways and connects to one.
type Connector interface {
	Discover(context.Context) ([]GatewayInfo, error)
	Connect(context.Context, GatewayRef) (Conn, error)
}

// Result is the outcome of a command. Err is set from a *msgs.CommandErr
// reply or when no reply came in time.
type Result struct {
	Msg fx.Message
	Err error
}

// Conn is a connection from a tool to one gateway.
type Conn interface {
	// Send sends a command. The channel yields exactly one Result.
	Send(fx.Message) <-chan Result
	// Watch installs the handler for events, nil stops watching.
	Watch(fx.MessageHandler)
	Close() error
}
