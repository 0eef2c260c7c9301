// Package sh is the interactive operator shell. Other packages add
// commands with AddCmds in init.
package sh

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/abiosoft/ishell"

	fx "github.com/robotalks/cdh.go/pkg/framework"
	"github.com/robotalks/cdh.go/pkg/l1"
	env "github.com/robotalks/cdh.go/pkg/l1/env/connector"
	"github.com/robotalks/cdh.go/pkg/l1/msgs"
)

// DefaultTimeout bounds discovery, connecting and each command.
const DefaultTimeout = 2 * time.Second

// ErrNotConnected is reported by commands needing a gateway.
var ErrNotConnected = errors.New("not connected")

const (
	shellKey   = "cdh.shell"
	idlePrompt = "cdh> "
)

var (
	evalOnly bool
	jsonOut  bool

	extraCmds []*ishell.Cmd
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Run the command given as arguments and exit.")
	flag.BoolVar(&jsonOut, "json", jsonOut, "Print results as JSON.")
}

// AddCmds registers commands for every Shell created afterwards.
func AddCmds(cmds ...*ishell.Cmd) {
	extraCmds = append(extraCmds, cmds...)
}

// Shell keeps at most one gateway connection.
type Shell struct {
	Interactive bool
	JSON        bool
	Timeout     time.Duration

	Config *env.Config
	// Connector overrides the one from Config.
	Connector l1.Connector

	ish  *ishell.Shell
	ref  l1.GatewayRef
	conn l1.Conn
}

// New creates a Shell with the builtin and registered commands.
func New(conf *env.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		JSON:        jsonOut,
		Timeout:     DefaultTimeout,
		Config:      conf,
		ish:         ishell.New(),
	}
	s.ish.Set(shellKey, s)
	s.ish.SetPrompt(idlePrompt)
	for _, cmd := range append(builtinCmds(), extraCmds...) {
		s.ish.AddCmd(cmd)
	}
	return s
}

// From returns the Shell running a command.
func From(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// Conn is the current connection, nil when disconnected.
func (s *Shell) Conn() l1.Conn {
	return s.conn
}

func (s *Shell) connector() (l1.Connector, error) {
	if s.Connector != nil {
		return s.Connector, nil
	}
	return s.Config.NewConnector()
}

// Discover lists the gateways of type typ, or all when typ is empty.
func (s *Shell) Discover(typ string) ([]l1.GatewayInfo, error) {
	connector, err := s.connector()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()
	found, err := connector.Discover(ctx)
	if err != nil || typ == "" {
		return found, err
	}
	matched := found[:0]
	for _, info := range found {
		if info.Ref.Type == typ {
			matched = append(matched, info)
		}
	}
	return matched, nil
}

// Connect replaces the current connection with one to ref.
func (s *Shell) Connect(ref l1.GatewayRef) error {
	connector, err := s.connector()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()
	conn, err := connector.Connect(ctx, ref)
	if err != nil {
		return fmt.Errorf("connect %s: %v", ref, err)
	}
	s.Disconnect()
	s.ref, s.conn = ref, conn
	s.ish.SetPrompt(ref.String() + "> ")
	return nil
}

// Disconnect closes the current connection if any.
func (s *Shell) Disconnect() {
	if s.conn == nil {
		return
	}
	if err := s.conn.Close(); err != nil {
		log.Printf("close %s: %v", s.ref, err)
	}
	s.ref, s.conn = l1.GatewayRef{}, nil
	s.ish.SetPrompt(idlePrompt)
}

// Send sends a command and waits for the reply.
func (s *Shell) Send(msg fx.Message) (fx.Message, error) {
	if s.conn == nil {
		return nil, ErrNotConnected
	}
	select {
	case res := <-s.conn.Send(msg):
		return res.Msg, res.Err
	case <-time.After(s.Timeout):
		return nil, fmt.Errorf("%T: no reply in %v", msg, s.Timeout)
	}
}

// Print writes msg the way the shell is configured to.
func (s *Shell) Print(c *ishell.Context, msg fx.Message) {
	if _, ok := msg.(*msgs.CommandOK); ok && !s.JSON {
		c.Println("OK")
		return
	}
	out, err := msgs.Format(msg, s.JSON)
	if err != nil {
		c.Err(err)
		return
	}
	c.Println(out)
}

// Exec sends msg and prints the reply or the error.
func Exec(c *ishell.Context, msg fx.Message) {
	s := From(c)
	reply, err := s.Send(msg)
	if err != nil {
		c.Err(err)
		return
	}
	s.Print(c, reply)
}

// Connected guards commands which need a gateway.
func Connected(fn func(*ishell.Context)) func(*ishell.Context) {
	return func(c *ishell.Context) {
		if From(c).conn == nil {
			c.Err(ErrNotConnected)
			return
		}
		fn(c)
	}
}

// Describe renders a gateway as "type/id: description".
func Describe(info l1.GatewayInfo) string {
	if info.Meta.Description == "" {
		return info.Ref.String()
	}
	return info.Ref.String() + ": " + info.Meta.Description
}

// choose picks the gateway to connect, asking when there are several.
func (s *Shell) choose(typ string) (l1.GatewayRef, error) {
	found, err := s.Discover(typ)
	switch {
	case err != nil:
		return l1.GatewayRef{}, err
	case len(found) == 0:
		return l1.GatewayRef{}, errors.New("no gateway found")
	case len(found) == 1:
		return found[0].Ref, nil
	case !s.Interactive:
		return l1.GatewayRef{}, fmt.Errorf("%d gateways found, name one", len(found))
	}
	names := make([]string, len(found))
	for n, info := range found {
		names[n] = Describe(info)
	}
	choice := s.ish.MultiChoice(names, "Connect to:")
	if choice < 0 {
		return l1.GatewayRef{}, errors.New("canceled")
	}
	return found[choice].Ref, nil
}

func builtinCmds() []*ishell.Cmd {
	return []*ishell.Cmd{
		{
			Name:    "discover",
			Aliases: []string{"ls"},
			Help:    "[TYPE] list gateways",
			Func: func(c *ishell.Context) {
				s := From(c)
				var typ string
				if len(c.Args) > 0 {
					typ = c.Args[0]
				}
				found, err := s.Discover(typ)
				if err != nil {
					c.Err(err)
					return
				}
				if s.JSON {
					if found == nil {
						found = []l1.GatewayInfo{}
					}
					out, err := json.Marshal(found)
					if err != nil {
						c.Err(err)
						return
					}
					c.Println(string(out))
					return
				}
				for _, info := range found {
					c.Println(Describe(info))
				}
			},
		},
		{
			Name:    "connect",
			Aliases: []string{"c"},
			Help:    "[TYPE/ID | TYPE] connect a gateway",
			Func: func(c *ishell.Context) {
				s := From(c)
				var arg string
				if len(c.Args) > 0 {
					arg = c.Args[0]
				}
				ref, ok := l1.ParseGatewayRef(arg)
				if !ok {
					var err error
					if ref, err = s.choose(arg); err != nil {
						c.Err(err)
						return
					}
				}
				if err := s.Connect(ref); err != nil {
					c.Err(err)
				}
			},
		},
		{
			Name:    "disconnect",
			Aliases: []string{"d"},
			Help:    "close the connection",
			Func: func(c *ishell.Context) {
				From(c).Disconnect()
			},
		},
	}
}

// Run connects the configured gateway if any, then runs args as one
// command or reads commands interactively.
func (s *Shell) Run(args ...string) error {
	defer s.Disconnect()
	if ref := s.Config.Gateway; ref.Valid() {
		if err := s.Connect(ref); err != nil {
			return err
		}
	}
	switch {
	case len(args) > 0:
		return s.ish.Process(args...)
	case s.Interactive:
		s.ish.Run()
		return nil
	}
	return errors.New("no command given")
}

// Main parses flags and runs a Shell on the default connector config.
func Main() {
	flag.Parse()
	if err := New(env.Default()).Run(flag.Args()...); err != nil {
		log.Fatalln(err)
	}
}
