// Package bridge provides shell commands talking to a CDH gateway.
package bridge

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/cdh.go/pkg/cli/sh"
	fx "github.com/robotalks/cdh.go/pkg/framework"
	"github.com/robotalks/cdh.go/pkg/l0/cdh"
	"github.com/robotalks/cdh.go/pkg/l1/msgs"
)

// DefaultWatchDuration is how long watch prints events without arguments.
const DefaultWatchDuration = 5 * time.Second

// ParseOpcode parses a raw opcode in decimal, 0x hex or a known name.
func ParseOpcode(s string) (cdh.Opcode, error) {
	for _, op := range []cdh.Opcode{cdh.OpNoOp, cdh.OpLEDOn, cdh.OpLEDOff} {
		if s == op.String() {
			return op, nil
		}
	}
	val, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid opcode %q", s)
	}
	return cdh.Opcode(val), nil
}

func sendOpcodeCmd(name string, op cdh.Opcode, help string) ishell.Cmd {
	return ishell.Cmd{
		Name: name,
		Help: help,
		Func: sh.Connected(func(c *ishell.Context) {
			sh.Exec(c, msgs.NewSendOpcode(op))
		}),
	}
}

var (
	// LEDOnCmd turns the LED on.
	LEDOnCmd = sendOpcodeCmd("led.on", cdh.OpLEDOn, "turn LED on")
	// LEDOffCmd turns the LED off.
	LEDOffCmd = sendOpcodeCmd("led.off", cdh.OpLEDOff, "turn LED off")
	// NoOpCmd sends NO_OP, which only increments the command counter.
	NoOpCmd = sendOpcodeCmd("noop", cdh.OpNoOp, "send NO_OP")

	// OpCmd sends a raw opcode.
	OpCmd = ishell.Cmd{
		Name: "op",
		Help: "OPCODE (decimal, 0x hex or name)",
		Func: sh.Connected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("OPCODE required"))
				return
			}
			op, err := ParseOpcode(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			sh.Exec(c, msgs.NewSendOpcode(op))
		}),
	}

	// TelemetryCmd queries the latest telemetry.
	TelemetryCmd = ishell.Cmd{
		Name:    "tlm",
		Aliases: []string{"telemetry"},
		Help:    "show latest telemetry",
		Func: sh.Connected(func(c *ishell.Context) {
			sh.Exec(c, &msgs.TelemetryQuery{})
		}),
	}

	// WatchCmd prints telemetry events.
	WatchCmd = ishell.Cmd{
		Name: "watch",
		Help: "[SECONDS] print telemetry events",
		Func: sh.Connected(func(c *ishell.Context) {
			dur := DefaultWatchDuration
			if len(c.Args) > 0 {
				secs, err := strconv.ParseFloat(c.Args[0], 64)
				if err != nil || secs <= 0 {
					c.Err(fmt.Errorf("invalid SECONDS %q", c.Args[0]))
					return
				}
				dur = time.Duration(secs * float64(time.Second))
			}
			s := sh.From(c)
			conn := s.Conn()
			conn.Watch(fx.HandleMessageFunc(func(_ context.Context, msg fx.Message) {
				s.Print(c, msg)
			}))
			defer conn.Watch(nil)
			<-time.After(dur)
		}),
	}
)

func init() {
	sh.AddCmds(
		&LEDOnCmd,
		&LEDOffCmd,
		&NoOpCmd,
		&OpCmd,
		&TelemetryCmd,
		&WatchCmd,
	)
}
