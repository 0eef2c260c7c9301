package stream

import (
	"context"
	"net"
	"net/url"

	"github.com/golang/glog"

	fx "github.com/robotalks/cdh.go/pkg/framework"
	"github.com/robotalks/cdh.go/pkg/l1/comm"
)

// Listener accepts tool connections over TCP.
type Listener struct {
	Addr   string
	Server *comm.Server
}

// NewListener creates a Listener on addr.
func NewListener(addr string, server *comm.Server) *Listener {
	return &Listener{Addr: addr, Server: server}
}

// Name implements fx.Named.
func (l *Listener) Name() string {
	return "tcp " + l.Addr
}

// Run accepts until ctx is done.
func (l *Listener) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", l.Addr)
	if err != nil {
		return err
	}
	glog.Infof("L1 on tcp://%s", ln.Addr())
	return fx.RunWithCloser(ctx, ln, func() error {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return err
			}
			go l.Server.Serve(New(conn))
		}
	})
}

// NewConnector creates a connector for a tcp://host:port URL.
func NewConnector(gatewayURL string) (*comm.DirectConnector, error) {
	u, err := url.Parse(gatewayURL)
	if err != nil {
		return nil, err
	}
	return comm.NewDirectConnector(gatewayURL, func(ctx context.Context) (comm.Transport, error) {
		var d net.Dialer
		conn, err := d.DialContext(ctx, "tcp", u.Host)
		if err != nil {
			return nil, err
		}
		return New(conn), nil
	})
}
