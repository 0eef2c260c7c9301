// Package websocket carries L1 packets as binary websocket messages.
package websocket

import (
	"context"
	"net"
	"net/http"
	"net/url"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	fx "github.com/robotalks/cdh.go/pkg/framework"
	"github.com/robotalks/cdh.go/pkg/l1/comm"
)

// DefaultPath is where the gateway serves L1.
const DefaultPath = "/l1"

// Transport is a comm.Transport on a websocket connection.
type Transport struct {
	*websocket.Conn
}

// New wraps conn.
func New(conn *websocket.Conn) *Transport {
	return &Transport{Conn: conn}
}

// ReadPacket implements comm.Transport.
func (t *Transport) ReadPacket() ([]byte, error) {
	var pkt []byte
	err := websocket.Message.Receive(t.Conn, &pkt)
	return pkt, err
}

// WritePacket implements comm.Transport.
func (t *Transport) WritePacket(pkt []byte) error {
	return websocket.Message.Send(t.Conn, pkt)
}

// Handler serves each websocket connection with server.
func Handler(server *comm.Server) websocket.Handler {
	return func(conn *websocket.Conn) {
		server.Serve(New(conn))
	}
}

// Listener serves L1 over HTTP at Path.
type Listener struct {
	Addr   string
	Path   string
	Server *comm.Server
}

// NewListener creates a Listener at DefaultPath.
func NewListener(addr string, server *comm.Server) *Listener {
	return &Listener{Addr: addr, Path: DefaultPath, Server: server}
}

// Name implements fx.Named.
func (l *Listener) Name() string {
	return "ws " + l.Addr + l.Path
}

// Run serves until ctx is done.
func (l *Listener) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", l.Addr)
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle(l.Path, Handler(l.Server))
	srv := &http.Server{Handler: mux}
	glog.Infof("L1 on ws://%s%s", ln.Addr(), l.Path)
	return fx.RunWithCloser(ctx, srv, func() error {
		return srv.Serve(ln)
	})
}

// NewConnector creates a connector for a ws://host:port/path URL, the
// path defaults to DefaultPath.
func NewConnector(gatewayURL string) (*comm.DirectConnector, error) {
	u, err := url.Parse(gatewayURL)
	if err != nil {
		return nil, err
	}
	if u.Path == "" {
		u.Path = DefaultPath
	}
	u.RawQuery = ""
	target, origin := u.String(), "http://"+u.Host+"/"
	return comm.NewDirectConnector(gatewayURL, func(context.Context) (comm.Transport, error) {
		conn, err := websocket.Dial(target, "", origin)
		if err != nil {
			return nil, err
		}
		return New(conn), nil
	})
}
