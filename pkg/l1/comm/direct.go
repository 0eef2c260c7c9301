package comm

import (
	"context"
	"net/url"

	"github.com/golang/glog"

	"github.com/robotalks/cdh.go/pkg/l1"
)

// DefaultGatewayType is the type every cdh gateway registers with.
const DefaultGatewayType = "cdh"

// DialFunc opens a point-to-point transport to a gateway.
type DialFunc func(context.Context) (Transport, error)

// DirectConnector reaches one gateway without a registry, e.g. over a
// websocket or TCP URL.
type DirectConnector struct {
	Info l1.GatewayInfo
	Dial DialFunc
}

// NewDirectConnector creates a DirectConnector for gatewayURL. The gateway
// ref comes from the "type" and "id" query parameters and defaults to
// "cdh" and the URL host.
func NewDirectConnector(gatewayURL string, dial DialFunc) (*DirectConnector, error) {
	u, err := url.Parse(gatewayURL)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	ref := l1.GatewayRef{Type: q.Get("type"), ID: q.Get("id")}
	if ref.Type == "" {
		ref.Type = DefaultGatewayType
	}
	if ref.ID == "" {
		ref.ID = u.Host
	}
	u.RawQuery = ""
	return &DirectConnector{
		Info: l1.GatewayInfo{Ref: ref, Meta: l1.GatewayMeta{Description: u.String()}},
		Dial: dial,
	}, nil
}

// Discover implements l1.Connector.
func (c *DirectConnector) Discover(context.Context) ([]l1.GatewayInfo, error) {
	return []l1.GatewayInfo{c.Info}, nil
}

// Connect implements l1.Connector. ref only matters for logging.
func (c *DirectConnector) Connect(ctx context.Context, ref l1.GatewayRef) (l1.Conn, error) {
	if ref.Valid() && ref != c.Info.Ref {
		glog.Warningf("%s is reached through %s", ref, c.Info.Meta.Description)
	}
	t, err := c.Dial(ctx)
	if err != nil {
		return nil, err
	}
	return NewConn(t).Start(), nil
}
