package mqtt

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/cdh.go/pkg/l1"
	"github.com/robotalks/cdh.go/pkg/l1/comm"
)

// DefaultDiscoverTimeout is how long Discover collects retained metadata.
const DefaultDiscoverTimeout = 500 * time.Millisecond

// Connector finds gateways through their retained metadata.
type Connector struct {
	BrokerURL       string
	DiscoverTimeout time.Duration
}

// NewConnector validates brokerURL and creates a Connector.
func NewConnector(brokerURL string) (*Connector, error) {
	if _, _, err := Options(brokerURL); err != nil {
		return nil, err
	}
	return &Connector{BrokerURL: brokerURL, DiscoverTimeout: DefaultDiscoverTimeout}, nil
}

// ParseMetaTopic returns the gateway of a "<type>/<id>/meta" topic.
func ParseMetaTopic(topic string) (l1.GatewayRef, bool) {
	name := strings.TrimSuffix(topic, "/"+MetaSuffix)
	if name == topic {
		return l1.GatewayRef{}, false
	}
	return l1.ParseGatewayRef(name)
}

// DecodeMeta decodes the payload of a meta topic. An empty payload means the
// gateway is gone.
func DecodeMeta(payload []byte) (meta l1.GatewayMeta, online bool, err error) {
	if len(payload) == 0 {
		return meta, false, nil
	}
	return meta, true, json.Unmarshal(payload, &meta)
}

// Discover implements l1.Connector.
func (c *Connector) Discover(ctx context.Context) ([]l1.GatewayInfo, error) {
	s, err := Dial(c.BrokerURL)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	found, done := make(chan l1.GatewayInfo, 16), make(chan struct{})
	sub := s.Subscribe("+/+/"+MetaSuffix, func(topic string, payload []byte) {
		ref, ok := ParseMetaTopic(topic)
		if !ok {
			return
		}
		meta, online, err := DecodeMeta(payload)
		if err != nil {
			glog.Warningf("%s: bad meta: %v", ref, err)
		}
		if online {
			select {
			case found <- l1.GatewayInfo{Ref: ref, Meta: meta}:
			case <-done:
			}
		}
	})
	defer sub.Close()
	defer close(done)

	wait := c.DiscoverTimeout
	if wait <= 0 {
		wait = DefaultDiscoverTimeout
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	var infos []l1.GatewayInfo
	for {
		select {
		case info := <-found:
			infos = append(infos, info)
		case <-timer.C:
			return infos, nil
		case <-ctx.Done():
			return infos, ctx.Err()
		}
	}
}

// Connect implements l1.Connector. The connection owns its own session.
func (c *Connector) Connect(ctx context.Context, ref l1.GatewayRef) (l1.Conn, error) {
	s, err := Dial(c.BrokerURL)
	if err != nil {
		return nil, err
	}
	t := ToolTransport(s, ref)
	t.own = true
	t.sub.Token.Wait()
	if err = t.sub.Token.Error(); err != nil {
		t.Close()
		return nil, err
	}
	return comm.NewConn(t).Start(), nil
}
