package mqtt

import (
	"context"
	"encoding/json"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/cdh.go/pkg/framework"
	"github.com/robotalks/cdh.go/pkg/l1"
	"github.com/robotalks/cdh.go/pkg/l1/comm"
)

// Registrar registers a gateway on the broker. The metadata is retained
// while the gateway runs and cleared on exit, or by the broker through the
// will message when the gateway disappears.
type Registrar struct {
	Session *Session
	Info    l1.GatewayInfo

	meta []byte
	reg  *comm.Registrar
}

// NewRegistrar creates a Registrar for info. It connects when run.
func NewRegistrar(brokerURL string, info l1.GatewayInfo) (*Registrar, error) {
	meta, err := json.Marshal(&info.Meta)
	if err != nil {
		return nil, err
	}
	opts, prefix, err := Options(brokerURL)
	if err != nil {
		return nil, err
	}
	metaTopic := Topic(info.Ref, MetaSuffix)
	opts.SetBinaryWill(prefix+metaTopic, nil, 1, true)
	if opts.ClientID == "" {
		opts.SetClientID("cdh:" + info.Ref.String())
	}
	r := &Registrar{Session: NewSession(opts, prefix), Info: info, meta: meta}
	r.Session.OnConnect = func(s *Session) {
		s.Client.Publish(s.Prefix+metaTopic, 1, true, r.meta)
	}
	r.reg = comm.NewRegistrar(GatewayTransport(r.Session, info.Ref))
	return r, nil
}

// SendEvent implements l1.Registrar.
func (r *Registrar) SendEvent(ctx context.Context, msg fx.Message) error {
	return r.reg.SendEvent(ctx, msg)
}

// Name implements fx.Named.
func (r *Registrar) Name() string {
	return "mqtt " + r.Info.Ref.String()
}

// Run connects and keeps the registration until ctx is done. Once
// connected, the client reconnects by itself.
func (r *Registrar) Run(ctx context.Context) error {
	if err := r.Session.Connect(); err != nil {
		glog.Errorf("%s: %v", r.Name(), err)
	}
	<-ctx.Done()
	if r.Session.Client.IsConnected() {
		if err := r.Session.PublishWait(Topic(r.Info.Ref, MetaSuffix), nil, true, time.Second); err != nil {
			glog.Warningf("%s: clear meta: %v", r.Name(), err)
		}
	}
	return r.Session.Close()
}

// AddToLoop implements fx.LoopAdder.
func (r *Registrar) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(r, r.reg)
}
