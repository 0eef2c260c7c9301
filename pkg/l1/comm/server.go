package comm

import (
	"context"

	"github.com/golang/glog"
)

// Server turns every accepted tool connection into a Registrar of Hub.
// It must be added to the gateway Loop, Serve blocks until then.
type Server struct {
	Hub *Hub

	ctx     context.Context
	started chan struct{}
}

// NewServer creates a Server adding connections to hub.
func NewServer(hub *Hub) *Server {
	return &Server{Hub: hub, started: make(chan struct{})}
}

// Run implements fx.Runnable.
func (s *Server) Run(ctx context.Context) error {
	s.ctx = ctx
	close(s.started)
	<-ctx.Done()
	return ctx.Err()
}

// Serve handles one connection until it fails or the gateway stops.
func (s *Server) Serve(t Transport) error {
	<-s.started
	reg := NewRegistrar(t)
	s.Hub.Add(reg)
	defer s.Hub.Remove(reg)
	glog.V(2).Info("tool connected")
	err := reg.Run(s.ctx)
	glog.V(2).Infof("tool disconnected: %v", err)
	return err
}
