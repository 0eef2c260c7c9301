package main

import (
	"flag"
	"log"

	"github.com/golang/glog"

	fx "github.com/robotalks/cdh.go/pkg/framework"
	"github.com/robotalks/cdh.go/pkg/gateway"
	"github.com/robotalks/cdh.go/pkg/l1"
	env "github.com/robotalks/cdh.go/pkg/l1/env/controller"
)

func init() {
	env.SetGatewayMeta(l1.GatewayMeta{Description: "CDH Gateway"})
	gateway.SetupFlags()
}

func run() error {
	conf := gateway.NewConfig()
	if path := gateway.ConfigFile(); path != "" {
		if err := conf.LoadFile(path, flag.CommandLine); err != nil {
			return err
		}
	}
	e, err := conf.L1.NewEnv()
	if err != nil {
		return err
	}
	ctl, port, err := conf.NewController(e.Events)
	if err != nil {
		return err
	}
	defer port.Close()

	glog.Infof("gateway %s started", conf.L1.Info.Ref)
	loop := fx.NewLoop().Add(e, ctl)
	return fx.NewRunner().HandleSignals().Go(loop).Wait()
}

func main() {
	flag.Parse()
	if err := run(); err != nil {
		log.Fatalln(err)
	}
}
