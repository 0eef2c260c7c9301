package main

import (
	"flag"
	"log"

	fx "github.com/robotalks/cdh.go/pkg/framework"
	"github.com/robotalks/cdh.go/pkg/l0/device"
)

func init() {
	device.SetupFlags()
}

func run() error {
	conf := device.NewConfig()
	if path := device.ConfigFile(); path != "" {
		if err := conf.LoadFile(path, flag.CommandLine); err != nil {
			return err
		}
	}
	bridge, port, err := conf.NewBridge()
	if err != nil {
		return err
	}
	defer port.Close()
	return fx.NewRunner().HandleSignals().Go(bridge).Wait()
}

func main() {
	flag.Parse()
	if err := run(); err != nil {
		log.Fatalln(err)
	}
}
