// cdhmon prints everything gateways publish on the broker.
package main

import (
	"flag"
	"log"
	"strings"

	fx "github.com/robotalks/cdh.go/pkg/framework"
	"github.com/robotalks/cdh.go/pkg/l1/comm/mqtt"
	env "github.com/robotalks/cdh.go/pkg/l1/env/controller"
	"github.com/robotalks/cdh.go/pkg/l1/msgs"
)

var (
	brokerURL = env.Default().MQTT
	asJSON    bool
)

func init() {
	flag.StringVar(&brokerURL, "mqtt", brokerURL, "MQTT broker URL.")
	flag.BoolVar(&asJSON, "json", asJSON, "Print messages as JSON.")
}

func show(topic string, payload []byte) {
	if strings.HasSuffix(topic, "/"+mqtt.MetaSuffix) {
		if len(payload) == 0 {
			log.Printf("%s: offline", topic)
		} else {
			log.Printf("%s: %s", topic, payload)
		}
		return
	}
	e, err := msgs.ParseEnvelope(payload)
	if err != nil {
		log.Printf("%s: malformed: %v", topic, err)
		return
	}
	msg, err := e.Unwrap()
	if err != nil {
		log.Printf("%s: #%d: %v", topic, e.Seq, err)
		return
	}
	out, err := msgs.Format(msg, asJSON)
	if err != nil {
		log.Printf("%s: %v", topic, err)
		return
	}
	log.Printf("%s: #%d %s", topic, e.Seq, out)
}

func run() error {
	session, err := mqtt.Dial(brokerURL)
	if err != nil {
		return err
	}
	session.Subscribe("#", show)
	return fx.NewRunner().HandleSignals().Go(fx.NamedRun("monitor", session)).Wait()
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)
	if err := run(); err != nil {
		log.Fatalln(err)
	}
}
