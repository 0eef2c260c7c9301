package msgs

import (
	"encoding/json"
	"reflect"

	fx "github.com/robotalks/cdh.go/pkg/framework"
)

// Format renders msg for humans ("LEDState led_on:true") or as JSON.
func Format(msg fx.Message, asJSON bool) (string, error) {
	s, ok := msg.(Serializable)
	if !ok {
		return "", ErrNotSerializable
	}
	if asJSON {
		out, err := json.Marshal(s)
		return string(out), err
	}
	name := reflect.Indirect(reflect.ValueOf(s)).Type().Name()
	if text := s.String(); text != "" {
		return name + " " + text, nil
	}
	return name, nil
}
