package gateway

import (
	"bytes"
	"flag"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/cdh.go/pkg/l0/cdh"
)

const testConfigYAML = `
serial:
  name: /dev/ttyUSB1
  read_timeout: 5ms
l1:
  mqtt: mqtt://broker:1883/bench/
  ws: :8080
resync_timeout: 20ms
counters_packet_id: 7
led_packet_id: 8
`

func writeConfig(t *testing.T, content string) string {
	dir, err := ioutil.TempDir("", "cdh-gateway")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	path := filepath.Join(dir, "gateway.yaml")
	require.NoError(t, ioutil.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFile(t *testing.T) {
	conf := NewConfig()
	ref := conf.L1.Info.Ref
	require.NoError(t, conf.LoadFile(writeConfig(t, testConfigYAML), nil))
	require.Equal(t, "/dev/ttyUSB1", conf.Serial.Name)
	require.Equal(t, 5*time.Millisecond, conf.Serial.ReadTimeout)
	require.Equal(t, "mqtt://broker:1883/bench/", conf.L1.MQTT)
	require.Equal(t, ":8080", conf.L1.WS)
	require.Equal(t, ref, conf.L1.Info.Ref)
	require.Equal(t, 20*time.Millisecond, conf.ResyncTimeout)
	require.Equal(t, cdh.PacketID(7), conf.CountersPacketID)
	require.Equal(t, cdh.PacketID(8), conf.LEDPacketID)
}

func TestLoadFileFlagsWin(t *testing.T) {
	conf := NewConfig()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.StringVar(&conf.L1.WS, "ws", conf.L1.WS, "")
	fs.Var(&conf.CountersPacketID, "counters-id", "")
	require.NoError(t, fs.Parse([]string{"-ws", ":9000", "-counters-id", "3"}))
	require.NoError(t, conf.LoadFile(writeConfig(t, testConfigYAML), fs))
	require.Equal(t, ":9000", conf.L1.WS)
	require.Equal(t, cdh.PacketID(3), conf.CountersPacketID)
	require.Equal(t, cdh.PacketID(8), conf.LEDPacketID)
}

func TestNewLink(t *testing.T) {
	conf := NewConfig()
	conf.Serial.ReadTimeout = 10 * time.Millisecond
	conf.ResyncTimeout = 30 * time.Millisecond
	var port bytes.Buffer
	link, err := conf.NewLink(&port)
	require.NoError(t, err)
	require.True(t, link.ReadTimeout)
	require.Equal(t, 30*time.Millisecond, link.ResyncTimeout)
	require.Equal(t, cdh.CommandCountersLayout, link.Parser.Layouts[cdh.DefaultCommandCountersID])

	conf.LEDPacketID = conf.CountersPacketID
	_, err = conf.NewLink(&port)
	require.Equal(t, cdh.ErrDuplicatedPacketID, err)
}
