package device

import (
	"bytes"
	"flag"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"

	"github.com/robotalks/cdh.go/pkg/l0/board"
	"github.com/robotalks/cdh.go/pkg/l0/cdh"
)

const testConfigYAML = `
serial:
  name: /dev/ttyACM0
  baud: 115200
board:
  output_pin: GPIO17
  sim: true
pace: 20ms
counters_packet_id: 5
led_packet_id: 6
`

func writeConfig(t *testing.T, content string) string {
	dir, err := ioutil.TempDir("", "cdh-device")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	path := filepath.Join(dir, "device.yaml")
	require.NoError(t, ioutil.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFile(t *testing.T) {
	conf := NewConfig()
	require.NoError(t, conf.LoadFile(writeConfig(t, testConfigYAML), nil))
	require.Equal(t, "/dev/ttyACM0", conf.Serial.Name)
	require.Equal(t, 115200, conf.Serial.Baud)
	require.Equal(t, "GPIO17", conf.Board.OutputPin)
	require.Equal(t, "GPIO9", conf.Board.InputPin)
	require.True(t, conf.Board.Sim)
	require.Equal(t, 20*time.Millisecond, conf.Pace)
	require.Equal(t, cdh.DefaultCommandTimeout, conf.CommandTimeout)
	require.Equal(t, cdh.PacketID(5), conf.CountersPacketID)
	require.Equal(t, cdh.PacketID(6), conf.LEDPacketID)
}

func TestLoadFileFlagsWin(t *testing.T) {
	conf := NewConfig()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.IntVar(&conf.Serial.Baud, "baud", conf.Serial.Baud, "")
	fs.Var(&conf.LEDPacketID, "led-id", "")
	require.NoError(t, fs.Parse([]string{"-baud", "4800", "-led-id", "9"}))
	require.NoError(t, conf.LoadFile(writeConfig(t, testConfigYAML), fs))
	require.Equal(t, 4800, conf.Serial.Baud)
	require.Equal(t, cdh.PacketID(9), conf.LEDPacketID)
	require.Equal(t, "/dev/ttyACM0", conf.Serial.Name)
}

func TestLoadFileStrict(t *testing.T) {
	conf := NewConfig()
	require.Error(t, conf.LoadFile(writeConfig(t, "unknown_key: 1\n"), nil))
	require.Error(t, conf.LoadFile("/does/not/exist.yaml", nil))
}

func TestNewBridgeWith(t *testing.T) {
	conf := NewConfig()
	conf.CountersPacketID, conf.LEDPacketID = 3, 4
	conf.Pace = 0
	var port bytes.Buffer
	lines := board.NewLoopback().Lines()
	b, err := conf.NewBridgeWith(&port, lines)
	require.NoError(t, err)
	require.Equal(t, cdh.PacketID(3), b.State.Counters.PacketID)
	require.Equal(t, cdh.PacketID(4), b.State.LED.PacketID)

	b.Receiver.Feed([]byte{1, 0, 0, 0})
	handled, err := b.HandleCommand()
	require.NoError(t, err)
	require.True(t, handled)
	require.Equal(t, gpio.High, lines.Sense.Read())

	conf.LEDPacketID = 3
	_, err = conf.NewBridgeWith(&port, lines)
	require.Equal(t, cdh.ErrDuplicatedPacketID, err)
}
