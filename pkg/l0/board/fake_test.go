package board

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"periph.io/x/conn/v3/gpio"
)

func TestLine(t *testing.T) {
	var l Line
	require.Equal(t, gpio.Low, l.Read())
	require.NoError(t, l.Out(gpio.High))
	require.Equal(t, gpio.High, l.Read())
	require.Equal(t, 1, l.Writes())

	l.Set(gpio.Low)
	require.Equal(t, gpio.Low, l.Read())
	require.Equal(t, 1, l.Writes())

	fail := errors.New("broken")
	l.FailWith(fail)
	require.Equal(t, fail, l.Out(gpio.High))
	require.Equal(t, gpio.Low, l.Read())
	l.FailWith(nil)
	require.NoError(t, l.Out(gpio.High))
}

func TestLoopback(t *testing.T) {
	lines := NewLoopback().Lines()
	require.Equal(t, gpio.Low, lines.Sense.Read())
	require.NoError(t, lines.LED.Out(gpio.High))
	require.Equal(t, gpio.High, lines.Sense.Read())
}

func TestSimConfig(t *testing.T) {
	conf := NewConfig()
	conf.Sim = true
	lines, err := conf.Open()
	require.NoError(t, err)
	require.NoError(t, lines.LED.Out(gpio.High))
	require.Equal(t, gpio.High, lines.Sense.Read())
}
