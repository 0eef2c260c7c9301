package stream

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFramedPackets(t *testing.T) {
	var buf bytes.Buffer
	f := New(&buf)
	require.NoError(t, f.WritePacket([]byte{1, 2, 3}))
	require.NoError(t, f.WritePacket(nil))
	require.Equal(t, []byte{3, 0, 0, 0, 1, 2, 3, 0, 0, 0, 0}, buf.Bytes())

	pkt, err := f.ReadPacket()
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, pkt)
	pkt, err = f.ReadPacket()
	require.NoError(t, err)
	require.Empty(t, pkt)
	_, err = f.ReadPacket()
	require.Equal(t, io.EOF, err)
}

func TestPacketTooLarge(t *testing.T) {
	var buf bytes.Buffer
	f := New(&buf)
	require.Equal(t, ErrPacketTooLarge, f.WritePacket(make([]byte, MaxPacketSize+1)))

	binary.Write(&buf, binary.LittleEndian, uint32(MaxPacketSize+1))
	_, err := f.ReadPacket()
	require.Equal(t, ErrPacketTooLarge, err)
}

func TestTruncatedPacket(t *testing.T) {
	f := New(bytes.NewBuffer([]byte{4, 0, 0, 0, 1, 2}))
	_, err := f.ReadPacket()
	require.Equal(t, io.ErrUnexpectedEOF, err)
}
