// Package comm runs the L1 protocol over packet transports: the gateway
// end (Registrar, Hub, Server) and the tool end (Conn).
package comm

// Transport moves L1 packets, each one an encoded msgs.Envelope.
// Implementations which are io.Closer are closed when the Pipe stops.
type Transport interface {
	ReadPacket() ([]byte, error)
	WritePacket([]byte) error
}
