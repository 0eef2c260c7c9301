// Package cdh provides the L0 command and data handling protocol.
package cdh

// L0 CDH protocol is spoken between the device and a ground console over
// a byte-oriented serial link. There is no framing and no checksum:
//
// Console -> Device: a command is exactly 4 bytes, a little-endian uint32
// opcode (see Opcode).
//
// Device -> Console: once per loop iteration two telemetry records are
// written back to back, LED state first, then command counters. Each record
// starts with its own length and packet ID:
//
//	LEDTelemetry     [len=3][id][led]
//	CommandCounters  [len=10][id][commands u32 LE][invalid u32 LE]
//
// The console must know the layout of every packet ID out of band
// (see Layouts and Parser).
//
// Producer: device (Bridge)
// Consumer: console (Parser)
