// Package msgs defines the messages exchanged between the gateway and the
// operator tools.
//
// Every message travels in an Envelope encoded with protobuf. The envelope's
// type ID selects the message schema and tells events, commands and command
// replies apart; replies carry the sequence number of their command.
package msgs
