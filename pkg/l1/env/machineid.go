// Package env builds the L1 side of the binaries from flags and
// environment variables.
package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// AppID salts the machine ID so the raw host ID never leaves the machine.
const AppID = "cdh.go"

// MachineID is a stable short ID of this machine, or the host name when
// no machine ID can be read.
func MachineID() string {
	id, err := machineid.ProtectedID(AppID)
	if err == nil && len(id) >= 16 {
		return id[:16]
	}
	glog.Warningf("machine id: %v", err)
	host, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return host
}

// Getenv returns the first non-empty variable of names, or def.
func Getenv(def string, names ...string) string {
	for _, name := range names {
		if val := os.Getenv(name); val != "" {
			return val
		}
	}
	return def
}
