// Package env provides the environment shared by controllers and
// connectors: identity and registry configuration.
package env

import (
	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// AppID keys the hashed machine ID so it's not exposed as-is.
const AppID = "kl200"

// MachineID retrieves the unique ID identifying the machine.
// It returns an empty string if the ID is unavailable.
func MachineID() string {
	id, err := machineid.ProtectedID(AppID)
	if err != nil {
		glog.Warningf("machine id unavailable: %v", err)
		return ""
	}
	return id[:16]
}
