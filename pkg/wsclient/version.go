package wsclient

import (
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/irothenbaum/websocket-client/pkg/client"
	"github.com/irothenbaum/websocket-client/pkg/envelope"
	"github.com/irothenbaum/websocket-client/pkg/events"
	"github.com/irothenbaum/websocket-client/pkg/heartbeat"
	"github.com/irothenbaum/websocket-client/pkg/lifecycle"
	"github.com/irothenbaum/websocket-client/pkg/log"
	"github.com/irothenbaum/websocket-client/pkg/schedule"
	"github.com/irothenbaum/websocket-client/pkg/transport"
)

// Version information for the wsclient module.
const (
	// Version is the current version of the wsclient module.
	Version = "1.0.0"

	// MinCompatibleVersion is the minimum version that is compatible with this version.
	MinCompatibleVersion = "1.0.0"
)

// ModuleVersion describes one sub-module.
type ModuleVersion struct {
	Version    string
	MinVersion string
}

// ModuleVersions returns the versions of every sub-module the session is
// built from.
func ModuleVersions() map[string]ModuleVersion {
	return map[string]ModuleVersion{
		"wsclient":  {Version, MinCompatibleVersion},
		"client":    {client.Version, client.MinCompatibleVersion},
		"heartbeat": {heartbeat.Version, heartbeat.MinCompatibleVersion},
		"envelope":  {envelope.Version, envelope.MinCompatibleVersion},
		"events":    {events.Version, events.MinCompatibleVersion},
		"schedule":  {schedule.Version, schedule.MinCompatibleVersion},
		"transport": {transport.Version, transport.MinCompatibleVersion},
		"lifecycle": {lifecycle.Version, lifecycle.MinCompatibleVersion},
		"log":       {log.Version, log.MinCompatibleVersion},
	}
}

// validateModuleVersions checks that every module is at or above its
// minimum compatible version.
func validateModuleVersions() error {
	for name, m := range ModuleVersions() {
		ok, err := isVersionCompatible(m.Version, m.MinVersion)
		if err != nil {
			return fmt.Errorf("module %s: %w", name, err)
		}
		if !ok {
			return fmt.Errorf("module %s version %s is below minimum compatible version %s",
				name, m.Version, m.MinVersion)
		}
	}
	return nil
}

func isVersionCompatible(version, minVersion string) (bool, error) {
	v, err := semver.NewVersion(version)
	if err != nil {
		return false, fmt.Errorf("parse version %q: %w", version, err)
	}
	c, err := semver.NewConstraint(">= " + minVersion)
	if err != nil {
		return false, fmt.Errorf("parse minimum version %q: %w", minVersion, err)
	}
	return c.Check(v), nil
}
