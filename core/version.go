package core

import "runtime"

type VersionInfo struct {
	Version  string `json:"version"`
	Revision string `json:"revision"`
	Build    string `json:"build"`
}

var Version VersionInfo = VersionInfo{Version: "dev"}

func SetVersion(version, revision, build string) {
	Version = VersionInfo{
		Version:  version,
		Revision: revision,
		Build:    build,
	}
}

// ServerHeader is the value of the Server response header.
func (v VersionInfo) ServerHeader() string {
	return "werewolf-room-server/" + v.Version + " " + runtime.Version() + " (" + runtime.GOOS + "; " + runtime.GOARCH + ")"
}
