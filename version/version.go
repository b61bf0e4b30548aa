// Package version reports which build of the timeline tools is running.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
)

// Version can be set at build time:
//
//	go build -ldflags "-X github.com/waveline/timeline/version.Version=$(git describe --dirty)"
var Version string

// Info describes a build.
type Info struct {
	Version   string `json:"version,omitempty" yaml:"version,omitempty"`
	Revision  string `json:"revision,omitempty" yaml:"revision,omitempty"`
	GoVersion string `json:"goVersion" yaml:"goVersion"`
	Platform  string `json:"platform" yaml:"platform"`
}

// Get returns the info of the running binary.
func Get() Info {
	return Info{
		Version:   Version,
		Revision:  revision(),
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// Short returns the version if one was set at build time and the VCS
// revision otherwise.
func (i Info) Short() string {
	switch {
	case i.Version != "":
		return i.Version
	case i.Revision != "":
		return i.Revision
	}
	return "devel"
}

func (i Info) String() string {
	return fmt.Sprintf("timeline %s (%s, %s)", i.Short(), i.GoVersion, i.Platform)
}

// revision returns the short VCS hash embedded by the go tool, suffixed with
// -dirty for builds of a modified tree.
func revision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	var hash string
	modified := false
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			hash = s.Value[:min(7, len(s.Value))]
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}
	if hash != "" && modified {
		return hash + "-dirty"
	}
	return hash
}
