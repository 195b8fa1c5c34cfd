// Package version provides the build version of the tools
package version

import "fmt"

// set by the linker
var (
	GitVersion = "v0.1.0"
	GitCommit  = ""
)

// Info describes the build
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit,omitempty"`
}

// Current returns the build version
func Current() Info {
	return Info{
		Version: GitVersion,
		Commit:  GitCommit,
	}
}

// String returns the version and the commit if set
func (i Info) String() string {
	if i.Commit == "" {
		return i.Version
	}
	return fmt.Sprintf("%s (%s)", i.Version, i.Commit)
}
