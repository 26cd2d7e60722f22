// Package version provides application version and build info.
//
//nolint:revive
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
)

var (
	// Version is overridden by ldflags at build time.
	Version = "dev"
	// CommitHash is overridden by ldflags at build time.
	CommitHash = ""
	// BuildTime is overridden by ldflags at build time.
	BuildTime = ""
)

// Info is the build description printed by the version command.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit,omitempty" yaml:"commit,omitempty"`
	BuildTime string `json:"build_time,omitempty" yaml:"build_time,omitempty"`
	GoVersion string `json:"go_version" yaml:"go_version"`
}

var fillOnce sync.Once

// fillFromBuildInfo reads vcs stamps when ldflags left them empty.
func fillFromBuildInfo() {
	fillOnce.Do(func() {
		if CommitHash != "" {
			return
		}
		info, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				CommitHash = setting.Value
			case "vcs.time":
				if BuildTime == "" {
					BuildTime = setting.Value
				}
			}
		}
	})
}

// Get returns the current build info.
func Get() Info {
	fillFromBuildInfo()
	return Info{
		Version:   Version,
		Commit:    CommitHash,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
}

// ShortCommit returns the first 7 characters of the commit hash.
func (i Info) ShortCommit() string {
	if len(i.Commit) > 7 {
		return i.Commit[:7]
	}
	return i.Commit
}

// GetInfo returns a formatted version string including the version and commit hash.
func GetInfo() string {
	info := Get()
	if c := info.ShortCommit(); c != "" {
		return fmt.Sprintf("%s (%s)", info.Version, c)
	}
	return info.Version
}
