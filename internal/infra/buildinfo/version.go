// Package buildinfo reports the CLI build.
//
// Release builds set the variables with ldflags:
//
//	go build -ldflags "-X github.com/yndnr/ecoply-go/internal/infra/buildinfo.Version=v1.0.0"
//
// Unset values are taken from the VCS stamp the Go toolchain embeds.
package buildinfo

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
)

const unknown = "unknown"

// Set with ldflags.
var (
	Version   = ""
	Commit    = ""
	BuildTime = ""
)

// Info is the resolved build description.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildTime string `json:"build_time" yaml:"build_time"`
	Modified  bool   `json:"modified,omitempty" yaml:"modified,omitempty"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

var (
	once     sync.Once
	resolved Info
	readInfo = debug.ReadBuildInfo
)

// Get returns the build description.
func Get() Info {
	once.Do(func() { resolved = resolve() })
	return resolved
}

func resolve() Info {
	info := Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if bi, ok := readInfo(); ok {
		if info.Version == "" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			info.Version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if info.Commit == "" {
					info.Commit = short(s.Value)
				}
			case "vcs.time":
				if info.BuildTime == "" {
					info.BuildTime = s.Value
				}
			case "vcs.modified":
				info.Modified = s.Value == "true"
			}
		}
	}
	if info.Version == "" {
		info.Version = "dev"
	}
	if info.Commit == "" {
		info.Commit = unknown
	}
	if info.BuildTime == "" {
		info.BuildTime = unknown
	}
	return info
}

func short(rev string) string {
	if len(rev) > 12 {
		return rev[:12]
	}
	return rev
}

// String is the one-line form printed by --version.
func (i Info) String() string {
	s := fmt.Sprintf("%s (%s", i.Version, i.Commit)
	if i.Modified {
		s += ", modified"
	}
	return s + ") built at " + i.BuildTime
}

// String returns Get().String().
func String() string { return Get().String() }

// UserAgent returns the User-Agent sent to the marketplace API.
func UserAgent() string {
	i := Get()
	return fmt.Sprintf("ecoply-cli/%s (%s)", i.Version, i.Platform)
}
