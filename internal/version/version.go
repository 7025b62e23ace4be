// Package version carries build metadata injected with -ldflags, for example
// -X git.home.luguber.info/inful/sitebuilder/internal/version.Version=v1.2.0.
package version

import (
	"fmt"
	"runtime/debug"
)

var (
	Version   = "dev"
	GitCommit = ""
	BuildTime = ""
)

// String describes the running binary. Without ldflags the module version
// and VCS revision recorded by the Go toolchain are used when present.
func String() string {
	v, commit, built := Version, GitCommit, BuildTime
	if info, ok := debug.ReadBuildInfo(); ok {
		if v == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = info.Main.Version
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if commit == "" {
					commit = s.Value
				}
			case "vcs.time":
				if built == "" {
					built = s.Value
				}
			}
		}
	}
	if len(commit) > 12 {
		commit = commit[:12]
	}
	out := "sitebuilder " + v
	if commit != "" {
		out += fmt.Sprintf(" (%s)", commit)
	}
	if built != "" {
		out += " built " + built
	}
	return out
}
