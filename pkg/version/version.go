// Package version exposes build metadata of the seqpipe binary.
package version

import (
	"fmt"
	"runtime/debug"
)

// Set through -ldflags "-X github.com/Sumatoshi-tech/seqpipe/pkg/version.Version=...".
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

const (
	settingRevision = "vcs.revision"
	settingTime     = "vcs.time"
	settingModified = "vcs.modified"

	shortHashLen = 12
)

// InitBinaryVersion fills values still at their defaults from the module
// build info embedded by the Go toolchain.
func InitBinaryVersion() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	apply(info)
}

func apply(info *debug.BuildInfo) {
	if Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}

	dirty := false

	for _, s := range info.Settings {
		switch s.Key {
		case settingRevision:
			if Commit == "unknown" {
				Commit = s.Value
				if len(Commit) > shortHashLen {
					Commit = Commit[:shortHashLen]
				}
			}
		case settingTime:
			if Date == "unknown" {
				Date = s.Value
			}
		case settingModified:
			dirty = s.Value == "true"
		}
	}

	if dirty && Commit != "unknown" {
		Commit += "-dirty"
	}
}

// String renders the version line printed by "seqpipe version".
func String() string {
	return fmt.Sprintf("seqpipe %s (commit %s, built %s)", Version, Commit, Date)
}
