package version

import (
	"fmt"
	"runtime/debug"
)

// Set at build time with -ldflags "-X pairbot/src/version.Commit=...".
var (
	Commit         = "unknown"
	Version        = "unknown"
	BuildTimestamp = "unknown"
)

// RunCommit is the commit stamped on stored runs. Without an -ldflags
// commit it falls back to the VCS revision recorded by the go tool.
func RunCommit() string {
	if Commit != "unknown" {
		return Commit
	}
	if revision := GetBuildInfo()["vcs.revision"]; revision != "" {
		return revision
	}
	return Commit
}

// Describe is the one-line build banner logged at startup.
func Describe() string {
	return fmt.Sprintf("pairbot %s (commit %s, built %s)", Version, RunCommit(), BuildTimestamp)
}

func GetBuildInfo() map[string]string {
	data := make(map[string]string, 0)

	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			data[s.Key] = s.Value
		}
		data["go_version"] = bi.GoVersion
	}

	data["commit"] = Commit
	data["version"] = Version
	data["build_timestamp"] = BuildTimestamp

	return data
}
