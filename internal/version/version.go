// Package version holds build-time metadata injected via ldflags.
package version

import (
	"runtime/debug"
	"strings"

	"golang.org/x/mod/semver"
)

// Set at build time using -ldflags:
//
//	-X 'github.com/janekbaraniewski/storagereport/internal/version.Version=...'
//	-X 'github.com/janekbaraniewski/storagereport/internal/version.CommitHash=...'
//	-X 'github.com/janekbaraniewski/storagereport/internal/version.BuildDate=...'
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// String returns a formatted version string. A dev build falls back to the
// module version recorded by `go install`, when there is one.
func String() string {
	v := Version
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = info.Main.Version
		}
	}
	if c := Canonical(v); c != "" {
		v = c
	}
	return v + " (" + CommitHash + ") built " + BuildDate
}

// Canonical returns value as a canonical "vMAJOR.MINOR.PATCH" semver, or ""
// when it is not a stable release.
func Canonical(value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return ""
	}
	if semver.Prerelease(v) != "" || semver.Build(v) != "" {
		return ""
	}
	return semver.Canonical(v)
}
