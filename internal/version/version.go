// Package version exposes the build identity logged at startup.
package version

import (
	"runtime/debug"
)

// Version is overridden by ldflags at release build time.
var Version = "dev"

// String returns the version, suffixed with the short VCS revision when the
// binary carries build info.
func String() string {
	v := Version
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 7 {
				v += " (" + s.Value[:7] + ")"
				break
			}
		}
	}
	return v
}
