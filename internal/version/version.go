// Package version reports build information for the AM simulator binaries
package version

import (
	"fmt"
	"runtime"
	"strings"
)

// Build-time variables that can be set via ldflags
var (
	// Version is the release number of the simulator
	Version = "0.1.0"

	// GitCommit is the git sha1 that was compiled
	GitCommit = "unknown"

	// BuildDate is the date the binary was built
	BuildDate = "unknown"
)

const unknown = "unknown"

// Info describes the running binary
type Info struct {
	App       string
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	Platform  string
}

// Get returns build information for the named binary
func Get(app string) Info {
	return Info{
		App:       app,
		Version:   Version,
		Commit:    shortCommit(GitCommit),
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// Short returns the version with the abbreviated commit appended when known
func (i Info) Short() string {
	if i.Commit == unknown {
		return i.Version
	}
	return i.Version + "-" + i.Commit
}

// String formats the multi-line text printed by --version
func (i Info) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s version %s", i.App, i.Short())
	if i.BuildDate != unknown {
		fmt.Fprintf(&b, "\nBuilt: %s", i.BuildDate)
	}
	fmt.Fprintf(&b, "\nGo: %s", i.GoVersion)
	fmt.Fprintf(&b, "\nPlatform: %s", i.Platform)
	return b.String()
}

func shortCommit(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}
