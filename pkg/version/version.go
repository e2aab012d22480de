// Package version exposes build metadata injected with -ldflags.
package version

import (
	"fmt"
	"runtime"
	"time"
)

const Name = "hawkops"

var (
	// Version is the semantic version, injected at build time via -ldflags
	Version = "dev"
	// GitCommit is the git commit hash, injected at build time
	GitCommit = "unknown"
	// BuildDate is the build timestamp, injected at build time
	BuildDate = "unknown"
	GoVersion = runtime.Version()
	Platform  = runtime.GOOS + "/" + runtime.GOARCH
)

type BuildInfo struct {
	Name      string    `json:"name" yaml:"name"`
	Version   string    `json:"version" yaml:"version"`
	GitCommit string    `json:"gitCommit" yaml:"gitCommit"`
	BuildDate string    `json:"buildDate" yaml:"buildDate"`
	GoVersion string    `json:"goVersion" yaml:"goVersion"`
	Platform  string    `json:"platform" yaml:"platform"`
	BuildTime time.Time `json:"buildTime,omitempty" yaml:"buildTime,omitempty"`
}

func GetBuildInfo() BuildInfo {
	info := BuildInfo{
		Name:      Name,
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: GoVersion,
		Platform:  Platform,
	}
	if t, err := time.Parse(time.RFC3339, BuildDate); err == nil {
		info.BuildTime = t
	}
	return info
}

// UserAgent is sent with every request to the platform.
func UserAgent() string {
	return fmt.Sprintf("%s/%s (%s)", Name, Version, Platform)
}
