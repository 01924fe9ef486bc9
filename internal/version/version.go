// Package version holds the build version, overridden at release time with
// -ldflags "-X github.com/EchoSun2025/TimeTag/internal/version.Version=v1.2.3".
package version

var Version = "dev"
