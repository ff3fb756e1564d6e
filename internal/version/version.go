// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package version reports how the bias-scan binary was built.
package version

import (
	"fmt"
	"runtime"
	"strings"
)

// Overridden at link time, e.g.
//
//	go build -ldflags "-X bias-scan/internal/version.Version=1.2.0 -X bias-scan/internal/version.GitCommit=$(git rev-parse --short HEAD)"
var (
	Version   = "0.0.0-development"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// BuildInfo identifies one build of the CLI and web server
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Get returns the build information of the running binary
func Get() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// Development reports whether the binary was built without a release version
func (b BuildInfo) Development() bool {
	return strings.HasSuffix(b.Version, "-development")
}

func (b BuildInfo) String() string {
	return fmt.Sprintf("bias-scan %s (commit: %s, built: %s, go: %s, platform: %s)",
		b.Version, b.Commit, b.BuildDate, b.GoVersion, b.Platform)
}

// Info is the --version line
func Info() string {
	return Get().String()
}

// Short returns just the version number, as used in Sentry releases and metrics labels
func Short() string {
	return Version
}
