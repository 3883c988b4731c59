// Package version exposes the release version embedded at build time.
package version

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var versionContent string

// Get returns the embedded version, or "dev" when the VERSION file is empty.
func Get() string {
	if v := strings.TrimSpace(versionContent); v != "" {
		return v
	}
	return "dev"
}
