package version

import (
	"os"
	"strings"

	"github.com/carlmjohnson/versioninfo"
)

type GitInfo struct {
	Commit string `json:"commit"`
	Dirty  bool   `json:"dirty"`
}

type Info struct {
	Release string  `json:"release"`
	Git     GitInfo `json:"git"`
}

// Get reports the installed release (written by the package at install time)
// plus whatever the build embedded.
func Get() *Info {
	release := "unknown"
	if data, err := os.ReadFile("/etc/permafrost/release"); err == nil {
		release = strings.TrimSpace(string(data))
	}

	return &Info{
		Release: release,
		Git: GitInfo{
			Commit: versioninfo.Revision,
			Dirty:  versioninfo.DirtyBuild,
		},
	}
}
