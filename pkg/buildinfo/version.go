// Package buildinfo holds version information stamped in at link time:
//
//	go build -ldflags "-X github.com/matzehuels/tempomaze/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/tempomaze/pkg/buildinfo.Commit=$(git rev-parse HEAD)"
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Info is the JSON form reported by the server health check.
type Info struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// Get returns the current build info.
func Get() Info {
	return Info{Version: Version, Commit: Commit, Date: Date}
}

// String returns the build info as three lines.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Version, Commit, Date)
}

// Template returns the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s (%s, %s)\n", Version, Commit, Date)
}
