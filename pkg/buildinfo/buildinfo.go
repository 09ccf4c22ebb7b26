// Package buildinfo describes the running binary.
package buildinfo

import (
	"fmt"
	"io"
)

// Info is filled from -ldflags at link time.
type Info struct {
	Version string
	Date    string
	Commit  string
}

func na(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}

// VersionOr returns the version, or def when none was linked in.
func (i Info) VersionOr(def string) string {
	if i.Version == "" {
		return def
	}
	return i.Version
}

// Fprint writes the build banner, one field per line.
func (i Info) Fprint(w io.Writer) {
	fmt.Fprintf(w, "Build version: %s\n", na(i.Version))
	fmt.Fprintf(w, "Build date: %s\n", na(i.Date))
	fmt.Fprintf(w, "Build commit: %s\n", na(i.Commit))
}
