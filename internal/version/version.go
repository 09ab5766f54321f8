package version

import "fmt"

// Build information set by ldflags
var (
	Version = "dev"     // -X github.com/jtele2/csync/internal/version.Version=...
	Commit  = "unknown" // -X github.com/jtele2/csync/internal/version.Commit=...
	Date    = "unknown" // -X github.com/jtele2/csync/internal/version.Date=...
)

// String is the --version line: version plus commit and build date when known.
func String() string {
	if Commit == "unknown" {
		return Version
	}
	return fmt.Sprintf("%s (%s, built %s)", Version, Commit, Date)
}
