package version

import "fmt"

var (
	Version = "0.1.0"
	Commit  = "none"
)

func String() string {
	return fmt.Sprintf("answergap %s (%s)", Version, Commit)
}
