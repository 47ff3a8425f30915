// Package diagnostics formats the build-identity banner the CLI prints
// for --version/--verbose: a per-process build id and a formatted
// timestamp, alongside cmd/combc's version and gitCommit build vars.
package diagnostics

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ncruces/go-strftime"
)

// BuildID is generated once per process; it has no meaning across
// runs, it just gives a verbose log a stable tag to grep for within
// one invocation's output.
var BuildID = uuid.New().String()

// Banner formats the one-line identity string printed by --version.
func Banner(version, gitCommit string, buildDate time.Time) string {
	ts := strftime.Format("%Y-%m-%d %H:%M:%S", buildDate)
	return fmt.Sprintf("combc %s (commit %s, built %s, run %s)", version, gitCommit, ts, BuildID)
}
