// Package version contains version information for this app.
package version

import (
	"fmt"
	"runtime"
	"time"

	"github.com/spf13/cobra"
)

// Version is set by the build scripts.
var (
	BuildTime  = time.Now().In(time.UTC).Format(time.Stamp + " 2006 UTC")
	CommitHash = ""
	Version    = "development"
)

// NewCommand returns the version subcommand printing description and build info.
func NewCommand(description string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version and exit",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, description)
			fmt.Fprintf(out, "Go Version: %s\n", runtime.Version())
			fmt.Fprintf(out, "Go OS/ARCH: %s %s\n", runtime.GOOS, runtime.GOARCH)
			fmt.Fprintf(out, "Build Time: %s\n", BuildTime)
			fmt.Fprintf(out, "Commit: %s\n", CommitHash)
			fmt.Fprintf(out, "Version: %s\n", Version)
		},
	}
}
