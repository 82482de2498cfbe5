// ABOUTME: Version command reporting the build stamp
// ABOUTME: Values are injected from main at startup via SetVersion
package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// build stamp, replaced by SetVersion with the ldflags values from main
var (
	buildVersion = "dev"
	buildCommit  = "none"
	buildDate    = "unknown"
)

// SetVersion records the build stamp shown by the version command.
// Empty values keep the defaults so a partial ldflags line still prints
// something sensible.
func SetVersion(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}
}

var versionShort bool

// NewVersionCmd creates the version command
func NewVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display the paperplay version, commit, build date, and Go runtime.`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			if versionShort {
				fmt.Fprintln(out, buildVersion)
				return
			}
			fmt.Fprintf(out, "paperplay %s\n", buildVersion)
			fmt.Fprintf(out, "  commit: %s\n", buildCommit)
			fmt.Fprintf(out, "  built:  %s\n", buildDate)
			fmt.Fprintf(out, "  go:     %s\n", runtime.Version())
		},
	}

	cmd.Flags().BoolVar(&versionShort, "short", false, "print only the version number")

	return cmd
}
