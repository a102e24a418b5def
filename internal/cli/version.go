package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/sdejongh/dupnorris/pkg/hash"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Display version and build information, and which external hashing
tools "--hash auto" can use on this host.`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			if short {
				fmt.Fprintln(out, Version)
				return
			}

			fmt.Fprintf(out, "dupnorris %s\n", Version)
			fmt.Fprintf(out, "  Commit:     %s\n", Commit)
			fmt.Fprintf(out, "  Built:      %s\n", BuildDate)
			fmt.Fprintf(out, "  Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)

			available := hash.Available()
			for _, name := range hash.SupportedTools() {
				status := "not found"
				if command := available[name]; command != "" {
					status = command
				}
				fmt.Fprintf(out, "  %-11s %s\n", name+":", status)
			}
		},
	}

	cmd.Flags().BoolVarP(&short, "short", "s", false, "print only the version number")

	return cmd
}
