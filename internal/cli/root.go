package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// GlobalFlags holds global flag values
type GlobalFlags struct {
	ConfigFile string
	Verbose    bool
	Quiet      bool
}

var globalFlags GlobalFlags

// NewRootCommand creates the dupnorris command with every subcommand attached
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dupnorris",
		Short: "Cross-platform duplicate file finder",
		Long: `dupnorris finds duplicate files in a directory tree.
Files are grouped by size first; only files sharing a size are hashed,
and every group of identical content is written to duplicates.log.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	AddGlobalFlags(cmd)

	cmd.AddCommand(NewScanCommand())
	cmd.AddCommand(NewConfigCommand())
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

// AddGlobalFlags adds global flags to the root command
func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(
		&globalFlags.ConfigFile,
		"config",
		"",
		"config file (default is $HOME/.config/dupnorris/config.yaml)",
	)
	cmd.PersistentFlags().BoolVarP(
		&globalFlags.Verbose,
		"verbose",
		"v",
		false,
		"log scan progress at info level",
	)
	cmd.PersistentFlags().BoolVarP(
		&globalFlags.Quiet,
		"quiet",
		"q",
		false,
		"suppress the summary and progress bar",
	)
}
