package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sdejongh/dupnorris/pkg/config"
)

// NewConfigCommand creates the config command
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  `View or create the dupnorris configuration file.`,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigInitCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			fmt.Printf("Hash Method: %s\n", cfg.Scan.Hash)
			fmt.Printf("Min Size: %s\n", cfg.Scan.MinSize)
			fmt.Printf("Quick Check: %t\n", cfg.Scan.QuickCheck)
			fmt.Printf("Verify: %t\n", cfg.Scan.Verify)
			fmt.Printf("Max Workers: %d\n", cfg.Performance.MaxWorkers)
			fmt.Printf("Buffer Size: %d\n", cfg.Performance.BufferSize)
			fmt.Printf("Bandwidth Limit: %s\n", cfg.Performance.BandwidthLimit)
			fmt.Printf("Output Format: %s\n", cfg.Output.Format)
			fmt.Printf("Output Dir: %s\n", displayDir(cfg.Output.Dir))
			fmt.Printf("Report Format: %s\n", cfg.Output.ReportFormat)
			fmt.Printf("Log Format: %s\n", cfg.Logging.Format)
			fmt.Printf("Log Level: %s\n", cfg.Logging.Level)
			fmt.Printf("Exclude: %v\n", cfg.Exclude)

			return nil
		},
	}
}

func displayDir(dir string) string {
	if dir == "" {
		return "."
	}
	return dir
}

func newConfigInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := globalFlags.ConfigFile
			if path == "" {
				var err error
				if path, err = config.DefaultConfigPath(); err != nil {
					return err
				}
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", path)
			}

			if err := config.SaveToFile(config.Default(), path); err != nil {
				return err
			}

			fmt.Printf("Configuration file created at: %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing configuration file")

	return cmd
}
