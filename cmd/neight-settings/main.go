package main

import (
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var (
	appName string
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "neight-settings",
	Short: "Inspect and edit Neight's persisted settings",
	Long: `Inspect and edit Neight's persisted settings.

The editor keeps its preferences in a settings.json stored either beside
the executable (while that folder is writable) or in the per-user
application-data folder. Use "location" to see which one is active.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.Version = version
	rootCmd.PersistentFlags().StringVar(&appName, "app-name", "Neight", "application name for the per-user settings directory")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.AddCommand(locationCmd, showCmd, getCmd, setCmd, resetCmd)

	if err := rootCmd.Execute(); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}
