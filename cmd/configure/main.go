package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/taskpilot/taskpilot/cmd/configure/commands"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "taskpilot-configure",
		Short: "Configuration tool for TaskPilot API",
		Long:  "CLI tool for managing rate limits, users, and checking service connectivity",
	}

	rootCmd.AddCommand(commands.NewRatelimitCmd())
	rootCmd.AddCommand(commands.NewUserCmd())
	rootCmd.AddCommand(commands.NewCheckCmd())
	rootCmd.AddCommand(commands.NewScanCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
