/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bcm-approval",
	Short: "Hierarchical approval workflow API server",
	Long: `BCM Approval is a REST API server for multi-stage approval workflows.
Change requests climb a configurable role hierarchy one approver at a
time until the top role approves or any approver rejects.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// GetRootCmd returns the root command, used by tests.
func GetRootCmd() *cobra.Command {
	return rootCmd
}
