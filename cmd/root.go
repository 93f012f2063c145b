// Copyright (c) 2025 Lodge Portal
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface of the lodge portal client. It wires
// configuration, secure token storage and the portal gateway into the authentication
// core and renders its state with pterm.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/awnumar/memguard"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"lodgeportal/cli/internal/logging"
)

var (
	showVersion bool
	verbose     bool
	configPath  string
)

// errSilent marks a failure that was already reported to the user.
var errSilent = errors.New("already reported")

// rootCmd is the entry point of the lodge CLI.
var rootCmd = &cobra.Command{
	Use:   "lodge",
	Short: "Command-line client for the lodge portal",
	Long: `lodge signs you in to the lodge portal, keeps your session in the OS keychain
(or only for this login session), and manages your password and two-factor settings.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			os.Setenv(logging.VerboseEnv, "1")
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Printf("lodge %s\n", Version)
			return nil
		}
		return cmd.Help()
	},
}

// ExecuteContext runs the CLI. Secrets held in protected memory are wiped before it
// returns.
func ExecuteContext(ctx context.Context) error {
	defer memguard.Purge()
	return rootCmd.ExecuteContext(ctx)
}

// Report prints err for the user unless it was already reported.
func Report(err error) {
	if err == nil || errors.Is(err, errSilent) {
		return
	}
	pterm.Error.Println(logging.PresentError("", err))
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show the CLI version")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the config file (default $XDG_CONFIG_HOME/lodge/config.yaml)")
}
