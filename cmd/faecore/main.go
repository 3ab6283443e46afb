// Package main provides the CLI entry point for the Fae on-device runtime.
//
// Fae runs a single-process, single-user conversational agent loop against
// a compatibility-profiled set of LLM providers, persisting sessions to a
// local filesystem store and exposing a host command/event channel over
// stdio for an embedding shell to drive.
//
// # Basic usage
//
//	faecore serve --config fae.yaml
//	faecore session list
//	faecore session inspect <id>
//	faecore doctor
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"

	configPath string
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := buildRootCmd().Execute(); err != nil {
		slog.Error("command execution failed", "error", err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "faecore",
		Short:   "Fae - on-device conversational agent runtime",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Long: `Fae runs a single-process conversational agent loop: a provider-agnostic
turn loop, a filesystem session log, a gated tool registry, and a host
command/event channel for an embedding shell (voice assistant, menu bar app,
or test harness) to drive.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "fae.yaml", "path to fae.yaml")

	rootCmd.AddCommand(
		buildServeCmd(),
		buildSessionCmd(),
		buildDoctorCmd(),
	)
	return rootCmd
}
