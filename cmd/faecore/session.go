package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fae-dev/fae-core/internal/config"
	"github.com/fae-dev/fae-core/internal/sessions"
)

func buildSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Operator tooling over the local session store",
	}
	cmd.AddCommand(buildSessionListCmd(), buildSessionInspectCmd())
	return cmd
}

func buildSessionListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List known sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openSessionStore()
			if err != nil {
				return err
			}
			metas, err := store.List()
			if err != nil {
				return fmt.Errorf("listing sessions: %w", err)
			}
			for _, m := range metas {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\tturns=%d\tupdated=%s\n", m.ID, m.TurnCount, m.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"))
			}
			return nil
		},
	}
}

func buildSessionInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <id>",
		Short: "Print one session as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openSessionStore()
			if err != nil {
				return err
			}
			sess, err := store.Load(args[0])
			if err != nil {
				return fmt.Errorf("loading session %s: %w", args[0], err)
			}
			data, err := json.MarshalIndent(sess, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding session: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func openSessionStore() (sessions.Store, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	store, err := sessions.NewFsStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening session store at %s: %w", cfg.DataDir, err)
	}
	return store, nil
}
