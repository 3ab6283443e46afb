package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fae-dev/fae-core/internal/config"
)

func buildDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Validate config, data directory permissions, and provider credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd)
		},
	}
}

func runDoctor(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	ok := true

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(out, "[FAIL] config: %v\n", err)
		return fmt.Errorf("config validation failed")
	}
	fmt.Fprintf(out, "[ OK ] config loaded from %s\n", configPath)

	if err := checkDataDir(cfg.DataDir); err != nil {
		fmt.Fprintf(out, "[FAIL] data directory %s: %v\n", cfg.DataDir, err)
		ok = false
	} else {
		fmt.Fprintf(out, "[ OK ] data directory %s is writable\n", cfg.DataDir)
	}

	secrets := config.EnvLiteralResolver{}
	if len(cfg.Providers) == 0 {
		fmt.Fprintln(out, "[WARN] no providers configured")
	}
	for name, pc := range cfg.Providers {
		if pc.APIKey == nil {
			fmt.Fprintf(out, "[WARN] provider %s: no api_key configured\n", name)
			continue
		}
		if _, err := secrets.Resolve(*pc.APIKey); err != nil {
			fmt.Fprintf(out, "[FAIL] provider %s: credential not resolvable: %v\n", name, err)
			ok = false
			continue
		}
		fmt.Fprintf(out, "[ OK ] provider %s: credential resolves\n", name)
	}

	if !ok {
		return fmt.Errorf("doctor found unresolved issues")
	}
	return nil
}

func checkDataDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	probe := dir + "/.fae-doctor-probe"
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return err
	}
	return os.Remove(probe)
}
