package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fae-dev/fae-core/internal/faeerrors"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "fae.yaml", "data_dir: /tmp/fae\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Breaker.FailureThreshold != 5 {
		t.Fatalf("expected default failure threshold 5, got %d", cfg.Breaker.FailureThreshold)
	}
	if cfg.Turn.MaxTurns != 25 {
		t.Fatalf("expected default max turns 25, got %d", cfg.Turn.MaxTurns)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("expected default log level info, got %q", cfg.Logging.Level)
	}
}

func TestLoadResolvesIncludeDirective(t *testing.T) {
	dir := t.TempDir()
	writeTempFile(t, dir, "providers.yaml", "providers:\n  openai:\n    base_url: https://api.openai.com/v1\n")
	path := writeTempFile(t, dir, "fae.yaml", "$include: providers.yaml\ndata_dir: /tmp/fae\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	prov, ok := cfg.Providers["openai"]
	if !ok {
		t.Fatal("expected included provider config to be present")
	}
	if prov.BaseURL != "https://api.openai.com/v1" {
		t.Fatalf("expected base url from included file, got %q", prov.BaseURL)
	}
}

func TestLoadDetectsIncludeCycle(t *testing.T) {
	dir := t.TempDir()
	writeTempFile(t, dir, "b.yaml", "$include: fae.yaml\n")
	path := writeTempFile(t, dir, "fae.yaml", "$include: b.yaml\n")

	if _, err := Load(path); err == nil {
		t.Fatal("expected include cycle error")
	}
}

func TestLoadMergesLocalOverride(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "fae.yaml", "data_dir: /tmp/fae\nlogging:\n  level: info\n")
	writeTempFile(t, dir, "fae.local.yaml", "logging:\n  level: debug\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected local override to win, got %q", cfg.Logging.Level)
	}
	if cfg.DataDir != "/tmp/fae" {
		t.Fatalf("expected base data_dir to survive merge, got %q", cfg.DataDir)
	}
}

func TestLoadEnvOverrideWinsOverFile(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "fae.yaml", "data_dir: /tmp/fae\nturn:\n  max_turns: 10\n")
	t.Setenv("FAE_MAX_TURNS", "40")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Turn.MaxTurns != 40 {
		t.Fatalf("expected env override to win, got %d", cfg.Turn.MaxTurns)
	}
}

func TestLoadParsesBreakerCooldownDuration(t *testing.T) {
	dir := t.TempDir()
	path := writeTempFile(t, dir, "fae.yaml", "breaker:\n  cooldown_period: 45s\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Breaker.CooldownPeriod != 45*time.Second {
		t.Fatalf("expected 45s cooldown, got %s", cfg.Breaker.CooldownPeriod)
	}
}

func TestEnvLiteralResolverResolvesEnv(t *testing.T) {
	t.Setenv("FAE_TEST_SECRET", "shh")
	r := EnvLiteralResolver{}
	v, err := r.Resolve(SecretRef{Type: "env", Value: "FAE_TEST_SECRET"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if v != "shh" {
		t.Fatalf("expected resolved secret %q, got %q", "shh", v)
	}
}

func TestEnvLiteralResolverResolvesLiteral(t *testing.T) {
	r := EnvLiteralResolver{}
	v, err := r.Resolve(SecretRef{Type: "literal", Value: "inline-value"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if v != "inline-value" {
		t.Fatalf("expected literal value, got %q", v)
	}
}

func TestEnvLiteralResolverRejectsUnsupportedKinds(t *testing.T) {
	r := EnvLiteralResolver{}
	for _, kind := range []string{"command", "keychain"} {
		if _, err := r.Resolve(SecretRef{Type: kind, Value: "x"}); err != faeerrors.ErrSecretResolverUnsupported {
			t.Fatalf("expected unsupported resolver error for %q, got %v", kind, err)
		}
	}
}

func TestEnvLiteralResolverMissingEnvVarErrors(t *testing.T) {
	os.Unsetenv("FAE_DOES_NOT_EXIST")
	r := EnvLiteralResolver{}
	if _, err := r.Resolve(SecretRef{Type: "env", Value: "FAE_DOES_NOT_EXIST"}); err == nil {
		t.Fatal("expected error for missing env var")
	}
}
