package config

import (
	"os"
	"testing"
	"time"

	"github.com/outcome-tools/soocraft/internal/soocraft/project"
)

func TestLoadDefaultsWhenMissing(t *testing.T) {
	cfg, err := LoadFromRoot(t.TempDir())
	if err != nil {
		t.Fatalf("LoadFromRoot: %v", err)
	}
	if cfg.AIEndpoint != "" || !cfg.PromptOnly() {
		t.Errorf("expected prompt-only defaults, got %+v", cfg)
	}
	if cfg.Model != "llama3" || cfg.TimeoutSeconds != 120 || cfg.ListenAddr != "127.0.0.1:7333" {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.Timeout() != 120*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout())
	}
}

func TestLoadFromFile(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(project.StateDir(root), 0o755); err != nil {
		t.Fatal(err)
	}
	toml := `
ai_endpoint = "http://localhost:11434"
model = "mistral"
timeout_seconds = 30
`
	if err := os.WriteFile(project.ConfigPath(root), []byte(toml), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFromRoot(root)
	if err != nil {
		t.Fatalf("LoadFromRoot: %v", err)
	}
	if cfg.AIEndpoint != "http://localhost:11434" || cfg.Model != "mistral" || cfg.TimeoutSeconds != 30 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.PromptOnly() {
		t.Error("endpoint configured but PromptOnly true")
	}
}

func TestLoadMalformedFileFails(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(project.StateDir(root), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(project.ConfigPath(root), []byte("model = [broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromRoot(root); err == nil {
		t.Fatal("expected error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SOOCRAFT_AI_ENDPOINT", "http://localhost:9999")
	t.Setenv("SOOCRAFT_MODEL", "phi3")
	t.Setenv("SOOCRAFT_TIMEOUT", "15")
	cfg, err := LoadFromRoot(t.TempDir())
	if err != nil {
		t.Fatalf("LoadFromRoot: %v", err)
	}
	if cfg.AIEndpoint != "http://localhost:9999" || cfg.Model != "phi3" || cfg.TimeoutSeconds != 15 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestDefaultConfigTomlParses(t *testing.T) {
	root := t.TempDir()
	if err := project.EnsureInitialized(root, DefaultConfigToml); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFromRoot(root)
	if err != nil {
		t.Fatalf("shipped default config does not parse: %v", err)
	}
	if cfg.ListenAddr != "127.0.0.1:7333" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
	// Second call leaves the existing file alone.
	if err := project.EnsureInitialized(root, "overwritten"); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(project.ConfigPath(root))
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) == "overwritten" {
		t.Error("EnsureInitialized clobbered an existing config")
	}
}
