// Package project locates and initializes the .soocraft state directory.
package project

import (
	"os"
	"path/filepath"
)

const Dir = ".soocraft"

func StateDir(root string) string {
	return filepath.Join(root, Dir)
}

func AnswersPath(root string) string {
	return filepath.Join(root, Dir, "answers.yaml")
}

func AuditDir(root string) string {
	return filepath.Join(root, Dir, "audit")
}

func ContentDir(root string) string {
	return filepath.Join(root, Dir, "content")
}

func ExportsDir(root string) string {
	return filepath.Join(root, Dir, "exports")
}

func ConfigPath(root string) string {
	return filepath.Join(root, Dir, "config.toml")
}

// EnsureInitialized creates the state directory and a default config file
// when they do not exist yet. Safe to call on every start.
func EnsureInitialized(root string, defaultConfig string) error {
	if err := os.MkdirAll(StateDir(root), 0o755); err != nil {
		return err
	}
	path := ConfigPath(root)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, []byte(defaultConfig), 0o644); err != nil {
			return err
		}
	}
	return nil
}
