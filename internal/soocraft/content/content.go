// Package content loads the flow definition, lint rules and prompt
// templates. Embedded defaults ship with the binary; any file placed in
// .soocraft/content/ overrides the default of the same name.
package content

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/outcome-tools/soocraft/internal/soocraft/flow"
	"github.com/outcome-tools/soocraft/internal/soocraft/lint"
	"github.com/outcome-tools/soocraft/internal/soocraft/project"
)

//go:embed flow.yml rules.yml prompts/soo.yml prompts/pws.yml prompts/review.yml
var defaults embed.FS

// Prompt is one named generation template with {{placeholder}} slots.
type Prompt struct {
	ID       string `yaml:"id"`
	Title    string `yaml:"title"`
	Template string `yaml:"template"`
}

// Bundle is everything loaded at boot.
type Bundle struct {
	Flow   *flow.Definition
	Rules  lint.RuleSet
	SOO    Prompt
	PWS    Prompt
	Review Prompt
}

// Load reads the content documents, preferring overrides under
// .soocraft/content/ and falling back to the embedded defaults.
func Load(root string) (*Bundle, error) {
	b := &Bundle{}

	raw, err := read(root, "flow.yml")
	if err != nil {
		return nil, err
	}
	if b.Flow, err = flow.ParseDefinition(raw); err != nil {
		return nil, err
	}

	raw, err = read(root, "rules.yml")
	if err != nil {
		return nil, err
	}
	if b.Rules, err = lint.ParseRuleSet(raw); err != nil {
		return nil, err
	}

	for _, p := range []struct {
		name string
		dst  *Prompt
	}{
		{"prompts/soo.yml", &b.SOO},
		{"prompts/pws.yml", &b.PWS},
		{"prompts/review.yml", &b.Review},
	} {
		raw, err = read(root, p.name)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(raw, p.dst); err != nil {
			return nil, fmt.Errorf("parse %s: %w", p.name, err)
		}
		if p.dst.Template == "" {
			return nil, fmt.Errorf("%s: prompt has no template", p.name)
		}
	}
	return b, nil
}

func read(root, name string) ([]byte, error) {
	if root != "" {
		override := filepath.Join(project.ContentDir(root), filepath.FromSlash(name))
		if raw, err := os.ReadFile(override); err == nil {
			return raw, nil
		} else if !os.IsNotExist(err) {
			return nil, err
		}
	}
	raw, err := defaults.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("embedded content %s: %w", name, err)
	}
	return raw, nil
}
