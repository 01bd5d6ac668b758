// Package flow walks the ordered wizard steps, enforcing the gate policy
// before sequential advance while leaving direct navigation ungated.
package flow

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Field types. Readonly fields are derived and auto-populated.
const (
	FieldText     = "text"
	FieldTextarea = "textarea"
	FieldSelect   = "select"
	FieldCheckbox = "checkbox"
	FieldReadonly = "readonly"
)

type Option struct {
	Value string `yaml:"value"`
	Label string `yaml:"label"`
}

type Field struct {
	ID       string   `yaml:"id"`
	Label    string   `yaml:"label"`
	Type     string   `yaml:"type"`
	Default  string   `yaml:"default,omitempty"`
	Required bool     `yaml:"required,omitempty"`
	Hint     string   `yaml:"hint,omitempty"`
	Rows     int      `yaml:"rows,omitempty"`
	Options  []Option `yaml:"options,omitempty"`
}

// Editable reports whether the field holds user-entered text eligible
// for lint rewriting.
func (f Field) Editable() bool {
	return f.Type == FieldText || f.Type == FieldTextarea
}

type Step struct {
	ID    string  `yaml:"id"`
	Title string  `yaml:"title"`
	Help  string  `yaml:"help,omitempty"`
	Field []Field `yaml:"fields"`
	// GateLint requires the step's combined field text to be free of
	// disallow-rule matches before sequential advance.
	GateLint bool `yaml:"gate_lint,omitempty"`
	// RequireChecked names checkbox fields of this step that must all be
	// true before advance. No partial credit.
	RequireChecked []string `yaml:"require_checked,omitempty"`
	// Requires names an upstream "step.field" answer that must be
	// non-empty before advance (e.g. the accepted draft).
	Requires string `yaml:"requires,omitempty"`
	// AutoFill names a derived value recomputed when the step is entered.
	AutoFill string `yaml:"auto_fill,omitempty"`
}

func (s Step) FieldByID(id string) (Field, bool) {
	for _, f := range s.Field {
		if f.ID == id {
			return f, true
		}
	}
	return Field{}, false
}

// Definition is the immutable flow configuration.
type Definition struct {
	Version int    `yaml:"version"`
	Steps   []Step `yaml:"steps"`
}

// ParseDefinition loads and validates a flow document. Malformed
// configuration is rejected at load time rather than tolerated at every
// point of use.
func ParseDefinition(raw []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(raw, &def); err != nil {
		return nil, fmt.Errorf("parse flow: %w", err)
	}
	if err := def.validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

func (d *Definition) validate() error {
	if len(d.Steps) == 0 {
		return fmt.Errorf("flow has no steps")
	}
	seen := map[string]bool{}
	for _, s := range d.Steps {
		if s.ID == "" {
			return fmt.Errorf("flow step with title %q has no id", s.Title)
		}
		if seen[s.ID] {
			return fmt.Errorf("duplicate step id %q", s.ID)
		}
		seen[s.ID] = true
		fields := map[string]Field{}
		for _, f := range s.Field {
			if f.ID == "" {
				return fmt.Errorf("step %s: field with label %q has no id", s.ID, f.Label)
			}
			if _, dup := fields[f.ID]; dup {
				return fmt.Errorf("step %s: duplicate field id %q", s.ID, f.ID)
			}
			if f.Type == FieldSelect && len(f.Options) == 0 {
				return fmt.Errorf("step %s: select field %q has no options", s.ID, f.ID)
			}
			fields[f.ID] = f
		}
		for _, id := range s.RequireChecked {
			f, ok := fields[id]
			if !ok {
				return fmt.Errorf("step %s: require_checked references unknown field %q", s.ID, id)
			}
			if f.Type != FieldCheckbox {
				return fmt.Errorf("step %s: require_checked field %q is not a checkbox", s.ID, id)
			}
		}
	}
	for _, s := range d.Steps {
		if s.Requires == "" {
			continue
		}
		if !d.HasKey(s.Requires) {
			return fmt.Errorf("step %s: requires unknown answer key %q", s.ID, s.Requires)
		}
	}
	return nil
}

// HasKey reports whether "stepId.fieldId" names a declared field.
func (d *Definition) HasKey(key string) bool {
	stepID, fieldID, ok := strings.Cut(key, ".")
	if !ok {
		return false
	}
	for _, s := range d.Steps {
		if s.ID != stepID {
			continue
		}
		_, found := s.FieldByID(fieldID)
		return found
	}
	return false
}

// StepIndex returns the position of a step id, or -1.
func (d *Definition) StepIndex(id string) int {
	for i, s := range d.Steps {
		if s.ID == id {
			return i
		}
	}
	return -1
}
