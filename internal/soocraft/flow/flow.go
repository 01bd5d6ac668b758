package flow

import (
	"strings"

	"github.com/outcome-tools/soocraft/internal/soocraft/answers"
	"github.com/outcome-tools/soocraft/internal/soocraft/audit"
	"github.com/outcome-tools/soocraft/internal/soocraft/lint"
)

// DenialReason classifies why a sequential advance was blocked. Gate
// failures are recoverable user errors, not Go errors.
type DenialReason string

const (
	DenialChecklist DenialReason = "checklist"
	DenialLint      DenialReason = "lint"
	DenialUpstream  DenialReason = "upstream"
)

// Denial describes a blocked advance for the caller to render.
type Denial struct {
	Reason  DenialReason
	Message string
	// Lint carries the full result when Reason is DenialLint.
	Lint *lint.Result
	// Missing names the empty upstream key when Reason is DenialUpstream.
	Missing string
}

// Flow tracks the current position in the step sequence and applies the
// gate policy on sequential advance.
type Flow struct {
	def    *Definition
	store  *answers.Store
	linter *lint.Engine
	log    *audit.Log
	idx    int
	// OnEnter, when set, runs after the current step changes. Used for
	// derived-field auto-fill; it must not navigate.
	OnEnter func(Step)
}

func New(def *Definition, store *answers.Store, linter *lint.Engine, log *audit.Log) *Flow {
	f := &Flow{def: def, store: store, linter: linter, log: log}
	return f
}

// Start fires the enter hook for the initial step.
func (f *Flow) Start() {
	f.enter()
}

func (f *Flow) Definition() *Definition { return f.def }

func (f *Flow) Index() int { return f.idx }

func (f *Flow) Current() Step { return f.def.Steps[f.idx] }

// AtEnd reports whether the flow is on its terminal step.
func (f *Flow) AtEnd() bool { return f.idx == len(f.def.Steps)-1 }

// Advance evaluates the current step's gates in order and, on success,
// moves to the next step. At the terminal step a passing advance stays
// put. A non-nil Denial means the position did not change.
func (f *Flow) Advance() *Denial {
	step := f.Current()

	if d := f.checkChecklist(step); d != nil {
		return d
	}
	if step.GateLint {
		res := f.EvaluateStep(step)
		f.log.RecordLint(step.ID, step.Title, res)
		if res.HasErrors {
			return &Denial{
				Reason:  DenialLint,
				Message: "Fix these issues before continuing",
				Lint:    &res,
			}
		}
	}
	if d := f.checkUpstream(step); d != nil {
		return d
	}

	if f.idx < len(f.def.Steps)-1 {
		f.log.RecordStepCompletion(step.ID, step.Title, f.idx+1)
		f.idx++
		f.enter()
	}
	return nil
}

// Retreat moves one step back, floored at the first step. Never gated.
func (f *Flow) Retreat() {
	if f.idx > 0 {
		f.idx--
		f.enter()
	}
}

// Jump moves directly to a step by id, bypassing every gate so direct
// navigation can never trap the user. Unknown ids are ignored.
func (f *Flow) Jump(stepID string) bool {
	i := f.def.StepIndex(stepID)
	if i < 0 {
		return false
	}
	if i != f.idx {
		f.idx = i
		f.enter()
	}
	return true
}

// EvaluateStep lints the step's combined field text.
func (f *Flow) EvaluateStep(step Step) lint.Result {
	return f.linter.EvaluateFields(f.fieldValues(step))
}

// RewriteStep applies the mechanical outcome-language rewrite to every
// editable field of the step, writing results back through the store,
// and returns the substitution count. Callers re-lint afterward.
func (f *Flow) RewriteStep(step Step) int {
	total := 0
	for _, field := range step.Field {
		if !field.Editable() {
			continue
		}
		value := f.store.Get(step.ID, field.ID, field.Default)
		if value == "" {
			continue
		}
		rewritten, n := f.linter.Rewrite(value)
		if n > 0 {
			f.store.Set(step.ID, field.ID, rewritten)
			total += n
		}
	}
	return total
}

func (f *Flow) checkChecklist(step Step) *Denial {
	if len(step.RequireChecked) == 0 {
		return nil
	}
	for _, id := range step.RequireChecked {
		if !f.store.GetBool(step.ID, id, false) {
			return &Denial{
				Reason:  DenialChecklist,
				Message: "All checkboxes required",
			}
		}
	}
	return nil
}

func (f *Flow) checkUpstream(step Step) *Denial {
	if step.Requires == "" {
		return nil
	}
	stepID, fieldID, _ := strings.Cut(step.Requires, ".")
	if strings.TrimSpace(f.store.Get(stepID, fieldID, "")) == "" {
		return &Denial{
			Reason:  DenialUpstream,
			Message: "Nothing to work with yet: complete the earlier step first",
			Missing: step.Requires,
		}
	}
	return nil
}

func (f *Flow) fieldValues(step Step) []string {
	values := make([]string, 0, len(step.Field))
	for _, field := range step.Field {
		if field.Type == FieldCheckbox {
			continue
		}
		values = append(values, f.store.Get(step.ID, field.ID, field.Default))
	}
	return values
}

func (f *Flow) enter() {
	if f.OnEnter != nil {
		f.OnEnter(f.Current())
	}
}
