package flow

import (
	"testing"

	"github.com/outcome-tools/soocraft/internal/soocraft/answers"
	"github.com/outcome-tools/soocraft/internal/soocraft/audit"
	"github.com/outcome-tools/soocraft/internal/soocraft/lint"
)

func testFlow(t *testing.T) (*Flow, *answers.Store) {
	t.Helper()
	def, err := ParseDefinition([]byte(`
steps:
  - id: inputs
    title: Inputs
    gate_lint: true
    fields:
      - { id: text, label: Text, type: textarea }
  - id: checklist
    title: Checklist
    require_checked: [a, b]
    fields:
      - { id: a, label: A, type: checkbox }
      - { id: b, label: B, type: checkbox }
  - id: review
    title: Review
    requires: review.draft
    fields:
      - { id: draft, label: Draft, type: textarea }
  - id: done
    title: Done
    fields: []
`))
	if err != nil {
		t.Fatalf("ParseDefinition: %v", err)
	}
	var set lint.RuleSet
	set.Lint.Disallow = []lint.Rule{{ID: "no_must", Pattern: `\bmust\b`, Message: "no directive language"}}
	set.Rewrite = []lint.Substitution{{From: "must", To: "will"}}
	linter, err := lint.Compile(set)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	store := answers.NewStore("")
	return New(def, store, linter, audit.Open("")), store
}

func TestAdvanceLintGate(t *testing.T) {
	f, store := testFlow(t)
	store.Set("inputs", "text", "The vendor must comply.")

	d := f.Advance()
	if d == nil {
		t.Fatal("expected denial")
	}
	if d.Reason != DenialLint || d.Lint == nil || d.Lint.ErrorCount != 1 {
		t.Fatalf("unexpected denial %+v", d)
	}
	if f.Index() != 0 {
		t.Errorf("position moved on denial: %d", f.Index())
	}

	store.Set("inputs", "text", "The vendor will comply.")
	if d := f.Advance(); d != nil {
		t.Fatalf("unexpected denial after fix: %+v", d)
	}
	if f.Index() != 1 {
		t.Errorf("Index = %d, want 1", f.Index())
	}
}

func TestAdvanceChecklistGateNoPartialCredit(t *testing.T) {
	f, store := testFlow(t)
	store.Set("inputs", "text", "clean")
	if d := f.Advance(); d != nil {
		t.Fatalf("setup advance: %+v", d)
	}

	d := f.Advance()
	if d == nil || d.Reason != DenialChecklist {
		t.Fatalf("expected checklist denial, got %+v", d)
	}
	if d.Message != "All checkboxes required" {
		t.Errorf("Message = %q", d.Message)
	}

	store.Set("checklist", "a", true)
	if d := f.Advance(); d == nil || d.Reason != DenialChecklist {
		t.Fatalf("one of two checked still advances: %+v", d)
	}

	store.Set("checklist", "b", true)
	if d := f.Advance(); d != nil {
		t.Fatalf("unexpected denial: %+v", d)
	}
	if f.Current().ID != "review" {
		t.Errorf("Current = %s, want review", f.Current().ID)
	}
}

func TestAdvanceUpstreamGate(t *testing.T) {
	f, store := testFlow(t)
	store.Set("inputs", "text", "clean")
	store.Set("checklist", "a", true)
	store.Set("checklist", "b", true)
	f.Advance()
	f.Advance()

	d := f.Advance()
	if d == nil || d.Reason != DenialUpstream || d.Missing != "review.draft" {
		t.Fatalf("expected upstream denial, got %+v", d)
	}

	store.Set("review", "draft", "   ")
	if d := f.Advance(); d == nil {
		t.Fatal("whitespace-only answer satisfied the gate")
	}

	store.Set("review", "draft", "# Draft")
	if d := f.Advance(); d != nil {
		t.Fatalf("unexpected denial: %+v", d)
	}
	if !f.AtEnd() {
		t.Error("expected terminal step")
	}
}

func TestAdvanceAtTerminalStaysPut(t *testing.T) {
	f, _ := testFlow(t)
	f.Jump("done")
	if d := f.Advance(); d != nil {
		t.Fatalf("unexpected denial: %+v", d)
	}
	if !f.AtEnd() {
		t.Error("moved past terminal step")
	}
}

func TestAdvanceAtTerminalRecordsNoCompletion(t *testing.T) {
	f, _ := testFlow(t)
	f.Jump("done")
	for i := 0; i < 3; i++ {
		if d := f.Advance(); d != nil {
			t.Fatalf("unexpected denial: %+v", d)
		}
	}
	if got := f.log.Snapshot().Metadata.TotalStepsCompleted; got != 0 {
		t.Errorf("TotalStepsCompleted = %d, want 0", got)
	}
}

func TestRetreatFlooredAtFirstStep(t *testing.T) {
	f, _ := testFlow(t)
	f.Retreat()
	if f.Index() != 0 {
		t.Errorf("Index = %d, want 0", f.Index())
	}
	f.Jump("checklist")
	f.Retreat()
	if f.Index() != 0 {
		t.Errorf("Index = %d, want 0", f.Index())
	}
}

func TestJumpBypassesGates(t *testing.T) {
	f, store := testFlow(t)
	store.Set("inputs", "text", "The vendor must comply.")

	if !f.Jump("review") {
		t.Fatal("Jump refused a known step")
	}
	if f.Current().ID != "review" {
		t.Errorf("Current = %s", f.Current().ID)
	}
	if f.Jump("nope") {
		t.Error("Jump accepted an unknown step")
	}
	if f.Current().ID != "review" {
		t.Error("position changed on unknown jump")
	}
}

func TestOnEnterFires(t *testing.T) {
	f, store := testFlow(t)
	var entered []string
	f.OnEnter = func(s Step) { entered = append(entered, s.ID) }
	f.Start()
	store.Set("inputs", "text", "clean")
	f.Advance()
	f.Jump("done")
	want := []string{"inputs", "checklist", "done"}
	if len(entered) != len(want) {
		t.Fatalf("entered = %v, want %v", entered, want)
	}
	for i := range want {
		if entered[i] != want[i] {
			t.Fatalf("entered = %v, want %v", entered, want)
		}
	}
}

func TestRewriteStepWritesBack(t *testing.T) {
	f, store := testFlow(t)
	store.Set("inputs", "text", "The vendor must comply.")
	n := f.RewriteStep(f.Current())
	if n != 1 {
		t.Fatalf("rewrites = %d, want 1", n)
	}
	if got := store.Get("inputs", "text", ""); got != "The vendor will comply." {
		t.Errorf("stored = %q", got)
	}
	if res := f.EvaluateStep(f.Current()); res.HasErrors {
		t.Errorf("still failing after rewrite: %+v", res)
	}
}
