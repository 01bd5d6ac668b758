package audit

import (
	"strings"
	"testing"
	"time"

	"github.com/outcome-tools/soocraft/internal/soocraft/lint"
)

func TestMemoryOnlyLog(t *testing.T) {
	l := Open("")
	l.RecordEvent("ai_call_failed", map[string]any{"error": "down"})
	l.RecordEvent("ai_call_success", map[string]any{"textLength": 42})
	l.RecordEvent("soo_draft_accepted", nil)
	l.RecordStepCompletion("vision", "Product Vision Board", 3)

	doc := l.Snapshot()
	if doc.Metadata.AICallsAttempted != 2 || doc.Metadata.AICallsSuccessful != 1 {
		t.Errorf("metadata = %+v", doc.Metadata)
	}
	if doc.Metadata.TotalStepsCompleted != 1 {
		t.Errorf("TotalStepsCompleted = %d", doc.Metadata.TotalStepsCompleted)
	}
	if doc.Metadata.WizardVersion != "2.0" {
		t.Errorf("WizardVersion = %q", doc.Metadata.WizardVersion)
	}
	if doc.Metadata.SessionEnd == nil {
		t.Error("SessionEnd not finalized")
	}
	if len(doc.Events) != 3 || len(doc.StepCompletions) != 1 {
		t.Errorf("events = %d, completions = %d", len(doc.Events), len(doc.StepCompletions))
	}
}

func TestRecordLintLatestWins(t *testing.T) {
	l := Open("")
	l.RecordLint("soo_inputs", "SOO Inputs", lint.Result{HasErrors: true, ErrorCount: 2})
	l.RecordLint("soo_inputs", "SOO Inputs", lint.Result{HasErrors: false})

	doc := l.Snapshot()
	rec, ok := doc.LintResults["soo_inputs"]
	if !ok {
		t.Fatal("missing lint record")
	}
	if rec.HasErrors || rec.ErrorCount != 0 {
		t.Errorf("stale record kept: %+v", rec)
	}
}

func TestPersistAndRestore(t *testing.T) {
	dir := t.TempDir()

	l := Open(dir)
	l.RecordEvent("ai_call_success", map[string]any{"textLength": 10})
	l.RecordStepCompletion("vision", "Product Vision Board", 3)
	l.SetReadiness(Readiness{Level: "STRONG", HasProductOwner: true, HasEndUserAccess: true})
	start := l.Snapshot().Metadata.SessionStart
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	restored := Open(dir)
	defer restored.Close()
	doc := restored.Snapshot()
	if len(doc.Events) != 1 || doc.Events[0].Event != "ai_call_success" {
		t.Errorf("events = %+v", doc.Events)
	}
	if len(doc.StepCompletions) != 1 || doc.StepCompletions[0].StepID != "vision" {
		t.Errorf("completions = %+v", doc.StepCompletions)
	}
	if doc.Readiness == nil || doc.Readiness.Level != "STRONG" {
		t.Errorf("readiness = %+v", doc.Readiness)
	}
	// Session start carries over from the first persisted entry.
	if doc.Metadata.SessionStart.After(start.Add(time.Second)) {
		t.Errorf("SessionStart = %v, original %v", doc.Metadata.SessionStart, start)
	}
}

func TestReset(t *testing.T) {
	dir := t.TempDir()
	l := Open(dir)
	l.RecordEvent("ai_call_success", nil)
	l.Reset()
	if doc := l.Snapshot(); len(doc.Events) != 0 || doc.Metadata.AICallsAttempted != 0 {
		t.Errorf("snapshot after reset: %+v", doc)
	}
	l.Close()

	restored := Open(dir)
	defer restored.Close()
	if doc := restored.Snapshot(); len(doc.Events) != 0 {
		t.Errorf("rows survived reset: %+v", doc.Events)
	}
}

func TestExportJSON(t *testing.T) {
	l := Open("")
	l.RecordEvent("soo_draft_accepted", map[string]any{"draftLength": 12})
	raw, err := l.ExportJSON()
	if err != nil {
		t.Fatalf("ExportJSON: %v", err)
	}
	for _, want := range []string{`"wizardVersion": "2.0"`, `"soo_draft_accepted"`, `"lintResults"`} {
		if !strings.Contains(string(raw), want) {
			t.Errorf("JSON missing %q", want)
		}
	}
}
