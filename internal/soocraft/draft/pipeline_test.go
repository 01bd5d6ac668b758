package draft

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/outcome-tools/soocraft/internal/soocraft/answers"
	"github.com/outcome-tools/soocraft/internal/soocraft/audit"
	"github.com/outcome-tools/soocraft/internal/soocraft/content"
	"github.com/outcome-tools/soocraft/internal/soocraft/lint"
)

func testApp(t *testing.T) (*Pipeline, *answers.Store, *audit.Log) {
	t.Helper()
	bundle, err := content.Load("")
	if err != nil {
		t.Fatalf("content.Load: %v", err)
	}
	linter, err := lint.Compile(bundle.Rules)
	if err != nil {
		t.Fatalf("lint.Compile: %v", err)
	}
	store := answers.NewStore("")
	log := audit.Open("")
	return NewPipeline(store, linter, log, bundle), store, log
}

func TestRenderTemplate(t *testing.T) {
	tests := []struct {
		name     string
		template string
		values   map[string]string
		want     string
	}{
		{
			name:     "substitutes known names",
			template: "For {{target}} who {{need}}.",
			values:   map[string]string{"target": "clinicians", "need": "need speed"},
			want:     "For clinicians who need speed.",
		},
		{
			name:     "missing name renders empty",
			template: "Hello {{nobody}}!",
			values:   map[string]string{},
			want:     "Hello !",
		},
		{
			name:     "repeated placeholder",
			template: "{{x}} and {{x}}",
			values:   map[string]string{"x": "twice"},
			want:     "twice and twice",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RenderTemplate(tt.template, tt.values); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidatePromptsAgainstShippedContent(t *testing.T) {
	bundle, err := content.Load("")
	if err != nil {
		t.Fatalf("content.Load: %v", err)
	}
	if err := ValidatePrompts(bundle.Flow, bundle); err != nil {
		t.Fatalf("shipped prompts and flow disagree: %v", err)
	}
}

func TestSOOPromptUsesAnswers(t *testing.T) {
	p, store, _ := testApp(t)
	store.Set("vision", "target_group", "Case managers")
	store.Set("soo_inputs", "objectives", "Claims resolve within five days.")

	prompt := p.SOOPrompt()
	if !strings.Contains(prompt, "Case managers") {
		t.Error("prompt missing vision answer")
	}
	if !strings.Contains(prompt, "Claims resolve within five days.") {
		t.Error("prompt missing objectives answer")
	}
	if strings.Contains(prompt, "{{") {
		t.Error("unresolved placeholder left in prompt")
	}
	// Unanswered context falls back to its declared default.
	if !strings.Contains(prompt, "new_dev") {
		t.Error("context default not applied")
	}
}

func TestGeneratePromptOnly(t *testing.T) {
	p, _, log := testApp(t)
	out := p.Generate(context.Background())
	if out.Mode != ModePromptOnly {
		t.Fatalf("Mode = %s", out.Mode)
	}
	if out.Prompt == "" || out.Draft != "" {
		t.Errorf("unexpected outcome %+v", out)
	}
	doc := log.Snapshot()
	if doc.Metadata.AICallsAttempted != 0 {
		t.Errorf("prompt-only counted as an AI call: %+v", doc.Metadata)
	}
}

func TestGenerateSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"response": "# Statement of Objectives\n\nThe system will work."}`))
	}))
	defer srv.Close()

	p, _, log := testApp(t)
	p.Client = NewClient(srv.URL, "llama3", 0)
	p.Endpoint = srv.URL
	p.Model = "llama3"

	out := p.Generate(context.Background())
	if out.Mode != ModeSuccess {
		t.Fatalf("Mode = %s, err = %v", out.Mode, out.Err)
	}
	if !strings.Contains(out.Draft, "The system will work.") {
		t.Errorf("Draft = %q", out.Draft)
	}
	if out.Lint == nil || out.Lint.HasErrors {
		t.Errorf("clean draft flagged: %+v", out.Lint)
	}
	doc := log.Snapshot()
	if doc.Metadata.AICallsAttempted != 1 || doc.Metadata.AICallsSuccessful != 1 {
		t.Errorf("metadata = %+v", doc.Metadata)
	}
}

func TestGenerateEndpointFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	p, _, log := testApp(t)
	p.Client = NewClient(srv.URL, "llama3", 0)

	out := p.Generate(context.Background())
	if out.Mode != ModeFailed || out.Err == nil {
		t.Fatalf("outcome = %+v", out)
	}
	if out.Prompt == "" {
		t.Error("failure outcome must still carry the prompt")
	}
	doc := log.Snapshot()
	if doc.Metadata.AICallsAttempted != 1 || doc.Metadata.AICallsSuccessful != 0 {
		t.Errorf("metadata = %+v", doc.Metadata)
	}
}

func TestAcceptStoresDraftAndAudits(t *testing.T) {
	p, store, log := testApp(t)
	res := p.Accept("The system must work.")
	if got := store.Get("soo_output", "soo_draft", ""); got != "The system must work." {
		t.Errorf("stored = %q", got)
	}
	if !res.HasErrors {
		t.Error("accept skipped linting")
	}
	var found bool
	for _, ev := range log.Snapshot().Events {
		if ev.Event == "soo_draft_accepted" {
			found = true
			if ev.Fields["lintErrors"].(int) != 1 {
				t.Errorf("lintErrors = %v", ev.Fields["lintErrors"])
			}
		}
	}
	if !found {
		t.Error("no soo_draft_accepted event")
	}
}

func TestGenerateReviewQuestions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response": "- Is every objective measurable?\n- Who accepts the work?"}`))
	}))
	defer srv.Close()

	p, store, _ := testApp(t)
	p.Client = NewClient(srv.URL, "llama3", 0)

	if err := p.GenerateReviewQuestions(context.Background()); err == nil {
		t.Fatal("expected error without a draft")
	}
	store.Set("soo_output", "soo_draft", "# Draft")
	if err := p.GenerateReviewQuestions(context.Background()); err != nil {
		t.Fatalf("GenerateReviewQuestions: %v", err)
	}
	if got := store.Get("soo_output", "review_questions", ""); !strings.Contains(got, "measurable") {
		t.Errorf("stored questions = %q", got)
	}
}

func TestPromptsTextSections(t *testing.T) {
	p, store, _ := testApp(t)
	store.Set("soo_output", "soo_draft", "# Draft")
	text := p.PromptsText()
	for _, heading := range []string{"# SOO Generation Prompt", "# PWS Request Pack Prompt", "# Review Questions Prompt"} {
		if !strings.Contains(text, heading) {
			t.Errorf("missing section %q", heading)
		}
	}
	if got := strings.Count(text, "\n\n---\n\n"); got != 2 {
		t.Errorf("separator count = %d, want 2", got)
	}
}
