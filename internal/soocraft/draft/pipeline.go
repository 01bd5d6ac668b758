// Package draft turns the collected answers into prompts and, when an
// AI endpoint is configured, into a generated Statement of Objectives
// draft. Generation is always optional: the rendered prompt is a
// first-class product the user can run anywhere.
package draft

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/outcome-tools/soocraft/internal/soocraft/answers"
	"github.com/outcome-tools/soocraft/internal/soocraft/audit"
	"github.com/outcome-tools/soocraft/internal/soocraft/content"
	"github.com/outcome-tools/soocraft/internal/soocraft/flow"
	"github.com/outcome-tools/soocraft/internal/soocraft/lint"
)

// Completer produces a completion for a prompt. *Client satisfies it;
// tests substitute fakes.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Mode classifies the outcome of a generation attempt.
type Mode string

const (
	// ModePromptOnly means no endpoint is configured; the prompt is the
	// product and the user pastes the result back by hand.
	ModePromptOnly Mode = "prompt_only"
	ModeFailed     Mode = "failed"
	ModeSuccess    Mode = "success"
)

// Outcome is the result of one generation attempt.
type Outcome struct {
	Mode   Mode
	Prompt string
	Draft  string
	Lint   *lint.Result
	Err    error
}

// binding maps one template placeholder to the answer that fills it.
type binding struct {
	step, field string
	fallback    string
}

// bindings is the full placeholder namespace. Every {{name}} in a
// prompt template resolves here; ValidatePrompts enforces that at boot.
var bindings = map[string]binding{
	"vision":           {step: "vision", field: "vision"},
	"target_group":     {step: "vision", field: "target_group"},
	"needs":            {step: "vision", field: "needs"},
	"product":          {step: "vision", field: "product"},
	"business_goals":   {step: "vision", field: "business_goals"},
	"target_customer":  {step: "vision_moore", field: "target_customer"},
	"customer_need":    {step: "vision_moore", field: "customer_need"},
	"product_name":     {step: "vision_moore", field: "product_name"},
	"product_category": {step: "vision_moore", field: "product_category"},
	"key_benefit":      {step: "vision_moore", field: "key_benefit"},
	"alternative":      {step: "vision_moore", field: "alternative"},
	"differentiation":  {step: "vision_moore", field: "differentiation"},
	"has_po":           {step: "readiness", field: "has_po"},
	"end_user_access":  {step: "readiness", field: "end_user_access"},
	"approvals_cycle":  {step: "readiness", field: "approvals_cycle"},
	"context":          {step: "methodology", field: "context", fallback: "new_dev"},
	"problem_context":  {step: "soo_inputs", field: "problem_context"},
	"objectives":       {step: "soo_inputs", field: "objectives"},
	"constraints":      {step: "soo_inputs", field: "constraints"},
	"soo_draft":        {step: "soo_output", field: "soo_draft"},
}

var placeholderRe = regexp.MustCompile(`\{\{(\w+)\}\}`)

// RenderTemplate substitutes {{name}} placeholders from values. Unknown
// placeholders render as empty text rather than leaking braces into a
// prompt.
func RenderTemplate(template string, values map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(template, func(m string) string {
		name := m[2 : len(m)-2]
		return values[name]
	})
}

// Placeholders lists the distinct placeholder names in a template.
func Placeholders(template string) []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range placeholderRe.FindAllStringSubmatch(template, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	return out
}

// ValidatePrompts checks that every placeholder in the bundle's prompt
// templates has a binding and that every binding points at a declared
// flow field. Run at boot so template/flow drift fails fast, not in the
// middle of a session.
func ValidatePrompts(def *flow.Definition, bundle *content.Bundle) error {
	for _, p := range []content.Prompt{bundle.SOO, bundle.PWS, bundle.Review} {
		for _, name := range Placeholders(p.Template) {
			if _, ok := bindings[name]; !ok {
				return fmt.Errorf("prompt %s: placeholder {{%s}} has no input binding", p.ID, name)
			}
		}
	}
	names := make([]string, 0, len(bindings))
	for name := range bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		b := bindings[name]
		if !def.HasKey(answers.Key(b.step, b.field)) {
			return fmt.Errorf("input binding %s points at undeclared field %s.%s", name, b.step, b.field)
		}
	}
	return nil
}

// Pipeline assembles prompts from answers and drives generation.
type Pipeline struct {
	store  *answers.Store
	linter *lint.Engine
	log    *audit.Log
	bundle *content.Bundle

	// Client is nil in prompt-only mode.
	Client   Completer
	Endpoint string
	Model    string
}

func NewPipeline(store *answers.Store, linter *lint.Engine, log *audit.Log, bundle *content.Bundle) *Pipeline {
	return &Pipeline{store: store, linter: linter, log: log, bundle: bundle}
}

// Log exposes the audit log for callers that export alongside drafting.
func (p *Pipeline) Log() *audit.Log { return p.log }

// Values resolves every binding against the current answers.
func (p *Pipeline) Values() map[string]string {
	out := make(map[string]string, len(bindings))
	for name, b := range bindings {
		out[name] = p.store.Get(b.step, b.field, b.fallback)
	}
	return out
}

// SOOPrompt renders the generation prompt from the current answers.
func (p *Pipeline) SOOPrompt() string {
	return RenderTemplate(p.bundle.SOO.Template, p.Values())
}

// ReviewPrompt renders the critical-review prompt. Empty without a draft.
func (p *Pipeline) ReviewPrompt() string {
	if strings.TrimSpace(p.store.Get("soo_output", "soo_draft", "")) == "" {
		return ""
	}
	return RenderTemplate(p.bundle.Review.Template, p.Values())
}

// Generate attempts to produce an SOO draft. Without a client it returns
// the prompt for manual use. The generated text is NOT stored; the
// caller reviews it and calls Accept.
func (p *Pipeline) Generate(ctx context.Context) Outcome {
	prompt := p.SOOPrompt()
	if p.Client == nil {
		return Outcome{Mode: ModePromptOnly, Prompt: prompt}
	}
	text, err := p.Client.Complete(ctx, prompt)
	if err != nil {
		p.log.RecordEvent("ai_call_failed", map[string]any{
			"endpoint": p.Endpoint,
			"model":    p.Model,
			"error":    err.Error(),
		})
		return Outcome{Mode: ModeFailed, Prompt: prompt, Err: err}
	}
	p.log.RecordEvent("ai_call_success", map[string]any{
		"endpoint":   p.Endpoint,
		"model":      p.Model,
		"textLength": len(text),
	})
	res := p.linter.Evaluate(text)
	return Outcome{Mode: ModeSuccess, Prompt: prompt, Draft: text, Lint: &res}
}

// Accept stores text as the working SOO draft and records the decision
// with a lint summary of what was accepted.
func (p *Pipeline) Accept(text string) lint.Result {
	p.store.Set("soo_output", "soo_draft", text)
	res := p.linter.Evaluate(text)
	p.log.RecordEvent("soo_draft_accepted", map[string]any{
		"draftLength": len(text),
		"lintErrors":  res.ErrorCount,
		"lintWarns":   res.WarnCount,
	})
	return res
}

// GenerateReviewQuestions asks the model for critical review questions
// about the current draft and stores them on success.
func (p *Pipeline) GenerateReviewQuestions(ctx context.Context) error {
	prompt := p.ReviewPrompt()
	if prompt == "" {
		return fmt.Errorf("no draft to review yet")
	}
	if p.Client == nil {
		return fmt.Errorf("no AI endpoint configured")
	}
	text, err := p.Client.Complete(ctx, prompt)
	if err != nil {
		p.log.RecordEvent("review_questions_failed", map[string]any{"error": err.Error()})
		return err
	}
	p.store.Set("soo_output", "review_questions", text)
	p.log.RecordEvent("review_questions_generated", map[string]any{"textLength": len(text)})
	return nil
}

// PromptsText renders every prompt for the bundle's prompts.txt, so a
// reader of the export can reproduce each AI interaction by hand.
func (p *Pipeline) PromptsText() string {
	values := p.Values()
	sections := []string{
		"# SOO Generation Prompt\n\n" + RenderTemplate(p.bundle.SOO.Template, values),
		"# PWS Request Pack Prompt\n\n" + RenderTemplate(p.bundle.PWS.Template, values),
		"# Review Questions Prompt\n\n" + RenderTemplate(p.bundle.Review.Template, values),
	}
	return strings.Join(sections, "\n\n---\n\n")
}
