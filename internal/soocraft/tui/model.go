// Package tui implements the interactive wizard: one screen per step,
// field editing, gated navigation, and AI drafting.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/outcome-tools/soocraft/internal/soocraft/answers"
	"github.com/outcome-tools/soocraft/internal/soocraft/audit"
	"github.com/outcome-tools/soocraft/internal/soocraft/draft"
	"github.com/outcome-tools/soocraft/internal/soocraft/export"
	"github.com/outcome-tools/soocraft/internal/soocraft/flow"
	"github.com/outcome-tools/soocraft/internal/soocraft/lint"
	sharedtui "github.com/outcome-tools/soocraft/pkg/tui"
)

type focusArea int

const (
	focusFields focusArea = iota
	focusEdit
	focusJump
)

type genDoneMsg struct{ outcome draft.Outcome }

type reviewDoneMsg struct{ err error }

type exportDoneMsg struct {
	path string
	err  error
}

// Model is the bubbletea model for the wizard.
type Model struct {
	flow     *flow.Flow
	store    *answers.Store
	pipeline *draft.Pipeline

	exportsDir string
	aiTimeout  time.Duration

	keys sharedtui.CommonKeys
	help sharedtui.HelpOverlay

	width  int
	height int

	focus    focusArea
	fieldIdx int
	jumpIdx  int

	input textinput.Model
	area  textarea.Model

	status  string
	lintRes *lint.Result
	pending *draft.Outcome
	busy    bool
}

func New(f *flow.Flow, store *answers.Store, pipeline *draft.Pipeline, exportsDir string, aiTimeout time.Duration) *Model {
	input := textinput.New()
	input.CharLimit = 512
	area := textarea.New()
	area.CharLimit = 0

	m := &Model{
		flow:       f,
		store:      store,
		pipeline:   pipeline,
		exportsDir: exportsDir,
		aiTimeout:  aiTimeout,
		keys:       sharedtui.NewCommonKeys(),
		input:      input,
		area:       area,
	}
	f.Start()
	return m
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.area.SetWidth(max(20, m.width-8))
		m.input.Width = max(20, m.width-12)
		return m, nil
	case sharedtui.ToggleHelpMsg:
		m.help.Toggle()
		return m, nil
	case genDoneMsg:
		m.busy = false
		return m.applyOutcome(msg.outcome), nil
	case reviewDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "review questions failed: " + msg.err.Error()
		} else {
			m.status = "review questions added to the draft step"
		}
		return m, nil
	case exportDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.status = "export failed: " + msg.err.Error()
		} else {
			m.status = "bundle written to " + msg.path
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.focus == focusEdit {
		return m.handleEditKey(msg)
	}
	if cmd := sharedtui.HandleCommon(msg, m.keys); cmd != nil {
		return m, cmd
	}
	if m.focus == focusJump {
		return m.handleJumpKey(msg)
	}

	step := m.flow.Current()
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "j", "down":
		if m.fieldIdx < len(step.Field)+len(m.reviewItems(step))-1 {
			m.fieldIdx++
		}
	case "k", "up":
		if m.fieldIdx > 0 {
			m.fieldIdx--
		}
	case "]":
		m.advance()
	case "[":
		m.flow.Retreat()
		m.resetStepState()
	case "g":
		m.focus = focusJump
		m.jumpIdx = m.flow.Index()
	case "enter":
		return m.handleSelect(step)
	case " ":
		m.toggleCheckbox(step)
	case "l":
		res := m.flow.EvaluateStep(step)
		m.lintRes = &res
		m.status = lintSummary(res)
	case "w":
		n := m.flow.RewriteStep(step)
		res := m.flow.EvaluateStep(step)
		m.lintRes = &res
		m.status = fmt.Sprintf("%d phrase(s) rewritten; %s", n, lintSummary(res))
	case "a":
		if m.pending != nil && m.pending.Draft != "" {
			res := m.pipeline.Accept(m.pending.Draft)
			m.pending = nil
			m.lintRes = &res
			m.status = "draft accepted; " + lintSummary(res)
		}
	case "d":
		if m.pending != nil {
			m.pending = nil
			m.status = "draft discarded"
		}
	case "r":
		if step.ID == "soo_output" || step.ID == "generate" {
			return m.startReviewQuestions()
		}
	case "e":
		if step.ID == "export_center" {
			return m.startExport()
		}
	}
	return m, nil
}

// handleSelect runs the step's primary action: generation on the
// generate step, otherwise editing the selected field.
func (m *Model) handleSelect(step flow.Step) (tea.Model, tea.Cmd) {
	if step.ID == "generate" {
		return m.startGenerate()
	}
	if m.fieldIdx >= len(step.Field) {
		m.toggleCheckbox(step)
		return m, nil
	}
	field := step.Field[m.fieldIdx]
	switch field.Type {
	case flow.FieldCheckbox:
		m.toggleCheckbox(step)
	case flow.FieldSelect:
		m.cycleSelect(step, field)
	case flow.FieldText:
		m.input.SetValue(m.store.Get(step.ID, field.ID, field.Default))
		m.input.CursorEnd()
		m.input.Focus()
		m.focus = focusEdit
	case flow.FieldTextarea:
		m.area.SetValue(m.store.Get(step.ID, field.ID, field.Default))
		m.area.Focus()
		m.focus = focusEdit
	}
	return m, nil
}

func (m *Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	step := m.flow.Current()
	field := step.Field[m.fieldIdx]

	switch msg.String() {
	case "esc":
		m.saveEdit(step, field)
		m.focus = focusFields
		return m, nil
	case "enter":
		if field.Type == flow.FieldText {
			m.saveEdit(step, field)
			m.focus = focusFields
			return m, nil
		}
	case "ctrl+c":
		return m, tea.Quit
	}

	var cmd tea.Cmd
	if field.Type == flow.FieldTextarea {
		m.area, cmd = m.area.Update(msg)
	} else {
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m *Model) handleJumpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	steps := m.flow.Definition().Steps
	switch msg.String() {
	case "esc":
		m.focus = focusFields
	case "j", "down":
		if m.jumpIdx < len(steps)-1 {
			m.jumpIdx++
		}
	case "k", "up":
		if m.jumpIdx > 0 {
			m.jumpIdx--
		}
	case "enter":
		m.flow.Jump(steps[m.jumpIdx].ID)
		m.focus = focusFields
		m.resetStepState()
	}
	return m, nil
}

func (m *Model) saveEdit(step flow.Step, field flow.Field) {
	var value string
	if field.Type == flow.FieldTextarea {
		value = m.area.Value()
		m.area.Blur()
	} else {
		value = m.input.Value()
		m.input.Blur()
	}
	// Pasted or edited draft text takes the same lint-and-accept path as
	// a generated draft, so the audit trail sees every accepted version.
	if step.ID == "soo_output" && field.ID == "soo_draft" && strings.TrimSpace(value) != "" {
		res := m.pipeline.Accept(value)
		m.lintRes = &res
		m.status = "draft accepted; " + lintSummary(res)
		return
	}
	m.store.Set(step.ID, field.ID, value)
	m.status = "saved"
}

// reviewItems returns the parsed review questions rendered as a
// checklist below the draft review step's fields.
func (m *Model) reviewItems(step flow.Step) []string {
	if step.ID != "soo_output" {
		return nil
	}
	return export.ParseReviewQuestions(m.store.Get("soo_output", "review_questions", ""))
}

func (m *Model) toggleCheckbox(step flow.Step) {
	if i := m.fieldIdx - len(step.Field); i >= 0 {
		if i < len(m.reviewItems(step)) {
			key := export.ReviewQuestionKey(i)
			m.store.Set(step.ID, key, !m.store.GetBool(step.ID, key, false))
		}
		return
	}
	if len(step.Field) == 0 {
		return
	}
	field := step.Field[m.fieldIdx]
	if field.Type != flow.FieldCheckbox {
		return
	}
	m.store.Set(step.ID, field.ID, !m.store.GetBool(step.ID, field.ID, false))
}

func (m *Model) cycleSelect(step flow.Step, field flow.Field) {
	if len(field.Options) == 0 {
		return
	}
	current := m.store.Get(step.ID, field.ID, field.Default)
	next := field.Options[0].Value
	for i, opt := range field.Options {
		if opt.Value == current && i+1 < len(field.Options) {
			next = field.Options[i+1].Value
			break
		}
	}
	m.store.Set(step.ID, field.ID, next)
}

func (m *Model) advance() {
	if denial := m.flow.Advance(); denial != nil {
		m.status = denial.Message
		m.lintRes = denial.Lint
		return
	}
	m.resetStepState()
}

func (m *Model) resetStepState() {
	m.fieldIdx = 0
	m.lintRes = nil
	m.status = ""
}

func (m *Model) startGenerate() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	m.busy = true
	m.status = "generating draft..."
	pipeline, timeout := m.pipeline, m.aiTimeout
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return genDoneMsg{outcome: pipeline.Generate(ctx)}
	}
}

func (m *Model) startReviewQuestions() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	m.busy = true
	m.status = "generating review questions..."
	pipeline, timeout := m.pipeline, m.aiTimeout
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return reviewDoneMsg{err: pipeline.GenerateReviewQuestions(ctx)}
	}
}

func (m *Model) startExport() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	m.busy = true
	m.status = "writing bundle..."
	return m, func() tea.Msg {
		path, err := export.WriteBundle(m.exportsDir, m.store, m.pipeline.Log(), m.pipeline.PromptsText(), audit.WizardVersion)
		return exportDoneMsg{path: path, err: err}
	}
}

func (m *Model) applyOutcome(out draft.Outcome) tea.Model {
	switch out.Mode {
	case draft.ModePromptOnly:
		m.pending = &out
		m.status = "no AI endpoint configured; prompt shown below, paste the result into the draft step"
	case draft.ModeFailed:
		m.pending = &out
		m.status = "generation failed: " + out.Err.Error() + "; the prompt still works anywhere"
	case draft.ModeSuccess:
		m.pending = &out
		m.lintRes = out.Lint
		m.status = "draft ready; press a to accept, d to discard (" + lintSummary(*out.Lint) + ")"
	}
	return m
}

func lintSummary(res lint.Result) string {
	if len(res.Findings) == 0 {
		return "no lint findings"
	}
	return fmt.Sprintf("%d error(s), %d warning(s)", res.ErrorCount, res.WarnCount)
}

func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
