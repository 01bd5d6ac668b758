package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/outcome-tools/soocraft/internal/soocraft/export"
	"github.com/outcome-tools/soocraft/internal/soocraft/flow"
	"github.com/outcome-tools/soocraft/internal/soocraft/lint"
	sharedtui "github.com/outcome-tools/soocraft/pkg/tui"
)

func (m *Model) View() string {
	if m.width == 0 {
		return "loading..."
	}
	step := m.flow.Current()

	header := sharedtui.HeaderStyle.Width(m.width).Render(
		fmt.Sprintf("SOOCRAFT | %s | step %d/%d", step.Title, m.flow.Index()+1, len(m.flow.Definition().Steps)))

	var body string
	switch m.focus {
	case focusJump:
		body = m.viewJump()
	case focusEdit:
		body = m.viewEdit(step)
	default:
		body = m.viewStep(step)
	}

	if m.help.Visible {
		body = m.help.Render(m.keys, m.stepBindings(step), m.width)
	}

	footer := sharedtui.FooterStyle.Width(m.width).Render(m.footerText(step))
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m *Model) viewStep(step flow.Step) string {
	var b strings.Builder
	if step.Help != "" {
		b.WriteString(sharedtui.SubtitleStyle.Render(strings.TrimSpace(step.Help)))
		b.WriteString("\n\n")
	}

	if step.ID == "generate" {
		b.WriteString(m.viewGenerate())
	} else {
		for i, field := range step.Field {
			b.WriteString(m.renderField(step, field, i == m.fieldIdx))
			b.WriteString("\n")
		}
		if items := m.reviewItems(step); len(items) > 0 {
			b.WriteString("\n")
			b.WriteString(sharedtui.SubtitleStyle.Render("Mark each question once you have considered it:"))
			b.WriteString("\n")
			for i, q := range items {
				marker := "  "
				style := sharedtui.UnselectedStyle
				if len(step.Field)+i == m.fieldIdx {
					marker = "> "
					style = sharedtui.SelectedStyle
				}
				mark := "[ ]"
				if m.store.GetBool(step.ID, export.ReviewQuestionKey(i), false) {
					mark = "[x]"
				}
				b.WriteString(marker + style.Render(mark+" "+truncate(q, max(20, m.width-12))))
				b.WriteString("\n")
			}
		}
	}

	if m.lintRes != nil && len(m.lintRes.Findings) > 0 {
		b.WriteString("\n")
		b.WriteString(renderFindings(*m.lintRes))
	}
	return sharedtui.PanelStyle.Width(max(20, m.width-2)).Render(b.String())
}

func (m *Model) renderField(step flow.Step, field flow.Field, selected bool) string {
	marker := "  "
	labelStyle := sharedtui.UnselectedStyle
	if selected {
		marker = "> "
		labelStyle = sharedtui.SelectedStyle
	}

	switch field.Type {
	case flow.FieldCheckbox:
		mark := "[ ]"
		if m.store.GetBool(step.ID, field.ID, false) {
			mark = "[x]"
		}
		return marker + labelStyle.Render(mark+" "+field.Label)
	case flow.FieldSelect:
		value := m.store.Get(step.ID, field.ID, field.Default)
		label := "(not set)"
		for _, opt := range field.Options {
			if opt.Value == value {
				label = opt.Label
			}
		}
		return marker + labelStyle.Render(field.Label) + "\n    " +
			sharedtui.TitleStyle.Render("◂ "+label+" ▸")
	case flow.FieldReadonly:
		value := m.store.Get(step.ID, field.ID, "")
		if value == "" {
			value = "(nothing yet)"
		}
		return marker + labelStyle.Render(field.Label) + "\n" + indent(value, 4)
	default:
		value := m.store.Get(step.ID, field.ID, field.Default)
		preview := "(empty)"
		if strings.TrimSpace(value) != "" {
			preview = truncate(value, max(20, m.width-10))
		}
		out := marker + labelStyle.Render(field.Label) + "\n    " + sharedtui.SubtitleStyle.Render(preview)
		if field.Hint != "" && selected {
			out += "\n    " + sharedtui.LabelStyle.Render(field.Hint)
		}
		return out
	}
}

func (m *Model) viewGenerate() string {
	var b strings.Builder
	if m.busy {
		b.WriteString(sharedtui.StatusWarn.Render("Generating..."))
		return b.String()
	}
	if m.pending == nil {
		b.WriteString("Press enter to generate the SOO draft.\n")
		b.WriteString(sharedtui.LabelStyle.Render("Without an AI endpoint you get the prompt to run anywhere."))
		return b.String()
	}
	switch {
	case m.pending.Draft != "":
		b.WriteString(sharedtui.StatusOK.Render("Draft generated.") + "\n\n")
		b.WriteString(truncate(m.pending.Draft, 2000))
		b.WriteString("\n\n")
		b.WriteString(sharedtui.HelpDescStyle.Render("a accept · d discard"))
	default:
		b.WriteString(sharedtui.StatusWarn.Render("Prompt (run it with any model, paste the result into the draft step):") + "\n\n")
		b.WriteString(truncate(m.pending.Prompt, 2000))
	}
	return b.String()
}

func (m *Model) viewEdit(step flow.Step) string {
	field := step.Field[m.fieldIdx]
	var editor string
	if field.Type == flow.FieldTextarea {
		editor = m.area.View()
	} else {
		editor = m.input.View()
	}
	title := sharedtui.TitleStyle.Render(field.Label)
	hint := ""
	if field.Hint != "" {
		hint = "\n" + sharedtui.LabelStyle.Render(field.Hint)
	}
	return sharedtui.PaneFocusedStyle.Width(max(20, m.width-2)).Render(title + hint + "\n\n" + editor)
}

func (m *Model) viewJump() string {
	var b strings.Builder
	b.WriteString(sharedtui.TitleStyle.Render("Go to step") + "\n\n")
	for i, step := range m.flow.Definition().Steps {
		line := fmt.Sprintf("%2d. %s", i+1, step.Title)
		if i == m.jumpIdx {
			b.WriteString(sharedtui.SelectedStyle.Render("> " + line))
		} else {
			b.WriteString(sharedtui.UnselectedStyle.Render("  " + line))
		}
		b.WriteString("\n")
	}
	return sharedtui.PanelStyle.Width(max(20, m.width-2)).Render(b.String())
}

func (m *Model) footerText(step flow.Step) string {
	keys := "]/[ steps · j/k fields · enter edit · g go to · ? help · ctrl+c quit"
	switch step.ID {
	case "generate":
		keys = "enter generate · a accept · d discard · r review questions · " + keys
	case "soo_output":
		keys = "r review questions · space mark reviewed · l lint · w rewrite · " + keys
	case "export_center":
		keys = "e export bundle · " + keys
	default:
		if step.GateLint {
			keys = "l lint · w rewrite · " + keys
		}
	}
	status := m.status
	if status == "" {
		status = "ready"
	}
	return "KEYS: " + keys + " | " + status
}

func (m *Model) stepBindings(step flow.Step) []sharedtui.HelpBinding {
	var extras []sharedtui.HelpBinding
	switch step.ID {
	case "generate":
		extras = append(extras,
			sharedtui.HelpBinding{Key: "enter", Description: "generate draft"},
			sharedtui.HelpBinding{Key: "a", Description: "accept draft"},
			sharedtui.HelpBinding{Key: "d", Description: "discard draft"})
	case "soo_output":
		extras = append(extras,
			sharedtui.HelpBinding{Key: "r", Description: "generate review questions"},
			sharedtui.HelpBinding{Key: "space", Description: "mark question reviewed"})
	case "export_center":
		extras = append(extras,
			sharedtui.HelpBinding{Key: "e", Description: "write export bundle"})
	}
	if step.GateLint || step.ID == "soo_output" {
		extras = append(extras,
			sharedtui.HelpBinding{Key: "l", Description: "lint this step"},
			sharedtui.HelpBinding{Key: "w", Description: "rewrite directive phrasing"})
	}
	return extras
}

func renderFindings(res lint.Result) string {
	var b strings.Builder
	b.WriteString(sharedtui.StatusError.Render(fmt.Sprintf("Lint: %d error(s), %d warning(s)", res.ErrorCount, res.WarnCount)))
	b.WriteString("\n")
	for _, f := range res.Findings {
		style := sharedtui.StatusWarn
		if f.Severity == lint.SeverityError {
			style = sharedtui.StatusError
		}
		b.WriteString(fmt.Sprintf("  %s %q: %s\n", style.Render(string(f.Severity)), f.Match, f.Message))
	}
	return b.String()
}

func indent(text string, n int) string {
	pad := strings.Repeat(" ", n)
	lines := strings.Split(text, "\n")
	for i := range lines {
		lines[i] = pad + lines[i]
	}
	return strings.Join(lines, "\n")
}
