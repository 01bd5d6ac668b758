// Package export assembles everything that leaves the session: derived
// read-only content, the answers snapshot document, Markdown rendering
// to HTML and RTF, and the deliverable bundle.
package export

import (
	"fmt"
	"strings"

	"github.com/outcome-tools/soocraft/internal/soocraft/answers"
)

func value(s *answers.Store, stepID, fieldID, fallback string) string {
	v := strings.TrimSpace(s.Get(stepID, fieldID, ""))
	if v == "" {
		return fallback
	}
	return v
}

// MooreStatement composes the positioning statement from the template
// blanks. Unfilled blanks render as bracketed placeholders so the
// statement stays readable while incomplete.
func MooreStatement(s *answers.Store) string {
	return fmt.Sprintf("For %s who %s, the %s is a %s that %s. Unlike %s, our product %s.",
		value(s, "vision_moore", "target_customer", "[target customer]"),
		value(s, "vision_moore", "customer_need", "[statement of need]"),
		value(s, "vision_moore", "product_name", "[product name]"),
		value(s, "vision_moore", "product_category", "[product category]"),
		value(s, "vision_moore", "key_benefit", "[key benefit]"),
		value(s, "vision_moore", "alternative", "[primary alternative]"),
		value(s, "vision_moore", "differentiation", "[primary differentiation]"))
}

// ReadinessLevel grades the readiness answers: STRONG needs both a
// product owner and end-user access, MEDIUM one of them, LOW neither.
func ReadinessLevel(s *answers.Store) string {
	hasPO := strings.Contains(s.Get("readiness", "has_po", ""), "yes")
	hasUsers := strings.Contains(s.Get("readiness", "end_user_access", ""), "yes")
	switch {
	case hasPO && hasUsers:
		return "STRONG"
	case hasPO || hasUsers:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// ReadinessSummary renders the readiness result text shown to the user
// and embedded in exports.
func ReadinessSummary(s *answers.Store) string {
	level := ReadinessLevel(s)
	var b strings.Builder
	switch level {
	case "STRONG":
		b.WriteString("✓ STRONG readiness for an agile development contract.\n\n")
		b.WriteString("You have a dedicated Product Owner and vendor access to end users. An outcome-based SOO is a good fit.\n")
	case "MEDIUM":
		b.WriteString("⚠ MEDIUM readiness. Proceed, but close the gap below before award.\n\n")
		if !strings.Contains(s.Get("readiness", "has_po", ""), "yes") {
			b.WriteString("- No dedicated Product Owner. Agile contracts stall without one person empowered to prioritize and accept work.\n")
		}
		if !strings.Contains(s.Get("readiness", "end_user_access", ""), "yes") {
			b.WriteString("- No vendor access to end users. Outcomes are hard to validate when the team cannot watch real usage.\n")
		}
	default:
		b.WriteString("✗ LOW readiness. An outcome-based contract is risky right now.\n\n")
		b.WriteString("- Assign a dedicated Product Owner with decision authority.\n")
		b.WriteString("- Arrange vendor access to end users.\n")
		b.WriteString("\nYou can continue drafting, but fix these before releasing a solicitation.\n")
	}
	if s.Get("readiness", "approvals_cycle", "") == "slow" {
		b.WriteString("\nApprovals measured in months will throttle iterative delivery. Secure a faster review path for routine decisions.\n")
	}
	return b.String()
}

// PWSRequestPack renders the static instruction pack that accompanies
// the SOO to vendors.
func PWSRequestPack(s *answers.Store) string {
	product := value(s, "vision_moore", "product_name", "the product")
	return fmt.Sprintf(`# PWS Request Pack: %s

## How to respond to this Statement of Objectives

The Government has defined **what** it needs and **what constraints
apply**. You, the offeror, propose **how** the work gets done. Respond
with a Performance Work Statement (PWS) covering:

1. **Technical approach.** How you will pursue each objective.
2. **Work breakdown.** The activities and milestones you propose.
3. **Deliverables.** What you will hand over, and when.
4. **Performance standards.** How each objective is measured, with
   acceptable quality levels.
5. **Schedule.** A realistic timeline with early, frequent delivery.
6. **Key personnel.** Who does the work and why they are qualified.

## Ground rules

- Do not restate the objectives back to us. Tell us how you reach them.
- Propose measurable acceptance criteria for every deliverable.
- Flag any objective you believe is infeasible as written, with an
  alternative.
- Assume iterative delivery with a Government Product Owner embedded in
  prioritization.

## Submission checklist

- [ ] PWS addresses every objective in the SOO
- [ ] Every deliverable has acceptance criteria
- [ ] Schedule shows working software early and often
- [ ] Assumptions and dependencies are listed explicitly
- [ ] Pricing maps to the proposed work breakdown
`, product)
}

// ExportSummary renders the Export Center help text.
func ExportSummary(s *answers.Store) string {
	product := value(s, "vision_moore", "product_name", "your product")
	return fmt.Sprintf(`Everything below goes into one zip archive for %s:

- soo.md / soo.html / soo.rtf        — the Statement of Objectives
- pws_request_pack.md / .html / .rtf — vendor instruction pack
- source/inputs.yml                  — every answer, re-importable
- source/audit.json                  — full session audit trail
- source/prompts.txt                 — the prompts behind each AI call

Import source/inputs.yml later to continue where you left off.
`, product)
}
