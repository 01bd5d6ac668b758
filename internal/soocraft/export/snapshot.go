package export

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/outcome-tools/soocraft/internal/soocraft/answers"
)

const snapshotVersion = 1

var reviewBulletRe = regexp.MustCompile(`^\s*[-*]\s+`)

// ParseReviewQuestions extracts the bullet-line questions from the
// generated review text, in document order. Non-bullet lines (headings,
// prose around the list) are not questions.
func ParseReviewQuestions(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if reviewBulletRe.MatchString(line) {
			out = append(out, strings.TrimSpace(reviewBulletRe.ReplaceAllString(line, "")))
		}
	}
	return out
}

// ReviewQuestionKey names the per-question reviewed flag kept on the
// draft review step, indexed in parse order from zero.
func ReviewQuestionKey(i int) string {
	return fmt.Sprintf("review_q_%d", i)
}

// ChecklistItem is one parsed review question with its reviewed flag.
type ChecklistItem struct {
	Text     string `yaml:"text"`
	Reviewed bool   `yaml:"reviewed"`
}

// Document is the inputs.yml shape: every answer, grouped by section,
// re-importable into a later session.
type Document struct {
	Version  int `yaml:"version"`
	Metadata struct {
		CreatedAt     string `yaml:"createdAt"`
		WizardVersion string `yaml:"wizardVersion"`
	} `yaml:"metadata"`
	Readiness struct {
		HasPO          string `yaml:"has_po"`
		EndUserAccess  string `yaml:"end_user_access"`
		ApprovalsCycle string `yaml:"approvals_cycle"`
	} `yaml:"readiness"`
	VisionBoard struct {
		Vision        string `yaml:"vision"`
		TargetGroup   string `yaml:"target_group"`
		Needs         string `yaml:"needs"`
		Product       string `yaml:"product"`
		BusinessGoals string `yaml:"business_goals"`
	} `yaml:"product_vision_board"`
	VisionMoore struct {
		TargetCustomer  string `yaml:"target_customer"`
		CustomerNeed    string `yaml:"customer_need"`
		ProductName     string `yaml:"product_name"`
		ProductCategory string `yaml:"product_category"`
		KeyBenefit      string `yaml:"key_benefit"`
		Alternative     string `yaml:"alternative"`
		Differentiation string `yaml:"differentiation"`
		MooreStatement  string `yaml:"moore_statement"`
	} `yaml:"product_vision_moore"`
	Methodology struct {
		Context string `yaml:"context"`
	} `yaml:"methodology"`
	SOOInputs struct {
		ProblemContext string `yaml:"problem_context"`
		Objectives     string `yaml:"objectives"`
		Constraints    string `yaml:"constraints"`
	} `yaml:"soo_inputs"`
	SOOReview struct {
		ReviewQuestions   string                   `yaml:"review_questions"`
		ReviewChecklist   map[string]ChecklistItem `yaml:"review_checklist"`
		TotalQuestions    int                      `yaml:"total_questions"`
		QuestionsReviewed int                      `yaml:"questions_reviewed"`
	} `yaml:"soo_review"`
}

// Snapshot assembles the inputs.yml document from the current answers,
// including the derived positioning statement and checklist totals.
func Snapshot(s *answers.Store, wizardVersion string) Document {
	var d Document
	d.Version = snapshotVersion
	d.Metadata.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	d.Metadata.WizardVersion = wizardVersion

	d.Readiness.HasPO = s.Get("readiness", "has_po", "")
	d.Readiness.EndUserAccess = s.Get("readiness", "end_user_access", "")
	d.Readiness.ApprovalsCycle = s.Get("readiness", "approvals_cycle", "")

	d.VisionBoard.Vision = s.Get("vision", "vision", "")
	d.VisionBoard.TargetGroup = s.Get("vision", "target_group", "")
	d.VisionBoard.Needs = s.Get("vision", "needs", "")
	d.VisionBoard.Product = s.Get("vision", "product", "")
	d.VisionBoard.BusinessGoals = s.Get("vision", "business_goals", "")

	d.VisionMoore.TargetCustomer = s.Get("vision_moore", "target_customer", "")
	d.VisionMoore.CustomerNeed = s.Get("vision_moore", "customer_need", "")
	d.VisionMoore.ProductName = s.Get("vision_moore", "product_name", "")
	d.VisionMoore.ProductCategory = s.Get("vision_moore", "product_category", "")
	d.VisionMoore.KeyBenefit = s.Get("vision_moore", "key_benefit", "")
	d.VisionMoore.Alternative = s.Get("vision_moore", "alternative", "")
	d.VisionMoore.Differentiation = s.Get("vision_moore", "differentiation", "")
	d.VisionMoore.MooreStatement = MooreStatement(s)

	d.Methodology.Context = s.Get("methodology", "context", "new_dev")

	d.SOOInputs.ProblemContext = s.Get("soo_inputs", "problem_context", "")
	d.SOOInputs.Objectives = s.Get("soo_inputs", "objectives", "")
	d.SOOInputs.Constraints = s.Get("soo_inputs", "constraints", "")

	d.SOOReview.ReviewQuestions = s.Get("soo_output", "review_questions", "")
	d.SOOReview.ReviewChecklist = map[string]ChecklistItem{}
	questions := ParseReviewQuestions(d.SOOReview.ReviewQuestions)
	for i, q := range questions {
		reviewed := s.GetBool("soo_output", ReviewQuestionKey(i), false)
		d.SOOReview.ReviewChecklist[fmt.Sprintf("question_%d", i)] = ChecklistItem{
			Text:     q,
			Reviewed: reviewed,
		}
		if reviewed {
			d.SOOReview.QuestionsReviewed++
		}
	}
	d.SOOReview.TotalQuestions = len(questions)
	return d
}

// MarshalSnapshot renders the document as inputs.yml bytes.
func MarshalSnapshot(d Document) ([]byte, error) {
	return yaml.Marshal(d)
}

// Restore merges a previously exported inputs.yml into the store.
// Only sections and fields present in the document are written, so a
// partial file never blanks existing answers. A malformed document is
// rejected before any mutation.
func Restore(s *answers.Store, raw []byte) error {
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse inputs: %w", err)
	}
	if doc == nil {
		return fmt.Errorf("parse inputs: empty document")
	}

	sections := []struct {
		section string
		stepID  string
		fields  []string
	}{
		{"readiness", "readiness", []string{"has_po", "end_user_access", "approvals_cycle"}},
		{"product_vision_board", "vision", []string{"vision", "target_group", "needs", "product", "business_goals"}},
		{"product_vision_moore", "vision_moore", []string{"target_customer", "customer_need", "product_name", "product_category", "key_benefit", "alternative", "differentiation"}},
		{"methodology", "methodology", []string{"context"}},
		{"soo_inputs", "soo_inputs", []string{"problem_context", "objectives", "constraints"}},
	}
	for _, sec := range sections {
		values, ok := doc[sec.section].(map[string]any)
		if !ok {
			continue
		}
		for _, field := range sec.fields {
			if v, ok := values[field].(string); ok {
				s.Set(sec.stepID, field, v)
			}
		}
	}

	review, ok := doc["soo_review"].(map[string]any)
	if !ok {
		return nil
	}
	if v, ok := review["review_questions"].(string); ok {
		s.Set("soo_output", "review_questions", v)
	}
	checklist, ok := review["review_checklist"].(map[string]any)
	if !ok {
		return nil
	}
	for key, v := range checklist {
		entry, ok := v.(map[string]any)
		if !ok {
			continue
		}
		num, found := strings.CutPrefix(key, "question_")
		if !found {
			continue
		}
		i, err := strconv.Atoi(num)
		if err != nil || i < 0 {
			continue
		}
		if reviewed, ok := entry["reviewed"].(bool); ok {
			s.Set("soo_output", ReviewQuestionKey(i), reviewed)
		}
	}
	return nil
}
