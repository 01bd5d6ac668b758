// Package lint checks freeform text against the outcome-language rule
// set and offers a mechanical rewrite for blocking violations.
package lint

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warn"
)

// Rule is one declarative lint pattern.
type Rule struct {
	ID      string `yaml:"id"`
	Pattern string `yaml:"pattern"`
	Message string `yaml:"message"`
}

// Substitution is one literal rewrite pair. The rewrite list is ordered
// most-specific first; reordering it changes results.
type Substitution struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// RuleSet is the declarative configuration document.
type RuleSet struct {
	Lint struct {
		Disallow []Rule `yaml:"disallow"`
		Warn     []Rule `yaml:"warn"`
	} `yaml:"lint"`
	Rewrite []Substitution `yaml:"rewrite"`
}

// ParseRuleSet loads a rule document from YAML.
func ParseRuleSet(raw []byte) (RuleSet, error) {
	var set RuleSet
	if err := yaml.Unmarshal(raw, &set); err != nil {
		return RuleSet{}, fmt.Errorf("parse lint rules: %w", err)
	}
	return set, nil
}

// Finding is one match of a rule against text.
type Finding struct {
	RuleID   string   `json:"ruleId"`
	Severity Severity `json:"severity"`
	Match    string   `json:"match"`
	Offset   int      `json:"offset"`
	Message  string   `json:"message"`
}

// Result aggregates the findings of one evaluation.
type Result struct {
	Findings   []Finding `json:"findings"`
	HasErrors  bool      `json:"hasErrors"`
	ErrorCount int       `json:"errorCount"`
	WarnCount  int       `json:"warnCount"`
}

type compiledRule struct {
	rule Rule
	re   *regexp.Regexp
}

type compiledSub struct {
	sub Substitution
	re  *regexp.Regexp
}

// Engine holds the compiled rule set. Evaluation is pure: identical text
// yields identical findings in identical order.
type Engine struct {
	disallow []compiledRule
	warn     []compiledRule
	rewrites []compiledSub
}

// Compile validates and compiles a rule set, failing fast on any bad
// pattern rather than tolerating it at evaluation time.
func Compile(set RuleSet) (*Engine, error) {
	e := &Engine{}
	var err error
	if e.disallow, err = compileRules(set.Lint.Disallow); err != nil {
		return nil, err
	}
	if e.warn, err = compileRules(set.Lint.Warn); err != nil {
		return nil, err
	}
	for _, sub := range set.Rewrite {
		if sub.From == "" {
			return nil, fmt.Errorf("rewrite rule with empty from phrase")
		}
		re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(sub.From))
		e.rewrites = append(e.rewrites, compiledSub{sub: sub, re: re})
	}
	return e, nil
}

func compileRules(rules []Rule) ([]compiledRule, error) {
	out := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		if r.ID == "" {
			return nil, fmt.Errorf("lint rule with pattern %q has no id", r.Pattern)
		}
		re, err := regexp.Compile(`(?i)` + r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("lint rule %s: %w", r.ID, err)
		}
		out = append(out, compiledRule{rule: r, re: re})
	}
	return out, nil
}

// Evaluate scans text against every rule, disallow list first, emitting
// one finding per non-overlapping match in rule order then match order.
func (e *Engine) Evaluate(text string) Result {
	var res Result
	scan := func(rules []compiledRule, sev Severity) {
		for _, cr := range rules {
			for _, loc := range cr.re.FindAllStringIndex(text, -1) {
				res.Findings = append(res.Findings, Finding{
					RuleID:   cr.rule.ID,
					Severity: sev,
					Match:    text[loc[0]:loc[1]],
					Offset:   loc[0],
					Message:  cr.rule.Message,
				})
			}
		}
	}
	scan(e.disallow, SeverityError)
	scan(e.warn, SeverityWarn)
	for _, f := range res.Findings {
		switch f.Severity {
		case SeverityError:
			res.ErrorCount++
		case SeverityWarn:
			res.WarnCount++
		}
	}
	res.HasErrors = res.ErrorCount > 0
	return res
}

// EvaluateFields joins field values by newline, in order, and evaluates
// the whole step as one document. A disallowed phrase leaking across
// field boundaries is still caught.
func (e *Engine) EvaluateFields(values []string) Result {
	return e.Evaluate(strings.Join(values, "\n"))
}

// Rewrite applies the ordered substitution list to text and returns the
// rewritten text with the number of substitutions made. This is surface
// pattern substitution only; it does not understand meaning, and callers
// re-lint the result because substitutions can leave violations behind.
func (e *Engine) Rewrite(text string) (string, int) {
	count := 0
	for _, cs := range e.rewrites {
		matches := cs.re.FindAllStringIndex(text, -1)
		if len(matches) == 0 {
			continue
		}
		count += len(matches)
		text = cs.re.ReplaceAllLiteralString(text, cs.sub.To)
	}
	return text, count
}
