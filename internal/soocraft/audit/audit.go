// Package audit provides the append-only session audit trail, persisted
// in .soocraft/audit/audit.db (SQLite WAL mode). Persistence failures
// degrade the log to memory-only; the session never stops for them.
package audit

import (
	"database/sql"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/outcome-tools/soocraft/internal/soocraft/lint"
)

// WizardVersion tags audit documents and exported session snapshots.
const WizardVersion = "2.0"

const createTableSQL = `
CREATE TABLE IF NOT EXISTS audit_entries (
	id TEXT PRIMARY KEY,
	kind TEXT NOT NULL,
	payload TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audit_kind ON audit_entries(kind);
`

// Event is one timestamped audit entry (AI call attempts, draft accepts,
// import/export actions).
type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	Event     string         `json:"event"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// StepCompletion records one successful advance past a step.
type StepCompletion struct {
	Timestamp  time.Time `json:"timestamp"`
	StepID     string    `json:"stepId"`
	StepTitle  string    `json:"stepTitle"`
	StepNumber int       `json:"stepNumber"`
}

// LintRecord captures one gate evaluation for a step.
type LintRecord struct {
	Timestamp  time.Time      `json:"timestamp"`
	StepID     string         `json:"stepId"`
	StepTitle  string         `json:"stepTitle"`
	HasErrors  bool           `json:"hasErrors"`
	ErrorCount int            `json:"errorCount"`
	WarnCount  int            `json:"warnCount"`
	Findings   []lint.Finding `json:"findings"`
}

// Readiness captures the readiness assessment outcome.
type Readiness struct {
	Timestamp        time.Time `json:"timestamp"`
	Level            string    `json:"level"`
	HasProductOwner  bool      `json:"has_product_owner"`
	HasEndUserAccess bool      `json:"has_end_user_access"`
	Summary          string    `json:"summary"`
}

// Metadata summarizes the session for the exported document.
type Metadata struct {
	SessionStart        time.Time  `json:"sessionStart"`
	SessionEnd          *time.Time `json:"sessionEnd,omitempty"`
	WizardVersion       string     `json:"wizardVersion"`
	TotalStepsCompleted int        `json:"totalStepsCompleted"`
	AICallsAttempted    int        `json:"aiCallsAttempted"`
	AICallsSuccessful   int        `json:"aiCallsSuccessful"`
}

// Document is the exported audit log shape.
type Document struct {
	Metadata        Metadata              `json:"metadata"`
	Readiness       *Readiness            `json:"readiness,omitempty"`
	LintResults     map[string]LintRecord `json:"lintResults"`
	Events          []Event               `json:"events"`
	StepCompletions []StepCompletion      `json:"stepCompletions"`
}

// Log is the session audit trail.
type Log struct {
	mu           sync.Mutex
	db           *sql.DB
	sessionStart time.Time
	readiness    *Readiness
	lintResults  map[string]LintRecord
	events       []Event
	completions  []StepCompletion
	now          func() time.Time
}

// Open creates or reopens the audit database under dir and restores any
// entries from a prior session. It never fails: on storage errors the
// log runs memory-only and the error is reported once.
func Open(dir string) *Log {
	l := &Log{
		sessionStart: time.Now().UTC(),
		lintResults:  map[string]LintRecord{},
		now:          func() time.Time { return time.Now().UTC() },
	}
	if dir == "" {
		return l
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		log.Printf("audit: %v; continuing in memory", err)
		return l
	}
	dbPath := filepath.Join(dir, "audit.db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		log.Printf("audit: open db: %v; continuing in memory", err)
		return l
	}
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		log.Printf("audit: init schema: %v; continuing in memory", err)
		return l
	}
	l.db = db
	if err := l.restore(); err != nil {
		log.Printf("audit: restore: %v", err)
	}
	return l
}

// RecordEvent appends a generic audit event.
func (l *Log) RecordEvent(name string, fields map[string]any) {
	ev := Event{Timestamp: l.now(), Event: name, Fields: fields}
	l.mu.Lock()
	l.events = append(l.events, ev)
	l.mu.Unlock()
	l.append("event", ev)
}

// RecordStepCompletion logs a successful advance past a step.
func (l *Log) RecordStepCompletion(stepID, stepTitle string, stepNumber int) {
	sc := StepCompletion{Timestamp: l.now(), StepID: stepID, StepTitle: stepTitle, StepNumber: stepNumber}
	l.mu.Lock()
	l.completions = append(l.completions, sc)
	l.mu.Unlock()
	l.append("step_completion", sc)
}

// RecordLint logs a gate evaluation. The latest record per step wins.
func (l *Log) RecordLint(stepID, stepTitle string, res lint.Result) {
	rec := LintRecord{
		Timestamp:  l.now(),
		StepID:     stepID,
		StepTitle:  stepTitle,
		HasErrors:  res.HasErrors,
		ErrorCount: res.ErrorCount,
		WarnCount:  res.WarnCount,
		Findings:   res.Findings,
	}
	l.mu.Lock()
	l.lintResults[stepID] = rec
	l.mu.Unlock()
	l.append("lint", rec)
}

// SetReadiness records the readiness assessment.
func (l *Log) SetReadiness(r Readiness) {
	if r.Timestamp.IsZero() {
		r.Timestamp = l.now()
	}
	l.mu.Lock()
	l.readiness = &r
	l.mu.Unlock()
	l.append("readiness", r)
}

// Snapshot assembles the exportable audit document, finalizing session
// metadata at call time.
func (l *Log) Snapshot() Document {
	l.mu.Lock()
	defer l.mu.Unlock()
	end := l.now()
	doc := Document{
		Metadata: Metadata{
			SessionStart:        l.sessionStart,
			SessionEnd:          &end,
			WizardVersion:       WizardVersion,
			TotalStepsCompleted: len(l.completions),
		},
		Readiness:       l.readiness,
		LintResults:     map[string]LintRecord{},
		Events:          append([]Event(nil), l.events...),
		StepCompletions: append([]StepCompletion(nil), l.completions...),
	}
	for k, v := range l.lintResults {
		doc.LintResults[k] = v
	}
	for _, ev := range l.events {
		if strings.HasPrefix(ev.Event, "ai_call_") {
			doc.Metadata.AICallsAttempted++
		}
		if ev.Event == "ai_call_success" {
			doc.Metadata.AICallsSuccessful++
		}
	}
	return doc
}

// ExportJSON renders the audit document for download.
func (l *Log) ExportJSON() ([]byte, error) {
	return json.MarshalIndent(l.Snapshot(), "", "  ")
}

// Reset drops all entries and starts a fresh session.
func (l *Log) Reset() {
	l.mu.Lock()
	l.sessionStart = l.now()
	l.readiness = nil
	l.lintResults = map[string]LintRecord{}
	l.events = nil
	l.completions = nil
	db := l.db
	l.mu.Unlock()
	if db != nil {
		if _, err := db.Exec(`DELETE FROM audit_entries`); err != nil {
			log.Printf("audit: reset: %v", err)
		}
	}
}

// Close closes the backing database, if any.
func (l *Log) Close() error {
	if l.db == nil {
		return nil
	}
	return l.db.Close()
}

func (l *Log) append(kind string, payload any) {
	if l.db == nil {
		return
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Printf("audit: encode %s: %v", kind, err)
		return
	}
	_, err = l.db.Exec(`INSERT INTO audit_entries (id, kind, payload, created_at) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), kind, string(raw), l.now().Format(time.RFC3339Nano))
	if err != nil {
		log.Printf("audit: append %s: %v", kind, err)
	}
}

func (l *Log) restore() error {
	rows, err := l.db.Query(`SELECT kind, payload, created_at FROM audit_entries ORDER BY created_at`)
	if err != nil {
		return err
	}
	defer rows.Close()
	first := true
	for rows.Next() {
		var kind, payload, createdAt string
		if err := rows.Scan(&kind, &payload, &createdAt); err != nil {
			return err
		}
		if first {
			if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
				l.sessionStart = t
			}
			first = false
		}
		switch kind {
		case "event":
			var ev Event
			if json.Unmarshal([]byte(payload), &ev) == nil {
				l.events = append(l.events, ev)
			}
		case "step_completion":
			var sc StepCompletion
			if json.Unmarshal([]byte(payload), &sc) == nil {
				l.completions = append(l.completions, sc)
			}
		case "lint":
			var rec LintRecord
			if json.Unmarshal([]byte(payload), &rec) == nil {
				l.lintResults[rec.StepID] = rec
			}
		case "readiness":
			var r Readiness
			if json.Unmarshal([]byte(payload), &r) == nil {
				l.readiness = &r
			}
		}
	}
	return rows.Err()
}
