// Package commands holds the soocraft subcommands. Each command opens
// the session through App, which wires the store, linter, audit log,
// flow and draft pipeline together the same way for every entry point.
package commands

import (
	"fmt"

	"github.com/outcome-tools/soocraft/internal/soocraft/answers"
	"github.com/outcome-tools/soocraft/internal/soocraft/audit"
	"github.com/outcome-tools/soocraft/internal/soocraft/config"
	"github.com/outcome-tools/soocraft/internal/soocraft/content"
	"github.com/outcome-tools/soocraft/internal/soocraft/draft"
	"github.com/outcome-tools/soocraft/internal/soocraft/export"
	"github.com/outcome-tools/soocraft/internal/soocraft/flow"
	"github.com/outcome-tools/soocraft/internal/soocraft/lint"
	"github.com/outcome-tools/soocraft/internal/soocraft/project"
)

// App is one fully wired session.
type App struct {
	Root     string
	Config   config.Config
	Bundle   *content.Bundle
	Store    *answers.Store
	Linter   *lint.Engine
	Log      *audit.Log
	Flow     *flow.Flow
	Pipeline *draft.Pipeline
}

// OpenApp initializes the project directory and assembles the session.
func OpenApp(root string) (*App, error) {
	if err := project.EnsureInitialized(root, config.DefaultConfigToml); err != nil {
		return nil, err
	}
	cfg, err := config.LoadFromRoot(root)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	bundle, err := content.Load(root)
	if err != nil {
		return nil, err
	}
	linter, err := lint.Compile(bundle.Rules)
	if err != nil {
		return nil, err
	}
	if err := draft.ValidatePrompts(bundle.Flow, bundle); err != nil {
		return nil, err
	}

	store := answers.NewStore(project.AnswersPath(root))
	if err := store.Load(); err != nil {
		return nil, err
	}
	if cfg.SyncURL != "" {
		store.SetSyncer(answers.NewHTTPSyncer(cfg.SyncURL, cfg.Timeout()))
	}

	log := audit.Open(project.AuditDir(root))

	pipeline := draft.NewPipeline(store, linter, log, bundle)
	if !cfg.PromptOnly() {
		pipeline.Client = draft.NewClient(cfg.AIEndpoint, cfg.Model, cfg.Timeout())
		pipeline.Endpoint = cfg.AIEndpoint
		pipeline.Model = cfg.Model
	}

	f := flow.New(bundle.Flow, store, linter, log)
	f.OnEnter = func(step flow.Step) { fillDerived(step, store, log) }

	return &App{
		Root:     root,
		Config:   cfg,
		Bundle:   bundle,
		Store:    store,
		Linter:   linter,
		Log:      log,
		Flow:     f,
		Pipeline: pipeline,
	}, nil
}

// Close releases the session's resources.
func (a *App) Close() {
	if a.Log != nil {
		_ = a.Log.Close()
	}
}

// fillDerived recomputes the step's auto-filled field on entry so
// read-only summaries always reflect the latest answers.
func fillDerived(step flow.Step, store *answers.Store, log *audit.Log) {
	switch step.AutoFill {
	case "readiness_summary":
		summary := export.ReadinessSummary(store)
		store.Set(step.ID, step.AutoFill, summary)
		log.SetReadiness(audit.Readiness{
			Level:            export.ReadinessLevel(store),
			HasProductOwner:  store.Get("readiness", "has_po", "") == "yes",
			HasEndUserAccess: store.Get("readiness", "end_user_access", "") == "yes",
			Summary:          summary,
		})
	case "moore_statement":
		store.Set(step.ID, step.AutoFill, export.MooreStatement(store))
	case "pws_pack_preview":
		store.Set(step.ID, step.AutoFill, export.PWSRequestPack(store))
	case "export_summary":
		store.Set(step.ID, step.AutoFill, export.ExportSummary(store))
	}
}
