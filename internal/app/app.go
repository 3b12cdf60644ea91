// Package app wires one import run: header validation, store connection,
// then either a dry-run count or row-by-row reconciliation.
package app

import (
	"context"
	"fmt"

	"github.com/yungbote/edgehound/internal/domain"
	"github.com/yungbote/edgehound/internal/ingest"
	"github.com/yungbote/edgehound/internal/platform/importerr"
	"github.com/yungbote/edgehound/internal/platform/logger"
	"github.com/yungbote/edgehound/internal/platform/neo4jdb"
	"github.com/yungbote/edgehound/internal/reconcile"
	"github.com/yungbote/edgehound/internal/report"
)

// Store is the graph connection held for the whole run.
type Store interface {
	reconcile.Store
	ValidateDomain(ctx context.Context, domain string) error
	Close(ctx context.Context) error
}

// StoreOpener connects and verifies connectivity.
type StoreOpener func(ctx context.Context, cfg neo4jdb.Config, log *logger.Logger) (Store, error)

// SourceOpener validates the input header and returns a restartable source.
type SourceOpener func(path string, spec domain.EdgeSpec) (*ingest.Source, error)

func Neo4jOpener(ctx context.Context, cfg neo4jdb.Config, log *logger.Logger) (Store, error) {
	c, err := neo4jdb.New(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return c, nil
}

type App struct {
	Log *logger.Logger
	Cfg Config

	openStore  StoreOpener
	openSource SourceOpener
	reporter   report.Reporter
}

type Option func(*App)

func WithStoreOpener(open StoreOpener) Option {
	return func(a *App) { a.openStore = open }
}

func WithSourceOpener(open SourceOpener) Option {
	return func(a *App) { a.openSource = open }
}

func WithReporter(r report.Reporter) Option {
	return func(a *App) { a.reporter = r }
}

func New(cfg Config, log *logger.Logger, opts ...Option) (*App, error) {
	if log == nil {
		return nil, importerr.Errorf(importerr.KindConfig, "app.new", "logger required")
	}
	if !cfg.Spec.Edge.Valid() {
		return nil, importerr.Errorf(importerr.KindConfig, "app.new", "edge spec required")
	}
	a := &App{
		Log:        log,
		Cfg:        cfg,
		openStore:  Neo4jOpener,
		openSource: ingest.Open,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.reporter == nil {
		a.reporter = report.NewLogReporter(log)
	}
	return a, nil
}

// Run imports the configured file. Schema and connectivity failures abort
// before any row is read; a store error aborts the remaining rows. Rows
// already reconciled stay applied.
func (a *App) Run(ctx context.Context) (report.Summary, error) {
	var sum report.Summary

	src, err := a.openSource(a.Cfg.CSVPath, a.Cfg.Spec)
	if err != nil {
		return sum, withKind(err, importerr.KindSchema, "open_source")
	}
	a.Log.Info("Validated input header", "csv", src.Name(), "edge", a.Cfg.Spec.String())

	store, err := a.openStore(ctx, a.Cfg.Settings.Neo4j(), a.Log)
	if err != nil {
		return sum, withKind(err, importerr.KindConnectivity, "open_store")
	}
	defer func() { _ = store.Close(context.Background()) }()

	if a.Cfg.Settings.Domain != "" {
		if err := store.ValidateDomain(ctx, a.Cfg.Settings.Domain); err != nil {
			return sum, withKind(err, importerr.KindConnectivity, "validate_domain")
		}
	}

	if a.Cfg.DryRun {
		valid, skipped, err := src.Count()
		if err != nil {
			return sum, err
		}
		a.reporter.Notice("Dry run: connectivity verified, no relations written", "rows", valid, "malformed_rows", skipped)
		return sum, nil
	}

	engine, err := reconcile.New(store, a.Cfg.Spec, a.Log)
	if err != nil {
		return sum, err
	}
	for rec, err := range src.Records() {
		if cerr := ctx.Err(); cerr != nil {
			return sum, fmt.Errorf("import interrupted: %w", cerr)
		}
		if err != nil {
			if importerr.RowScoped(err) {
				sum.AddSkipped()
				a.reporter.Skipped(importerr.LineOf(err), err)
				continue
			}
			return sum, err
		}
		out, err := engine.Reconcile(ctx, rec)
		if err != nil {
			return sum, err
		}
		sum.Add(out.Status)
		a.reporter.Report(out)
	}

	a.reporter.Notice("Import finished",
		"created", sum.Created,
		"already_exists", sum.AlreadyExists,
		"resolution_failed", sum.ResolutionFailed,
		"skipped", sum.Skipped,
	)
	return sum, nil
}

func withKind(err error, kind importerr.Kind, op string) error {
	if importerr.KindOf(err) != "" {
		return err
	}
	return importerr.New(kind, op, err)
}
