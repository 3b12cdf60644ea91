// Package reconcile decides, row by row, whether an edge already exists and
// creates it when it does not.
package reconcile

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/edgehound/internal/domain"
	"github.com/yungbote/edgehound/internal/platform/importerr"
	"github.com/yungbote/edgehound/internal/platform/logger"
)

// Store is the part of the graph client the engine needs. Any error it
// returns is fatal for the run.
type Store interface {
	CountMatches(ctx context.Context, query string, params map[string]any) (int64, error)
	Execute(ctx context.Context, query string, params map[string]any) ([]map[string]any, error)
}

// Engine reconciles records one at a time against a single store. The
// existence check always happens before the create, so at most one edge per
// (principal, host, label) exists as long as a single engine writes.
type Engine struct {
	store  Store
	spec   domain.EdgeSpec
	log    *logger.Logger
	tracer trace.Tracer
}

func New(store Store, spec domain.EdgeSpec, log *logger.Logger) (*Engine, error) {
	if store == nil {
		return nil, importerr.Errorf(importerr.KindConfig, "reconcile.new", "store required")
	}
	if log == nil {
		return nil, importerr.Errorf(importerr.KindConfig, "reconcile.new", "logger required")
	}
	if _, ok := Cypher(Query{Direction: spec.Direction, Edge: spec.Edge, Host: spec.HostLabel, Principal: domain.NodeUser}); !ok {
		return nil, importerr.Errorf(importerr.KindConfig, "reconcile.new", "unsupported edge spec %s", spec)
	}
	return &Engine{
		store:  store,
		spec:   spec,
		log:    log.With("component", "Reconcile", "edge", spec.Edge.String()),
		tracer: otel.Tracer("edgehound/reconcile"),
	}, nil
}

// Plan lists the principal labels tried for rec, in order. A declared type
// gets exactly one attempt. An undeclared SID is tried as User, then Group;
// an undeclared name only as User. Host->principal edges only target users,
// so they never fall back.
func Plan(spec domain.EdgeSpec, rec domain.EdgeRecord) []domain.NodeLabel {
	if rec.DeclaredType.Valid() {
		return []domain.NodeLabel{rec.DeclaredType}
	}
	if rec.Scheme == domain.SchemeSID && spec.Direction == domain.PrincipalToHost {
		return []domain.NodeLabel{domain.NodeUser, domain.NodeGroup}
	}
	return []domain.NodeLabel{domain.NodeUser}
}

// Reconcile runs the check-then-create sequence for rec. A non-nil error is a
// store error and the caller must stop the run.
func (e *Engine) Reconcile(ctx context.Context, rec domain.EdgeRecord) (domain.Outcome, error) {
	principal := rec.Principal
	if rec.Scheme == domain.SchemeSID {
		principal = domain.StripSIDDomain(principal)
	}
	out := domain.Outcome{Record: rec, Principal: principal}

	ctx, span := e.tracer.Start(ctx, "reconcile.record", trace.WithAttributes(
		attribute.Int("line", rec.Line),
		attribute.String("scheme", rec.Scheme.String()),
		attribute.String("edge", e.spec.Edge.String()),
	))
	defer span.End()

	params := map[string]any{ParamHost: rec.Host, ParamPrincipal: principal}
	for _, label := range Plan(e.spec, rec) {
		out.AssumedType = label
		out.Attempts++
		status, err := e.attempt(ctx, rec.Scheme, label, params)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "store error")
			return out, importerr.AtLine(importerr.KindStore, "reconcile", rec.Line,
				fmt.Errorf("%s -> %s as %s: %w", principal, rec.Host, label, err))
		}
		if status != domain.StatusResolutionFailed {
			out.Status = status
			span.SetAttributes(attribute.String("status", status.String()), attribute.String("assumed_type", label.String()))
			return out, nil
		}
		e.log.Debug("Create did not echo edge label", "line", rec.Line, "principal", principal, "assumed_type", label.String())
	}
	out.Status = domain.StatusResolutionFailed
	span.SetAttributes(attribute.String("status", out.Status.String()))
	return out, nil
}

func (e *Engine) attempt(ctx context.Context, scheme domain.Scheme, label domain.NodeLabel, params map[string]any) (domain.Status, error) {
	q := Query{Direction: e.spec.Direction, Edge: e.spec.Edge, Host: e.spec.HostLabel, Principal: label, Scheme: scheme, Op: OpExists}
	exists, ok := Cypher(q)
	if !ok {
		return 0, fmt.Errorf("no query variant for %+v", q)
	}
	n, err := e.store.CountMatches(ctx, exists, params)
	if err != nil {
		return 0, err
	}
	if n >= 1 {
		return domain.StatusAlreadyExists, nil
	}

	q.Op = OpCreate
	create, ok := Cypher(q)
	if !ok {
		return 0, fmt.Errorf("no query variant for %+v", q)
	}
	rows, err := e.store.Execute(ctx, create, params)
	if err != nil {
		return 0, err
	}
	for _, row := range rows {
		if echoed, _ := row[EchoColumn].(string); echoed == e.spec.Edge.String() {
			return domain.StatusCreated, nil
		}
	}
	return domain.StatusResolutionFailed, nil
}
