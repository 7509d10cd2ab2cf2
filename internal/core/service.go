// Package core runs workspace exports: rule evaluation, document encoding,
// sink writes and optional catalog bookkeeping.
package core

import (
	"context"
	"errors"
	"fmt"

	"statcore/internal/catalog"
	"statcore/pkg/hs3"
	"statcore/pkg/model"
)

// Sink persists a rendered document and reports where it ended up.
type Sink interface {
	Write(ctx context.Context, target string, payload []byte) (string, error)
}

// ExportResult summarises a successful export.
type ExportResult struct {
	Workspace string
	Location  string
	Bytes     int
	Checksum  string
	Revision  string
	Warnings  []model.Violation
}

// Rendering is a document produced without touching a sink.
type Rendering struct {
	Document hs3.Document
	Payload  []byte
	Result   model.Result
}

// Service coordinates exports.
type Service struct {
	engine  *model.RulesEngine
	sink    Sink
	catalog catalog.Store
	encode  hs3.EncodeOptions
	logger  Logger
	metrics MetricsRecorder
	tracer  Tracer
	clock   Clock
}

// Option customises a Service.
type Option func(*Service)

// WithRulesEngine replaces the default rule set.
func WithRulesEngine(engine *model.RulesEngine) Option {
	return func(s *Service) {
		if engine != nil {
			s.engine = engine
		}
	}
}

// WithSink sets the destination of exported documents.
func WithSink(sink Sink) Option {
	return func(s *Service) { s.sink = sink }
}

// WithCatalog records every successful export in store.
func WithCatalog(store catalog.Store) Option {
	return func(s *Service) { s.catalog = store }
}

// WithEncodeOptions overrides document metadata.
func WithEncodeOptions(opts hs3.EncodeOptions) Option {
	return func(s *Service) { s.encode = opts }
}

// WithLogger sets the service logger.
func WithLogger(logger Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetricsRecorder sets the metrics sink for operation outcomes.
func WithMetricsRecorder(recorder MetricsRecorder) Option {
	return func(s *Service) {
		if recorder != nil {
			s.metrics = recorder
		}
	}
}

// WithTracer sets the tracer wrapped around each operation.
func WithTracer(tracer Tracer) Option {
	return func(s *Service) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithClock overrides the time source.
func WithClock(clock Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewService constructs a service with the default rules and no-op observability.
func NewService(opts ...Option) *Service {
	s := &Service{
		engine:  NewDefaultRulesEngine(),
		logger:  noopLogger{},
		metrics: noopMetrics{},
		tracer:  noopTracer{},
		clock:   systemClock,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Rules returns the active rule names in evaluation order.
func (s *Service) Rules() []string { return s.engine.Rules() }

// Check evaluates the rules engine without encoding anything.
func (s *Service) Check(ctx context.Context, ws model.WorkspaceView) (model.Result, error) {
	var res model.Result
	err := s.run(ctx, "check", func(ctx context.Context) error {
		if ws == nil {
			return errors.New("workspace is nil")
		}
		var err error
		res, err = s.engine.Evaluate(ctx, ws)
		if err != nil {
			return fmt.Errorf("evaluate rules: %w", err)
		}
		return nil
	})
	return res, err
}

// Render evaluates the rules, encodes the workspace and marshals it. The first
// blocking violation aborts with model.ExportError.
func (s *Service) Render(ctx context.Context, ws model.WorkspaceView) (Rendering, error) {
	var out Rendering
	err := s.run(ctx, "render", func(ctx context.Context) error {
		var err error
		out, err = s.render(ctx, ws)
		return err
	})
	return out, err
}

func (s *Service) render(ctx context.Context, ws model.WorkspaceView) (Rendering, error) {
	if ws == nil {
		return Rendering{}, errors.New("workspace is nil")
	}
	res, err := s.engine.Evaluate(ctx, ws)
	if err != nil {
		return Rendering{}, model.ExportError{Workspace: ws.Name(), Reason: "rule evaluation failed", Err: err}
	}
	if v, ok := res.FirstBlocking(); ok {
		return Rendering{}, model.ExportError{Workspace: ws.Name(), Object: v.Object, Rule: v.Rule, Reason: v.Message}
	}
	for _, v := range res.Violations {
		if v.Severity == model.SeverityWarn {
			s.logger.Warn("export rule warning", "workspace", ws.Name(), "rule", v.Rule, "object", v.Object, "message", v.Message)
		}
	}
	doc, err := hs3.Encode(ws, s.encode)
	if err != nil {
		return Rendering{}, err
	}
	payload, err := hs3.Marshal(doc)
	if err != nil {
		return Rendering{}, model.ExportError{Workspace: ws.Name(), Reason: "marshal document", Err: err}
	}
	return Rendering{Document: doc, Payload: payload, Result: res}, nil
}

// Export renders ws and writes it to target through the configured sink.
// Nothing is written when rendering fails. When a catalog is configured the
// payload is saved under the workspace name before the sink write; a catalog
// failure leaves the target untouched and a failed write rolls the catalog
// back to its previous record.
func (s *Service) Export(ctx context.Context, ws model.WorkspaceView, target string) (ExportResult, error) {
	var result ExportResult
	err := s.run(ctx, "export", func(ctx context.Context) error {
		if s.sink == nil {
			return errors.New("export sink not configured")
		}
		out, err := s.render(ctx, ws)
		if err != nil {
			return err
		}
		var revision string
		var rollback func(context.Context) error
		if s.catalog != nil {
			revision, rollback, err = s.saveToCatalog(ctx, ws.Name(), out.Payload)
			if err != nil {
				return err
			}
		}
		location, err := s.sink.Write(ctx, target, out.Payload)
		if err != nil {
			if rollback != nil {
				if rbErr := rollback(context.WithoutCancel(ctx)); rbErr != nil {
					s.logger.Error("catalog rollback failed", "workspace", ws.Name(), "error", rbErr)
					return errors.Join(err, model.IOError{Op: "catalog rollback", Path: ws.Name(), Err: rbErr})
				}
			}
			return err
		}
		result = ExportResult{
			Workspace: ws.Name(),
			Location:  location,
			Bytes:     len(out.Payload),
			Checksum:  catalog.Checksum(out.Payload),
			Revision:  revision,
		}
		for _, v := range out.Result.Violations {
			if v.Severity == model.SeverityWarn {
				result.Warnings = append(result.Warnings, v)
			}
		}
		s.logger.Info("workspace exported", "workspace", result.Workspace, "location", result.Location, "bytes", result.Bytes)
		return nil
	})
	if err != nil {
		return ExportResult{}, err
	}
	return result, nil
}

// saveToCatalog stores payload under name and returns the new revision with
// a func that restores the record held before, or removes it if there was none.
func (s *Service) saveToCatalog(ctx context.Context, name string, payload []byte) (string, func(context.Context) error, error) {
	prev, existed, err := s.catalog.Get(ctx, name)
	if err != nil {
		return "", nil, model.IOError{Op: "catalog", Path: name, Err: err}
	}
	rec, err := catalog.Save(ctx, s.catalog, name, payload)
	if err != nil {
		return "", nil, model.IOError{Op: "catalog", Path: name, Err: err}
	}
	rollback := func(ctx context.Context) error {
		if existed {
			_, err := s.catalog.Put(ctx, prev)
			return err
		}
		_, err := s.catalog.Delete(ctx, name)
		return err
	}
	return rec.Revision, rollback, nil
}
