package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"statcore/internal/catalog"
	"statcore/internal/export"
	"statcore/internal/infra/persistence/memory"
	"statcore/pkg/hs3"
	"statcore/pkg/model"
)

type recordingSink struct {
	writes  map[string][]byte
	failErr error
}

func newRecordingSink() *recordingSink {
	return &recordingSink{writes: make(map[string][]byte)}
}

func (s *recordingSink) Write(_ context.Context, target string, payload []byte) (string, error) {
	if s.failErr != nil {
		return "", model.IOError{Op: "write", Path: target, Err: s.failErr}
	}
	s.writes[target] = append([]byte(nil), payload...)
	return "mem://" + target, nil
}

type captureLogger struct{ calls []string }

func (c *captureLogger) Debug(msg string, _ ...any) { c.calls = append(c.calls, "d:"+msg) }
func (c *captureLogger) Info(msg string, _ ...any)  { c.calls = append(c.calls, "i:"+msg) }
func (c *captureLogger) Warn(msg string, _ ...any)  { c.calls = append(c.calls, "w:"+msg) }
func (c *captureLogger) Error(msg string, _ ...any) { c.calls = append(c.calls, "e:"+msg) }

func (c *captureLogger) has(call string) bool {
	for _, got := range c.calls {
		if got == call {
			return true
		}
	}
	return false
}

func mustGaussianWorkspace(t *testing.T) *model.Workspace {
	t.Helper()
	x, err := model.NewObservable("x", "x", -10, 10)
	if err != nil {
		t.Fatalf("observable: %v", err)
	}
	mean, err := model.NewParameter("mean", "mean of gaussian", 1, -10, 10)
	if err != nil {
		t.Fatalf("mean: %v", err)
	}
	sigma, err := model.NewParameter("sigma", "width of gaussian", 1, 0.1, 10)
	if err != nil {
		t.Fatalf("sigma: %v", err)
	}
	gauss, err := model.NewGaussian("gauss", "gaussian PDF", x, mean, sigma)
	if err != nil {
		t.Fatalf("gaussian: %v", err)
	}
	ws, err := model.NewWorkspace("ws")
	if err != nil {
		t.Fatalf("workspace: %v", err)
	}
	if err := ws.Import(gauss); err != nil {
		t.Fatalf("import: %v", err)
	}
	return ws
}

func TestExportWritesDocumentAndCatalog(t *testing.T) {
	ctx := context.Background()
	sink := newRecordingSink()
	store := memory.NewStore()
	log := &captureLogger{}
	svc := NewService(WithSink(sink), WithCatalog(store), WithLogger(log))

	res, err := svc.Export(ctx, mustGaussianWorkspace(t), "gauss.json")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	payload, ok := sink.writes["gauss.json"]
	if !ok {
		t.Fatalf("expected sink write for gauss.json")
	}
	if res.Workspace != "ws" || res.Location != "mem://gauss.json" || res.Bytes != len(payload) {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Checksum != catalog.Checksum(payload) {
		t.Fatalf("checksum mismatch")
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings %+v", res.Warnings)
	}
	rec, found, err := store.Get(ctx, "ws")
	if err != nil || !found {
		t.Fatalf("catalog get: %v %v", found, err)
	}
	if rec.Revision == "" || rec.Revision != res.Revision || string(rec.Payload) != string(payload) {
		t.Fatalf("unexpected catalog record %+v", rec)
	}
	if !log.has("i:workspace exported") {
		t.Fatalf("expected info log, got %v", log.calls)
	}

	doc, err := hs3.Unmarshal(payload)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	names := strings.Join(doc.Names(), ",")
	if names != "gauss,mean,sigma,x" {
		t.Fatalf("unexpected names %s", names)
	}
}

func TestExportMissingReferenceWritesNothing(t *testing.T) {
	x, _ := model.NewObservable("x", "", -10, 10)
	mean, _ := model.NewParameter("mean", "", 1, -10, 10)
	sigma, _ := model.NewParameter("sigma", "", 1, 0.1, 10)
	gauss, _ := model.NewGaussian("gauss", "", x, mean, sigma)
	ws, _ := model.NewWorkspace("ws")
	if err := ws.Register("gauss", gauss); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := ws.Register("x", x); err != nil {
		t.Fatalf("register x: %v", err)
	}

	sink := newRecordingSink()
	store := memory.NewStore()
	_, err := NewService(WithSink(sink), WithCatalog(store)).Export(context.Background(), ws, "gauss.json")
	var exportErr model.ExportError
	if !errors.As(err, &exportErr) {
		t.Fatalf("expected ExportError, got %v", err)
	}
	if exportErr.Rule != RuleReferentialIntegrity || exportErr.Object != "gauss" || exportErr.Workspace != "ws" {
		t.Fatalf("unexpected export error %+v", exportErr)
	}
	if !strings.Contains(exportErr.Reason, "mean") {
		t.Fatalf("expected first missing reference in reason, got %q", exportErr.Reason)
	}
	if len(sink.writes) != 0 {
		t.Fatalf("sink must not be written on failure")
	}
	if recs, _ := store.List(context.Background()); len(recs) != 0 {
		t.Fatalf("catalog must stay empty, got %d records", len(recs))
	}
}

func TestExportWrongKindReference(t *testing.T) {
	x, _ := model.NewObservable("x", "", -10, 10)
	mean, _ := model.NewParameter("mean", "", 1, -10, 10)
	sigma, _ := model.NewParameter("sigma", "", 1, 0.1, 10)
	gauss, _ := model.NewGaussian("gauss", "", x, mean, sigma)
	ws, _ := model.NewWorkspace("ws")
	meanObs, _ := model.NewObservable("mean", "", -10, 10)
	for name, obj := range map[string]model.Object{"gauss": gauss, "x": x, "sigma": sigma, "mean": meanObs} {
		if err := ws.Register(name, obj); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}
	_, err := NewService(WithSink(newRecordingSink())).Export(context.Background(), ws, "out.json")
	var exportErr model.ExportError
	if !errors.As(err, &exportErr) || exportErr.Rule != RuleReferentialIntegrity {
		t.Fatalf("expected referential integrity error, got %v", err)
	}
	if !strings.Contains(exportErr.Reason, "expects parameter mean") {
		t.Fatalf("unexpected reason %q", exportErr.Reason)
	}
}

type landau struct {
	x model.Observable
}

func (landau) Name() string     { return "land" }
func (landau) Title() string    { return "land" }
func (landau) Kind() model.Kind { return model.Kind("landau") }
func (landau) Validate() error  { return nil }
func (l landau) Dependencies() []model.Object {
	return []model.Object{l.x}
}
func (l landau) References() []model.Reference {
	return []model.Reference{{Role: "x", Name: l.x.Name(), Kind: model.KindObservable}}
}

func TestExportUnsupportedKind(t *testing.T) {
	x, _ := model.NewObservable("x", "", 0, 1)
	ws, _ := model.NewWorkspace("ws")
	if err := ws.Import(landau{x: x}); err != nil {
		t.Fatalf("import: %v", err)
	}
	_, err := NewService(WithSink(newRecordingSink())).Export(context.Background(), ws, "out.json")
	var exportErr model.ExportError
	if !errors.As(err, &exportErr) || exportErr.Rule != RuleSupportedKind || exportErr.Object != "land" {
		t.Fatalf("expected supported_kind error, got %v", err)
	}
}

func TestExportUnusedVariableWarns(t *testing.T) {
	ws := mustGaussianWorkspace(t)
	extra, _ := model.NewParameter("unused", "", 0, -1, 1)
	if err := ws.Register("unused", extra); err != nil {
		t.Fatalf("register: %v", err)
	}
	log := &captureLogger{}
	sink := newRecordingSink()
	res, err := NewService(WithSink(sink), WithLogger(log)).Export(context.Background(), ws, "out.json")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(res.Warnings) != 1 || res.Warnings[0].Object != "unused" || res.Warnings[0].Rule != RuleUnusedVariable {
		t.Fatalf("unexpected warnings %+v", res.Warnings)
	}
	if !log.has("w:export rule warning") {
		t.Fatalf("expected warning log, got %v", log.calls)
	}
	if !strings.Contains(string(sink.writes["out.json"]), `"unused"`) {
		t.Fatalf("unused variable must still be exported")
	}
}

func TestExportSinkFailure(t *testing.T) {
	sink := newRecordingSink()
	sink.failErr = errors.New("disk full")
	store := memory.NewStore()
	log := &captureLogger{}
	_, err := NewService(WithSink(sink), WithCatalog(store), WithLogger(log)).Export(context.Background(), mustGaussianWorkspace(t), "out.json")
	var ioErr model.IOError
	if !errors.As(err, &ioErr) || ioErr.Path != "out.json" {
		t.Fatalf("expected IOError, got %v", err)
	}
	if recs, _ := store.List(context.Background()); len(recs) != 0 {
		t.Fatalf("catalog must not record failed exports")
	}
	if !log.has("e:operation failed") {
		t.Fatalf("expected error log, got %v", log.calls)
	}
}

// downCatalog accepts reads but refuses every write.
type downCatalog struct{ catalog.Store }

func (downCatalog) Put(context.Context, catalog.Record) (catalog.Record, error) {
	return catalog.Record{}, errors.New("catalog down")
}

func TestExportCatalogFailureLeavesTargetUntouched(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "ws.json")
	if err := os.WriteFile(existing, []byte(`{"old":true}`), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	svc := NewService(WithSink(export.NewFileSink(dir)), WithCatalog(downCatalog{memory.NewStore()}))
	ctx := context.Background()

	_, err := svc.Export(ctx, mustGaussianWorkspace(t), "ws.json")
	var ioErr model.IOError
	if !errors.As(err, &ioErr) || ioErr.Op != "catalog" || ioErr.Path != "ws" {
		t.Fatalf("expected catalog IOError, got %v", err)
	}
	if got, _ := os.ReadFile(existing); string(got) != `{"old":true}` {
		t.Fatalf("existing target replaced: %s", got)
	}

	_, err = svc.Export(ctx, mustGaussianWorkspace(t), "fresh.json")
	if !errors.As(err, &ioErr) {
		t.Fatalf("expected catalog IOError, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "fresh.json")); !os.IsNotExist(statErr) {
		t.Fatalf("target written despite catalog failure: %v", statErr)
	}
}

func TestExportSinkFailureRestoresPreviousRecord(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	sink := newRecordingSink()
	svc := NewService(WithSink(sink), WithCatalog(store))
	first, err := svc.Export(ctx, mustGaussianWorkspace(t), "ws.json")
	if err != nil {
		t.Fatalf("first export: %v", err)
	}

	ws := mustGaussianWorkspace(t)
	tau, err := model.NewParameter("tau", "tau", 2, 0, 5)
	if err != nil {
		t.Fatalf("tau: %v", err)
	}
	if err := ws.Import(tau); err != nil {
		t.Fatalf("import: %v", err)
	}
	sink.failErr = errors.New("disk full")
	if _, err := svc.Export(ctx, ws, "ws.json"); err == nil {
		t.Fatalf("expected sink failure")
	}
	rec, found, err := store.Get(ctx, "ws")
	if err != nil || !found {
		t.Fatalf("catalog get: %v %v", found, err)
	}
	if rec.Checksum != first.Checksum || string(rec.Payload) != string(sink.writes["ws.json"]) {
		t.Fatalf("catalog not restored to the first export: %+v", rec)
	}
}

func TestExportRequiresSinkAndWorkspace(t *testing.T) {
	if _, err := NewService().Export(context.Background(), mustGaussianWorkspace(t), "x.json"); err == nil {
		t.Fatalf("expected error without sink")
	}
	if _, err := NewService(WithSink(newRecordingSink())).Export(context.Background(), nil, "x.json"); err == nil {
		t.Fatalf("expected error for nil workspace")
	}
}

type failingRule struct{}

func (failingRule) Name() string { return "failing" }
func (failingRule) Evaluate(context.Context, model.WorkspaceView) (model.Result, error) {
	return model.Result{}, errors.New("rule exploded")
}

func TestRenderRuleEvaluationError(t *testing.T) {
	engine := model.NewRulesEngine()
	engine.Register(failingRule{})
	svc := NewService(WithRulesEngine(engine))
	_, err := svc.Render(context.Background(), mustGaussianWorkspace(t))
	var exportErr model.ExportError
	if !errors.As(err, &exportErr) || !strings.Contains(err.Error(), "rule exploded") {
		t.Fatalf("expected wrapped rule error, got %v", err)
	}
	if _, err := svc.Check(context.Background(), mustGaussianWorkspace(t)); err == nil {
		t.Fatalf("expected check error")
	}
	if names := svc.Rules(); len(names) != 1 || names[0] != "failing" {
		t.Fatalf("unexpected rules %v", names)
	}
}

func TestRenderMatchesMarshal(t *testing.T) {
	ws := mustGaussianWorkspace(t)
	svc := NewService(WithEncodeOptions(hs3.EncodeOptions{Description: "demo"}))
	out, err := svc.Render(context.Background(), ws)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want, err := hs3.Marshal(out.Document)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out.Payload) != string(want) {
		t.Fatalf("payload differs from marshalled document")
	}
	if out.Document.Metadata.Description != "demo" {
		t.Fatalf("encode options not applied: %+v", out.Document.Metadata)
	}
}

func TestServiceOptionsIgnoreNil(t *testing.T) {
	svc := NewService(WithLogger(nil), WithMetricsRecorder(nil), WithTracer(nil), WithClock(nil), WithRulesEngine(nil))
	if svc.logger == nil || svc.metrics == nil || svc.tracer == nil || svc.clock == nil || svc.engine == nil {
		t.Fatalf("nil options must keep defaults")
	}
	if got := len(svc.Rules()); got != 4 {
		t.Fatalf("expected 4 default rules, got %d", got)
	}
}

func TestServiceClockDrivesDurations(t *testing.T) {
	base := time.Unix(100, 0).UTC()
	var ticks int
	clk := ClockFunc(func() time.Time {
		ticks++
		return base.Add(time.Duration(ticks) * time.Second)
	})
	metrics := &captureMetricsRecorder{}
	svc := NewService(WithClock(clk), WithMetricsRecorder(metrics))
	if _, err := svc.Check(context.Background(), mustGaussianWorkspace(t)); err != nil {
		t.Fatalf("check: %v", err)
	}
	if len(metrics.calls) != 1 || metrics.calls[0].duration != time.Second {
		t.Fatalf("unexpected metrics %+v", metrics.calls)
	}
}
