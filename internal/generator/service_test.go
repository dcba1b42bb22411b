package generator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/loctree/loctree/pkg/interfaces"
)

type fakeGenerator struct {
	files    []interfaces.GeneratedFile
	err      error
	panicMsg string
}

func (f *fakeGenerator) Templates() interfaces.TemplateCatalog {
	return interfaces.TemplateCatalog{Groups: []interfaces.TemplateGroup{{Name: "typescript"}}}
}

func (f *fakeGenerator) Generate(context.Context, interfaces.GenerateRequest) ([]interfaces.GeneratedFile, error) {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	return f.files, f.err
}

type fakeWriter struct {
	written map[string][]byte
	err     error
}

func (f *fakeWriter) WriteFile(_ context.Context, path string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	if f.written == nil {
		f.written = map[string][]byte{}
	}
	f.written[path] = data
	return nil
}

func newTestService(t *testing.T, cfg Config, gen interfaces.CodeGenerator, writer interfaces.FileWriter) Service {
	t.Helper()
	svc, err := NewService(cfg, Dependencies{Generator: gen, Writer: writer})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestRunWritesGeneratedFiles(t *testing.T) {
	writer := &fakeWriter{}
	svc := newTestService(t, Config{}, &fakeGenerator{
		files: []interfaces.GeneratedFile{
			{Path: "gen/resources.ts", Content: []byte("export const R = {}")},
			{Path: "gen/resources.d.ts", Content: []byte("declare const R: {}")},
		},
	}, writer)

	result, err := svc.Run(context.Background(), Request{Document: "model.loctree.json"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Files != 2 {
		t.Fatalf("expected 2 files, got %d", result.Files)
	}
	if _, ok := writer.written["gen/resources.ts"]; !ok {
		t.Fatal("generated file not written")
	}
}

func TestRunPadsShortRuns(t *testing.T) {
	var slept time.Duration
	svc := newTestService(t, Config{MinDuration: 500 * time.Millisecond}, &fakeGenerator{}, &fakeWriter{})
	svc.(*service).sleep = func(_ context.Context, d time.Duration) { slept = d }

	if _, err := svc.Run(context.Background(), Request{}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if slept <= 0 || slept > 500*time.Millisecond {
		t.Fatalf("expected pad below the floor, slept %v", slept)
	}
}

func TestRunMapsGeneratorFailure(t *testing.T) {
	svc := newTestService(t, Config{}, &fakeGenerator{err: errors.New("template broke")}, &fakeWriter{})
	if _, err := svc.Run(context.Background(), Request{}); err == nil {
		t.Fatal("expected generation failure")
	}
}

func TestRunRecoversFromPanickingTemplate(t *testing.T) {
	svc := newTestService(t, Config{}, &fakeGenerator{panicMsg: "nil map write"}, &fakeWriter{})
	_, err := svc.Run(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected panic mapped to error")
	}
}

func TestRunReportsWriteFailure(t *testing.T) {
	svc := newTestService(t, Config{}, &fakeGenerator{
		files: []interfaces.GeneratedFile{{Path: "gen/out.ts"}},
	}, &fakeWriter{err: errors.New("disk full")})
	if _, err := svc.Run(context.Background(), Request{}); err == nil {
		t.Fatal("expected write failure surfaced")
	}
}

func TestDisabledService(t *testing.T) {
	svc := NewDisabledService()
	if _, err := svc.Run(context.Background(), Request{}); !errors.Is(err, ErrServiceDisabled) {
		t.Fatalf("expected ErrServiceDisabled, got %v", err)
	}
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	if _, err := NewService(Config{}, Dependencies{Writer: &fakeWriter{}}); !errors.Is(err, ErrGeneratorRequired) {
		t.Fatalf("expected ErrGeneratorRequired, got %v", err)
	}
	if _, err := NewService(Config{}, Dependencies{Generator: &fakeGenerator{}}); !errors.Is(err, ErrWriterRequired) {
		t.Fatalf("expected ErrWriterRequired, got %v", err)
	}
}
