// Package generator runs the template-based code generation pipeline: it
// feeds the current parsed document to the configured generator, pads runs
// that finish too quickly for the progress indicator to register, and writes
// every produced file through the host file writer.
package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/loctree/loctree/internal/logging"
	"github.com/loctree/loctree/pkg/interfaces"
)

var (
	// ErrServiceDisabled indicates no generator is configured.
	ErrServiceDisabled = errors.New("generator: service disabled")
	// ErrGeneratorRequired indicates the dependency wiring is incomplete.
	ErrGeneratorRequired = errors.New("generator: code generator is required")
	// ErrWriterRequired indicates the dependency wiring is incomplete.
	ErrWriterRequired = errors.New("generator: file writer is required")
)

// Service describes the generation pipeline contract.
type Service interface {
	Run(ctx context.Context, req Request) (*Result, error)
	Templates() interfaces.TemplateCatalog
}

// Config captures runtime behaviour toggles for the pipeline.
type Config struct {
	// MinDuration pads runs shorter than this so the "in progress"
	// indicator is perceivable.
	MinDuration time.Duration
}

// Dependencies lists the collaborators required by the pipeline.
type Dependencies struct {
	Generator interfaces.CodeGenerator
	Writer    interfaces.FileWriter
	Logger    interfaces.Logger
}

// Request is one generation run.
type Request struct {
	Request  interfaces.GenerateRequest
	Document string
}

// Result reports aggregated run metadata.
type Result struct {
	Files    int
	Duration time.Duration
}

// NewService wires a pipeline with the provided configuration and
// dependencies.
func NewService(cfg Config, deps Dependencies) (Service, error) {
	if deps.Generator == nil {
		return nil, ErrGeneratorRequired
	}
	if deps.Writer == nil {
		return nil, ErrWriterRequired
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	return &service{cfg: cfg, deps: deps, logger: logger, now: time.Now, sleep: sleepCtx}, nil
}

// NewDisabledService returns a Service that fails all runs with
// ErrServiceDisabled.
func NewDisabledService() Service {
	return disabledService{}
}

type service struct {
	cfg    Config
	deps   Dependencies
	logger interfaces.Logger
	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration)
}

func (s *service) Templates() interfaces.TemplateCatalog {
	return s.deps.Generator.Templates()
}

func (s *service) Run(ctx context.Context, req Request) (*Result, error) {
	started := s.now()
	s.logger.Info("generator.run.start", "document", req.Document)

	files, err := s.generate(ctx, req.Request)

	// Pad fast runs, failures included, up to the configured floor.
	if s.cfg.MinDuration > 0 {
		if elapsed := s.now().Sub(started); elapsed < s.cfg.MinDuration {
			s.sleep(ctx, s.cfg.MinDuration-elapsed)
		}
	}

	if err != nil {
		s.logger.Error("generator.run.failed", "document", req.Document, "error", err)
		return nil, err
	}

	for _, file := range files {
		if err := s.deps.Writer.WriteFile(ctx, file.Path, file.Content); err != nil {
			s.logger.Error("generator.write.failed", "path", file.Path, "error", err)
			return nil, fmt.Errorf("generator: write %s: %w", file.Path, err)
		}
	}

	result := &Result{Files: len(files), Duration: s.now().Sub(started)}
	s.logger.Info("generator.run.success", "document", req.Document, "files", result.Files)
	return result, nil
}

// generate isolates the generator call so a panicking template cannot take
// the engine down; panics surface as ordinary generation errors.
func (s *service) generate(ctx context.Context, req interfaces.GenerateRequest) (files []interfaces.GeneratedFile, err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			files = nil
			err = fmt.Errorf("generator: template panicked: %v", recovered)
		}
	}()
	return s.deps.Generator.Generate(ctx, req)
}

func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

type disabledService struct{}

func (disabledService) Run(context.Context, Request) (*Result, error) {
	return nil, ErrServiceDisabled
}

func (disabledService) Templates() interfaces.TemplateCatalog {
	return interfaces.TemplateCatalog{}
}
