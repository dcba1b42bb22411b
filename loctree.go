// Package loctree is the embeddable document synchronization and command
// engine for localization-resource documents. A host wires in its document
// access, an editing surface, and optionally a code generator; the engine
// keeps the serialized document, the validated tree, and the surface
// consistent with each other.
package loctree

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/loctree/loctree/internal/commands"
	"github.com/loctree/loctree/internal/commands/structure"
	"github.com/loctree/loctree/internal/document"
	"github.com/loctree/loctree/internal/generator"
	"github.com/loctree/loctree/internal/logging"
	"github.com/loctree/loctree/internal/logging/gologger"
	"github.com/loctree/loctree/internal/model"
	"github.com/loctree/loctree/internal/protocol"
	"github.com/loctree/loctree/internal/status"
	"github.com/loctree/loctree/internal/tree"
	"github.com/loctree/loctree/pkg/interfaces"
)

var (
	// ErrHostRequired indicates the engine was constructed without a host.
	ErrHostRequired = errors.New("loctree: host is required")
	// ErrDocumentNotOpen indicates no context exists for the given URI.
	ErrDocumentNotOpen = errors.New("loctree: document is not open")
	// ErrEngineClosed indicates the engine was shut down.
	ErrEngineClosed = errors.New("loctree: engine is closed")
)

// Re-exported contracts so embedders depend on the root package only.
type (
	Host             = interfaces.Host
	Surface          = interfaces.Surface
	CodeGenerator    = interfaces.CodeGenerator
	FileWriter       = interfaces.FileWriter
	Logger           = interfaces.Logger
	LoggerProvider   = interfaces.LoggerProvider
	DocumentSnapshot = interfaces.DocumentSnapshot
	ChangeReason     = interfaces.ChangeReason
	NotifyLevel      = interfaces.NotifyLevel
	InputBoxOptions  = interfaces.InputBoxOptions
	TemplateCatalog  = interfaces.TemplateCatalog
	TemplateGroup    = interfaces.TemplateGroup
	TemplateSetting  = interfaces.TemplateSetting
	GenerateRequest  = interfaces.GenerateRequest
	GeneratedFile    = interfaces.GeneratedFile
)

// Tree-facing exports.
type (
	Ref             = model.Ref
	Kind            = model.Kind
	DocumentContext = document.Context
	RefreshOptions  = document.RefreshOptions
	TreeContext     = tree.Context
	TreePresenter   = tree.Presenter
	Capabilities    = tree.Capabilities
	StatusSnapshot  = status.Snapshot
	StatusListener  = status.Listener
	StatusState     = status.State
	Envelope        = protocol.Envelope
	Commands        = structure.Handlers
)

// Command messages re-exported so hosts can invoke the command surface
// without importing internal packages.
type (
	ElementRef                 = structure.ElementRef
	AddCategoryMessage         = structure.AddCategoryMessage
	AddResourceMessage         = structure.AddResourceMessage
	RenameElementMessage       = structure.RenameElementMessage
	DeleteElementsMessage      = structure.DeleteElementsMessage
	DuplicateElementMessage    = structure.DuplicateElementMessage
	AddLanguageMessage         = structure.AddLanguageMessage
	DeleteLanguageMessage      = structure.DeleteLanguageMessage
	MarkPrimaryLanguageMessage = structure.MarkPrimaryLanguageMessage
	ToggleLanguagesMessage     = structure.ToggleLanguagesMessage
	ShowPropertiesMessage      = structure.ShowPropertiesMessage
	RunGeneratorMessage        = structure.RunGeneratorMessage
	FindMessage                = structure.FindMessage
)

// Element kind constants re-exported for hosts.
const (
	KindModel     = model.KindModel
	KindCategory  = model.KindCategory
	KindResource  = model.KindResource
	KindTreeRoot  = model.KindTreeRoot
	KindLanguages = model.KindLanguages
	KindLanguage  = model.KindLanguage
)

// Status machine states re-exported for listeners.
const (
	StateIdle   = status.StateIdle
	StateActive = status.StateActive
	StateError  = status.StateError
	StateStatus = status.StateStatus
)

// Dependencies lists the host-provided collaborators. Host is mandatory;
// everything else degrades gracefully when absent.
type Dependencies struct {
	Host           interfaces.Host
	Surface        interfaces.Surface
	Presenter      tree.Presenter
	Generator      interfaces.CodeGenerator
	Writer         interfaces.FileWriter
	LoggerProvider interfaces.LoggerProvider
	StatusListener status.Listener
}

// Engine is the top-level runtime facade: one shared tree, one document
// context per open document, and the command surface bound to both.
type Engine struct {
	cfg      Config
	deps     Dependencies
	provider interfaces.LoggerProvider
	logger   interfaces.Logger
	tree     *tree.Context
	commands *structure.Handlers

	mu      sync.Mutex
	docs    map[string]*document.Context
	pending map[string]*time.Timer
	closed  bool
}

// New constructs an engine from validated configuration and host
// dependencies.
func New(cfg Config, deps Dependencies) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Host == nil {
		return nil, ErrHostRequired
	}

	provider, err := buildProvider(cfg)
	if err != nil {
		return nil, err
	}
	if deps.LoggerProvider != nil {
		provider = deps.LoggerProvider
	}

	treeCtx := tree.NewContext(deps.Presenter, logging.TreeLogger(provider))
	return &Engine{
		cfg:      cfg,
		deps:     deps,
		provider: provider,
		logger:   logging.ModuleLogger(provider, "loctree"),
		tree:     treeCtx,
		commands: structure.NewHandlers(treeCtx, commands.CommandLogger(provider, "structure")),
		docs:     map[string]*document.Context{},
		pending:  map[string]*time.Timer{},
	}, nil
}

func buildProvider(cfg Config) (interfaces.LoggerProvider, error) {
	if !cfg.Logging.Enabled || strings.EqualFold(strings.TrimSpace(cfg.Logging.Provider), "noop") {
		return nil, nil
	}
	return gologger.NewProvider(gologger.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.AddSource,
		Focus:     cfg.Logging.Focus,
	})
}

// OpenDocument creates the context for one document, runs the initial
// refresh, makes it the active tree document, and advertises the template
// catalogue to the surface. Opening an already open URI returns the
// existing context.
func (e *Engine) OpenDocument(ctx context.Context, uri string) (*document.Context, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, ErrEngineClosed
	}
	if doc, ok := e.docs[uri]; ok {
		e.mu.Unlock()
		e.tree.UpdateDocument(ctx, doc)
		return doc, nil
	}
	e.mu.Unlock()

	var gen generator.Service
	if e.deps.Generator != nil && e.deps.Writer != nil {
		svc, err := generator.NewService(
			generator.Config{MinDuration: e.cfg.Generation.MinDuration},
			generator.Dependencies{
				Generator: e.deps.Generator,
				Writer:    e.deps.Writer,
				Logger:    logging.GeneratorLogger(e.provider),
			},
		)
		if err != nil {
			return nil, fmt.Errorf("loctree: wire generator: %w", err)
		}
		gen = svc
	}

	machineOpts := []status.Option{status.WithLogger(logging.StatusLogger(e.provider))}
	if e.deps.StatusListener != nil {
		machineOpts = append(machineOpts, status.WithListener(e.deps.StatusListener))
	}

	doc, err := document.New(ctx, document.Config{
		URI:             uri,
		DefaultLanguage: e.cfg.DefaultLanguage,
		StatusTimeout:   e.cfg.Generation.StatusTimeout,
		ErrorTimeout:    e.cfg.Generation.ErrorTimeout,
	}, document.Dependencies{
		Host:      e.deps.Host,
		Surface:   e.deps.Surface,
		Navigator: e.tree,
		Generator: gen,
		Status:    status.NewMachine(machineOpts...),
		Logger:    logging.DocumentLogger(e.provider),
	})
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		doc.Close()
		return nil, ErrEngineClosed
	}
	e.docs[uri] = doc
	e.mu.Unlock()

	e.tree.UpdateDocument(ctx, doc)
	if err := doc.SendInit(ctx); err != nil && !errors.Is(err, protocol.ErrNoSurface) {
		e.logger.Warn("loctree.open.init_failed", "uri", uri, "error", err)
	}
	e.logger.Info("loctree.document.opened", "uri", uri)
	return doc, nil
}

// Document returns the open context for a URI.
func (e *Engine) Document(uri string) (*document.Context, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	doc, ok := e.docs[uri]
	return doc, ok
}

// CloseDocument tears one document down. If it was the active tree document
// the tree detaches.
func (e *Engine) CloseDocument(ctx context.Context, uri string) error {
	e.mu.Lock()
	doc, ok := e.docs[uri]
	if ok {
		delete(e.docs, uri)
	}
	if timer, pending := e.pending[uri]; pending {
		timer.Stop()
		delete(e.pending, uri)
	}
	e.mu.Unlock()
	if !ok {
		return ErrDocumentNotOpen
	}

	doc.Close()
	if e.tree.Active() == doc {
		e.tree.UpdateDocument(ctx, nil)
	}
	e.logger.Info("loctree.document.closed", "uri", uri)
	return nil
}

// NotifyChange feeds a host change notification into the owning document.
// Rapid unforced notifications for the same document are coalesced inside
// the configured window; forced ones run the refresh immediately.
func (e *Engine) NotifyChange(ctx context.Context, snap DocumentSnapshot, opts RefreshOptions) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrEngineClosed
	}
	doc, ok := e.docs[snap.URI]
	if !ok {
		e.mu.Unlock()
		return ErrDocumentNotOpen
	}

	window := e.cfg.Refresh.CoalesceWindow
	if opts.Force || opts.UndoRedo || window <= 0 {
		e.mu.Unlock()
		return doc.Update(ctx, snap, opts)
	}

	if timer, pending := e.pending[snap.URI]; pending {
		timer.Stop()
	}
	uri := snap.URI
	e.pending[uri] = time.AfterFunc(window, func() {
		e.mu.Lock()
		delete(e.pending, uri)
		closed := e.closed
		e.mu.Unlock()
		if closed || doc.Closed() {
			return
		}
		// Refresh from the freshest snapshot, not the one that armed the
		// timer; further keystrokes may have landed inside the window.
		latest, ok := e.deps.Host.Snapshot(uri)
		if !ok {
			return
		}
		if latest.Reason == interfaces.ChangeReasonUnknown {
			latest.Reason = snap.Reason
		}
		if err := doc.Update(context.Background(), latest, opts); err != nil {
			e.logger.Warn("loctree.refresh.failed", "uri", uri, "error", err)
		}
	})
	e.mu.Unlock()
	return nil
}

// Tree exposes the shared tree context.
func (e *Engine) Tree() *tree.Context { return e.tree }

// Commands exposes the structural command handlers.
func (e *Engine) Commands() *structure.Handlers { return e.commands }

// Dispatch routes one raw surface message to the active document.
func (e *Engine) Dispatch(ctx context.Context, raw []byte) error {
	doc := e.tree.Active()
	if doc == nil {
		return tree.ErrNoActiveDocument
	}
	return doc.Dispatcher().Dispatch(ctx, raw)
}

// Close tears down every open document and stops pending refresh timers.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	docs := e.docs
	e.docs = map[string]*document.Context{}
	for _, timer := range e.pending {
		timer.Stop()
	}
	e.pending = map[string]*time.Timer{}
	e.mu.Unlock()

	for _, doc := range docs {
		doc.Close()
	}
	e.tree.UpdateDocument(context.Background(), nil)
	e.logger.Info("loctree.closed")
}
