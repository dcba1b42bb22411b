// Package document owns the authoritative bridge between one open document
// and its tree, selection, and editing surface. The context re-parses host
// snapshots into a fresh tree, serializes mutations back with the original
// formatting, and sequences the background generation pipeline through the
// status machine.
package document

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"path"
	"sync"
	"time"

	"github.com/loctree/loctree/internal/generator"
	"github.com/loctree/loctree/internal/logging"
	"github.com/loctree/loctree/internal/model"
	"github.com/loctree/loctree/internal/protocol"
	"github.com/loctree/loctree/internal/status"
	"github.com/loctree/loctree/pkg/interfaces"
)

var (
	// ErrClosed indicates the document context was torn down.
	ErrClosed = errors.New("document: context is closed")
	// ErrHostRequired indicates the dependency wiring is incomplete.
	ErrHostRequired = errors.New("document: host is required")
	// ErrNavigatorRequired indicates the dependency wiring is incomplete.
	ErrNavigatorRequired = errors.New("document: tree navigator is required")
	// ErrNoTree indicates an operation needs a successfully parsed tree.
	ErrNoTree = errors.New("document: no parsed tree is available")
	// ErrGenerationInProgress rejects overlapping generator runs.
	ErrGenerationInProgress = errors.New("document: code generation is already running")
	// ErrMixedParents rejects multi-element operations across parents.
	ErrMixedParents = errors.New("document: selected elements do not share one parent")
)

// TreeNavigator is the document's view of the shared navigational tree. The
// tree package implements it; keeping the contract here avoids an import
// cycle between the two.
type TreeNavigator interface {
	// SelectedRefs captures the current selection as rebuild-safe refs.
	SelectedRefs() []model.Ref
	// Refresh re-renders the tree after the document's tree was rebuilt.
	Refresh(ctx context.Context)
	// SelectRef re-resolves and selects one ref against the current tree.
	// It reports whether the ref still resolved.
	SelectRef(ctx context.Context, ref model.Ref) bool
	// Reveal expands ancestors and selects the element at ref.
	Reveal(ctx context.Context, ref model.Ref)
	// ClearSelection empties the selection.
	ClearSelection()
	// Focus moves keyboard focus to the tree view.
	Focus(ctx context.Context)
}

// RefreshOptions tunes one Update call. Force runs the refresh pipeline even
// for snapshots the context would normally ignore; UndoRedo re-pushes the
// resolved selection to the surface afterwards.
type RefreshOptions struct {
	Force    bool
	UndoRedo bool
}

// Config captures per-document runtime settings.
type Config struct {
	URI             string
	DefaultLanguage string
	StatusTimeout   time.Duration
	ErrorTimeout    time.Duration
}

// Dependencies lists the collaborators of one document context.
type Dependencies struct {
	Host      interfaces.Host
	Surface   interfaces.Surface
	Navigator TreeNavigator
	Generator generator.Service
	Status    *status.Machine
	Logger    interfaces.Logger
}

// Context is the engine-side state of one open document. All host and
// surface interaction for the document funnels through it.
type Context struct {
	cfg        Config
	host       interfaces.Host
	nav        TreeNavigator
	gen        generator.Service
	status     *status.Machine
	dispatcher *protocol.Dispatcher
	logger     interfaces.Logger

	mu            sync.Mutex
	text          string
	style         model.Style
	root          *model.Root
	jsonModel     json.RawMessage
	languages     *model.LanguagesElement
	lastCommitted [sha256.Size]byte
	pageErrors    map[pageErrorKey]string
	showLanguages bool
	readOnly      bool
	generating    bool
	savingManual  bool
	closed        bool
}

type pageErrorKey struct {
	path  string
	field string
}

// New wires a document context and runs the initial refresh from the host's
// current snapshot of the document.
func New(ctx context.Context, cfg Config, deps Dependencies) (*Context, error) {
	if deps.Host == nil {
		return nil, ErrHostRequired
	}
	if deps.Navigator == nil {
		return nil, ErrNavigatorRequired
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	gen := deps.Generator
	if gen == nil {
		gen = generator.NewDisabledService()
	}
	machine := deps.Status
	if machine == nil {
		machine = status.NewMachine(status.WithLogger(logger))
	}

	c := &Context{
		cfg:           cfg,
		host:          deps.Host,
		nav:           deps.Navigator,
		gen:           gen,
		status:        machine,
		logger:        logging.WithDocument(logger, cfg.URI),
		style:         model.DefaultStyle(),
		pageErrors:    map[pageErrorKey]string{},
		showLanguages: true,
	}
	c.dispatcher = protocol.NewDispatcher(c, deps.Surface, logger)

	if snap, ok := deps.Host.Snapshot(cfg.URI); ok {
		if err := c.Update(ctx, snap, RefreshOptions{Force: true}); err != nil {
			c.logger.Warn("document.open.invalid", "error", err)
		}
	}
	return c, nil
}

// URI returns the host identity of the underlying document.
func (c *Context) URI() string { return c.cfg.URI }

// Dispatcher exposes the surface message channel for this document.
func (c *Context) Dispatcher() *protocol.Dispatcher { return c.dispatcher }

// Status exposes the per-document status machine.
func (c *Context) Status() *status.Machine { return c.status }

// Root returns the current tree, or nil when the document never parsed.
func (c *Context) Root() *model.Root {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.root
}

// Languages returns the current virtual language layer.
func (c *Context) Languages() *model.LanguagesElement {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.languages
}

// LanguagesVisible reports whether the tree should show the virtual
// languages branch.
func (c *Context) LanguagesVisible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.showLanguages
}

// ToggleLanguagesVisible flips the virtual languages branch on or off and
// re-renders the tree. Visibility is view state only; it never touches the
// document.
func (c *Context) ToggleLanguagesVisible(ctx context.Context) {
	c.mu.Lock()
	c.showLanguages = !c.showLanguages
	visible := c.showLanguages
	c.mu.Unlock()
	c.logger.Debug("document.languages.visible", "visible", visible)
	c.nav.Refresh(ctx)
}

// Closed reports whether Close ran.
func (c *Context) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Close tears the context down: pending status timers are cancelled and all
// later operations degrade to logged no-ops.
func (c *Context) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.status.Close()
	c.logger.Info("document.close")
}

// Update accepts a host change notification and runs the refresh pipeline:
// parse, validate, rebuild tree and virtual layer, re-resolve the previous
// selection. Unclassified notifications whose text matches the last commit
// are echoes of the context's own edit and are ignored.
func (c *Context) Update(ctx context.Context, snap interfaces.DocumentSnapshot, opts RefreshOptions) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.readOnly && !opts.Force {
		c.mu.Unlock()
		c.logger.Debug("document.update.ignored", "cause", "read-only")
		return nil
	}
	hasTree := c.root != nil
	ownEcho := sha256.Sum256([]byte(snap.Text)) == c.lastCommitted
	c.mu.Unlock()

	if snap.Reason == interfaces.ChangeReasonUnknown && !opts.Force {
		if ownEcho {
			c.logger.Debug("document.update.ignored", "cause", "own commit echo")
			return nil
		}
		if hasTree {
			c.logger.Debug("document.update.ignored", "cause", "unclassified change")
			return nil
		}
	}
	if snap.URI != c.cfg.URI && hasTree && !opts.Force {
		c.logger.Debug("document.update.ignored", "cause", "foreign document", "uri", snap.URI)
		return nil
	}

	refs := c.nav.SelectedRefs()

	root, rawModel, err := model.Parse(snap.Text)
	if err != nil {
		// A stale tree must not survive a failed refresh: committing it
		// later would overwrite the user's raw edit with old content.
		c.mu.Lock()
		c.root = nil
		c.jsonModel = nil
		c.languages = nil
		c.mu.Unlock()
		c.logger.Warn("document.update.parse_failed", "error", err)
		c.blockEditor(ctx, true)
		c.nav.ClearSelection()
		c.nav.Refresh(ctx)
		c.notify(interfaces.NotifyError, "The document could not be parsed: "+err.Error())
		return err
	}

	c.mu.Lock()
	c.text = snap.Text
	c.style = model.DetectStyle(snap.Text)
	c.root = root
	c.jsonModel = rawModel
	c.languages = model.BuildLanguages(root)
	c.mu.Unlock()

	c.blockEditor(ctx, false)
	c.nav.Refresh(ctx)

	restored := c.restoreSelection(ctx, refs)
	if opts.UndoRedo && restored != nil {
		// Undo and redo can change data the surface cached, so the
		// resolved element is re-pushed instead of trusting surface state.
		if err := c.LoadElement(ctx, *restored, ""); err != nil {
			c.logger.Warn("document.update.reload_failed", "error", err)
		}
	}

	c.logger.Debug("document.update.refreshed",
		"reason", string(snap.Reason), "force", opts.Force, "undoRedo", opts.UndoRedo)
	return nil
}

// SendInit advertises the generator template catalogue to the surface.
func (c *Context) SendInit(ctx context.Context) error {
	if c.Closed() {
		return ErrClosed
	}
	return c.dispatcher.Send(ctx, protocol.CommandInit, protocol.InitMessage{Catalog: c.gen.Templates()})
}

// RequestPageReload asks the surface to re-request its loaded element.
func (c *Context) RequestPageReload(ctx context.Context) error {
	if c.Closed() {
		return ErrClosed
	}
	return c.dispatcher.Send(ctx, protocol.CommandRequestPageReload, protocol.RequestPageReloadMessage{})
}

// FocusSurface moves keyboard focus to the editing surface.
func (c *Context) FocusSurface(ctx context.Context) error {
	if c.Closed() {
		return ErrClosed
	}
	return c.dispatcher.Send(ctx, protocol.CommandFocus, protocol.FocusMessage{})
}

// restoreSelection re-resolves captured refs against the rebuilt tree and
// selects the first one that survived. When nothing resolves, selection
// falls back to the model root. It returns the selected ref, or nil when
// there was nothing to restore.
func (c *Context) restoreSelection(ctx context.Context, refs []model.Ref) *model.Ref {
	for _, ref := range refs {
		if c.nav.SelectRef(ctx, ref) {
			return &ref
		}
	}
	if len(refs) > 0 {
		rootRef := model.Ref{Kind: model.KindModel, Path: ""}
		if c.nav.SelectRef(ctx, rootRef) {
			return &rootRef
		}
		c.nav.ClearSelection()
	}
	return nil
}

// CommitChanges serializes the current tree back to text in the document's
// detected style and asks the host for a single whole-range replace. It
// reports false, as a logged no-op, when the document cannot be committed.
func (c *Context) CommitChanges(ctx context.Context, reason string) bool {
	c.mu.Lock()
	if c.closed || c.root == nil {
		c.mu.Unlock()
		c.logger.Warn("document.commit.skipped", "reason", reason)
		return false
	}
	root := c.root
	style := c.style
	c.mu.Unlock()

	text, err := model.Serialize(root, style)
	if err != nil {
		c.logger.Error("document.commit.serialize_failed", "reason", reason, "error", err)
		return false
	}

	accepted, err := c.host.ApplyEdit(ctx, c.cfg.URI, text)
	if err != nil {
		c.logger.Error("document.commit.failed", "reason", reason, "error", err)
		return false
	}
	if !accepted {
		c.logger.Warn("document.commit.rejected", "reason", reason)
		return false
	}

	c.mu.Lock()
	c.text = text
	c.lastCommitted = sha256.Sum256([]byte(text))
	c.jsonModel = json.RawMessage(text)
	c.languages = model.BuildLanguages(root)
	c.mu.Unlock()

	c.logger.Debug("document.commit.applied", "reason", reason)
	return true
}

// Resolve looks an element up by its rebuild-safe ref, covering both the
// serialized tree and the virtual language layer.
func (c *Context) Resolve(ref model.Ref) (model.Element, bool) {
	c.mu.Lock()
	root := c.root
	languages := c.languages
	c.mu.Unlock()
	if root == nil {
		return nil, false
	}

	p := model.ParsePath(ref.Path)
	switch ref.Kind {
	case model.KindLanguages, model.KindLanguage:
		if languages == nil {
			return nil, false
		}
		return languages.Find(ref.Kind, p)
	case model.KindModel:
		if len(p) == 0 {
			return root, true
		}
		return nil, false
	default:
		return root.Find(ref.Kind, p)
	}
}

// alive re-checks liveness after an await: the user can close the document
// while a prompt is open.
func (c *Context) alive() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed && c.root != nil
}

func (c *Context) blockEditor(ctx context.Context, blocked bool) {
	err := c.dispatcher.Send(ctx, protocol.CommandBlockEditor, protocol.BlockEditorMessage{Blocked: blocked})
	if err != nil && !errors.Is(err, protocol.ErrNoSurface) {
		c.logger.Warn("document.block_editor.failed", "error", err)
	}
}

func (c *Context) notify(level interfaces.NotifyLevel, message string) {
	c.host.Notify(level, message)
}

func (c *Context) filename() string {
	return path.Base(c.cfg.URI)
}

func (c *Context) setReadOnly(on bool) {
	c.mu.Lock()
	c.readOnly = on
	c.mu.Unlock()
}
