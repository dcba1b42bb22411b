// Package tree owns the shared navigational view across documents. It
// delegates authority to whichever document context is currently active,
// tracks selection as rebuild-safe refs, and answers capability queries so
// command availability can be gated without re-deriving selection shape on
// every invocation.
package tree

import (
	"context"
	"errors"
	"sync"

	"github.com/loctree/loctree/internal/document"
	"github.com/loctree/loctree/internal/logging"
	"github.com/loctree/loctree/internal/model"
	"github.com/loctree/loctree/pkg/interfaces"
)

// ErrNoActiveDocument indicates no document context currently backs the
// tree.
var ErrNoActiveDocument = errors.New("tree: no active document")

// Presenter is the host-side rendering sink. A nil presenter leaves the
// tree headless, which the tests rely on.
type Presenter interface {
	TreeChanged(ctx context.Context)
	SelectionChanged(ctx context.Context, refs []model.Ref)
	ElementRevealed(ctx context.Context, ref model.Ref)
	TreeFocused(ctx context.Context)
}

// Capabilities describes the shape of the current selection. Commands are
// enabled or disabled from this answer instead of re-walking the tree.
type Capabilities struct {
	Empty           bool
	Single          bool
	Multi           bool
	MixedParents    bool
	VirtualSelected bool
	LanguageCount   int
	PrimarySelected bool
}

// Context is the engine-wide tree state. It implements the document
// package's TreeNavigator contract.
type Context struct {
	presenter Presenter
	logger    interfaces.Logger

	mu        sync.Mutex
	active    *document.Context
	selection []model.Ref
	search    searchState
}

// NewContext wires a tree context. Both arguments may be nil.
func NewContext(presenter Presenter, logger interfaces.Logger) *Context {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Context{presenter: presenter, logger: logger}
}

// UpdateDocument switches the active document context and re-renders. A nil
// document detaches the tree.
func (t *Context) UpdateDocument(ctx context.Context, doc *document.Context) {
	t.mu.Lock()
	t.active = doc
	t.selection = nil
	t.search = searchState{}
	t.mu.Unlock()

	uri := ""
	if doc != nil {
		uri = doc.URI()
	}
	t.logger.Debug("tree.document.switched", "uri", uri)
	t.Refresh(ctx)
}

// Active returns the document context currently backing the tree.
func (t *Context) Active() *document.Context {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// SelectedRefs returns the current selection as rebuild-safe refs.
func (t *Context) SelectedRefs() []model.Ref {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]model.Ref(nil), t.selection...)
}

// SetSelectedItems replaces the selection and reports it to the presenter.
func (t *Context) SetSelectedItems(ctx context.Context, refs []model.Ref) {
	t.mu.Lock()
	t.selection = append([]model.Ref(nil), refs...)
	t.mu.Unlock()

	if t.presenter != nil {
		t.presenter.SelectionChanged(ctx, refs)
	}
}

// ClearSelection empties the selection.
func (t *Context) ClearSelection() {
	t.mu.Lock()
	t.selection = nil
	t.mu.Unlock()

	if t.presenter != nil {
		t.presenter.SelectionChanged(context.Background(), nil)
	}
}

// Refresh re-renders the tree after the active document's tree was rebuilt.
func (t *Context) Refresh(ctx context.Context) {
	if t.presenter != nil {
		t.presenter.TreeChanged(ctx)
	}
}

// SelectRef re-resolves one ref against the active document and selects it.
func (t *Context) SelectRef(ctx context.Context, ref model.Ref) bool {
	doc := t.Active()
	if doc == nil {
		return false
	}
	if _, ok := doc.Resolve(ref); !ok {
		return false
	}
	t.SetSelectedItems(ctx, []model.Ref{ref})
	return true
}

// Reveal expands ancestors, selects the element, and reports the reveal.
func (t *Context) Reveal(ctx context.Context, ref model.Ref) {
	if !t.SelectRef(ctx, ref) {
		t.logger.Warn("tree.reveal.unresolved", "kind", string(ref.Kind), "path", ref.Path)
		return
	}
	if t.presenter != nil {
		t.presenter.ElementRevealed(ctx, ref)
	}
}

// Focus moves keyboard focus to the tree view.
func (t *Context) Focus(ctx context.Context) {
	if t.presenter != nil {
		t.presenter.TreeFocused(ctx)
	}
}

// SelectElementByPath resolves a slash-joined structural path against the
// active tree and selects the element. A leading segment naming the model
// itself is tolerated, the surface addresses the root that way.
func (t *Context) SelectElementByPath(ctx context.Context, rawPath string) bool {
	doc := t.Active()
	if doc == nil {
		return false
	}
	root := doc.Root()
	if root == nil {
		return false
	}

	p := model.ParsePath(rawPath)
	if len(p) > 0 && p[0] == root.Name {
		p = p[1:]
	}
	if len(p) == 0 {
		t.SetSelectedItems(ctx, []model.Ref{{Kind: model.KindModel, Path: ""}})
		return true
	}

	for _, kind := range []model.Kind{model.KindCategory, model.KindResource, model.KindLanguages, model.KindLanguage} {
		ref := model.Ref{Kind: kind, Path: p.String()}
		if _, ok := doc.Resolve(ref); ok {
			t.SetSelectedItems(ctx, []model.Ref{ref})
			return true
		}
	}
	t.logger.Debug("tree.select_by_path.unresolved", "path", rawPath)
	return false
}

// Capabilities answers the selection-shape query for command gating.
func (t *Context) Capabilities() Capabilities {
	refs := t.SelectedRefs()
	caps := Capabilities{
		Empty:  len(refs) == 0,
		Single: len(refs) == 1,
		Multi:  len(refs) > 1,
	}

	doc := t.Active()
	var primary string
	if doc != nil {
		if root := doc.Root(); root != nil {
			primary = root.Settings.PrimaryLanguage
		}
	}

	parents := map[string]struct{}{}
	for _, ref := range refs {
		parents[model.ParsePath(ref.Path).Parent().String()] = struct{}{}
		if ref.Kind.Virtual() {
			caps.VirtualSelected = true
		}
		if ref.Kind == model.KindLanguage {
			caps.LanguageCount++
			if model.ParsePath(ref.Path).Name() == primary {
				caps.PrimarySelected = true
			}
		}
	}
	caps.MixedParents = len(parents) > 1
	return caps
}
