package tree

import (
	"context"
	"sync"
	"testing"

	"github.com/loctree/loctree/internal/document"
	"github.com/loctree/loctree/internal/model"
	"github.com/loctree/loctree/pkg/interfaces"
)

const fixtureDocument = `{
  "model": {
    "name": "Checkout",
    "settings": {
      "primaryLanguage": "en",
      "languages": ["de", "en", "fr"],
      "resourcesUnderRoot": true,
      "categoriesEnabled": true
    },
    "categories": [
      {
        "name": "Errors",
        "resources": [
          {
            "name": "PaymentFailed",
            "values": {"en": "Payment failed", "de": "Zahlung fehlgeschlagen"}
          },
          {
            "name": "CardDeclined",
            "values": {"en": "Card declined"}
          }
        ]
      }
    ],
    "resources": [
      {
        "name": "Greeting",
        "values": {"en": "Welcome!", "fr": "Bienvenue !"}
      }
    ]
  }
}`

type recordingPresenter struct {
	mu         sync.Mutex
	treeEvents int
	selections [][]model.Ref
	reveals    []model.Ref
	focuses    int
}

func (p *recordingPresenter) TreeChanged(context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.treeEvents++
}

func (p *recordingPresenter) SelectionChanged(_ context.Context, refs []model.Ref) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selections = append(p.selections, append([]model.Ref(nil), refs...))
}

func (p *recordingPresenter) ElementRevealed(_ context.Context, ref model.Ref) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reveals = append(p.reveals, ref)
}

func (p *recordingPresenter) TreeFocused(context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.focuses++
}

type stubHost struct {
	text string
}

func (h *stubHost) Snapshot(uri string) (interfaces.DocumentSnapshot, bool) {
	return interfaces.DocumentSnapshot{URI: uri, Text: h.text, Reason: interfaces.ChangeReasonUser}, true
}

func (h *stubHost) ApplyEdit(context.Context, string, string) (bool, error) { return true, nil }
func (h *stubHost) Confirm(context.Context, string) (bool, error)          { return true, nil }
func (h *stubHost) InputBox(context.Context, interfaces.InputBoxOptions) (string, bool, error) {
	return "", false, nil
}
func (h *stubHost) Notify(interfaces.NotifyLevel, string) {}

func newTreeFixture(t *testing.T) (*Context, *document.Context, *recordingPresenter) {
	t.Helper()
	presenter := &recordingPresenter{}
	tree := NewContext(presenter, nil)
	doc, err := document.New(context.Background(), document.Config{
		URI:             "file:///project/checkout.loctree.json",
		DefaultLanguage: "en",
	}, document.Dependencies{
		Host:      &stubHost{text: fixtureDocument},
		Navigator: tree,
	})
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	t.Cleanup(doc.Close)
	tree.UpdateDocument(context.Background(), doc)
	return tree, doc, presenter
}

func TestUpdateDocumentSwitchesAndRefreshes(t *testing.T) {
	tree, doc, presenter := newTreeFixture(t)

	if tree.Active() != doc {
		t.Fatal("active document not switched")
	}
	if presenter.treeEvents == 0 {
		t.Fatal("switching documents must re-render")
	}

	tree.SetSelectedItems(context.Background(), []model.Ref{{Kind: model.KindResource, Path: "Greeting"}})
	tree.UpdateDocument(context.Background(), nil)
	if tree.Active() != nil {
		t.Fatal("tree not detached")
	}
	if len(tree.SelectedRefs()) != 0 {
		t.Fatal("selection must reset on document switch")
	}
}

func TestSelectRefRequiresResolvableElement(t *testing.T) {
	tree, _, _ := newTreeFixture(t)

	if !tree.SelectRef(context.Background(), model.Ref{Kind: model.KindResource, Path: "Greeting"}) {
		t.Fatal("resolvable ref must select")
	}
	if tree.SelectRef(context.Background(), model.Ref{Kind: model.KindResource, Path: "Missing"}) {
		t.Fatal("unresolvable ref must not select")
	}
	selection := tree.SelectedRefs()
	if len(selection) != 1 || selection[0].Path != "Greeting" {
		t.Fatalf("selection clobbered by failed select, got %+v", selection)
	}
}

func TestSelectElementByPathHandlesModelAsRoot(t *testing.T) {
	tree, _, _ := newTreeFixture(t)

	cases := []struct {
		name string
		path string
		kind model.Kind
		want string
	}{
		{"model as root", "Checkout", model.KindModel, ""},
		{"empty path", "", model.KindModel, ""},
		{"category", "Errors", model.KindCategory, "Errors"},
		{"resource under model prefix", "Checkout/Errors/PaymentFailed", model.KindResource, "Errors/PaymentFailed"},
		{"root resource", "Greeting", model.KindResource, "Greeting"},
		{"languages node", "languages", model.KindLanguages, "languages"},
		{"language leaf", "languages/fr", model.KindLanguage, "languages/fr"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !tree.SelectElementByPath(context.Background(), tc.path) {
				t.Fatalf("path %q did not resolve", tc.path)
			}
			selection := tree.SelectedRefs()
			if len(selection) != 1 || selection[0].Kind != tc.kind || selection[0].Path != tc.want {
				t.Fatalf("unexpected selection %+v", selection)
			}
		})
	}

	if tree.SelectElementByPath(context.Background(), "Checkout/Nope") {
		t.Fatal("unknown path must not resolve")
	}
}

func TestCapabilitiesDescribeSelectionShape(t *testing.T) {
	tree, _, _ := newTreeFixture(t)

	if caps := tree.Capabilities(); !caps.Empty {
		t.Fatalf("expected empty capabilities, got %+v", caps)
	}

	tree.SetSelectedItems(context.Background(), []model.Ref{
		{Kind: model.KindResource, Path: "Errors/PaymentFailed"},
		{Kind: model.KindResource, Path: "Errors/CardDeclined"},
	})
	caps := tree.Capabilities()
	if !caps.Multi || caps.MixedParents {
		t.Fatalf("expected same-parent multi selection, got %+v", caps)
	}

	tree.SetSelectedItems(context.Background(), []model.Ref{
		{Kind: model.KindResource, Path: "Errors/PaymentFailed"},
		{Kind: model.KindResource, Path: "Greeting"},
	})
	if caps := tree.Capabilities(); !caps.MixedParents {
		t.Fatalf("expected mixed parents, got %+v", caps)
	}

	tree.SetSelectedItems(context.Background(), []model.Ref{
		{Kind: model.KindLanguage, Path: "languages/en"},
	})
	caps = tree.Capabilities()
	if caps.LanguageCount != 1 || !caps.PrimarySelected || !caps.VirtualSelected {
		t.Fatalf("expected primary language selection, got %+v", caps)
	}

	tree.SetSelectedItems(context.Background(), []model.Ref{
		{Kind: model.KindLanguage, Path: "languages/de"},
	})
	if caps := tree.Capabilities(); caps.PrimarySelected {
		t.Fatalf("de is not primary, got %+v", caps)
	}
}

func TestRevealReportsToPresenter(t *testing.T) {
	tree, _, presenter := newTreeFixture(t)

	tree.Reveal(context.Background(), model.Ref{Kind: model.KindResource, Path: "Greeting"})
	if len(presenter.reveals) != 1 || presenter.reveals[0].Path != "Greeting" {
		t.Fatalf("reveal not reported, got %+v", presenter.reveals)
	}

	tree.Reveal(context.Background(), model.Ref{Kind: model.KindResource, Path: "Missing"})
	if len(presenter.reveals) != 1 {
		t.Fatal("unresolvable reveal must not report")
	}
}

func TestFocusReportsToPresenter(t *testing.T) {
	tree, _, presenter := newTreeFixture(t)
	tree.Focus(context.Background())
	if presenter.focuses != 1 {
		t.Fatalf("expected one focus event, got %d", presenter.focuses)
	}
}
