package structure

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/loctree/loctree/internal/document"
	"github.com/loctree/loctree/internal/model"
	"github.com/loctree/loctree/internal/tree"
	"github.com/loctree/loctree/pkg/interfaces"
)

const fixtureDocument = `{
  "model": {
    "name": "Checkout",
    "settings": {
      "primaryLanguage": "en",
      "languages": ["de", "en"],
      "resourcesUnderRoot": true,
      "categoriesEnabled": true
    },
    "categories": [
      {
        "name": "Errors",
        "resources": [
          {"name": "PaymentFailed", "values": {"en": "Payment failed"}}
        ]
      }
    ],
    "resources": [
      {"name": "Greeting", "values": {"en": "Welcome!"}}
    ]
  }
}`

type commandHost struct {
	text   string
	inputs []string
}

func (h *commandHost) Snapshot(uri string) (interfaces.DocumentSnapshot, bool) {
	return interfaces.DocumentSnapshot{URI: uri, Text: h.text, Reason: interfaces.ChangeReasonUser}, true
}

func (h *commandHost) ApplyEdit(_ context.Context, _ string, text string) (bool, error) {
	h.text = text
	return true, nil
}

func (h *commandHost) Confirm(context.Context, string) (bool, error) { return true, nil }

func (h *commandHost) InputBox(_ context.Context, opts interfaces.InputBoxOptions) (string, bool, error) {
	if len(h.inputs) == 0 {
		return "", false, nil
	}
	value := h.inputs[0]
	h.inputs = h.inputs[1:]
	if opts.Validate != nil && opts.Validate(value) != "" {
		return "", false, nil
	}
	return value, true, nil
}

func (h *commandHost) Notify(interfaces.NotifyLevel, string) {}

func newHandlerFixture(t *testing.T) (*Handlers, *tree.Context, *commandHost) {
	t.Helper()
	host := &commandHost{text: fixtureDocument}
	treeCtx := tree.NewContext(nil, nil)
	doc, err := document.New(context.Background(), document.Config{
		URI:             "file:///project/checkout.loctree.json",
		DefaultLanguage: "en",
	}, document.Dependencies{Host: host, Navigator: treeCtx})
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	t.Cleanup(doc.Close)
	treeCtx.UpdateDocument(context.Background(), doc)
	return NewHandlers(treeCtx, nil), treeCtx, host
}

func TestAddCategoryCommand(t *testing.T) {
	handlers, treeCtx, host := newHandlerFixture(t)
	host.inputs = []string{"Labels"}

	if err := handlers.AddCategory.Execute(context.Background(), AddCategoryMessage{}); err != nil {
		t.Fatalf("add category: %v", err)
	}
	if _, ok := treeCtx.Active().Root().CategoryByName("Labels"); !ok {
		t.Fatal("category not created")
	}
}

func TestAddResourceCommandValidatesParentKind(t *testing.T) {
	handlers, _, _ := newHandlerFixture(t)

	err := handlers.AddResource.Execute(context.Background(), AddResourceMessage{
		Parent: ElementRef{Kind: "banana", Path: "Errors"},
	})
	if err == nil {
		t.Fatal("expected validation failure")
	}
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
}

func TestDeleteElementsCommandFallsBackToSelection(t *testing.T) {
	handlers, treeCtx, _ := newHandlerFixture(t)
	treeCtx.SetSelectedItems(context.Background(), []model.Ref{
		{Kind: model.KindResource, Path: "Greeting"},
	})

	if err := handlers.DeleteElements.Execute(context.Background(), DeleteElementsMessage{}); err != nil {
		t.Fatalf("delete elements: %v", err)
	}
	if _, ok := treeCtx.Active().Root().ResourceAt(model.ParsePath("Greeting")); ok {
		t.Fatal("selected resource not deleted")
	}
}

func TestDeleteLanguageCommandRequiresCode(t *testing.T) {
	handlers, _, _ := newHandlerFixture(t)

	err := handlers.DeleteLanguage.Execute(context.Background(), DeleteLanguageMessage{})
	if err == nil || !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation failure, got %v", err)
	}
}

func TestMarkPrimaryLanguageCommand(t *testing.T) {
	handlers, treeCtx, _ := newHandlerFixture(t)

	err := handlers.MarkPrimaryLanguage.Execute(context.Background(), MarkPrimaryLanguageMessage{Code: "de"})
	if err != nil {
		t.Fatalf("mark primary: %v", err)
	}
	if got := treeCtx.Active().Root().Settings.PrimaryLanguage; got != "de" {
		t.Fatalf("expected primary de, got %q", got)
	}
}

func TestCommandsRequireActiveDocument(t *testing.T) {
	handlers := NewHandlers(tree.NewContext(nil, nil), nil)

	err := handlers.AddCategory.Execute(context.Background(), AddCategoryMessage{})
	if err == nil {
		t.Fatal("expected failure without active document")
	}
	if !errors.Is(err, tree.ErrNoActiveDocument) && !goerrors.IsWrapped(err) {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestFindCommandSelectsMatch(t *testing.T) {
	handlers, treeCtx, _ := newHandlerFixture(t)

	if err := handlers.Find.Execute(context.Background(), FindMessage{Query: "payment"}); err != nil {
		t.Fatalf("find: %v", err)
	}
	selection := treeCtx.SelectedRefs()
	if len(selection) != 1 || selection[0].Path != "Errors/PaymentFailed" {
		t.Fatalf("expected match selected, got %+v", selection)
	}
}
