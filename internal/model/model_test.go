package model

import (
	"errors"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func TestAddCategory(t *testing.T) {
	root := mustParse(t, fixtureDocument)

	t.Run("appends valid category", func(t *testing.T) {
		cat, err := root.AddCategory("Labels")
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		if cat.ElementPath().String() != "Labels" {
			t.Fatalf("unexpected path %q", cat.ElementPath())
		}
	})

	t.Run("rejects duplicate", func(t *testing.T) {
		if _, err := root.AddCategory("Errors"); err == nil {
			t.Fatal("expected duplicate rejection")
		}
	})

	t.Run("rejects when categories disabled", func(t *testing.T) {
		flat := mustParse(t, fixtureDocument)
		flat.Settings.CategoriesEnabled = false
		if _, err := flat.AddCategory("New"); !errors.Is(err, ErrCategoriesDisabled) {
			t.Fatalf("expected ErrCategoriesDisabled, got %v", err)
		}
	})
}

func TestAddResource(t *testing.T) {
	root := mustParse(t, fixtureDocument)

	t.Run("seeds primary language value", func(t *testing.T) {
		res, err := root.AddResource(nil, "Farewell")
		if err != nil {
			t.Fatalf("add: %v", err)
		}
		if _, ok := res.Values["en"]; !ok {
			t.Fatal("expected primary language value to be seeded")
		}
	})

	t.Run("rejects root resources when disallowed", func(t *testing.T) {
		strict := mustParse(t, fixtureDocument)
		strict.Settings.ResourcesUnderRoot = false
		if _, err := strict.AddResource(nil, "Nope"); !errors.Is(err, ErrRootResourcesDisabled) {
			t.Fatalf("expected ErrRootResourcesDisabled, got %v", err)
		}
	})

	t.Run("allows same name under different parents", func(t *testing.T) {
		cat, _ := root.CategoryByName("Errors")
		if _, err := root.AddResource(cat, "Farewell"); err != nil {
			t.Fatalf("same name under other parent should be fine: %v", err)
		}
	})
}

func TestRenameRejectsSiblingConflictWithoutMutation(t *testing.T) {
	root := mustParse(t, fixtureDocument)
	if _, err := root.AddCategory("Labels"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	cat, _ := root.CategoryByName("Labels")

	err := root.Rename(cat, "Errors")
	if err == nil {
		t.Fatal("expected rename conflict rejection")
	}
	errs, ok := err.(validation.Errors)
	if !ok {
		t.Fatalf("expected validation.Errors, got %T", err)
	}
	if _, ok := errs["name"]; !ok {
		t.Fatalf("expected name-scoped error, got %v", errs)
	}
	if cat.Name != "Labels" {
		t.Fatalf("tree mutated on failed rename: %q", cat.Name)
	}
}

func TestRenameKeepsOwnName(t *testing.T) {
	root := mustParse(t, fixtureDocument)
	res, _ := root.ResourceAt(ParsePath("Greeting"))
	if err := root.Rename(res, "Greeting"); err != nil {
		t.Fatalf("renaming to own name must not conflict: %v", err)
	}
}

func TestRemove(t *testing.T) {
	root := mustParse(t, fixtureDocument)
	res, _ := root.ResourceAt(ParsePath("Errors/PaymentFailed"))
	if err := root.Remove(res); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok := root.ResourceAt(ParsePath("Errors/PaymentFailed")); ok {
		t.Fatal("resource still resolvable after removal")
	}
	if err := root.Remove(res); !errors.Is(err, ErrElementNotFound) {
		t.Fatalf("expected ErrElementNotFound on second removal, got %v", err)
	}
}

func TestDuplicate(t *testing.T) {
	root := mustParse(t, fixtureDocument)

	t.Run("resource copy gets suffixed name", func(t *testing.T) {
		res, _ := root.ResourceAt(ParsePath("Greeting"))
		copied, err := root.Duplicate(res)
		if err != nil {
			t.Fatalf("duplicate: %v", err)
		}
		if copied.ElementName() != "Greeting_2" {
			t.Fatalf("expected Greeting_2, got %q", copied.ElementName())
		}
		copiedRes := copied.(*Resource)
		copiedRes.Values["en"] = "changed"
		if res.Values["en"] == "changed" {
			t.Fatal("duplicate shares value map with original")
		}
	})

	t.Run("category copy carries resources", func(t *testing.T) {
		cat, _ := root.CategoryByName("Errors")
		copied, err := root.Duplicate(cat)
		if err != nil {
			t.Fatalf("duplicate: %v", err)
		}
		copiedCat := copied.(*Category)
		if copiedCat.Name != "Errors_2" || len(copiedCat.Resources) != 1 {
			t.Fatalf("unexpected copy %q with %d resources", copiedCat.Name, len(copiedCat.Resources))
		}
		if _, ok := root.ResourceAt(ParsePath("Errors_2/PaymentFailed")); !ok {
			t.Fatal("copied resource not resolvable by path")
		}
	})

	t.Run("virtual elements refuse duplication", func(t *testing.T) {
		if _, err := root.Duplicate(&LanguageElement{Code: "en"}); !errors.Is(err, ErrDuplicateUnsupported) {
			t.Fatalf("expected ErrDuplicateUnsupported, got %v", err)
		}
	})
}

func TestLanguageRules(t *testing.T) {
	root := mustParse(t, fixtureDocument)

	t.Run("primary cannot be deleted", func(t *testing.T) {
		if err := root.RemoveLanguage("en"); !errors.Is(err, ErrPrimaryLanguageDelete) {
			t.Fatalf("expected ErrPrimaryLanguageDelete, got %v", err)
		}
	})

	t.Run("deleting keeps one primary", func(t *testing.T) {
		if err := root.RemoveLanguage("fr"); err != nil {
			t.Fatalf("remove fr: %v", err)
		}
		if !root.HasLanguage(root.Settings.PrimaryLanguage) {
			t.Fatal("primary left the declared set")
		}
		res, _ := root.ResourceAt(ParsePath("Greeting"))
		if _, ok := res.Values["fr"]; ok {
			t.Fatal("fr values should be removed with the language")
		}
	})

	t.Run("last language cannot be deleted", func(t *testing.T) {
		if err := root.RemoveLanguage("de"); err != nil {
			t.Fatalf("remove de: %v", err)
		}
		if err := root.RemoveLanguage("en"); !errors.Is(err, ErrPrimaryLanguageDelete) {
			t.Fatalf("expected primary protection, got %v", err)
		}
		root.Settings.PrimaryLanguage = "xx"
		if err := root.RemoveLanguage("en"); !errors.Is(err, ErrLastLanguageDelete) {
			t.Fatalf("expected ErrLastLanguageDelete, got %v", err)
		}
	})

	t.Run("declare validates and sorts", func(t *testing.T) {
		fresh := mustParse(t, fixtureDocument)
		if err := fresh.DeclareLanguage("pt-BR"); err != nil {
			t.Fatalf("declare: %v", err)
		}
		if err := fresh.DeclareLanguage("pt-BR"); !errors.Is(err, ErrLanguageAlreadyExists) {
			t.Fatalf("expected ErrLanguageAlreadyExists, got %v", err)
		}
		if err := fresh.DeclareLanguage("no good"); !errors.Is(err, ErrLanguageInvalid) {
			t.Fatalf("expected ErrLanguageInvalid, got %v", err)
		}
	})

	t.Run("mark primary requires declared language", func(t *testing.T) {
		fresh := mustParse(t, fixtureDocument)
		if err := fresh.SetPrimaryLanguage("fr"); err != nil {
			t.Fatalf("set primary: %v", err)
		}
		if err := fresh.SetPrimaryLanguage("zz"); !errors.Is(err, ErrLanguageUnknown) {
			t.Fatalf("expected ErrLanguageUnknown, got %v", err)
		}
	})
}

func TestReferencedAndMissingLanguages(t *testing.T) {
	root := mustParse(t, fixtureDocument)
	res, _ := root.ResourceAt(ParsePath("Greeting"))
	res.Values["es"] = "¡Bienvenido!"

	referenced := root.ReferencedLanguages()
	want := []string{"de", "en", "es", "fr"}
	if len(referenced) != len(want) {
		t.Fatalf("referenced = %v, want %v", referenced, want)
	}
	for i := range want {
		if referenced[i] != want[i] {
			t.Fatalf("referenced = %v, want %v", referenced, want)
		}
	}

	missing := root.MissingLanguages()
	if len(missing) != 1 || missing[0] != "es" {
		t.Fatalf("missing = %v, want [es]", missing)
	}
}

func TestViolations(t *testing.T) {
	t.Run("clean model has none", func(t *testing.T) {
		root := mustParse(t, fixtureDocument)
		if got := root.Violations(); len(got) != 0 {
			t.Fatalf("expected no violations, got %v", got)
		}
	})

	t.Run("categories disabled while categories exist", func(t *testing.T) {
		root := mustParse(t, fixtureDocument)
		root.Settings.CategoriesEnabled = false
		got := root.Violations()
		if len(got) != 1 || got[0].Code != codeCategoriesExistWhileDisabled {
			t.Fatalf("expected categories violation, got %v", got)
		}
	})

	t.Run("root resources disallowed while present", func(t *testing.T) {
		root := mustParse(t, fixtureDocument)
		root.Settings.ResourcesUnderRoot = false
		got := root.Violations()
		if len(got) != 1 || got[0].Code != codeRootResourcesDisallowed {
			t.Fatalf("expected root-resource violation, got %v", got)
		}
	})

	t.Run("primary must be declared", func(t *testing.T) {
		root := mustParse(t, fixtureDocument)
		root.Settings.PrimaryLanguage = "es"
		got := root.Violations()
		if len(got) != 1 || got[0].Code != codePrimaryNotDeclared {
			t.Fatalf("expected primary violation, got %v", got)
		}
	})
}
