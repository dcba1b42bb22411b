package model

import "testing"

func TestBuildLanguagesOrdersPrimaryFirst(t *testing.T) {
	root := mustParse(t, fixtureDocument)

	node := BuildLanguages(root)
	if len(node.Children) != 3 {
		t.Fatalf("expected 3 language leaves, got %d", len(node.Children))
	}
	if !node.Children[0].IsPrimary() || node.Children[0].Code != "en" {
		t.Fatalf("expected primary en first, got %+v", node.Children[0])
	}
	if node.Children[1].Code != "de" || node.Children[2].Code != "fr" {
		t.Fatalf("expected remainder sorted, got %q %q", node.Children[1].Code, node.Children[2].Code)
	}
}

func TestBuildLanguagesSkipsUndeclaredPrimary(t *testing.T) {
	root := mustParse(t, fixtureDocument)
	root.Settings.PrimaryLanguage = "es"

	node := BuildLanguages(root)
	for _, child := range node.Children {
		if child.IsPrimary() {
			t.Fatalf("no leaf should be primary when primary is undeclared, got %+v", child)
		}
	}
}

func TestVirtualFind(t *testing.T) {
	root := mustParse(t, fixtureDocument)
	node := BuildLanguages(root)

	if _, ok := node.Find(KindLanguages, ParsePath("languages")); !ok {
		t.Fatal("languages group should resolve")
	}
	el, ok := node.Find(KindLanguage, ParsePath("languages/fr"))
	if !ok {
		t.Fatal("language leaf should resolve")
	}
	if el.ElementKind() != KindLanguage || el.ElementName() != "fr" {
		t.Fatalf("unexpected element %v %q", el.ElementKind(), el.ElementName())
	}
	if _, ok := node.Find(KindLanguage, ParsePath("languages/zz")); ok {
		t.Fatal("undeclared language must not resolve")
	}
}

func TestKindVirtual(t *testing.T) {
	for kind, want := range map[Kind]bool{
		KindModel:     false,
		KindCategory:  false,
		KindResource:  false,
		KindTreeRoot:  true,
		KindLanguages: true,
		KindLanguage:  true,
	} {
		if kind.Virtual() != want {
			t.Fatalf("Kind(%q).Virtual() = %v, want %v", kind, !want, want)
		}
	}
}
