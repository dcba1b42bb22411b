package model

import (
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func TestCheckName(t *testing.T) {
	t.Run("accepts identifier names", func(t *testing.T) {
		for _, name := range []string{"Greeting", "a", "Err_404_Page", "x9"} {
			if err := CheckName(name, nil); err != nil {
				t.Fatalf("expected %q to validate, got %v", name, err)
			}
		}
	})

	t.Run("rejects grammar violations", func(t *testing.T) {
		for _, name := range []string{"", " ", "9lives", "_hidden", "with space", "dash-ed", "ünïcode"} {
			err := CheckName(name, nil)
			if err == nil {
				t.Fatalf("expected %q to be rejected", name)
			}
			errs, ok := err.(validation.Errors)
			if !ok {
				t.Fatalf("expected field-scoped validation.Errors, got %T", err)
			}
			if _, ok := errs["name"]; !ok {
				t.Fatalf("expected error keyed by name field, got %v", errs)
			}
		}
	})

	t.Run("rejects sibling duplicates", func(t *testing.T) {
		err := CheckName("B", []string{"A", "B"})
		if err == nil {
			t.Fatal("expected duplicate rejection")
		}
		errs := err.(validation.Errors)
		if got := errs["name"].(validation.Error).Code(); got != codeNameDuplicate {
			t.Fatalf("expected duplicate code, got %q", got)
		}
	})
}

func TestValidNameMessage(t *testing.T) {
	if msg := ValidNameMessage("Greeting", nil); msg != "" {
		t.Fatalf("expected empty message for valid name, got %q", msg)
	}
	if msg := ValidNameMessage("9lives", nil); msg == "" {
		t.Fatal("expected message for invalid name")
	}
	if msg := ValidNameMessage("A", []string{"A"}); msg == "" {
		t.Fatal("expected message for duplicate name")
	}
}

func TestSuggestName(t *testing.T) {
	cases := map[string]string{
		"hello world":     "HelloWorld",
		"Error Messages!": "ErrorMessages",
		"":                "Element",
	}
	for input, want := range cases {
		got := SuggestName(input)
		if got != want {
			t.Fatalf("SuggestName(%q) = %q, want %q", input, got, want)
		}
		if CheckName(got, nil) != nil {
			t.Fatalf("suggested name %q does not satisfy the grammar", got)
		}
	}
}

func TestUniqueName(t *testing.T) {
	if got := UniqueName("Greeting", []string{"Other"}); got != "Greeting" {
		t.Fatalf("expected base name kept, got %q", got)
	}
	got := UniqueName("Greeting", []string{"Greeting", "Greeting_2"})
	if got != "Greeting_3" {
		t.Fatalf("expected Greeting_3, got %q", got)
	}
}
