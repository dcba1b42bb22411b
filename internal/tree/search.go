package tree

import (
	"context"
	"strings"

	"github.com/loctree/loctree/internal/model"
)

// searchState is the cyclic find state: repeating the query advances the
// cursor through the same match list, a new query rebuilds it.
type searchState struct {
	query   string
	matches []model.Ref
	cursor  int
}

// AdvancedFind runs the tree query language and selects the hit. A leading
// "/" searches structural paths, "@" language codes, "!" translation text;
// anything else, optionally prefixed "#", searches names. Repeating the
// same query advances to the next match, wrapping around; an empty query
// clears the active search. It reports whether a match was selected.
func (t *Context) AdvancedFind(ctx context.Context, query string) (model.Ref, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		t.mu.Lock()
		t.search = searchState{}
		t.mu.Unlock()
		t.logger.Debug("tree.find.cleared")
		return model.Ref{}, false
	}

	t.mu.Lock()
	if t.search.query == query && len(t.search.matches) > 0 {
		t.search.cursor = (t.search.cursor + 1) % len(t.search.matches)
		ref := t.search.matches[t.search.cursor]
		t.mu.Unlock()
		t.Reveal(ctx, ref)
		return ref, true
	}
	t.mu.Unlock()

	matches := t.findMatches(query)
	t.mu.Lock()
	t.search = searchState{query: query, matches: matches}
	t.mu.Unlock()

	if len(matches) == 0 {
		t.logger.Debug("tree.find.empty", "query", query)
		return model.Ref{}, false
	}
	t.Reveal(ctx, matches[0])
	return matches[0], true
}

func (t *Context) findMatches(query string) []model.Ref {
	doc := t.Active()
	if doc == nil {
		return nil
	}
	root := doc.Root()
	if root == nil {
		return nil
	}
	languages := doc.Languages()

	switch {
	case strings.HasPrefix(query, "/"):
		return matchPaths(root, strings.TrimPrefix(query, "/"))
	case strings.HasPrefix(query, "@"):
		return matchLanguages(languages, strings.TrimPrefix(query, "@"))
	case strings.HasPrefix(query, "!"):
		return matchValues(root, strings.TrimPrefix(query, "!"))
	default:
		return matchNames(root, strings.TrimPrefix(query, "#"))
	}
}

// matchPaths finds real elements whose slash-joined path contains the
// needle, case-insensitively.
func matchPaths(root *model.Root, needle string) []model.Ref {
	needle = strings.ToLower(strings.Trim(needle, "/"))
	if needle == "" {
		return nil
	}
	var out []model.Ref
	walkElements(root, func(el model.Element) {
		if strings.Contains(strings.ToLower(el.ElementPath().String()), needle) {
			out = append(out, model.RefOf(el))
		}
	})
	return out
}

func matchLanguages(languages *model.LanguagesElement, needle string) []model.Ref {
	if languages == nil || needle == "" {
		return nil
	}
	needle = strings.ToLower(needle)
	var out []model.Ref
	for _, lang := range languages.Children {
		if strings.HasPrefix(strings.ToLower(lang.Code), needle) {
			out = append(out, model.RefOf(lang))
		}
	}
	return out
}

// matchValues finds resources whose translation text in any language
// contains the needle.
func matchValues(root *model.Root, needle string) []model.Ref {
	needle = strings.ToLower(needle)
	if needle == "" {
		return nil
	}
	var out []model.Ref
	walkElements(root, func(el model.Element) {
		res, ok := el.(*model.Resource)
		if !ok {
			return
		}
		for _, value := range res.Values {
			if strings.Contains(strings.ToLower(value), needle) {
				out = append(out, model.RefOf(res))
				return
			}
		}
	})
	return out
}

func matchNames(root *model.Root, needle string) []model.Ref {
	needle = strings.ToLower(needle)
	if needle == "" {
		return nil
	}
	var out []model.Ref
	walkElements(root, func(el model.Element) {
		if strings.Contains(strings.ToLower(el.ElementName()), needle) {
			out = append(out, model.RefOf(el))
		}
	})
	return out
}

// walkElements visits categories then resources in document order. The root
// itself is skipped; it is addressed as the model, not found by search.
func walkElements(root *model.Root, visit func(model.Element)) {
	for _, cat := range root.Categories {
		visit(cat)
		for _, res := range cat.Resources {
			visit(res)
		}
	}
	for _, res := range root.Resources {
		visit(res)
	}
}
