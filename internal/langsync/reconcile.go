// Package langsync keeps the declared language set consistent with the
// languages actually referenced by translation values. It heals the document
// interactively before code generation so a run never silently drops
// translations.
package langsync

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/loctree/loctree/internal/logging"
	"github.com/loctree/loctree/internal/model"
	"github.com/loctree/loctree/pkg/interfaces"
)

var (
	// ErrConfirmRequired indicates the dependency wiring is incomplete.
	ErrConfirmRequired = errors.New("langsync: confirm callback is required")
	// ErrCommitRequired indicates the dependency wiring is incomplete.
	ErrCommitRequired = errors.New("langsync: commit callback is required")
)

// Config captures reconciliation defaults.
type Config struct {
	// DefaultLanguage seeds an empty language set and breaks ties when no
	// primary language is resolvable.
	DefaultLanguage string
}

// Dependencies lists the collaborators a Reconciler needs. Confirm asks the
// user a yes/no question, Notify surfaces one-way notices, and Commit
// persists the healed settings back into the document.
type Dependencies struct {
	Confirm func(ctx context.Context, message string) (bool, error)
	Notify  func(level interfaces.NotifyLevel, message string)
	Commit  func(ctx context.Context) error
	Logger  interfaces.Logger
}

// Reconciler heals language membership and primary-language assignment.
type Reconciler struct {
	cfg    Config
	deps   Dependencies
	logger interfaces.Logger
}

// New wires a Reconciler with the provided configuration and dependencies.
func New(cfg Config, deps Dependencies) (*Reconciler, error) {
	if deps.Confirm == nil {
		return nil, ErrConfirmRequired
	}
	if deps.Commit == nil {
		return nil, ErrCommitRequired
	}
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = "en"
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Reconciler{cfg: cfg, deps: deps, logger: logger}, nil
}

// Reconcile enforces the invariant that every referenced language is
// declared and exactly one declared language is primary. It returns false
// when the user declines to add missing languages and generation must not
// proceed. Mutations are committed through the Commit dependency.
func (r *Reconciler) Reconcile(ctx context.Context, root *model.Root) (bool, error) {
	changed := false

	if len(root.Settings.Languages) == 0 {
		seed := root.Settings.PrimaryLanguage
		if seed == "" {
			seed = r.cfg.DefaultLanguage
		}
		if err := root.DeclareLanguage(seed); err != nil {
			return false, fmt.Errorf("langsync: seed language %q: %w", seed, err)
		}
		root.Settings.PrimaryLanguage = seed
		r.logger.Info("langsync.seed", "language", seed)
		r.notify(interfaces.NotifyInfo, fmt.Sprintf("No languages were declared; added %q as the primary language.", seed))
		changed = true
	}

	if healed, err := r.healPrimary(root); err != nil {
		return false, err
	} else if healed {
		changed = true
	}

	if missing := root.MissingLanguages(); len(missing) > 0 {
		ok, err := r.deps.Confirm(ctx, missingPrompt(missing))
		if err != nil {
			return false, fmt.Errorf("langsync: confirm missing languages: %w", err)
		}
		if !ok {
			r.logger.Info("langsync.missing.declined", "languages", strings.Join(missing, ","))
			r.notify(interfaces.NotifyWarn, "Code generation was cancelled: translations exist for languages that are not declared.")
			return false, nil
		}
		for _, code := range missing {
			if err := root.DeclareLanguage(code); err != nil {
				return false, fmt.Errorf("langsync: declare %q: %w", code, err)
			}
		}
		r.logger.Info("langsync.missing.added", "languages", strings.Join(missing, ","))
		changed = true
	}

	if changed {
		if err := r.deps.Commit(ctx); err != nil {
			return false, fmt.Errorf("langsync: commit healed languages: %w", err)
		}
	}
	return true, nil
}

// healPrimary repairs the primary-language assignment: a declared-but-absent
// primary is added back as a language, and an unresolvable primary falls
// back to the default language when declared, else the first declared
// language.
func (r *Reconciler) healPrimary(root *model.Root) (bool, error) {
	primary := root.Settings.PrimaryLanguage
	if primary != "" && root.HasLanguage(primary) {
		return false, nil
	}

	if primary != "" {
		if err := root.DeclareLanguage(primary); err != nil {
			return false, fmt.Errorf("langsync: restore primary %q: %w", primary, err)
		}
		root.Settings.PrimaryLanguage = primary
		r.logger.Info("langsync.primary.restored", "language", primary)
		r.notify(interfaces.NotifyInfo, fmt.Sprintf("The primary language %q was not declared; it has been added.", primary))
		return true, nil
	}

	fallback := root.Settings.Languages[0]
	if root.HasLanguage(r.cfg.DefaultLanguage) {
		fallback = r.cfg.DefaultLanguage
	}
	if err := root.SetPrimaryLanguage(fallback); err != nil {
		return false, fmt.Errorf("langsync: fallback primary %q: %w", fallback, err)
	}
	r.logger.Info("langsync.primary.fallback", "language", fallback)
	r.notify(interfaces.NotifyInfo, fmt.Sprintf("No primary language was set; %q is now the primary language.", fallback))
	return true, nil
}

func (r *Reconciler) notify(level interfaces.NotifyLevel, message string) {
	if r.deps.Notify != nil {
		r.deps.Notify(level, message)
	}
}

func missingPrompt(missing []string) string {
	quoted := make([]string, len(missing))
	for i, code := range missing {
		quoted[i] = fmt.Sprintf("%q", code)
	}
	return fmt.Sprintf("Translations reference %s %s that %s not declared. Add %s to the language list?",
		pluralLanguage(len(missing)), strings.Join(quoted, ", "), pluralIsAre(len(missing)), pluralItThem(len(missing)))
}

func pluralLanguage(n int) string {
	if n == 1 {
		return "the language"
	}
	return "the languages"
}

func pluralIsAre(n int) string {
	if n == 1 {
		return "is"
	}
	return "are"
}

func pluralItThem(n int) string {
	if n == 1 {
		return "it"
	}
	return "them"
}
