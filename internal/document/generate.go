package document

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/loctree/loctree/internal/generator"
	"github.com/loctree/loctree/internal/langsync"
	"github.com/loctree/loctree/pkg/interfaces"
)

// RunCodeGenerator sequences one background generation run: heal the
// language set interactively, validate the healed document, invoke the
// generator, and drive the status machine through active, then status or
// error, then the token-guarded return to idle. Overlapping runs are
// rejected with a notice; a manual save in progress defers the run instead
// of racing it.
func (c *Context) RunCodeGenerator(ctx context.Context) error {
	c.mu.Lock()
	switch {
	case c.closed:
		c.mu.Unlock()
		return ErrClosed
	case c.root == nil:
		c.mu.Unlock()
		return ErrNoTree
	case c.generating:
		c.mu.Unlock()
		c.notify(interfaces.NotifyWarn, "Code generation is already running.")
		return ErrGenerationInProgress
	case c.savingManual:
		c.mu.Unlock()
		c.notify(interfaces.NotifyInfo, "A save is in progress; run code generation again once it finishes.")
		return nil
	}
	c.generating = true
	c.readOnly = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.generating = false
		c.readOnly = false
		c.mu.Unlock()
	}()

	c.status.Active(c.filename())
	c.logger.Info("document.generate.start")

	// Healing runs first: an empty language set and an undeclared primary
	// are repairable conditions, not validation failures.
	proceed, err := c.reconcileLanguages(ctx)
	if err != nil {
		c.failGeneration("Language reconciliation failed.", err.Error())
		return err
	}
	if !proceed {
		c.failGeneration("Code generation was cancelled.", "translations reference undeclared languages")
		return nil
	}
	if !c.alive() {
		c.status.Idle()
		return ErrClosed
	}

	if detail := c.violationDetail(); detail != "" {
		c.failGeneration("The document is not valid for code generation.", detail)
		return nil
	}

	c.mu.Lock()
	root := c.root
	raw := c.jsonModel
	c.mu.Unlock()

	result, err := c.gen.Run(ctx, generator.Request{
		Document: c.filename(),
		Request: interfaces.GenerateRequest{
			Model:           raw,
			Settings:        root.Settings.Generator,
			PrimaryLanguage: root.Settings.PrimaryLanguage,
			Languages:       append([]string(nil), root.Settings.Languages...),
		},
	})
	if err != nil {
		if errors.Is(err, generator.ErrServiceDisabled) {
			c.status.Idle()
			c.notify(interfaces.NotifyWarn, "No code generator is configured for this document.")
			return nil
		}
		c.failGeneration("Code generation failed.", err.Error())
		return err
	}

	c.status.Status(fmt.Sprintf("Generated %d file%s.", result.Files, pluralS(result.Files)), true, c.cfg.StatusTimeout)
	c.logger.Info("document.generate.success", "files", result.Files, "duration", result.Duration)
	return nil
}

// reconcileLanguages runs the language healing routine with the document
// held read-only, committing any fixes through the normal pipeline.
func (c *Context) reconcileLanguages(ctx context.Context) (bool, error) {
	rec, err := langsync.New(
		langsync.Config{DefaultLanguage: c.cfg.DefaultLanguage},
		langsync.Dependencies{
			Confirm: c.host.Confirm,
			Notify:  c.host.Notify,
			Commit: func(ctx context.Context) error {
				if !c.alive() {
					return ErrClosed
				}
				if !c.CommitChanges(ctx, "languageReconciliation") {
					return ErrNoTree
				}
				return nil
			},
			Logger: c.logger,
		},
	)
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	root := c.root
	c.mu.Unlock()
	return rec.Reconcile(ctx, root)
}

func (c *Context) violationDetail() string {
	c.mu.Lock()
	root := c.root
	c.mu.Unlock()
	violations := root.Violations()
	if len(violations) == 0 {
		return ""
	}
	messages := make([]string, len(violations))
	for i, violation := range violations {
		messages[i] = violation.Message
	}
	return strings.Join(messages, "; ")
}

func (c *Context) failGeneration(message, detail string) {
	c.status.Error(message, detail, c.cfg.ErrorTimeout)
	c.logger.Warn("document.generate.failed", "detail", detail)
}

// MarkManualSave flags a host-driven save as in progress so generation
// defers instead of racing it.
func (c *Context) MarkManualSave(saving bool) {
	c.mu.Lock()
	c.savingManual = saving
	c.mu.Unlock()
}

func pluralS(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
