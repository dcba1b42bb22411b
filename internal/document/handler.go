package document

import (
	"context"
	"fmt"

	"github.com/loctree/loctree/internal/model"
	"github.com/loctree/loctree/internal/protocol"
	"github.com/loctree/loctree/pkg/interfaces"
)

// The context is the protocol handler for its own surface channel. While a
// long-running operation holds the document read-only, incoming edit and
// selection messages are dropped so they cannot interleave with it.

func (c *Context) HandleUpdate(ctx context.Context, msg protocol.UpdateMessage) error {
	if c.isReadOnly() {
		c.logger.Debug("document.handle.update.ignored", "cause", "read-only")
		return nil
	}
	return c.UpdateElement(ctx, msg)
}

func (c *Context) HandleSelect(ctx context.Context, msg protocol.SelectMessage) error {
	if c.isReadOnly() {
		c.logger.Debug("document.handle.select.ignored", "cause", "read-only")
		return nil
	}
	ref := model.Ref{Kind: model.Kind(msg.Kind), Path: msg.Path}
	if !c.nav.SelectRef(ctx, ref) {
		return fmt.Errorf("document: select %s %q: %w", ref.Kind, ref.Path, model.ErrElementNotFound)
	}
	if msg.Reload {
		return c.LoadElement(ctx, ref, "")
	}
	return nil
}

func (c *Context) HandleSaveProperties(ctx context.Context, id string, msg protocol.SavePropertiesMessage) error {
	propErr, err := c.SaveModelProperties(ctx, msg.Settings)
	if err != nil {
		return err
	}
	return c.dispatcher.Reply(ctx, protocol.CommandSavePropertiesResult, id, protocol.SavePropertiesResultMessage{
		OK:    propErr == nil,
		Error: propErr,
	})
}

func (c *Context) HandleConfirmQuestion(ctx context.Context, id string, msg protocol.ConfirmQuestionMessage) error {
	confirmed, err := c.host.Confirm(ctx, msg.Question)
	if err != nil {
		return fmt.Errorf("document: confirm question: %w", err)
	}
	if c.Closed() {
		return ErrClosed
	}
	return c.dispatcher.Reply(ctx, protocol.CommandConfirmQuestionResult, id, protocol.ConfirmQuestionResultMessage{
		Confirmed: confirmed,
		Payload:   msg.Payload,
	})
}

func (c *Context) HandleShowInputBox(ctx context.Context, id string, msg protocol.ShowInputBoxMessage) error {
	value, ok, err := c.host.InputBox(ctx, interfaces.InputBoxOptions{
		Prompt: msg.Prompt,
		Value:  msg.Value,
		Validate: func(candidate string) string {
			return model.ValidNameMessage(candidate, nil)
		},
	})
	if err != nil {
		return fmt.Errorf("document: input box: %w", err)
	}
	if c.Closed() {
		return ErrClosed
	}
	return c.dispatcher.Reply(ctx, protocol.CommandShowInputBoxResult, id, protocol.ShowInputBoxResultMessage{
		Value: value,
		OK:    ok,
	})
}

func (c *Context) HandleFocusTree(ctx context.Context) error {
	c.nav.Focus(ctx)
	return nil
}

func (c *Context) isReadOnly() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readOnly || c.closed
}
