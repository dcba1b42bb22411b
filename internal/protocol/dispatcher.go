package protocol

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"

	"github.com/loctree/loctree/internal/logging"
	"github.com/loctree/loctree/pkg/interfaces"
)

var (
	ErrUnknownCommand  = errors.New("protocol: unknown command")
	ErrVersionMismatch = errors.New("protocol: unsupported protocol version")
	ErrNoSurface       = errors.New("protocol: no surface attached")
)

const (
	codeProtocolDecode   = "PROTOCOL_DECODE_FAILED"
	codeProtocolHandling = "PROTOCOL_HANDLING_FAILED"
)

// Handler is the engine side of the channel. The active document context
// implements it; replies to correlated requests are posted back through the
// dispatcher by the handler.
type Handler interface {
	HandleUpdate(ctx context.Context, msg UpdateMessage) error
	HandleSelect(ctx context.Context, msg SelectMessage) error
	HandleSaveProperties(ctx context.Context, id string, msg SavePropertiesMessage) error
	HandleConfirmQuestion(ctx context.Context, id string, msg ConfirmQuestionMessage) error
	HandleShowInputBox(ctx context.Context, id string, msg ShowInputBoxMessage) error
	HandleFocusTree(ctx context.Context) error
}

// Dispatcher decodes inbound envelopes, routes them to the handler, and
// posts outbound messages through the surface sink.
type Dispatcher struct {
	handler Handler
	surface interfaces.Surface
	logger  interfaces.Logger
}

// NewDispatcher wires a dispatcher to its handler and surface sink.
func NewDispatcher(handler Handler, surface interfaces.Surface, logger interfaces.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &Dispatcher{handler: handler, surface: surface, logger: logger}
}

// Dispatch routes one raw inbound envelope. Handler failures come back
// tagged; nothing is allowed to panic across the channel boundary.
func (d *Dispatcher) Dispatch(ctx context.Context, raw []byte) error {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "protocol envelope decode failed").
			WithTextCode(codeProtocolDecode)
	}
	return d.DispatchEnvelope(ctx, env)
}

// DispatchEnvelope routes one decoded envelope.
func (d *Dispatcher) DispatchEnvelope(ctx context.Context, env Envelope) error {
	if env.Version != 0 && env.Version != Version {
		return fmt.Errorf("%w: %d", ErrVersionMismatch, env.Version)
	}

	d.logger.Debug("protocol.dispatch", "command", string(env.Command), "id", env.ID)

	var err error
	switch env.Command {
	case CommandUpdate:
		var msg UpdateMessage
		if err = decodePayload(env.Payload, &msg); err == nil {
			err = d.handler.HandleUpdate(ctx, msg)
		}
	case CommandSelect:
		var msg SelectMessage
		if err = decodePayload(env.Payload, &msg); err == nil {
			err = d.handler.HandleSelect(ctx, msg)
		}
	case CommandSaveProperties:
		var msg SavePropertiesMessage
		if err = decodePayload(env.Payload, &msg); err == nil {
			err = d.handler.HandleSaveProperties(ctx, env.ID, msg)
		}
	case CommandConfirmQuestion:
		var msg ConfirmQuestionMessage
		if err = decodePayload(env.Payload, &msg); err == nil {
			err = d.handler.HandleConfirmQuestion(ctx, env.ID, msg)
		}
	case CommandShowInputBox:
		var msg ShowInputBoxMessage
		if err = decodePayload(env.Payload, &msg); err == nil {
			err = d.handler.HandleShowInputBox(ctx, env.ID, msg)
		}
	case CommandFocusTree:
		err = d.handler.HandleFocusTree(ctx)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, env.Command)
	}

	if err != nil {
		d.logger.Error("protocol.dispatch.failed", "command", string(env.Command), "error", err)
		if goerrors.IsWrapped(err) {
			return err
		}
		return goerrors.Wrap(err, goerrors.CategoryCommand, "protocol message handling failed").
			WithTextCode(codeProtocolHandling)
	}
	return nil
}

// Send posts an uncorrelated outbound message.
func (d *Dispatcher) Send(ctx context.Context, cmd Command, payload any) error {
	return d.send(ctx, cmd, "", payload)
}

// Reply posts an outbound message correlated with an inbound request id.
func (d *Dispatcher) Reply(ctx context.Context, cmd Command, id string, payload any) error {
	return d.send(ctx, cmd, id, payload)
}

func (d *Dispatcher) send(ctx context.Context, cmd Command, id string, payload any) error {
	if d.surface == nil {
		return ErrNoSurface
	}

	env := Envelope{Command: cmd, Version: Version, ID: id}
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("protocol: encode %s payload: %w", cmd, err)
		}
		env.Payload = encoded
	}

	if err := d.surface.Post(ctx, env); err != nil {
		d.logger.Error("protocol.send.failed", "command", string(cmd), "error", err)
		return err
	}
	return nil
}

func decodePayload(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "protocol payload decode failed").
			WithTextCode(codeProtocolDecode)
	}
	return nil
}
