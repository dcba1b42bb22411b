package protocol

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestFrameRoundTrip(t *testing.T) {
	payload, err := json.Marshal(LoadPageMessage{
		Element:         PageElement{Kind: "resource", Path: "Errors/PaymentFailed", Name: "PaymentFailed"},
		Languages:       []string{"en", "de"},
		PrimaryLanguage: "en",
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	env := Envelope{Command: CommandLoadPage, Version: Version, Payload: payload}

	frame, err := EncodeFrame(env)
	if err != nil {
		t.Fatalf("encode frame: %v", err)
	}

	decoded, err := DecodeFrame(frame)
	if err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	if decoded.Command != CommandLoadPage {
		t.Fatalf("expected loadPage, got %q", decoded.Command)
	}

	var msg LoadPageMessage
	if err := json.Unmarshal(decoded.Payload, &msg); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if msg.Element.Path != "Errors/PaymentFailed" || msg.PrimaryLanguage != "en" {
		t.Fatalf("payload changed across round trip: %+v", msg)
	}
}

func TestDecodeHeaderErrors(t *testing.T) {
	t.Run("short buffer", func(t *testing.T) {
		if _, err := DecodeHeader([]byte{0x4C}); !errors.Is(err, ErrBufferTooShort) {
			t.Fatalf("expected ErrBufferTooShort, got %v", err)
		}
	})

	t.Run("bad magic", func(t *testing.T) {
		frame, err := EncodeFrame(Envelope{Command: CommandFocusTree, Version: Version})
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		frame[0] = 0xFF
		if _, err := DecodeFrame(frame); !errors.Is(err, ErrBadMagic) {
			t.Fatalf("expected ErrBadMagic, got %v", err)
		}
	})

	t.Run("truncated payload", func(t *testing.T) {
		frame, err := EncodeFrame(Envelope{Command: CommandFocus, Version: Version})
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		if _, err := DecodeFrame(frame[:len(frame)-1]); !errors.Is(err, ErrPayloadTooShort) {
			t.Fatalf("expected ErrPayloadTooShort, got %v", err)
		}
	})

	t.Run("type and command must agree", func(t *testing.T) {
		frame, err := EncodeFrame(Envelope{Command: CommandFocus, Version: Version})
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		frame[3] = frameTypes[CommandSelect]
		if _, err := DecodeFrame(frame); !errors.Is(err, ErrBadFrameType) {
			t.Fatalf("expected ErrBadFrameType, got %v", err)
		}
	})
}

func TestEncodeFrameRejectsUnknownCommand(t *testing.T) {
	if _, err := EncodeFrame(Envelope{Command: Command("bogus")}); !errors.Is(err, ErrUnknownCommand) {
		t.Fatalf("expected ErrUnknownCommand, got %v", err)
	}
}

func TestFrameTypeCodesAreUnique(t *testing.T) {
	seen := map[byte]Command{}
	for cmd, code := range frameTypes {
		if prev, dup := seen[code]; dup {
			t.Fatalf("frame code %d assigned to both %q and %q", code, prev, cmd)
		}
		seen[code] = cmd
	}
}
