package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Wire format constants for hosts that carry the channel over a byte stream.
const (
	HeaderSize = 8
	Magic      = 0x4C54 // ASCII 'LT'
)

// Errors returned by wire format functions.
var (
	ErrBufferTooShort  = errors.New("protocol: buffer too short for frame header")
	ErrBadMagic        = errors.New("protocol: invalid magic bytes in frame header")
	ErrPayloadTooShort = errors.New("protocol: buffer too short for complete frame")
	ErrBadFrameType    = errors.New("protocol: frame type does not match envelope command")
)

// frameTypes maps commands onto their wire type bytes. Codes are stable:
// new commands append, existing codes never change.
var frameTypes = map[Command]byte{
	CommandInit:                  1,
	CommandLoadPage:              2,
	CommandInvalidData:           3,
	CommandUpdatePaths:           4,
	CommandShowProperties:        5,
	CommandSavePropertiesResult:  6,
	CommandConfirmQuestionResult: 7,
	CommandRequestPageReload:     8,
	CommandFocus:                 9,
	CommandShowInputBoxResult:    10,
	CommandRequestRename:         11,
	CommandBlockEditor:           12,
	CommandUpdate:                32,
	CommandSelect:                33,
	CommandSaveProperties:        34,
	CommandConfirmQuestion:       35,
	CommandShowInputBox:          36,
	CommandFocusTree:             37,
}

var frameCommands = func() map[byte]Command {
	out := make(map[byte]Command, len(frameTypes))
	for cmd, code := range frameTypes {
		out[code] = cmd
	}
	return out
}()

// FrameHeader is the decoded fixed-size frame prefix.
//
// Wire layout:
//
//	[0:2]  magic   (big-endian uint16, 0x4C54)
//	[2]    version (uint8, protocol Version)
//	[3]    type    (uint8, frame type code)
//	[4:8]  length  (little-endian uint32, payload bytes)
type FrameHeader struct {
	Magic   uint16
	Version uint8
	Type    byte
	Length  uint32
}

// EncodeHeader writes the 8-byte frame header for the given type code and
// payload length.
func EncodeHeader(frameType byte, payloadLength uint32) []byte {
	buf := make([]byte, HeaderSize)
	binary.BigEndian.PutUint16(buf[0:2], Magic)
	buf[2] = Version
	buf[3] = frameType
	binary.LittleEndian.PutUint32(buf[4:8], payloadLength)
	return buf
}

// DecodeHeader parses an 8-byte frame header from data.
func DecodeHeader(data []byte) (*FrameHeader, error) {
	if len(data) < HeaderSize {
		return nil, ErrBufferTooShort
	}
	magic := binary.BigEndian.Uint16(data[0:2])
	if magic != Magic {
		return nil, ErrBadMagic
	}
	return &FrameHeader{
		Magic:   magic,
		Version: data[2],
		Type:    data[3],
		Length:  binary.LittleEndian.Uint32(data[4:8]),
	}, nil
}

// EncodeFrame encodes an envelope into a complete frame (header + CBOR
// payload).
func EncodeFrame(env Envelope) ([]byte, error) {
	frameType, ok := frameTypes[env.Command]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, env.Command)
	}

	payload, err := cbor.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("protocol: cbor encode: %w", err)
	}

	frame := make([]byte, HeaderSize+len(payload))
	copy(frame[0:HeaderSize], EncodeHeader(frameType, uint32(len(payload))))
	copy(frame[HeaderSize:], payload)
	return frame, nil
}

// DecodeFrame decodes a complete frame back into its envelope, verifying
// the header against the embedded command.
func DecodeFrame(data []byte) (Envelope, error) {
	var env Envelope

	header, err := DecodeHeader(data)
	if err != nil {
		return env, err
	}
	if header.Version != Version {
		return env, fmt.Errorf("%w: %d", ErrVersionMismatch, header.Version)
	}
	if len(data) < HeaderSize+int(header.Length) {
		return env, ErrPayloadTooShort
	}

	if err := cbor.Unmarshal(data[HeaderSize:HeaderSize+int(header.Length)], &env); err != nil {
		return env, fmt.Errorf("protocol: cbor decode: %w", err)
	}

	if expected, ok := frameTypes[env.Command]; !ok || expected != header.Type {
		return env, ErrBadFrameType
	}
	return env, nil
}
