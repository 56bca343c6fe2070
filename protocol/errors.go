package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownPacket     = errors.New("unknown packet")
	ErrUnexpectedPacket  = errors.New("unexpected packet")
	ErrIllegalTransition = errors.New("illegal phase transition")
	ErrInvalidNextState  = errors.New("invalid next state")
	ErrDuplicatePacket   = errors.New("duplicate packet registration")
	ErrRegistrySealed    = errors.New("registry is sealed")
	ErrUnhandledPacket   = errors.New("no handler for packet")

	ErrFrameTooLarge  = errors.New("frame exceeds maximum size")
	ErrBadCompression = errors.New("badly compressed frame")
	ErrTrailingBytes  = errors.New("packet was larger than expected")
)

// FrameError is a malformed frame or packet body. It is always fatal to the
// connection.
type FrameError struct {
	Err error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("frame error: %v", e.Err)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}

// ProtocolError is a well formed packet that is not acceptable in the
// connection's current phase.
type ProtocolError struct {
	Err       error
	Phase     Phase
	Direction Direction
	ID        int32
	Msg       string
}

func (e *ProtocolError) Error() string {
	s := fmt.Sprintf("protocol error in %s: %v", e.Phase, e.Err)
	if e.ID != 0 || errors.Is(e.Err, ErrUnknownPacket) || errors.Is(e.Err, ErrUnexpectedPacket) {
		s += fmt.Sprintf(" (%s id 0x%02X)", e.Direction, e.ID)
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}
