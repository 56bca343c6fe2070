package protocol

import (
	"fmt"
	"sync/atomic"
)

// Phase is a stage of the connection lifecycle. It decides which packet ids
// are legal on the wire.
type Phase int32

const (
	Handshaking Phase = iota
	Status
	Login
	Play
	Closed
)

func (p Phase) String() string {
	switch p {
	case Handshaking:
		return "Handshaking"
	case Status:
		return "Status"
	case Login:
		return "Login"
	case Play:
		return "Play"
	case Closed:
		return "Closed"
	}
	return fmt.Sprintf("Phase(%d)", int32(p))
}

// Direction is the direction a packet travels in.
type Direction uint8

const (
	Serverbound Direction = iota
	Clientbound
)

func (d Direction) String() string {
	switch d {
	case Serverbound:
		return "Serverbound"
	case Clientbound:
		return "Clientbound"
	}
	return "UnknownBound"
}

// NextState values carried by the Handshake packet.
const (
	NextStateStatus = 1
	NextStateLogin  = 2
)

// CanTransition reports whether from -> to is an edge of the phase graph.
// Handshaking branches to Status or Login, Login leads to Play and every
// phase may close. Closed is terminal.
func CanTransition(from, to Phase) bool {
	if from == Closed {
		return false
	}
	if to == Closed {
		return true
	}
	switch from {
	case Handshaking:
		return to == Status || to == Login
	case Login:
		return to == Play
	}
	return false
}

// PhaseMachine holds the current phase of one connection. Only the goroutine
// owning the connection calls Transition; Current may be read from anywhere.
type PhaseMachine struct {
	phase atomic.Int32
}

func NewPhaseMachine() *PhaseMachine {
	return &PhaseMachine{}
}

func (m *PhaseMachine) Current() Phase {
	return Phase(m.phase.Load())
}

func (m *PhaseMachine) Transition(to Phase) error {
	from := m.Current()
	if !CanTransition(from, to) {
		return &ProtocolError{
			Err:   ErrIllegalTransition,
			Phase: from,
			Msg:   fmt.Sprintf("%s -> %s", from, to),
		}
	}
	m.phase.Store(int32(to))
	return nil
}

// Close moves the machine to Closed. It reports false when it already was.
func (m *PhaseMachine) Close() bool {
	return Phase(m.phase.Swap(int32(Closed))) != Closed
}

// Admit rejects a serverbound packet that is not registered for the current phase.
func (m *PhaseMachine) Admit(d *Descriptor) error {
	current := m.Current()
	if d.Phase != current || d.Direction != Serverbound {
		return &ProtocolError{
			Err:       ErrUnexpectedPacket,
			Phase:     current,
			Direction: d.Direction,
			ID:        d.ID,
			Msg:       fmt.Sprintf("%s belongs to %s", d.Name, d.Phase),
		}
	}
	return nil
}
