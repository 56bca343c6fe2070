package protocol

import "github.com/skyezerfox/magma/codec"

// Packet is the body of one protocol message. Its id, phase and direction
// are owned by the Registry, not by the packet type.
type Packet interface {
	Encode(w *codec.Writer) error
	Decode(r *codec.Reader) error
}

// Limits are the configurable bounds applied while decoding.
type Limits struct {
	MaxNicknameLength int
}

func DefaultLimits() Limits {
	return Limits{MaxNicknameLength: MaxNameLength}
}

// Protocol string limits, in characters.
const (
	MaxNameLength          = 16
	MaxServerAddressLength = 255
	MaxServerIDLength      = 20
	MaxChatLength          = 256
	MaxChatJSONLength      = 262144
	MaxChannelLength       = 32767
	MaxLocaleLength        = 16
	MaxStatusJSONLength    = 32767

	MaxKeyLength    = 1024
	MaxSecretLength = 256
)
