package protocol

import "fmt"

type HandshakeHandler interface {
	HandleHandshake(p *Handshake) error
}

type StatusHandler interface {
	HandleStatusRequest(p *StatusRequest) error
	HandlePing(p *Ping) error
}

type LoginHandler interface {
	HandleLoginStart(p *LoginStart) error
	HandleEncryptionResponse(p *EncryptionResponse) error
}

type PlayHandler interface {
	HandleKeepAlive(p *KeepAlive) error
	HandleChatMessage(p *ChatMessage) error
	HandleClientSettings(p *ClientSettings) error
	HandlePluginMessage(p *PluginMessage) error
}

// Handler must handle every serverbound packet of every phase. Leaving a
// method out is a compile error for the implementing type.
type Handler interface {
	HandshakeHandler
	StatusHandler
	LoginHandler
	PlayHandler
}

// Dispatch routes a decoded serverbound packet to the handler method for its
// concrete type. Ids are phase scoped and reused, so they are never used here.
func Dispatch(p Packet, h Handler) error {
	switch p := p.(type) {
	case *Handshake:
		return h.HandleHandshake(p)

	case *StatusRequest:
		return h.HandleStatusRequest(p)
	case *Ping:
		return h.HandlePing(p)

	case *LoginStart:
		return h.HandleLoginStart(p)
	case *EncryptionResponse:
		return h.HandleEncryptionResponse(p)

	case *KeepAlive:
		return h.HandleKeepAlive(p)
	case *ChatMessage:
		return h.HandleChatMessage(p)
	case *ClientSettings:
		return h.HandleClientSettings(p)
	case *PluginMessage:
		return h.HandlePluginMessage(p)
	}
	return fmt.Errorf("%w: %T", ErrUnhandledPacket, p)
}
