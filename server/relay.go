package server

import (
	"strings"

	"github.com/Tnze/go-mc/chat"
	"github.com/rs/zerolog/log"

	"github.com/skyezerfox/magma/codec"
	"github.com/skyezerfox/magma/connection"
	"github.com/skyezerfox/magma/constants"
	"github.com/skyezerfox/magma/protocol"
)

const brandChannel = "minecraft:brand"

// ChatRelay is the default dispatch target: it announces players and relays
// chat to everyone online.
type ChatRelay struct {
	manager *connection.Manager
}

func NewChatRelay(m *connection.Manager) *ChatRelay {
	return &ChatRelay{manager: m}
}

func (r *ChatRelay) announce(text string) {
	err := r.manager.Broadcast(&protocol.ChatMessageClientbound{
		Message:  chat.Message{Text: text},
		Position: protocol.ChatPositionSystem,
	})
	if err != nil {
		log.Debug().Err(err).Msg("Announcement did not reach every player")
	}
}

func (r *ChatRelay) Joined(c *connection.Connection) {
	brand := codec.NewWriter(len(constants.ServerBrand) + 1)
	if err := brand.WriteString(constants.ServerBrand, protocol.MaxChannelLength); err == nil {
		c.Send(&protocol.PluginMessage{Channel: brandChannel, Data: brand.Bytes()})
	}
	r.announce(c.Profile().Name + " joined the game")
}

func (r *ChatRelay) Left(c *connection.Connection) {
	r.announce(c.Profile().Name + " left the game")
}

func (r *ChatRelay) ChatMessage(c *connection.Connection, message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil
	}

	profile := c.Profile()
	log.Info().Str("username", profile.Name).Str("message", message).Msg("Chat")

	err := r.manager.Broadcast(&protocol.ChatMessageClientbound{
		Message:  chat.Message{Text: "<" + profile.Name + "> " + message},
		Position: protocol.ChatPositionChat,
		Sender:   profile.ID,
	})
	if err != nil {
		log.Debug().Err(err).Msg("Chat did not reach every player")
	}
	return nil
}

func (r *ChatRelay) ClientSettings(c *connection.Connection, s *protocol.ClientSettings) error {
	log.Debug().
		Str("username", c.Profile().Name).
		Str("locale", s.Locale).
		Int8("view_distance", s.ViewDistance).
		Msg("Client settings")
	return nil
}

func (r *ChatRelay) PluginMessage(c *connection.Connection, m *protocol.PluginMessage) error {
	if m.Channel != brandChannel {
		return nil
	}
	brand, err := codec.NewReader(m.Data).ReadString(protocol.MaxChannelLength)
	if err != nil {
		return &protocol.FrameError{Err: err}
	}
	log.Debug().Str("username", c.Profile().Name).Str("brand", brand).Msg("Client brand")
	return nil
}
