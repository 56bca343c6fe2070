package connection

import (
	"time"

	"github.com/skyezerfox/magma/protocol"
)

// DispatchTarget receives the Play traffic of logged in players. Calls for
// one connection come from its own goroutine and arrive in wire order.
type DispatchTarget interface {
	Joined(c *Connection)
	Left(c *Connection)
	ChatMessage(c *Connection, message string) error
	ClientSettings(c *Connection, settings *protocol.ClientSettings) error
	PluginMessage(c *Connection, message *protocol.PluginMessage) error
}

// NopTarget ignores all Play traffic.
type NopTarget struct{}

func (NopTarget) Joined(*Connection)                                         {}
func (NopTarget) Left(*Connection)                                           {}
func (NopTarget) ChatMessage(*Connection, string) error                      { return nil }
func (NopTarget) ClientSettings(*Connection, *protocol.ClientSettings) error { return nil }
func (NopTarget) PluginMessage(*Connection, *protocol.PluginMessage) error   { return nil }

type keepAliveState struct {
	pending bool
	id      int64
	sentAt  time.Time
}

func (c *Connection) keepAliveTick(now time.Time) error {
	if c.phase.Current() != protocol.Play {
		return nil
	}
	if c.keepAlive.pending {
		if now.Sub(c.keepAlive.sentAt) > c.opts.KeepAliveTimeout {
			c.log.Warn().Msg("Timed out")
			c.Disconnect("Timed out")
			return errClosing
		}
		return nil
	}

	c.keepAlive.pending = true
	c.keepAlive.id = now.UnixNano()
	c.keepAlive.sentAt = now
	return c.Send(&protocol.KeepAlive{ID: c.keepAlive.id})
}

func (c *Connection) HandleKeepAlive(p *protocol.KeepAlive) error {
	if !c.keepAlive.pending || p.ID != c.keepAlive.id {
		c.log.Debug().Int64("id", p.ID).Msg("Ignoring unsolicited keepalive")
		return nil
	}
	c.keepAlive.pending = false
	c.latency.Store(int64(time.Since(c.keepAlive.sentAt)))
	return nil
}

// Latency is the round trip time of the last answered keepalive.
func (c *Connection) Latency() time.Duration {
	return time.Duration(c.latency.Load())
}

func (c *Connection) HandleChatMessage(p *protocol.ChatMessage) error {
	return c.opts.Target.ChatMessage(c, p.Message)
}

func (c *Connection) HandleClientSettings(p *protocol.ClientSettings) error {
	return c.opts.Target.ClientSettings(c, p)
}

func (c *Connection) HandlePluginMessage(p *protocol.PluginMessage) error {
	return c.opts.Target.PluginMessage(c, p)
}
