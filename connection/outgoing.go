package connection

import (
	"time"

	"github.com/Tnze/go-mc/chat"
	"github.com/rs/zerolog"

	"github.com/skyezerfox/magma/protocol"
)

// outbound is one entry of the write queue. apply runs on the writer after
// the packet, if any, has been written, so a cipher or compression switch
// takes effect exactly between two frames.
type outbound struct {
	packet     protocol.Packet
	apply      func(w *protocol.FrameWriter)
	closeAfter bool
}

// Send queues a clientbound packet.
func (c *Connection) Send(p protocol.Packet) error {
	return c.enqueue(outbound{packet: p})
}

func (c *Connection) enqueue(item outbound) error {
	if c.ctx.Err() != nil {
		return ErrClosed
	}
	select {
	case c.out <- item:
		return nil
	case <-c.ctx.Done():
		return ErrClosed
	default:
	}

	c.log.Warn().Int("size", cap(c.out)).Msg("Outbound queue overflow")
	c.Close()
	return ErrClosed
}

// Disconnect sends the disconnect packet of the current phase and closes the
// connection once it is flushed. Phases without a disconnect packet close
// right away.
func (c *Connection) Disconnect(reason string) {
	msg := chat.Message{Text: reason}

	var p protocol.Packet
	switch c.phase.Current() {
	case protocol.Login:
		p = &protocol.LoginDisconnect{Reason: msg}
	case protocol.Play:
		p = &protocol.Disconnect{Reason: msg}
	default:
		c.Close()
		return
	}

	c.log.Debug().Str("reason", reason).Msg("Disconnecting")
	c.closeAfter(p)
}

// closeAfter queues p and closes the connection once it is written or the
// flush timeout passes. It returns errClosing for the read loop.
func (c *Connection) closeAfter(p protocol.Packet) error {
	if err := c.enqueue(outbound{packet: p, closeAfter: true}); err != nil {
		return err
	}
	time.AfterFunc(c.opts.FlushTimeout, func() { c.Close() })
	return errClosing
}

func (c *Connection) writeLoop(logger zerolog.Logger) {
	for {
		select {
		case <-c.ctx.Done():
			return
		case item := <-c.out:
			if c.ctx.Err() != nil {
				return
			}
			if item.packet != nil {
				if err := c.write(logger, item.packet); err != nil {
					c.Close()
					return
				}
			}
			if item.apply != nil {
				item.apply(c.writer)
			}
			if item.closeAfter {
				c.Close()
				return
			}
		}
	}
}

func (c *Connection) write(logger zerolog.Logger, p protocol.Packet) error {
	d, body, err := c.opts.Registry.Encode(protocol.Clientbound, p)
	if err != nil {
		logger.Error().Err(err).Msgf("Failed to encode %T", p)
		return err
	}
	if err := c.writer.WriteFrame(d.ID, body); err != nil {
		if c.ctx.Err() == nil {
			logger.Debug().Err(err).Str("packet", d.Name).Msg("Write failed")
		}
		return err
	}
	return nil
}
