package connection

import (
	"fmt"

	"github.com/skyezerfox/magma/constants"
	"github.com/skyezerfox/magma/protocol"
)

func (c *Connection) HandleHandshake(p *protocol.Handshake) error {
	c.version.Store(p.ProtocolVersion)

	switch p.NextState {
	case protocol.NextStateStatus:
		return c.phase.Transition(protocol.Status)

	case protocol.NextStateLogin:
		if err := c.phase.Transition(protocol.Login); err != nil {
			return err
		}
		if p.ProtocolVersion != constants.MCProtocol {
			c.log.Info().Int32("version", p.ProtocolVersion).Msg("Rejecting client with mismatched protocol version")
			if p.ProtocolVersion < constants.MCProtocol {
				c.Disconnect("Outdated client! Please use " + constants.MCVersion)
			} else {
				c.Disconnect("Outdated server! I'm still on " + constants.MCVersion)
			}
			return errClosing
		}
		return nil
	}

	return &protocol.ProtocolError{
		Err:   protocol.ErrInvalidNextState,
		Phase: protocol.Handshaking,
		Msg:   fmt.Sprintf("next state %d", p.NextState),
	}
}
