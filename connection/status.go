package connection

import (
	"encoding/json"

	"github.com/Tnze/go-mc/chat"
	"github.com/tidwall/sjson"

	"github.com/skyezerfox/magma/codec"
	"github.com/skyezerfox/magma/constants"
	"github.com/skyezerfox/magma/models"
	"github.com/skyezerfox/magma/protocol"
)

const maxStatusSample = 12

// Status builds the server list entry shown to clients.
func Status(opts *Options) models.ServerStatus {
	players := opts.Manager.Players()
	sample := make([]models.Sample, 0, maxStatusSample)
	for _, p := range players {
		if len(sample) == maxStatusSample {
			break
		}
		sample = append(sample, models.Sample{Name: p.Username, ID: codec.FormatUUID(p.UUID, true)})
	}

	return models.ServerStatus{
		Version: models.Version{
			Name:     constants.MCVersion,
			Protocol: constants.MCProtocol,
		},
		Players: models.Players{
			Max:    opts.MaxPlayers,
			Online: len(players),
			Sample: sample,
		},
		Description: chat.Message{Text: opts.MOTD},
	}
}

// StatusJSON is Status encoded for the StatusResponse packet.
func StatusJSON(opts *Options) ([]byte, error) {
	out, err := json.Marshal(Status(opts))
	if err != nil {
		return nil, err
	}
	if opts.Favicon != "" {
		return sjson.SetBytes(out, "favicon", opts.Favicon)
	}
	return out, nil
}

func (c *Connection) HandleStatusRequest(p *protocol.StatusRequest) error {
	if c.statusSent {
		return &protocol.ProtocolError{
			Err:   protocol.ErrUnexpectedPacket,
			Phase: protocol.Status,
			Msg:   "status already requested",
		}
	}
	c.statusSent = true

	out, err := StatusJSON(c.opts)
	if err != nil {
		return err
	}
	return c.Send(&protocol.StatusResponse{JSON: string(out)})
}

// HandlePing answers with the same payload and ends the status exchange.
func (c *Connection) HandlePing(p *protocol.Ping) error {
	return c.closeAfter(&protocol.Pong{Payload: p.Payload})
}
