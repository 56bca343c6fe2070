package connection

import (
	"time"

	"github.com/google/uuid"
)

// Player is a point in time view of a logged in connection.
type Player struct {
	UUID            uuid.UUID     `json:"uuid"`
	Username        string        `json:"username"`
	Addr            string        `json:"addr"`
	ProtocolVersion int32         `json:"protocol_version"`
	Latency         time.Duration `json:"latency"`
	ConnectedAt     time.Time     `json:"connected_at"`
}

func (c *Connection) snapshot() Player {
	profile := c.Profile()
	return Player{
		UUID:            profile.ID,
		Username:        profile.Name,
		Addr:            c.RemoteAddr().String(),
		ProtocolVersion: c.ProtocolVersion(),
		Latency:         c.Latency(),
		ConnectedAt:     c.connectedAt,
	}
}
