package connection

import (
	"context"
	"time"

	"github.com/skyezerfox/magma/auth"
	"github.com/skyezerfox/magma/models"
	"github.com/skyezerfox/magma/protocol"
)

const (
	DefaultKeepAliveInterval = 15 * time.Second
	DefaultKeepAliveTimeout  = 30 * time.Second
	DefaultFlushTimeout      = 2 * time.Second
	DefaultQueueSize         = 256
)

// ProfileStore receives every profile that completes login.
type ProfileStore interface {
	Put(ctx context.Context, profile *models.GameProfile) error
}

// Options is the server wide state shared by every connection.
type Options struct {
	Registry    *protocol.Registry
	Coordinator *auth.Coordinator
	Limiter     *auth.LoginLimiter
	Manager     *Manager
	Target      DispatchTarget
	Profiles    ProfileStore

	MOTD       string
	MaxPlayers int
	// Favicon is a data:image/png;base64 URI, left out of the status when empty.
	Favicon string

	// CompressionThreshold below zero disables compression.
	CompressionThreshold int

	KeepAliveInterval time.Duration
	KeepAliveTimeout  time.Duration
	FlushTimeout      time.Duration
	QueueSize         int
}

// NewOptions fills in defaults for everything o leaves unset. Connections
// must share the returned value.
func NewOptions(o Options) *Options {
	out := o
	if out.Registry == nil {
		out.Registry = protocol.NewStandardRegistry(protocol.DefaultLimits())
	}
	if out.Manager == nil {
		out.Manager = NewManager()
	}
	if out.Target == nil {
		out.Target = NopTarget{}
	}
	if out.KeepAliveInterval <= 0 {
		out.KeepAliveInterval = DefaultKeepAliveInterval
	}
	if out.KeepAliveTimeout <= 0 {
		out.KeepAliveTimeout = DefaultKeepAliveTimeout
	}
	if out.FlushTimeout <= 0 {
		out.FlushTimeout = DefaultFlushTimeout
	}
	if out.QueueSize <= 0 {
		out.QueueSize = DefaultQueueSize
	}
	return &out
}
