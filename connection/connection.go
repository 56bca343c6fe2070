package connection

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/skyezerfox/magma/auth"
	"github.com/skyezerfox/magma/codec"
	"github.com/skyezerfox/magma/models"
	"github.com/skyezerfox/magma/protocol"
)

var (
	// ErrClosed is returned when sending on a closed connection.
	ErrClosed = errors.New("connection closed")

	// errClosing ends the read loop after a disconnect has been queued.
	errClosing = errors.New("connection closing")
)

// Connection is one client socket. Serve runs the owning goroutine, which is
// the only one that decodes packets, changes the phase or touches the login
// state. Send, Disconnect and Close are safe from anywhere.
type Connection struct {
	conn net.Conn
	opts *Options
	log  zerolog.Logger

	phase  *protocol.PhaseMachine
	reader *protocol.FrameReader
	writer *protocol.FrameWriter
	out    chan outbound

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once

	profile     atomic.Pointer[models.GameProfile]
	version     atomic.Int32
	latency     atomic.Int64
	connectedAt time.Time

	// owned by the Serve goroutine
	statusSent bool
	attempt    *auth.Attempt
	authResult <-chan auth.Result
	keepAlive  keepAliveState
}

func New(conn net.Conn, opts *Options) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Connection{
		conn:        conn,
		opts:        opts,
		log:         log.With().Str("addr", conn.RemoteAddr().String()).Logger(),
		phase:       protocol.NewPhaseMachine(),
		reader:      protocol.NewFrameReader(conn),
		writer:      protocol.NewFrameWriter(conn),
		out:         make(chan outbound, opts.QueueSize),
		ctx:         ctx,
		cancel:      cancel,
		connectedAt: time.Now(),
	}
	return c
}

func (c *Connection) Phase() protocol.Phase {
	return c.phase.Current()
}

// Profile is nil until login completes and never changes afterwards.
func (c *Connection) Profile() *models.GameProfile {
	return c.profile.Load()
}

func (c *Connection) ProtocolVersion() int32 {
	return c.version.Load()
}

func (c *Connection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// RemoteIP is the host part of the remote address.
func (c *Connection) RemoteIP() string {
	addr := c.conn.RemoteAddr().String()
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

// Done is closed once the connection is closed.
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Close drops the socket immediately. Queued packets are discarded and a
// pending session service call is cancelled.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.phase.Close()
		c.cancel()
		err = c.conn.Close()
	})
	return err
}

// Serve runs the connection until the client leaves or is disconnected.
func (c *Connection) Serve() error {
	c.log.Debug().Msg("Accepted connection")
	c.opts.Manager.Track(c)
	defer c.opts.Manager.Untrack(c)

	go c.writeLoop(c.log)

	frames := make(chan frameResult)
	resume := make(chan struct{})
	go c.readLoop(frames, resume)

	err := c.run(frames, resume)
	c.finish()
	return err
}

type frameResult struct {
	frame []byte
	err   error
}

// readLoop reads one frame at a time and waits for the owner to finish it
// before reading the next, so cipher and compression switches made while
// handling a frame apply to the one after it.
func (c *Connection) readLoop(frames chan<- frameResult, resume <-chan struct{}) {
	for {
		frame, err := c.reader.ReadFrame()
		select {
		case frames <- frameResult{frame, err}:
		case <-c.ctx.Done():
			return
		}
		if err != nil {
			return
		}
		select {
		case <-resume:
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Connection) run(frames <-chan frameResult, resume chan<- struct{}) error {
	var ticker *time.Ticker
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	for {
		var tick <-chan time.Time
		if ticker != nil {
			tick = ticker.C
		}

		var err error
		select {
		case <-c.ctx.Done():
			return nil

		case f := <-frames:
			if f.err != nil {
				return c.readFailed(f.err)
			}
			err = c.handleFrame(f.frame)
			if err == nil {
				select {
				case resume <- struct{}{}:
				case <-c.ctx.Done():
					return nil
				}
			}

		case res := <-c.authResult:
			c.authResult = nil
			err = c.finishLogin(res)

		case now := <-tick:
			err = c.keepAliveTick(now)
		}

		if err != nil {
			return c.fail(err)
		}
		if ticker == nil && c.phase.Current() == protocol.Play {
			ticker = time.NewTicker(c.opts.KeepAliveInterval)
		}
	}
}

func (c *Connection) readFailed(err error) error {
	if c.ctx.Err() != nil {
		return nil
	}
	var frameErr *protocol.FrameError
	if errors.As(err, &frameErr) {
		return c.fail(err)
	}
	if !errors.Is(err, io.EOF) {
		c.log.Debug().Err(err).Msg("Read failed")
	}
	return nil
}

// fail reports err to the client when the phase allows it and waits for the
// connection to go down.
func (c *Connection) fail(err error) error {
	if errors.Is(err, errClosing) {
		c.awaitClose()
		return nil
	}
	if errors.Is(err, ErrClosed) {
		return nil
	}

	var (
		frameErr    *protocol.FrameError
		protocolErr *protocol.ProtocolError
		authErr     *auth.AuthenticationError
	)
	switch {
	case errors.As(err, &authErr):
		c.log.Info().Err(err).Msg("Login failed")
		c.Disconnect(authErr.Kind.Reason())
	case errors.As(err, &frameErr), errors.As(err, &protocolErr):
		c.log.Warn().Err(err).Stringer("phase", c.phase.Current()).Msg("Dropping client")
		c.Disconnect("Invalid packet")
	default:
		c.log.Error().Err(err).Stringer("phase", c.phase.Current()).Msg("Connection failed")
		c.Disconnect("Internal server error")
	}
	c.awaitClose()
	return err
}

func (c *Connection) awaitClose() {
	<-c.ctx.Done()
}

func (c *Connection) finish() {
	c.Close()

	profile := c.Profile()
	if profile == nil {
		c.log.Debug().Msg("Connection closed")
		return
	}
	if c.opts.Manager.RemovePlayer(c) {
		c.opts.Target.Left(c)
	}
	c.log.Info().Str("username", profile.Name).Msg("Player disconnected")
}

// handleFrame decodes one frame in the current phase, gates it and
// dispatches it.
func (c *Connection) handleFrame(frame []byte) error {
	id, body, err := splitFrame(frame)
	if err != nil {
		return err
	}

	phase := c.phase.Current()
	p, d, err := c.opts.Registry.Decode(phase, protocol.Serverbound, id, body)
	if err != nil {
		return err
	}
	if err := c.phase.Admit(d); err != nil {
		return err
	}

	if e := c.log.Trace(); e.Enabled() {
		e.Stringer("phase", phase).Str("packet", d.Name).Msg("Received packet")
	}
	return protocol.Dispatch(p, c)
}

func splitFrame(frame []byte) (int32, []byte, error) {
	r := codec.NewReader(frame)
	id, err := r.ReadVarInt()
	if err != nil {
		return 0, nil, &protocol.FrameError{Err: err}
	}
	return id, r.ReadRest(), nil
}

var _ protocol.Handler = (*Connection)(nil)
