// Package server wires configuration, authentication and the connection
// layer into a running game listener.
package server

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"

	reuseport "github.com/kavu/go_reuseport"
	"github.com/rs/zerolog/log"
	"go.uber.org/multierr"

	"github.com/skyezerfox/magma/auth"
	"github.com/skyezerfox/magma/config"
	"github.com/skyezerfox/magma/connection"
	"github.com/skyezerfox/magma/protocol"
	"github.com/skyezerfox/magma/usercache"
)

type Server struct {
	addr  string
	opts  *connection.Options
	cache *usercache.Cache

	wg sync.WaitGroup
}

// New builds a server from cfg: it loads the server key, opens the
// usercache and prepares the shared connection options.
func New(cfg *config.Config) (*Server, error) {
	key, err := auth.LoadOrGenerateKey(cfg.Server.KeyFile)
	if err != nil {
		return nil, err
	}

	var session auth.SessionService
	if cfg.Server.OnlineMode {
		session = auth.NewHTTPSessionService(cfg.Session.URL, cfg.Session.Timeout)
	}
	coord, err := auth.NewCoordinator(auth.CoordinatorOptions{
		Key:        key,
		OnlineMode: cfg.Server.OnlineMode,
		Session:    session,
		Timeout:    cfg.Session.Timeout,
	})
	if err != nil {
		return nil, err
	}

	favicon, err := LoadFavicon(cfg.Server.Favicon)
	if err != nil {
		return nil, err
	}

	var cache *usercache.Cache
	if cfg.UserCache.Path != "" {
		if cache, err = usercache.Open(cfg.UserCache.Path); err != nil {
			return nil, err
		}
	}

	manager := connection.NewManager()
	opts := connection.Options{
		Registry:             protocol.NewStandardRegistry(protocol.Limits{MaxNicknameLength: cfg.Server.MaxNicknameLength}),
		Coordinator:          coord,
		Limiter:              auth.NewLoginLimiter(cfg.Login.Rate, cfg.Login.Burst),
		Manager:              manager,
		Target:               NewChatRelay(manager),
		MOTD:                 cfg.Server.MOTD,
		MaxPlayers:           cfg.Server.MaxPlayers,
		Favicon:              favicon,
		CompressionThreshold: cfg.Server.CompressionThreshold,
		KeepAliveInterval:    cfg.Server.KeepAliveInterval,
		KeepAliveTimeout:     cfg.Server.KeepAliveTimeout,
	}
	if cache != nil {
		opts.Profiles = cache
	}

	return &Server{
		addr:  cfg.Listener.Addr(),
		opts:  connection.NewOptions(opts),
		cache: cache,
	}, nil
}

// NewWithOptions serves connections with prepared options.
func NewWithOptions(addr string, opts *connection.Options) *Server {
	return &Server{addr: addr, opts: opts}
}

func (s *Server) Options() *connection.Options {
	return s.opts
}

func (s *Server) Manager() *connection.Manager {
	return s.opts.Manager
}

// Cache is nil when the usercache is disabled.
func (s *Server) Cache() *usercache.Cache {
	return s.cache
}

// ListenAndServe listens on the configured address with SO_REUSEPORT.
func (s *Server) ListenAndServe(ctx context.Context) error {
	listener, err := reuseport.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("unable to listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve accepts connections until ctx is done, then closes every
// connection and waits for them to finish.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	log.Info().Str("addr", listener.Addr().String()).Msg("Listening for players")

	go func() {
		<-ctx.Done()
		log.Info().Msg("Closing listener")
		if err := listener.Close(); err != nil {
			log.Warn().Err(err).Msg("Listener did not close cleanly")
		}
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				s.drain()
				return nil
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				log.Warn().Err(err).Msg("Temporary accept failure")
				continue
			}
			s.drain()
			return err
		}

		c := connection.New(conn, s.opts)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			c.Serve()
		}()
	}
}

func (s *Server) drain() {
	if err := s.opts.Manager.CloseAll(); err != nil {
		log.Debug().Err(err).Msg("Errors while closing connections")
	}
	s.wg.Wait()
	log.Info().Msg("All connections closed")
}

// Close releases what New opened. Call it after Serve returned.
func (s *Server) Close() error {
	var err error
	err = multierr.Append(err, s.opts.Manager.CloseAll())
	if s.cache != nil {
		err = multierr.Append(err, s.cache.Close())
	}
	return err
}

// LoadFavicon reads a PNG file into the data URI used by the status JSON.
// An empty path means no favicon.
func LoadFavicon(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read favicon: %w", err)
	}
	if len(raw) < 8 || string(raw[1:4]) != "PNG" {
		return "", fmt.Errorf("favicon %s is not a PNG image", path)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(raw), nil
}
