// Package api serves a small HTTP admin surface next to the game listener.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/skyezerfox/magma/connection"
	"github.com/skyezerfox/magma/usercache"
)

type Server struct {
	opts  *connection.Options
	cache *usercache.Cache

	router     *gin.Engine
	httpServer *http.Server
}

// NewServer builds the router. cache may be nil, in which case the profile
// endpoints answer 503.
func NewServer(opts *connection.Options, cache *usercache.Cache, debug bool) *Server {
	if debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{opts: opts, cache: cache}
	s.router = s.buildRouter()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) buildRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	api := router.Group("/api")
	{
		api.GET("/ping", s.handlePing)
		api.GET("/status", s.handleStatus)
		api.GET("/players", s.handlePlayers)
		api.POST("/players/:uuid/kick", s.handleKick)
		api.GET("/profiles", s.handleProfiles)
		api.GET("/profiles/:name", s.handleProfile)
	}

	return router
}

// Start serves on port until ctx is done.
func (s *Server) Start(ctx context.Context, port int) error {
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("API server did not shut down cleanly")
		}
	}()

	log.Info().Int("port", port).Msg("API server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("API server error: %w", err)
	}
	return nil
}
