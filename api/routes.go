package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skyezerfox/magma/codec"
	"github.com/skyezerfox/magma/connection"
	"github.com/skyezerfox/magma/models"
	"github.com/skyezerfox/magma/usercache"
)

func (s *Server) handlePing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, connection.Status(s.opts))
}

func (s *Server) handlePlayers(c *gin.Context) {
	c.JSON(http.StatusOK, s.opts.Manager.Players())
}

type kickRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) handleKick(c *gin.Context) {
	id, err := codec.ParseUUID(c.Param("uuid"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req kickRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if req.Reason == "" {
		req.Reason = "Kicked by an operator"
	}

	conn, ok := s.opts.Manager.Player(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "player is not online"})
		return
	}
	conn.Disconnect(req.Reason)
	c.JSON(http.StatusOK, gin.H{"kicked": conn.Profile().Name})
}

type profileResponse struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Properties []models.Property `json:"properties"`
	Skin       string            `json:"skin,omitempty"`
	LastSeen   time.Time         `json:"last_seen"`
}

func newProfileResponse(e *usercache.Entry) profileResponse {
	resp := profileResponse{
		ID:         codec.FormatUUID(e.Profile.ID, false),
		Name:       e.Profile.Name,
		Properties: e.Profile.Properties,
		LastSeen:   e.LastSeen,
	}
	if resp.Properties == nil {
		resp.Properties = []models.Property{}
	}
	if textures, err := e.Profile.Textures(); err == nil {
		if skin, ok := textures["SKIN"]; ok {
			resp.Skin = skin.Hash()
		}
	}
	return resp
}

func (s *Server) handleProfiles(c *gin.Context) {
	if s.cache == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "usercache disabled"})
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}

	entries, err := s.cache.List(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]profileResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, newProfileResponse(e))
	}
	c.JSON(http.StatusOK, out)
}

// handleProfile looks a cached profile up by name or UUID.
func (s *Server) handleProfile(c *gin.Context) {
	if s.cache == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "usercache disabled"})
		return
	}

	key := c.Param("name")
	var (
		entry *usercache.Entry
		err   error
	)
	if _, parseErr := codec.ParseUUID(key); parseErr == nil {
		entry, err = s.cache.ByUUID(c.Request.Context(), key)
	} else {
		entry, err = s.cache.ByName(c.Request.Context(), key)
	}

	switch {
	case errors.Is(err, usercache.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusOK, newProfileResponse(entry))
	}
}
