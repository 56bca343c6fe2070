package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/skyezerfox/magma/codec"
	"github.com/skyezerfox/magma/models"
)

const DefaultSessionURL = "https://sessionserver.mojang.com"

// SessionService is the external authority that vouches for a player's
// account. Clients call JoinServer before connecting; servers call HasJoined
// to confirm it.
type SessionService interface {
	JoinServer(ctx context.Context, req JoinRequest) error
	HasJoined(ctx context.Context, username, serverHash, ip string) (*models.GameProfile, error)
}

// JoinRequest is the client half of the session handshake.
type JoinRequest struct {
	AccessToken     string
	SelectedProfile uuid.UUID
	ServerHash      string
}

// HTTPSessionService talks to a Yggdrasil compatible session server.
type HTTPSessionService struct {
	BaseURL string
	Client  *http.Client
}

func NewHTTPSessionService(baseURL string, timeout time.Duration) *HTTPSessionService {
	if baseURL == "" {
		baseURL = DefaultSessionURL
	}
	return &HTTPSessionService{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSessionService) JoinServer(ctx context.Context, req JoinRequest) error {
	body, err := json.Marshal(map[string]string{
		"accessToken":     req.AccessToken,
		"selectedProfile": codec.FormatUUID(req.SelectedProfile, false),
		"serverId":        req.ServerHash,
	})
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+"/session/minecraft/join", bytes.NewReader(body))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusOK {
		return nil
	}
	return classify(resp)
}

func (s *HTTPSessionService) HasJoined(ctx context.Context, username, serverHash, ip string) (*models.GameProfile, error) {
	query := url.Values{}
	query.Set("username", username)
	query.Set("serverId", serverHash)
	if ip != "" {
		query.Set("ip", ip)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"/session/minecraft/hasJoined?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, classify(resp)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newError(Unavailable, err)
	}
	profile, err := ParseProfile(raw)
	if err != nil {
		return nil, newError(InvalidCredentials, err)
	}
	return profile, nil
}

func (s *HTTPSessionService) do(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", "magma")
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, newError(Unavailable, err)
	}
	return resp, nil
}

// classify maps a non-success session server response to an AuthenticationError.
func classify(resp *http.Response) error {
	status := fmt.Errorf("session server answered %s", resp.Status)

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return newError(InvalidCredentials, status)
	case resp.StatusCode >= 500, resp.StatusCode == http.StatusTooManyRequests:
		return newError(Unavailable, status)
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if kind := gjson.GetBytes(raw, "error").String(); kind != "" {
		status = fmt.Errorf("%s: %s", kind, gjson.GetBytes(raw, "errorMessage").String())
		if strings.Contains(kind, "UserMigratedException") {
			return newError(UserMigrated, status)
		}
	}
	return newError(InvalidCredentials, status)
}

// ParseProfile decodes a session server profile document.
func ParseProfile(raw []byte) (*models.GameProfile, error) {
	if !gjson.ValidBytes(raw) {
		return nil, errors.New("profile is not valid JSON")
	}
	doc := gjson.ParseBytes(raw)

	id, err := codec.ParseUUID(doc.Get("id").String())
	if err != nil {
		return nil, fmt.Errorf("profile id: %w", err)
	}
	name := doc.Get("name").String()
	if name == "" {
		return nil, errors.New("profile has no name")
	}

	profile := &models.GameProfile{ID: id, Name: name}
	doc.Get("properties").ForEach(func(_, p gjson.Result) bool {
		profile.Properties = append(profile.Properties, models.Property{
			Name:      p.Get("name").String(),
			Value:     p.Get("value").String(),
			Signature: p.Get("signature").String(),
		})
		return true
	})
	return profile, nil
}
