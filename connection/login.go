package connection

import (
	"context"
	"time"

	"github.com/skyezerfox/magma/auth"
	"github.com/skyezerfox/magma/models"
	"github.com/skyezerfox/magma/protocol"
)

const profileStoreTimeout = 5 * time.Second

func (c *Connection) unexpected(d string) error {
	return &protocol.ProtocolError{
		Err:   protocol.ErrUnexpectedPacket,
		Phase: protocol.Login,
		Msg:   d,
	}
}

// loginPending reports whether a login has already progressed past LoginStart.
func (c *Connection) loginPending() bool {
	return c.attempt != nil || c.authResult != nil || c.Profile() != nil
}

func (c *Connection) HandleLoginStart(p *protocol.LoginStart) error {
	if c.loginPending() {
		return c.unexpected("duplicate LoginStart")
	}
	c.log = c.log.With().Str("username", p.Name).Logger()

	if c.opts.Limiter != nil && !c.opts.Limiter.Allow(c.RemoteIP()) {
		c.log.Warn().Msg("Login rate limit exceeded")
		c.Disconnect("You are logging in too fast, try again later")
		return errClosing
	}

	coord := c.opts.Coordinator
	if coord == nil || !coord.OnlineMode() {
		c.log.Info().Msg("Got offline login request")
		return c.completeLogin(auth.OfflineProfile(p.Name))
	}

	c.log.Info().Msg("Got login request")
	attempt, req, err := coord.Begin(p.Name)
	if err != nil {
		return err
	}
	c.attempt = attempt
	return c.Send(req)
}

func (c *Connection) HandleEncryptionResponse(p *protocol.EncryptionResponse) error {
	if c.attempt == nil || c.authResult != nil {
		return c.unexpected("EncryptionResponse without a pending request")
	}

	secret, verifyErr := c.opts.Coordinator.Verify(c.attempt, p)
	if secret == nil {
		return verifyErr
	}

	encrypt, decrypt, err := auth.NewSymmetricEncryption(secret)
	if err != nil {
		return &auth.AuthenticationError{Kind: auth.InvalidCredentials, Err: err}
	}
	// The client encrypts everything after its EncryptionResponse, so both
	// directions switch now, before any disconnect for a bad token and
	// before the session check.
	c.reader.EnableDecryption(decrypt)
	if err := c.enqueue(outbound{apply: func(w *protocol.FrameWriter) { w.EnableEncryption(encrypt) }}); err != nil {
		return err
	}
	if verifyErr != nil {
		return verifyErr
	}

	c.authResult = c.opts.Coordinator.Authenticate(c.ctx, c.attempt, secret, c.RemoteIP())
	return nil
}

func (c *Connection) finishLogin(res auth.Result) error {
	if res.Err != nil {
		return res.Err
	}
	if res.Profile == nil {
		return &auth.AuthenticationError{Kind: auth.InvalidCredentials}
	}
	return c.completeLogin(res.Profile)
}

// completeLogin enables compression, confirms the login and moves to Play.
func (c *Connection) completeLogin(profile *models.GameProfile) error {
	c.attempt = nil

	if threshold := c.opts.CompressionThreshold; threshold >= 0 {
		// The client may answer as soon as it sees SetCompression.
		c.reader.SetCompressionThreshold(threshold)
		err := c.enqueue(outbound{
			packet: &protocol.SetCompression{Threshold: int32(threshold)},
			apply:  func(w *protocol.FrameWriter) { w.SetCompressionThreshold(threshold) },
		})
		if err != nil {
			return err
		}
	}

	if err := c.Send(&protocol.LoginSuccess{UUID: profile.ID, Username: profile.Name}); err != nil {
		return err
	}

	c.profile.Store(profile)
	if err := c.phase.Transition(protocol.Play); err != nil {
		return err
	}
	c.log = c.log.With().Str("username", profile.Name).Logger()
	c.log.Info().Str("id", profile.ID.String()).Msg("Login successful")

	if previous := c.opts.Manager.AddPlayer(c); previous != nil {
		previous.log.Info().Msg("Replaced by a newer login")
		previous.Disconnect("You logged in from another location")
	}

	if c.opts.Profiles != nil {
		ctx, cancel := context.WithTimeout(c.ctx, profileStoreTimeout)
		err := c.opts.Profiles.Put(ctx, profile)
		cancel()
		if err != nil {
			c.log.Warn().Err(err).Msg("Failed to store profile")
		}
	}

	c.keepAlive = keepAliveState{}
	c.opts.Target.Joined(c)
	return nil
}
