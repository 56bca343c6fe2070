package auth

import (
	"bytes"
	"context"
	"crypto/md5"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/skyezerfox/magma/models"
	"github.com/skyezerfox/magma/protocol"
)

const (
	verifyTokenLength = 4
	serverIDLength    = 16

	DefaultTimeout = 10 * time.Second
)

var (
	errTokenMismatch = errors.New("verify token does not match")
	errNoSession     = errors.New("session service has no join for this player")
)

// Coordinator runs the login side of the session handshake: it issues
// encryption requests, checks the client's answer and asks the session
// service whether the player really joined.
type Coordinator struct {
	key       *rsa.PrivateKey
	publicKey []byte
	serverID  string

	online  bool
	session SessionService
	timeout time.Duration
}

type CoordinatorOptions struct {
	Key        *rsa.PrivateKey
	OnlineMode bool
	Session    SessionService
	Timeout    time.Duration

	// ServerID is sent in the EncryptionRequest. A random one is generated
	// when empty.
	ServerID string
}

func NewCoordinator(opts CoordinatorOptions) (*Coordinator, error) {
	if opts.Key == nil {
		return nil, errors.New("coordinator needs a server key")
	}
	if opts.OnlineMode && opts.Session == nil {
		return nil, errors.New("online mode needs a session service")
	}

	der, err := PublicKeyDER(opts.Key)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal public key: %w", err)
	}

	serverID := opts.ServerID
	if serverID == "" {
		if serverID, err = RandString(serverIDLength); err != nil {
			return nil, err
		}
	}
	if len(serverID) > protocol.MaxServerIDLength {
		return nil, fmt.Errorf("server id %q is longer than %d characters", serverID, protocol.MaxServerIDLength)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Coordinator{
		key:       opts.Key,
		publicKey: der,
		serverID:  serverID,
		online:    opts.OnlineMode,
		session:   opts.Session,
		timeout:   timeout,
	}, nil
}

func (c *Coordinator) OnlineMode() bool {
	return c.online
}

func (c *Coordinator) ServerID() string {
	return c.serverID
}

// PublicKey is the DER encoded server public key.
func (c *Coordinator) PublicKey() []byte {
	return c.publicKey
}

// Attempt is the state of one login between LoginStart and the session answer.
type Attempt struct {
	Username    string
	VerifyToken []byte
}

// Begin starts an online login for username and returns the request to send.
func (c *Coordinator) Begin(username string) (*Attempt, *protocol.EncryptionRequest, error) {
	token := make([]byte, verifyTokenLength)
	if _, err := rand.Read(token); err != nil {
		return nil, nil, fmt.Errorf("failed to generate verify token: %w", err)
	}

	a := &Attempt{Username: username, VerifyToken: token}
	return a, &protocol.EncryptionRequest{
		ServerID:    c.serverID,
		PublicKey:   c.publicKey,
		VerifyToken: token,
	}, nil
}

// Verify decrypts the client's EncryptionResponse and checks the verify
// token. It returns the shared secret. A wrong token is InvalidCredentials;
// the session service is never consulted for it. The secret is still
// returned alongside that error when it decrypts, since the client already
// encrypts with it.
func (c *Coordinator) Verify(a *Attempt, resp *protocol.EncryptionResponse) ([]byte, error) {
	secret, err := rsa.DecryptPKCS1v15(rand.Reader, c.key, resp.SharedSecret)
	if err != nil {
		return nil, newError(InvalidCredentials, fmt.Errorf("failed to decrypt shared secret: %w", err))
	}
	if len(secret) != 16 {
		return nil, newError(InvalidCredentials, fmt.Errorf("shared secret has %d bytes, want 16", len(secret)))
	}

	token, err := rsa.DecryptPKCS1v15(rand.Reader, c.key, resp.VerifyToken)
	if err != nil {
		return secret, newError(InvalidCredentials, fmt.Errorf("failed to decrypt verify token: %w", err))
	}
	if !bytes.Equal(token, a.VerifyToken) {
		return secret, newError(InvalidCredentials, errTokenMismatch)
	}
	return secret, nil
}

// Result is the outcome of Authenticate.
type Result struct {
	Profile *models.GameProfile
	Err     error
}

// Authenticate asks the session service whether the attempt's player joined
// with secret. The call runs on its own goroutine and is bounded by the
// coordinator timeout and ctx, even when the service ignores ctx. The single
// result arrives on the returned channel, which never blocks the sender.
func (c *Coordinator) Authenticate(ctx context.Context, a *Attempt, secret []byte, ip string) <-chan Result {
	out := make(chan Result, 1)
	hash := AuthDigest(c.serverID, secret, c.publicKey)

	go func() {
		ctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		answer := make(chan Result, 1)
		go func() {
			log.Debug().Str("username", a.Username).Msg("Validating authentication with session service")
			profile, err := c.session.HasJoined(ctx, a.Username, hash, ip)
			answer <- Result{Profile: profile, Err: err}
		}()

		var res Result
		select {
		case res = <-answer:
		case <-ctx.Done():
			res = Result{Err: ctx.Err()}
		}

		switch {
		case res.Err != nil:
			if _, ok := KindOf(res.Err); !ok {
				res = Result{Err: newError(Unavailable, res.Err)}
			}
		case res.Profile == nil:
			res = Result{Err: newError(InvalidCredentials, errNoSession)}
		}
		out <- res
	}()

	return out
}

// OfflineProfile is the unsigned profile used when online mode is off.
func OfflineProfile(username string) *models.GameProfile {
	return &models.GameProfile{ID: OfflineUUID(username), Name: username}
}

// OfflineUUID is the version 3 UUID of MD5("OfflinePlayer:" + username).
func OfflineUUID(username string) uuid.UUID {
	sum := md5.Sum([]byte("OfflinePlayer:" + username))
	sum[6] = sum[6]&0x0f | 0x30
	sum[8] = sum[8]&0x3f | 0x80
	return uuid.UUID(sum)
}

const letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RandString returns n random alphanumeric characters.
func RandString(n int) (string, error) {
	out := make([]byte, n)
	max := big.NewInt(int64(len(letters)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = letters[idx.Int64()]
	}
	return string(out), nil
}
