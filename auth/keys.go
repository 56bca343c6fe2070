package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/skyezerfox/magma/constants"
)

const pemType = "RSA PRIVATE KEY"

func GenerateKey() (*rsa.PrivateKey, error) {
	return rsa.GenerateKey(rand.Reader, constants.KeySize)
}

// LoadOrGenerateKey reads a PEM encoded server key from path. When the file
// does not exist a new key is generated and written there. An empty path
// always yields a fresh key that is not persisted.
func LoadOrGenerateKey(path string) (*rsa.PrivateKey, error) {
	if path == "" {
		return GenerateKey()
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Debug().Str("path", path).Msg("Generating encryption key pair...")
		key, err := GenerateKey()
		if err != nil {
			return nil, err
		}
		block := &pem.Block{Type: pemType, Bytes: x509.MarshalPKCS1PrivateKey(key)}
		if err := os.WriteFile(path, pem.EncodeToMemory(block), 0o600); err != nil {
			return nil, fmt.Errorf("failed to write key file: %w", err)
		}
		return key, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}

	block, _ := pem.Decode(raw)
	if block == nil || block.Type != pemType {
		return nil, fmt.Errorf("%s does not contain an %s block", path, pemType)
	}
	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse key file: %w", err)
	}
	if key.N.BitLen() != constants.KeySize {
		return nil, fmt.Errorf("server key must be %d bits, got %d", constants.KeySize, key.N.BitLen())
	}
	return key, nil
}

// PublicKeyDER is the X.509 SubjectPublicKeyInfo encoding sent to clients.
func PublicKeyDER(key *rsa.PrivateKey) ([]byte, error) {
	return x509.MarshalPKIXPublicKey(&key.PublicKey)
}
