package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/Tnze/go-mc/net/CFB8"
)

// NewSymmetricEncryption returns the AES/CFB8 streams for a shared secret.
// The secret doubles as key and IV.
func NewSymmetricEncryption(sharedSecret []byte) (encrypt, decrypt cipher.Stream, err error) {
	b, err := aes.NewCipher(sharedSecret)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to create cipher: %w", err)
	}
	return CFB8.NewCFB8Encrypt(b, sharedSecret), CFB8.NewCFB8Decrypt(b, sharedSecret), nil
}
