package auth

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
)

// AuthDigest computes the server hash sent to the session service: the SHA-1
// of serverID, the shared secret and the DER public key, printed as a signed
// two's complement hex number without leading zeros.
func AuthDigest(serverID string, sharedSecret, publicKey []byte) string {
	h := sha1.New()
	h.Write([]byte(serverID))
	h.Write(sharedSecret)
	h.Write(publicKey)
	hash := h.Sum(nil)

	negative := hash[0]&0x80 != 0
	if negative {
		twosComplement(hash)
	}

	digest := strings.TrimLeft(hex.EncodeToString(hash), "0")
	if negative {
		digest = "-" + digest
	}
	return digest
}

func twosComplement(p []byte) {
	carry := true
	for i := len(p) - 1; i >= 0; i-- {
		p[i] = ^p[i]
		if carry {
			carry = p[i] == 0xff
			p[i]++
		}
	}
}
