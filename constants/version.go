// Package constants holds the protocol version this server speaks.
package constants

const (
	MCVersion  = "1.16.3"
	MCProtocol = 753

	// KeySize is the RSA key size clients expect in the EncryptionRequest.
	KeySize = 1024

	ServerBrand = "magma"
	DefaultPort = 25565
)
