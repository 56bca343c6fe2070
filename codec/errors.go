// Package codec reads and writes the primitive types of the wire protocol:
// varints, length-prefixed strings, UUIDs and big-endian fixed width numbers.
//
// Every read is bounds-checked against the frame it was created from, so a
// truncated or hostile frame produces an error and never a panic.
package codec

import "errors"

var (
	ErrMalformedVarInt       = errors.New("varint is too big")
	ErrUnexpectedEndOfPacket = errors.New("unexpected end of packet")
	ErrStringTooLong         = errors.New("string exceeds maximum length")
	ErrInvalidString         = errors.New("string is not valid UTF-8")
	ErrNegativeLength        = errors.New("negative length prefix")
	ErrByteArrayTooLong      = errors.New("byte array exceeds maximum length")
)
