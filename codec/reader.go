package codec

import (
	"encoding/binary"
	"math"
	"unicode/utf8"
)

// Reader is a cursor over a single frame body.
type Reader struct {
	buf []byte
	off int
}

func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.off
}

func (r *Reader) next(n int) ([]byte, error) {
	if n < 0 {
		return nil, ErrNegativeLength
	}
	if r.Remaining() < n {
		return nil, ErrUnexpectedEndOfPacket
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadUnsignedByte()
	return b != 0, err
}

func (r *Reader) ReadInt8() (int8, error) {
	b, err := r.ReadUnsignedByte()
	return int8(b), err
}

func (r *Reader) ReadUnsignedByte() (uint8, error) {
	b, err := r.next(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *Reader) ReadShort() (int16, error) {
	v, err := r.ReadUnsignedShort()
	return int16(v), err
}

func (r *Reader) ReadUnsignedShort() (uint16, error) {
	b, err := r.next(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

func (r *Reader) ReadInt() (int32, error) {
	b, err := r.next(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(b)), nil
}

func (r *Reader) ReadLong() (int64, error) {
	b, err := r.next(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}

func (r *Reader) ReadFloat() (float32, error) {
	b, err := r.next(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.BigEndian.Uint32(b)), nil
}

func (r *Reader) ReadDouble() (float64, error) {
	b, err := r.next(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
}

// ReadString reads a varint length-prefixed UTF-8 string of at most max
// characters. The byte length is checked before anything is copied.
func (r *Reader) ReadString(max int) (string, error) {
	n, err := r.ReadVarInt()
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", ErrNegativeLength
	}
	if int(n) > max*4 {
		return "", ErrStringTooLong
	}
	b, err := r.next(int(n))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", ErrInvalidString
	}
	if utf8.RuneCount(b) > max {
		return "", ErrStringTooLong
	}
	return string(b), nil
}

// ReadByteArray reads a varint length-prefixed byte array of at most max bytes.
func (r *Reader) ReadByteArray(max int) ([]byte, error) {
	n, err := r.ReadVarInt()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, ErrNegativeLength
	}
	if int(n) > max {
		return nil, ErrByteArrayTooLong
	}
	b, err := r.next(int(n))
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), b...), nil
}

// ReadRest consumes everything left in the frame.
func (r *Reader) ReadRest() []byte {
	b := append([]byte(nil), r.buf[r.off:]...)
	r.off = len(r.buf)
	return b
}
