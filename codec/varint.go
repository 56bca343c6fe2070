package codec

import "io"

const (
	MaxVarIntLen  = 5
	MaxVarLongLen = 10
)

// AppendVarInt appends the varint encoding of v to b. Negative values are
// encoded as their unsigned 32 bit form and always take 5 bytes.
func AppendVarInt(b []byte, v int32) []byte {
	u := uint32(v)
	for u >= 0x80 {
		b = append(b, byte(u)|0x80)
		u >>= 7
	}
	return append(b, byte(u))
}

// AppendVarLong is AppendVarInt for 64 bit values.
func AppendVarLong(b []byte, v int64) []byte {
	u := uint64(v)
	for u >= 0x80 {
		b = append(b, byte(u)|0x80)
		u >>= 7
	}
	return append(b, byte(u))
}

// VarIntSize returns the number of bytes AppendVarInt would write for v.
func VarIntSize(v int32) int {
	u := uint32(v)
	n := 1
	for u >= 0x80 {
		u >>= 7
		n++
	}
	return n
}

// ReadVarIntFrom reads a varint one byte at a time. It is used for the frame
// length prefix, where the size of the frame is not known yet.
func ReadVarIntFrom(r io.ByteReader) (int32, error) {
	var v uint32
	for i := 0; i < MaxVarIntLen; i++ {
		b, err := r.ReadByte()
		if err != nil {
			if i > 0 && err == io.EOF {
				return 0, io.ErrUnexpectedEOF
			}
			return 0, err
		}
		v |= uint32(b&0x7F) << (7 * i)
		if b&0x80 == 0 {
			return int32(v), nil
		}
	}
	return 0, ErrMalformedVarInt
}

// ReadVarInt decodes a varint from the cursor.
func (r *Reader) ReadVarInt() (int32, error) {
	var v uint32
	for i := 0; i < MaxVarIntLen; i++ {
		b, err := r.ReadUnsignedByte()
		if err != nil {
			return 0, err
		}
		v |= uint32(b&0x7F) << (7 * i)
		if b&0x80 == 0 {
			return int32(v), nil
		}
	}
	return 0, ErrMalformedVarInt
}

// ReadVarLong decodes a varlong from the cursor.
func (r *Reader) ReadVarLong() (int64, error) {
	var v uint64
	for i := 0; i < MaxVarLongLen; i++ {
		b, err := r.ReadUnsignedByte()
		if err != nil {
			return 0, err
		}
		v |= uint64(b&0x7F) << (7 * i)
		if b&0x80 == 0 {
			return int64(v), nil
		}
	}
	return 0, ErrMalformedVarInt
}

func (w *Writer) WriteVarInt(v int32) {
	w.buf = AppendVarInt(w.buf, v)
}

func (w *Writer) WriteVarLong(v int64) {
	w.buf = AppendVarLong(w.buf, v)
}
