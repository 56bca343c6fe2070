package protocol

import (
	"bufio"
	"bytes"
	"compress/zlib"
	"crypto/cipher"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/skyezerfox/magma/codec"
)

const (
	// MaxFrameLength is the largest length a 3 byte varint prefix can carry.
	MaxFrameLength = 1<<21 - 1

	// MaxUncompressedLength bounds the inflated size of a compressed frame.
	MaxUncompressedLength = 1 << 23

	// CompressionDisabled is the threshold value that turns compression off.
	CompressionDisabled = -1
)

// FrameReader splits a byte stream into frames, undoing encryption and
// compression. ReadFrame returns the packet id varint followed by the body.
//
// ReadFrame is called from one goroutine. Decryption must only be enabled
// between two ReadFrame calls; the compression threshold may change at any time.
type FrameReader struct {
	mu        sync.Mutex
	buffered  *bufio.Reader
	in        io.Reader
	threshold int

	one [1]byte
}

func NewFrameReader(r io.Reader) *FrameReader {
	b := bufio.NewReader(r)
	return &FrameReader{
		buffered:  b,
		in:        b,
		threshold: CompressionDisabled,
	}
}

// EnableDecryption decrypts every byte read from now on with s. Bytes already
// buffered but not yet consumed are decrypted too.
func (f *FrameReader) EnableDecryption(s cipher.Stream) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.in = cipher.StreamReader{S: s, R: f.buffered}
}

func (f *FrameReader) SetCompressionThreshold(threshold int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.threshold = threshold
}

func (f *FrameReader) compressionThreshold() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.threshold
}

func (f *FrameReader) source() io.Reader {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.in
}

type byteReader struct {
	r   io.Reader
	buf *[1]byte
}

func (b byteReader) ReadByte() (byte, error) {
	if _, err := io.ReadFull(b.r, b.buf[:]); err != nil {
		return 0, err
	}
	return b.buf[0], nil
}

// ReadFrame reads one frame. A clean end of stream before the first byte of a
// frame is returned as io.EOF; everything else that goes wrong is a FrameError.
func (f *FrameReader) ReadFrame() ([]byte, error) {
	in := f.source()

	length, err := codec.ReadVarIntFrom(byteReader{r: in, buf: &f.one})
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		if errors.Is(err, codec.ErrMalformedVarInt) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, &FrameError{Err: err}
		}
		return nil, err
	}
	if length <= 0 {
		return nil, &FrameError{Err: fmt.Errorf("frame length %d: %w", length, codec.ErrNegativeLength)}
	}
	if length > MaxFrameLength {
		return nil, &FrameError{Err: fmt.Errorf("frame length %d: %w", length, ErrFrameTooLarge)}
	}

	buf := make([]byte, length)
	if _, err := io.ReadFull(in, buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, &FrameError{Err: fmt.Errorf("truncated frame: %w", codec.ErrUnexpectedEndOfPacket)}
		}
		return nil, err
	}

	threshold := f.compressionThreshold()
	if threshold < 0 {
		return buf, nil
	}

	r := codec.NewReader(buf)
	dataLength, err := r.ReadVarInt()
	if err != nil {
		return nil, &FrameError{Err: err}
	}
	if dataLength == 0 {
		return r.ReadRest(), nil
	}
	if dataLength < 0 || int(dataLength) < threshold {
		return nil, &FrameError{Err: fmt.Errorf("%w: size %d below threshold %d", ErrBadCompression, dataLength, threshold)}
	}
	if dataLength > MaxUncompressedLength {
		return nil, &FrameError{Err: fmt.Errorf("%w: uncompressed size %d", ErrFrameTooLarge, dataLength)}
	}

	zr, err := zlib.NewReader(bytes.NewReader(r.ReadRest()))
	if err != nil {
		return nil, &FrameError{Err: fmt.Errorf("%w: %v", ErrBadCompression, err)}
	}
	defer zr.Close()

	out := make([]byte, dataLength)
	if _, err := io.ReadFull(zr, out); err != nil {
		return nil, &FrameError{Err: fmt.Errorf("%w: %v", ErrBadCompression, err)}
	}
	return out, nil
}

// FrameWriter is the mirror of FrameReader. It is not safe for concurrent use;
// a connection owns exactly one writer goroutine.
type FrameWriter struct {
	w         io.Writer
	stream    cipher.Stream
	threshold int

	zbuf bytes.Buffer
	zw   *zlib.Writer
}

func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{w: w, threshold: CompressionDisabled}
}

func (f *FrameWriter) EnableEncryption(s cipher.Stream) {
	f.stream = s
}

func (f *FrameWriter) SetCompressionThreshold(threshold int) {
	f.threshold = threshold
}

// WriteFrame frames id and body and writes them with a single Write call.
func (f *FrameWriter) WriteFrame(id int32, body []byte) error {
	payload := make([]byte, 0, codec.MaxVarIntLen+len(body))
	payload = codec.AppendVarInt(payload, id)
	payload = append(payload, body...)

	inner := payload
	if f.threshold >= 0 {
		var err error
		if inner, err = f.compress(payload); err != nil {
			return err
		}
	}
	if len(inner) > MaxFrameLength {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(inner))
	}

	frame := make([]byte, 0, codec.MaxVarIntLen+len(inner))
	frame = codec.AppendVarInt(frame, int32(len(inner)))
	frame = append(frame, inner...)

	if f.stream != nil {
		f.stream.XORKeyStream(frame, frame)
	}

	_, err := f.w.Write(frame)
	return err
}

func (f *FrameWriter) compress(payload []byte) ([]byte, error) {
	if len(payload) < f.threshold {
		out := make([]byte, 0, 1+len(payload))
		out = append(out, 0)
		return append(out, payload...), nil
	}

	f.zbuf.Reset()
	if f.zw == nil {
		f.zw = zlib.NewWriter(&f.zbuf)
	} else {
		f.zw.Reset(&f.zbuf)
	}
	if _, err := f.zw.Write(payload); err != nil {
		return nil, err
	}
	if err := f.zw.Close(); err != nil {
		return nil, err
	}

	out := make([]byte, 0, codec.MaxVarIntLen+f.zbuf.Len())
	out = codec.AppendVarInt(out, int32(len(payload)))
	return append(out, f.zbuf.Bytes()...), nil
}
