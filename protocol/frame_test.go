package protocol_test

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"io"

	"github.com/Tnze/go-mc/net/CFB8"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/skyezerfox/magma/codec"
	"github.com/skyezerfox/magma/protocol"
)

func streams(secret []byte) (enc, dec cipher.Stream) {
	b, err := aes.NewCipher(secret)
	Expect(err).To(Succeed())
	return CFB8.NewCFB8Encrypt(b, secret), CFB8.NewCFB8Decrypt(b, secret)
}

var _ = Describe("Frames", func() {
	var (
		wire *bytes.Buffer
		fw   *protocol.FrameWriter
		fr   *protocol.FrameReader
	)

	BeforeEach(func() {
		wire = &bytes.Buffer{}
		fw = protocol.NewFrameWriter(wire)
		fr = protocol.NewFrameReader(wire)
	})

	readFrame := func() (int32, []byte) {
		frame, err := fr.ReadFrame()
		Expect(err).To(Succeed())
		r := codec.NewReader(frame)
		id, err := r.ReadVarInt()
		Expect(err).To(Succeed())
		return id, r.ReadRest()
	}

	It("writes a length prefixed frame", func() {
		Expect(fw.WriteFrame(0x01, []byte{0xAA, 0xBB})).To(Succeed())
		Expect(wire.Bytes()).To(Equal([]byte{0x03, 0x01, 0xAA, 0xBB}))

		id, body := readFrame()
		Expect(id).To(Equal(int32(1)))
		Expect(body).To(Equal([]byte{0xAA, 0xBB}))
	})

	It("returns io.EOF on a clean end of stream", func() {
		_, err := fr.ReadFrame()
		Expect(err).To(Equal(io.EOF))
	})

	It("reports a truncated frame", func() {
		wire.Write([]byte{0x05, 0x00, 0x01})
		_, err := fr.ReadFrame()

		var ferr *protocol.FrameError
		Expect(errors.As(err, &ferr)).To(BeTrue())
	})

	It("rejects a length prefix longer than five bytes", func() {
		wire.Write([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01})
		_, err := fr.ReadFrame()
		Expect(errors.Is(err, codec.ErrMalformedVarInt)).To(BeTrue())
	})

	It("rejects frames longer than the maximum", func() {
		wire.Write(codec.AppendVarInt(nil, protocol.MaxFrameLength+1))
		_, err := fr.ReadFrame()
		Expect(errors.Is(err, protocol.ErrFrameTooLarge)).To(BeTrue())
	})

	Context("with compression", func() {
		BeforeEach(func() {
			fw.SetCompressionThreshold(64)
			fr.SetCompressionThreshold(64)
		})

		It("leaves small packets uncompressed", func() {
			Expect(fw.WriteFrame(0x10, []byte{1, 2, 3})).To(Succeed())
			Expect(wire.Bytes()).To(Equal([]byte{0x05, 0x00, 0x10, 1, 2, 3}))

			id, body := readFrame()
			Expect(id).To(Equal(int32(0x10)))
			Expect(body).To(Equal([]byte{1, 2, 3}))
		})

		It("round trips packets at or above the threshold", func() {
			body := bytes.Repeat([]byte("magma"), 100)
			Expect(fw.WriteFrame(0x03, body)).To(Succeed())
			Expect(wire.Len()).To(BeNumerically("<", len(body)))

			id, got := readFrame()
			Expect(id).To(Equal(int32(0x03)))
			Expect(got).To(Equal(body))
		})

		It("rejects a compressed frame that claims to be below the threshold", func() {
			payload := codec.AppendVarInt(nil, 10)
			payload = append(payload, 0x78, 0x9c)
			wire.Write(codec.AppendVarInt(nil, int32(len(payload))))
			wire.Write(payload)

			_, err := fr.ReadFrame()
			Expect(errors.Is(err, protocol.ErrBadCompression)).To(BeTrue())
		})
	})

	Context("with encryption", func() {
		secret := []byte("0123456789abcdef")

		It("round trips frames written after the switch", func() {
			Expect(fw.WriteFrame(0x00, []byte("plain"))).To(Succeed())

			enc, _ := streams(secret)
			fw.EnableEncryption(enc)
			fw.SetCompressionThreshold(0)
			Expect(fw.WriteFrame(0x02, []byte("secret"))).To(Succeed())
			Expect(wire.String()).NotTo(ContainSubstring("secret"))

			id, body := readFrame()
			Expect(id).To(Equal(int32(0)))
			Expect(body).To(Equal([]byte("plain")))

			_, dec := streams(secret)
			fr.EnableDecryption(dec)
			fr.SetCompressionThreshold(0)

			id, body = readFrame()
			Expect(id).To(Equal(int32(2)))
			Expect(body).To(Equal([]byte("secret")))
		})
	})
})
