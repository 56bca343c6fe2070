package server_test

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/skyezerfox/magma/codec"
	"github.com/skyezerfox/magma/connection"
	"github.com/skyezerfox/magma/constants"
	"github.com/skyezerfox/magma/protocol"
	"github.com/skyezerfox/magma/server"
)

type player struct {
	conn  net.Conn
	r     *protocol.FrameReader
	w     *protocol.FrameWriter
	reg   *protocol.Registry
	phase protocol.Phase
}

func dial(addr string, reg *protocol.Registry) *player {
	conn, err := net.Dial("tcp", addr)
	Expect(err).To(Succeed())
	Expect(conn.SetDeadline(time.Now().Add(5 * time.Second))).To(Succeed())
	return &player{
		conn:  conn,
		r:     protocol.NewFrameReader(conn),
		w:     protocol.NewFrameWriter(conn),
		reg:   reg,
		phase: protocol.Handshaking,
	}
}

func (p *player) send(pk protocol.Packet) {
	d, body, err := p.reg.Encode(protocol.Serverbound, pk)
	Expect(err).To(Succeed())
	Expect(p.w.WriteFrame(d.ID, body)).To(Succeed())
}

func (p *player) expect() protocol.Packet {
	frame, err := p.r.ReadFrame()
	Expect(err).To(Succeed())
	r := codec.NewReader(frame)
	id, err := r.ReadVarInt()
	Expect(err).To(Succeed())
	pk, _, err := p.reg.Decode(p.phase, protocol.Clientbound, id, r.ReadRest())
	Expect(err).To(Succeed())
	if _, ok := pk.(*protocol.LoginSuccess); ok {
		p.phase = protocol.Play
	}
	return pk
}

func (p *player) handshake(next int32) {
	p.send(&protocol.Handshake{
		ProtocolVersion: constants.MCProtocol,
		ServerAddress:   "localhost",
		ServerPort:      25565,
		NextState:       next,
	})
	if next == protocol.NextStateLogin {
		p.phase = protocol.Login
	} else {
		p.phase = protocol.Status
	}
}

func (p *player) login(name string) {
	p.handshake(protocol.NextStateLogin)
	p.send(&protocol.LoginStart{Name: name})
	Expect(p.expect()).To(BeAssignableToTypeOf(&protocol.LoginSuccess{}))
}

// chat returns the next chat line, skipping plugin messages.
func (p *player) chat() string {
	for {
		switch pk := p.expect().(type) {
		case *protocol.PluginMessage:
			continue
		case *protocol.ChatMessageClientbound:
			return pk.Message.Text
		default:
			Fail(fmt.Sprintf("unexpected %T", pk))
		}
	}
}

var _ = Describe("Server", func() {
	var (
		srv    *server.Server
		addr   string
		cancel context.CancelFunc
		done   chan error
	)

	BeforeEach(func() {
		manager := connection.NewManager()
		opts := connection.NewOptions(connection.Options{
			Manager:              manager,
			Target:               server.NewChatRelay(manager),
			MOTD:                 "test",
			MaxPlayers:           10,
			CompressionThreshold: -1,
		})
		srv = server.NewWithOptions("127.0.0.1:0", opts)

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).To(Succeed())
		addr = listener.Addr().String()

		var ctx context.Context
		ctx, cancel = context.WithCancel(context.Background())
		done = make(chan error, 1)
		go func() { done <- srv.Serve(ctx, listener) }()
	})

	AfterEach(func() {
		cancel()
		Eventually(done).Should(Receive(BeNil()))
		Expect(srv.Close()).To(Succeed())
	})

	It("answers status pings", func() {
		p := dial(addr, srv.Options().Registry)
		p.handshake(protocol.NextStateStatus)
		p.send(&protocol.Ping{Payload: 99})
		Expect(p.expect()).To(Equal(&protocol.Pong{Payload: 99}))
	})

	It("sends the server brand to joining players", func() {
		p := dial(addr, srv.Options().Registry)
		p.login("Notch")

		brand, ok := p.expect().(*protocol.PluginMessage)
		Expect(ok).To(BeTrue())
		Expect(brand.Channel).To(Equal("minecraft:brand"))
		name, err := codec.NewReader(brand.Data).ReadString(32767)
		Expect(err).To(Succeed())
		Expect(name).To(Equal(constants.ServerBrand))
	})

	It("relays chat between players", func() {
		notch := dial(addr, srv.Options().Registry)
		notch.login("Notch")
		Expect(notch.chat()).To(Equal("Notch joined the game"))

		jeb := dial(addr, srv.Options().Registry)
		jeb.login("jeb_")
		Expect(jeb.chat()).To(Equal("jeb_ joined the game"))
		Expect(notch.chat()).To(Equal("jeb_ joined the game"))
		Expect(srv.Manager().Online()).To(Equal(2))

		notch.send(&protocol.ChatMessage{Message: "hi"})
		Expect(notch.chat()).To(Equal("<Notch> hi"))
		Expect(jeb.chat()).To(Equal("<Notch> hi"))

		Expect(jeb.conn.Close()).To(Succeed())
		Expect(notch.chat()).To(Equal("jeb_ left the game"))
	})

	It("closes player connections on shutdown", func() {
		p := dial(addr, srv.Options().Registry)
		p.login("Notch")

		cancel()
		Eventually(done).Should(Receive(BeNil()))
		done <- nil

		for {
			if _, err := p.r.ReadFrame(); err != nil {
				break
			}
		}
	})
})

var _ = Describe("LoadFavicon", func() {
	It("encodes PNG files as data URIs", func() {
		dir, err := os.MkdirTemp("", "magma-favicon")
		Expect(err).To(Succeed())
		defer os.RemoveAll(dir)

		path := filepath.Join(dir, "server-icon.png")
		Expect(os.WriteFile(path, []byte("\x89PNG\r\n\x1a\n"), 0o644)).To(Succeed())

		uri, err := server.LoadFavicon(path)
		Expect(err).To(Succeed())
		Expect(uri).To(Equal("data:image/png;base64,iVBORw0KGgo="))
	})

	It("rejects other files", func() {
		dir, err := os.MkdirTemp("", "magma-favicon")
		Expect(err).To(Succeed())
		defer os.RemoveAll(dir)

		path := filepath.Join(dir, "server-icon.png")
		Expect(os.WriteFile(path, []byte("GIF89a.."), 0o644)).To(Succeed())

		_, err = server.LoadFavicon(path)
		Expect(err).To(HaveOccurred())
	})

	It("allows no favicon", func() {
		uri, err := server.LoadFavicon("")
		Expect(err).To(Succeed())
		Expect(uri).To(BeEmpty())
	})
})
