package protocol_test

import (
	"errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/skyezerfox/magma/protocol"
)

var _ = Describe("PhaseMachine", func() {
	It("starts in Handshaking", func() {
		Expect(protocol.NewPhaseMachine().Current()).To(Equal(protocol.Handshaking))
	})

	It("branches from Handshaking to Status or Login only", func() {
		Expect(protocol.CanTransition(protocol.Handshaking, protocol.Status)).To(BeTrue())
		Expect(protocol.CanTransition(protocol.Handshaking, protocol.Login)).To(BeTrue())
		Expect(protocol.CanTransition(protocol.Handshaking, protocol.Play)).To(BeFalse())
	})

	It("only reaches Play from Login", func() {
		Expect(protocol.CanTransition(protocol.Login, protocol.Play)).To(BeTrue())
		Expect(protocol.CanTransition(protocol.Status, protocol.Play)).To(BeFalse())
		Expect(protocol.CanTransition(protocol.Play, protocol.Login)).To(BeFalse())
	})

	It("treats Status as a dead end", func() {
		Expect(protocol.CanTransition(protocol.Status, protocol.Login)).To(BeFalse())
		Expect(protocol.CanTransition(protocol.Status, protocol.Closed)).To(BeTrue())
	})

	It("can close from any phase and never leaves Closed", func() {
		for _, p := range []protocol.Phase{protocol.Handshaking, protocol.Status, protocol.Login, protocol.Play} {
			Expect(protocol.CanTransition(p, protocol.Closed)).To(BeTrue())
			Expect(protocol.CanTransition(protocol.Closed, p)).To(BeFalse())
		}
	})

	It("rejects illegal transitions", func() {
		m := protocol.NewPhaseMachine()
		err := m.Transition(protocol.Play)
		Expect(errors.Is(err, protocol.ErrIllegalTransition)).To(BeTrue())
		Expect(m.Current()).To(Equal(protocol.Handshaking))
	})

	It("closes once", func() {
		m := protocol.NewPhaseMachine()
		Expect(m.Close()).To(BeTrue())
		Expect(m.Close()).To(BeFalse())
		Expect(m.Current()).To(Equal(protocol.Closed))
	})

	Describe("Admit()", func() {
		r := protocol.NewStandardRegistry(protocol.DefaultLimits())

		It("rejects a Play packet while in Login and accepts it in Play", func() {
			chat, err := r.DescriptorOf(protocol.Serverbound, &protocol.ChatMessage{})
			Expect(err).To(Succeed())

			m := protocol.NewPhaseMachine()
			Expect(m.Transition(protocol.Login)).To(Succeed())

			err = m.Admit(chat)
			var perr *protocol.ProtocolError
			Expect(errors.As(err, &perr)).To(BeTrue())
			Expect(perr.Err).To(Equal(protocol.ErrUnexpectedPacket))

			Expect(m.Transition(protocol.Play)).To(Succeed())
			Expect(m.Admit(chat)).To(Succeed())
		})

		It("never admits clientbound descriptors", func() {
			pong, err := r.DescriptorOf(protocol.Clientbound, &protocol.Pong{})
			Expect(err).To(Succeed())

			m := protocol.NewPhaseMachine()
			Expect(m.Transition(protocol.Status)).To(Succeed())
			Expect(m.Admit(pong)).NotTo(Succeed())
		})
	})
})
