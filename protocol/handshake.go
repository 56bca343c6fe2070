package protocol

import "github.com/skyezerfox/magma/codec"

// Handshake is the single packet of the Handshaking phase. NextState picks
// Status (1) or Login (2).
type Handshake struct {
	ProtocolVersion int32
	ServerAddress   string
	ServerPort      uint16
	NextState       int32
}

func (p *Handshake) Decode(r *codec.Reader) (err error) {
	if p.ProtocolVersion, err = r.ReadVarInt(); err != nil {
		return err
	}
	if p.ServerAddress, err = r.ReadString(MaxServerAddressLength); err != nil {
		return err
	}
	if p.ServerPort, err = r.ReadUnsignedShort(); err != nil {
		return err
	}
	p.NextState, err = r.ReadVarInt()
	return err
}

func (p *Handshake) Encode(w *codec.Writer) error {
	w.WriteVarInt(p.ProtocolVersion)
	if err := w.WriteString(p.ServerAddress, MaxServerAddressLength); err != nil {
		return err
	}
	w.WriteUnsignedShort(p.ServerPort)
	w.WriteVarInt(p.NextState)
	return nil
}
