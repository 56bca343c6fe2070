package protocol

import (
	"github.com/Tnze/go-mc/chat"
	"github.com/google/uuid"

	"github.com/skyezerfox/magma/codec"
)

// Chat positions of ChatMessageClientbound.
const (
	ChatPositionChat   int8 = 0
	ChatPositionSystem int8 = 1
	ChatPositionHotbar int8 = 2
)

type (
	// KeepAlive is used in both directions; the client echoes the id.
	KeepAlive struct {
		ID int64
	}

	// PluginMessage is used in both directions.
	PluginMessage struct {
		Channel string
		Data    []byte
	}

	ChatMessage struct {
		Message string
	}

	ClientSettings struct {
		Locale             string
		ViewDistance       int8
		ChatMode           int32
		ChatColors         bool
		DisplayedSkinParts uint8
		MainHand           int32
	}

	ChatMessageClientbound struct {
		Message  chat.Message
		Position int8
		Sender   uuid.UUID
	}

	Disconnect struct {
		Reason chat.Message
	}
)

func (p *KeepAlive) Decode(r *codec.Reader) (err error) {
	p.ID, err = r.ReadLong()
	return err
}

func (p *KeepAlive) Encode(w *codec.Writer) error {
	w.WriteLong(p.ID)
	return nil
}

func (p *PluginMessage) Decode(r *codec.Reader) (err error) {
	if p.Channel, err = r.ReadString(MaxChannelLength); err != nil {
		return err
	}
	p.Data = r.ReadRest()
	return nil
}

func (p *PluginMessage) Encode(w *codec.Writer) error {
	if err := w.WriteString(p.Channel, MaxChannelLength); err != nil {
		return err
	}
	w.WriteRaw(p.Data)
	return nil
}

func (p *ChatMessage) Decode(r *codec.Reader) (err error) {
	p.Message, err = r.ReadString(MaxChatLength)
	return err
}

func (p *ChatMessage) Encode(w *codec.Writer) error {
	return w.WriteString(p.Message, MaxChatLength)
}

func (p *ClientSettings) Decode(r *codec.Reader) (err error) {
	if p.Locale, err = r.ReadString(MaxLocaleLength); err != nil {
		return err
	}
	if p.ViewDistance, err = r.ReadInt8(); err != nil {
		return err
	}
	if p.ChatMode, err = r.ReadVarInt(); err != nil {
		return err
	}
	if p.ChatColors, err = r.ReadBool(); err != nil {
		return err
	}
	if p.DisplayedSkinParts, err = r.ReadUnsignedByte(); err != nil {
		return err
	}
	p.MainHand, err = r.ReadVarInt()
	return err
}

func (p *ClientSettings) Encode(w *codec.Writer) error {
	if err := w.WriteString(p.Locale, MaxLocaleLength); err != nil {
		return err
	}
	w.WriteInt8(p.ViewDistance)
	w.WriteVarInt(p.ChatMode)
	w.WriteBool(p.ChatColors)
	w.WriteUnsignedByte(p.DisplayedSkinParts)
	w.WriteVarInt(p.MainHand)
	return nil
}

func (p *ChatMessageClientbound) Decode(r *codec.Reader) (err error) {
	if p.Message, err = readChat(r); err != nil {
		return err
	}
	if p.Position, err = r.ReadInt8(); err != nil {
		return err
	}
	p.Sender, err = r.ReadUUID()
	return err
}

func (p *ChatMessageClientbound) Encode(w *codec.Writer) error {
	if err := writeChat(w, p.Message); err != nil {
		return err
	}
	w.WriteInt8(p.Position)
	w.WriteUUID(p.Sender)
	return nil
}

func (p *Disconnect) Decode(r *codec.Reader) (err error) {
	p.Reason, err = readChat(r)
	return err
}

func (p *Disconnect) Encode(w *codec.Writer) error {
	return writeChat(w, p.Reason)
}
