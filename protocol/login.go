package protocol

import (
	"github.com/Tnze/go-mc/chat"
	"github.com/google/uuid"

	"github.com/skyezerfox/magma/codec"
)

type (
	// LoginStart carries the username the client wants to log in with.
	LoginStart struct {
		Name string

		maxName int
	}

	EncryptionResponse struct {
		SharedSecret []byte
		VerifyToken  []byte
	}

	LoginDisconnect struct {
		Reason chat.Message
	}

	EncryptionRequest struct {
		ServerID    string
		PublicKey   []byte
		VerifyToken []byte
	}

	LoginSuccess struct {
		UUID     uuid.UUID
		Username string
	}

	SetCompression struct {
		Threshold int32
	}
)

func (p *LoginStart) limit() int {
	if p.maxName > 0 {
		return p.maxName
	}
	return MaxNameLength
}

func (p *LoginStart) Decode(r *codec.Reader) (err error) {
	p.Name, err = r.ReadString(p.limit())
	return err
}

func (p *LoginStart) Encode(w *codec.Writer) error {
	return w.WriteString(p.Name, p.limit())
}

func (p *EncryptionResponse) Decode(r *codec.Reader) (err error) {
	if p.SharedSecret, err = r.ReadByteArray(MaxSecretLength); err != nil {
		return err
	}
	p.VerifyToken, err = r.ReadByteArray(MaxSecretLength)
	return err
}

func (p *EncryptionResponse) Encode(w *codec.Writer) error {
	w.WriteByteArray(p.SharedSecret)
	w.WriteByteArray(p.VerifyToken)
	return nil
}

func (p *LoginDisconnect) Decode(r *codec.Reader) (err error) {
	p.Reason, err = readChat(r)
	return err
}

func (p *LoginDisconnect) Encode(w *codec.Writer) error {
	return writeChat(w, p.Reason)
}

func (p *EncryptionRequest) Decode(r *codec.Reader) (err error) {
	if p.ServerID, err = r.ReadString(MaxServerIDLength); err != nil {
		return err
	}
	if p.PublicKey, err = r.ReadByteArray(MaxKeyLength); err != nil {
		return err
	}
	p.VerifyToken, err = r.ReadByteArray(MaxSecretLength)
	return err
}

func (p *EncryptionRequest) Encode(w *codec.Writer) error {
	if err := w.WriteString(p.ServerID, MaxServerIDLength); err != nil {
		return err
	}
	w.WriteByteArray(p.PublicKey)
	w.WriteByteArray(p.VerifyToken)
	return nil
}

func (p *LoginSuccess) Decode(r *codec.Reader) (err error) {
	if p.UUID, err = r.ReadUUID(); err != nil {
		return err
	}
	p.Username, err = r.ReadString(MaxNameLength)
	return err
}

func (p *LoginSuccess) Encode(w *codec.Writer) error {
	w.WriteUUID(p.UUID)
	return w.WriteString(p.Username, MaxNameLength)
}

func (p *SetCompression) Decode(r *codec.Reader) (err error) {
	p.Threshold, err = r.ReadVarInt()
	return err
}

func (p *SetCompression) Encode(w *codec.Writer) error {
	w.WriteVarInt(p.Threshold)
	return nil
}
