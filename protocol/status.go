package protocol

import "github.com/skyezerfox/magma/codec"

type (
	// StatusRequest asks for the server list JSON. It has no body.
	StatusRequest struct{}

	StatusResponse struct {
		JSON string
	}

	Ping struct {
		Payload int64
	}

	Pong struct {
		Payload int64
	}
)

func (p *StatusRequest) Decode(r *codec.Reader) error { return nil }
func (p *StatusRequest) Encode(w *codec.Writer) error { return nil }

func (p *StatusResponse) Decode(r *codec.Reader) (err error) {
	p.JSON, err = r.ReadString(MaxStatusJSONLength)
	return err
}

func (p *StatusResponse) Encode(w *codec.Writer) error {
	return w.WriteString(p.JSON, MaxStatusJSONLength)
}

func (p *Ping) Decode(r *codec.Reader) (err error) {
	p.Payload, err = r.ReadLong()
	return err
}

func (p *Ping) Encode(w *codec.Writer) error {
	w.WriteLong(p.Payload)
	return nil
}

func (p *Pong) Decode(r *codec.Reader) (err error) {
	p.Payload, err = r.ReadLong()
	return err
}

func (p *Pong) Encode(w *codec.Writer) error {
	w.WriteLong(p.Payload)
	return nil
}
