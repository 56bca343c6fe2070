package protocol

import (
	"fmt"
	"reflect"

	"github.com/skyezerfox/magma/codec"
)

// Descriptor describes one registered packet type.
type Descriptor struct {
	Phase     Phase
	Direction Direction
	ID        int32
	Name      string

	// SizeHint is the expected encoded body size, used to presize buffers.
	SizeHint int

	New func() Packet
}

type key struct {
	phase     Phase
	direction Direction
	id        int32
}

type typeKey struct {
	t         reflect.Type
	direction Direction
}

// Registry maps (phase, direction, id) to packet descriptors. It is filled
// once at startup and sealed; after that it is read-only and safe for
// concurrent use without locking.
type Registry struct {
	byKey  map[key]*Descriptor
	byType map[typeKey]*Descriptor
	sealed bool
}

func NewRegistry() *Registry {
	return &Registry{
		byKey:  make(map[key]*Descriptor),
		byType: make(map[typeKey]*Descriptor),
	}
}

// Register adds a packet type. A duplicate (phase, direction, id) key is a
// configuration error.
func (r *Registry) Register(d Descriptor) error {
	if r.sealed {
		return ErrRegistrySealed
	}
	if d.New == nil {
		return fmt.Errorf("packet %s has no factory", d.Name)
	}

	k := key{d.Phase, d.Direction, d.ID}
	if existing, ok := r.byKey[k]; ok {
		return fmt.Errorf("%w: %s and %s share %s %s 0x%02X",
			ErrDuplicatePacket, existing.Name, d.Name, d.Phase, d.Direction, d.ID)
	}

	tk := typeKey{packetType(d.New()), d.Direction}
	if existing, ok := r.byType[tk]; ok {
		return fmt.Errorf("%w: type of %s already registered as %s", ErrDuplicatePacket, d.Name, existing.Name)
	}

	desc := d
	r.byKey[k] = &desc
	r.byType[tk] = &desc
	return nil
}

// MustRegister is Register for startup tables; it panics on error.
func (r *Registry) MustRegister(d Descriptor) {
	if err := r.Register(d); err != nil {
		panic(err)
	}
}

// Seal freezes the registry.
func (r *Registry) Seal() *Registry {
	r.sealed = true
	return r
}

func (r *Registry) Lookup(phase Phase, direction Direction, id int32) (*Descriptor, error) {
	d, ok := r.byKey[key{phase, direction, id}]
	if !ok {
		return nil, &ProtocolError{Err: ErrUnknownPacket, Phase: phase, Direction: direction, ID: id}
	}
	return d, nil
}

// DescriptorOf returns the descriptor registered for the type of p.
func (r *Registry) DescriptorOf(direction Direction, p Packet) (*Descriptor, error) {
	d, ok := r.byType[typeKey{packetType(p), direction}]
	if !ok {
		return nil, fmt.Errorf("%w: %T is not a registered %s packet", ErrUnknownPacket, p, direction)
	}
	return d, nil
}

// Descriptors returns every registered descriptor in the given direction.
func (r *Registry) Descriptors(direction Direction) []*Descriptor {
	out := make([]*Descriptor, 0, len(r.byKey))
	for k, d := range r.byKey {
		if k.direction == direction {
			out = append(out, d)
		}
	}
	return out
}

// Decode decodes body as the packet registered under (phase, direction, id).
// Bytes left over after decoding are a frame error.
func (r *Registry) Decode(phase Phase, direction Direction, id int32, body []byte) (Packet, *Descriptor, error) {
	d, err := r.Lookup(phase, direction, id)
	if err != nil {
		return nil, nil, err
	}

	p := d.New()
	rd := codec.NewReader(body)
	if err := p.Decode(rd); err != nil {
		return nil, d, &FrameError{Err: fmt.Errorf("decoding %s: %w", d.Name, err)}
	}
	if rd.Remaining() != 0 {
		return nil, d, &FrameError{Err: fmt.Errorf("decoding %s: %w (%d bytes left)", d.Name, ErrTrailingBytes, rd.Remaining())}
	}
	return p, d, nil
}

// Encode encodes p and returns its registered id together with the body.
func (r *Registry) Encode(direction Direction, p Packet) (*Descriptor, []byte, error) {
	d, err := r.DescriptorOf(direction, p)
	if err != nil {
		return nil, nil, err
	}

	w := codec.NewWriter(d.SizeHint)
	if err := p.Encode(w); err != nil {
		return d, nil, fmt.Errorf("encoding %s: %w", d.Name, err)
	}
	return d, w.Bytes(), nil
}

func packetType(p Packet) reflect.Type {
	t := reflect.TypeOf(p)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}
