package protocol

// Packet ids of protocol 753 (1.16.3).
const (
	IDHandshake = 0x00

	IDStatusRequest  = 0x00
	IDPing           = 0x01
	IDStatusResponse = 0x00
	IDPong           = 0x01

	IDLoginStart         = 0x00
	IDEncryptionResponse = 0x01
	IDLoginDisconnect    = 0x00
	IDEncryptionRequest  = 0x01
	IDLoginSuccess       = 0x02
	IDSetCompression     = 0x03

	IDChatMessage              = 0x03
	IDClientSettings           = 0x05
	IDPluginMessage            = 0x0B
	IDKeepAlive                = 0x10
	IDChatMessageClientbound   = 0x0E
	IDPluginMessageClientbound = 0x17
	IDDisconnect               = 0x19
	IDKeepAliveClientbound     = 0x1F
)

// NewStandardRegistry builds the sealed packet table for the supported
// protocol version. It is meant to be called once at startup.
func NewStandardRegistry(limits Limits) *Registry {
	if limits.MaxNicknameLength <= 0 || limits.MaxNicknameLength > MaxNameLength {
		limits.MaxNicknameLength = MaxNameLength
	}

	r := NewRegistry()

	r.MustRegister(Descriptor{Phase: Handshaking, Direction: Serverbound, ID: IDHandshake, Name: "Handshake", SizeHint: 32,
		New: func() Packet { return &Handshake{} }})

	r.MustRegister(Descriptor{Phase: Status, Direction: Serverbound, ID: IDStatusRequest, Name: "StatusRequest",
		New: func() Packet { return &StatusRequest{} }})
	r.MustRegister(Descriptor{Phase: Status, Direction: Serverbound, ID: IDPing, Name: "Ping", SizeHint: 8,
		New: func() Packet { return &Ping{} }})
	r.MustRegister(Descriptor{Phase: Status, Direction: Clientbound, ID: IDStatusResponse, Name: "StatusResponse", SizeHint: 512,
		New: func() Packet { return &StatusResponse{} }})
	r.MustRegister(Descriptor{Phase: Status, Direction: Clientbound, ID: IDPong, Name: "Pong", SizeHint: 8,
		New: func() Packet { return &Pong{} }})

	r.MustRegister(Descriptor{Phase: Login, Direction: Serverbound, ID: IDLoginStart, Name: "LoginStart", SizeHint: 17,
		New: func() Packet { return &LoginStart{maxName: limits.MaxNicknameLength} }})
	r.MustRegister(Descriptor{Phase: Login, Direction: Serverbound, ID: IDEncryptionResponse, Name: "EncryptionResponse", SizeHint: 260,
		New: func() Packet { return &EncryptionResponse{} }})
	r.MustRegister(Descriptor{Phase: Login, Direction: Clientbound, ID: IDLoginDisconnect, Name: "LoginDisconnect", SizeHint: 64,
		New: func() Packet { return &LoginDisconnect{} }})
	r.MustRegister(Descriptor{Phase: Login, Direction: Clientbound, ID: IDEncryptionRequest, Name: "EncryptionRequest", SizeHint: 170,
		New: func() Packet { return &EncryptionRequest{} }})
	r.MustRegister(Descriptor{Phase: Login, Direction: Clientbound, ID: IDLoginSuccess, Name: "LoginSuccess", SizeHint: 33,
		New: func() Packet { return &LoginSuccess{} }})
	r.MustRegister(Descriptor{Phase: Login, Direction: Clientbound, ID: IDSetCompression, Name: "SetCompression", SizeHint: 5,
		New: func() Packet { return &SetCompression{} }})

	r.MustRegister(Descriptor{Phase: Play, Direction: Serverbound, ID: IDChatMessage, Name: "ChatMessage", SizeHint: 64,
		New: func() Packet { return &ChatMessage{} }})
	r.MustRegister(Descriptor{Phase: Play, Direction: Serverbound, ID: IDClientSettings, Name: "ClientSettings", SizeHint: 16,
		New: func() Packet { return &ClientSettings{} }})
	r.MustRegister(Descriptor{Phase: Play, Direction: Serverbound, ID: IDPluginMessage, Name: "PluginMessage", SizeHint: 32,
		New: func() Packet { return &PluginMessage{} }})
	r.MustRegister(Descriptor{Phase: Play, Direction: Serverbound, ID: IDKeepAlive, Name: "KeepAlive", SizeHint: 8,
		New: func() Packet { return &KeepAlive{} }})
	r.MustRegister(Descriptor{Phase: Play, Direction: Clientbound, ID: IDChatMessageClientbound, Name: "ChatMessageClientbound", SizeHint: 128,
		New: func() Packet { return &ChatMessageClientbound{} }})
	r.MustRegister(Descriptor{Phase: Play, Direction: Clientbound, ID: IDPluginMessageClientbound, Name: "PluginMessageClientbound", SizeHint: 32,
		New: func() Packet { return &PluginMessage{} }})
	r.MustRegister(Descriptor{Phase: Play, Direction: Clientbound, ID: IDDisconnect, Name: "Disconnect", SizeHint: 64,
		New: func() Packet { return &Disconnect{} }})
	r.MustRegister(Descriptor{Phase: Play, Direction: Clientbound, ID: IDKeepAliveClientbound, Name: "KeepAliveClientbound", SizeHint: 8,
		New: func() Packet { return &KeepAlive{} }})

	return r.Seal()
}
