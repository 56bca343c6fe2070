package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/Tnze/go-mc/chat"

	"github.com/skyezerfox/magma/codec"
)

func readChat(r *codec.Reader) (chat.Message, error) {
	var msg chat.Message
	s, err := r.ReadString(MaxChatJSONLength)
	if err != nil {
		return msg, err
	}
	if err := json.Unmarshal([]byte(s), &msg); err != nil {
		return msg, fmt.Errorf("invalid chat component: %w", err)
	}
	return msg, nil
}

func writeChat(w *codec.Writer, msg chat.Message) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return w.WriteString(string(b), MaxChatJSONLength)
}
