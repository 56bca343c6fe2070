package models

import "github.com/Tnze/go-mc/chat"

type (
	ServerStatus struct {
		Version     Version      `json:"version"`
		Players     Players      `json:"players"`
		Description chat.Message `json:"description"`
	}

	Version struct {
		Name     string `json:"name"`
		Protocol int    `json:"protocol"`
	}

	Players struct {
		Max    int      `json:"max"`
		Online int      `json:"online"`
		Sample []Sample `json:"sample"`
	}

	Sample struct {
		Name string `json:"name"`
		ID   string `json:"id"`
	}
)
