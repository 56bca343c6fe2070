package models

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"path"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

// TexturesProperty is the profile property carrying skin and cape data.
const TexturesProperty = "textures"

// GameProfile is a player identity. Profiles returned by the session service
// carry signed properties; offline profiles have none.
type GameProfile struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	Properties []Property `json:"properties,omitempty"`
}

type Property struct {
	Name      string `json:"name"`
	Value     string `json:"value"`
	Signature string `json:"signature,omitempty"`
}

func (p Property) Signed() bool {
	return p.Signature != ""
}

// ProfileTexture is one entry of the decoded textures property.
type ProfileTexture struct {
	URL      string
	Metadata map[string]string
}

// Hash is the final path segment of the texture URL.
func (t ProfileTexture) Hash() string {
	u, err := url.Parse(t.URL)
	if err != nil || u.Path == "" {
		return path.Base(t.URL)
	}
	return path.Base(u.Path)
}

// Property returns the first property with the given name.
func (p *GameProfile) Property(name string) (Property, bool) {
	for _, prop := range p.Properties {
		if prop.Name == name {
			return prop, true
		}
	}
	return Property{}, false
}

// Textures decodes the base64 textures property into its SKIN/CAPE entries.
// A profile without the property has no textures and no error.
func (p *GameProfile) Textures() (map[string]ProfileTexture, error) {
	prop, ok := p.Property(TexturesProperty)
	if !ok {
		return map[string]ProfileTexture{}, nil
	}

	raw, err := base64.StdEncoding.DecodeString(prop.Value)
	if err != nil {
		return nil, fmt.Errorf("failed to decode textures of %s: %w", p.Name, err)
	}
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("textures of %s are not valid JSON", p.Name)
	}

	textures := make(map[string]ProfileTexture)
	gjson.GetBytes(raw, "textures").ForEach(func(kind, value gjson.Result) bool {
		t := ProfileTexture{
			URL:      value.Get("url").String(),
			Metadata: make(map[string]string),
		}
		value.Get("metadata").ForEach(func(k, v gjson.Result) bool {
			t.Metadata[k.String()] = v.String()
			return true
		})
		textures[kind.String()] = t
		return true
	})

	return textures, nil
}
