package models_test

import (
	"encoding/base64"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/skyezerfox/magma/models"
)

var _ = Describe("GameProfile", func() {
	texturesJSON := `{
		"timestamp": 1600000000000,
		"profileId": "069a79f444e94726a5befca90e38aaf5",
		"profileName": "Notch",
		"textures": {
			"SKIN": {
				"url": "http://textures.minecraft.net/texture/292009a4925b58f02c77dadc3ecef07ea4c7472f64e0fdc32ce5522489362680",
				"metadata": {"model": "slim"}
			},
			"CAPE": {
				"url": "http://textures.minecraft.net/texture/953cac8b779fe41383e675ee2b86071a71658f2180f56fbce8aa315ea70e2ed6"
			}
		}
	}`

	profile := &models.GameProfile{
		ID:   uuid.MustParse("069a79f4-44e9-4726-a5be-fca90e38aaf5"),
		Name: "Notch",
		Properties: []models.Property{{
			Name:      models.TexturesProperty,
			Value:     base64.StdEncoding.EncodeToString([]byte(texturesJSON)),
			Signature: "c2lnbmF0dXJl",
		}},
	}

	It("finds properties by name", func() {
		prop, ok := profile.Property("textures")
		Expect(ok).To(BeTrue())
		Expect(prop.Signed()).To(BeTrue())

		_, ok = profile.Property("missing")
		Expect(ok).To(BeFalse())
	})

	It("decodes textures and derives the hash from the URL", func() {
		textures, err := profile.Textures()
		Expect(err).To(Succeed())
		Expect(textures).To(HaveLen(2))

		skin := textures["SKIN"]
		Expect(skin.Hash()).To(Equal("292009a4925b58f02c77dadc3ecef07ea4c7472f64e0fdc32ce5522489362680"))
		Expect(skin.Metadata).To(HaveKeyWithValue("model", "slim"))

		Expect(textures["CAPE"].Metadata).To(BeEmpty())
	})

	It("returns no textures for an offline profile", func() {
		offline := &models.GameProfile{Name: "steve"}
		textures, err := offline.Textures()
		Expect(err).To(Succeed())
		Expect(textures).To(BeEmpty())
	})

	It("rejects a corrupt textures property", func() {
		broken := &models.GameProfile{
			Name:       "broken",
			Properties: []models.Property{{Name: models.TexturesProperty, Value: "!!!"}},
		}
		_, err := broken.Textures()
		Expect(err).To(HaveOccurred())
	})
})
