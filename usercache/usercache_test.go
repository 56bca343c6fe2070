package usercache_test

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/skyezerfox/magma/models"
	"github.com/skyezerfox/magma/usercache"
)

var _ = Describe("Cache", func() {
	var (
		dir   string
		cache *usercache.Cache
		ctx   = context.Background()

		notch = &models.GameProfile{
			ID:         uuid.MustParse("069a79f4-44e9-4726-a5be-fca90e38aaf5"),
			Name:       "Notch",
			Properties: []models.Property{{Name: "textures", Value: "e30=", Signature: "c2ln"}},
		}
		jeb = &models.GameProfile{
			ID:   uuid.MustParse("853c80ef-3c37-49fd-aa49-938b674adae6"),
			Name: "jeb_",
		}
	)

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "magma-usercache")
		Expect(err).To(Succeed())
		cache, err = usercache.Open(filepath.Join(dir, "data", "usercache.db"))
		Expect(err).To(Succeed())
	})

	AfterEach(func() {
		cache.Close()
		os.RemoveAll(dir)
	})

	It("finds stored profiles by name and UUID", func() {
		Expect(cache.Put(ctx, notch)).To(Succeed())

		byName, err := cache.ByName(ctx, "notch")
		Expect(err).To(Succeed())
		Expect(byName.Profile).To(Equal(notch))
		Expect(byName.LastSeen).To(BeTemporally("~", time.Now(), time.Minute))

		byID, err := cache.ByUUID(ctx, "069a79f444e94726a5befca90e38aaf5")
		Expect(err).To(Succeed())
		Expect(byID.Profile).To(Equal(notch))
	})

	It("reports unknown players", func() {
		_, err := cache.ByName(ctx, "nobody")
		Expect(err).To(MatchError(usercache.ErrNotFound))
	})

	It("updates the name of a returning player", func() {
		Expect(cache.Put(ctx, jeb)).To(Succeed())
		renamed := &models.GameProfile{ID: jeb.ID, Name: "jeb"}
		Expect(cache.Put(ctx, renamed)).To(Succeed())

		_, err := cache.ByName(ctx, "jeb_")
		Expect(err).To(MatchError(usercache.ErrNotFound))
		e, err := cache.ByUUID(ctx, jeb.ID.String())
		Expect(err).To(Succeed())
		Expect(e.Profile.Name).To(Equal("jeb"))
	})

	It("hands a name over to its new owner", func() {
		Expect(cache.Put(ctx, notch)).To(Succeed())
		impostor := &models.GameProfile{ID: jeb.ID, Name: "NOTCH"}
		Expect(cache.Put(ctx, impostor)).To(Succeed())

		e, err := cache.ByName(ctx, "Notch")
		Expect(err).To(Succeed())
		Expect(e.Profile.ID).To(Equal(jeb.ID))
		_, err = cache.ByUUID(ctx, notch.ID.String())
		Expect(err).To(MatchError(usercache.ErrNotFound))
	})

	It("lists the most recently seen players first", func() {
		Expect(cache.Put(ctx, notch)).To(Succeed())
		time.Sleep(5 * time.Millisecond)
		Expect(cache.Put(ctx, jeb)).To(Succeed())

		entries, err := cache.List(ctx, 0)
		Expect(err).To(Succeed())
		Expect(entries).To(HaveLen(2))
		Expect(entries[0].Profile.Name).To(Equal("jeb_"))
		Expect(entries[1].Profile.Name).To(Equal("Notch"))

		entries, err = cache.List(ctx, 1)
		Expect(err).To(Succeed())
		Expect(entries).To(HaveLen(1))
	})
})
