package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/skyezerfox/magma/config"
)

var _ = Describe("Load", func() {
	var dir string

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "magma-config")
		Expect(err).To(Succeed())
	})

	AfterEach(func() {
		os.Unsetenv("MAGMA_LISTENER_PORT")
		os.Unsetenv("MAGMA_SERVER_MOTD")
		os.RemoveAll(dir)
	})

	It("writes a sample config with the defaults", func() {
		cfg, err := config.Load(dir)
		Expect(err).To(Succeed())
		Expect(filepath.Join(dir, "magma.yaml")).To(BeAnExistingFile())

		Expect(cfg.Listener.Addr()).To(Equal("0.0.0.0:25565"))
		Expect(cfg.Server.OnlineMode).To(BeTrue())
		Expect(cfg.Server.CompressionThreshold).To(Equal(256))
		Expect(cfg.Server.MaxNicknameLength).To(Equal(16))
		Expect(cfg.Server.KeepAliveInterval).To(Equal(15 * time.Second))
		Expect(cfg.Session.Timeout).To(Equal(10 * time.Second))
		Expect(cfg.Log.Level).To(Equal("info"))
	})

	It("reads values from the config file", func() {
		yaml := "server:\n  motd: Hello there\n  online_mode: false\n  compression_threshold: -1\n"
		Expect(os.WriteFile(filepath.Join(dir, "magma.yaml"), []byte(yaml), 0o644)).To(Succeed())

		cfg, err := config.Load(dir)
		Expect(err).To(Succeed())
		Expect(cfg.Server.MOTD).To(Equal("Hello there"))
		Expect(cfg.Server.OnlineMode).To(BeFalse())
		Expect(cfg.Server.CompressionThreshold).To(Equal(-1))
		Expect(cfg.Server.MaxPlayers).To(Equal(100))
	})

	It("lets the environment override the file", func() {
		os.Setenv("MAGMA_LISTENER_PORT", "25570")

		cfg, err := config.Load(dir)
		Expect(err).To(Succeed())
		Expect(cfg.Listener.Port).To(Equal(25570))
	})

	It("loads variables from .env.local", func() {
		Expect(os.WriteFile(filepath.Join(dir, ".env.local"), []byte("MAGMA_SERVER_MOTD=From dotenv\n"), 0o644)).To(Succeed())

		cfg, err := config.Load(dir)
		Expect(err).To(Succeed())
		Expect(cfg.Server.MOTD).To(Equal("From dotenv"))
	})

	It("rejects nickname limits above the protocol maximum", func() {
		yaml := "server:\n  max_nickname_length: 17\n"
		Expect(os.WriteFile(filepath.Join(dir, "magma.yaml"), []byte(yaml), 0o644)).To(Succeed())

		_, err := config.Load(dir)
		Expect(err).To(MatchError(ContainSubstring("max_nickname_length")))
	})
})
