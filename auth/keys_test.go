package auth_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/skyezerfox/magma/auth"
	"github.com/skyezerfox/magma/constants"
)

var _ = Describe("LoadOrGenerateKey", func() {
	var dir string

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "magma-key")
		Expect(err).To(Succeed())
	})

	AfterEach(func() {
		os.RemoveAll(dir)
	})

	It("generates a key once and loads it afterwards", func() {
		path := filepath.Join(dir, "server.pem")

		first, err := auth.LoadOrGenerateKey(path)
		Expect(err).To(Succeed())
		Expect(first.N.BitLen()).To(Equal(constants.KeySize))
		Expect(path).To(BeAnExistingFile())

		second, err := auth.LoadOrGenerateKey(path)
		Expect(err).To(Succeed())
		Expect(second.Equal(first)).To(BeTrue())
	})

	It("refuses files without a key", func() {
		path := filepath.Join(dir, "garbage.pem")
		Expect(os.WriteFile(path, []byte("not a key"), 0o600)).To(Succeed())

		_, err := auth.LoadOrGenerateKey(path)
		Expect(err).To(HaveOccurred())
	})
})
