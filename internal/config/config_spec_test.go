package config

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Load", func() {
	When("the file is not valid YAML", func() {
		It("returns a parse error", func() {
			path := filepath.Join(GinkgoT().TempDir(), "config.yaml")
			Expect(os.WriteFile(path, []byte("server: [unclosed"), 0644)).To(Succeed())

			_, err := Load(path)
			Expect(err).To(MatchError(ContainSubstring("parse config file")))
		})
	})

	When("the file holds invalid values", func() {
		It("reports every problem at once", func() {
			content := `
server:
  port: 0
log:
  level: "loud"
  format: "xml"
`
			path := filepath.Join(GinkgoT().TempDir(), "config.yaml")
			Expect(os.WriteFile(path, []byte(content), 0644)).To(Succeed())

			_, err := Load(path)
			Expect(err).To(MatchError(ContainSubstring("server.port")))
			Expect(err).To(MatchError(ContainSubstring("log.level")))
			Expect(err).To(MatchError(ContainSubstring("log.format")))
		})
	})

	When("ROUTEKIT_HOST is set", func() {
		It("overrides the listen host", func() {
			os.Setenv("ROUTEKIT_HOST", "0.0.0.0")
			defer os.Unsetenv("ROUTEKIT_HOST")

			cfg, err := Load("")
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Server.Addr()).To(Equal("0.0.0.0:8080"))
		})
	})

	When("ROUTEKIT_PORT is not a number", func() {
		It("keeps the default port", func() {
			os.Setenv("ROUTEKIT_PORT", "eighty")
			defer os.Unsetenv("ROUTEKIT_PORT")

			cfg, err := Load("")
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Server.Port).To(Equal(8080))
		})
	})
})
