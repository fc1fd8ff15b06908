package config_test

import (
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"github.com/spf13/afero"

	"github.com/nicholas-fedor/stevedore/internal/config"
	"github.com/nicholas-fedor/stevedore/pkg/types"
)

var _ = ginkgo.Describe("config", func() {
	var (
		fs   afero.Fs
		path string
	)

	ginkgo.BeforeEach(func() {
		fs = afero.NewMemMapFs()
		path = config.Path("/work/app", "")
	})

	ginkgo.Describe("Path", func() {
		ginkgo.It("should default to the file at the project root", func() {
			gomega.Expect(path).To(gomega.Equal("/work/app/.stevedore.yaml"))
		})

		ginkgo.It("should resolve relative files against the project", func() {
			gomega.Expect(config.Path("/work/app", "conf/dev.yaml")).To(gomega.Equal("/work/app/conf/dev.yaml"))
		})

		ginkgo.It("should keep absolute files", func() {
			gomega.Expect(config.Path("/work/app", "/etc/stevedore.yaml")).To(gomega.Equal("/etc/stevedore.yaml"))
		})
	})

	ginkgo.Describe("Load", func() {
		ginkgo.It("should report an uninitialized project", func() {
			_, err := config.Load(fs, path)
			gomega.Expect(err).To(gomega.MatchError(config.ErrNotInitialized))
		})

		ginkgo.It("should decode every key", func() {
			content := `image: app
registry: registry.example.com:5000
dockerfile: build/Dockerfile
context: src
platform: linux/arm64
build_args:
  - NODE_ENV=production
ports:
  - "8080:80"
env:
  - DEBUG=1
`
			gomega.Expect(afero.WriteFile(fs, path, []byte(content), 0o644)).To(gomega.Succeed())

			cfg, err := config.Load(fs, path)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(cfg).To(gomega.Equal(config.Config{
				Image:      "app",
				Registry:   "registry.example.com:5000",
				Dockerfile: "build/Dockerfile",
				Context:    "src",
				Platform:   "linux/arm64",
				BuildArgs:  []string{"NODE_ENV=production"},
				Ports:      []string{"8080:80"},
				Env:        []string{"DEBUG=1"},
			}))
			gomega.Expect(cfg.ContextDir("/work/app")).To(gomega.Equal("/work/app/src"))
		})

		ginkgo.It("should apply defaults for unset keys", func() {
			gomega.Expect(afero.WriteFile(fs, path, []byte("image: app\n"), 0o644)).To(gomega.Succeed())

			cfg, err := config.Load(fs, path)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(cfg.Dockerfile).To(gomega.Equal(config.DefaultDockerfile))
			gomega.Expect(cfg.Context).To(gomega.Equal(config.DefaultContext))
			gomega.Expect(cfg.Registry).To(gomega.BeEmpty())
		})

		ginkgo.It("should let the environment override the file", func() {
			ginkgo.GinkgoT().Setenv("STEVEDORE_REGISTRY", "ghcr.io/acme")
			gomega.Expect(afero.WriteFile(fs, path, []byte("image: app\nregistry: localhost:5000\n"), 0o644)).
				To(gomega.Succeed())

			cfg, err := config.Load(fs, path)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(cfg.Registry).To(gomega.Equal("ghcr.io/acme"))
		})

		ginkgo.It("should reject a file without an image", func() {
			gomega.Expect(afero.WriteFile(fs, path, []byte("registry: localhost:5000\n"), 0o644)).To(gomega.Succeed())

			_, err := config.Load(fs, path)
			gomega.Expect(err).To(gomega.MatchError(gomega.ContainSubstring("image is required")))
		})

		ginkgo.It("should reject an image name that is not in short form", func() {
			gomega.Expect(afero.WriteFile(fs, path, []byte("image: docker.io/myuser/app\n"), 0o644)).To(gomega.Succeed())

			_, err := config.Load(fs, path)
			gomega.Expect(err).To(gomega.MatchError(gomega.ContainSubstring(`use "myuser/app"`)))
		})

		ginkgo.It("should reject malformed YAML", func() {
			gomega.Expect(afero.WriteFile(fs, path, []byte("image: [app\n"), 0o644)).To(gomega.Succeed())

			_, err := config.Load(fs, path)
			gomega.Expect(err).To(gomega.MatchError(gomega.ContainSubstring("failed to read project configuration")))
		})
	})

	ginkgo.Describe("Save and Init", func() {
		ginkgo.It("should round-trip a configuration", func() {
			cfg := config.Config{
				Image:     "app",
				Registry:  "registry.example.com",
				BuildArgs: []string{"A=1"},
				Ports:     []string{"80"},
			}

			gomega.Expect(config.Save(fs, path, cfg)).To(gomega.Succeed())

			loaded, err := config.Load(fs, path)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(loaded.Image).To(gomega.Equal("app"))
			gomega.Expect(loaded.Registry).To(gomega.Equal("registry.example.com"))
			gomega.Expect(loaded.Dockerfile).To(gomega.Equal(config.DefaultDockerfile))
			gomega.Expect(loaded.BuildArgs).To(gomega.Equal([]string{"A=1"}))
			gomega.Expect(loaded.Ports).To(gomega.Equal([]string{"80"}))
		})

		ginkgo.It("should refuse to save an invalid image name", func() {
			err := config.Save(fs, path, config.Config{Image: "App With Spaces"})
			gomega.Expect(err).To(gomega.MatchError(gomega.ContainSubstring("invalid project configuration")))

			exists, _ := afero.Exists(fs, path)
			gomega.Expect(exists).To(gomega.BeFalse())
		})

		ginkgo.It("should not overwrite an existing file on init", func() {
			gomega.Expect(config.Init(fs, path, config.Config{Image: "app"})).To(gomega.Succeed())

			err := config.Init(fs, path, config.Config{Image: "other"})
			gomega.Expect(err).To(gomega.MatchError(config.ErrAlreadyInitialized))

			loaded, err := config.Load(fs, path)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(loaded.Image).To(gomega.Equal("app"))
		})
	})

	ginkgo.Describe("Validate", func() {
		ginkgo.It("should reject a malformed build argument", func() {
			err := config.Config{Image: "app", BuildArgs: []string{"NOVALUE"}}.Validate()
			gomega.Expect(err).To(gomega.MatchError(gomega.ContainSubstring("build_args")))
		})

		ginkgo.It("should reject an image name carrying a tag", func() {
			gomega.Expect(config.Config{Image: "app:v1"}.Validate()).NotTo(gomega.Succeed())
		})

		ginkgo.It("should reject long forms of Docker Hub names", func() {
			gomega.Expect(config.Config{Image: "library/app"}.Validate()).NotTo(gomega.Succeed())
			gomega.Expect(config.Config{Image: "myuser/app"}.Validate()).To(gomega.Succeed())
		})
	})

	ginkgo.Describe("ParseKeyValues", func() {
		ginkgo.It("should keep the last value of a repeated key and allow empty values", func() {
			values, err := config.ParseKeyValues([]string{"A=1", "B=", "A=2=3"})
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(values).To(gomega.Equal(map[string]string{"A": "2=3", "B": ""}))
		})
	})

	ginkgo.Describe("Project", func() {
		ginkgo.It("should scope the project to its directory", func() {
			cfg := config.Config{Image: "app", Registry: "registry.example.com"}
			gomega.Expect(cfg.Project("/work/app")).To(gomega.Equal(types.Project{
				Path:      "/work/app",
				ImageName: "app",
				Registry:  "registry.example.com",
			}))
		})
	})
})
