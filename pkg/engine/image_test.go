package engine_test

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	cerrdefs "github.com/containerd/errdefs"
	dockerImage "github.com/docker/docker/api/types/image"
	dockerClient "github.com/docker/docker/client"

	"github.com/nicholas-fedor/stevedore/pkg/engine"
	"github.com/nicholas-fedor/stevedore/pkg/types"
)

var _ = ginkgo.Describe("image operations", func() {
	var (
		mockServer *ghttp.Server
		client     types.Engine
	)

	ginkgo.BeforeEach(func() {
		mockServer = ghttp.NewServer()
		docker, err := dockerClient.NewClientWithOpts(
			dockerClient.WithHost(mockServer.URL()),
			dockerClient.WithHTTPClient(mockServer.HTTPTestServer.Client()))
		gomega.Expect(err).NotTo(gomega.HaveOccurred())

		client = engine.NewClientWithAPI(docker, engine.ClientOptions{})
	})

	ginkgo.AfterEach(func() {
		mockServer.Close()
	})

	ginkgo.Describe("ListImagesByRepository", func() {
		ginkgo.It("returns one summary per matching tag", func() {
			created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

			mockServer.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest("GET", gomega.MatchRegexp(`^/v[0-9.]+/images/json$`)),
				func(_ http.ResponseWriter, r *http.Request) {
					var filters map[string]map[string]bool
					gomega.Expect(json.Unmarshal([]byte(r.URL.Query().Get("filters")), &filters)).
						To(gomega.Succeed())
					gomega.Expect(filters["reference"]).To(gomega.HaveKey("app"))
				},
				ghttp.RespondWithJSONEncoded(http.StatusOK, []dockerImage.Summary{
					{
						ID:       "sha256:aaa",
						RepoTags: []string{"app:v1", "app:v2", "other:v1"},
						Size:     2_000_000,
						Created:  created.Unix(),
					},
					{
						ID:       "sha256:bbb",
						RepoTags: []string{"<none>:<none>"},
					},
				}),
			))

			images, err := client.ListImagesByRepository(context.Background(), "app")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(images).To(gomega.HaveLen(2))
			gomega.Expect(images[0]).To(gomega.Equal(types.ImageSummary{
				Reference:  "app:v1",
				Repository: "app",
				Tag:        "v1",
				Size:       "2MB",
				Created:    "2024-05-01T12:00:00Z",
			}))
			gomega.Expect(images[1].Reference).To(gomega.Equal("app:v2"))
		})

		ginkgo.It("keeps registry-qualified repositories apart from local ones", func() {
			mockServer.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest("GET", gomega.MatchRegexp(`^/v[0-9.]+/images/json$`)),
				ghttp.RespondWithJSONEncoded(http.StatusOK, []dockerImage.Summary{
					{ID: "sha256:aaa", RepoTags: []string{"app:v1", "registry.example.com/app:v1"}},
				}),
			))

			images, err := client.ListImagesByRepository(
				context.Background(),
				"registry.example.com/app",
			)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(images).To(gomega.HaveLen(1))
			gomega.Expect(images[0].Reference).To(gomega.Equal("registry.example.com/app:v1"))
		})

		ginkgo.It("matches the short tags the engine prints for a long repository name", func() {
			mockServer.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest("GET", gomega.MatchRegexp(`^/v[0-9.]+/images/json$`)),
				ghttp.RespondWithJSONEncoded(http.StatusOK, []dockerImage.Summary{
					{ID: "sha256:aaa", RepoTags: []string{"myuser/app:v1", "myuser/app:v2"}},
				}),
			))

			images, err := client.ListImagesByRepository(context.Background(), "docker.io/myuser/app")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(images).To(gomega.HaveLen(2))
			gomega.Expect(images[0].Reference).To(gomega.Equal("myuser/app:v1"))
			gomega.Expect(images[1].Repository).To(gomega.Equal("myuser/app"))
		})

		ginkgo.It("returns an error when the daemon fails", func() {
			mockServer.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest("GET", gomega.MatchRegexp(`^/v[0-9.]+/images/json$`)),
				ghttp.RespondWith(http.StatusInternalServerError, "boom"),
			))

			images, err := client.ListImagesByRepository(context.Background(), "app")
			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(images).To(gomega.BeEmpty())
		})
	})

	ginkgo.Describe("ImageExists", func() {
		ginkgo.It("reports a present image", func() {
			mockServer.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest("GET", gomega.HaveSuffix("images/app:v1/json")),
				ghttp.RespondWithJSONEncoded(http.StatusOK, dockerImage.InspectResponse{ID: "sha256:aaa"}),
			))

			exists, err := client.ImageExists(context.Background(), "app:v1")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(exists).To(gomega.BeTrue())
		})

		ginkgo.It("treats a 404 as absence rather than failure", func() {
			mockServer.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest("GET", gomega.HaveSuffix("images/app:v42/json")),
				ghttp.RespondWithJSONEncoded(http.StatusNotFound, map[string]string{
					"message": "No such image: app:v42",
				}),
			))

			exists, err := client.ImageExists(context.Background(), "app:v42")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(exists).To(gomega.BeFalse())
		})
	})

	ginkgo.Describe("ImageSize", func() {
		ginkgo.It("formats the inspected size", func() {
			mockServer.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest("GET", gomega.HaveSuffix("images/app:v1/json")),
				ghttp.RespondWithJSONEncoded(http.StatusOK, dockerImage.InspectResponse{
					ID:   "sha256:aaa",
					Size: 1_500_000,
				}),
			))

			size, err := client.ImageSize(context.Background(), "app:v1")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(size).To(gomega.Equal("1.5MB"))
		})
	})

	ginkgo.Describe("RemoveImage", func() {
		ginkgo.It("force-removes the reference", func() {
			mockServer.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest("DELETE", gomega.HaveSuffix("images/app:v1")),
				func(_ http.ResponseWriter, r *http.Request) {
					gomega.Expect(r.URL.Query().Get("force")).To(gomega.Equal("1"))
				},
				ghttp.RespondWithJSONEncoded(http.StatusOK, []dockerImage.DeleteResponse{
					{Untagged: "app:v1"},
					{Deleted: "sha256:aaa"},
				}),
			))

			gomega.Expect(client.RemoveImage(context.Background(), "app:v1")).To(gomega.Succeed())
		})

		ginkgo.It("keeps not-found errors detectable", func() {
			mockServer.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest("DELETE", gomega.HaveSuffix("images/app:v1")),
				ghttp.RespondWithJSONEncoded(http.StatusNotFound, map[string]string{
					"message": "No such image: app:v1",
				}),
			))

			err := client.RemoveImage(context.Background(), "app:v1")
			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(cerrdefs.IsNotFound(err)).To(gomega.BeTrue())
		})

		ginkgo.It("reports conflicts as failures", func() {
			mockServer.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest("DELETE", gomega.HaveSuffix("images/app:v1")),
				ghttp.RespondWithJSONEncoded(http.StatusConflict, map[string]string{
					"message": "image is being used by running container",
				}),
			))

			err := client.RemoveImage(context.Background(), "app:v1")
			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(err.Error()).To(gomega.ContainSubstring("failed to remove image"))
		})
	})

	ginkgo.Describe("TagImage", func() {
		ginkgo.It("adds the target reference", func() {
			mockServer.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest("POST", gomega.HaveSuffix("images/app:v1/tag")),
				func(_ http.ResponseWriter, r *http.Request) {
					gomega.Expect(r.URL.Query().Get("repo")).To(gomega.Equal("registry.example.com/app"))
					gomega.Expect(r.URL.Query().Get("tag")).To(gomega.Equal("v1"))
				},
				ghttp.RespondWith(http.StatusCreated, nil),
			))

			gomega.Expect(client.TagImage(
				context.Background(),
				"app:v1",
				"registry.example.com/app:v1",
			)).To(gomega.Succeed())
		})
	})
})

var _ = ginkgo.Describe("Ping", func() {
	ginkgo.It("reports an unreachable daemon as unavailable", func() {
		mockServer := ghttp.NewServer()
		docker, err := dockerClient.NewClientWithOpts(
			dockerClient.WithHost(mockServer.URL()),
			dockerClient.WithHTTPClient(mockServer.HTTPTestServer.Client()))
		gomega.Expect(err).NotTo(gomega.HaveOccurred())
		mockServer.Close()

		err = engine.NewClientWithAPI(docker, engine.ClientOptions{}).Ping(context.Background())
		gomega.Expect(err).To(gomega.MatchError(engine.ErrEngineUnavailable))
	})
})
