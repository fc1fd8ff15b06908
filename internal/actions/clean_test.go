package actions_test

import (
	"errors"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"github.com/stretchr/testify/mock"

	"github.com/nicholas-fedor/stevedore/internal/actions"
	"github.com/nicholas-fedor/stevedore/internal/actions/mocks"
	"github.com/nicholas-fedor/stevedore/pkg/prompt"
	"github.com/nicholas-fedor/stevedore/pkg/session"
	"github.com/nicholas-fedor/stevedore/pkg/types"
)

var _ = ginkgo.Describe("Clean", func() {
	var (
		engine      *mocks.MockEngine
		tracking    *mocks.TrackingStore
		preferences *mocks.PreferenceStore
		selector    *mocks.Selector
		confirmer   *mocks.Confirmer
	)

	params := func() actions.CleanParams {
		return actions.CleanParams{
			Project:   project,
			Selector:  selector,
			Confirmer: confirmer,
		}
	}

	ginkgo.BeforeEach(func() {
		engine = mocks.NewMockEngine(ginkgo.GinkgoT())
		tracking = mocks.NewTrackingStore(tracked("v1", "2024-05-01T10:00:00Z", "10MB"))
		preferences = mocks.NewPreferenceStore()
		selector = &mocks.Selector{}
		confirmer = &mocks.Confirmer{Answer: true}
	})

	// liveImages reports app:v1 and app:v2, with one container on app:v2.
	liveImages := func() {
		engine.On("ListImagesByRepository", mock.Anything, "app").Return([]types.ImageSummary{
			live("v1", "2024-05-01T09:00:00Z", "11MB"),
			live("v2", "2024-05-02T10:00:00Z", "12MB"),
		}, nil)
		engine.On("ListContainersByImage", mock.Anything, "app:v2").Return([]string{"c2"}, nil)
		engine.On("ListContainersByImage", mock.Anything, "app:v1").Return([]string{}, nil)
	}

	ginkgo.Describe("full-project mode", func() {
		ginkgo.BeforeEach(liveImages)

		ginkgo.It("removes only the selected untracked image", func() {
			selector.Choose = []string{"app:v2"}
			engine.On("RemoveContainer", mock.Anything, "c2").Return(nil)
			engine.On("RemoveImage", mock.Anything, "app:v2").Return(nil)

			report, err := actions.Clean(ctx, engine, tracking, preferences, params())
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(report.State()).To(gomega.Equal(session.StateDone))

			gomega.Expect(engine.MutatingCalls()).To(gomega.Equal([]string{
				"RemoveContainer c2",
				"RemoveImage app:v2",
			}))
			gomega.Expect(tracking.Mutations).To(gomega.Equal(0))
			gomega.Expect(tracking.Entries).To(gomega.HaveLen(1))
			gomega.Expect(preferences.Excluded("/p", "app")).To(gomega.Equal([]string{"v1"}))
		})

		ginkgo.It("preselects every tag that is not excluded", func() {
			preferences.SetExcluded("/p", "app", []string{"v1"})
			selector.Choose = []string{}

			_, err := actions.Clean(ctx, engine, tracking, preferences, params())
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(selector.Preselected).To(gomega.Equal([]bool{true, false}))
		})

		ginkgo.It("untracks removed tracked images even when the image removal fails", func() {
			selector.Choose = []string{"app:v1", "app:v2"}
			engine.On("RemoveContainer", mock.Anything, "c2").Return(errors.New("already gone"))
			engine.On("RemoveImage", mock.Anything, "app:v2").Return(nil)
			engine.On("RemoveImage", mock.Anything, "app:v1").Return(errors.New("in use"))

			report, err := actions.Clean(ctx, engine, tracking, preferences, params())
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(report.State()).To(gomega.Equal(session.StateDone))
			gomega.Expect(report.FailureCount()).To(gomega.Equal(2))
			gomega.Expect(report.Succeeded(session.Untrack)).To(gomega.HaveLen(1))
			gomega.Expect(tracking.Entries).To(gomega.BeEmpty())
			gomega.Expect(report.Summary()).
				To(gomega.Equal("Done: removed 1 image, 0 containers, untracked 1 entry (2 failures)"))
		})

		ginkgo.It("removes every container before any image", func() {
			selector.Choose = []string{"app:v1", "app:v2"}
			engine.On("RemoveContainer", mock.Anything, "c2").Return(nil)
			engine.On("RemoveImage", mock.Anything, mock.Anything).Return(nil)

			_, err := actions.Clean(ctx, engine, tracking, preferences, params())
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(engine.MutatingCalls()).To(gomega.Equal([]string{
				"RemoveContainer c2",
				"RemoveImage app:v2",
				"RemoveImage app:v1",
			}))
		})

		ginkgo.It("shows the confirmer every selected target", func() {
			selector.Choose = []string{"app:v2"}
			engine.On("RemoveContainer", mock.Anything, "c2").Return(nil)
			engine.On("RemoveImage", mock.Anything, "app:v2").Return(nil)

			_, err := actions.Clean(ctx, engine, tracking, preferences, params())
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(confirmer.Shown).To(gomega.HaveLen(1))
			gomega.Expect(confirmer.Shown[0].ContainerIDs).To(gomega.Equal([]string{"c2"}))
		})

		ginkgo.When("the confirmation is declined", func() {
			ginkgo.It("neither removes anything nor touches the stores", func() {
				selector.Choose = []string{"app:v2"}
				confirmer.Answer = false

				report, err := actions.Clean(ctx, engine, tracking, preferences, params())
				gomega.Expect(err).NotTo(gomega.HaveOccurred())
				gomega.Expect(report.State()).To(gomega.Equal(session.StateAborted))
				gomega.Expect(engine.MutatingCalls()).To(gomega.BeEmpty())
				gomega.Expect(tracking.Mutations).To(gomega.Equal(0))
				gomega.Expect(preferences.Mutations).To(gomega.Equal(0))
			})
		})

		ginkgo.When("the selection is canceled", func() {
			ginkgo.It("aborts without persisting preferences", func() {
				selector.Err = prompt.ErrCanceled

				report, err := actions.Clean(ctx, engine, tracking, preferences, params())
				gomega.Expect(err).NotTo(gomega.HaveOccurred())
				gomega.Expect(report.State()).To(gomega.Equal(session.StateAborted))
				gomega.Expect(engine.MutatingCalls()).To(gomega.BeEmpty())
				gomega.Expect(preferences.Mutations).To(gomega.Equal(0))
			})
		})

		ginkgo.When("the selector fails", func() {
			ginkgo.It("returns the error", func() {
				selector.Err = errors.New("no terminal")

				_, err := actions.Clean(ctx, engine, tracking, preferences, params())
				gomega.Expect(err).To(gomega.HaveOccurred())
				gomega.Expect(engine.MutatingCalls()).To(gomega.BeEmpty())
			})
		})

		ginkgo.When("nothing is selected", func() {
			ginkgo.It("persists the exclusions and removes nothing", func() {
				selector.Choose = []string{}

				report, err := actions.Clean(ctx, engine, tracking, preferences, params())
				gomega.Expect(err).NotTo(gomega.HaveOccurred())
				gomega.Expect(report.State()).To(gomega.Equal(session.StateNothingToClean))
				gomega.Expect(engine.MutatingCalls()).To(gomega.BeEmpty())
				gomega.Expect(preferences.Excluded("/p", "app")).To(gomega.Equal([]string{"v2", "v1"}))
			})
		})

		ginkgo.When("assuming yes", func() {
			ginkgo.It("removes everything without prompting or changing preferences", func() {
				engine.On("RemoveContainer", mock.Anything, "c2").Return(nil)
				engine.On("RemoveImage", mock.Anything, mock.Anything).Return(nil)

				p := params()
				p.AssumeYes = true

				report, err := actions.Clean(ctx, engine, tracking, preferences, p)
				gomega.Expect(err).NotTo(gomega.HaveOccurred())
				gomega.Expect(report.State()).To(gomega.Equal(session.StateDone))
				gomega.Expect(selector.Called).To(gomega.BeFalse())
				gomega.Expect(confirmer.Shown).To(gomega.BeNil())
				gomega.Expect(preferences.Mutations).To(gomega.Equal(0))
				gomega.Expect(report.Succeeded(session.RemoveImage)).To(gomega.HaveLen(2))
			})
		})
	})

	ginkgo.When("there is nothing to clean", func() {
		ginkgo.It("reports it without prompting", func() {
			tracking = mocks.NewTrackingStore()
			engine.On("ListImagesByRepository", mock.Anything, "app").Return([]types.ImageSummary{}, nil)

			report, err := actions.Clean(ctx, engine, tracking, preferences, params())
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(report.State()).To(gomega.Equal(session.StateNothingToClean))
			gomega.Expect(selector.Called).To(gomega.BeFalse())
		})
	})

	ginkgo.When("a tag exists in both the local and the registry repository", func() {
		ginkgo.It("excludes the whole tag once any of its references is kept", func() {
			withRegistry := project
			withRegistry.Registry = "registry.example.com"

			tracking = mocks.NewTrackingStore()
			engine.On("ListImagesByRepository", mock.Anything, "app").
				Return([]types.ImageSummary{live("v1", "2024-05-01T09:00:00Z", "11MB")}, nil)
			engine.On("ListImagesByRepository", mock.Anything, "registry.example.com/app").
				Return([]types.ImageSummary{{
					Reference:  "registry.example.com/app:v1",
					Repository: "registry.example.com/app",
					Tag:        "v1",
					Created:    "2024-05-01T10:00:00Z",
				}}, nil)
			engine.On("ListContainersByImage", mock.Anything, mock.Anything).Return([]string{}, nil)
			engine.On("RemoveImage", mock.Anything, "app:v1").Return(nil)

			cleanParams := params()
			cleanParams.Project = withRegistry
			selector.Choose = []string{"app:v1"}

			_, err := actions.Clean(ctx, engine, tracking, preferences, cleanParams)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(engine.MutatingCalls()).To(gomega.Equal([]string{"RemoveImage app:v1"}))
			gomega.Expect(preferences.Excluded("/p", "app")).To(gomega.Equal([]string{"v1"}))

			selector.Choose = []string{}

			_, err = actions.Clean(ctx, engine, tracking, preferences, cleanParams)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(selector.Preselected).To(gomega.Equal([]bool{false, false}))
		})
	})

	ginkgo.Describe("explicit-tag mode", func() {
		var withRegistry types.Project

		ginkgo.BeforeEach(func() {
			withRegistry = project
			withRegistry.Registry = "registry.example.com"
		})

		ginkgo.It("normalizes numeric tags and removes nothing when no image exists", func() {
			engine.On("ImageExists", mock.Anything, "app:v42").Return(false, nil)
			engine.On("ImageExists", mock.Anything, "registry.example.com/app:v42").Return(false, nil)

			p := params()
			p.Project = withRegistry
			p.Tag = "42"

			report, err := actions.Clean(ctx, engine, tracking, preferences, p)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(report.State()).To(gomega.Equal(session.StateNothingToClean))
			gomega.Expect(report.Outcomes()).To(gomega.BeEmpty())
			gomega.Expect(engine.MutatingCalls()).To(gomega.BeEmpty())
			engine.AssertNotCalled(ginkgo.GinkgoT(), "ListImagesByRepository", mock.Anything, mock.Anything)
		})

		ginkgo.It("removes the existing references of the tag and untracks it", func() {
			engine.On("ImageExists", mock.Anything, "app:v1").Return(true, nil)
			engine.On("ImageExists", mock.Anything, "registry.example.com/app:v1").Return(true, nil)
			engine.On("ImageSize", mock.Anything, mock.Anything).Return("10MB", nil)
			engine.On("ListContainersByImage", mock.Anything, "app:v1").Return([]string{"c1"}, nil)
			engine.On("ListContainersByImage", mock.Anything, "registry.example.com/app:v1").
				Return([]string{"c1"}, nil)
			engine.On("RemoveContainer", mock.Anything, "c1").Return(nil).Once()
			engine.On("RemoveImage", mock.Anything, mock.Anything).Return(nil)

			p := params()
			p.Project = withRegistry
			p.Tag = "v1"

			report, err := actions.Clean(ctx, engine, tracking, preferences, p)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(report.State()).To(gomega.Equal(session.StateDone))
			gomega.Expect(engine.MutatingCalls()).To(gomega.Equal([]string{
				"RemoveContainer c1",
				"RemoveImage app:v1",
				"RemoveImage registry.example.com/app:v1",
			}))
			gomega.Expect(tracking.Entries).To(gomega.BeEmpty())
			gomega.Expect(selector.Called).To(gomega.BeFalse())
			gomega.Expect(preferences.Mutations).To(gomega.Equal(0))
		})

		ginkgo.It("rejects tags that cannot form a reference", func() {
			p := params()
			p.Tag = "bad tag!"

			_, err := actions.Clean(ctx, engine, tracking, preferences, p)
			gomega.Expect(err).To(gomega.HaveOccurred())
			gomega.Expect(engine.MutatingCalls()).To(gomega.BeEmpty())
		})
	})
})
