package notifications_test

import (
	"errors"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	shoutrrrTypes "github.com/nicholas-fedor/shoutrrr/pkg/types"

	"github.com/nicholas-fedor/stevedore/pkg/notifications"
	"github.com/nicholas-fedor/stevedore/pkg/session"
	"github.com/nicholas-fedor/stevedore/pkg/types"
)

type sentMessage struct {
	message string
	title   string
}

// fakeRouter records every message and answers with a fixed set of errors.
type fakeRouter struct {
	sent   []sentMessage
	errors []error
}

func (r *fakeRouter) Send(message string, params *shoutrrrTypes.Params) []error {
	r.sent = append(r.sent, sentMessage{message: message, title: (*params)["title"]})

	return r.errors
}

var project = types.Project{Path: "/p", ImageName: "app", Registry: "registry.example.com"}

var _ = ginkgo.Describe("notifications", func() {
	ginkgo.Describe("GetScheme", func() {
		ginkgo.It("should return the scheme of a URL", func() {
			gomega.Expect(notifications.GetScheme("slack://token@channel")).To(gomega.Equal("slack"))
		})

		ginkgo.It("should flag URLs without a scheme", func() {
			gomega.Expect(notifications.GetScheme("no-scheme")).To(gomega.Equal("invalid"))
			gomega.Expect(notifications.GetScheme(":x")).To(gomega.Equal("invalid"))
		})
	})

	ginkgo.Describe("New", func() {
		ginkgo.It("should create a disabled notifier without URLs", func() {
			notifier, err := notifications.New(nil, "")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(notifier.Enabled()).To(gomega.BeFalse())
			gomega.Expect(notifier.Send(notifications.Event{Summary: "x"})).To(gomega.Succeed())
		})

		ginkgo.It("should accept a valid service URL", func() {
			notifier, err := notifications.New([]string{"logger://"}, "")
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(notifier.Enabled()).To(gomega.BeTrue())
			gomega.Expect(notifier.Names()).To(gomega.Equal([]string{"logger"}))
		})

		ginkgo.It("should reject an unknown service", func() {
			_, err := notifications.New([]string{"nope://somewhere"}, "")
			gomega.Expect(err).To(gomega.MatchError(gomega.ContainSubstring("failed to initialize notification services")))
		})

		ginkgo.It("should reject a broken template", func() {
			_, err := notifications.New(nil, "{{.Event.Summary")
			gomega.Expect(err).To(gomega.MatchError(gomega.ContainSubstring("failed to parse notification template")))
		})

		ginkgo.It("should treat a nil notifier as disabled", func() {
			var notifier *notifications.Notifier
			gomega.Expect(notifier.Enabled()).To(gomega.BeFalse())
			gomega.Expect(notifier.Send(notifications.Event{})).To(gomega.Succeed())
		})
	})

	ginkgo.Describe("Send", func() {
		var (
			router   *fakeRouter
			notifier *notifications.Notifier
		)

		newNotifier := func(tpl string) {
			n, err := notifications.New(nil, tpl)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())

			router = &fakeRouter{}
			notifier = n.WithRouter([]string{"slack://a@b"}, router)
		}

		ginkgo.BeforeEach(func() {
			newNotifier("")
		})

		ginkgo.It("should render the summary and the detail lines", func() {
			event := notifications.PushEvent(project, []string{
				"registry.example.com/app:v1",
				"registry.example.com/app:latest",
			})

			gomega.Expect(notifier.Send(event)).To(gomega.Succeed())
			gomega.Expect(router.sent).To(gomega.HaveLen(1))
			gomega.Expect(router.sent[0].message).To(gomega.Equal(
				"Pushed 2 reference(s) to registry.example.com\n" +
					"- registry.example.com/app:v1\n" +
					"- registry.example.com/app:latest"))
		})

		ginkgo.It("should set a title naming the command and the image", func() {
			gomega.Expect(notifier.Send(notifications.Event{Command: "build", Image: "app", Summary: "ok"})).
				To(gomega.Succeed())

			expected := "Stevedore build app"
			if host := notifier.Host(); host != "" {
				expected += " on " + host
			}

			gomega.Expect(router.sent[0].title).To(gomega.Equal(expected))
		})

		ginkgo.It("should skip empty messages", func() {
			gomega.Expect(notifier.Send(notifications.Event{})).To(gomega.Succeed())
			gomega.Expect(router.sent).To(gomega.BeEmpty())
		})

		ginkgo.It("should use a named built-in template", func() {
			newNotifier("porcelain.v1")

			event := notifications.Event{Command: "CLEAN", Image: "app", Summary: "Done", Failed: true}
			gomega.Expect(notifier.Send(event)).To(gomega.Succeed())
			gomega.Expect(router.sent[0].message).To(gomega.Equal("clean app: Done [failed]"))
		})

		ginkgo.It("should render JSON with the json template", func() {
			newNotifier("json.v1")

			gomega.Expect(notifier.Send(notifications.Event{Command: "build", Summary: "Built"})).To(gomega.Succeed())
			gomega.Expect(router.sent[0].message).To(gomega.ContainSubstring(`"command": "build"`))
		})

		ginkgo.It("should return the delivery failures", func() {
			router.errors = []error{errors.New("unreachable")}

			err := notifier.Send(notifications.Event{Command: "build", Summary: "Built"})
			gomega.Expect(err).To(gomega.MatchError(gomega.ContainSubstring("failed to deliver notification (slack): unreachable")))
		})

		ginkgo.It("should ignore nil entries in the delivery result", func() {
			router.errors = []error{nil}

			gomega.Expect(notifier.Send(notifications.Event{Summary: "Built"})).To(gomega.Succeed())
		})
	})

	ginkgo.Describe("events", func() {
		ginkgo.It("should describe a build", func() {
			event := notifications.BuildEvent(types.TrackedImage{
				ImageName: "app",
				Tag:       "v1",
				Reference: "registry.example.com/app:v1",
				Size:      "12MB",
			})

			gomega.Expect(event.Command).To(gomega.Equal("build"))
			gomega.Expect(event.Summary).To(gomega.Equal("Built registry.example.com/app:v1 (12MB)"))
			gomega.Expect(event.Failed).To(gomega.BeFalse())
		})

		ginkgo.It("should list the failed steps of a cleanup", func() {
			report := session.NewCleanupReport([]types.CleanupTarget{{Reference: "app:v1", Tag: "v1"}})
			report.Add(session.RemoveContainer, "app:v1", "c1", nil)
			report.Add(session.RemoveImage, "app:v1", "app:v1", errors.New("conflict"))
			report.Add(session.Untrack, "app:v1", "v1", nil)
			report.Finish()

			event := notifications.CleanupEvent(project, report)
			gomega.Expect(event.Command).To(gomega.Equal("clean"))
			gomega.Expect(event.Failed).To(gomega.BeTrue())
			gomega.Expect(event.Summary).To(gomega.Equal(report.Summary()))
			gomega.Expect(event.Lines).To(gomega.Equal([]string{"remove image app:v1: conflict"}))
		})

		ginkgo.It("should describe an aborted cleanup without details", func() {
			report := session.NewCleanupReport(nil)
			report.Abort()

			event := notifications.CleanupEvent(project, report)
			gomega.Expect(event.Failed).To(gomega.BeFalse())
			gomega.Expect(event.Lines).To(gomega.BeEmpty())
			gomega.Expect(event.Summary).To(gomega.HavePrefix("Aborted"))
		})
	})
})
