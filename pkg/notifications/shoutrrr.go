package notifications

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"text/template"

	"github.com/nicholas-fedor/shoutrrr"
	"github.com/sirupsen/logrus"

	shoutrrrTypes "github.com/nicholas-fedor/shoutrrr/pkg/types"
)

// LocalLog is a logrus entry for the package's own diagnostics.
var LocalLog = logrus.WithField("notify", "no")

var (
	errInitSender    = errors.New("failed to initialize notification services")
	errParseTemplate = errors.New("failed to parse notification template")
	errRender        = errors.New("failed to render notification")
	errDelivery      = errors.New("failed to deliver notification")
)

// router sends a message to every configured service.
type router interface {
	Send(message string, params *shoutrrrTypes.Params) []error
}

// Notifier sends command events to Shoutrrr services.
type Notifier struct {
	urls     []string
	router   router
	template *template.Template
	host     string
}

// New creates a notifier for the given Shoutrrr URLs.
//
// Parameters:
//   - urls: Shoutrrr service URLs; empty yields a notifier that sends nothing.
//   - tplString: built-in template name or template body; empty selects the default.
//
// Returns:
//   - *Notifier: Configured notifier.
//   - error: Non-nil if the template or a URL is invalid.
func New(urls []string, tplString string) (*Notifier, error) {
	tpl, err := getTemplate(tplString)
	if err != nil {
		return nil, err
	}

	notifier := &Notifier{
		urls:     urls,
		template: tpl,
		host:     hostname(),
	}

	if len(urls) == 0 {
		return notifier, nil
	}

	logger := log.New(logrus.StandardLogger().WriterLevel(logrus.TraceLevel), "Shoutrrr: ", 0)

	sender, err := shoutrrr.NewSender(logger, urls...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errInitSender, err)
	}

	notifier.router = sender

	return notifier, nil
}

// GetScheme extracts the scheme part of a Shoutrrr URL.
// It returns "invalid" if no scheme is found.
func GetScheme(url string) string {
	schemeEnd := strings.Index(url, ":")
	if schemeEnd <= 0 {
		return "invalid"
	}

	return url[:schemeEnd]
}

// Names returns the service names of the configured URLs.
func (n *Notifier) Names() []string {
	names := make([]string, len(n.urls))
	for i, u := range n.urls {
		names[i] = GetScheme(u)
	}

	return names
}

// Enabled reports whether the notifier has any service to send to.
func (n *Notifier) Enabled() bool {
	return n != nil && n.router != nil
}

// Send renders the event and delivers it to every service.
//
// Parameters:
//   - event: Event to send.
//
// Returns:
//   - error: Joined delivery failures, or nil when every service accepted the message.
func (n *Notifier) Send(event Event) error {
	if !n.Enabled() {
		return nil
	}

	message, err := n.render(event)
	if err != nil {
		return err
	}

	if message == "" {
		LocalLog.Debug("Skipping notification due to empty message")

		return nil
	}

	params := &shoutrrrTypes.Params{}
	params.SetTitle(n.title(event))

	var failures []error

	for i, sendErr := range n.router.Send(message, params) {
		if sendErr == nil {
			continue
		}

		scheme := GetScheme(n.urls[i])
		LocalLog.WithFields(logrus.Fields{
			"service": scheme,
			"index":   i,
		}).WithError(sendErr).Error("Failed to send shoutrrr notification")

		failures = append(failures, fmt.Errorf("%w (%s): %w", errDelivery, scheme, sendErr))
	}

	return errors.Join(failures...)
}

func (n *Notifier) render(event Event) (string, error) {
	var body bytes.Buffer

	if err := n.template.Execute(&body, Data{Host: n.host, Event: event}); err != nil {
		return "", fmt.Errorf("%w: %w", errRender, err)
	}

	return strings.TrimSpace(body.String()), nil
}

// title builds the message title shown by services that support one.
func (n *Notifier) title(event Event) string {
	title := "Stevedore " + event.Command
	if event.Image != "" {
		title += " " + event.Image
	}

	if n.host != "" {
		title += " on " + n.host
	}

	return title
}

func hostname() string {
	host, err := os.Hostname()
	if err != nil {
		LocalLog.WithError(err).Debug("Failed to resolve hostname")

		return ""
	}

	return host
}
