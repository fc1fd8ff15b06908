// Package notifications delivers stevedore command summaries through Shoutrrr services.
//
// A Notifier is configured from a list of Shoutrrr URLs (for example "slack://...",
// "discord://..." or "generic+https://..."). Each build, push or clean command turns its
// outcome into an Event, which is rendered with a text template and sent to every service.
//
// Usage example:
//
//	notifier, err := notifications.New(urls, "")
//	if err != nil {
//		return err
//	}
//	notifier.Send(notifications.CleanupEvent(project, report))
//
// A Notifier without URLs is valid and sends nothing. Delivery failures are logged through
// LocalLog and returned joined, so callers can decide whether they matter.
package notifications
