package util

import (
	"strings"
	"time"

	"github.com/docker/go-units"
)

// shortIDLength matches the ID width the Docker CLI prints.
const shortIDLength = 12

// FormatAge renders the time elapsed between then and now the way `docker images` does,
// for example "2 hours" or "3 weeks".
//
// A zero timestamp yields "unknown"; a timestamp in the future counts as now.
func FormatAge(then, now time.Time) string {
	if then.IsZero() {
		return "unknown"
	}

	return units.HumanDuration(max(now.Sub(then), 0))
}

// ShortID truncates an engine object ID, dropping any "sha256:" prefix.
func ShortID(id string) string {
	id = strings.TrimPrefix(id, "sha256:")
	if len(id) > shortIDLength {
		return id[:shortIDLength]
	}

	return id
}
