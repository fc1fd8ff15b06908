// Package util provides small formatting helpers shared by the stevedore commands.
//
// Key components:
//   - FormatAge: Renders the time elapsed since a timestamp, for listings.
//   - ShortID: Truncates engine object IDs for display and logs.
//
// Usage example:
//
//	fmt.Println("built " + util.FormatAge(entry.BuildTime(), time.Now()) + " ago")
package util
