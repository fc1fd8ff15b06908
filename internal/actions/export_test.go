package actions

import "context"

// SetLookupHost replaces the registry host resolver and returns a function restoring it.
func SetLookupHost(fn func(ctx context.Context, host string) ([]string, error)) func() {
	previous := lookupHost
	lookupHost = fn

	return func() { lookupHost = previous }
}
