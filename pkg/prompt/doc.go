// Package prompt implements stevedore's terminal interactions with bubbletea.
//
// Selector renders the cleanup checklist and Confirmer the final removal confirmation.
// Both satisfy the interaction interfaces in pkg/types and report a user cancel as ErrCanceled.
package prompt
