package sqlgen

import "errors"

var (
	// ErrUnknownBackend is returned by New for an unrecognized backend name.
	ErrUnknownBackend = errors.New("unknown sqlgen backend")
	// ErrNoChoices is returned when a chat completion carries no choices.
	ErrNoChoices = errors.New("chat completion returned no choices")
)
