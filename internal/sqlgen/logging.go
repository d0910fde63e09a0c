package sqlgen

import "github.com/rs/zerolog"

var logger = zerolog.Nop()

// SetLogger installs the structured logger used by the generators.
func SetLogger(l zerolog.Logger) { logger = l }
