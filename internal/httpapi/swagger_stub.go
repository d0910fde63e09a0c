//go:build !swagger

package httpapi

import "github.com/go-chi/chi/v5"

// MountSwagger leaves the router untouched: the /generate and /debug API
// document is only served by binaries built with -tags=swagger.
func MountSwagger(chi.Router) {}
