package httpapi

import (
	"context"
	"time"
)

// shutdownCtx is canceled when the process stops serving; in-flight
// generations are abandoned with it.
var shutdownCtx = context.Background()

// SetShutdownContext installs the context whose cancellation aborts every
// in-flight generation. nil restores a context that is never canceled.
func SetShutdownContext(ctx context.Context) {
	if ctx == nil {
		shutdownCtx = context.Background()
		return
	}
	shutdownCtx = ctx
}

// generationContext derives the context a backend call runs under from the
// request context. It ends when the client goes away, on shutdown, or after
// the configured request timeout.
func generationContext(req context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(req)
	stop := context.AfterFunc(shutdownCtx, cancel)
	if requestTimeout <= 0 {
		return ctx, func() {
			stop()
			cancel()
		}
	}
	tctx, tcancel := context.WithTimeout(ctx, time.Duration(requestTimeout)*time.Second)
	return tctx, func() {
		tcancel()
		stop()
		cancel()
	}
}

// shuttingDown reports whether the shutdown context has been canceled.
func shuttingDown() bool { return shutdownCtx.Err() != nil }
