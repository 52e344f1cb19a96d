package contxt

import (
	"context"
	"os"
	"time"
)

// NewContext returns a context that bounds one batch run. Setting
// CONTEXT_TEST disables the timeout so tests can step through slowly.
func NewContext(timeout time.Duration) context.Context {
	if os.Getenv("CONTEXT_TEST") != "" {
		return context.Background()
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	go func() {
		<-ctx.Done()
		cancel()
	}()
	return ctx
}
