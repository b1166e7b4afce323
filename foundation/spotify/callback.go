package spotify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
)

type callbackResult struct {
	code string
	err  error
}

// callbackHandler answers the browser redirect and forwards the outcome.
// Only the first result is delivered.
func callbackHandler(state string, results chan<- callbackResult) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		code, err := parseCallback(state, c.Query("state"), c.Query("code"), c.Query("error"))
		if err != nil {
			c.String(http.StatusBadRequest, "Spotify authorization failed: %v", err)
		} else {
			c.String(http.StatusOK, "Spotify authorization complete. You can close this window.")
		}

		select {
		case results <- callbackResult{code: code, err: err}:
		default:
		}
	}
}

// awaitCallback runs a temporary listener on addr until the redirect for
// state arrives or ctx ends.
func awaitCallback(ctx context.Context, addr, path, state string) (string, error) {
	results := make(chan callbackResult, 1)

	h := server.New(
		server.WithHostPorts(addr),
		server.WithExitWaitTime(time.Second),
		server.WithDisablePrintRoute(true),
	)
	h.GET(path, callbackHandler(state, results))

	runErr := make(chan error, 1)
	go func() { runErr <- h.Run() }()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = h.Shutdown(shutdownCtx)
	}()

	select {
	case res := <-results:
		return res.code, res.err
	case err := <-runErr:
		return "", fmt.Errorf("oauth callback listener on %s: %w", addr, err)
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
