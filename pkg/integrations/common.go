package integrations

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	bperrors "github.com/matzehuels/blueprint/pkg/errors"
	"github.com/matzehuels/blueprint/pkg/httputil"
)

const httpTimeout = 10 * time.Second

var (
	// ErrNotFound is returned when a resource doesn't exist (HTTP 404).
	ErrNotFound = errors.New("resource not found")

	// ErrNoContent is returned when the service answered with an empty body.
	ErrNoContent = errors.New("no content")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")
)

// NoData reports whether err means "nothing there yet" rather than a failed
// load: a 404 or an empty response body.
func NoData(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrNoContent)
}

// NewHTTPClient creates an HTTP client with the standard request timeout.
// Streaming calls use a client without timeout; see [Client.Stream].
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// JoinURL appends escaped path segments to base.
func JoinURL(base string, segments ...string) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(base, "/"))
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

// transportError classifies a failed round trip. Timeouts keep their own
// code so the gateway can tell them apart from refused connections.
func transportError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return httputil.Retryable(bperrors.Wrap(bperrors.ErrCodeTimeout, ErrNetwork, "request timed out: %v", err))
	}
	return httputil.Retryable(bperrors.Wrap(bperrors.ErrCodeNetwork, ErrNetwork, "%v", err))
}

func checkStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return bperrors.Wrap(bperrors.ErrCodeNotFound, ErrNotFound, "status %d", code)
	case code >= 500:
		return httputil.Retryable(bperrors.Wrap(bperrors.ErrCodeNetwork, ErrNetwork, "status %d", code))
	case code == http.StatusBadRequest || code == http.StatusUnprocessableEntity:
		return bperrors.Wrap(bperrors.ErrCodeInvalidInput, ErrNetwork, "status %d", code)
	default:
		return bperrors.Wrap(bperrors.ErrCodeNetwork, ErrNetwork, "status %d", code)
	}
}
