// Package httputil provides HTTP helpers shared by the service clients.
//
// [Retry] re-runs an operation while it fails with a [RetryableError]:
// connection failures and 5xx responses from the repository service.
// Everything else (404, 4xx, decode errors) is returned at once. The delay
// doubles after each attempt and waiting stops when the context is done.
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    return fetch(ctx)
//	})
//
// [Retryable] marks an error as transient; [IsRetryable] reports it.
package httputil
