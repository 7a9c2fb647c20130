// Package integrations provides HTTP clients for the services blueprint
// reads from and drives.
//
// # Services
//
//   - [blueprint]: the repository service (repositories, commits, notebooks)
//   - [execution]: the execution service (create, update, start, cancel,
//     poll executions and stream job logs)
//
// # Shared Infrastructure
//
// The [Client] type provides the HTTP plumbing both clients use: default
// headers, JSON encoding, retry with backoff for cached reads and response
// caching via [cache.Cache]. Commit-scoped repository responses never change
// and are cached for a long time; execution responses are never cached.
//
// # Errors
//
// Failures carry a code from the errors package. A 404 or an empty body is
// "no data yet" ([NoData] reports it); connection failures and 5xx
// responses are NETWORK_ERROR or TIMEOUT and retryable.
//
// [blueprint]: github.com/matzehuels/blueprint/pkg/integrations/blueprint
// [execution]: github.com/matzehuels/blueprint/pkg/integrations/execution
// [cache.Cache]: github.com/matzehuels/blueprint/pkg/cache.Cache
package integrations
