// Package providers implements the Completer interface for each supported
// AI provider.
//
// Supported providers: Azure OpenAI, OpenAI and Anthropic, plus a Disabled
// no-op completer for heuristic-only runs.
//
// Each Complete call makes a single attempt and classifies failures into
// TimeoutError, RateLimitError or ProviderError, so the caller's retry
// policy can decide which errors are transient. Every provider carries its
// own http.Client, so tests can point calls at local httptest servers
// instead of the live APIs.
//
// Use [New] to obtain a Completer from configuration.
package providers
