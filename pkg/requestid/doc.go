// Package requestid propagates a per-request identifier from the inbound HTTP
// request, through context.Context and the logger, to the X-Request-ID header
// of outbound API calls.
package requestid
