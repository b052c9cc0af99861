// Package clientip resolves the address of the caller of a gateway request
// and carries it in the request context for logging.
//
// Proxy headers (CF-Connecting-IP, X-Real-IP, X-Forwarded-For) are spoofable
// by clients, so they are read only when the deployment opts in with
// trustProxy. Otherwise RemoteAddr is used.
package clientip
