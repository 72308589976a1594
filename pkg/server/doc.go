// Package server exposes hydration over HTTP.
//
// Routes:
//
//	POST /hydrate[?path=/docs]  hydrate the request body; store it under path
//	GET  /pages/*               serve a stored page, brotli when accepted
//	GET  /live                  websocket preview channel
//	GET  /metrics               Prometheus metrics
//	GET  /healthz               liveness
//
// POST /hydrate answers with the hydrated document. The number of
// diagnostics is reported in the X-Graft-Diagnostics header; clients that
// accept application/json receive the full hydrate.Results instead.
//
// On /live every text message is an HTML document. The server answers each
// with one binary protocol frame, preceded by a hello frame carrying the
// connection ID.
package server
