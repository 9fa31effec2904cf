// Package server is the HTTP front of paiflow: a Gin engine served with
// h2c, a handler-level middleware stack and the workflow API.
//
// # Middleware
//
// Applied to every request (server/middleware):
//
//   - Recovery: panics become 500 INTERNAL_ERROR responses
//   - RequestID: X-Request-Id generation and propagation into log context
//   - CORS: cross-origin headers and preflight handling
//   - BodySizeLimit: request body cap
//   - RequestLogger: one structured line per request
//
// RateLimit guards the execution routes when server.rate_limit is set.
//
// # Routes
//
// The API (see API.RegisterRoutes):
//
//	GET    /api/workflows
//	POST   /api/workflows
//	GET    /api/workflows/:id
//	PUT    /api/workflows/:id
//	DELETE /api/workflows/:id
//	POST   /api/workflows/:id/execute
//	GET    /api/workflows/:id/execute/stream?inputData=...
//	GET    /api/workflows/:id/events
//	GET    /api/workflows/:id/executions
//	GET    /api/executions/:id
//	GET    /api/node-types
//	GET    /files/*path
//
// System endpoints (server/endpoint): /health, /alive, /ready, /info and
// /metrics.
package server
