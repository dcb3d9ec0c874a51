// Package server provides the local HTTP surface: routing, middleware, route guards and JSON handlers.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns, so a path may be registered once
// per method and unmatched methods get a 405 from the mux. Per-route middleware is appended after the
// router-wide stack, which is how the guards are attached.
//
// # Route Guards
//
// Two policies protect routes:
//   - [Server.RequireAuth] : must be authenticated, otherwise 303 to /login?from=<original URI>
//   - [Server.RequireAdmin] : must be authenticated and admin, otherwise the same redirect, or 403 "Access Denied"
//
// Both answer 503 while the session is still being restored.
//
// # Metrics
//
// [Metrics] counts requests, in-flight requests and latency per route pattern, served at /metrics.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
