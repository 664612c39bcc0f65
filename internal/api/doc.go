// Package api is the HTTP client for the storefront backend.
//
// Client covers the shopper endpoints:
//   - GET  /api/products
//   - POST /api/checkout
//   - GET  /api/orders/{id}
//
// Admin covers the console endpoints under /admin, authenticated by the
// session cookie set by /admin/login. Cookies live in the Client's jar;
// a persistent jar carries the session across espr invocations.
//
// Non-2xx responses surface as *HTTPError carrying the server's "message"
// when the body has one.
package api
