// Package httpapi is the HTTP surface of the padron backend: login, member
// registry, assemblies, staff administration, runtime configuration and the
// reset endpoints.
//
// Responses are JSON throughout; errors use a {"error": "..."} envelope with
// the status carrying the classification. Authentication is fail-open at the
// middleware and fail-closed at the route guards: an invalid credential
// reaches the guard as anonymous and is rejected there, with the single
// exception of the maintenance gate, which answers 503 directly.
package httpapi
