// Package prometheus renders padron metrics in Prometheus text exposition
// format.
//
// [NewExporter] accepts a [padron.Engine] and exposes an [http.Handler] that
// serves every counter and the authenticate latency histogram. Counter names
// are prefixed padron_*_total.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the
//     Handler.
//   - Mutate engine state.
package prometheus
