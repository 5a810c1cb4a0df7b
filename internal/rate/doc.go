// Package rate provides the Redis-backed login throttle.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. Key
// prefixes:
//   - pl:  — login per-account
//   - pli: — login per-IP
//
// # What this package must NOT do
//
//   - Decide login policy; it only counts and compares against a budget.
//   - Be imported outside this module.
package rate
