// Package maintenance reads the process-wide maintenance flag.
//
// The flag is owned by configuration administration and is only ever read
// here. Source caches the parsed value for a configured staleness window so
// the per-request check costs a clock comparison, and it degrades to the last
// known value when a read fails or times out instead of blocking the request.
package maintenance
