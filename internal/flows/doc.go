// Package flows contains the per-request and login orchestration logic,
// expressed against small dependency structs so the root package can wire its
// own collaborators without import cycles and tests can substitute fakes for
// every external read.
//
// Failures are classified, not mapped to errors here; the root package owns
// the sentinel error vocabulary.
package flows
