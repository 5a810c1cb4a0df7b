// Package token encodes and decodes the signed session credential presented by
// clients on every request.
//
// # Design
//
// A credential is a compact JWS carrying the subject, the revocation epoch that
// was current at issuance, and issue/expiry timestamps. The signature covers
// all fields.
//
// Parse verifies signature and structure only. Expiry and epoch equality are
// business validity and belong to the caller (the engine), so the two concerns
// stay independently testable.
//
// # What this package must NOT do
//
//   - Read clocks. Issue receives the issuance instant from the caller so that
//     issuance and verification share one clock source.
//   - Talk to any store. The credential is self-contained.
package token
