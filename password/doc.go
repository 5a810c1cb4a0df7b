// Package password hashes and verifies staff passwords with argon2id,
// serialized in PHC string format so stored hashes are self-describing and
// parameters can be raised without a migration.
package password
