// Package store is the SQLite persistence layer: staff accounts, the member
// registry (socios), assemblies, and runtime configuration.
//
// StaffStore satisfies padron.AccountManager and ConfigStore satisfies
// maintenance.ConfigReader, so the engine plugs into this package without any
// adapter code. The schema lives in embedded migrations and is applied on
// Open.
package store
