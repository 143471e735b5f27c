// Package testutil provides in-memory stand-ins for the Postgres
// repositories and the file mirror, so services and handlers can be tested
// without a database. The fakes mirror the repository contracts, including
// the error types returned for missing rows and slug collisions.
package testutil
