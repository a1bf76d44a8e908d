// Package testutil provides shared test helpers: a seeded random vector
// generator and a deterministic in-memory embedding provider.
package testutil
