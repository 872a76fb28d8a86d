// Package contracttest holds behavior suites shared by every adapter of a port.
// Each suite takes a factory so the memory and Postgres adapters run the same cases.
package contracttest

// CleanupFunc releases whatever a factory allocated for one test.
type CleanupFunc = func()
