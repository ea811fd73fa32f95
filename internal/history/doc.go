// Package history persists one repository snapshot per build and locates the
// state a new build should be compared against.
//
// Records are kept in YAML files, in PostgreSQL, or in memory. FindLastState
// walks back through earlier builds until it reaches one recorded for the same
// manifest branch.
package history
