// Package snapshot models the complete state of a multi-repository checkout
// at one point in time and computes which projects changed between two states.
package snapshot
