// Package checkout drives the repo tool to materialize a multi-repository
// checkout and extracts the manifest state a snapshot is built from.
//
// Orchestrator runs init, an optional best-effort reset, and sync. A failed
// sync is followed by a forced reset and exactly one retry.
package checkout
