// Package cli constructs the reposcm command-line interface. It wires the
// Cobra command hierarchy, the configuration loader, and structured logging,
// and assembles the checkout orchestrator, build history, and notification
// publisher behind the checkout, poll, diff, and history commands.
package cli
