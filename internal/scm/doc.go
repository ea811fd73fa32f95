// Package scm coordinates checkouts, persisted build state, and change
// detection for a multi-repository workspace.
//
// Service.Checkout materializes the workspace, records its snapshot as a new
// build, and reports what changed since the last build on the same manifest
// branch. Service.Poll decides whether a new build is warranted.
package scm
