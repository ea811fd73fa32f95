// Package manifest parses multi-repository manifest documents into project
// entries keyed by checkout path.
//
// A manifest enumerates independently versioned git projects together with
// the remotes they are fetched from. Parser resolves every project's clone URL
// from its own remote or from the manifest default, and EntryPool
// deduplicates structurally identical entries shared by many build states.
package manifest
