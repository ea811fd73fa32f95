package snapshot

import (
	"go.uber.org/zap/zapcore"

	"github.com/temirov/reposcm/internal/manifest"
)

const (
	logFieldNoBaselineConstant  = "no_baseline"
	logFieldChangeCountConstant = "change_count"
)

// ChangeKind classifies how a project differs from the previous snapshot.
type ChangeKind string

// Supported change kinds.
const (
	// ChangeAdded carries the current entry with its revision cleared.
	ChangeAdded ChangeKind = "added"
	// ChangeModified carries the previous entry so history can be read from its revision.
	ChangeModified ChangeKind = "modified"
	// ChangeRemoved carries the previous entry of a project no longer in the manifest.
	ChangeRemoved ChangeKind = "removed"
)

// Change pairs a change kind with the entry requiring changelog coverage.
type Change struct {
	Kind  ChangeKind            `yaml:"kind" json:"kind"`
	Entry manifest.ProjectEntry `yaml:"entry" json:"entry"`
}

// ChangeSet is the result of diffing two snapshots. A change set without a
// baseline means no previous state was available and every project is new;
// it is distinct from an empty change set, which means nothing changed.
type ChangeSet struct {
	noBaseline bool
	changes    []Change
}

// NoBaselineChangeSet returns the change set used when no previous state exists.
func NoBaselineChangeSet() ChangeSet {
	return ChangeSet{noBaseline: true}
}

// NewChangeSet wraps an ordered list of changes.
func NewChangeSet(changes []Change) ChangeSet {
	return ChangeSet{changes: append([]Change{}, changes...)}
}

// NoBaseline reports whether the diff had no previous snapshot to compare against.
func (changeSet ChangeSet) NoBaseline() bool {
	return changeSet.noBaseline
}

// Empty reports whether a baseline existed and nothing changed.
func (changeSet ChangeSet) Empty() bool {
	return !changeSet.noBaseline && len(changeSet.changes) == 0
}

// Len returns the number of changes.
func (changeSet ChangeSet) Len() int {
	return len(changeSet.changes)
}

// Changes returns the ordered changes.
func (changeSet ChangeSet) Changes() []Change {
	return append([]Change(nil), changeSet.changes...)
}

// Entries returns the entry of every change in order.
func (changeSet ChangeSet) Entries() []manifest.ProjectEntry {
	entries := make([]manifest.ProjectEntry, 0, len(changeSet.changes))
	for _, change := range changeSet.changes {
		entries = append(entries, change.Entry)
	}
	return entries
}

// MarshalLogObject renders the change set summary for zap.
func (changeSet ChangeSet) MarshalLogObject(encoder zapcore.ObjectEncoder) error {
	encoder.AddBool(logFieldNoBaselineConstant, changeSet.noBaseline)
	encoder.AddInt(logFieldChangeCountConstant, len(changeSet.changes))
	return nil
}

// Diff returns the projects that changed since the previous snapshot.
// Added and modified projects come first in ascending path order, followed by
// removed projects in ascending path order. A nil previous snapshot yields
// NoBaselineChangeSet.
func (snapshot *RepositorySnapshot) Diff(previous *RepositorySnapshot) ChangeSet {
	if previous == nil {
		return NoBaselineChangeSet()
	}

	remaining := make(map[string]*manifest.ProjectEntry, len(previous.projects))
	for projectPath, entry := range previous.projects {
		remaining[projectPath] = entry
	}

	changes := make([]Change, 0)
	for _, projectPath := range snapshot.paths {
		currentEntry := snapshot.projects[projectPath]
		previousEntry, existed := remaining[projectPath]
		switch {
		case !existed:
			changes = append(changes, Change{Kind: ChangeAdded, Entry: currentEntry.WithoutRevision()})
		case *previousEntry != *currentEntry:
			changes = append(changes, Change{Kind: ChangeModified, Entry: *previousEntry})
		}
		delete(remaining, projectPath)
	}

	for _, projectPath := range manifest.SortedPaths(remaining) {
		changes = append(changes, Change{Kind: ChangeRemoved, Entry: *remaining[projectPath]})
	}

	return ChangeSet{changes: changes}
}
