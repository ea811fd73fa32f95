package snapshot

import (
	"sort"

	"github.com/temirov/reposcm/internal/utils"
)

// IgnoreList holds server paths whose changes alone never warrant a build.
type IgnoreList struct {
	serverPaths map[string]struct{}
}

// ParseIgnoreList splits a whitespace or comma delimited list of server paths.
func ParseIgnoreList(raw string) IgnoreList {
	return NewIgnoreList(utils.SplitDelimitedList(raw))
}

// NewIgnoreList builds an ignore list from individual server paths, dropping empty ones.
func NewIgnoreList(serverPaths []string) IgnoreList {
	list := IgnoreList{serverPaths: make(map[string]struct{}, len(serverPaths))}
	for _, serverPath := range serverPaths {
		for _, token := range utils.SplitDelimitedList(serverPath) {
			list.serverPaths[token] = struct{}{}
		}
	}
	return list
}

// Empty reports whether nothing is ignored.
func (list IgnoreList) Empty() bool {
	return len(list.serverPaths) == 0
}

// Contains reports whether the server path is ignored.
func (list IgnoreList) Contains(serverPath string) bool {
	_, found := list.serverPaths[serverPath]
	return found
}

// ServerPaths returns the ignored server paths in ascending order.
func (list IgnoreList) ServerPaths() []string {
	serverPaths := make([]string, 0, len(list.serverPaths))
	for serverPath := range list.serverPaths {
		serverPaths = append(serverPaths, serverPath)
	}
	sort.Strings(serverPaths)
	return serverPaths
}

// Ignorable reports whether every change touches an ignored server path.
// A single change outside the list makes the whole change set significant, and
// an empty change set, an empty list, or a missing baseline is never ignorable.
func (list IgnoreList) Ignorable(changeSet ChangeSet) bool {
	if changeSet.NoBaseline() || changeSet.Len() == 0 || list.Empty() {
		return false
	}
	for _, entry := range changeSet.Entries() {
		if !list.Contains(entry.ServerPath) {
			return false
		}
	}
	return true
}
