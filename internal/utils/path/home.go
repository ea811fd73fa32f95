// Package pathutils resolves user-supplied workspace and state paths.
package pathutils

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const homeShortcutConstant = "~"

// HomeDirectoryProvider resolves the current user's home directory path.
type HomeDirectoryProvider func() (string, error)

// HomeExpander rewrites a leading "~" to the user's home directory and cleans the result.
type HomeExpander struct {
	provider      HomeDirectoryProvider
	once          sync.Once
	homeDirectory string
}

// NewHomeExpander constructs a HomeExpander backed by os.UserHomeDir.
func NewHomeExpander() *HomeExpander {
	return NewHomeExpanderWithProvider(os.UserHomeDir)
}

// NewHomeExpanderWithProvider constructs a HomeExpander with a custom provider.
func NewHomeExpanderWithProvider(provider HomeDirectoryProvider) *HomeExpander {
	if provider == nil {
		provider = os.UserHomeDir
	}
	return &HomeExpander{provider: provider}
}

// Expand resolves "~" and "~/..." prefixes. Other paths, including "~user", are only cleaned.
// An empty input stays empty so callers can tell an unset path apart from ".".
func (expander *HomeExpander) Expand(candidatePath string) string {
	trimmedPath := strings.TrimSpace(candidatePath)
	if len(trimmedPath) == 0 {
		return ""
	}
	if expander == nil || !hasHomePrefix(trimmedPath) {
		return filepath.Clean(trimmedPath)
	}

	homeDirectory := expander.resolveHomeDirectory()
	if len(homeDirectory) == 0 {
		return filepath.Clean(trimmedPath)
	}
	return filepath.Join(homeDirectory, trimmedPath[len(homeShortcutConstant):])
}

func (expander *HomeExpander) resolveHomeDirectory() string {
	expander.once.Do(func() {
		homeDirectory, lookupError := expander.provider()
		if lookupError == nil {
			expander.homeDirectory = homeDirectory
		}
	})
	return expander.homeDirectory
}

func hasHomePrefix(candidatePath string) bool {
	if candidatePath == homeShortcutConstant {
		return true
	}
	if !strings.HasPrefix(candidatePath, homeShortcutConstant) {
		return false
	}
	separator := candidatePath[len(homeShortcutConstant)]
	return separator == '/' || separator == os.PathSeparator
}
