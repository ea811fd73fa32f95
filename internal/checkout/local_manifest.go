package checkout

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	repoMetadataDirectoryConstant             = ".repo"
	localManifestFileNameConstant             = "local_manifest.xml"
	inlineManifestPrefixConstant              = "<?xml"
	fileURLSchemePrefixConstant               = "file://"
	localManifestFailedMessageConstant        = "local manifest could not be applied"
	localManifestErrorTemplateConstant        = "%w: %w"
	localManifestFilePermissionsConstant      = 0o644
	localManifestDirectoryPermissionsConstant = 0o755
)

// ErrLocalManifest wraps failures to remove or write the local manifest.
var ErrLocalManifest = errors.New(localManifestFailedMessageConstant)

// LocalManifestPath returns the location of the local manifest inside a checkout.
func LocalManifestPath(checkoutDirectory string) string {
	return filepath.Join(checkoutDirectory, repoMetadataDirectoryConstant, localManifestFileNameConstant)
}

// applyLocalManifest removes any stale local manifest and writes the configured one.
// Values starting with an XML declaration are written without surrounding whitespace; other values name a local file to copy.
func applyLocalManifest(checkoutDirectory string, localManifest string) error {
	localManifestPath := LocalManifestPath(checkoutDirectory)
	if removeError := os.Remove(localManifestPath); removeError != nil && !errors.Is(removeError, fs.ErrNotExist) {
		return fmt.Errorf(localManifestErrorTemplateConstant, ErrLocalManifest, removeError)
	}

	trimmedManifest := strings.TrimSpace(localManifest)
	if len(trimmedManifest) == 0 {
		return nil
	}

	content := []byte(trimmedManifest)
	if !strings.HasPrefix(trimmedManifest, inlineManifestPrefixConstant) {
		sourcePath := strings.TrimPrefix(trimmedManifest, fileURLSchemePrefixConstant)
		fileContent, readError := os.ReadFile(sourcePath)
		if readError != nil {
			return fmt.Errorf(localManifestErrorTemplateConstant, ErrLocalManifest, readError)
		}
		content = fileContent
	}

	if directoryError := os.MkdirAll(filepath.Dir(localManifestPath), localManifestDirectoryPermissionsConstant); directoryError != nil {
		return fmt.Errorf(localManifestErrorTemplateConstant, ErrLocalManifest, directoryError)
	}
	if writeError := os.WriteFile(localManifestPath, content, localManifestFilePermissionsConstant); writeError != nil {
		return fmt.Errorf(localManifestErrorTemplateConstant, ErrLocalManifest, writeError)
	}
	return nil
}
