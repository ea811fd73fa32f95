package scm

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/temirov/reposcm/internal/snapshot"
)

const (
	changeDocumentPermissionsConstant          = 0o644
	changeDocumentDirectoryPermissionsConstant = 0o755
)

// ChangedProject describes one project the changelog must cover. The old
// revision is empty for added projects and the current revision is empty for
// removed ones.
type ChangedProject struct {
	Kind            snapshot.ChangeKind `yaml:"kind"`
	Path            string              `yaml:"path"`
	ServerPath      string              `yaml:"server_path"`
	OldRevision     string              `yaml:"old_revision,omitempty"`
	CurrentRevision string              `yaml:"current_revision,omitempty"`
	RepositoryURL   string              `yaml:"repository_url,omitempty"`
}

// ChangeDocument is the change summary written for changelog rendering.
type ChangeDocument struct {
	Build      int              `yaml:"build"`
	Branch     string           `yaml:"branch,omitempty"`
	NoBaseline bool             `yaml:"no_baseline"`
	Projects   []ChangedProject `yaml:"projects,omitempty"`
}

// NewChangeDocument pairs every change with the revision the project is at now.
func NewChangeDocument(buildNumber int, current *snapshot.RepositorySnapshot, changeSet snapshot.ChangeSet) ChangeDocument {
	document := ChangeDocument{
		Build:      buildNumber,
		Branch:     current.Branch(),
		NoBaseline: changeSet.NoBaseline(),
	}
	for _, change := range changeSet.Changes() {
		document.Projects = append(document.Projects, ChangedProject{
			Kind:            change.Kind,
			Path:            change.Entry.Path,
			ServerPath:      change.Entry.ServerPath,
			OldRevision:     change.Entry.Revision,
			CurrentRevision: current.Revision(change.Entry.Path),
			RepositoryURL:   change.Entry.RepositoryURL,
		})
	}
	return document
}

// WriteChangeDocument stores the document as YAML, creating parent directories.
func WriteChangeDocument(documentPath string, document ChangeDocument) error {
	encodedDocument, encodeError := yaml.Marshal(document)
	if encodeError != nil {
		return encodeError
	}
	if directoryError := os.MkdirAll(filepath.Dir(documentPath), changeDocumentDirectoryPermissionsConstant); directoryError != nil {
		return directoryError
	}
	return os.WriteFile(documentPath, encodedDocument, changeDocumentPermissionsConstant)
}

// ReadChangeDocument loads a document written by WriteChangeDocument.
func ReadChangeDocument(documentPath string) (ChangeDocument, error) {
	encodedDocument, readError := os.ReadFile(documentPath)
	if readError != nil {
		return ChangeDocument{}, readError
	}
	var document ChangeDocument
	if decodeError := yaml.Unmarshal(encodedDocument, &document); decodeError != nil {
		return ChangeDocument{}, decodeError
	}
	return document, nil
}
