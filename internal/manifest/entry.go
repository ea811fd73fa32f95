package manifest

// ProjectEntry records the checkout coordinates of one project.
// Entries are compared structurally and never mutated after construction.
type ProjectEntry struct {
	// Path is the checkout-relative directory and the unique key within a snapshot.
	Path string `yaml:"path" json:"path"`
	// ServerPath is the remote-side project name.
	ServerPath string `yaml:"server_path" json:"server_path"`
	// Revision is the pinned commit; empty means the project has no prior state.
	Revision string `yaml:"revision,omitempty" json:"revision,omitempty"`
	// RepositoryURL is the resolved clone URL, or empty when the remote could not be resolved.
	RepositoryURL string `yaml:"repository_url,omitempty" json:"repository_url,omitempty"`
}

// HasRevision reports whether the entry carries a pinned revision.
func (entry ProjectEntry) HasRevision() bool {
	return len(entry.Revision) > 0
}

// WithoutRevision returns a copy of the entry with the revision cleared.
func (entry ProjectEntry) WithoutRevision() ProjectEntry {
	entry.Revision = ""
	return entry
}
