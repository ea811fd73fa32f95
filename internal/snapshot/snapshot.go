package snapshot

import (
	"encoding/binary"
	"hash/fnv"
	"io"

	"go.uber.org/zap"

	"github.com/temirov/reposcm/internal/manifest"
)

// ManifestRepositoryPath keys the synthetic entry describing the manifest repository itself.
const ManifestRepositoryPath = ".repo/manifests.git"

const (
	malformedManifestMessageConstant = "Error - malformed manifest"
	manifestRevisionMessageConstant  = "Manifest at revision"
	logFieldRevisionConstant         = "revision"
	logFieldBranchConstant           = "branch"
	logFieldProjectCountConstant     = "project_count"
)

// Input carries everything extracted from a checkout that a snapshot is built from.
type Input struct {
	ManifestText          string
	ManifestRevision      string
	ManifestRepositoryURL string
	// Branch is the expanded manifest branch; empty means absent.
	Branch string
}

// RepositorySnapshot is an immutable view of every project in a checkout.
type RepositorySnapshot struct {
	manifestText string
	branch       string
	projects     map[string]*manifest.ProjectEntry
	paths        []string
}

// Builder constructs snapshots from extracted manifest state.
type Builder struct {
	logger *zap.Logger
	parser *manifest.Parser
	pool   *manifest.EntryPool
}

// NewBuilder constructs a Builder sharing the provided pool with its parser.
func NewBuilder(logger *zap.Logger, pool *manifest.EntryPool) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		logger: logger,
		parser: manifest.NewParser(logger, pool),
		pool:   pool,
	}
}

// Build parses the manifest text and appends the manifest repository entry.
// A manifest that cannot be parsed yields a snapshot without projects; the
// error is logged and never returned.
func (builder *Builder) Build(input Input) *RepositorySnapshot {
	projects, parseError := builder.parser.Parse(input.ManifestText)
	if parseError != nil {
		builder.logger.Warn(malformedManifestMessageConstant, zap.Error(parseError), zap.String(logFieldBranchConstant, input.Branch))
		return newRepositorySnapshot(input.ManifestText, input.Branch, nil)
	}

	projects[ManifestRepositoryPath] = builder.pool.Intern(manifest.ProjectEntry{
		Path:          ManifestRepositoryPath,
		ServerPath:    ManifestRepositoryPath,
		Revision:      input.ManifestRevision,
		RepositoryURL: input.ManifestRepositoryURL,
	})
	builder.logger.Info(
		manifestRevisionMessageConstant,
		zap.String(logFieldRevisionConstant, input.ManifestRevision),
		zap.String(logFieldBranchConstant, input.Branch),
		zap.Int(logFieldProjectCountConstant, len(projects)),
	)
	return newRepositorySnapshot(input.ManifestText, input.Branch, projects)
}

// Restore rebuilds a snapshot from persisted entries.
func Restore(record Record, pool *manifest.EntryPool) *RepositorySnapshot {
	projects := make(map[string]*manifest.ProjectEntry, len(record.Projects))
	for _, entry := range record.Projects {
		if len(entry.Path) == 0 {
			continue
		}
		projects[entry.Path] = pool.Intern(entry)
	}
	return newRepositorySnapshot(record.ManifestText, record.Branch, projects)
}

func newRepositorySnapshot(manifestText string, branch string, projects map[string]*manifest.ProjectEntry) *RepositorySnapshot {
	if projects == nil {
		projects = make(map[string]*manifest.ProjectEntry)
	}
	return &RepositorySnapshot{
		manifestText: manifestText,
		branch:       branch,
		projects:     projects,
		paths:        manifest.SortedPaths(projects),
	}
}

// ManifestText returns the raw manifest the snapshot was built from.
func (snapshot *RepositorySnapshot) ManifestText() string {
	return snapshot.manifestText
}

// Branch returns the manifest branch; empty means absent.
func (snapshot *RepositorySnapshot) Branch() string {
	return snapshot.branch
}

// Len returns the number of projects, including the manifest repository entry.
func (snapshot *RepositorySnapshot) Len() int {
	return len(snapshot.paths)
}

// Paths returns project paths in ascending order.
func (snapshot *RepositorySnapshot) Paths() []string {
	return append([]string(nil), snapshot.paths...)
}

// Project returns the entry stored at the path.
func (snapshot *RepositorySnapshot) Project(projectPath string) (manifest.ProjectEntry, bool) {
	entry, found := snapshot.projects[projectPath]
	if !found {
		return manifest.ProjectEntry{}, false
	}
	return *entry, true
}

// Revision returns the revision pinned at the path, or an empty string when the path is unknown.
func (snapshot *RepositorySnapshot) Revision(projectPath string) string {
	entry, found := snapshot.projects[projectPath]
	if !found {
		return ""
	}
	return entry.Revision
}

// Entries returns every project in ascending path order.
func (snapshot *RepositorySnapshot) Entries() []manifest.ProjectEntry {
	entries := make([]manifest.ProjectEntry, 0, len(snapshot.paths))
	for _, projectPath := range snapshot.paths {
		entries = append(entries, *snapshot.projects[projectPath])
	}
	return entries
}

// Equal reports whether both snapshots share the branch and the project mapping.
// The raw manifest text does not take part in the comparison.
func (snapshot *RepositorySnapshot) Equal(other *RepositorySnapshot) bool {
	if snapshot == nil || other == nil {
		return snapshot == other
	}
	if snapshot.branch != other.branch || len(snapshot.projects) != len(other.projects) {
		return false
	}
	for projectPath, entry := range snapshot.projects {
		otherEntry, found := other.projects[projectPath]
		if !found || *entry != *otherEntry {
			return false
		}
	}
	return true
}

// Hash returns a digest consistent with Equal.
func (snapshot *RepositorySnapshot) Hash() uint64 {
	if snapshot == nil {
		return 0
	}
	hasher := fnv.New64a()
	writeHashField(hasher, snapshot.branch)
	for _, projectPath := range snapshot.paths {
		entry := snapshot.projects[projectPath]
		writeHashField(hasher, entry.Path)
		writeHashField(hasher, entry.ServerPath)
		writeHashField(hasher, entry.Revision)
		writeHashField(hasher, entry.RepositoryURL)
	}
	return hasher.Sum64()
}

func writeHashField(hasher io.Writer, value string) {
	var lengthPrefix [binary.MaxVarintLen64]byte
	prefixLength := binary.PutUvarint(lengthPrefix[:], uint64(len(value)))
	_, _ = hasher.Write(lengthPrefix[:prefixLength])
	_, _ = hasher.Write([]byte(value))
}

// Record is the persisted form of a snapshot.
type Record struct {
	Branch       string                  `yaml:"branch,omitempty" json:"branch,omitempty"`
	ManifestText string                  `yaml:"manifest,omitempty" json:"manifest,omitempty"`
	Projects     []manifest.ProjectEntry `yaml:"projects" json:"projects"`
}

// Record converts the snapshot into its persisted form with projects in ascending path order.
func (snapshot *RepositorySnapshot) Record() Record {
	return Record{
		Branch:       snapshot.branch,
		ManifestText: snapshot.manifestText,
		Projects:     snapshot.Entries(),
	}
}
