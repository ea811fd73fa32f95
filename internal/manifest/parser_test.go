package manifest_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/reposcm/internal/manifest"
)

const (
	testRemoteManifestConstant = `<?xml version="1.0" encoding="UTF-8"?>
<manifest>
  <remote name="aosp" fetch="https://android.googlesource.com" />
  <remote name="mirror" fetch="https://mirror.example.com/git" />
  <default remote="aosp" revision="main" />
  <project path="build/make" name="platform/build" revision="1111111111111111111111111111111111111111" />
  <project name="platform/art" revision="2222222222222222222222222222222222222222" />
  <project path="vendor/tools" name="vendor/tools" revision="3333333333333333333333333333333333333333" remote="mirror" />
</manifest>`
	testUnresolvableManifestConstant = `<manifest>
  <remote name="origin" fetch="ssh://git.example.com" />
  <project path="first" name="first" revision="aaaa" remote="missing" />
  <project path="second" name="second" revision="bbbb" remote="origin" />
</manifest>`
	testNoDefaultManifestConstant = `<manifest>
  <project path="lonely" name="lonely" revision="cccc" />
</manifest>`
	testLiteralDefaultManifestConstant = `<manifest>
  <default remote="https://literal.example.com" />
  <default remote="ignored" />
  <project name="tools/repo" revision="dddd" />
</manifest>`
	testIncompleteManifestConstant = `<manifest>
  <default remote="https://example.com" />
  <project path="no-revision" name="no-revision" />
  <project path="no-name" revision="eeee" />
  <project path="  padded  " name=" padded/server " revision=" ffff " />
</manifest>`
	testDuplicatePathManifestConstant = `<manifest>
  <default remote="https://example.com" />
  <project path="shared" name="one" revision="1" />
  <project path="shared" name="two" revision="2" />
</manifest>`
	testMissingFetchManifestConstant = `<manifest>
  <remote name="nofetch" />
  <project path="p" name="p" revision="9" remote="nofetch" />
</manifest>`
	testWrongRootManifestConstant   = `<configuration><project path="a" name="a" revision="1" /></configuration>`
	testTruncatedManifestConstant   = `<manifest><project path="a" name="a" revision="1" />`
	testEmptyManifestConstant       = ``
	testProjectAddedMessageConstant = "Added a project"
)

func TestParserResolvesProjects(testInstance *testing.T) {
	testCases := []struct {
		name             string
		manifestText     string
		expectedProjects map[string]manifest.ProjectEntry
		expectedWarnings int
	}{
		{
			name:         "remote_and_default_resolution",
			manifestText: testRemoteManifestConstant,
			expectedProjects: map[string]manifest.ProjectEntry{
				"build/make": {
					Path:          "build/make",
					ServerPath:    "platform/build",
					Revision:      "1111111111111111111111111111111111111111",
					RepositoryURL: "https://android.googlesource.com/platform/build.git",
				},
				"platform/art": {
					Path:          "platform/art",
					ServerPath:    "platform/art",
					Revision:      "2222222222222222222222222222222222222222",
					RepositoryURL: "https://android.googlesource.com/platform/art.git",
				},
				"vendor/tools": {
					Path:          "vendor/tools",
					ServerPath:    "vendor/tools",
					Revision:      "3333333333333333333333333333333333333333",
					RepositoryURL: "https://mirror.example.com/git/vendor/tools.git",
				},
			},
		},
		{
			name:         "unknown_remote_does_not_abort",
			manifestText: testUnresolvableManifestConstant,
			expectedProjects: map[string]manifest.ProjectEntry{
				"first":  {Path: "first", ServerPath: "first", Revision: "aaaa"},
				"second": {Path: "second", ServerPath: "second", Revision: "bbbb", RepositoryURL: "ssh://git.example.com/second.git"},
			},
			expectedWarnings: 1,
		},
		{
			name:         "missing_default_yields_empty_url",
			manifestText: testNoDefaultManifestConstant,
			expectedProjects: map[string]manifest.ProjectEntry{
				"lonely": {Path: "lonely", ServerPath: "lonely", Revision: "cccc"},
			},
			expectedWarnings: 1,
		},
		{
			name:         "first_default_wins_and_literal_base",
			manifestText: testLiteralDefaultManifestConstant,
			expectedProjects: map[string]manifest.ProjectEntry{
				"tools/repo": {Path: "tools/repo", ServerPath: "tools/repo", Revision: "dddd", RepositoryURL: "https://literal.example.com/tools/repo.git"},
			},
		},
		{
			name:         "incomplete_projects_skipped_and_attributes_trimmed",
			manifestText: testIncompleteManifestConstant,
			expectedProjects: map[string]manifest.ProjectEntry{
				"padded": {Path: "padded", ServerPath: "padded/server", Revision: "ffff", RepositoryURL: "https://example.com/padded/server.git"},
			},
		},
		{
			name:         "duplicate_path_last_wins",
			manifestText: testDuplicatePathManifestConstant,
			expectedProjects: map[string]manifest.ProjectEntry{
				"shared": {Path: "shared", ServerPath: "two", Revision: "2", RepositoryURL: "https://example.com/two.git"},
			},
		},
		{
			name:         "remote_without_fetch",
			manifestText: testMissingFetchManifestConstant,
			expectedProjects: map[string]manifest.ProjectEntry{
				"p": {Path: "p", ServerPath: "p", Revision: "9"},
			},
			expectedWarnings: 1,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			observedCore, observedLogs := observer.New(zapcore.DebugLevel)
			parser := manifest.NewParser(zap.New(observedCore), manifest.NewEntryPool())

			projects, parseError := parser.Parse(testCase.manifestText)
			require.NoError(testInstance, parseError)

			actualProjects := make(map[string]manifest.ProjectEntry, len(projects))
			for projectPath, entry := range projects {
				actualProjects[projectPath] = *entry
			}
			require.Equal(testInstance, testCase.expectedProjects, actualProjects)
			require.Equal(testInstance, testCase.expectedWarnings, observedLogs.FilterLevelExact(zapcore.WarnLevel).Len())
			require.Equal(testInstance, len(testCase.expectedProjects), observedLogs.FilterMessage(testProjectAddedMessageConstant).Len())
		})
	}
}

func TestParserRejectsMalformedManifests(testInstance *testing.T) {
	testCases := []struct {
		name         string
		manifestText string
	}{
		{name: "wrong_root_element", manifestText: testWrongRootManifestConstant},
		{name: "truncated_document", manifestText: testTruncatedManifestConstant},
		{name: "empty_document", manifestText: testEmptyManifestConstant},
		{name: "not_xml", manifestText: "repo: not a manifest"},
		{
			name:         "trailing_element_after_root",
			manifestText: `<manifest><remote name="o" fetch="https://h"/><default remote="o"/></manifest><project name="x" path="x" revision="r"/>`,
		},
		{name: "trailing_text_after_root", manifestText: `<manifest><project name="a" revision="r1"/></manifest>garbage-text`},
		{name: "text_before_root", manifestText: `garbage-text<manifest><project name="a" revision="r1"/></manifest>`},
		{name: "second_root_element", manifestText: `<manifest/><manifest><project name="a" revision="r1"/></manifest>`},
		{name: "namespaced_root_element", manifestText: `<x:manifest xmlns:x="urn:a"><project name="a" revision="r1"/></x:manifest>`},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			parser := manifest.NewParser(nil, nil)

			projects, parseError := parser.Parse(testCase.manifestText)
			require.Error(testInstance, parseError)
			require.Nil(testInstance, projects)
			require.ErrorIs(testInstance, parseError, manifest.ErrMalformedManifest)

			var malformedError manifest.MalformedManifestError
			require.True(testInstance, errors.As(parseError, &malformedError))
			require.NotEmpty(testInstance, malformedError.Reason)
		})
	}
}

func TestParserAcceptsMarkupAroundRoot(testInstance *testing.T) {
	manifestText := "<?xml version=\"1.0\"?>\n<!-- generated -->\n" +
		`<manifest><default remote="https://example.com" /><project name="a" revision="r1" /></manifest>` +
		"\n<!-- trailing -->\n\n"

	projects, parseError := manifest.NewParser(nil, nil).Parse(manifestText)
	require.NoError(testInstance, parseError)
	require.Len(testInstance, projects, 1)
	require.Equal(testInstance, "https://example.com/a.git", projects["a"].RepositoryURL)
}

func TestParserInternsEntriesAcrossParses(testInstance *testing.T) {
	pool := manifest.NewEntryPool()
	parser := manifest.NewParser(nil, pool)

	firstProjects, firstError := parser.Parse(testRemoteManifestConstant)
	require.NoError(testInstance, firstError)
	secondProjects, secondError := parser.Parse(testRemoteManifestConstant)
	require.NoError(testInstance, secondError)

	for projectPath, firstEntry := range firstProjects {
		require.Same(testInstance, firstEntry, secondProjects[projectPath])
	}
	require.Equal(testInstance, []string{"build/make", "platform/art", "vendor/tools"}, manifest.SortedPaths(firstProjects))
}
