package gitrepo_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/require"

	"github.com/temirov/reposcm/internal/execshell"
	"github.com/temirov/reposcm/internal/gitrepo"
)

const (
	testRepositoryPathConstant = "/workspace/.repo/manifests"
	testRevisionConstant       = "0123456789abcdef0123456789abcdef01234567"
	testCommitMessageConstant  = "Initial manifest"
	testManifestFileConstant   = "default.xml"
)

type stubGitExecutor struct {
	executionResult execshell.ExecutionResult
	executionError  error
	recordedDetails []execshell.CommandDetails
}

func (executor *stubGitExecutor) ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	executor.recordedDetails = append(executor.recordedDetails, details)
	return executor.executionResult, executor.executionError
}

func TestProcessHeadResolver(testInstance *testing.T) {
	testCases := []struct {
		name             string
		executor         *stubGitExecutor
		expectedRevision string
		expectedError    error
	}{
		{
			name:             "trims_output",
			executor:         &stubGitExecutor{executionResult: execshell.ExecutionResult{StandardOutput: testRevisionConstant + "\n"}},
			expectedRevision: testRevisionConstant,
		},
		{
			name:          "empty_output",
			executor:      &stubGitExecutor{executionResult: execshell.ExecutionResult{StandardOutput: "  \n"}},
			expectedError: gitrepo.ErrEmptyHead,
		},
		{
			name:          "command_failure",
			executor:      &stubGitExecutor{executionError: errors.New("fatal: not a git repository")},
			expectedError: nil,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			resolver, constructionError := gitrepo.NewProcessHeadResolver(testCase.executor)
			require.NoError(testInstance, constructionError)

			revision, resolveError := resolver.ResolveHead(context.Background(), testRepositoryPathConstant)

			require.Len(testInstance, testCase.executor.recordedDetails, 1)
			require.Equal(testInstance, []string{"rev-parse", "HEAD"}, testCase.executor.recordedDetails[0].Arguments)
			require.Equal(testInstance, testRepositoryPathConstant, testCase.executor.recordedDetails[0].WorkingDirectory)

			if len(testCase.expectedRevision) > 0 {
				require.NoError(testInstance, resolveError)
				require.Equal(testInstance, testCase.expectedRevision, revision)
				return
			}
			require.Error(testInstance, resolveError)
			require.Empty(testInstance, revision)
			if testCase.expectedError != nil {
				require.ErrorIs(testInstance, resolveError, testCase.expectedError)
			}
		})
	}
}

func TestProcessHeadResolverRequiresExecutor(testInstance *testing.T) {
	resolver, constructionError := gitrepo.NewProcessHeadResolver(nil)
	require.ErrorIs(testInstance, constructionError, gitrepo.ErrGitExecutorNotConfigured)
	require.Nil(testInstance, resolver)
}

func TestOpenedRepositoryHeadResolver(testInstance *testing.T) {
	repositoryPath := testInstance.TempDir()
	repository, initError := git.PlainInit(repositoryPath, false)
	require.NoError(testInstance, initError)

	worktree, worktreeError := repository.Worktree()
	require.NoError(testInstance, worktreeError)
	require.NoError(testInstance, os.WriteFile(filepath.Join(repositoryPath, testManifestFileConstant), []byte("<manifest/>"), 0o644))
	_, addError := worktree.Add(testManifestFileConstant)
	require.NoError(testInstance, addError)
	commitHash, commitError := worktree.Commit(testCommitMessageConstant, &git.CommitOptions{
		Author: &object.Signature{Name: "Builder", Email: "builder@example.com", When: time.Unix(1700000000, 0)},
	})
	require.NoError(testInstance, commitError)

	resolver := gitrepo.NewOpenedRepositoryHeadResolver()
	revision, resolveError := resolver.ResolveHead(context.Background(), repositoryPath)
	require.NoError(testInstance, resolveError)
	require.Equal(testInstance, commitHash.String(), revision)

	_, missingError := resolver.ResolveHead(context.Background(), filepath.Join(repositoryPath, "missing"))
	require.Error(testInstance, missingError)

	cancelledContext, cancel := context.WithCancel(context.Background())
	cancel()
	_, cancelledError := resolver.ResolveHead(cancelledContext, repositoryPath)
	require.ErrorIs(testInstance, cancelledError, context.Canceled)
}

func TestNewHeadResolver(testInstance *testing.T) {
	processResolver, processError := gitrepo.NewHeadResolver(gitrepo.HeadSourceProcess, &stubGitExecutor{})
	require.NoError(testInstance, processError)
	require.IsType(testInstance, &gitrepo.ProcessHeadResolver{}, processResolver)

	defaultResolver, defaultError := gitrepo.NewHeadResolver("", &stubGitExecutor{})
	require.NoError(testInstance, defaultError)
	require.IsType(testInstance, &gitrepo.ProcessHeadResolver{}, defaultResolver)

	goGitResolver, goGitError := gitrepo.NewHeadResolver(gitrepo.HeadSourceGoGit, nil)
	require.NoError(testInstance, goGitError)
	require.IsType(testInstance, &gitrepo.OpenedRepositoryHeadResolver{}, goGitResolver)

	_, unsupportedError := gitrepo.NewHeadResolver("svn", nil)
	require.Error(testInstance, unsupportedError)
}
