package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5"

	"github.com/temirov/reposcm/internal/execshell"
)

const (
	gitRevParseSubcommandConstant           = "rev-parse"
	gitHeadReferenceConstant                = "HEAD"
	gitExecutorNotConfiguredMessageConstant = "git executor not configured"
	emptyHeadMessageConstant                = "HEAD did not resolve to a revision"
	headResolutionErrorTemplateConstant     = "resolve HEAD in %s: %w"
	repositoryOpenErrorTemplateConstant     = "open repository %s: %w"
	headSourceProcessConstant               = "process"
	headSourceGoGitConstant                 = "go-git"
	unsupportedHeadSourceTemplateConstant   = "unsupported head source %q"
)

// ErrGitExecutorNotConfigured indicates the process resolver was constructed without an executor.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorNotConfiguredMessageConstant)

// ErrEmptyHead indicates git reported no revision for HEAD.
var ErrEmptyHead = errors.New(emptyHeadMessageConstant)

// HeadSource selects how HEAD is resolved.
type HeadSource string

// Supported head sources.
const (
	HeadSourceProcess HeadSource = HeadSource(headSourceProcessConstant)
	HeadSourceGoGit   HeadSource = HeadSource(headSourceGoGitConstant)
)

// HeadResolver reports the commit checked out in a repository.
type HeadResolver interface {
	ResolveHead(executionContext context.Context, repositoryPath string) (string, error)
}

// GitExecutor runs git commands.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// NewHeadResolver constructs the resolver for the requested source. An empty source selects the process resolver.
func NewHeadResolver(source HeadSource, executor GitExecutor) (HeadResolver, error) {
	switch HeadSource(strings.ToLower(strings.TrimSpace(string(source)))) {
	case "", HeadSourceProcess:
		processResolver, constructionError := NewProcessHeadResolver(executor)
		if constructionError != nil {
			return nil, constructionError
		}
		return processResolver, nil
	case HeadSourceGoGit:
		return NewOpenedRepositoryHeadResolver(), nil
	default:
		return nil, fmt.Errorf(unsupportedHeadSourceTemplateConstant, source)
	}
}

// ProcessHeadResolver resolves HEAD with `git rev-parse HEAD`.
type ProcessHeadResolver struct {
	executor GitExecutor
}

// NewProcessHeadResolver constructs a ProcessHeadResolver.
func NewProcessHeadResolver(executor GitExecutor) (*ProcessHeadResolver, error) {
	if executor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	return &ProcessHeadResolver{executor: executor}, nil
}

// ResolveHead returns the trimmed output of `git rev-parse HEAD`.
func (resolver *ProcessHeadResolver) ResolveHead(executionContext context.Context, repositoryPath string) (string, error) {
	executionResult, executionError := resolver.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        []string{gitRevParseSubcommandConstant, gitHeadReferenceConstant},
		WorkingDirectory: repositoryPath,
	})
	if executionError != nil {
		return "", fmt.Errorf(headResolutionErrorTemplateConstant, repositoryPath, executionError)
	}

	revision := strings.TrimSpace(executionResult.StandardOutput)
	if len(revision) == 0 {
		return "", fmt.Errorf(headResolutionErrorTemplateConstant, repositoryPath, ErrEmptyHead)
	}
	return revision, nil
}

// OpenedRepositoryHeadResolver resolves HEAD by reading the repository with go-git.
type OpenedRepositoryHeadResolver struct{}

// NewOpenedRepositoryHeadResolver constructs an OpenedRepositoryHeadResolver.
func NewOpenedRepositoryHeadResolver() *OpenedRepositoryHeadResolver {
	return &OpenedRepositoryHeadResolver{}
}

// ResolveHead opens the repository at the path and returns the hash HEAD points to.
func (resolver *OpenedRepositoryHeadResolver) ResolveHead(executionContext context.Context, repositoryPath string) (string, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return "", fmt.Errorf(headResolutionErrorTemplateConstant, repositoryPath, contextError)
	}

	repository, openError := git.PlainOpenWithOptions(repositoryPath, &git.PlainOpenOptions{EnableDotGitCommonDir: true})
	if openError != nil {
		return "", fmt.Errorf(repositoryOpenErrorTemplateConstant, repositoryPath, openError)
	}

	headReference, headError := repository.Head()
	if headError != nil {
		return "", fmt.Errorf(headResolutionErrorTemplateConstant, repositoryPath, headError)
	}
	return headReference.Hash().String(), nil
}
