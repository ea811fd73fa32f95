package manifest

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"go.uber.org/zap"
)

const (
	manifestElementNameConstant             = "manifest"
	remoteElementNameConstant               = "remote"
	defaultElementNameConstant              = "default"
	projectElementNameConstant              = "project"
	nameAttributeConstant                   = "name"
	fetchAttributeConstant                  = "fetch"
	pathAttributeConstant                   = "path"
	revisionAttributeConstant               = "revision"
	remoteAttributeConstant                 = "remote"
	repositoryURLTemplateConstant           = "%s/%s.git"
	unexpectedRootReasonTemplateConstant    = "root element %q is not %q"
	emptyDocumentReasonConstant             = "document has no root element"
	decodingFailedReasonConstant            = "document could not be decoded"
	contentOutsideRootReasonConstant        = "content is not allowed outside the root element"
	projectAddedMessageConstant             = "Added a project"
	unnamedRemoteIgnoredMessageConstant     = "Ignoring remote without a name"
	defaultRemoteMissingMessageConstant     = "Failed to configure repository URL: manifest declares no default remote"
	projectRemoteMissingMessageConstant     = "Failed to configure repository URL: cannot find remote"
	remoteFetchMissingMessageConstant       = "Failed to configure repository URL: remote declares no fetch location"
	logFieldProjectConstant                 = "project"
	logFieldRemoteConstant                  = "remote"
	logFieldPathConstant                    = "path"
	logFieldRevisionConstant                = "revision"
	parsedManifestSummaryMessageConstant    = "Parsed manifest"
	logFieldProjectCountConstant            = "project_count"
	logFieldSkippedProjectCountConstant     = "skipped_project_count"
	skippedIncompleteProjectMessageConstant = "Skipping project without a name or revision"
)

// Parser turns manifest text into project entries keyed by checkout path.
type Parser struct {
	logger *zap.Logger
	pool   *EntryPool
}

// NewParser constructs a Parser. A nil logger disables logging and a nil pool disables interning.
func NewParser(logger *zap.Logger, pool *EntryPool) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{logger: logger, pool: pool}
}

type remoteDeclaration struct {
	fetch string
}

type projectDeclaration struct {
	path       string
	serverPath string
	revision   string
	remote     string
}

type manifestDocument struct {
	remotes  map[string]remoteDeclaration
	defaults map[string]string
	projects []projectDeclaration
}

// Parse decodes the manifest. Any decoding error or a root element other than
// "manifest" rejects the whole document with a MalformedManifestError.
// Projects missing a name or revision are skipped; projects whose remote cannot
// be resolved are kept with an empty repository URL.
func (parser *Parser) Parse(manifestText string) (map[string]*ProjectEntry, error) {
	document, decodeError := decodeManifestDocument(manifestText, parser.logger)
	if decodeError != nil {
		return nil, decodeError
	}

	projects := make(map[string]*ProjectEntry, len(document.projects))
	skippedProjectCount := 0
	for _, declaration := range document.projects {
		projectPath := declaration.path
		if len(projectPath) == 0 {
			projectPath = declaration.serverPath
		}
		if len(projectPath) == 0 || len(declaration.serverPath) == 0 || len(declaration.revision) == 0 {
			skippedProjectCount++
			parser.logger.Debug(skippedIncompleteProjectMessageConstant, zap.String(logFieldPathConstant, projectPath))
			continue
		}

		entry := ProjectEntry{
			Path:          projectPath,
			ServerPath:    declaration.serverPath,
			Revision:      declaration.revision,
			RepositoryURL: parser.resolveRepositoryURL(declaration, document),
		}
		projects[projectPath] = parser.pool.Intern(entry)
		parser.logger.Debug(
			projectAddedMessageConstant,
			zap.String(logFieldPathConstant, projectPath),
			zap.String(logFieldRevisionConstant, declaration.revision),
		)
	}

	parser.logger.Debug(
		parsedManifestSummaryMessageConstant,
		zap.Int(logFieldProjectCountConstant, len(projects)),
		zap.Int(logFieldSkippedProjectCountConstant, skippedProjectCount),
	)
	return projects, nil
}

func (parser *Parser) resolveRepositoryURL(declaration projectDeclaration, document manifestDocument) string {
	remoteBase, resolved := parser.resolveRemoteBase(declaration, document)
	if !resolved {
		return ""
	}
	return fmt.Sprintf(repositoryURLTemplateConstant, remoteBase, declaration.serverPath)
}

func (parser *Parser) resolveRemoteBase(declaration projectDeclaration, document manifestDocument) (string, bool) {
	if len(declaration.remote) > 0 {
		remote, found := document.remotes[declaration.remote]
		if !found {
			parser.warnUnresolvable(projectRemoteMissingMessageConstant, declaration.serverPath, declaration.remote)
			return "", false
		}
		return parser.fetchBase(remote, declaration.serverPath, declaration.remote)
	}

	defaultRemote := strings.TrimSpace(document.defaults[remoteAttributeConstant])
	if len(defaultRemote) == 0 {
		parser.warnUnresolvable(defaultRemoteMissingMessageConstant, declaration.serverPath, "")
		return "", false
	}
	if remote, found := document.remotes[defaultRemote]; found {
		return parser.fetchBase(remote, declaration.serverPath, defaultRemote)
	}
	// A default remote that names no declared remote is used as the base itself.
	return defaultRemote, true
}

func (parser *Parser) fetchBase(remote remoteDeclaration, serverPath string, remoteName string) (string, bool) {
	if len(remote.fetch) == 0 {
		parser.warnUnresolvable(remoteFetchMissingMessageConstant, serverPath, remoteName)
		return "", false
	}
	return remote.fetch, true
}

func (parser *Parser) warnUnresolvable(message string, serverPath string, remoteName string) {
	parser.logger.Warn(
		message,
		zap.String(logFieldProjectConstant, serverPath),
		zap.String(logFieldRemoteConstant, remoteName),
	)
}

func decodeManifestDocument(manifestText string, logger *zap.Logger) (manifestDocument, error) {
	document := manifestDocument{
		remotes:  make(map[string]remoteDeclaration),
		defaults: make(map[string]string),
	}

	decoder := xml.NewDecoder(strings.NewReader(manifestText))
	rootSeen := false
	rootClosed := false
	defaultSeen := false
	depth := 0
	for {
		token, tokenError := decoder.Token()
		if errors.Is(tokenError, io.EOF) {
			break
		}
		if tokenError != nil {
			return manifestDocument{}, MalformedManifestError{Reason: decodingFailedReasonConstant, Cause: tokenError}
		}

		var startElement xml.StartElement
		switch typedToken := token.(type) {
		case xml.CharData:
			if depth == 0 && len(strings.TrimSpace(string(typedToken))) > 0 {
				return manifestDocument{}, MalformedManifestError{Reason: contentOutsideRootReasonConstant}
			}
			continue
		case xml.EndElement:
			depth--
			if depth == 0 {
				rootClosed = true
			}
			continue
		case xml.StartElement:
			depth++
			startElement = typedToken
		default:
			continue
		}

		if rootClosed {
			return manifestDocument{}, MalformedManifestError{Reason: contentOutsideRootReasonConstant}
		}

		if !rootSeen {
			rootSeen = true
			if startElement.Name.Local != manifestElementNameConstant || len(startElement.Name.Space) != 0 {
				return manifestDocument{}, MalformedManifestError{
					Reason: fmt.Sprintf(unexpectedRootReasonTemplateConstant, qualifiedName(startElement.Name), manifestElementNameConstant),
				}
			}
			continue
		}

		if len(startElement.Name.Space) != 0 {
			continue
		}

		switch startElement.Name.Local {
		case remoteElementNameConstant:
			remoteName := trimmedAttribute(startElement, nameAttributeConstant)
			if len(remoteName) == 0 {
				logger.Debug(unnamedRemoteIgnoredMessageConstant)
				continue
			}
			document.remotes[remoteName] = remoteDeclaration{fetch: trimmedAttribute(startElement, fetchAttributeConstant)}
		case defaultElementNameConstant:
			if defaultSeen {
				continue
			}
			defaultSeen = true
			for _, attribute := range startElement.Attr {
				document.defaults[attribute.Name.Local] = attribute.Value
			}
		case projectElementNameConstant:
			document.projects = append(document.projects, projectDeclaration{
				path:       trimmedAttribute(startElement, pathAttributeConstant),
				serverPath: trimmedAttribute(startElement, nameAttributeConstant),
				revision:   trimmedAttribute(startElement, revisionAttributeConstant),
				remote:     trimmedAttribute(startElement, remoteAttributeConstant),
			})
		}
	}

	if !rootSeen {
		return manifestDocument{}, MalformedManifestError{Reason: emptyDocumentReasonConstant}
	}
	return document, nil
}

func qualifiedName(name xml.Name) string {
	if len(name.Space) == 0 {
		return name.Local
	}
	return name.Space + ":" + name.Local
}

func trimmedAttribute(element xml.StartElement, attributeName string) string {
	for _, attribute := range element.Attr {
		if attribute.Name.Local == attributeName && len(attribute.Name.Space) == 0 {
			return strings.TrimSpace(attribute.Value)
		}
	}
	return ""
}

// SortedPaths returns the keys of a project mapping in ascending order.
func SortedPaths(projects map[string]*ProjectEntry) []string {
	paths := make([]string, 0, len(projects))
	for projectPath := range projects {
		paths = append(paths, projectPath)
	}
	sort.Strings(paths)
	return paths
}
