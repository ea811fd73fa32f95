package manifest

import (
	"errors"
	"fmt"
)

const (
	malformedManifestMessageConstant        = "malformed manifest"
	malformedManifestReasonTemplateConstant = "%s: %s"
	malformedManifestCauseTemplateConstant  = "%s: %s: %v"
)

// ErrMalformedManifest matches every MalformedManifestError through errors.Is.
var ErrMalformedManifest = errors.New(malformedManifestMessageConstant)

// MalformedManifestError reports a manifest that is not well-formed XML or whose root element is not a manifest.
type MalformedManifestError struct {
	Reason string
	Cause  error
}

// Error describes why the manifest was rejected.
func (malformedError MalformedManifestError) Error() string {
	if malformedError.Cause == nil {
		return fmt.Sprintf(malformedManifestReasonTemplateConstant, malformedManifestMessageConstant, malformedError.Reason)
	}
	return fmt.Sprintf(malformedManifestCauseTemplateConstant, malformedManifestMessageConstant, malformedError.Reason, malformedError.Cause)
}

// Is reports whether the target is ErrMalformedManifest.
func (malformedError MalformedManifestError) Is(target error) bool {
	return target == ErrMalformedManifest
}

// Unwrap exposes the underlying decoding error, if any.
func (malformedError MalformedManifestError) Unwrap() error {
	return malformedError.Cause
}
