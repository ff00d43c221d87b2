package manifest

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidInput is returned when a request misses required fields.
	ErrInvalidInput = errors.New("invalid input")
	// ErrProfileNotFound is returned when no profile matches the package id.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrUnknownArtifactName is returned for names missing from the artifact table.
	ErrUnknownArtifactName = errors.New("unknown artifact name")
	// ErrArtifactNotFound is returned when a repository search matches nothing.
	ErrArtifactNotFound = errors.New("no artifact found matching the given properties")
	// ErrArtifactAmbiguous is returned when a repository search matches several items.
	ErrArtifactAmbiguous = errors.New("multiple artifacts found, exactly one expected")
	// ErrTagNotFound is returned by direct tag lookups that match nothing.
	ErrTagNotFound = errors.New("tag not found")
	// ErrNotConfigured is returned when an upstream system has no configured URL.
	ErrNotConfigured = errors.New("upstream is not configured")
)

// AmbiguousArtifactError lists the candidates of an ambiguous search.
type AmbiguousArtifactError struct {
	// Name is the logical artifact name that was resolved.
	Name string
	// URLs are the download URLs of every matching item.
	URLs []string
}

// Error implements error.
func (e *AmbiguousArtifactError) Error() string {
	return fmt.Sprintf("%s: %d artifacts found for %q: %s",
		ErrArtifactAmbiguous.Error(), len(e.URLs), e.Name, strings.Join(e.URLs, ", "))
}

// Unwrap allows errors.Is(err, ErrArtifactAmbiguous).
func (e *AmbiguousArtifactError) Unwrap() error {
	return ErrArtifactAmbiguous
}
