package tool

import (
	"fmt"
)

type InvalidDescriptorError struct {
	Reason string
}

func (e *InvalidDescriptorError) Error() string {
	return fmt.Sprintf("invalid tool descriptor: %s", e.Reason)
}

// DownloadError reports a failed archive fetch. Status is zero when no response arrived.
type DownloadError struct {
	URL     string
	Status  int
	Wrapped error
}

func (e *DownloadError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("download of %s failed with HTTP status %d", e.URL, e.Status)
	}
	return fmt.Sprintf("download of %s failed: %v", e.URL, e.Wrapped)
}

func (e *DownloadError) Unwrap() error {
	return e.Wrapped
}

// ExtractionError reports an archive that could not be unpacked. Archive is the download URL.
type ExtractionError struct {
	Archive string
	Wrapped error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("cannot extract %s: %v", e.Archive, e.Wrapped)
}

func (e *ExtractionError) Unwrap() error {
	return e.Wrapped
}

// BinaryNotFoundError means the extracted tree does not follow the expected naming convention.
type BinaryNotFoundError struct {
	Root string
	Path string
}

func (e *BinaryNotFoundError) Error() string {
	return fmt.Sprintf("tool binary %s not found in extracted archive %s", e.Path, e.Root)
}

type CacheError struct {
	Tool    string
	Version string
	Op      string
	Wrapped error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("tool cache %s failed for %s@%s: %v", e.Op, e.Tool, e.Version, e.Wrapped)
}

func (e *CacheError) Unwrap() error {
	return e.Wrapped
}

type ReleaseLookupError struct {
	Repository string
	Wrapped    error
}

func (e *ReleaseLookupError) Error() string {
	return fmt.Sprintf("cannot resolve latest release of %s: %v", e.Repository, e.Wrapped)
}

func (e *ReleaseLookupError) Unwrap() error {
	return e.Wrapped
}

// InvalidVersionError is returned for a version that is not a release number.
type InvalidVersionError struct {
	Version string
}

func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("'%s' is not a release number", e.Version)
}
