// Package tool obtains the external formatter: it downloads and unpacks a release archive,
// finds the binary inside it and keeps a durable, versioned copy in the tool cache.
package tool

import (
	"fmt"
	"net/url"
	"strings"
)

// VersionPlaceholder is replaced with the descriptor version in URL and ArchiveRoot.
const VersionPlaceholder = "{{version}}"

// LatestVersion asks for the newest published release of the tool's repository.
const LatestVersion = "latest"

const (
	DefaultName        = "pg_format"
	DefaultVersion     = "5.1"
	DefaultURL         = "https://github.com/darold/pgFormatter/archive/refs/tags/v" + VersionPlaceholder + ".zip"
	DefaultArchiveRoot = "pgFormatter-" + VersionPlaceholder
	DefaultRepository  = "darold/pgFormatter"
)

// Descriptor identifies one published release of the formatter and where to get it.
// Name is both the cache key and the file name of the executable inside the cached tree.
type Descriptor struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	URL         string `yaml:"url"`
	ArchiveRoot string `yaml:"archiveRoot"`
	Repository  string `yaml:"repository"`
}

// DefaultDescriptor returns the pgFormatter release the action has always used.
func DefaultDescriptor() Descriptor {
	return Descriptor{
		Name:        DefaultName,
		Version:     DefaultVersion,
		URL:         DefaultURL,
		ArchiveRoot: DefaultArchiveRoot,
		Repository:  DefaultRepository,
	}
}

// DownloadURL returns URL with the version substituted.
func (d Descriptor) DownloadURL() string {
	return strings.ReplaceAll(d.URL, VersionPlaceholder, d.Version)
}

// RootDir returns the name of the version-qualified folder at the top of the archive.
// An empty ArchiveRoot means the archive is not wrapped in a folder.
func (d Descriptor) RootDir() string {
	return strings.ReplaceAll(d.ArchiveRoot, VersionPlaceholder, d.Version)
}

// IsLatest reports whether the version still has to be resolved against the release API.
func (d Descriptor) IsLatest() bool {
	return strings.EqualFold(d.Version, LatestVersion)
}

// WithVersion returns a copy of d pinned to version. A leading "v" is dropped so that
// release tags can be used directly.
func (d Descriptor) WithVersion(version string) Descriptor {
	d.Version = strings.TrimPrefix(version, "v")
	return d
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%s@%s", d.Name, d.Version)
}

// Validate checks the descriptor is usable for a fetch.
func (d Descriptor) Validate() error {
	if d.Name == "" {
		return &InvalidDescriptorError{Reason: "tool name is empty"}
	}
	if strings.ContainsAny(d.Name, `/\`) {
		return &InvalidDescriptorError{Reason: fmt.Sprintf("tool name %q must not contain a path separator", d.Name)}
	}
	if d.Version == "" {
		return &InvalidDescriptorError{Reason: "tool version is empty"}
	}
	if d.IsLatest() && d.Repository == "" {
		return &InvalidDescriptorError{Reason: "version 'latest' requires a repository"}
	}
	u, err := url.Parse(d.DownloadURL())
	if err != nil {
		return &InvalidDescriptorError{Reason: fmt.Sprintf("download url %q is invalid: %v", d.URL, err)}
	}
	switch u.Scheme {
	case "http", "https", "file":
	default:
		return &InvalidDescriptorError{Reason: fmt.Sprintf("download url %q must use http, https or file", d.URL)}
	}
	return nil
}
