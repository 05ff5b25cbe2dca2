package tool

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/andyballingall/pgformat-action/internal/fsh"
)

// completeSuffix marks a cache entry whose copy finished. It is written last, so an
// interrupted copy is never mistaken for a hit.
const completeSuffix = ".complete"

// CacheEntry is one cached release of a tool.
type CacheEntry struct {
	Tool    string
	Version string
	Arch    string
	Dir     string // root of the cached tree
	Path    string // executable inside Dir
}

// Cache is a durable directory cache laid out like the GitHub Actions tool cache:
//
//	{root}/
//	  {tool}/
//	    {version}/
//	      {arch}/           (copy of the extracted tree)
//	      {arch}.complete
//
// Entries survive across runs that share the root. There is no locking: two runs
// populating the same key at once is not handled.
type Cache struct {
	root   string
	arch   string
	logger *slog.Logger
}

// NewCache creates a Cache rooted at root for the given architecture segment.
func NewCache(root, arch string, logger *slog.Logger) *Cache {
	return &Cache{
		root:   root,
		arch:   arch,
		logger: logger.With("component", "cache"),
	}
}

// Root returns the cache root directory.
func (c *Cache) Root() string {
	return c.root
}

func (c *Cache) entry(tool, version string) CacheEntry {
	version = cleanVersion(version)
	dir := filepath.Join(c.root, tool, version, c.arch)
	return CacheEntry{
		Tool:    tool,
		Version: version,
		Arch:    c.arch,
		Dir:     dir,
		Path:    filepath.Join(dir, tool),
	}
}

// Find looks up (tool, version). A hit requires the completion marker and the executable.
func (c *Cache) Find(tool, version string) (CacheEntry, bool) {
	e := c.entry(tool, version)

	if _, err := os.Stat(e.Dir + completeSuffix); err != nil {
		c.logger.Debug("cache miss", "tool", tool, "version", e.Version)
		return CacheEntry{}, false
	}
	info, err := os.Stat(e.Path)
	if err != nil || info.IsDir() {
		c.logger.Debug("cache entry incomplete", "tool", tool, "version", e.Version, "path", e.Path)
		return CacheEntry{}, false
	}

	c.logger.Debug("cache hit", "tool", tool, "version", e.Version, "path", e.Path)
	return e, true
}

// Add copies sourceDir into the cache under (tool, version) and returns the new entry.
// sourceDir must contain the executable named tool at its top level.
func (c *Cache) Add(sourceDir, tool, version string) (CacheEntry, error) {
	e := c.entry(tool, version)

	info, err := os.Stat(filepath.Join(sourceDir, tool))
	if err != nil {
		return CacheEntry{}, &CacheError{Tool: tool, Version: e.Version, Op: "add", Wrapped: err}
	}
	if info.IsDir() {
		return CacheEntry{}, &CacheError{
			Tool: tool, Version: e.Version, Op: "add",
			Wrapped: errors.New(filepath.Join(sourceDir, tool) + " is a directory"),
		}
	}

	if err = c.populate(sourceDir, e); err != nil {
		return CacheEntry{}, &CacheError{Tool: tool, Version: e.Version, Op: "add", Wrapped: err}
	}

	c.logger.Info("Cached "+tool+"@"+e.Version, "path", e.Path)
	return e, nil
}

func (c *Cache) populate(sourceDir string, e CacheEntry) error {
	marker := e.Dir + completeSuffix
	if err := os.Remove(marker); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := os.RemoveAll(e.Dir); err != nil {
		return err
	}
	if err := os.MkdirAll(e.Dir, 0o755); err != nil {
		return err
	}
	if err := fsh.CopyDir(sourceDir, e.Dir); err != nil {
		return err
	}
	return os.WriteFile(marker, nil, 0o644) //nolint:gosec // marker is an empty file
}

// CacheOrRetrieve returns the cached executable for (tool, version), adding sourceDir to
// the cache first if the entry is missing. A hit never reads sourceDir.
func (c *Cache) CacheOrRetrieve(sourceDir, tool, version string) (string, error) {
	if e, ok := c.Find(tool, version); ok {
		return e.Path, nil
	}
	e, err := c.Add(sourceDir, tool, version)
	if err != nil {
		return "", err
	}
	return e.Path, nil
}

// Versions lists the complete cached versions of tool for this architecture, oldest first.
func (c *Cache) Versions(tool string) ([]string, error) {
	names, err := fsh.SubdirectoryNames(filepath.Join(c.root, tool))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &CacheError{Tool: tool, Version: "*", Op: "list", Wrapped: err}
	}

	var versions []string
	for _, v := range names {
		if _, ok := c.Find(tool, v); ok {
			versions = append(versions, v)
		}
	}
	SortVersions(versions)
	return versions, nil
}

func cleanVersion(v string) string {
	return strings.TrimPrefix(strings.TrimSpace(v), "v")
}
