package tool

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// extractZip unpacks the zip at archive into dest, keeping the file modes stored in the archive.
// Nothing is written outside dest: entries naming a path above it, symlinks pointing out
// of it and entries reached through an extracted symlink are all rejected.
func extractZip(archive, dest string) error {
	r, err := zip.OpenReader(archive)
	if err != nil {
		return err
	}
	defer r.Close()

	dest = filepath.Clean(dest)
	for _, zf := range r.File {
		target := filepath.Join(dest, filepath.FromSlash(zf.Name))
		if !within(dest, target) {
			return fmt.Errorf("entry %q escapes the destination directory", zf.Name)
		}
		if err = checkNoSymlinks(dest, target); err != nil {
			return fmt.Errorf("entry %q: %w", zf.Name, err)
		}
		if err = extractEntry(zf, dest, target); err != nil {
			return fmt.Errorf("entry %q: %w", zf.Name, err)
		}
	}
	return nil
}

// within reports whether path is root or below it. Both must be clean.
func within(root, path string) bool {
	return path == root || strings.HasPrefix(path, root+string(os.PathSeparator))
}

// checkNoSymlinks fails if any existing component of target below dest is a symlink.
func checkNoSymlinks(dest, target string) error {
	rel, err := filepath.Rel(dest, target)
	if err != nil {
		return err
	}
	if rel == "." {
		return nil
	}

	cur := dest
	for _, part := range strings.Split(rel, string(os.PathSeparator)) {
		cur = filepath.Join(cur, part)
		info, lErr := os.Lstat(cur)
		if errors.Is(lErr, fs.ErrNotExist) {
			return nil
		}
		if lErr != nil {
			return lErr
		}
		if info.Mode()&os.ModeSymlink != 0 {
			return fmt.Errorf("path %s passes through a symbolic link", cur)
		}
	}
	return nil
}

func extractEntry(zf *zip.File, dest, target string) error {
	mode := zf.Mode()

	if mode.IsDir() {
		return os.MkdirAll(target, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	rc, err := zf.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	if mode&os.ModeSymlink != 0 {
		link, rErr := io.ReadAll(rc)
		if rErr != nil {
			return rErr
		}
		return extractSymlink(string(link), dest, target)
	}

	perm := mode.Perm()
	if perm == 0 {
		perm = 0o644
	}
	//nolint:gosec // target is checked against the destination root
	out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return err
	}
	//nolint:gosec // archives come from a pinned release
	if _, err = io.Copy(out, rc); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// extractSymlink creates target pointing at link, which must be relative and stay inside dest.
func extractSymlink(link, dest, target string) error {
	if link == "" || filepath.IsAbs(link) || strings.HasPrefix(link, "/") {
		return fmt.Errorf("symbolic link to %q is not allowed", link)
	}
	resolved := filepath.Join(filepath.Dir(target), filepath.FromSlash(link))
	if !within(dest, resolved) {
		return fmt.Errorf("symbolic link to %q escapes the destination directory", link)
	}
	return os.Symlink(link, target)
}
