package tool

import (
	"os"
	"path/filepath"
)

// Locate returns the directory inside an extracted archive that holds the tool binary.
// Release archives wrap their content in a version-qualified folder (d.RootDir()), and the
// binary named d.Name sits directly inside it. The returned directory is what gets cached.
func Locate(extractedRoot string, d Descriptor) (string, error) {
	dir := filepath.Join(extractedRoot, d.RootDir())
	bin := filepath.Join(dir, d.Name)

	info, err := os.Stat(bin)
	if err != nil || info.IsDir() {
		return "", &BinaryNotFoundError{Root: extractedRoot, Path: filepath.Join(d.RootDir(), d.Name)}
	}
	return dir, nil
}
