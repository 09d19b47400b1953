package resolver

import (
	"fmt"
	"os"
	"path/filepath"
)

// OSFiles reads includes from the real filesystem, relative to the
// directory each importing file lives in.
type OSFiles struct{}

func (OSFiles) Read(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (OSFiles) Dir(path string) string {
	return filepath.Dir(path)
}

func (OSFiles) Join(dir, rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(dir, rel)
}

// MemFiles is an in-memory FileProvider keyed by a flat path->contents map,
// used by tests that don't want to touch a real filesystem.
type MemFiles map[string]string

func (m MemFiles) Read(path string) (string, error) {
	src, ok := m[path]
	if !ok {
		return "", fmt.Errorf("no such file: %s", path)
	}
	return src, nil
}

func (m MemFiles) Dir(path string) string {
	return filepath.Dir(path)
}

func (m MemFiles) Join(dir, rel string) string {
	if dir == "." || dir == "" {
		return rel
	}
	return filepath.Join(dir, rel)
}
