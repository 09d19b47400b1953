// Package resolver flattens a Huff entry file and its #include graph into a
// single source string, attributing every byte span back to the file it
// came from so diagnostics can still point at the right place after
// flattening (spec.md §4.3's "zipped lexer" span convention).
package resolver

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/huff-lang/huffc/pkg/token"
)

// FileProvider resolves an import path (relative to the importing file's
// directory) to file contents. Two implementations are provided: OSFiles
// for real compilation and MemFiles for tests.
type FileProvider interface {
	Read(path string) (string, error)
	Dir(path string) string
	Join(dir, rel string) string
}

// Chunk is one contiguous run of the flattened source that came from a
// single origin file, recorded so spans can be mapped back.
type Chunk struct {
	File  string
	Start int // offset into the flattened source
	End   int
}

// Flattened is the resolver's output: the concatenated source plus the
// chunk list used to re-attribute spans.
type Flattened struct {
	Source string
	Chunks []Chunk
}

// AttributeFile returns the origin file for a span's Start offset, or ""
// if it falls outside every known chunk.
func (f *Flattened) AttributeFile(offset int) string {
	for _, c := range f.Chunks {
		if offset >= c.Start && offset < c.End {
			return c.File
		}
	}
	return ""
}

// Attribute rewrites span.File in place based on span.Start.
func (f *Flattened) Attribute(span token.Span) token.Span {
	span.File = f.AttributeFile(span.Start)
	return span
}

// Flatten reads entry and every file it (transitively) #includes, in
// depth-first declaration order, concatenating their contents. A file
// already on the current DFS path is skipped with no error (spec §4.3's
// cycle-breaking — re-including a file already being processed is a no-op,
// matching the teacher's import deduplication in pkg/compiler's module
// loader) rather than an infinite recursion.
func Flatten(provider FileProvider, entry string) (*Flattened, error) {
	f := &Flattened{}
	visiting := map[string]bool{}
	visited := map[string]bool{}
	var b strings.Builder

	var walk func(path string) error
	walk = func(path string) error {
		abs := filepath.Clean(path)
		if visiting[abs] {
			return nil
		}
		if visited[abs] {
			return nil
		}
		visiting[abs] = true
		defer delete(visiting, abs)

		src, err := provider.Read(abs)
		if err != nil {
			return fmt.Errorf("resolver: reading %s: %w", abs, err)
		}

		for _, inc := range ScanIncludes(src) {
			childPath := provider.Join(provider.Dir(abs), inc)
			if err := walk(childPath); err != nil {
				return err
			}
		}

		start := b.Len()
		b.WriteString(src)
		if !strings.HasSuffix(src, "\n") {
			b.WriteByte('\n')
		}
		f.Chunks = append(f.Chunks, Chunk{File: abs, Start: start, End: b.Len()})
		visited[abs] = true
		return nil
	}

	if err := walk(entry); err != nil {
		return nil, err
	}
	f.Source = b.String()
	return f, nil
}

// ScanIncludes extracts every #include "path" / #include 'path' string from
// src, skipping line and block comments, without running the full lexer
// (the resolver needs this before it has decided on a single flattened
// source to lex).
func ScanIncludes(src string) []string {
	var out []string
	i := 0
	for i < len(src) {
		switch {
		case i+1 < len(src) && src[i] == '/' && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case i+1 < len(src) && src[i] == '/' && src[i+1] == '*':
			i += 2
			for i+1 < len(src) && !(src[i] == '*' && src[i+1] == '/') {
				i++
			}
			i += 2
		case strings.HasPrefix(src[i:], "#include"):
			i += len("#include")
			for i < len(src) && (src[i] == ' ' || src[i] == '\t') {
				i++
			}
			if i < len(src) && (src[i] == '"' || src[i] == '\'') {
				quote := src[i]
				i++
				start := i
				for i < len(src) && src[i] != quote {
					i++
				}
				out = append(out, src[start:i])
				if i < len(src) {
					i++
				}
			}
		default:
			i++
		}
	}
	return out
}
