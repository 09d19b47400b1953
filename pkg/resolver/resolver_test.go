package resolver

import (
	"strings"
	"testing"
)

func TestFlattenSingleFileNoIncludes(t *testing.T) {
	files := MemFiles{
		"main.huff": "#define macro MAIN() = takes(0) returns(0) {}\n",
	}
	f, err := Flatten(files, "main.huff")
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if f.Source != files["main.huff"] {
		t.Errorf("Source = %q, want %q", f.Source, files["main.huff"])
	}
	if len(f.Chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(f.Chunks))
	}
	if f.Chunks[0].File != "main.huff" {
		t.Errorf("chunk file = %q, want main.huff", f.Chunks[0].File)
	}
}

func TestFlattenResolvesIncludesDepthFirst(t *testing.T) {
	files := MemFiles{
		"main.huff":  "#include \"utils.huff\"\n#define macro MAIN() = takes(0) returns(0) {}\n",
		"utils.huff": "#define constant A = FREE_STORAGE_POINTER()\n",
	}
	f, err := Flatten(files, "main.huff")
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if len(f.Chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(f.Chunks))
	}
	// utils.huff is included before main.huff's own content, so its chunk
	// must appear first in the flattened source (depth-first order).
	if f.Chunks[0].File != "utils.huff" {
		t.Errorf("chunk 0 file = %q, want utils.huff", f.Chunks[0].File)
	}
	if f.Chunks[1].File != "main.huff" {
		t.Errorf("chunk 1 file = %q, want main.huff", f.Chunks[1].File)
	}
	if !strings.Contains(f.Source, "FREE_STORAGE_POINTER") {
		t.Error("expected flattened source to contain utils.huff's content")
	}
	if !strings.Contains(f.Source, "MAIN") {
		t.Error("expected flattened source to contain main.huff's content")
	}
}

func TestFlattenBreaksCircularIncludes(t *testing.T) {
	files := MemFiles{
		"a.huff": "#include \"b.huff\"\n#define constant A = FREE_STORAGE_POINTER()\n",
		"b.huff": "#include \"a.huff\"\n#define constant B = FREE_STORAGE_POINTER()\n",
	}
	f, err := Flatten(files, "a.huff")
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	// Both files' content should appear exactly once, despite the cycle.
	if strings.Count(f.Source, "constant A") != 1 {
		t.Errorf("expected 'constant A' exactly once, source = %q", f.Source)
	}
	if strings.Count(f.Source, "constant B") != 1 {
		t.Errorf("expected 'constant B' exactly once, source = %q", f.Source)
	}
}

func TestFlattenDeduplicatesDiamondIncludes(t *testing.T) {
	files := MemFiles{
		"main.huff": "#include \"left.huff\"\n#include \"right.huff\"\n",
		"left.huff": "#include \"shared.huff\"\n",
		"right.huff": "#include \"shared.huff\"\n",
		"shared.huff": "#define constant SHARED = FREE_STORAGE_POINTER()\n",
	}
	f, err := Flatten(files, "main.huff")
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if strings.Count(f.Source, "SHARED") != 1 {
		t.Errorf("expected shared.huff included exactly once, source = %q", f.Source)
	}
}

func TestFlattenMissingFileErrors(t *testing.T) {
	files := MemFiles{
		"main.huff": "#include \"missing.huff\"\n",
	}
	_, err := Flatten(files, "main.huff")
	if err == nil {
		t.Fatal("expected an error for a missing include")
	}
}

func TestAttributeFileMapsOffsetToOrigin(t *testing.T) {
	files := MemFiles{
		"main.huff":  "#include \"utils.huff\"\nmacro body here\n",
		"utils.huff": "constant A\n",
	}
	f, err := Flatten(files, "main.huff")
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	// Offset 0 is inside utils.huff's chunk (it's included first).
	if got := f.AttributeFile(0); got != "utils.huff" {
		t.Errorf("AttributeFile(0) = %q, want utils.huff", got)
	}
	mainStart := f.Chunks[1].Start
	if got := f.AttributeFile(mainStart); got != "main.huff" {
		t.Errorf("AttributeFile(%d) = %q, want main.huff", mainStart, got)
	}
}

func TestScanIncludesSkipsCommentedOutIncludes(t *testing.T) {
	src := "// #include \"ignored.huff\"\n#include \"real.huff\"\n/* #include \"also-ignored.huff\" */\n"
	got := ScanIncludes(src)
	if len(got) != 1 {
		t.Fatalf("ScanIncludes = %v, want 1 entry", got)
	}
	if got[0] != "real.huff" {
		t.Errorf("ScanIncludes[0] = %q, want real.huff", got[0])
	}
}

func TestScanIncludesSingleAndDoubleQuotes(t *testing.T) {
	src := `#include "double.huff"` + "\n" + `#include 'single.huff'` + "\n"
	got := ScanIncludes(src)
	if len(got) != 2 {
		t.Fatalf("ScanIncludes = %v, want 2 entries", got)
	}
	if got[0] != "double.huff" || got[1] != "single.huff" {
		t.Errorf("ScanIncludes = %v", got)
	}
}

func TestScanIncludesNoneFound(t *testing.T) {
	got := ScanIncludes("#define macro MAIN() = takes(0) returns(0) {}\n")
	if len(got) != 0 {
		t.Errorf("ScanIncludes = %v, want empty", got)
	}
}
