package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/huff-lang/huffc/internal/cache"
	"github.com/huff-lang/huffc/internal/config"
	"github.com/huff-lang/huffc/internal/logging"
)

func testLogger(t *testing.T) *logging.ContextLogger {
	t.Helper()
	l, err := logging.NewLogger(logging.LoggerConfig{MinLevel: logging.ERROR, Outputs: []io.Writer{io.Discard}})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	t.Cleanup(func() { l.Close() })
	return l.WithUnitID("test")
}

func writeSource(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "Main.huff")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestCompileFileProducesRuntimeOnlyArtifact(t *testing.T) {
	path := writeSource(t, `
		#define macro MAIN() = takes(0) returns(0) { caller pop }
	`)
	unitCache := cache.NewLRUCache(cache.WithCapacity(10))
	opts := compileOptions{cfg: config.Default(), runtimeOnly: true}

	art, err := compileFile(testLogger(t), unitCache, path, opts)
	if err != nil {
		t.Fatalf("compileFile: %v", err)
	}
	if art.Runtime == "" {
		t.Error("expected non-empty deployed bytecode")
	}
	if art.Bytecode != art.Runtime {
		t.Error("expected runtime-only compile to set initcode equal to runtime")
	}
	if art.File.Path != path {
		t.Errorf("File.Path = %q, want %q", art.File.Path, path)
	}
}

func TestCompileFileProducesConstructorAndRuntime(t *testing.T) {
	path := writeSource(t, `
		#define macro CONSTRUCTOR() = takes(0) returns(0) {}
		#define macro MAIN() = takes(0) returns(0) { caller pop }
	`)
	unitCache := cache.NewLRUCache(cache.WithCapacity(10))
	opts := compileOptions{cfg: config.Default()}

	art, err := compileFile(testLogger(t), unitCache, path, opts)
	if err != nil {
		t.Fatalf("compileFile: %v", err)
	}
	if art.Runtime == "" {
		t.Error("expected non-empty deployed bytecode")
	}
	if art.Bytecode == art.Runtime {
		t.Error("expected initcode to differ from bare runtime bytecode")
	}
}

func TestCompileFileCachesParsedUnitAcrossCalls(t *testing.T) {
	path := writeSource(t, `
		#define macro MAIN() = takes(0) returns(0) { caller pop }
	`)
	unitCache := cache.NewLRUCache(cache.WithCapacity(10))
	opts := compileOptions{cfg: config.Default(), runtimeOnly: true}

	if _, err := compileFile(testLogger(t), unitCache, path, opts); err != nil {
		t.Fatalf("first compileFile: %v", err)
	}
	if unitCache.Stats().EntryCount == 0 {
		t.Error("expected the first compile to populate the unit cache")
	}
	if _, err := compileFile(testLogger(t), unitCache, path, opts); err != nil {
		t.Fatalf("second compileFile: %v", err)
	}
	if unitCache.Stats().Hits == 0 {
		t.Error("expected the second compile to hit the unit cache")
	}
}

func TestCompileFilePropagatesParseError(t *testing.T) {
	path := writeSource(t, `#define macro MAIN(`)
	unitCache := cache.NewLRUCache(cache.WithCapacity(10))
	opts := compileOptions{cfg: config.Default(), runtimeOnly: true}

	_, err := compileFile(testLogger(t), unitCache, path, opts)
	if err == nil {
		t.Fatal("expected a parse error for malformed source")
	}
}

func TestFormatCompileErrorUsesFormatterContract(t *testing.T) {
	path := writeSource(t, `
		#define macro MAIN() = takes(0) returns(0) { missing_macro_call() }
	`)
	unitCache := cache.NewLRUCache(cache.WithCapacity(10))
	opts := compileOptions{cfg: config.Default(), runtimeOnly: true}

	_, err := compileFile(testLogger(t), unitCache, path, opts)
	if err == nil {
		t.Fatal("expected an undefined-macro error")
	}
	formatted := formatCompileError(err)
	if formatted == nil || formatted.Error() == "" {
		t.Error("expected formatCompileError to return a non-empty rendered error")
	}
}
