package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/huff-lang/huffc/internal/cache"
	"github.com/huff-lang/huffc/internal/config"
	"github.com/huff-lang/huffc/internal/logging"
	"github.com/huff-lang/huffc/pkg/artifact"
	"github.com/huff-lang/huffc/pkg/ast"
	"github.com/huff-lang/huffc/pkg/codegen"
	"github.com/huff-lang/huffc/pkg/lexer"
	"github.com/huff-lang/huffc/pkg/parser"
	"github.com/huff-lang/huffc/pkg/resolver"
)

// Formatter is implemented by every stage's *Error type (spec §7's shared
// diagnostic contract).
type Formatter interface {
	error
	Format(useColors bool) string
}

type compileOptions struct {
	cfg         config.Config
	runtimeOnly bool
	immutables  map[string][]byte
	ctorArgs    []byte
}

// compileFile runs one entry file through the full pipeline: flatten,
// lex, parse, derive storage pointers, expand, churn. Parsing results are
// memoized in unitCache by the flattened source's content hash, since a
// batch compile with shared #include libraries would otherwise re-lex and
// re-parse identical bytes once per entry file.
func compileFile(log *logging.ContextLogger, unitCache *cache.LRUCache, path string, opts compileOptions) (*artifact.Artifact, error) {
	log = log.WithFile(path)

	t := logging.StartStage(log, logging.StageResolve)
	flat, err := resolver.Flatten(resolver.OSFiles{}, path)
	t.Done(err)
	if err != nil {
		return nil, err
	}

	contract, err := parseUnit(log, unitCache, flat.Source)
	if err != nil {
		return nil, err
	}

	fileInfo := artifactFile(path, flat)

	mainMacro := opts.cfg.MainMacro
	if mainMacro == "" {
		mainMacro = config.DefaultMainMacro
	}
	ctorMacro := opts.cfg.ConstructorMacro
	if ctorMacro == "" {
		ctorMacro = config.DefaultConstructorMacro
	}

	ct := logging.StartStage(log, logging.StageCodegen)
	runtime, immutableRefs, err := codegen.GenerateRuntimeBytecode(contract, mainMacro, opts.cfg.Shanghai, opts.cfg.MaxDepth)
	ct.Done(err)
	if err != nil {
		return nil, err
	}

	if opts.runtimeOnly {
		return artifact.BuildArtifact(contract, runtime, runtime, fileInfo), nil
	}

	ctorBytecode, err := codegen.GenerateConstructorBytecode(contract, ctorMacro, opts.cfg.Shanghai, opts.cfg.MaxDepth)
	if err != nil {
		return nil, err
	}

	cht := logging.StartStage(log, logging.StageChurn)
	initcode, err := codegen.Churn(ctorBytecode, runtime, immutableRefs, opts.immutables, opts.ctorArgs, opts.cfg.Shanghai)
	cht.Done(err)
	if err != nil {
		return nil, err
	}

	return artifact.BuildArtifact(contract, initcode, runtime, fileInfo), nil
}

// artifactFile builds the artifact's file descriptor from the resolver's
// flattened output: path is the entry file compiled, and dependencies are
// every other file the resolver transitively pulled in via #include, in
// flattened-source order (each file after the files it includes).
func artifactFile(path string, flat *resolver.Flattened) artifact.File {
	entry := filepath.Clean(path)
	var deps []string
	seen := map[string]bool{}
	for _, c := range flat.Chunks {
		if c.File == entry || seen[c.File] {
			continue
		}
		seen[c.File] = true
		deps = append(deps, c.File)
	}
	return artifact.File{Path: path, Source: flat.Source, Dependencies: deps}
}

// parseUnit lexes and parses flattened source, deriving storage pointers,
// reusing a cached Contract when this exact flattened source (byte for
// byte) has already been compiled earlier in the batch.
func parseUnit(log *logging.ContextLogger, unitCache *cache.LRUCache, flattened string) (*ast.Contract, error) {
	if u, ok := cache.LookupUnit(unitCache, flattened); ok {
		log.Debug("compile-unit cache hit")
		return u.Contract, nil
	}

	lt := logging.StartStage(log, logging.StageLex)
	toks, err := lexer.Lex(flattened)
	lt.Done(err)
	if err != nil {
		return nil, err
	}

	pt := logging.StartStage(log, logging.StageParse)
	contract, err := parser.Parse(toks, flattened)
	pt.Done(err)
	if err != nil {
		return nil, err
	}

	parser.DeriveStoragePointers(contract)
	cache.StoreUnit(unitCache, flattened, &cache.CompiledUnit{Contract: contract})
	return contract, nil
}

func runCompile(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	outdir, _ := cmd.Flags().GetString("outdir")
	mainFlag, _ := cmd.Flags().GetString("main")
	ctorFlag, _ := cmd.Flags().GetString("constructor")
	configPath, _ := cmd.Flags().GetString("config")
	argsHex, _ := cmd.Flags().GetString("args")
	immutableFlags, _ := cmd.Flags().GetStringToString("immutable")
	runtimeOnly, _ := cmd.Flags().GetBool("runtime-only")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	jsonLogs, _ := cmd.Flags().GetBool("json-logs")
	logFile, _ := cmd.Flags().GetString("log-file")

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading %s: %w", configPath, err)
	}
	if mainFlag != "" {
		cfg.MainMacro = mainFlag
	}
	if ctorFlag != "" {
		cfg.ConstructorMacro = ctorFlag
	}

	ctorArgs, err := hex.DecodeString(strings.TrimPrefix(argsHex, "0x"))
	if err != nil {
		return fmt.Errorf("--args: %w", err)
	}
	immutables := make(map[string][]byte, len(immutableFlags))
	for name, v := range immutableFlags {
		b, err := hex.DecodeString(strings.TrimPrefix(v, "0x"))
		if err != nil {
			return fmt.Errorf("--immutable %s: %w", name, err)
		}
		immutables[name] = b
	}

	logFormat := logging.TextFormat
	if jsonLogs {
		logFormat = logging.JSONFormat
	}
	logCfg := logging.LoggerConfig{MinLevel: logging.INFO, Format: logFormat, Outputs: []io.Writer{os.Stderr}, FilePath: logFile}
	logger, err := logging.NewLogger(logCfg)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer logger.Close()

	opts := compileOptions{cfg: cfg, runtimeOnly: runtimeOnly, immutables: immutables, ctorArgs: ctorArgs}
	unitCache := cache.NewLRUCache(cache.WithCapacity(1000))

	if len(args) == 1 && outdir == "" {
		unitLog := logger.WithUnitID(logging.NewUnitID())
		art, err := compileFile(unitLog, unitCache, args[0], opts)
		if err != nil {
			return formatCompileError(err)
		}
		data, err := art.MarshalIndent()
		if err != nil {
			return err
		}
		if output == "" {
			fmt.Println(string(data))
			return nil
		}
		if err := os.WriteFile(output, data, 0600); err != nil {
			return fmt.Errorf("writing %s: %w", output, err)
		}
		printSuccess(fmt.Sprintf("compiled %s -> %s", args[0], output))
		return nil
	}

	return compileBatch(logger, unitCache, args, outdir, concurrency, opts)
}

// compileBatch compiles many entry files concurrently, bounded by
// concurrency, writing one artifact JSON per input into outdir.
func compileBatch(logger *logging.Logger, unitCache *cache.LRUCache, files []string, outdir string, concurrency int, opts compileOptions) error {
	if outdir == "" {
		outdir = "."
	}
	if err := os.MkdirAll(outdir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", outdir, err)
	}
	if concurrency <= 0 {
		concurrency = 1
	}

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var failures []string

	for _, f := range files {
		f := f
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			unitLog := logger.WithUnitID(logging.NewUnitID())
			art, err := compileFile(unitLog, unitCache, f, opts)
			if err != nil {
				mu.Lock()
				failures = append(failures, fmt.Sprintf("%s: %v", f, formatCompileError(err)))
				mu.Unlock()
				return
			}

			data, err := art.MarshalIndent()
			if err != nil {
				mu.Lock()
				failures = append(failures, fmt.Sprintf("%s: %v", f, err))
				mu.Unlock()
				return
			}

			out := filepath.Join(outdir, strings.TrimSuffix(filepath.Base(f), filepath.Ext(f))+".json")
			if err := os.WriteFile(out, data, 0600); err != nil {
				mu.Lock()
				failures = append(failures, fmt.Sprintf("%s: writing %s: %v", f, out, err))
				mu.Unlock()
				return
			}
			printSuccess(fmt.Sprintf("compiled %s -> %s", f, out))
		}()
	}
	wg.Wait()

	if len(failures) > 0 {
		for _, f := range failures {
			printError(fmt.Errorf("%s", f))
		}
		return fmt.Errorf("%d of %d files failed to compile", len(failures), len(files))
	}
	return nil
}

// formatCompileError renders a pipeline error using the shared
// Format(useColors) contract every stage's *Error type implements, falling
// back to its plain Error() string for anything else.
func formatCompileError(err error) error {
	if f, ok := err.(Formatter); ok {
		return fmt.Errorf("%s", f.Format(true))
	}
	return err
}
