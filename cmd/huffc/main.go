package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:     "huffc",
		Short:   "Huff dialect compiler - assembles EVM bytecode from macro-based assembly",
		Version: version,
	}
	rootCmd.SetVersionTemplate("huffc v{{.Version}}\n")

	compileCmd := &cobra.Command{
		Use:   "compile <file> [files...]",
		Short: "Compile one or more entry files to EVM bytecode artifacts",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runCompile,
	}
	compileCmd.Flags().StringP("output", "o", "", "Output file (single input only; default: stdout)")
	compileCmd.Flags().StringP("outdir", "d", "", "Output directory for batch compiles (one .json artifact per input)")
	compileCmd.Flags().String("main", "", "Main macro name (default from huffc.yaml or MAIN)")
	compileCmd.Flags().String("constructor", "", "Constructor macro name (default from huffc.yaml or CONSTRUCTOR)")
	compileCmd.Flags().String("config", "huffc.yaml", "Path to huffc.yaml")
	compileCmd.Flags().String("args", "", "Hex-encoded, ABI-packed constructor arguments appended to init-code")
	compileCmd.Flags().StringToString("immutable", nil, "name=hexvalue pairs for __IMMUTABLE(name) placeholders")
	compileCmd.Flags().Bool("runtime-only", false, "Emit only the deployed runtime bytecode, skipping the constructor/bootstrap")
	compileCmd.Flags().Int("concurrency", 8, "Maximum files compiled in parallel in batch mode")
	compileCmd.Flags().Bool("json-logs", false, "Emit structured JSON logs instead of text")
	compileCmd.Flags().String("log-file", "", "Path to write logs to, in addition to stderr")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("huffc v%s\n", version)
		},
	}

	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		printError(err)
		os.Exit(1)
	}
}

var (
	errorColor   = color.New(color.FgRed)
	warningColor = color.New(color.FgYellow)
	successColor = color.New(color.FgGreen)
	infoColor    = color.New(color.FgCyan)
)

func printError(err error) {
	errorColor.Fprintf(os.Stderr, "error: %s\n", err.Error())
}

func printWarning(msg string) {
	warningColor.Fprintf(os.Stderr, "warning: %s\n", msg)
}

func printSuccess(msg string) {
	successColor.Fprintf(os.Stderr, "%s\n", msg)
}

func printInfo(msg string) {
	infoColor.Fprintf(os.Stderr, "%s\n", msg)
}
