// Package artifact builds the compiler's JSON build output: bytecode,
// runtime, ABI, and the source file this contract was compiled from
// (spec.md §4.5/§6). The shape follows the original Huff toolchain's
// huff_utils::artifact::Artifact/FileSource (a flat {bytecode, runtime,
// abi, file} document), not solc's nested standard-json layout.
package artifact

import (
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/huff-lang/huffc/pkg/ast"
)

// AbiParam is one entry in a function/event/error's "inputs"/"outputs" list.
type AbiParam struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Indexed    bool   `json:"indexed,omitempty"`
}

// AbiEntry is one top-level ABI array element.
type AbiEntry struct {
	Type            string     `json:"type"` // "function", "event", "error", "constructor"
	Name            string     `json:"name,omitempty"`
	Inputs          []AbiParam `json:"inputs"`
	Outputs         []AbiParam `json:"outputs,omitempty"`
	StateMutability string     `json:"stateMutability,omitempty"`
	Anonymous       bool       `json:"anonymous,omitempty"`
}

// Abi is the full ABI array for a contract.
type Abi []AbiEntry

// File describes the entry source this artifact was compiled from: its
// path, its fully flattened source text (post import-resolution), and the
// paths of every file it transitively #includes, in the order their
// contents appear in the flattened source (spec §6's "file: {path, source,
// dependencies}").
type File struct {
	Path         string   `json:"path"`
	Source       string   `json:"source"`
	Dependencies []string `json:"dependencies"`
}

// Artifact is the full compiled-contract JSON document: deploy (bytecode)
// and deployed (runtime) bytecode as bare hex strings, the ABI, and the
// originating file. Bytecode strings carry no "0x" prefix, matching the
// original toolchain's huff_utils::artifact::Artifact (a solc-style
// 0x-prefixed "object" field is deliberately not used here — nothing in
// this pipeline reads or writes solc-standard-json artifacts).
type Artifact struct {
	Bytecode string `json:"bytecode"`
	Runtime  string `json:"runtime"`
	Abi      Abi    `json:"abi"`
	File     File   `json:"file"`
}

func mutabilityString(m ast.Mutability) string {
	switch m {
	case ast.View:
		return "view"
	case ast.Pure:
		return "pure"
	case ast.Payable:
		return "payable"
	default:
		return "nonpayable"
	}
}

func paramsToAbi(params []ast.Param) []AbiParam {
	out := make([]AbiParam, len(params))
	for i, p := range params {
		out[i] = AbiParam{Name: p.Name, Type: p.Type.String(), Indexed: p.Indexed}
	}
	return out
}

// constructorMacroName is the macro BuildAbi reads constructor parameters
// from; it matches internal/config.DefaultConstructorMacro.
const constructorMacroName = "CONSTRUCTOR"

// BuildAbi derives the ABI array from a contract's function, event and
// error declarations, in declaration order. A constructor entry is
// synthesized from either an explicit `#define function constructor(...)`
// declaration or, failing that, the CONSTRUCTOR macro's parameter list
// (spec §4.5) — macro parameters carry no ABI type information, so each is
// reported as an untyped "bytes" input rather than guessed at.
func BuildAbi(c *ast.Contract) Abi {
	var out Abi
	sawExplicitConstructor := false
	for _, f := range c.Functions {
		if strings.EqualFold(f.Name, "constructor") {
			sawExplicitConstructor = true
			out = append(out, AbiEntry{
				Type:            "constructor",
				Inputs:          paramsToAbi(f.Inputs),
				StateMutability: mutabilityString(f.Mutability),
			})
			continue
		}
		out = append(out, AbiEntry{
			Type:            "function",
			Name:            f.Name,
			Inputs:          paramsToAbi(f.Inputs),
			Outputs:         paramsToAbi(f.Outputs),
			StateMutability: mutabilityString(f.Mutability),
		})
	}
	if !sawExplicitConstructor {
		if m := c.FindMacro(constructorMacroName); m != nil && len(m.Parameters) > 0 {
			inputs := make([]AbiParam, len(m.Parameters))
			for i, p := range m.Parameters {
				inputs[i] = AbiParam{Name: p.Name, Type: "bytes"}
			}
			out = append(out, AbiEntry{Type: "constructor", Inputs: inputs, StateMutability: "nonpayable"})
		}
	}
	for _, e := range c.Events {
		out = append(out, AbiEntry{
			Type:      "event",
			Name:      e.Name,
			Inputs:    paramsToAbi(e.Parameters),
			Anonymous: false,
		})
	}
	for _, e := range c.Errors {
		out = append(out, AbiEntry{
			Type:   "error",
			Name:   e.Name,
			Inputs: paramsToAbi(e.Parameters),
		})
	}
	return out
}

// BuildArtifact assembles the final artifact document. initcode is the full
// deployable bytecode (constructor + bootstrap + runtime + constructor
// args, i.e. Churn's output); runtime is the deployed-code-only bytes.
// file identifies the entry point this contract was compiled from: its
// path, its flattened source, and the paths it transitively depends on
// (the resolver's include graph — see resolver.Flattened).
func BuildArtifact(c *ast.Contract, initcode, runtime []byte, file File) *Artifact {
	return &Artifact{
		Bytecode: hex.EncodeToString(initcode),
		Runtime:  hex.EncodeToString(runtime),
		Abi:      BuildAbi(c),
		File:     file,
	}
}

// MarshalIndent renders the artifact as pretty-printed JSON.
func (a *Artifact) MarshalIndent() ([]byte, error) {
	return json.MarshalIndent(a, "", "  ")
}
