package codegen

import "github.com/huff-lang/huffc/pkg/ast"

// GenerateRuntimeBytecode expands mainMacro into the contract's deployed
// runtime bytecode.
func GenerateRuntimeBytecode(contract *ast.Contract, mainMacro string, shanghai bool, maxDepth int) ([]byte, []ImmutableRef, error) {
	g := NewGenerator(contract, shanghai, maxDepth)
	return g.Generate(mainMacro)
}

// GenerateConstructorBytecode expands constructorMacro into the logic that
// runs once, at deploy time, before the bootstrap copies the runtime code
// into memory and returns it.
func GenerateConstructorBytecode(contract *ast.Contract, constructorMacro string, shanghai bool, maxDepth int) ([]byte, error) {
	g := NewGenerator(contract, shanghai, maxDepth)
	out, _, err := g.Generate(constructorMacro)
	return out, err
}
