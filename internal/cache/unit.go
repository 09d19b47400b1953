package cache

import "github.com/huff-lang/huffc/pkg/ast"

// CompiledUnit is what the pipeline memoizes per UnitKey: a fully parsed
// and storage-pointer-derived contract, ready for codegen.
type CompiledUnit struct {
	Contract *ast.Contract
}

// LookupUnit fetches a previously compiled unit for the given flattened
// source, if present.
func LookupUnit(c *LRUCache, flattenedSource string) (*CompiledUnit, bool) {
	v, ok := c.Get(UnitKey(flattenedSource))
	if !ok {
		return nil, false
	}
	u, ok := v.(*CompiledUnit)
	return u, ok
}

// StoreUnit memoizes a compiled unit under its flattened source's key.
func StoreUnit(c *LRUCache, flattenedSource string, unit *CompiledUnit) {
	c.Set(UnitKey(flattenedSource), unit, 0)
}
