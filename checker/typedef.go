package checker

import (
	"github.com/goplus/cfmtchk/clang/ast"
	"github.com/goplus/cfmtchk/clang/types"
	"github.com/goplus/cfmtchk/clang/types/parser"
	"go.uber.org/zap"
)

// maxTypedefDepth bounds typedef chains, guarding against self references.
const maxTypedefDepth = 32

// typedefs maps a typedef name to its underlying type as declared. Names
// inside the underlying type are resolved on lookup, so chains such as
// "typedef gchar *gstring" work in any declaration order.
type typedefs map[string]*types.Type

func (p typedefs) declare(n *ast.Node) {
	if n.Name == "" || n.Type == nil {
		return
	}
	src := n.Type.Canonical()
	typ, err := parser.ParseType(src, false)
	if err != nil {
		if debugType {
			zap.S().Debugf("==> unknown typedef %s = %q: %v", n.Name, src, err)
		}
		return
	}
	p[n.Name] = typ
}

// resolve replaces each known typedef name in t, including pointee and
// element types, by its underlying type. t itself is never modified.
func (p typedefs) resolve(t *types.Type) *types.Type {
	return p.resolveDepth(t, 0)
}

func (p typedefs) resolveDepth(t *types.Type, depth int) *types.Type {
	if t == nil || depth > maxTypedefDepth {
		return t
	}
	switch t.Kind {
	case types.Named:
		u, ok := p[t.Name]
		if !ok {
			return t
		}
		ret := *p.resolveDepth(u, depth+1)
		ret.Const = ret.Const || t.Const
		ret.Volatile = ret.Volatile || t.Volatile
		return &ret
	case types.Pointer, types.Array, types.Func:
		elem := p.resolveDepth(t.Elem, depth+1)
		if elem == t.Elem {
			return t
		}
		ret := *t
		ret.Elem = elem
		return &ret
	}
	return t
}
