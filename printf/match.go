package printf

import (
	"github.com/goplus/cfmtchk/clang/types"
)

// -----------------------------------------------------------------------------

type basicKey struct {
	cat  Category
	kind types.Kind
}

// basics lists the arithmetic types each category accepts. Anything absent
// is rejected.
var basics = map[basicKey]bool{
	{Int, types.Char}:   true,
	{Int, types.UChar}:  true,
	{Int, types.Short}:  true,
	{Int, types.UShort}: true,
	{Int, types.Int}:    true,
	{Int, types.UInt}:   true,
	{Int, types.Long}:   true,
	{Int, types.ULong}:  true,

	{Real, types.Float}:  true,
	{Real, types.Double}: true,
}

// A shapeRule accepts a derived (pointer or array) type for a category.
type shapeRule struct {
	cat    Category
	accept func(t *types.Type) bool
}

var shapes = []shapeRule{
	{String, func(t *types.Type) bool { // char *, const char *
		return t.Kind == types.Pointer && t.Elem.IsChar()
	}},
	{String, func(t *types.Type) bool { // char [N], const char [N]
		return t.Kind == types.Array && t.Len >= 0 && t.Elem.IsChar()
	}},
	{Pointer, func(t *types.Type) bool {
		return t.Kind == types.Pointer
	}},
}

// Accepts reports whether an argument of type t may be formatted by a
// conversion of category cat. Top-level qualifiers of t are ignored.
func Accepts(cat Category, t *types.Type) bool {
	if t == nil {
		return false
	}
	t = t.Unqualified()
	if t.Kind.IsBasic() {
		return basics[basicKey{cat, t.Kind}]
	}
	for _, rule := range shapes {
		if rule.cat == cat && rule.accept(t) {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------
