package types

import (
	"strconv"
	"strings"
)

// -----------------------------------------------------------------------------

type Kind int

const (
	Invalid Kind = iota
	Void
	Bool
	Char
	SChar
	UChar
	Short
	UShort
	Int
	UInt
	Long
	ULong
	LongLong
	ULongLong
	Int128
	UInt128
	Float
	Double
	LongDouble
	Complex
	Pointer
	Array
	Func
	Record
	Enum
	Named
)

var kindNames = [...]string{
	Invalid:    "invalid",
	Void:       "void",
	Bool:       "_Bool",
	Char:       "char",
	SChar:      "signed char",
	UChar:      "unsigned char",
	Short:      "short",
	UShort:     "unsigned short",
	Int:        "int",
	UInt:       "unsigned int",
	Long:       "long",
	ULong:      "unsigned long",
	LongLong:   "long long",
	ULongLong:  "unsigned long long",
	Int128:     "__int128",
	UInt128:    "unsigned __int128",
	Float:      "float",
	Double:     "double",
	LongDouble: "long double",
	Complex:    "_Complex",
	Pointer:    "pointer",
	Array:      "array",
	Func:       "function",
	Record:     "struct",
	Enum:       "enum",
	Named:      "named",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// IsBasic reports whether k is an arithmetic or void type.
func (k Kind) IsBasic() bool {
	return k >= Void && k <= Complex
}

// -----------------------------------------------------------------------------

// Type is a C type as spelled by clang in a qualType string.
//
// Elem is set for Pointer, Array and Func (the result type). Len is the
// element count of an Array, or -1 for an incomplete array. Name holds the
// tag of a Record/Enum or the identifier of an unresolved Named type.
type Type struct {
	Kind     Kind
	Const    bool
	Volatile bool
	Elem     *Type
	Len      int64
	Name     string
}

// Basic returns a fresh unqualified type of the given basic kind.
func Basic(kind Kind) *Type {
	return &Type{Kind: kind}
}

func NewPointer(elem *Type) *Type {
	return &Type{Kind: Pointer, Elem: elem}
}

func NewArray(elem *Type, n int64) *Type {
	return &Type{Kind: Array, Elem: elem, Len: n}
}

func NewFunc(ret *Type) *Type {
	return &Type{Kind: Func, Elem: ret}
}

func NewRecord(tag, name string) *Type {
	if tag == "union" {
		name = "union " + name
	}
	return &Type{Kind: Record, Name: name}
}

func NewEnum(name string) *Type {
	return &Type{Kind: Enum, Name: name}
}

func NewNamed(name string) *Type {
	return &Type{Kind: Named, Name: name}
}

// Unqualified returns t with top-level const/volatile removed. Qualifiers of
// pointee and element types are kept.
func (t *Type) Unqualified() *Type {
	if t == nil || (!t.Const && !t.Volatile) {
		return t
	}
	ret := *t
	ret.Const, ret.Volatile = false, false
	return &ret
}

// IsChar reports whether t is plain char, ignoring qualifiers.
func (t *Type) IsChar() bool {
	return t != nil && t.Kind == Char
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t *Type) qualifiers() string {
	switch {
	case t.Const && t.Volatile:
		return "const volatile "
	case t.Const:
		return "const "
	case t.Volatile:
		return "volatile "
	}
	return ""
}

func (t *Type) write(b *strings.Builder) {
	switch t.Kind {
	case Pointer:
		t.Elem.write(b)
		if t.Elem.Kind != Pointer {
			b.WriteByte(' ')
		}
		b.WriteByte('*')
		if t.Const {
			b.WriteString("const")
		}
		if t.Volatile {
			b.WriteString("volatile")
		}
	case Array:
		t.Elem.write(b)
		b.WriteString(" [")
		if t.Len >= 0 {
			b.WriteString(strconv.FormatInt(t.Len, 10))
		}
		b.WriteByte(']')
	case Func:
		t.Elem.write(b)
		b.WriteString(" ()")
	case Record:
		b.WriteString(t.qualifiers())
		if !strings.HasPrefix(t.Name, "union ") {
			b.WriteString("struct ")
		}
		b.WriteString(t.Name)
	case Enum:
		b.WriteString(t.qualifiers())
		b.WriteString("enum ")
		b.WriteString(t.Name)
	case Named:
		b.WriteString(t.qualifiers())
		b.WriteString(t.Name)
	default:
		b.WriteString(t.qualifiers())
		b.WriteString(t.Kind.String())
	}
}

// -----------------------------------------------------------------------------
