package printf

import (
	"errors"
	"testing"

	"github.com/goplus/cfmtchk/clang/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	tyChar     = types.Basic(types.Char)
	tySChar    = types.Basic(types.SChar)
	tyUChar    = types.Basic(types.UChar)
	tyShort    = types.Basic(types.Short)
	tyUShort   = types.Basic(types.UShort)
	tyInt      = types.Basic(types.Int)
	tyUInt     = types.Basic(types.UInt)
	tyLong     = types.Basic(types.Long)
	tyULong    = types.Basic(types.ULong)
	tyLLong    = types.Basic(types.LongLong)
	tyBool     = types.Basic(types.Bool)
	tyFloat    = types.Basic(types.Float)
	tyDouble   = types.Basic(types.Double)
	tyLDouble  = types.Basic(types.LongDouble)
	tyVoid     = types.Basic(types.Void)
	tyConstInt = &types.Type{Kind: types.Int, Const: true}
	tyCharPtr  = types.NewPointer(tyChar)
	tyCCharPtr = types.NewPointer(&types.Type{Kind: types.Char, Const: true})
	tyUCharPtr = types.NewPointer(tyUChar)
	tyVoidPtr  = types.NewPointer(tyVoid)
	tyIntPtr   = types.NewPointer(tyInt)
	tyChar16   = types.NewArray(tyChar, 16)
	tyCChar7   = types.NewArray(&types.Type{Kind: types.Char, Const: true}, 7)
	tyCharInc  = types.NewArray(tyChar, -1)
	tyInt3     = types.NewArray(tyInt, 3)
	tyStruct   = types.NewRecord("struct", "point")
	tyEnum     = types.NewEnum("color")
	tyFunc     = types.NewFunc(tyInt)
)

func args(ts ...*types.Type) []*types.Type {
	return ts
}

func TestClassify(t *testing.T) {
	for _, c := range "idoxXc" {
		class, cat := Classify("%"+string(c), 1)
		assert.Equal(t, ClassCategory, class, string(c))
		assert.Equal(t, Int, cat, string(c))
	}
	for _, c := range "fFeEaA" {
		class, cat := Classify("%"+string(c), 1)
		assert.Equal(t, ClassCategory, class, string(c))
		assert.Equal(t, Real, cat, string(c))
	}
	class, cat := Classify("%s", 1)
	assert.Equal(t, ClassCategory, class)
	assert.Equal(t, String, cat)
	class, cat = Classify("%p", 1)
	assert.Equal(t, ClassCategory, class)
	assert.Equal(t, Pointer, cat)

	for _, c := range "-+ #0123456789." {
		class, _ := Classify("%"+string(c), 1)
		assert.Equal(t, ClassFiller, class, string(c))
	}
	class, _ = Classify("%*d", 1)
	assert.Equal(t, ClassVarWidth, class)
	class, _ = Classify("%.*f", 2)
	assert.Equal(t, ClassFiller, class)

	for _, c := range "gGlhzjtqnSCuL%" {
		class, _ := Classify("%"+string(c), 1)
		assert.Equal(t, ClassInvalid, class, string(c))
	}
	class, _ = Classify("%", 1)
	assert.Equal(t, ClassInvalid, class)
	class, _ = Classify("", -1)
	assert.Equal(t, ClassInvalid, class)
}

func TestCategoryString(t *testing.T) {
	assert.Equal(t, "STRING", String.String())
	assert.Equal(t, "INT", Int.String())
	assert.Equal(t, "REAL", Real.String())
	assert.Equal(t, "POINTER", Pointer.String())
	assert.Equal(t, "Category(?)", Category(9).String())
}

func TestAccepts(t *testing.T) {
	accepted := map[Category][]*types.Type{
		String:  {tyCharPtr, tyCCharPtr, tyChar16, tyCChar7, &types.Type{Kind: types.Pointer, Elem: tyChar, Const: true}},
		Int:     {tyChar, tyUChar, tyShort, tyUShort, tyInt, tyUInt, tyLong, tyULong, tyConstInt},
		Real:    {tyFloat, tyDouble, &types.Type{Kind: types.Double, Volatile: true}},
		Pointer: {tyCharPtr, tyVoidPtr, tyIntPtr, types.NewPointer(tyStruct), types.NewPointer(tyFunc)},
	}
	rejected := map[Category][]*types.Type{
		String:  {tyInt, tyUCharPtr, tyVoidPtr, tyInt3, tyCharInc, tyChar, types.NewPointer(tyCharPtr)},
		Int:     {tySChar, tyLLong, tyBool, tyFloat, tyDouble, tyCharPtr, tyEnum, tyStruct, tyVoid},
		Real:    {tyInt, tyLDouble, tyCharPtr, tyLong},
		Pointer: {tyInt, tyChar16, tyInt3, tyFunc, tyULong},
	}
	for cat, ts := range accepted {
		for _, typ := range ts {
			assert.True(t, Accepts(cat, typ), "%v should accept %v", cat, typ)
		}
	}
	for cat, ts := range rejected {
		for _, typ := range ts {
			assert.False(t, Accepts(cat, typ), "%v should reject %v", cat, typ)
		}
	}
	assert.False(t, Accepts(Int, nil))
}

type validateCase struct {
	name   string
	format string
	args   []*types.Type
	code   Code
	pos    int
	arg    int
}

var validateCases = []validateCase{
	{name: "NoSpecifiers", format: "no specifiers", code: Success, pos: 13, arg: -1},
	{name: "Empty", format: "", code: Success, pos: 0, arg: -1},
	{name: "IntFloat", format: "%i%f", args: args(tyInt, tyFloat), code: Success, pos: 4, arg: -1},
	{name: "Percent", format: "100%%", code: Success, pos: 5, arg: -1},
	{name: "PercentWithArgs", format: "%%%d%%", args: args(tyInt), code: Success, pos: 6, arg: -1},
	{name: "PercentThenLetter", format: "%%d", code: Success, pos: 3, arg: -1},
	{name: "TooFew", format: "%i%i", args: args(tyInt), code: TooFewArgs, pos: 2, arg: 1},
	{name: "TooFewNone", format: "value %d", code: TooFewArgs, pos: 6, arg: 0},
	{name: "TooFewUnknownLetter", format: "%q", code: TooFewArgs, pos: 0, arg: 0},
	{name: "TooMany", format: "%i", args: args(tyInt, tyInt), code: TooManyArgs, pos: 2, arg: 1},
	{name: "TooManyNoSpecifier", format: "hello", args: args(tyCharPtr), code: TooManyArgs, pos: 5, arg: 0},
	{name: "WrongArg", format: "%s", args: args(tyInt), code: WrongArg, pos: 1, arg: 0},
	{name: "Invalid", format: "%q", args: args(tyInt), code: InvalidFormat, pos: 1, arg: -1},
	{name: "InvalidLength", format: "%ld", args: args(tyLong), code: InvalidFormat, pos: 1, arg: -1},
	{name: "InvalidG", format: "%g", args: args(tyDouble), code: InvalidFormat, pos: 1, arg: -1},
	{name: "TrailingPercent", format: "50%", args: args(tyInt), code: InvalidFormat, pos: 3, arg: -1},
	{name: "VarWidth", format: "%*d", args: args(tyInt, tyInt), code: Success, pos: 3, arg: -1},
	{name: "VarWidthWrong", format: "%*d", args: args(tyFloat, tyInt), code: WrongArg, pos: 1, arg: 0},
	{name: "VarWidthValueWrong", format: "%*d", args: args(tyInt, tyDouble), code: WrongArg, pos: 2, arg: 1},
	{name: "VarWidthLast", format: "%*d", args: args(tyInt), code: TooFewArgs, pos: 0, arg: 1},
	{name: "VarWidthNone", format: "x %*d", code: TooFewArgs, pos: 2, arg: 0},
	{name: "Precision", format: "%.*f", args: args(tyDouble), code: Success, pos: 4, arg: -1},
	{name: "Flags", format: "[%-+ #08.3f]", args: args(tyDouble), code: Success, pos: 12, arg: -1},
	{name: "Swapped", format: "%i%f", args: args(tyFloat, tyInt), code: WrongArg, pos: 1, arg: 0},
	{name: "SecondWrong", format: "%d and %s", args: args(tyInt, tyInt), code: WrongArg, pos: 8, arg: 1},
	{name: "Mixed", format: "%s=%5.2e %p %c%x", args: args(tyChar16, tyDouble, tyVoidPtr, tyChar, tyULong),
		code: Success, pos: 16, arg: -1},
	{name: "ConstString", format: "%s", args: args(tyCChar7), code: Success, pos: 2, arg: -1},
}

func TestValidate(t *testing.T) {
	for _, c := range validateCases {
		t.Run(c.name, func(t *testing.T) {
			ret := Validate(c.format, c.args)
			assert.Equal(t, c.code, ret.Code, ret.Message(c.format))
			assert.Equal(t, c.pos, ret.Pos, "pos")
			assert.Equal(t, c.arg, ret.Arg, "arg")
			assert.Equal(t, c.code == Success, ret.OK())
		})
	}
}

func TestValidateWrongArgDetails(t *testing.T) {
	ret := Validate("%d and %-10s", args(tyInt, tyDouble))
	require.Equal(t, WrongArg, ret.Code)
	assert.Equal(t, String, ret.Want)
	assert.Same(t, tyDouble, ret.Got)
	assert.Equal(t, 7, ret.Start)
	assert.Equal(t, "%-10s", ret.Directive("%d and %-10s"))
}

func TestIdempotent(t *testing.T) {
	for _, c := range validateCases {
		assert.Equal(t, Validate(c.format, c.args), Validate(c.format, c.args), c.name)
	}
}

func TestOrderSensitive(t *testing.T) {
	assert.True(t, Validate("%i%f", args(tyInt, tyFloat)).OK())
	assert.Equal(t, WrongArg, Validate("%i%f", args(tyFloat, tyInt)).Code)
	assert.True(t, Validate("%s%p", args(tyCharPtr, tyIntPtr)).OK())
	assert.Equal(t, WrongArg, Validate("%s%p", args(tyIntPtr, tyCharPtr)).Code)
}

// Exhaustively combine short formats with short argument lists: the walker
// must terminate and never report the internal sentinel.
func TestNeverUnreachable(t *testing.T) {
	alphabet := []string{"a", "%", "%%", "d", "s", "*", ".", "5", "q", "-", "f", "p"}
	pool := []*types.Type{tyInt, tyDouble, tyCharPtr, tyVoidPtr, tyStruct}

	var formats []string
	var gen func(prefix string, depth int)
	gen = func(prefix string, depth int) {
		formats = append(formats, prefix)
		if depth == 0 {
			return
		}
		for _, s := range alphabet {
			gen(prefix+s, depth-1)
		}
	}
	gen("", 4)

	var arglists [][]*types.Type
	arglists = append(arglists, nil)
	for _, a := range pool {
		arglists = append(arglists, args(a))
		for _, b := range pool {
			arglists = append(arglists, args(a, b))
		}
	}
	for _, format := range formats {
		for _, list := range arglists {
			ret := Validate(format, list)
			if ret.Code == Unreachable || ret.Code > Unreachable {
				t.Fatalf("Validate(%q, %v) = %v", format, list, ret.Code)
			}
		}
	}
}

func TestCheck(t *testing.T) {
	require.NoError(t, Check("%d%%", tyInt))

	err := Check("%s", tyInt)
	var ferr *FormatError
	require.True(t, errors.As(err, &ferr))
	assert.Equal(t, WrongArg, ferr.Code)
	assert.Equal(t, `WRONG_ARG: "%s" at offset 1 expects STRING, argument 1 has type int`, err.Error())
}

func TestMessages(t *testing.T) {
	cases := []struct {
		format string
		args   []*types.Type
		msg    string
	}{
		{"%i%i", args(tyInt), `TOO_FEW_ARGS: "%" at offset 2 needs argument 2, only 1 supplied`},
		{"%i", args(tyInt, tyInt), "TOO_MANY_ARGS: format consumes 1 argument(s), argument 2 is surplus"},
		{"%5q", args(tyInt), `INVALID_FORMATSTRING: unknown conversion "%5q" at offset 2`},
		{"%*d", args(tyFloat, tyInt), `WRONG_ARG: "%*" at offset 1 expects INT, argument 1 has type float`},
		{"ok", nil, "ok"},
	}
	for _, c := range cases {
		assert.Equal(t, c.msg, Validate(c.format, c.args).Message(c.format))
	}
}

func TestCodeString(t *testing.T) {
	assert.Equal(t, "SUCCESS", Success.String())
	assert.Equal(t, "TOO_FEW_ARGS", TooFewArgs.String())
	assert.Equal(t, "TOO_MANY_ARGS", TooManyArgs.String())
	assert.Equal(t, "WRONG_ARG", WrongArg.String())
	assert.Equal(t, "INVALID_FORMATSTRING", InvalidFormat.String())
	assert.Equal(t, "UNREACHABLE_CODE", Unreachable.String())
	assert.Equal(t, "Code(42)", Code(42).String())
}
