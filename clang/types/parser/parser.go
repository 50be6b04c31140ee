package parser

import (
	"go/scanner"
	"go/token"
	"strconv"

	"github.com/goplus/cfmtchk/clang/types"
)

// -----------------------------------------------------------------------------

// qualType can be:
//   unsigned int
//   struct ConstantString
//   volatile uint32_t
//   int (*)(void *, int, char **, char **)
//   int (*)(const char *, ...)
//   int (*)(void)
//   const char *restrict
//   const char [7]
//   char *
//   void
//   ...
func ParseType(qualType string, isParam bool) (t *types.Type, err error) {
	p := newParser(qualType)
	if t, err = p.parse(); err != nil {
		return
	}
	if isParam && t.Kind == types.Array {
		t = types.NewPointer(t.Elem)
	}
	return
}

// -----------------------------------------------------------------------------

type ParseTypeError struct {
	QualType string
	Pos      int // byte offset in QualType
	ErrMsg   string
}

func (p *ParseTypeError) Error() string {
	return "parse type `" + p.QualType + "` at " + strconv.Itoa(p.Pos) + ": " + p.ErrMsg
}

// -----------------------------------------------------------------------------

type tokenInfo struct {
	pos int
	tok token.Token
	lit string
}

type parser struct {
	s        scanner.Scanner
	file     *token.File
	qualType string
	cur      tokenInfo
	peeked   *tokenInfo
}

func newParser(qualType string) *parser {
	fset := token.NewFileSet()
	file := fset.AddFile("", fset.Base(), len(qualType))
	p := &parser{file: file, qualType: qualType}
	p.s.Init(file, []byte(qualType), nil, 0)
	p.next()
	return p
}

func (p *parser) scan() tokenInfo {
	for {
		pos, tok, lit := p.s.Scan()
		if tok == token.SEMICOLON && lit == "\n" { // auto-inserted
			continue
		}
		return tokenInfo{pos: p.file.Offset(pos), tok: tok, lit: lit}
	}
}

func (p *parser) next() {
	if p.peeked != nil {
		p.cur, p.peeked = *p.peeked, nil
		return
	}
	p.cur = p.scan()
}

func (p *parser) peek() tokenInfo {
	if p.peeked == nil {
		t := p.scan()
		p.peeked = &t
	}
	return *p.peeked
}

func (p *parser) errorf(msg string) *ParseTypeError {
	return &ParseTypeError{QualType: p.qualType, Pos: p.cur.pos, ErrMsg: msg}
}

func (p *parser) parse() (*types.Type, error) {
	base, err := p.specifiers()
	if err != nil {
		return nil, err
	}
	ops, err := p.absDecl()
	if err != nil {
		return nil, err
	}
	if p.cur.tok != token.EOF {
		return nil, p.errorf("unexpected " + p.tokString())
	}
	t := base
	for _, op := range ops {
		t = op(t)
	}
	return t, nil
}

func (p *parser) tokString() string {
	if p.cur.lit != "" {
		return strconv.Quote(p.cur.lit)
	}
	return p.cur.tok.String()
}

// -----------------------------------------------------------------------------

type specs struct {
	unsigned, signed, complex bool
	short, long               int
	base                      types.Kind
	named                     *types.Type
	isConst, isVolatile       bool
}

func (p *parser) setBase(sp *specs, kind types.Kind) error {
	if sp.base != types.Invalid || sp.named != nil {
		return p.errorf("illegal syntax: multiple types?")
	}
	sp.base = kind
	return nil
}

func (p *parser) specifiers() (*types.Type, error) {
	var sp specs
loop:
	for p.cur.tok == token.IDENT {
		switch lit := p.cur.lit; lit {
		case "const":
			sp.isConst = true
		case "volatile":
			sp.isVolatile = true
		case "restrict", "__restrict", "_Nonnull", "_Nullable", "_Null_unspecified", "__unaligned":
		case "signed", "__signed", "__signed__":
			sp.signed = true
		case "unsigned":
			sp.unsigned = true
		case "short":
			sp.short++
		case "long":
			sp.long++
		case "_Complex":
			sp.complex = true
		case "int":
			if err := p.setBase(&sp, types.Int); err != nil {
				return nil, err
			}
		case "char":
			if err := p.setBase(&sp, types.Char); err != nil {
				return nil, err
			}
		case "float":
			if err := p.setBase(&sp, types.Float); err != nil {
				return nil, err
			}
		case "double":
			if err := p.setBase(&sp, types.Double); err != nil {
				return nil, err
			}
		case "void":
			if err := p.setBase(&sp, types.Void); err != nil {
				return nil, err
			}
		case "_Bool", "bool":
			if err := p.setBase(&sp, types.Bool); err != nil {
				return nil, err
			}
		case "__int128":
			if err := p.setBase(&sp, types.Int128); err != nil {
				return nil, err
			}
		case "struct", "union", "enum":
			if sp.base != types.Invalid || sp.named != nil {
				return nil, p.errorf("illegal syntax: multiple types?")
			}
			name, err := p.tagName()
			if err != nil {
				return nil, err
			}
			if lit == "enum" {
				sp.named = types.NewEnum(name)
			} else {
				sp.named = types.NewRecord(lit, name)
			}
			continue loop
		case "_Atomic", "typeof", "__typeof__":
			if p.peek().tok == token.LPAREN {
				return nil, p.errorf("unsupported " + lit + "(...)")
			}
		default:
			if sp.base != types.Invalid || sp.named != nil || sp.short+sp.long > 0 ||
				sp.signed || sp.unsigned {
				return nil, p.errorf("illegal syntax: multiple types?")
			}
			sp.named = types.NewNamed(lit)
		}
		p.next()
	}
	t, err := p.resolve(&sp)
	if err != nil {
		return nil, err
	}
	t.Const, t.Volatile = sp.isConst, sp.isVolatile
	return t, nil
}

// tagName reads the name after struct/union/enum. Anonymous tags are spelled
// by clang as "(unnamed struct at file.c:3:1)" or "(anonymous)".
func (p *parser) tagName() (string, error) {
	p.next()
	switch p.cur.tok {
	case token.IDENT:
		name := p.cur.lit
		p.next()
		return name, nil
	case token.LPAREN:
		start := p.cur.pos
		if err := p.skipParens(); err != nil {
			return "", err
		}
		end := len(p.qualType)
		if p.cur.tok != token.EOF {
			end = p.cur.pos
		}
		return trimSpace(p.qualType[start:end]), nil
	}
	return "", p.errorf("expect struct/union/enum name")
}

func trimSpace(s string) string {
	for len(s) > 0 && s[len(s)-1] == ' ' {
		s = s[:len(s)-1]
	}
	return s
}

func (p *parser) resolve(sp *specs) (*types.Type, error) {
	if sp.named != nil {
		return sp.named, nil
	}
	if sp.signed && sp.unsigned {
		return nil, p.errorf("both signed and unsigned")
	}
	kind := sp.base
	switch kind {
	case types.Void, types.Bool, types.Float:
	case types.Char:
		switch {
		case sp.unsigned:
			kind = types.UChar
		case sp.signed:
			kind = types.SChar
		}
	case types.Int128:
		if sp.unsigned {
			kind = types.UInt128
		}
	case types.Double:
		if sp.long > 0 {
			kind = types.LongDouble
		}
	case types.Int, types.Invalid:
		switch {
		case sp.short > 0:
			kind = pick(sp.unsigned, types.Short, types.UShort)
		case sp.long == 1:
			kind = pick(sp.unsigned, types.Long, types.ULong)
		case sp.long >= 2:
			kind = pick(sp.unsigned, types.LongLong, types.ULongLong)
		case kind == types.Int || sp.signed || sp.unsigned:
			kind = pick(sp.unsigned, types.Int, types.UInt)
		case sp.complex:
			kind = types.Double
		default:
			return nil, p.errorf("missing type specifier")
		}
	}
	if sp.complex {
		kind = types.Complex
	}
	return types.Basic(kind), nil
}

func pick(unsigned bool, signed, unsignedKind types.Kind) types.Kind {
	if unsigned {
		return unsignedKind
	}
	return signed
}

// -----------------------------------------------------------------------------

type declOp func(t *types.Type) *types.Type

// absDecl parses an abstract declarator and returns the type constructors to
// apply to the base type, innermost first.
func (p *parser) absDecl() (ops []declOp, err error) {
	for p.cur.tok == token.MUL || p.cur.tok == token.XOR { // * or ^ (block)
		p.next()
		var isConst, isVolatile bool
		for p.cur.tok == token.IDENT {
			switch p.cur.lit {
			case "const":
				isConst = true
			case "volatile":
				isVolatile = true
			case "restrict", "__restrict", "_Nonnull", "_Nullable", "_Null_unspecified":
			default:
				return nil, p.errorf("unexpected " + p.tokString() + " after *")
			}
			p.next()
		}
		ops = append(ops, func(t *types.Type) *types.Type {
			ret := types.NewPointer(t)
			ret.Const, ret.Volatile = isConst, isVolatile
			return ret
		})
	}
	var inner []declOp
	if p.cur.tok == token.LPAREN {
		if nt := p.peek().tok; nt == token.MUL || nt == token.XOR {
			p.next()
			if inner, err = p.absDecl(); err != nil {
				return
			}
			if p.cur.tok != token.RPAREN {
				return nil, p.errorf("expect )")
			}
			p.next()
		}
	}
	var suffix []declOp
	for {
		switch p.cur.tok {
		case token.LBRACK:
			p.next()
			n := int64(-1)
			if p.cur.tok == token.INT {
				v, e := strconv.ParseInt(p.cur.lit, 0, 64)
				if e != nil {
					return nil, p.errorf(e.Error())
				}
				n = v
				p.next()
			}
			if p.cur.tok != token.RBRACK {
				return nil, p.errorf("expect ]")
			}
			p.next()
			suffix = append(suffix, func(t *types.Type) *types.Type {
				return types.NewArray(t, n)
			})
		case token.LPAREN:
			if err = p.skipParens(); err != nil {
				return
			}
			suffix = append(suffix, types.NewFunc)
		default:
			for i := len(suffix) - 1; i >= 0; i-- {
				ops = append(ops, suffix[i])
			}
			return append(ops, inner...), nil
		}
	}
}

// skipParens skips a balanced (...) group; cur must be at '('.
func (p *parser) skipParens() error {
	depth := 0
	for {
		switch p.cur.tok {
		case token.LPAREN:
			depth++
		case token.RPAREN:
			depth--
			if depth == 0 {
				p.next()
				return nil
			}
		case token.EOF:
			return p.errorf("expect )")
		}
		p.next()
	}
}

// -----------------------------------------------------------------------------
