package checker

import (
	"fmt"
	"strings"

	"github.com/goplus/cfmtchk/clang/ast"
	"github.com/goplus/cfmtchk/clang/pathutil"
	"github.com/goplus/cfmtchk/clang/types"
	"github.com/goplus/cfmtchk/clang/types/parser"
	"github.com/goplus/cfmtchk/printf"
	"github.com/qiniu/x/errors"
	"go.uber.org/zap"
)

const (
	DbgFlagCall = 1 << iota
	DbgFlagType
	DbgFlagAll = DbgFlagCall | DbgFlagType
)

var (
	debugCall bool
	debugType bool
)

func SetDebug(flags int) {
	debugCall = (flags & DbgFlagCall) != 0
	debugType = (flags & DbgFlagType) != 0
}

var (
	ErrNotTranslationUnit = errors.New("checker: root node is not a TranslationUnitDecl")
)

// -----------------------------------------------------------------------------

// DefaultFuncs maps the printf family to the index of the format argument.
var DefaultFuncs = map[string]int{
	"printf":         0,
	"fprintf":        1,
	"sprintf":        1,
	"snprintf":       2,
	"dprintf":        1,
	"asprintf":       1,
	"syslog":         1,
	"printf_checked": 0,
}

type Config struct {
	// Funcs maps a function name to the index of its format argument. The
	// variadic arguments follow it. Nil means DefaultFuncs.
	Funcs map[string]int

	// Strict reports calls whose format is not a string literal. Such calls
	// are accepted unchecked otherwise.
	Strict bool

	// MainFile, if set, restricts checking to calls located in this file
	// unless CheckHeaders is set.
	MainFile     string
	CheckHeaders bool
}

func (conf *Config) funcs() map[string]int {
	if conf == nil || conf.Funcs == nil {
		return DefaultFuncs
	}
	return conf.Funcs
}

// -----------------------------------------------------------------------------

// Call is a call site of a format function.
type Call struct {
	ast.Position
	Func    string // callee, e.g. "printf"
	Caller  string // enclosing function
	Format  string // decoded format literal, valid if Const
	Const   bool
	Args    []*types.Type
	ArgSrcs []string // qualType of each argument as spelled by clang
}

// Validate runs the format walker over the call. Non-constant formats pass.
func (c *Call) Validate() printf.Result {
	if !c.Const {
		return printf.Result{Code: printf.Success, Start: -1, Arg: -1}
	}
	return printf.Validate(c.Format, c.Args)
}

// Calls returns every call of a format function in doc, in source order.
func Calls(doc *ast.Node, conf *Config) (calls []*Call, err error) {
	if doc == nil || doc.Kind != ast.TranslationUnitDecl {
		return nil, ErrNotTranslationUnit
	}
	v := &visitor{funcs: conf.funcs(), typedefs: make(typedefs)}
	if conf != nil && !conf.CheckHeaders {
		v.mainFile = conf.MainFile
	}
	v.visit(doc, "")
	return v.calls, nil
}

type visitor struct {
	ast.LocTracker
	funcs    map[string]int
	typedefs typedefs
	mainFile string
	calls    []*Call
}

func (p *visitor) visit(n *ast.Node, caller string) {
	switch n.Kind {
	case ast.FunctionDecl:
		caller = n.Name
	case ast.TypedefDecl:
		p.typedefs.declare(n)
	}
	if n.Kind == ast.CallExpr {
		pos := p.Begin(n)
		if call := p.call(n, pos, caller); call != nil {
			p.calls = append(p.calls, call)
		}
	} else {
		p.Observe(n)
	}
	for _, v := range n.Inner {
		p.visit(v, caller)
	}
}

func (p *visitor) call(n *ast.Node, pos ast.Position, caller string) *Call {
	name := n.CalleeName()
	idx, ok := p.funcs[name]
	if !ok {
		return nil
	}
	args := n.Args()
	if idx < 0 || idx >= len(args) {
		return nil
	}
	if p.mainFile != "" && pos.IsValid() && !pathutil.SameFile(pos.File, p.mainFile) {
		if debugCall {
			zap.S().Debugf("==> skip %s call in %s:%d", name, pos.File, pos.Line)
		}
		return nil
	}
	call := &Call{Position: pos, Func: name, Caller: caller}
	call.Format, call.Const = args[idx].StripImplicit().StringLiteral()
	for _, arg := range args[idx+1:] {
		src, typ := argType(arg)
		call.Args = append(call.Args, p.typedefs.resolve(typ))
		call.ArgSrcs = append(call.ArgSrcs, src)
	}
	if debugCall {
		zap.S().Debugf("==> %s call in %s at %s:%d:%d format=%q const=%v args=%v",
			name, caller, pos.File, pos.Line, pos.Col, call.Format, call.Const, call.ArgSrcs)
	}
	return call
}

// argType returns the type of arg before default argument promotions and
// array/function decay. Typedef names below the top level are left unresolved.
func argType(arg *ast.Node) (string, *types.Type) {
	expr := arg.StripImplicit()
	if expr.Type == nil {
		return "", types.Basic(types.Invalid)
	}
	src := expr.Type.Canonical()
	typ, err := parser.ParseType(src, false)
	if err != nil {
		if debugType {
			zap.S().Debugf("==> unknown argument type %q: %v", src, err)
		}
		return src, types.NewNamed(src)
	}
	return src, typ
}

// -----------------------------------------------------------------------------

// Diagnostic reports a call site that failed validation.
type Diagnostic struct {
	ast.Position
	Func     string
	Caller   string
	Format   string
	Result   printf.Result
	NonConst bool // strict mode: the format is not a string literal
}

func (d *Diagnostic) Code() string {
	if d.NonConst {
		return "NON_CONSTANT_FORMAT"
	}
	return d.Result.Code.String()
}

func (d *Diagnostic) Message() string {
	if d.NonConst {
		return "NON_CONSTANT_FORMAT: format argument is not a string literal"
	}
	return d.Result.Message(d.Format)
}

func (d *Diagnostic) Error() string {
	var b strings.Builder
	if d.IsValid() {
		fmt.Fprintf(&b, "%s:%d:%d: ", d.File, d.Line, d.Col)
	}
	b.WriteString(d.Func)
	b.WriteString(": ")
	b.WriteString(d.Message())
	return b.String()
}

// Check validates every format call in doc and returns the failing ones.
func Check(doc *ast.Node, conf *Config) (diags []*Diagnostic, err error) {
	calls, err := Calls(doc, conf)
	if err != nil {
		return
	}
	strict := conf != nil && conf.Strict
	for _, call := range calls {
		if !call.Const {
			if strict {
				diags = append(diags, newDiagnostic(call, printf.Result{Start: -1, Arg: -1}, true))
			}
			continue
		}
		if ret := call.Validate(); !ret.OK() {
			diags = append(diags, newDiagnostic(call, ret, false))
		}
	}
	return
}

func newDiagnostic(call *Call, ret printf.Result, nonConst bool) *Diagnostic {
	return &Diagnostic{
		Position: call.Position, Func: call.Func, Caller: call.Caller,
		Format: call.Format, Result: ret, NonConst: nonConst,
	}
}

// -----------------------------------------------------------------------------
