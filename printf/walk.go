package printf

import (
	"fmt"
	"strconv"

	"github.com/goplus/cfmtchk/clang/types"
)

// -----------------------------------------------------------------------------

// Code is the outcome of validating one call site.
type Code int

const (
	Success Code = iota
	TooFewArgs
	TooManyArgs
	WrongArg
	InvalidFormat

	// Unreachable marks a walker state that a well-formed walk never enters.
	// Validate never returns it.
	Unreachable
)

var codeNames = [...]string{
	Success:       "SUCCESS",
	TooFewArgs:    "TOO_FEW_ARGS",
	TooManyArgs:   "TOO_MANY_ARGS",
	WrongArg:      "WRONG_ARG",
	InvalidFormat: "INVALID_FORMATSTRING",
	Unreachable:   "UNREACHABLE_CODE",
}

func (c Code) String() string {
	if c >= 0 && int(c) < len(codeNames) {
		return codeNames[c]
	}
	return "Code(" + strconv.Itoa(int(c)) + ")"
}

// Result describes the outcome of Validate.
//
// Pos is the format offset where the outcome was decided: the conversion
// letter (or '*') for WrongArg, the classified char for InvalidFormat, the '%'
// for TooFewArgs and len(format) for Success and TooManyArgs. Start is the
// offset of the '%' opening the offending directive, or -1.
//
// Arg is the 0-based index of the argument involved: the mismatched one for
// WrongArg, the missing one for TooFewArgs, the first surplus one for
// TooManyArgs, or -1.
type Result struct {
	Code  Code
	Pos   int
	Start int
	Arg   int
	Want  Category    // WrongArg only
	Got   *types.Type // WrongArg only
}

// OK reports whether the call site passed validation.
func (r Result) OK() bool {
	return r.Code == Success
}

// Directive returns the text of the offending directive, e.g. "%-*d".
func (r Result) Directive(format string) string {
	if r.Start < 0 || r.Start >= len(format) {
		return ""
	}
	end := r.Pos + 1
	if end > len(format) {
		end = len(format)
	}
	if end <= r.Start {
		end = r.Start + 1
	}
	return format[r.Start:end]
}

// Message renders a human readable explanation of r.
func (r Result) Message(format string) string {
	switch r.Code {
	case Success:
		return "ok"
	case TooFewArgs:
		return fmt.Sprintf("%s: %q at offset %d needs argument %d, only %d supplied",
			r.Code, r.Directive(format), r.Start, r.Arg+1, r.Arg)
	case TooManyArgs:
		return fmt.Sprintf("%s: format consumes %d argument(s), argument %d is surplus",
			r.Code, r.Arg, r.Arg+1)
	case WrongArg:
		return fmt.Sprintf("%s: %q at offset %d expects %s, argument %d has type %v",
			r.Code, r.Directive(format), r.Pos, r.Want, r.Arg+1, r.Got)
	case InvalidFormat:
		return fmt.Sprintf("%s: unknown conversion %q at offset %d",
			r.Code, r.Directive(format), r.Pos)
	}
	return r.Code.String()
}

// Err returns nil on success and a *FormatError otherwise.
func (r Result) Err(format string) error {
	if r.OK() {
		return nil
	}
	return &FormatError{Format: format, Result: r}
}

// FormatError is returned by Check for call sites that fail validation.
type FormatError struct {
	Format string
	Result
}

func (e *FormatError) Error() string {
	return e.Message(e.Format)
}

// -----------------------------------------------------------------------------

// Validate checks that the conversions in format consume exactly args, in
// order, each argument matching the category of its conversion.
func Validate(format string, args []*types.Type) Result {
	w := &walker{format: format, nargs: len(args)}
	return w.scan(0, args)
}

// Check is Validate returning an error.
func Check(format string, args ...*types.Type) error {
	return Validate(format, args).Err(format)
}

type walker struct {
	format string
	nargs  int
}

func (w *walker) index(args []*types.Type) int {
	return w.nargs - len(args)
}

func (w *walker) at(pos int) byte {
	if pos < len(w.format) {
		return w.format[pos]
	}
	return 0
}

// scan looks for the next '%' that opens a directive.
func (w *walker) scan(pos int, args []*types.Type) Result {
	if pos >= len(w.format) {
		if len(args) == 0 {
			return Result{Code: Success, Pos: pos, Start: -1, Arg: -1}
		}
		return Result{Code: TooManyArgs, Pos: pos, Start: -1, Arg: w.index(args)}
	}
	if w.format[pos] != '%' {
		return w.scan(pos+1, args)
	}
	if w.at(pos+1) == '%' {
		return w.scan(pos+2, args)
	}
	if len(args) == 0 {
		return Result{Code: TooFewArgs, Pos: pos, Start: pos, Arg: w.nargs}
	}
	return w.directive(pos, pos+1, args)
}

// directive classifies format[pos] inside the directive opened at start.
func (w *walker) directive(start, pos int, args []*types.Type) Result {
	if len(args) == 0 {
		return Result{Code: Unreachable, Pos: pos, Start: start, Arg: -1}
	}
	class, cat := Classify(w.format, pos)
	switch class {
	case ClassCategory:
		return w.argument(cat, start, pos, args)
	case ClassVarWidth:
		if !Accepts(Int, args[0]) {
			return w.wrongArg(Int, start, pos, args)
		}
		if len(args) == 1 {
			return Result{Code: TooFewArgs, Pos: start, Start: start, Arg: w.nargs}
		}
		return w.directive(start, pos+1, args[1:])
	case ClassFiller:
		return w.directive(start, pos+1, args)
	case ClassInvalid:
		return Result{Code: InvalidFormat, Pos: pos, Start: start, Arg: -1}
	}
	return Result{Code: Unreachable, Pos: pos, Start: start, Arg: -1}
}

// argument consumes the head of args for a conversion of category cat.
func (w *walker) argument(cat Category, start, pos int, args []*types.Type) Result {
	if !Accepts(cat, args[0]) {
		return w.wrongArg(cat, start, pos, args)
	}
	return w.scan(pos+1, args[1:])
}

func (w *walker) wrongArg(cat Category, start, pos int, args []*types.Type) Result {
	return Result{
		Code: WrongArg, Pos: pos, Start: start, Arg: w.index(args),
		Want: cat, Got: args[0],
	}
}

// -----------------------------------------------------------------------------
