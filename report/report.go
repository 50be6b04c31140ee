package report

import (
	"io"
	"os"
	"strconv"
	"unicode/utf8"

	"github.com/goplus/cfmtchk/checker"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/term"
)

const (
	ansiBold  = "\x1b[1m"
	ansiRed   = "\x1b[31m"
	ansiReset = "\x1b[0m"
)

// IsTerminal reports whether f is attached to a terminal, in which case Text
// output may be coloured.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Text writes one line per diagnostic in the style of a compiler error,
// followed by the format string and a caret under the offending offset.
func Text(w io.Writer, diags []*checker.Diagnostic, color bool) error {
	for _, d := range diags {
		var loc string
		if d.IsValid() {
			loc = d.File + ":" + strconv.Itoa(d.Line) + ":" + strconv.Itoa(d.Col) + ": "
		}
		line := loc + d.Func + ": "
		if color {
			line = ansiBold + line + ansiRed + "error: " + ansiReset + ansiBold + d.Message() + ansiReset
		} else {
			line += "error: " + d.Message()
		}
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return err
		}
		if d.NonConst {
			continue
		}
		quoted, caret := pointAt(d.Format, d.Result.Pos)
		if _, err := io.WriteString(w, "    "+quoted+"\n    "+caret+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// pointAt quotes format and returns a caret line under byte offset pos,
// counting one column per rune of the quoted text.
func pointAt(format string, pos int) (quoted, caret string) {
	quoted = strconv.Quote(format)
	col := 1 // opening quote
	for i := 0; i < len(format) && i < pos; {
		_, size := utf8.DecodeRuneInString(format[i:])
		col += utf8.RuneCountInString(strconv.Quote(format[i:i+size])) - 2
		i += size
	}
	if pos >= len(format) {
		col = utf8.RuneCountInString(quoted) - 1
	}
	buf := make([]byte, col+1)
	for i := range buf {
		buf[i] = ' '
	}
	buf[col] = '^'
	return quoted, string(buf)
}

// -----------------------------------------------------------------------------

type jsonDiag struct {
	File      string `json:"file,omitempty"`
	Line      int    `json:"line,omitempty"`
	Col       int    `json:"col,omitempty"`
	Func      string `json:"func"`
	Caller    string `json:"caller,omitempty"`
	Code      string `json:"code"`
	Format    string `json:"format"`
	Offset    int    `json:"offset"`
	Directive string `json:"directive,omitempty"`
	Arg       int    `json:"arg"`
	Message   string `json:"message"`
}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// JSON writes the diagnostics as a JSON array.
func JSON(w io.Writer, diags []*checker.Diagnostic) error {
	out := make([]jsonDiag, 0, len(diags))
	for _, d := range diags {
		v := jsonDiag{
			File: d.File, Line: d.Line, Col: d.Col, Func: d.Func, Caller: d.Caller,
			Code: d.Code(), Format: d.Format, Offset: -1, Arg: -1, Message: d.Message(),
		}
		if !d.NonConst {
			v.Offset = d.Result.Pos
			v.Directive = d.Result.Directive(d.Format)
			v.Arg = d.Result.Arg
		}
		out = append(out, v)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
