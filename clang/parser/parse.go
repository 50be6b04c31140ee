package parser

import (
	"bytes"
	"os"
	"os/exec"

	"github.com/goplus/cfmtchk/clang/ast"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

type Mode uint

const (
	DbgFlagExecCmd = 1 << iota
	DbgFlagAll     = DbgFlagExecCmd
)

var (
	debugExecCmd bool
)

func SetDebug(flags int) {
	debugExecCmd = (flags & DbgFlagExecCmd) != 0
}

// -----------------------------------------------------------------------------

type ParseError struct {
	Err    error
	Stderr []byte
}

func (p *ParseError) Error() string {
	if len(p.Stderr) > 0 {
		return string(p.Stderr)
	}
	return p.Err.Error()
}

func (p *ParseError) Unwrap() error {
	return p.Err
}

// -----------------------------------------------------------------------------

type Config struct {
	Json     *[]byte  // receives the raw AST dump if not nil
	Compiler string   // default: clang
	Flags    []string // extra compiler flags, e.g. -I or -D
	Stderr   bool     // forward compiler warnings to os.Stderr
}

func DumpAST(filename string, conf *Config) (result []byte, warning []byte, err error) {
	if conf == nil {
		conf = new(Config)
	}
	compiler := conf.Compiler
	if compiler == "" {
		compiler = "clang"
	}
	args := make([]string, 0, 4+len(conf.Flags))
	args = append(args, "-Xclang", "-ast-dump=json", "-fsyntax-only")
	args = append(args, conf.Flags...)
	args = append(args, filename)
	if debugExecCmd {
		zap.S().Debugf("==> runCmd: %s %v", compiler, args)
	}
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	cmd := exec.Command(compiler, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	err = cmd.Run()
	errmsg := stderr.Bytes()
	if err != nil {
		return nil, nil, &ParseError{Err: err, Stderr: errmsg}
	}
	if conf.Stderr && len(errmsg) > 0 {
		os.Stderr.Write(errmsg)
	}
	return stdout.Bytes(), errmsg, nil
}

// -----------------------------------------------------------------------------

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ParseBytes decodes an AST previously produced by `clang -ast-dump=json`.
func ParseBytes(data []byte) (file *ast.Node, err error) {
	file = new(ast.Node)
	if err = json.Unmarshal(data, file); err != nil {
		return nil, &ParseError{Err: err}
	}
	return
}

func ParseFileEx(filename string, mode Mode, conf *Config) (file *ast.Node, warning []byte, err error) {
	out, warning, err := DumpAST(filename, conf)
	if err != nil {
		return
	}
	if conf != nil && conf.Json != nil {
		*conf.Json = out
	}
	file, err = ParseBytes(out)
	return
}

func ParseFile(filename string, mode Mode) (file *ast.Node, warning []byte, err error) {
	return ParseFileEx(filename, mode, nil)
}

// -----------------------------------------------------------------------------
