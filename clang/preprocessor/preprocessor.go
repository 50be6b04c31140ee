package preprocessor

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/goplus/cfmtchk/clang/ast"
	"github.com/goplus/cfmtchk/clang/pathutil"
	"github.com/qiniu/x/errors"
	"go.uber.org/zap"
)

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

type Config struct {
	Compiler    string // default: clang
	PPFlag      string // default: -E
	BaseDir     string // base of include searching directory, should be absolute path
	IncludeDirs []string
	Defines     []string
	Flags       []string
}

// Args returns the compiler arguments used to preprocess infile into outfile.
func (conf *Config) Args(infile, outfile, base string) []string {
	ppflag := conf.PPFlag
	if ppflag == "" {
		ppflag = "-E"
	}
	n := 4 + len(conf.Flags) + len(conf.IncludeDirs) + len(conf.Defines)
	args := make([]string, 3, n)
	args[0] = ppflag
	args[1], args[2] = "-o", outfile
	args = append(args, conf.Flags...)
	for _, def := range conf.Defines {
		args = append(args, "-D"+def)
	}
	for _, inc := range conf.IncludeDirs {
		args = append(args, "-I"+pathutil.Canonical(base, inc))
	}
	return append(args, infile)
}

// Do runs the C preprocessor on infile and writes the result to outfile.
// Compiler diagnostics are returned as part of the error.
func Do(infile, outfile string, conf *Config) (err error) {
	if infile, err = filepath.Abs(infile); err != nil {
		return
	}
	if outfile, err = filepath.Abs(outfile); err != nil {
		return
	}
	if conf == nil {
		conf = new(Config)
	}
	base := conf.BaseDir
	if base == "" {
		if base, err = os.Getwd(); err != nil {
			return
		}
	}
	compiler := conf.Compiler
	if compiler == "" {
		compiler = "clang"
	}
	args := conf.Args(infile, outfile, base)
	if debugExecCmd {
		zap.S().Debugf("==> runCmd: %s %v", compiler, args)
	}
	var stderr bytes.Buffer
	cmd := exec.Command(compiler, args...)
	cmd.Dir = filepath.Dir(infile)
	cmd.Stderr = &stderr
	if err = cmd.Run(); err != nil {
		if stderr.Len() > 0 {
			err = errors.New(stderr.String())
		}
		return errors.NewWith(err, `cmd.Run()`, -2, "preprocessor.Do", compiler, infile)
	}
	return
}

// -----------------------------------------------------------------------------

// MainFile returns the file named by the leading line marker of a
// preprocessed file, e.g. "hello.c" for `# 1 "hello.c"`. It returns "" if
// ifile was preprocessed without line markers.
func MainFile(ifile string) (string, error) {
	f, err := os.Open(ifile)
	if err != nil {
		return "", err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	for {
		line, err := r.ReadString('\n')
		if text := strings.TrimSpace(line); text != "" {
			return lineMarkerFile(text), nil
		}
		if err != nil {
			if err == io.EOF {
				err = nil
			}
			return "", err
		}
	}
}

// lineMarkerFile parses `# 1 "file" flags...` or `#line 1 "file"`.
func lineMarkerFile(text string) string {
	if !strings.HasPrefix(text, "#") {
		return ""
	}
	text = strings.TrimSpace(strings.TrimPrefix(text[1:], "line"))
	pos := strings.IndexByte(text, '"')
	if pos <= 0 || strings.TrimLeft(text[:pos], "0123456789 \t") != "" {
		return ""
	}
	file, err := ast.Unquote(quotedPrefix(text[pos:]))
	if err != nil {
		return ""
	}
	return file
}

func quotedPrefix(s string) string {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return s[:i+1]
		}
	}
	return s
}

// -----------------------------------------------------------------------------
