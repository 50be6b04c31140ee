/*
 * Copyright (c) 2022 The GoPlus Authors (goplus.org). All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package cfmtchk

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goplus/cfmtchk/checker"
	"github.com/goplus/cfmtchk/clang/parser"
	"github.com/goplus/cfmtchk/clang/preprocessor"
	"github.com/qiniu/x/errors"
	"go.uber.org/zap"
)

const (
	FlagFailFast = 1 << iota
	FlagDumpJson
	FlagKeepTemp
	FlagStrict
	FlagCheckHeaders
)

func isDir(name string) bool {
	if fi, err := os.Lstat(name); err == nil {
		return fi.IsDir()
	}
	return false
}

func isFile(name string) bool {
	if fi, err := os.Lstat(name); err == nil {
		return !fi.IsDir()
	}
	return false
}

// Config customizes a Run. A nil Config checks the default printf family.
type Config struct {
	SelectFile string // only check this file (project mode)

	Funcs map[string]int // extra format functions: name -> format argument index

	Compiler    string // default: clang
	IncludeDirs []string
	Defines     []string
	Flags       []string
}

// Run checks infile, which can be a .c or .i file, a directory, a directory
// holding cfmtchk.cfg, or a "dir/..." pattern. It returns the diagnostics of
// all checked call sites. Unless FlagFailFast is set, files that cannot be
// processed are skipped and reported together in err.
func Run(infile string, flags int, conf *Config) (diags []*checker.Diagnostic, err error) {
	if conf == nil {
		conf = new(Config)
	}
	p := &runner{flags: flags}
	defer func() {
		if e := recover(); e != nil {
			p.errs.Add(newError(e))
		}
		diags, err = p.diags, p.errs.ToError()
	}()
	p.run(infile, newFileConf(conf, flags))
	return
}

type runner struct {
	flags int
	diags []*checker.Diagnostic
	errs  errors.List
}

func (p *runner) run(infile string, conf *fileConf) {
	switch filepath.Ext(infile) {
	case ".i", ".c":
		p.execFile(infile, conf)
	default:
		if strings.HasSuffix(infile, "/...") {
			infile = strings.TrimSuffix(infile, "/...")
			p.execDir(infile, conf, true)
		} else if isDir(infile) {
			projfile := filepath.Join(infile, projFile)
			if isFile(projfile) {
				p.execProj(projfile, conf)
				return
			}
			if n := p.execDir(infile, conf, false); n == 0 {
				fatalf("no *.c files in %s.\n", infile)
			}
		} else {
			fatalf("%s is not a .c file.\n", infile)
		}
	}
}

func (p *runner) execDir(dir string, conf *fileConf, recursively bool) (n int) {
	if name := filepath.Base(dir); strings.HasPrefix(name, "_") && name != "_" {
		return
	}
	if recursively {
		if projfile := filepath.Join(dir, projFile); isFile(projfile) {
			p.execProj(projfile, conf)
			return 1
		}
	}
	fis, err := os.ReadDir(dir)
	check(err)
	for _, fi := range fis {
		fname := fi.Name()
		if fi.IsDir() {
			if recursively {
				n += p.execDir(filepath.Join(dir, fname), conf, true)
			}
			continue
		}
		if strings.HasSuffix(fname, ".c") && !conf.ignored(fname) {
			p.execFile(filepath.Join(dir, fname), conf)
			n++
		}
	}
	return
}

// fileConf is the resolved configuration applied to each source file.
type fileConf struct {
	pp       preprocessor.Config
	parse    parser.Config
	check    checker.Config
	ignore   []string
	selected string
}

func newFileConf(conf *Config, flags int) *fileConf {
	funcs := make(map[string]int, len(checker.DefaultFuncs)+len(conf.Funcs))
	for name, idx := range checker.DefaultFuncs {
		funcs[name] = idx
	}
	for name, idx := range conf.Funcs {
		funcs[name] = idx
	}
	incs := make([]string, len(conf.IncludeDirs))
	for i, dir := range conf.IncludeDirs {
		abs, err := filepath.Abs(dir)
		check(err)
		incs[i] = abs
	}
	ret := &fileConf{
		pp: preprocessor.Config{
			Compiler:    conf.Compiler,
			IncludeDirs: incs,
			Defines:     conf.Defines,
			Flags:       conf.Flags,
		},
		parse: parser.Config{Compiler: conf.Compiler, Flags: conf.Flags},
		check: checker.Config{
			Funcs:        funcs,
			Strict:       (flags & FlagStrict) != 0,
			CheckHeaders: (flags & FlagCheckHeaders) != 0,
		},
	}
	if conf.SelectFile != "" {
		sel, err := filepath.Abs(conf.SelectFile)
		check(err)
		ret.selected = sel
	}
	return ret
}

func (conf *fileConf) ignored(fname string) bool {
	for _, name := range conf.ignore {
		if ok, _ := filepath.Match(name, fname); ok {
			return true
		}
	}
	return false
}

func (p *runner) execFile(infile string, conf *fileConf) {
	if (p.flags & FlagFailFast) == 0 {
		defer func() {
			if e := recover(); e != nil {
				p.errs.Add(newError(e))
			}
		}()
	}
	infile, err := filepath.Abs(infile)
	check(err)
	if conf.selected != "" && infile != conf.selected {
		return
	}
	zap.S().Infof("==> Checking %s ...", infile)

	outfile, mainFile := infile, infile
	if filepath.Ext(infile) == ".c" {
		outfile = infile + ".i"
		err = preprocessor.Do(infile, outfile, &conf.pp)
		check(err)
		if (p.flags & FlagKeepTemp) == 0 {
			defer os.Remove(outfile)
		}
	} else {
		// calls are located in the file named by the leading line marker
		if file, err := preprocessor.MainFile(infile); err == nil && file != "" {
			mainFile = file
		}
	}

	var json []byte
	parseConf := conf.parse
	parseConf.Json = &json
	doc, _, err := parser.ParseFileEx(outfile, 0, &parseConf)
	check(err)

	if (p.flags & FlagDumpJson) != 0 {
		err = os.WriteFile(strings.TrimSuffix(outfile, ".i")+".json", json, 0666)
		check(err)
	}

	checkConf := conf.check
	checkConf.MainFile = mainFile
	diags, err := checker.Check(doc, &checkConf)
	check(err)
	p.diags = append(p.diags, diags...)
}

// -----------------------------------------------------------------------------

func check(err error) {
	if err != nil {
		panic(err)
	}
}

func fatalf(format string, args ...interface{}) {
	panic(fmt.Errorf(format, args...))
}

func newError(v interface{}) error {
	switch e := v.(type) {
	case error:
		return e
	case string:
		return errors.New(e)
	}
	return fmt.Errorf("%v", v)
}

// -----------------------------------------------------------------------------
