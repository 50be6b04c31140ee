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
	"os"
	"path/filepath"
	"strings"

	"github.com/goplus/cfmtchk/clang/cmod"
	"github.com/goplus/cfmtchk/clang/pathutil"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

const projFile = cmod.ConfigFile

type projIgnore struct {
	Names []string `json:"names"`
}

type projSource struct {
	Dirs   []string   `json:"dirs"`
	Files  []string   `json:"files"`
	Ignore projIgnore `json:"ignore"`
}

type projConf struct {
	Source   projSource     `json:"source"`
	Include  []string       `json:"include"`
	Deps     []string       `json:"deps"`
	Define   []string       `json:"define"`
	Flags    []string       `json:"flags"`
	PPFlag   string         `json:"pp"` // default: -E
	Compiler string         `json:"cc"`
	Funcs    map[string]int `json:"funcs"`

	Strict       bool `json:"strict"`
	CheckHeaders bool `json:"checkHeaders"`
}

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func loadProj(projfile string) (conf *projConf, err error) {
	b, err := os.ReadFile(projfile)
	if err != nil {
		return
	}
	conf = new(projConf)
	err = json.Unmarshal(b, conf)
	return
}

func (p *runner) execProj(projfile string, in *fileConf) {
	conf, err := loadProj(projfile)
	check(err)

	base, err := filepath.Abs(filepath.Dir(projfile))
	check(err)
	if len(conf.Source.Dirs) == 0 && len(conf.Source.Files) == 0 {
		fatalf("empty project: no source files specified in %s.\n", projFile)
	}
	zap.S().Infof("==> Checking project %s ...", base)

	fc := conf.apply(base, in)
	for _, dir := range conf.Source.Dirs {
		recursively := strings.HasSuffix(dir, "/...")
		if recursively {
			dir = dir[:len(dir)-4]
		}
		p.execProjDir(pathutil.Canonical(base, dir), fc, recursively)
	}
	for _, file := range conf.Source.Files {
		p.execFile(pathutil.Canonical(base, file), fc)
	}
}

// apply layers the project settings over in. Include dirs, defines and flags
// accumulate; cc, pp and funcs entries override.
func (conf *projConf) apply(base string, in *fileConf) *fileConf {
	fc := *in
	incs := make([]string, 0, len(in.pp.IncludeDirs)+len(conf.Include))
	incs = append(incs, in.pp.IncludeDirs...)
	for _, dir := range conf.Include {
		incs = append(incs, pathutil.Canonical(base, dir))
	}
	deps, err := cmod.IncludeDirs(base, conf.Deps)
	check(err)
	incs = append(incs, deps...)

	fc.pp.BaseDir = base
	fc.pp.IncludeDirs = incs
	fc.pp.Defines = append(append([]string(nil), in.pp.Defines...), conf.Define...)
	fc.pp.Flags = append(append([]string(nil), in.pp.Flags...), conf.Flags...)
	if conf.PPFlag != "" {
		fc.pp.PPFlag = conf.PPFlag
	}
	if conf.Compiler != "" {
		fc.pp.Compiler = conf.Compiler
		fc.parse.Compiler = conf.Compiler
	}
	fc.parse.Flags = fc.pp.Flags

	if len(conf.Funcs) > 0 {
		funcs := make(map[string]int, len(in.check.Funcs)+len(conf.Funcs))
		for name, idx := range in.check.Funcs {
			funcs[name] = idx
		}
		for name, idx := range conf.Funcs {
			funcs[name] = idx
		}
		fc.check.Funcs = funcs
	}
	fc.check.Strict = in.check.Strict || conf.Strict
	fc.check.CheckHeaders = in.check.CheckHeaders || conf.CheckHeaders
	fc.ignore = append(append([]string(nil), in.ignore...), conf.Source.Ignore.Names...)
	return &fc
}

func (p *runner) execProjDir(dir string, conf *fileConf, recursively bool) {
	fis, err := os.ReadDir(dir)
	check(err)
	for _, fi := range fis {
		fname := fi.Name()
		if strings.HasPrefix(fname, "_") {
			continue
		}
		if fi.IsDir() {
			if recursively {
				p.execProjDir(filepath.Join(dir, fname), conf, true)
			}
			continue
		}
		if strings.HasSuffix(fname, ".c") && !conf.ignored(fname) {
			p.execFile(filepath.Join(dir, fname), conf)
		}
	}
}
