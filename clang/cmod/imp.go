package cmod

import (
	"os"
	"path/filepath"

	"github.com/goplus/cfmtchk/clang/pathutil"
	"github.com/goplus/mod/gopmod"
	jsoniter "github.com/json-iterator/go"
	"github.com/qiniu/x/errors"
)

// ConfigFile is the project file read from each dependency package.
const ConfigFile = "cfmtchk.cfg"

var (
	ErrGoModNotFound = errors.New("go.mod not found")
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// LoadDeps resolves deps through the go.mod enclosing dir.
func LoadDeps(dir string, deps []string) (pkgs []*Package, err error) {
	mod, err := gopmod.Load(dir)
	if err != nil {
		err = errors.NewWith(err, `gopmod.Load(dir)`, -2, "gopmod.Load", dir)
		return
	}
	return Imports(mod, deps)
}

// IncludeDirs returns the include dirs exported by deps, in order.
func IncludeDirs(dir string, deps []string) (incs []string, err error) {
	if len(deps) == 0 {
		return
	}
	pkgs, err := LoadDeps(dir, deps)
	if err != nil {
		return
	}
	for _, pkg := range pkgs {
		incs = append(incs, pkg.Include...)
	}
	return
}

type Module = gopmod.Module

func Imports(mod *Module, pkgPaths []string) (pkgs []*Package, err error) {
	pkgs = make([]*Package, len(pkgPaths))
	for i, pkgPath := range pkgPaths {
		pkgs[i], err = Import(mod, pkgPath)
		if err != nil {
			err = errors.NewWith(err, `Import(mod, pkgPath)`, -2, "cmod.Import", mod, pkgPath)
			return
		}
	}
	return
}

// Package is a dependency holding C headers.
type Package struct {
	*gopmod.Package
	Path    string   // package path
	Dir     string   // absolute local path of the package
	Include []string // absolute include paths
}

func Import(mod *Module, pkgPath string) (p *Package, err error) {
	if mod == nil {
		return nil, ErrGoModNotFound
	}
	pkg, err := mod.Lookup(pkgPath)
	if err != nil {
		err = errors.NewWith(err, `mod.Lookup(pkgPath)`, -2, "(*gopmod.Module).Lookup", pkgPath)
		return
	}
	pkgDir, err := filepath.Abs(pkg.Dir)
	if err != nil {
		err = errors.NewWith(err, `filepath.Abs(pkg.Dir)`, -2, "filepath.Abs", pkg.Dir)
		return
	}
	pkgIncs, err := FindIncludeDirs(pkgDir)
	if err != nil {
		err = errors.NewWith(err, `FindIncludeDirs(pkgDir)`, -2, "cmod.FindIncludeDirs", pkgDir)
		return
	}
	return &Package{Package: pkg, Path: pkgPath, Dir: pkgDir, Include: pkgIncs}, nil
}

// FindIncludeDirs reads the "include" list of pkgDir/cfmtchk.cfg and makes
// each entry absolute. A package without include list exports pkgDir itself.
func FindIncludeDirs(pkgDir string) (incs []string, err error) {
	var conf struct {
		Include []string `json:"include"`
	}
	file := filepath.Join(pkgDir, ConfigFile)
	b, err := os.ReadFile(file)
	if err != nil {
		err = errors.NewWith(err, `os.ReadFile(file)`, -2, "os.ReadFile", file)
		return
	}
	err = json.Unmarshal(b, &conf)
	if err != nil {
		err = errors.NewWith(err, `json.Unmarshal(b, &conf)`, -2, "json.Unmarshal", b, &conf)
		return
	}
	if len(conf.Include) == 0 {
		return []string{pkgDir}, nil
	}
	incs = make([]string, len(conf.Include))
	for i, dir := range conf.Include {
		incs[i] = pathutil.Canonical(pkgDir, dir)
	}
	return
}
