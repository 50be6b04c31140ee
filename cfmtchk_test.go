package cfmtchk

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/goplus/cfmtchk/checker"
	"github.com/goplus/cfmtchk/printf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hasClang(t *testing.T) {
	if _, err := exec.LookPath("clang"); err != nil {
		t.Skip("clang not found")
	}
}

func TestLoadProj(t *testing.T) {
	conf, err := loadProj("testdata/proj/cfmtchk.cfg")
	require.NoError(t, err)
	assert.Equal(t, []string{"src/..."}, conf.Source.Dirs)
	assert.Equal(t, []string{"gen_*.c"}, conf.Source.Ignore.Names)
	assert.Equal(t, []string{"include"}, conf.Include)
	assert.Equal(t, []string{`LOG_PREFIX="proj: "`}, conf.Define)
	assert.Equal(t, map[string]int{"log_printf": 1}, conf.Funcs)
	assert.False(t, conf.Strict)

	_, err = loadProj("testdata/nonexist.cfg")
	assert.Error(t, err)
}

func TestNewFileConf(t *testing.T) {
	fc := newFileConf(&Config{Funcs: map[string]int{"die": 0, "printf": 3}}, FlagStrict)
	assert.Equal(t, 0, fc.check.Funcs["die"])
	assert.Equal(t, 3, fc.check.Funcs["printf"])
	assert.Equal(t, 1, fc.check.Funcs["fprintf"])
	assert.Equal(t, 0, checker.DefaultFuncs["printf"])
	assert.True(t, fc.check.Strict)
	assert.False(t, fc.check.CheckHeaders)
}

func TestProjApply(t *testing.T) {
	in := newFileConf(&Config{IncludeDirs: []string{"/opt/inc"}, Defines: []string{"A=1"}}, 0)
	conf := &projConf{
		Include: []string{"include", "/usr/include/x"},
		Define:  []string{"B"},
		Flags:   []string{"-std=c99"},
		PPFlag:  "-E",
		Funcs:   map[string]int{"log_printf": 1},
		Strict:  true,
		Source:  projSource{Ignore: projIgnore{Names: []string{"gen_*.c"}}},
	}
	fc := conf.apply("/proj/", in)
	assert.Equal(t, []string{"/opt/inc", "/proj/include", "/usr/include/x"}, fc.pp.IncludeDirs)
	assert.Equal(t, []string{"A=1", "B"}, fc.pp.Defines)
	assert.Equal(t, []string{"-std=c99"}, fc.parse.Flags)
	assert.Equal(t, "/proj/", fc.pp.BaseDir)
	assert.Equal(t, 1, fc.check.Funcs["log_printf"])
	assert.Equal(t, 0, fc.check.Funcs["printf"])
	assert.True(t, fc.check.Strict)
	assert.True(t, fc.ignored("gen_table.c"))
	assert.False(t, fc.ignored("main.c"))

	assert.Equal(t, []string{"A=1"}, in.pp.Defines)
	assert.NotContains(t, in.check.Funcs, "log_printf")
	assert.False(t, in.ignored("gen_table.c"))
}

func TestRunErrors(t *testing.T) {
	_, err := Run("testdata/proj/cfmtchk.cfg", 0, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is not a .c file")

	_, err = Run(t.TempDir(), 0, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no *.c files")

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, projFile), []byte(`{"include": ["."]}`), 0666))
	_, err = Run(dir, 0, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty project")
}

func TestRunFile(t *testing.T) {
	hasClang(t)
	diags, err := Run("testdata/hello/hello.c", 0, nil)
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, 7, diags[0].Line)
	assert.Equal(t, printf.WrongArg, diags[0].Result.Code)
	assert.Equal(t, "printf", diags[0].Func)
	assert.Equal(t, "main", diags[0].Caller)
	_, err = os.Stat("testdata/hello/hello.c.i")
	assert.True(t, os.IsNotExist(err))
}

func TestRunPreprocessed(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fakeclang is a shell script")
	}
	cc, err := filepath.Abs("testdata/preprocessed/fakeclang")
	require.NoError(t, err)
	conf := &Config{Compiler: cc}

	diags, err := Run("testdata/preprocessed/hello.i", 0, conf)
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, "hello.c", diags[0].File)
	assert.Equal(t, 4, diags[0].Line)
	assert.Equal(t, 2, diags[0].Col)
	assert.Equal(t, printf.WrongArg, diags[0].Result.Code)
	assert.Equal(t, "main", diags[0].Caller)

	diags, err = Run("testdata/preprocessed/hello.i", FlagCheckHeaders, conf)
	require.NoError(t, err)
	require.Len(t, diags, 2)
	assert.Equal(t, "./log.h", diags[0].File)
	assert.Equal(t, 2, diags[0].Line)
	assert.Equal(t, "trace", diags[0].Caller)
	assert.Equal(t, "hello.c", diags[1].File)
}

func TestRunProj(t *testing.T) {
	hasClang(t)
	diags, err := Run("testdata/proj", 0, nil)
	require.NoError(t, err)
	require.Len(t, diags, 2)
	assert.Equal(t, "main.c", filepath.Base(diags[0].File))
	assert.Equal(t, 6, diags[0].Line)
	assert.Equal(t, printf.WrongArg, diags[0].Result.Code)
	assert.Equal(t, "util.c", filepath.Base(diags[1].File))
	assert.Equal(t, 5, diags[1].Line)
	assert.Equal(t, printf.TooManyArgs, diags[1].Result.Code)

	diags, err = Run("testdata/proj", 0, &Config{SelectFile: "testdata/proj/src/util/util.c"})
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, "util.c", filepath.Base(diags[0].File))
}

func TestRunContinueOnError(t *testing.T) {
	hasClang(t)
	diags, err := Run("testdata/broken", 0, nil)
	require.Error(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, "ok.c", filepath.Base(diags[0].File))
	assert.Equal(t, 5, diags[0].Line)
	assert.Equal(t, printf.InvalidFormat, diags[0].Result.Code)

	diags, err = Run("testdata/broken", FlagFailFast, nil)
	require.Error(t, err)
	assert.Empty(t, diags)
}
