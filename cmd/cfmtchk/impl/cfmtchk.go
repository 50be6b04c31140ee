package cfmtchk

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/goplus/cfmtchk"
	"github.com/goplus/cfmtchk/checker"
	"github.com/goplus/cfmtchk/clang/parser"
	"github.com/goplus/cfmtchk/clang/pathutil"
	"github.com/goplus/cfmtchk/clang/preprocessor"
	"github.com/goplus/cfmtchk/report"
	"go.uber.org/zap"
)

const ShortUsage = "cfmtchk [-v -ff -strict -headers -json -keep -format text|json -sel file -I dir -D name] path...\n"

const (
	ExitOK    = 0
	ExitDiags = 1
	ExitError = 2
)

type multiFlag []string

func (p *multiFlag) String() string     { return strings.Join(*p, ",") }
func (p *multiFlag) Set(v string) error { *p = append(*p, v); return nil }

// Main runs the checker over the paths in args. It returns ExitDiags when
// format diagnostics were found and ExitError when a file could not be
// checked at all.
func Main(flag *flag.FlagSet, args []string, stdout, stderr io.Writer) int {
	var (
		verbose  = flag.Bool("v", false, "print verbose information")
		failfast = flag.Bool("ff", false, "fail fast (stop if an error is encountered)")
		strict   = flag.Bool("strict", false, "report format arguments that are not string literals")
		headers  = flag.Bool("headers", false, "also check calls located in included headers")
		json     = flag.Bool("json", false, "dump C AST to a file in json format")
		keep     = flag.Bool("keep", false, "keep the preprocessed *.i files")
		format   = flag.String("format", "text", "output format: text or json")
		sel      = flag.String("sel", "", "select a file (only available in project mode)")
		funcs    multiFlag
		incs     multiFlag
		defs     multiFlag
	)
	flag.Var(&funcs, "func", "extra format function as name=index, e.g. log_printf=1")
	flag.Var(&incs, "I", "add include directory")
	flag.Var(&defs, "D", "define a macro")
	if err := flag.Parse(args); err != nil {
		return ExitError
	}
	if flag.NArg() < 1 {
		fmt.Fprintf(stderr, "Usage: "+ShortUsage)
		flag.PrintDefaults()
		return ExitError
	}
	if *format != "text" && *format != "json" {
		fmt.Fprintf(stderr, "unknown output format: %s\n", *format)
		return ExitError
	}

	if *verbose {
		if logger, err := zap.NewDevelopment(); err == nil {
			defer zap.ReplaceGlobals(logger)()
		}
		checker.SetDebug(checker.DbgFlagAll)
		parser.SetDebug(parser.DbgFlagAll)
		preprocessor.SetDebug(preprocessor.DbgFlagAll)
	}

	var flags int
	if *failfast {
		flags |= cfmtchk.FlagFailFast
	}
	if *strict {
		flags |= cfmtchk.FlagStrict
	}
	if *headers {
		flags |= cfmtchk.FlagCheckHeaders
	}
	if *json {
		flags |= cfmtchk.FlagDumpJson
	}
	if *keep {
		flags |= cfmtchk.FlagKeepTemp
	}
	conf := &cfmtchk.Config{SelectFile: *sel, IncludeDirs: incs, Defines: defs}
	if len(funcs) > 0 {
		m, err := parseFuncs(funcs)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return ExitError
		}
		conf.Funcs = m
	}

	code := ExitOK
	var all []*checker.Diagnostic
	for _, infile := range flag.Args() {
		diags, err := cfmtchk.Run(infile, flags, conf)
		all = append(all, diags...)
		if err != nil {
			fmt.Fprintln(stderr, err)
			code = ExitError
		}
	}
	relativize(all)

	var err error
	if *format == "json" {
		err = report.JSON(stdout, all)
	} else {
		color := false
		if f, ok := stdout.(*os.File); ok {
			color = report.IsTerminal(f)
		}
		err = report.Text(stdout, all, color)
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return ExitError
	}
	if code == ExitOK && len(all) > 0 {
		code = ExitDiags
	}
	return code
}

func parseFuncs(items []string) (map[string]int, error) {
	ret := make(map[string]int, len(items))
	for _, item := range items {
		pos := strings.IndexByte(item, '=')
		if pos <= 0 {
			return nil, fmt.Errorf("invalid -func %q: expect name=index", item)
		}
		idx, err := strconv.Atoi(item[pos+1:])
		if err != nil || idx < 0 {
			return nil, fmt.Errorf("invalid -func %q: bad format argument index", item)
		}
		ret[item[:pos]] = idx
	}
	return ret, nil
}

func relativize(diags []*checker.Diagnostic) {
	wd, err := os.Getwd()
	if err != nil {
		return
	}
	for _, d := range diags {
		d.File = pathutil.Display(wd, d.File)
	}
}
