package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/goplus/cfmtchk/checker"
	"github.com/goplus/cfmtchk/clang/ast"
	"github.com/goplus/cfmtchk/clang/parser"
	jsoniter "github.com/json-iterator/go"
)

var (
	dump  = flag.Bool("dump", false, "dump AST")
	calls = flag.Bool("calls", false, "list format function call sites")
	mainf = flag.String("main", "", "with -calls, only list calls located in this file")
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: clangast [-dump | -calls [-main file.c]] source.i\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() < 1 {
		usage()
		return
	}
	var file = flag.Arg(0)
	var err error
	if *dump {
		doc, _, e := parser.DumpAST(file, nil)
		if e == nil {
			os.Stdout.Write(doc)
			return
		}
		err = e
	} else {
		doc, _, e := parser.ParseFile(file, 0)
		if e == nil {
			if *calls {
				e = listCalls(doc)
			} else {
				enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				e = enc.Encode(doc)
			}
		}
		err = e
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func listCalls(doc *ast.Node) error {
	conf := &checker.Config{MainFile: *mainf}
	sites, err := checker.Calls(doc, conf)
	if err != nil {
		return err
	}
	for _, call := range sites {
		ret := call.Validate()
		format := "<non-constant>"
		if call.Const {
			format = strconv.Quote(call.Format)
		}
		fmt.Printf("%s:%d:%d: %s in %s: %s %v => %v\n",
			call.File, call.Line, call.Col, call.Func, call.Caller, format, call.ArgSrcs, ret.Code)
	}
	return nil
}
