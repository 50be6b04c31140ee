package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/goplus/cfmtchk/clang/preprocessor"
)

type multiFlag []string

func (p *multiFlag) String() string     { return fmt.Sprint(*p) }
func (p *multiFlag) Set(v string) error { *p = append(*p, v); return nil }

var (
	outfile = flag.String("o", "", "output file (default: source.c.i)")
	cc      = flag.String("cc", "", "C compiler (default: clang)")
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: clangpp [-o out.i -cc clang -I dir -D name] source.c\n")
	flag.PrintDefaults()
}

func main() {
	var conf preprocessor.Config
	flag.Var((*multiFlag)(&conf.IncludeDirs), "I", "add include directory")
	flag.Var((*multiFlag)(&conf.Defines), "D", "define a macro")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}
	infile := flag.Arg(0)
	out := *outfile
	if out == "" {
		out = infile + ".i"
	}
	conf.Compiler = *cc
	if err := preprocessor.Do(infile, out, &conf); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
