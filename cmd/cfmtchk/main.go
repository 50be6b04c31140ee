package main

import (
	"flag"
	"fmt"
	"os"

	cfmtchk "github.com/goplus/cfmtchk/cmd/cfmtchk/impl"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: "+cfmtchk.ShortUsage)
		flag.PrintDefaults()
	}
	os.Exit(cfmtchk.Main(flag.CommandLine, os.Args[1:], os.Stdout, os.Stderr))
}
