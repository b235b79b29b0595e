// ptdump loads a Go package, runs a points-to analysis over its
// functions, and dumps the solved constraint graph to stdout.
package main

import (
	"flag"
	"fmt"
	"go/ast"
	"os"

	"golang.org/x/tools/go/packages"

	"github.com/godoctor/pointsto"
	"github.com/godoctor/pointsto/frontend"
	"github.com/godoctor/pointsto/typelayout"
)

var (
	fieldSensitiveFlag = flag.Bool("field-sensitive", true,
		"decompose struct-typed variables into per-field variables")

	statsFlag = flag.Bool("stats", false,
		"print solver statistics after dumping the graph")

	formatFlag = flag.String("format", "plain",
		"output format, currently only 'plain' is supported")
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: %s [flags] <package>

Runs the points-to analysis over every function in <package> and prints
the solved constraint graph.

Flags:
`, os.Args[0])
	flag.PrintDefaults()
	os.Exit(2)
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() != 1 {
		usage()
	}
	if *formatFlag != "plain" {
		fmt.Fprintf(os.Stderr, "ptdump: unsupported -format %q\n", *formatFlag)
		os.Exit(2)
	}

	pkgs, err := typelayout.Load(&packages.Config{}, flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "ptdump: %v\n", err)
		os.Exit(1)
	}

	a := pointsto.New(pointsto.Options{
		FieldSensitive: *fieldSensitiveFlag,
		EmitStats:      *statsFlag,
	})

	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			for _, e := range pkg.Errors {
				fmt.Fprintln(os.Stderr, e)
			}
			continue
		}
		cache := typelayout.NewCache(pkg.TypesSizes)
		emitter := frontend.NewEmitter(a, pkg.TypesInfo, cache)
		for _, file := range pkg.Syntax {
			for _, decl := range file.Decls {
				if fn, ok := decl.(*ast.FuncDecl); ok {
					emitter.EmitFunc(fn)
				}
			}
		}
	}

	a.Solve()
	a.Dump(os.Stdout)

	if *statsFlag {
		printStats(a.Stats())
	}
	for _, n := range a.Notes() {
		fmt.Fprintf(os.Stderr, "ptdump: %s: %s\n", n.Severity, n.Message)
	}
}

func printStats(s pointsto.Stats) {
	fmt.Printf("vars created:        %d\n", s.VarsCreated)
	fmt.Printf("static unifications:  %d\n", s.StaticUnifications)
	fmt.Printf("dynamic unifications: %d\n", s.DynamicUnifications)
	fmt.Printf("solver iterations:    %d\n", s.SolverIterations)
	fmt.Printf("precision loss events: %d\n", s.PrecisionLossEvents)
}
