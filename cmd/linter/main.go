// Command linter runs the project's static checks: a selection of go vet
// passes, staticcheck SA analyzers, a couple of simple checks and the forbiddencalls analyzer.
//
// Usage:
//
//	go run ./cmd/linter ./...
package main

import (
	"strings"

	"github.com/MikhailRaia/shortlink/cmd/linter/analyzer"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/nilness"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/shadow"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"golang.org/x/tools/go/analysis/passes/unusedresult"
	"honnef.co/go/tools/simple"
	"honnef.co/go/tools/staticcheck"
)

func main() {
	checks := []*analysis.Analyzer{
		printf.Analyzer,
		shadow.Analyzer,
		structtag.Analyzer,
		nilness.Analyzer,
		unusedresult.Analyzer,
		analyzer.Analyzer,
	}

	for _, v := range staticcheck.Analyzers {
		if strings.HasPrefix(v.Analyzer.Name, "SA") {
			checks = append(checks, v.Analyzer)
		}
	}

	for _, v := range simple.Analyzers {
		if v.Analyzer.Name == "S1002" || v.Analyzer.Name == "S1008" {
			checks = append(checks, v.Analyzer)
		}
	}

	multichecker.Main(checks...)
}
