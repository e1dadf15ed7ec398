// Package analyzer reports calls that bypass the service's error and logging
// conventions.
package analyzer

import (
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

const (
	analyzerName = "forbiddencalls"
	analyzerDoc  = "reports panic, process exits outside main, and printing through the standard log package"

	zerologPath = "github.com/rs/zerolog/log"
)

// Analyzer checks for forbidden function calls.
var Analyzer = &analysis.Analyzer{
	Name:     analyzerName,
	Doc:      analyzerDoc,
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

var (
	stdExits = map[string]bool{"Fatal": true, "Fatalf": true, "Fatalln": true}
	stdPrint = map[string]bool{
		"Print": true, "Printf": true, "Println": true,
		"Panic": true, "Panicf": true, "Panicln": true,
	}
	zerologExits = map[string]bool{"Fatal": true, "Panic": true}
)

func run(pass *analysis.Pass) (interface{}, error) {
	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	nodeFilter := []ast.Node{
		(*ast.CallExpr)(nil),
	}

	insp.WithStack(nodeFilter, func(node ast.Node, push bool, stack []ast.Node) bool {
		if !push {
			return true
		}
		checkCall(pass, node.(*ast.CallExpr), stack)
		return true
	})

	return nil, nil
}

func checkCall(pass *analysis.Pass, callExpr *ast.CallExpr, stack []ast.Node) {
	switch fn := callExpr.Fun.(type) {
	case *ast.Ident:
		if fn.Name == "panic" && isBuiltin(pass, fn) {
			pass.Reportf(callExpr.Pos(), "panic is forbidden")
		}
	case *ast.SelectorExpr:
		checkSelectorExpr(pass, fn, callExpr, stack)
	}
}

func checkSelectorExpr(pass *analysis.Pass, selectorExpr *ast.SelectorExpr, callExpr *ast.CallExpr, stack []ast.Node) {
	ident, ok := selectorExpr.X.(*ast.Ident)
	if !ok || pass.TypesInfo == nil {
		return
	}

	pkgName, ok := pass.TypesInfo.Uses[ident].(*types.PkgName)
	if !ok {
		return
	}

	fn := selectorExpr.Sel.Name
	inMain := isInMainFunction(pass, stack)

	switch pkgName.Imported().Path() {
	case "log":
		switch {
		case stdExits[fn] && !inMain:
			pass.Reportf(callExpr.Pos(), "log.%s is forbidden outside main function", fn)
		case stdPrint[fn]:
			pass.Reportf(callExpr.Pos(), "log.%s is forbidden, use zerolog", fn)
		}
	case "os":
		if fn == "Exit" && !inMain {
			pass.Reportf(callExpr.Pos(), "os.Exit is forbidden outside main function")
		}
	case zerologPath:
		if zerologExits[fn] && !inMain {
			pass.Reportf(callExpr.Pos(), "zerolog log.%s is forbidden outside main function", fn)
		}
	}
}

func isBuiltin(pass *analysis.Pass, ident *ast.Ident) bool {
	if pass.TypesInfo == nil {
		return true
	}
	_, ok := pass.TypesInfo.Uses[ident].(*types.Builtin)
	return ok
}

// isInMainFunction reports whether the innermost enclosing declaration is
// func main of package main.
func isInMainFunction(pass *analysis.Pass, stack []ast.Node) bool {
	if pass.Pkg.Name() != "main" {
		return false
	}
	for i := len(stack) - 1; i >= 0; i-- {
		if funcDecl, ok := stack[i].(*ast.FuncDecl); ok {
			return funcDecl.Recv == nil && funcDecl.Name.Name == "main"
		}
	}
	return false
}
