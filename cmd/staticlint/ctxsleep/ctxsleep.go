// Package ctxsleep defines an analyzer that reports time.Sleep outside main packages and tests.
//
// Producers and other long-running loops must wait on a timer together with
// ctx.Done() so that shutdown is never stuck behind a sleep.
package ctxsleep

import (
	"errors"
	"go/ast"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// Analyzer is the ctxsleep analyzer.
var Analyzer = &analysis.Analyzer{
	Name:     "ctxsleep",
	Doc:      "reports time.Sleep calls in library code; wait on a timer and ctx.Done() instead",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

func run(pass *analysis.Pass) (any, error) {
	if pass.Pkg == nil || pass.Pkg.Name() == "main" {
		return nil, nil
	}

	insp, ok := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	if !ok {
		return nil, errors.New("failed to assert type: expected *inspector.Inspector")
	}

	insp.Preorder([]ast.Node{(*ast.CallExpr)(nil)}, func(n ast.Node) {
		call, ok := n.(*ast.CallExpr)
		if !ok || inTestFile(pass, call) {
			return
		}
		if isTimeSleep(pass.TypesInfo, call) {
			pass.Reportf(call.Pos(), "time.Sleep ignores cancellation; select on a timer and ctx.Done() instead")
		}
	})

	return nil, nil
}

func inTestFile(pass *analysis.Pass, n ast.Node) bool {
	if pass.Fset == nil {
		return false
	}
	return strings.HasSuffix(pass.Fset.Position(n.Pos()).Filename, "_test.go")
}

// isTimeSleep reports whether call invokes time.Sleep, however the package was imported.
func isTimeSleep(info *types.Info, call *ast.CallExpr) bool {
	if info == nil || call == nil {
		return false
	}
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok || sel.Sel == nil {
		return false
	}
	fn, ok := info.Uses[sel.Sel].(*types.Func)
	if !ok || fn.Pkg() == nil {
		return false
	}
	return fn.Pkg().Path() == "time" && fn.Name() == "Sleep"
}
