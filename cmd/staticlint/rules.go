package main

import (
	"go/ast"
	"strconv"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// StdJSONAnalyzer требует github.com/goccy/go-json вместо encoding/json,
// чтобы сериализация ответов $batch везде шла через одну библиотеку
var StdJSONAnalyzer = &analysis.Analyzer{
	Name:     "stdjson",
	Doc:      "reports imports of encoding/json; use github.com/goccy/go-json",
	Run:      runStdJSONCheck,
	Requires: []*analysis.Analyzer{inspect.Analyzer},
}

// NoCtxRequestAnalyzer запрещает http.NewRequest: запрос без контекста
// не видит таймаут подзапроса и отмену внешнего запроса
var NoCtxRequestAnalyzer = &analysis.Analyzer{
	Name:     "noctxrequest",
	Doc:      "reports http.NewRequest calls; use http.NewRequestWithContext",
	Run:      runNoCtxRequestCheck,
	Requires: []*analysis.Analyzer{inspect.Analyzer},
}

func runStdJSONCheck(pass *analysis.Pass) (interface{}, error) {
	inspect := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	inspect.Preorder([]ast.Node{(*ast.ImportSpec)(nil)}, func(node ast.Node) {
		spec := node.(*ast.ImportSpec)
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			return
		}
		if path == "encoding/json" {
			pass.Reportf(spec.Pos(), "use github.com/goccy/go-json instead of encoding/json")
		}
	})
	return nil, nil
}

func runNoCtxRequestCheck(pass *analysis.Pass) (interface{}, error) {
	inspect := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	inspect.Preorder([]ast.Node{(*ast.CallExpr)(nil)}, func(node ast.Node) {
		call := node.(*ast.CallExpr)
		if isPkgFunc(pass, call, "net/http", "NewRequest") {
			pass.Reportf(call.Pos(), "use http.NewRequestWithContext to propagate deadlines")
		}
	})
	return nil, nil
}
