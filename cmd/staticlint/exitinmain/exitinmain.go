// Package exitinmain reports calls in main.main that terminate the process
// without unwinding deferred calls: os.Exit, the log.Fatal family and
// (*zap.Logger).Fatal.
package exitinmain

import (
	"errors"
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

var Analyzer = &analysis.Analyzer{
	Name:     "exitinmain",
	Doc:      "reports os.Exit, log.Fatal and zap Fatal calls made directly in main.main",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

var forbidden = map[string]map[string]bool{
	"os":                    {"Exit": true},
	"log":                   {"Fatal": true, "Fatalf": true, "Fatalln": true},
	"go.uber.org/zap":       {"Fatal": true},
	"go.uber.org/zap.Sugar": {"Fatal": true, "Fatalf": true, "Fatalw": true},
}

func run(pass *analysis.Pass) (any, error) {
	if pass.Pkg.Name() != "main" {
		return nil, nil
	}
	insp, ok := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)
	if !ok {
		return nil, errors.New("exitinmain: inspector result missing")
	}

	insp.Preorder([]ast.Node{(*ast.FuncDecl)(nil)}, func(n ast.Node) {
		fd, ok := n.(*ast.FuncDecl)
		if !ok || fd.Recv != nil || fd.Name.Name != "main" || fd.Body == nil {
			return
		}
		ast.Inspect(fd.Body, func(nn ast.Node) bool {
			switch x := nn.(type) {
			case *ast.FuncLit:
				// closures run later, if at all
				return false
			case *ast.CallExpr:
				if name, ok := exitCall(pass, x); ok {
					pass.Reportf(x.Pos(), "%s called directly in main; return an exit code from a helper instead", name)
				}
			}
			return true
		})
	})
	return nil, nil
}

func exitCall(pass *analysis.Pass, call *ast.CallExpr) (string, bool) {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return "", false
	}
	fn, ok := pass.TypesInfo.Uses[sel.Sel].(*types.Func)
	if !ok || fn.Pkg() == nil {
		return "", false
	}

	key := fn.Pkg().Path()
	if sig, ok := fn.Type().(*types.Signature); ok && sig.Recv() != nil {
		if named, ok := derefNamed(sig.Recv().Type()); ok && named.Obj().Name() == "SugaredLogger" {
			key += ".Sugar"
		}
	}
	if forbidden[key][fn.Name()] {
		return fn.Pkg().Name() + "." + fn.Name(), true
	}
	return "", false
}

func derefNamed(t types.Type) (*types.Named, bool) {
	if p, ok := t.(*types.Pointer); ok {
		t = p.Elem()
	}
	n, ok := t.(*types.Named)
	return n, ok
}
