package rule

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"
	"strings"

	"github.com/seitarof/speccheck/internal/descriptor"
)

// sourceImports fails on the first import outside the standard library and
// the allowed prefixes.
func sourceImports(r Rule, env *Env, cand *descriptor.TypeDescriptor, vars map[string]string) error {
	for _, path := range cand.Files {
		src, err := env.readFile(path)
		if err != nil {
			return unreadable(r, "read", path, err)
		}
		file, err := parser.ParseFile(token.NewFileSet(), path, src, parser.ImportsOnly)
		if err != nil {
			return unreadable(r, "parse", path, err)
		}
		for _, imp := range file.Imports {
			importPath, err := strconv.Unquote(imp.Path.Value)
			if err != nil {
				continue
			}
			if importAllowed(importPath, r.Values) {
				continue
			}
			vars["actual"] = importPath
			return violation(r, CategoryMismatch, vars)
		}
	}
	return nil
}

// unreadable reports a candidate file the checker could not inspect. That is
// trouble on the checker's side, not a deviation.
func unreadable(r Rule, op, path string, err error) error {
	return &Violation{RuleID: r.ID, Category: CategoryDefect, Message: fmt.Sprintf("%s %s: %v", op, path, err)}
}

// importAllowed accepts standard library paths, whose first element has no
// dot, and paths under an allowed prefix.
func importAllowed(path string, allowed []string) bool {
	first, _, _ := strings.Cut(path, "/")
	if !strings.Contains(first, ".") {
		return true
	}
	for _, prefix := range allowed {
		if path == strings.TrimSuffix(prefix, "/") || strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// sourceBoolCompare fails on the first == or != comparison with a boolean
// literal.
func sourceBoolCompare(r Rule, env *Env, cand *descriptor.TypeDescriptor, vars map[string]string) error {
	for _, path := range cand.Files {
		src, err := env.readFile(path)
		if err != nil {
			return unreadable(r, "read", path, err)
		}
		fset := token.NewFileSet()
		file, err := parser.ParseFile(fset, path, src, 0)
		if err != nil {
			return unreadable(r, "parse", path, err)
		}
		if expr := findBoolCompare(file); expr != nil {
			start := fset.Position(expr.Pos()).Offset
			end := fset.Position(expr.End()).Offset
			vars["actual"] = string(src[start:end])
			return violation(r, CategoryMismatch, vars)
		}
	}
	return nil
}

func findBoolCompare(file *ast.File) *ast.BinaryExpr {
	var found *ast.BinaryExpr
	ast.Inspect(file, func(n ast.Node) bool {
		if found != nil {
			return false
		}
		bin, ok := n.(*ast.BinaryExpr)
		if !ok || (bin.Op != token.EQL && bin.Op != token.NEQ) {
			return true
		}
		if isBoolLiteral(bin.X) || isBoolLiteral(bin.Y) {
			found = bin
			return false
		}
		return true
	})
	return found
}

func isBoolLiteral(e ast.Expr) bool {
	id, ok := ast.Unparen(e).(*ast.Ident)
	return ok && (id.Name == "true" || id.Name == "false")
}
