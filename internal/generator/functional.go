package generator

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/parser"
	"go/printer"
	"go/token"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Directive prefixes recognized in the doc comment of a functional test.
const (
	pointsDirective = "//speccheck:points"
	orderDirective  = "//speccheck:order"
)

// MarkerTest is the entry test name a functional file may carry. The
// generated suite supplies its own entry, so the marker is dropped.
const MarkerTest = "TestSpecChecker"

// Functional is a caller-written test file prepared for splicing into a
// generated suite.
type Functional struct {
	// Imports are import specs, already rendered, minus the ones every
	// suite carries.
	Imports []string
	// Decls is the source of every declaration except imports.
	Decls string
	// Tests lists the renamed test functions in declaration order.
	Tests []FunctionalTest
}

// FunctionalTest is one Test function of a functional file.
type FunctionalTest struct {
	Name   string
	Helper string
	Order  int
	Points int
}

// ParseFunctional reads a Go test file of functional checks. Every
// TestXxx(t *testing.T) becomes an unexported helper the suite calls from
// its functional region, so go test does not run it twice.
func ParseFunctional(filename string, src []byte) (*Functional, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, filename, src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("parse functional tests: %w", err)
	}

	fn := &Functional{}
	for _, imp := range file.Imports {
		path, err := strconv.Unquote(imp.Path.Value)
		if err != nil {
			return nil, fmt.Errorf("parse functional tests: import %s: %w", imp.Path.Value, err)
		}
		if (path == "testing" || path == HarnessImport) && imp.Name == nil {
			continue
		}
		spec := imp.Path.Value
		if imp.Name != nil {
			spec = imp.Name.Name + " " + spec
		}
		fn.Imports = append(fn.Imports, spec)
	}

	var decls []ast.Decl
	for _, decl := range file.Decls {
		if gd, ok := decl.(*ast.GenDecl); ok && gd.Tok == token.IMPORT {
			continue
		}
		fd, ok := decl.(*ast.FuncDecl)
		if ok && isTestFunc(fd) {
			if fd.Name.Name == MarkerTest {
				continue
			}
			test, err := functionalTest(fd)
			if err != nil {
				return nil, err
			}
			fd.Name.Name = test.Helper
			fn.Tests = append(fn.Tests, test)
		}
		decls = append(decls, decl)
	}

	var buf bytes.Buffer
	for i, decl := range decls {
		if i > 0 {
			buf.WriteString("\n\n")
		}
		node := &printer.CommentedNode{Node: decl, Comments: file.Comments}
		if err := printer.Fprint(&buf, fset, node); err != nil {
			return nil, fmt.Errorf("print functional tests: %w", err)
		}
	}
	fn.Decls = buf.String()
	return fn, nil
}

func functionalTest(fd *ast.FuncDecl) (FunctionalTest, error) {
	test := FunctionalTest{
		Name:   fd.Name.Name,
		Helper: "speccheck" + strings.TrimPrefix(fd.Name.Name, "Test"),
	}
	if fd.Doc == nil {
		return test, nil
	}
	for _, c := range fd.Doc.List {
		var target *int
		var value string
		switch {
		case strings.HasPrefix(c.Text, pointsDirective):
			target, value = &test.Points, strings.TrimPrefix(c.Text, pointsDirective)
		case strings.HasPrefix(c.Text, orderDirective):
			target, value = &test.Order, strings.TrimPrefix(c.Text, orderDirective)
		default:
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return test, fmt.Errorf("%s: bad directive %q: %w", fd.Name.Name, c.Text, err)
		}
		*target = n
	}
	return test, nil
}

// isTestFunc matches func TestXxx(t *testing.T) with no receiver.
func isTestFunc(fd *ast.FuncDecl) bool {
	if fd.Recv != nil || !strings.HasPrefix(fd.Name.Name, "Test") {
		return false
	}
	rest := strings.TrimPrefix(fd.Name.Name, "Test")
	if r, _ := utf8.DecodeRuneInString(rest); rest != "" && unicode.IsLower(r) {
		return false
	}
	params := fd.Type.Params.List
	if len(params) != 1 || len(params[0].Names) > 1 {
		return false
	}
	star, ok := params[0].Type.(*ast.StarExpr)
	if !ok {
		return false
	}
	sel, ok := star.X.(*ast.SelectorExpr)
	if !ok || sel.Sel.Name != "T" {
		return false
	}
	pkg, ok := sel.X.(*ast.Ident)
	return ok && pkg.Name == "testing"
}
