package gotypes

import (
	"go/ast"
	"go/token"
	"strings"
)

// DirectivePrefix marks comment lines read by the tag reader.
const DirectivePrefix = "//speccheck:"

// collectDirectives maps the position of each declared identifier to the
// directive lines found in its doc or line comment.
func collectDirectives(files []*ast.File) map[token.Pos][]string {
	out := map[token.Pos][]string{}
	record := func(idents []*ast.Ident, groups ...*ast.CommentGroup) {
		lines := directiveLines(groups...)
		if len(lines) == 0 {
			return
		}
		for _, id := range idents {
			out[id.Pos()] = append(out[id.Pos()], lines...)
		}
	}

	for _, file := range files {
		ast.Inspect(file, func(n ast.Node) bool {
			switch v := n.(type) {
			case *ast.FuncDecl:
				record([]*ast.Ident{v.Name}, v.Doc)
			case *ast.GenDecl:
				for _, spec := range v.Specs {
					switch s := spec.(type) {
					case *ast.TypeSpec:
						doc := s.Doc
						if doc == nil {
							doc = v.Doc
						}
						record([]*ast.Ident{s.Name}, doc, s.Comment)
					case *ast.ValueSpec:
						doc := s.Doc
						if doc == nil && len(v.Specs) == 1 {
							doc = v.Doc
						}
						record(s.Names, doc, s.Comment)
					}
				}
			case *ast.Field:
				record(v.Names, v.Doc, v.Comment)
			}
			return true
		})
	}
	return out
}

func directiveLines(groups ...*ast.CommentGroup) []string {
	var lines []string
	for _, g := range groups {
		if g == nil {
			continue
		}
		for _, c := range g.List {
			if strings.HasPrefix(c.Text, DirectivePrefix) {
				lines = append(lines, strings.TrimPrefix(c.Text, "//"))
			}
		}
	}
	return lines
}
