package suite

import (
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"sort"

	"github.com/seitarof/speccheck/internal/rule"
)

const identifierPrompt = "Variable names are important. Bad names mislead, confuse, and frustrate. " +
	"Good names accurately describe the data they hold, are readable and pronounceable, " +
	"follow camelCase conventions, and will still make sense in a week's time. " +
	"Following are some variable names from your code. Are they good names?"

// DefaultChecklist is used when no checklist is configured.
var DefaultChecklist = []string{
	"I have eliminated all compilation errors from my code.",
	"I have committed my work to my local repository.",
	"I have pushed my work to my remote repository.",
	"I have verified that my work is in my remote repository.",
}

// PostChecks returns the identifier review and the final checklist. They
// belong to the post-check tier and are only run outside grading.
func PostChecks(checklist []string) []Case {
	if len(checklist) == 0 {
		checklist = DefaultChecklist
	}
	return []Case{
		{
			Name:  "PostCheck.identifiers",
			Tier:  rule.PostCheck,
			Order: rule.OrderPost,
			run:   reviewIdentifiers,
		},
		{
			Name:  "PostCheck.checklist",
			Tier:  rule.PostCheck,
			Order: rule.OrderPost + 1,
			run: func(rt *Runtime) error {
				ok, err := rt.Confirmer.Checklist("Final Steps", checklist)
				if err != nil {
					return fmt.Errorf("checklist: %w", err)
				}
				if !ok {
					return errors.New("Not all items on your final steps checklist have been completed.")
				}
				return nil
			},
		},
	}
}

func reviewIdentifiers(rt *Runtime) error {
	ids, err := Identifiers(rt.Files)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	ok, err := rt.Confirmer.ReviewList("Identifiers", identifierPrompt, ids)
	if err != nil {
		return fmt.Errorf("identifier review: %w", err)
	}
	if !ok {
		return errors.New("Some of your variable names need improvement.")
	}
	return nil
}

// Identifiers collects the distinct local variable and parameter names
// declared in files, sorted.
func Identifiers(files []string) ([]string, error) {
	seen := map[string]bool{}
	fset := token.NewFileSet()
	for _, path := range files {
		file, err := parser.ParseFile(fset, path, nil, 0)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		ast.Inspect(file, func(n ast.Node) bool {
			switch v := n.(type) {
			case *ast.FuncType:
				addFieldNames(seen, v.Params)
			case *ast.AssignStmt:
				if v.Tok != token.DEFINE {
					return true
				}
				for _, lhs := range v.Lhs {
					if id, ok := lhs.(*ast.Ident); ok {
						seen[id.Name] = true
					}
				}
			case *ast.RangeStmt:
				if v.Tok == token.DEFINE {
					for _, e := range []ast.Expr{v.Key, v.Value} {
						if id, ok := e.(*ast.Ident); ok {
							seen[id.Name] = true
						}
					}
				}
			case *ast.DeclStmt:
				if gd, ok := v.Decl.(*ast.GenDecl); ok && gd.Tok == token.VAR {
					for _, spec := range gd.Specs {
						for _, id := range spec.(*ast.ValueSpec).Names {
							seen[id.Name] = true
						}
					}
				}
			}
			return true
		})
	}
	delete(seen, "_")

	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func addFieldNames(seen map[string]bool, fields *ast.FieldList) {
	if fields == nil {
		return
	}
	for _, f := range fields.List {
		for _, id := range f.Names {
			seen[id.Name] = true
		}
	}
}
