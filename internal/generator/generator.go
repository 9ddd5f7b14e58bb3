package generator

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"sort"
	"text/template"

	"golang.org/x/tools/imports"

	"github.com/seitarof/speccheck/internal/rule"
	"github.com/seitarof/speccheck/internal/suite"
)

//go:embed templates/*.go.tmpl
var templateFS embed.FS

// HarnessImport is the package generated suites run their cases through.
const HarnessImport = "github.com/seitarof/speccheck/pkg/conformtest"

// DefaultCheckerName names the entry test when no name is configured.
const DefaultCheckerName = "SpecChecker"

// Generator renders a conformance suite as a Go test file.
type Generator interface {
	Generate(cfg Config, in Input) error
}

// Config is the minimum config contract required by generator.
type Config interface {
	OutputFilename() string
	PackageName() string
	CheckerName() string
	CandidatePackage() string
}

// Input is what a suite is generated from.
type Input struct {
	// Snapshot is the serialized reference project embedded in the file.
	Snapshot []byte
	// Cases are the compiled cases of Snapshot.
	Cases []suite.Case
	// Functional holds caller-written tests; nil means none.
	Functional *Functional
}

// Formatter formats generated Go code and organizes imports.
type Formatter interface {
	Format(filename string, src []byte) ([]byte, error)
}

// FileWriter writes generated code to disk.
type FileWriter interface {
	Write(filename string, data []byte) error
}

type generatorImpl struct {
	formatter Formatter
	writer    FileWriter
	tmpl      *template.Template
}

type goimportsFormatter struct{}

type fileWriter struct{}

type templateData struct {
	Package    string
	Name       string
	Candidate  string
	Snapshot   string
	Imports    []string
	Pre        []string
	Structural []string
	Functional []functionalEntry
	Decls      string
}

// functionalEntry is one subtest of the functional region. Compiled cases
// run through the harness, caller tests through their renamed function.
type functionalEntry struct {
	Name   string
	Helper string
	Points int
	order  int
}

// New creates a suite generator.
func New(f Formatter, w FileWriter) Generator {
	tmpl := template.Must(template.New("").ParseFS(templateFS, "templates/*.go.tmpl"))
	return &generatorImpl{formatter: f, writer: w, tmpl: tmpl}
}

// NewGoimportsFormatter creates a formatter backed by goimports.
func NewGoimportsFormatter() Formatter {
	return &goimportsFormatter{}
}

// NewFileWriter creates a plain file writer.
func NewFileWriter() FileWriter {
	return &fileWriter{}
}

func (g *generatorImpl) Generate(cfg Config, in Input) error {
	if len(in.Snapshot) == 0 {
		return fmt.Errorf("empty snapshot")
	}
	if len(in.Cases) == 0 {
		return fmt.Errorf("no cases to generate")
	}

	data := buildTemplateData(cfg, in)
	var buf bytes.Buffer
	if err := g.tmpl.ExecuteTemplate(&buf, "suite.go.tmpl", data); err != nil {
		return fmt.Errorf("template: %w", err)
	}

	formatted, err := g.formatter.Format(cfg.OutputFilename(), buf.Bytes())
	if err != nil {
		return fmt.Errorf("format: %w", err)
	}
	if err := g.writer.Write(cfg.OutputFilename(), formatted); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func (f *goimportsFormatter) Format(filename string, src []byte) ([]byte, error) {
	return imports.Process(filename, src, nil)
}

func (w *fileWriter) Write(filename string, data []byte) error {
	return os.WriteFile(filename, data, 0o644)
}

func buildTemplateData(cfg Config, in Input) templateData {
	name := cfg.CheckerName()
	if name == "" {
		name = DefaultCheckerName
	}
	data := templateData{
		Package:   cfg.PackageName(),
		Name:      name,
		Candidate: cfg.CandidatePackage(),
		Snapshot:  string(in.Snapshot),
	}

	var functional []functionalEntry
	for _, c := range in.Cases {
		switch c.Tier {
		case rule.PreCheck:
			data.Pre = append(data.Pre, c.Name)
		case rule.StructuralCheck:
			data.Structural = append(data.Structural, c.Name)
		case rule.FunctionalCheck:
			functional = append(functional, functionalEntry{Name: c.Name, Points: c.Points, order: c.Order})
		}
	}

	if fn := in.Functional; fn != nil {
		data.Imports = fn.Imports
		data.Decls = fn.Decls
		for _, t := range fn.Tests {
			order := t.Order
			if order == 0 {
				order = rule.OrderFunctional
			}
			functional = append(functional, functionalEntry{
				Name:   t.Name,
				Helper: t.Helper,
				Points: t.Points,
				order:  order,
			})
		}
	}
	sort.SliceStable(functional, func(i, j int) bool {
		return functional[i].order < functional[j].order
	})
	data.Functional = functional
	return data
}
