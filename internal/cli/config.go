package cli

import (
	"github.com/seitarof/speccheck/internal/config"
	"github.com/seitarof/speccheck/internal/generator"
)

// Config stores the options of one command invocation.
type Config struct {
	// Settings are the layered settings shared by all commands.
	Settings config.Config

	Reference  string
	Candidate  string
	Snapshot   string
	Overlay    string
	Tag        string
	Types      []string
	Filename   string
	Functional string
	Package    string
	Dir        string
	Watch      bool
	Limit      int

	// CandidateSnapshot replaces the candidate package with a captured
	// snapshot of it.
	CandidateSnapshot string
}

// OutputFilename returns destination file path for generator layer.
func (c *Config) OutputFilename() string {
	return c.Filename
}

// PackageName returns the package clause of the generated suite.
func (c *Config) PackageName() string {
	return c.Package
}

// CheckerName returns the suffix of the suite's entry test.
func (c *Config) CheckerName() string {
	if c.Settings.CheckerName == "" {
		return generator.DefaultCheckerName
	}
	return c.Settings.CheckerName
}

// CandidatePackage returns the package the generated suite checks. Empty
// means the package the suite is generated into.
func (c *Config) CandidatePackage() string {
	return ""
}

// EntryTest returns the name of the generated suite's entry test.
func (c *Config) EntryTest() string {
	return "Test" + c.CheckerName()
}
