package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// Command names.
const (
	CommandSnapshot = "snapshot"
	CommandVerify   = "verify"
	CommandGenerate = "generate"
	CommandRun      = "run"
	CommandHistory  = "history"
)

// RegisterGlobalFlags adds the flags every command accepts. Their values
// reach Config.Settings through the config layer, not through cfg.
func RegisterGlobalFlags(fs *pflag.FlagSet, cfg *Config) {
	fs.StringVarP(&cfg.Dir, "dir", "C", "", "working directory for package loading")
	fs.String("mode", "student", "run mode: student or grading")
	fs.BoolP("late-submission", "l", false, "offer later-week submission when tests fail")
	fs.String("theme", "default", "terminal theme: default or mono")
	fs.String("format", "auto", "report format: auto, text, terminal or json")
	fs.Int("wrap", 65, "column at which report text wraps")
	fs.String("log-level", "warn", "log level: error, warn, info or debug")
	fs.String("history", "", "record runs in this SQLite database")
	fs.String("checker-name", "", "suffix of the generated entry test")
}

// RegisterFlags adds the flags of command to fs, binding them to cfg.
func RegisterFlags(command string, fs *pflag.FlagSet, cfg *Config, types *string) {
	switch command {
	case CommandSnapshot:
		fs.StringVarP(&cfg.Reference, "reference", "r", "", "reference package path")
		fs.StringVar(types, "types", "", "comma-separated type names; default is every tagged type")
		fs.StringVar(&cfg.Overlay, "overlay", "", "YAML tag overlay")
		fs.StringVar(&cfg.Tag, "tag", "", "assignment tag recorded in the snapshot")
		fs.StringVarP(&cfg.Filename, "filename", "o", "", "output file name; default is stdout")
	case CommandVerify:
		fs.StringVarP(&cfg.Snapshot, "snapshot", "s", "", "snapshot file")
		fs.StringVarP(&cfg.Reference, "reference", "r", "", "reference package path, instead of a snapshot")
		fs.StringVar(&cfg.Overlay, "overlay", "", "YAML tag overlay for --reference")
		fs.StringVarP(&cfg.Candidate, "candidate", "c", "", "candidate package path")
		fs.StringVar(&cfg.CandidateSnapshot, "candidate-snapshot", "", "snapshot of the candidate, instead of --candidate")
		fs.BoolVarP(&cfg.Watch, "watch", "w", false, "re-run when candidate sources change")
	case CommandGenerate:
		fs.StringVarP(&cfg.Snapshot, "snapshot", "s", "", "snapshot file")
		fs.StringVarP(&cfg.Filename, "filename", "o", "", "output file name")
		fs.StringVarP(&cfg.Package, "package", "p", "", "package clause of the output; default is the output directory's package")
		fs.StringVarP(&cfg.Functional, "functional", "f", "", "Go test file with functional tests")
	case CommandRun:
		fs.StringVarP(&cfg.Candidate, "candidate", "c", "", "package holding the generated suite")
	case CommandHistory:
		fs.StringVarP(&cfg.Candidate, "candidate", "c", "", "only runs of this candidate")
		fs.IntVarP(&cfg.Limit, "limit", "n", 20, "number of runs to list")
	}
}

// Validate checks the options command requires.
func Validate(command string, cfg *Config, types string) error {
	cfg.Types = splitCommaList(types)
	switch command {
	case CommandSnapshot:
		if strings.TrimSpace(cfg.Reference) == "" {
			return fmt.Errorf("--reference is required")
		}
	case CommandVerify:
		if strings.TrimSpace(cfg.Snapshot) == "" && strings.TrimSpace(cfg.Reference) == "" {
			return fmt.Errorf("--snapshot or --reference is required")
		}
		if strings.TrimSpace(cfg.Candidate) == "" && strings.TrimSpace(cfg.CandidateSnapshot) == "" {
			return fmt.Errorf("--candidate or --candidate-snapshot is required")
		}
		if cfg.Watch && strings.TrimSpace(cfg.CandidateSnapshot) != "" {
			return fmt.Errorf("--watch needs --candidate sources, not a snapshot")
		}
	case CommandGenerate:
		if strings.TrimSpace(cfg.Snapshot) == "" {
			return fmt.Errorf("--snapshot is required")
		}
		if strings.TrimSpace(cfg.Filename) == "" {
			return fmt.Errorf("--filename is required")
		}
	case CommandRun:
		if strings.TrimSpace(cfg.Candidate) == "" {
			return fmt.Errorf("--candidate is required")
		}
	case CommandHistory:
		if strings.TrimSpace(cfg.Settings.History) == "" {
			return fmt.Errorf("--history is required")
		}
	}
	return nil
}

// ParseArgs parses the flags of command into Config. Settings are left at
// their zero value; commands load them through the config layer.
func ParseArgs(command string, args []string) (*Config, error) {
	cfg := &Config{}
	var types string

	fs := pflag.NewFlagSet("speccheck "+command, pflag.ContinueOnError)
	RegisterGlobalFlags(fs, cfg)
	RegisterFlags(command, fs, cfg, &types)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if history, err := fs.GetString("history"); err == nil {
		cfg.Settings.History = history
	}
	if err := Validate(command, cfg, types); err != nil {
		return nil, err
	}
	return cfg, nil
}

func splitCommaList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
