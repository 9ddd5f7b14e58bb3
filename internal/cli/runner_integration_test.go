package cli

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/seitarof/speccheck/internal/generator"
	"github.com/seitarof/speccheck/internal/gotest"
	"github.com/seitarof/speccheck/internal/result"
	"github.com/seitarof/speccheck/internal/rule"
)

const moduleRoot = "../.."

func TestRunner_GeneratedSuiteEndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("runs go test on generated suites")
	}
	if _, err := exec.LookPath("go"); err != nil {
		t.Skip("go command not found")
	}

	snap := filepath.Join(t.TempDir(), "shapes.yaml")
	cfg := gradingConfig()
	cfg.Filename = snap
	if err := newTestRunner(&bytes.Buffer{}, nil, nil).Snapshot(context.Background(), cfg); err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	tests := []struct {
		variant  string
		want     result.Outcome
		problems int
		contains []string
	}{
		{variant: "conforming", want: result.Success},
		{
			variant:  "flipped",
			want:     result.Failure,
			problems: 1,
			contains: []string{"It should be public."},
		},
		{
			variant:  "missingtype",
			want:     result.Failure,
			contains: []string{"could not be found"},
		},
		{
			variant:  "broken",
			want:     result.Failure,
			problems: 1,
			contains: []string{result.BuildFailureMarker},
		},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.variant, func(t *testing.T) {
			dir := copyCandidate(t, tc.variant)
			var buf bytes.Buffer
			r := NewRunner(
				loaderFactory,
				rule.NewDefault(),
				generator.New(generator.NewGoimportsFormatter(), generator.NewFileWriter()),
				gotest.New(gotest.WithDir(moduleRoot)),
				WithOutput(&buf),
			)

			gen := gradingConfig()
			gen.Snapshot = snap
			gen.Filename = filepath.Join(dir, "shapes_spec_test.go")
			if err := r.Generate(context.Background(), gen); err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			if gen.Package != "shapes" {
				t.Fatalf("package = %q, want shapes", gen.Package)
			}

			run := gradingConfig()
			run.Candidate = "./testdata/" + filepath.Base(dir)
			run.Settings.History = filepath.Join(t.TempDir(), "history.db")
			outcome, err := r.RunSuite(context.Background(), run)
			if err != nil {
				t.Fatalf("RunSuite() error = %v", err)
			}
			out := buf.String()
			if outcome != tc.want {
				t.Fatalf("outcome = %s, want %s\n%s", outcome, tc.want, out)
			}
			if tc.problems > 0 {
				if got := strings.Count(out, "PROBLEM:"); got != tc.problems {
					t.Fatalf("got %d problems, want %d\n%s", got, tc.problems, out)
				}
			}
			if tc.want == result.Success && strings.Contains(out, "PROBLEM") {
				t.Fatalf("conforming candidate reported problems:\n%s", out)
			}
			for _, s := range tc.contains {
				if !strings.Contains(out, s) {
					t.Fatalf("report does not contain %q\n%s", s, out)
				}
			}
		})
	}
}

// TestRunner_GeneratedSuiteGatesOnMissingType checks that a failed existence
// check keeps the structural region from running.
func TestRunner_GeneratedSuiteGatesOnMissingType(t *testing.T) {
	if testing.Short() {
		t.Skip("runs go test on generated suites")
	}
	if _, err := exec.LookPath("go"); err != nil {
		t.Skip("go command not found")
	}

	snap := filepath.Join(t.TempDir(), "shapes.yaml")
	cfg := gradingConfig()
	cfg.Filename = snap
	if err := newTestRunner(&bytes.Buffer{}, nil, nil).Snapshot(context.Background(), cfg); err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	dir := copyCandidate(t, "missingtype")
	gen := gradingConfig()
	gen.Snapshot = snap
	gen.Filename = filepath.Join(dir, "shapes_spec_test.go")
	g := generator.New(generator.NewGoimportsFormatter(), generator.NewFileWriter())
	if err := newTestRunner(&bytes.Buffer{}, g, nil).Generate(context.Background(), gen); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	set, err := gotest.New(gotest.WithDir(moduleRoot)).Run(
		context.Background(), "./testdata/"+filepath.Base(dir), gen.EntryTest())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(set.Failed()) == 0 {
		t.Fatal("expected failures, got none")
	}
	for _, r := range set.Results() {
		if r.Tier != rule.PreCheck {
			t.Fatalf("case %s ran in tier %s after a failed existence check", r.Case, r.Tier)
		}
	}
}

// copyCandidate copies a candidate fixture into a fresh directory under
// testdata, so the generated suite can import the harness from this module.
func copyCandidate(t *testing.T, variant string) string {
	t.Helper()
	dir, err := os.MkdirTemp(filepath.Join(moduleRoot, "testdata"), "suite-"+variant+"-")
	if err != nil {
		t.Fatalf("MkdirTemp() error = %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	src := filepath.Join(moduleRoot, "testdata", "candidates", variant)
	entries, err := os.ReadDir(src)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".go") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(src, e.Name()))
		if err != nil {
			t.Fatalf("ReadFile() error = %v", err)
		}
		writeFile(t, filepath.Join(dir, e.Name()), string(data))
	}
	return dir
}
