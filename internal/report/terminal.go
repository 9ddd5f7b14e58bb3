package report

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/seitarof/speccheck/internal/result"
)

// Terminal renders the text report with lipgloss styles.
type Terminal struct {
	theme Theme
}

// NewTerminal returns a styled renderer.
func NewTerminal(theme Theme) *Terminal {
	return &Terminal{theme: theme}
}

// Render implements Renderer.
func (t *Terminal) Render(w io.Writer, set *result.Set, opts Options) error {
	bw := bufio.NewWriter(w)
	for _, seg := range layout(set, opts) {
		bw.WriteString(t.styled(seg, opts.width()))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func (t *Terminal) styled(seg segment, width int) string {
	text := plain(seg, width)
	switch seg.kind {
	case segScore:
		return t.theme.Bold.Render(text)
	case segProblem:
		return t.theme.Error.Render(t.theme.Icons.Fail + " " + text)
	case segDefect:
		return t.theme.Warning.Render(text)
	case segStack:
		return t.theme.Muted.Render(text)
	case segWarning:
		return t.theme.Warning.Render(t.theme.Icons.Warn + " " + text)
	case segClosing:
		if seg.ok {
			return t.theme.Success.Render(t.theme.Icons.Pass + " " + text)
		}
		return t.theme.Primary.Render(text)
	default:
		return text
	}
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Auto picks the terminal renderer for terminals and plain text otherwise.
// A "json" format is honoured either way.
func Auto(w io.Writer, format string, theme Theme) (Renderer, error) {
	if strings.EqualFold(format, "auto") || format == "" {
		if IsTerminal(w) {
			return NewTerminal(theme), nil
		}
		return NewText(), nil
	}
	return ByName(format, theme)
}
