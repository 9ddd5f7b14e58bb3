package report

import (
	"bufio"
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/seitarof/speccheck/internal/result"
)

// Text renders plain, wrapped text.
type Text struct{}

// NewText returns a plain text renderer.
func NewText() *Text {
	return &Text{}
}

// Render implements Renderer.
func (t *Text) Render(w io.Writer, set *result.Set, opts Options) error {
	bw := bufio.NewWriter(w)
	for _, seg := range layout(set, opts) {
		bw.WriteString(plain(seg, opts.width()))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

func plain(seg segment, width int) string {
	switch seg.kind {
	case segBlank:
		return ""
	case segProblem:
		return strings.TrimRight(seg.text, " ")
	case segStack:
		return strings.TrimRight(seg.text, "\n")
	default:
		return Wrap(seg.text, width)
	}
}

// Wrap wraps s at width columns, breaking on spaces and hyphens.
func Wrap(s string, width int) string {
	return ansi.Wordwrap(s, width, "-")
}
