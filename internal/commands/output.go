package commands

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

const (
	successSymbol = "✓"
	errorSymbol   = "✗"
	infoSymbol    = "→"
)

type printer struct {
	w       io.Writer
	success lipgloss.Style
	failure lipgloss.Style
	info    lipgloss.Style
}

func newPrinter(w io.Writer) *printer {
	r := lipgloss.NewRenderer(w)
	return &printer{
		w:       w,
		success: r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00AF5F", Dark: "#00D787"}),
		failure: r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#D70000", Dark: "#FF5F87"}),
		info:    r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#0087D7", Dark: "#5FAFFF"}),
	}
}

func (p *printer) successf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, "%s %s\n", p.success.Render(successSymbol), fmt.Sprintf(format, args...))
}

func (p *printer) errorf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, "%s %s\n", p.failure.Render(errorSymbol), p.failure.Render(fmt.Sprintf(format, args...)))
}

func (p *printer) infof(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, "%s %s\n", p.info.Render(infoSymbol), fmt.Sprintf(format, args...))
}
