package presentation

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/fermata-io/purgatory/pkg/domain"
	"github.com/muesli/termenv"
)

// NewMarkdownRenderer returns a function that renders markdown for the
// terminal using glamour. On renderer construction or render failure it
// falls back to the raw markdown.
func NewMarkdownRenderer() func(string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(), // Automatically detect light/dark background
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return func(md string) string { return md }
	}
	return func(md string) string {
		out, err := r.Render(md)
		if err != nil {
			return md
		}
		return out
	}
}

// SeverityBadge colors a severity name for terminal output.
func SeverityBadge(s domain.Severity) string {
	p := termenv.ColorProfile()
	switch s {
	case domain.SeverityCritical:
		return termenv.String(string(s)).Foreground(p.Color("#f87171")).Bold().String()
	case domain.SeverityWarning:
		return termenv.String(string(s)).Foreground(p.Color("#fbbf24")).String()
	default:
		return termenv.String(string(s)).Foreground(p.Color("#94a3b8")).String()
	}
}

// TokenMarkdown builds the markdown card for a single token.
func TokenMarkdown(tok *domain.Token) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", tok.ID)
	fmt.Fprintf(&b, "**Status:** %s · **Reason:** %s · **Severity:** %s\n\n",
		tok.Status(), tok.Reason, tok.Severity)
	fmt.Fprintf(&b, "%s\n", tok.Prompt)

	if len(tok.Options) > 0 {
		b.WriteString("\n")
		for i, opt := range tok.Options {
			fmt.Fprintf(&b, "%d. %s\n", i+1, opt)
		}
	}

	if tok.Deadline != nil {
		fmt.Fprintf(&b, "\n**Deadline:** %s\n", tok.Deadline.Format(time.RFC3339))
	}
	if tok.Escalation != "" {
		fmt.Fprintf(&b, "\n**Escalation:** %s\n", tok.Escalation)
	}
	return b.String()
}

// TokenLine builds the one-line summary used by list output. When colored,
// the severity column is styled via termenv; padding is computed on the raw
// name so escape codes do not break alignment.
func TokenLine(tok *domain.Token, colored bool) string {
	deadline := "-"
	if tok.Deadline != nil {
		deadline = tok.Deadline.Format(time.RFC3339)
	}

	severity := string(tok.Severity)
	pad := ""
	if n := 9 - len(severity); n > 0 {
		pad = strings.Repeat(" ", n)
	}
	if colored {
		severity = SeverityBadge(tok.Severity)
	}

	return fmt.Sprintf("%-14s %-10s %-18s %s%s %-21s %s",
		tok.ID, tok.Status(), tok.Reason, severity, pad, deadline, truncate(tok.Prompt, 48))
}

// ListHeader is the column header matching TokenLine.
func ListHeader() string {
	return fmt.Sprintf("%-14s %-10s %-18s %-9s %-21s %s",
		"ID", "STATUS", "REASON", "SEVERITY", "DEADLINE", "PROMPT")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
