// ABOUTME: Human-readable console rendering of run events
// ABOUTME: Access-log lines for HTTP calls, phase banners, and per-item outcome markers styled with lipgloss
package events

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// ColorMode selects whether console output is styled.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ParseColorMode validates a --color flag value.
func ParseColorMode(s string) (ColorMode, error) {
	switch mode := ColorMode(strings.ToLower(s)); mode {
	case ColorAuto, ColorAlways, ColorNever:
		return mode, nil
	case "":
		return ColorAuto, nil
	default:
		return "", fmt.Errorf("invalid color mode %q (want auto, always, or never)", s)
	}
}

// Console writes events to w. Write errors are ignored.
type Console struct {
	w       io.Writer
	verbose bool

	dim     lipgloss.Style
	ok      lipgloss.Style
	warn    lipgloss.Style
	fail    lipgloss.Style
	banner  lipgloss.Style
	method  lipgloss.Style
	payload lipgloss.Style
}

// NewConsole builds a console renderer. verbose adds request bodies to the
// access log.
func NewConsole(w io.Writer, mode ColorMode, verbose bool) *Console {
	r := lipgloss.NewRenderer(w)
	switch mode {
	case ColorAlways:
		r.SetColorProfile(termenv.ANSI256)
	case ColorNever:
		r.SetColorProfile(termenv.Ascii)
	}

	return &Console{
		w:       w,
		verbose: verbose,
		dim:     r.NewStyle().Foreground(lipgloss.Color("245")),
		ok:      r.NewStyle().Foreground(lipgloss.Color("42")),
		warn:    r.NewStyle().Foreground(lipgloss.Color("214")),
		fail:    r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		banner:  r.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
		method:  r.NewStyle().Bold(true),
		payload: r.NewStyle().Foreground(lipgloss.Color("245")).PaddingLeft(4),
	}
}

func (c *Console) Record(e Event) {
	switch e.Kind {
	case KindHTTP:
		c.http(e)
	case KindPhase:
		c.phase(e)
	case KindItem:
		c.item(e)
	case KindWarn:
		_, _ = fmt.Fprintf(c.w, "  %s %s\n", c.warn.Render("⚠"), e.Message)
	}
}

func (c *Console) http(e Event) {
	status := fmt.Sprintf("%d", e.Status)
	switch e.Outcome {
	case OutcomeOK:
		status = c.ok.Render(status)
	case OutcomeTolerated:
		status = c.warn.Render(status + " tolerated")
	default:
		if e.Status == 0 {
			status = "no response"
		}
		status = c.fail.Render(status)
	}

	_, _ = fmt.Fprintf(c.w, "%s %s %s → %s %s\n",
		c.dim.Render(fmt.Sprintf("[#%04d %s]", e.Request, e.Time.Format("15:04:05"))),
		c.method.Render(e.Method),
		e.Path,
		status,
		c.dim.Render(fmt.Sprintf("(%s)", e.Duration.Round(time.Millisecond))),
	)

	if c.verbose && len(e.RequestBody) > 0 {
		_, _ = fmt.Fprintln(c.w, c.payload.Render("→ "+PrettyJSON(e.RequestBody)))
	}
	if e.Outcome != OutcomeOK && len(e.ResponseBody) > 0 {
		_, _ = fmt.Fprintln(c.w, c.payload.Render("← "+PrettyJSON(e.ResponseBody)))
	}
	if e.Message != "" && e.Outcome == OutcomeFailed {
		_, _ = fmt.Fprintln(c.w, c.payload.Render(e.Message))
	}
}

func (c *Console) phase(e Event) {
	line := "━━ " + e.Phase
	if e.Message != "" {
		line += ": " + e.Message
	}
	_, _ = fmt.Fprintf(c.w, "\n%s\n", c.banner.Render(line))
}

func (c *Console) item(e Event) {
	var marker string
	switch e.Outcome {
	case OutcomeCreated, OutcomeOK:
		marker = c.ok.Render("✓")
	case OutcomeSkipped, OutcomeTolerated:
		marker = c.warn.Render("⚠")
	default:
		marker = c.fail.Render("✗")
	}

	name := e.Item
	if e.Entity != "" {
		name = e.Entity + " " + e.Item
	}
	line := fmt.Sprintf("  %s %s %s", marker, name, e.Outcome)
	if e.EntityID != "" {
		line += c.dim.Render(fmt.Sprintf(" (id %s)", e.EntityID))
	}
	if e.Message != "" {
		line += ": " + e.Message
	}
	_, _ = fmt.Fprintln(c.w, line)
}

// PrettyJSON indents a JSON document, falling back to the raw text when it
// is not valid JSON.
func PrettyJSON(data []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return strings.TrimSpace(string(data))
	}
	return buf.String()
}
