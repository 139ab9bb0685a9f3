// Package output renders CLI results as styled text, markdown, JSON or CSV.
//
// In auto mode a terminal gets styled text and a pipe gets markdown, so
// output stays readable when captured by scripts or pasted into documents.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// OutputMode selects how results are rendered.
type OutputMode string

// Output modes.
const (
	ModeAuto     OutputMode = "auto"
	ModeText     OutputMode = "text"
	ModeMarkdown OutputMode = "markdown"
	ModeJSON     OutputMode = "json"
	ModeCSV      OutputMode = "csv"
)

// Mode parses a --output value. Unknown values mean auto.
func Mode(s string) OutputMode {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "table":
		return ModeText
	case "markdown", "md":
		return ModeMarkdown
	case "json":
		return ModeJSON
	case "csv":
		return ModeCSV
	default:
		return ModeAuto
	}
}

// Renderer writes command output.
type Renderer struct {
	w      io.Writer
	errW   io.Writer
	mode   OutputMode
	isTTY  bool
	styles *Styles
}

// NewRenderer creates a renderer, detecting whether w is a terminal.
func NewRenderer(w, errW io.Writer, mode OutputMode) *Renderer {
	return NewRendererWithTTY(w, errW, mode, isTerminal(w))
}

// NewRendererWithTTY creates a renderer with an explicit terminal flag.
// Without a terminal no ANSI sequences are emitted.
func NewRendererWithTTY(w, errW io.Writer, mode OutputMode, isTTY bool) *Renderer {
	if errW == nil {
		errW = w
	}
	lr := lipgloss.NewRenderer(w)
	if !isTTY {
		lr.SetColorProfile(termenv.Ascii)
	}
	return &Renderer{
		w:      w,
		errW:   errW,
		mode:   mode,
		isTTY:  isTTY,
		styles: newStyles(lr),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Writer returns the result writer.
func (r *Renderer) Writer() io.Writer { return r.w }

// ErrWriter returns the diagnostics writer.
func (r *Renderer) ErrWriter() io.Writer { return r.errW }

// IsTTY reports whether output goes to a terminal.
func (r *Renderer) IsTTY() bool { return r.isTTY }

// Styles returns the renderer's styles.
func (r *Renderer) Styles() *Styles { return r.styles }

// Mode returns the configured mode, possibly auto.
func (r *Renderer) Mode() OutputMode { return r.mode }

// EffectiveMode resolves auto to text on a terminal and markdown otherwise.
func (r *Renderer) EffectiveMode() OutputMode {
	if r.mode != ModeAuto && r.mode != "" {
		return r.mode
	}
	if r.isTTY {
		return ModeText
	}
	return ModeMarkdown
}

// Println writes a line.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.w, a...)
}

// Printf writes formatted output.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.w, format, a...)
}

// Success prints a success message.
func (r *Renderer) Success(msg string) {
	r.Println(r.styles.StatusSuccess.String() + " " + r.styles.Success.Render(msg))
}

// Warning prints a warning to the diagnostics writer.
func (r *Renderer) Warning(msg string) {
	_, _ = fmt.Fprintln(r.errW, r.styles.StatusWarning.String()+" "+r.styles.Warning.Render(msg))
}

// Error prints an error to the diagnostics writer.
func (r *Renderer) Error(msg string) {
	_, _ = fmt.Fprintln(r.errW, r.styles.StatusFailed.String()+" "+r.styles.Error.Render(msg))
}

// Muted prints de-emphasized text.
func (r *Renderer) Muted(msg string) {
	r.Println(r.styles.Muted.Render(msg))
}

// Header prints a section header, as markdown when not styling.
func (r *Renderer) Header(level int, text string) {
	if r.EffectiveMode() != ModeText {
		r.Println(FormatHeader(level, text))
		return
	}
	style := r.styles.Header2
	if level <= 1 {
		style = r.styles.Header1
	}
	r.Println(style.Render(text))
}

// StatusLine prints "icon name detail" for success, failed, skipped or warn.
func (r *Renderer) StatusLine(name, status, detail string) {
	var icon string
	switch status {
	case "success", "ok", "pass":
		icon = r.styles.StatusSuccess.String()
	case "failed", "error":
		icon = r.styles.StatusFailed.String()
	case "warn", "warning":
		icon = r.styles.StatusWarning.String()
	default:
		icon = r.styles.StatusSkipped.String()
	}
	line := icon + " " + name
	if detail != "" {
		line += " " + r.styles.Muted.Render(detail)
	}
	r.Println(line)
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// FormatHeader returns a markdown header.
func FormatHeader(level int, text string) string {
	if level < 1 {
		level = 1
	}
	return strings.Repeat("#", level) + " " + text
}

// FormatKeyValue returns a markdown list item "- **key**: value".
func FormatKeyValue(key, value string) string {
	return fmt.Sprintf("- **%s**: %s", key, value)
}
