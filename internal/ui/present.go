// Package ui formats assistant output for the terminal.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Cyclone1070/termai/internal/executor"
	"github.com/Cyclone1070/termai/internal/prompt"
	"github.com/Cyclone1070/termai/internal/provider/model"
	"github.com/Cyclone1070/termai/internal/task"
)

var (
	fallbackStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
	successStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	failureStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	errorStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	warnStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	stderrStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle      = lipgloss.NewStyle().Faint(true)
)

// Verdict is the machine-readable marker parsed from an execute analysis.
type Verdict int

const (
	VerdictNone Verdict = iota
	VerdictSuccess
	VerdictFailed
)

// ExtractVerdict scans text for the literal verdict markers, returning the
// verdict and the text with every marker occurrence removed. When no
// marker is present the text comes back unchanged with VerdictNone; this
// is a silent degradation, not an error.
func ExtractVerdict(text string) (Verdict, string) {
	verdict := VerdictNone
	if strings.Contains(text, prompt.VerdictSuccess) {
		verdict = VerdictSuccess
	} else if strings.Contains(text, prompt.VerdictFailed) {
		verdict = VerdictFailed
	}

	cleaned := strings.ReplaceAll(text, prompt.VerdictSuccess, "")
	cleaned = strings.ReplaceAll(cleaned, prompt.VerdictFailed, "")
	return verdict, strings.TrimSpace(cleaned)
}

// Presenter writes assistant output to the terminal.
type Presenter struct {
	out      io.Writer
	renderer Renderer
}

// NewPresenter creates a Presenter writing to out.
func NewPresenter(out io.Writer, renderer Renderer) *Presenter {
	return &Presenter{out: out, renderer: renderer}
}

// Present displays the final answer. A fallback disclosure line comes
// first when the primary provider did not answer. For the execute task the
// verdict marker is turned into a status line and stripped from the body.
func (p *Presenter) Present(answer model.Answer, kind task.Kind) {
	if answer.FallbackUsed() {
		disclosure := fmt.Sprintf("⏩ Falling back to %s (%s)", answer.Provider, answer.FallbackReason)
		fmt.Fprintln(p.out, fallbackStyle.Render(disclosure))
	}

	body := answer.Text
	if kind == task.KindExecute {
		verdict, cleaned := ExtractVerdict(body)
		body = cleaned
		switch verdict {
		case VerdictSuccess:
			fmt.Fprintln(p.out, successStyle.Render("✅ Command executed successfully!"))
		case VerdictFailed:
			fmt.Fprintln(p.out, failureStyle.Render("❌ Command failed!"))
		}
	}

	rendered, err := p.renderer.Render(body)
	if err != nil {
		// Markdown rendering is advisory; the text itself must always reach
		// the user.
		fmt.Fprintln(p.out, body)
		return
	}
	fmt.Fprint(p.out, rendered)
	if !strings.HasSuffix(rendered, "\n") {
		fmt.Fprintln(p.out)
	}
}

// ShowCommandResult prints the raw captured output of an executed command.
// Callers must invoke this before any provider dispatch so the user sees
// the command result even if the analysis never arrives.
func (p *Presenter) ShowCommandResult(command string, res *executor.Result) {
	fmt.Fprintln(p.out, headerStyle.Render("── terminal output ──"))
	fmt.Fprintln(p.out, dimStyle.Render("$ "+command))
	if res.Stdout != "" {
		fmt.Fprint(p.out, res.Stdout)
		if !strings.HasSuffix(res.Stdout, "\n") {
			fmt.Fprintln(p.out)
		}
	}
	if res.Stderr != "" {
		fmt.Fprint(p.out, stderrStyle.Render(res.Stderr))
		if !strings.HasSuffix(res.Stderr, "\n") {
			fmt.Fprintln(p.out)
		}
	}
	if res.Truncated {
		fmt.Fprintln(p.out, dimStyle.Render("(output truncated)"))
	}
}

// ShowAnalysisHeader separates the raw command output from the analysis
// that follows.
func (p *Presenter) ShowAnalysisHeader() {
	fmt.Fprintln(p.out, headerStyle.Render("── AI analysis ──"))
	fmt.Fprintln(p.out)
}

// ShowTimeout reports a command that exceeded the execution timeout.
func (p *Presenter) ShowTimeout(command string, timeoutSeconds int) {
	fmt.Fprintln(p.out, warnStyle.Render(fmt.Sprintf("⏰ Command timed out after %d seconds: %s", timeoutSeconds, command)))
}

// ShowError prints a failure message. Every failure path ends here or in
// ShowTimeout; the tool never exits silently.
func (p *Presenter) ShowError(message string) {
	fmt.Fprintln(p.out, errorStyle.Render(message))
}
