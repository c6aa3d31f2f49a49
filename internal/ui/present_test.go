package ui

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Cyclone1070/termai/internal/executor"
	"github.com/Cyclone1070/termai/internal/prompt"
	"github.com/Cyclone1070/termai/internal/provider/model"
	"github.com/Cyclone1070/termai/internal/task"
)

// identityRenderer passes text through unchanged.
type identityRenderer struct{}

func (identityRenderer) Render(text string) (string, error) { return text, nil }

type brokenRenderer struct{}

func (brokenRenderer) Render(string) (string, error) { return "", errors.New("render failed") }

func newTestPresenter() (*Presenter, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewPresenter(&buf, identityRenderer{}), &buf
}

func TestExtractVerdict(t *testing.T) {
	cases := []struct {
		name    string
		text    string
		verdict Verdict
		cleaned string
	}{
		{"success marker", "All good.\n\nVERDICT: SUCCESS", VerdictSuccess, "All good."},
		{"failed marker", "VERDICT: FAILED\nThe command is misspelled.", VerdictFailed, "The command is misspelled."},
		{"no marker", "Just some analysis.", VerdictNone, "Just some analysis."},
		{"repeated marker", "VERDICT: SUCCESS ok VERDICT: SUCCESS", VerdictSuccess, "ok"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			verdict, cleaned := ExtractVerdict(tc.text)
			assert.Equal(t, tc.verdict, verdict)
			assert.Equal(t, tc.cleaned, cleaned)
		})
	}
}

func TestPresentPrimaryAnswerHasNoDisclosure(t *testing.T) {
	p, buf := newTestPresenter()

	p.Present(model.Answer{
		Text:     "Use lsof -i.",
		Provider: model.ProviderGemini,
		Elapsed:  time.Second,
	}, task.KindAsk)

	assert.Contains(t, buf.String(), "Use lsof -i.")
	assert.NotContains(t, buf.String(), "Falling back")
}

func TestPresentFallbackDisclosure(t *testing.T) {
	p, buf := newTestPresenter()

	p.Present(model.Answer{
		Text:           "answer",
		Provider:       model.ProviderOpenAI,
		FallbackReason: "timeout",
	}, task.KindAsk)

	out := buf.String()
	assert.Contains(t, out, "⏩ Falling back to openai (timeout)")
	assert.Contains(t, out, "answer")
}

func TestPresentExecuteVerdictLines(t *testing.T) {
	p, buf := newTestPresenter()
	p.Present(model.Answer{
		Text:     "The build passed.\n\n" + prompt.VerdictSuccess,
		Provider: model.ProviderGemini,
	}, task.KindExecute)

	out := buf.String()
	assert.Contains(t, out, "✅ Command executed successfully!")
	assert.Contains(t, out, "The build passed.")
	assert.NotContains(t, out, prompt.VerdictSuccess)

	p, buf = newTestPresenter()
	p.Present(model.Answer{
		Text:     prompt.VerdictFailed + "\nTypo in the subcommand.",
		Provider: model.ProviderGemini,
	}, task.KindExecute)

	out = buf.String()
	assert.Contains(t, out, "❌ Command failed!")
	assert.NotContains(t, out, prompt.VerdictFailed)
}

func TestPresentVerdictIgnoredOutsideExecute(t *testing.T) {
	p, buf := newTestPresenter()
	p.Present(model.Answer{
		Text:     "VERDICT: SUCCESS is what the tool prints.",
		Provider: model.ProviderGemini,
	}, task.KindAsk)

	// Non-execute answers keep their text verbatim.
	assert.Contains(t, buf.String(), "VERDICT: SUCCESS is what the tool prints.")
	assert.NotContains(t, buf.String(), "✅")
}

func TestPresentFallsBackToRawTextOnRenderError(t *testing.T) {
	var buf bytes.Buffer
	p := NewPresenter(&buf, brokenRenderer{})

	p.Present(model.Answer{Text: "plain answer", Provider: model.ProviderGemini}, task.KindAsk)

	assert.Contains(t, buf.String(), "plain answer")
}

func TestShowCommandResult(t *testing.T) {
	p, buf := newTestPresenter()

	p.ShowCommandResult("make test", &executor.Result{
		Stdout:   "ok\n",
		Stderr:   "warning: slow test\n",
		ExitCode: 0,
	})

	out := buf.String()
	assert.Contains(t, out, "── terminal output ──")
	assert.Contains(t, out, "$ make test")
	assert.Contains(t, out, "ok\n")
	assert.Contains(t, out, "warning: slow test")
	assert.NotContains(t, out, "truncated")
}

func TestShowCommandResultTruncationNote(t *testing.T) {
	p, buf := newTestPresenter()

	p.ShowCommandResult("yes", &executor.Result{Stdout: "y\ny\n", Truncated: true})

	assert.Contains(t, buf.String(), "(output truncated)")
}

func TestShowTimeout(t *testing.T) {
	p, buf := newTestPresenter()

	p.ShowTimeout("sleep 100", 30)

	assert.Contains(t, buf.String(), "⏰ Command timed out after 30 seconds: sleep 100")
}

func TestShowError(t *testing.T) {
	p, buf := newTestPresenter()

	p.ShowError("Error generating response: all providers failed")

	assert.Contains(t, buf.String(), "Error generating response: all providers failed")
}
