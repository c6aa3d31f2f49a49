package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Cyclone1070/termai/internal/config"
	"github.com/Cyclone1070/termai/internal/dispatch"
	"github.com/Cyclone1070/termai/internal/executor"
	"github.com/Cyclone1070/termai/internal/history"
	"github.com/Cyclone1070/termai/internal/provider/model"
	"github.com/Cyclone1070/termai/internal/sysinfo"
	"github.com/Cyclone1070/termai/internal/task"
	"github.com/Cyclone1070/termai/internal/ui"
)

type stubGenerator struct {
	id   model.ProviderID
	text string
	err  error

	mu    sync.Mutex
	calls int
}

func (s *stubGenerator) ID() model.ProviderID { return s.id }

func (s *stubGenerator) Generate(context.Context, string) (string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.text, s.err
}

func (s *stubGenerator) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type plainRenderer struct{}

func (plainRenderer) Render(text string) (string, error) { return text, nil }

type noopIndicator struct{}

func (noopIndicator) Stop() {}

// newTestApp wires an app against fakes. Provider generators and config
// mutations are supplied per test.
func newTestApp(t *testing.T, primary, fallback model.Generator, mutate func(*config.Config)) (*app, *bytes.Buffer) {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.History.Enabled = false
	cfg.Providers.FallbackBackoffMs = 1
	if mutate != nil {
		mutate(cfg)
	}

	var out bytes.Buffer
	logger := zap.NewNop()
	a := &app{
		cfg:       cfg,
		logger:    logger,
		out:       &out,
		errOut:    &out,
		collector: sysinfo.NewCollector(),
		runner:    executor.NewRunner(cfg, logger),
		presenter: ui.NewPresenter(&out, plainRenderer{}),
		primary:   primary,
		fallback:  fallback,
		spinner:   func() dispatch.Indicator { return noopIndicator{} },
		sleep:     func(time.Duration) {},
	}
	return a, &out
}

func TestRunAskPresentsAnswer(t *testing.T) {
	primary := &stubGenerator{id: model.ProviderGemini, text: "Use lsof -i."}
	a, out := newTestApp(t, primary, nil, nil)

	req, err := task.NewAsk("how do I list open ports")
	require.NoError(t, err)
	require.NoError(t, a.run(context.Background(), req))

	assert.Contains(t, out.String(), "Use lsof -i.")
	assert.NotContains(t, out.String(), "Falling back")
	assert.Equal(t, 1, primary.callCount())
}

func TestRunExecuteShowsOutputBeforeAnalysisFailure(t *testing.T) {
	primary := &stubGenerator{id: model.ProviderGemini, err: errors.New("down")}
	fallback := &stubGenerator{id: model.ProviderOpenAI, err: errors.New("also down")}
	a, out := newTestApp(t, primary, fallback, nil)

	req, err := task.NewExecute("echo hello")
	require.NoError(t, err)
	require.NoError(t, a.run(context.Background(), req))

	s := out.String()
	outputAt := bytes.Index(out.Bytes(), []byte("── terminal output ──"))
	errorAt := bytes.Index(out.Bytes(), []byte("Error generating response"))

	assert.Contains(t, s, "$ echo hello")
	assert.Contains(t, s, "hello")
	require.GreaterOrEqual(t, outputAt, 0)
	require.GreaterOrEqual(t, errorAt, 0)
	// The command result must already be on screen when the analysis fails.
	assert.Less(t, outputAt, errorAt)
}

func TestRunExecuteTimeoutSkipsDispatch(t *testing.T) {
	primary := &stubGenerator{id: model.ProviderGemini, text: "unused"}
	fallback := &stubGenerator{id: model.ProviderOpenAI, text: "unused"}
	a, out := newTestApp(t, primary, fallback, func(cfg *config.Config) {
		cfg.Exec.TimeoutSeconds = 1
		cfg.Exec.GracefulShutdownMs = 100
	})

	req, err := task.NewExecute("sleep 10")
	require.NoError(t, err)
	require.NoError(t, a.run(context.Background(), req))

	assert.Contains(t, out.String(), "⏰ Command timed out after 1 seconds: sleep 10")
	assert.Equal(t, 0, primary.callCount())
	assert.Equal(t, 0, fallback.callCount())
}

func TestRunDispatchFailureExitsClean(t *testing.T) {
	primary := &stubGenerator{id: model.ProviderGemini, err: errors.New("down")}
	fallback := &stubGenerator{id: model.ProviderOpenAI, err: errors.New("also down")}
	a, out := newTestApp(t, primary, fallback, nil)

	req, err := task.NewAsk("q")
	require.NoError(t, err)

	// Provider failure is reported, not propagated.
	require.NoError(t, a.run(context.Background(), req))
	assert.Contains(t, out.String(), "Error generating response")
	assert.Equal(t, 3, fallback.callCount())
}

func TestRunWithoutProvidersReportsConfiguration(t *testing.T) {
	a, out := newTestApp(t, nil, nil, nil)

	req, err := task.NewAsk("q")
	require.NoError(t, err)
	require.NoError(t, a.run(context.Background(), req))

	assert.Contains(t, out.String(), "no AI provider is configured")
}

func TestRunFallbackDisclosureReachesUser(t *testing.T) {
	primary := &stubGenerator{id: model.ProviderGemini, err: errors.New("boom")}
	fallback := &stubGenerator{id: model.ProviderOpenAI, text: "recovered answer"}
	a, out := newTestApp(t, primary, fallback, nil)

	req, err := task.NewAsk("q")
	require.NoError(t, err)
	require.NoError(t, a.run(context.Background(), req))

	assert.Contains(t, out.String(), "Falling back to openai")
	assert.Contains(t, out.String(), "recovered answer")
}

func TestRunRecordsInvocation(t *testing.T) {
	primary := &stubGenerator{id: model.ProviderGemini, text: "answer"}
	a, _ := newTestApp(t, primary, nil, nil)

	store, err := history.Open(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()
	a.store = store

	req, err := task.NewAsk("remember me")
	require.NoError(t, err)
	require.NoError(t, a.run(context.Background(), req))

	records, err := store.Recent(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "ask", records[0].Task)
	assert.Equal(t, "remember me", records[0].Payload)
	assert.Equal(t, "gemini", records[0].Provider)
	assert.Nil(t, records[0].ExitCode)
}

func TestRunExecuteRecordsExitCode(t *testing.T) {
	primary := &stubGenerator{id: model.ProviderGemini, text: "analysis\n\nVERDICT: FAILED"}
	a, _ := newTestApp(t, primary, nil, nil)

	store, err := history.Open(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()
	a.store = store

	req, err := task.NewExecute("exit 3")
	require.NoError(t, err)
	require.NoError(t, a.run(context.Background(), req))

	records, err := store.Recent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].ExitCode)
	assert.Equal(t, 3, *records[0].ExitCode)
}

func TestShowHistoryWithoutStore(t *testing.T) {
	a, out := newTestApp(t, nil, nil, nil)

	require.NoError(t, a.showHistory(context.Background()))
	assert.Contains(t, out.String(), "History is disabled or unavailable.")
}

func TestShowHistoryListsRecords(t *testing.T) {
	a, out := newTestApp(t, nil, nil, nil)

	store, err := history.Open(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer store.Close()
	a.store = store

	require.NoError(t, store.Add(context.Background(), history.Record{
		Task: "debug", Payload: "command not found", Provider: "gemini", ElapsedMs: 900,
	}))

	require.NoError(t, a.showHistory(context.Background()))
	assert.Contains(t, out.String(), "debug")
	assert.Contains(t, out.String(), "command not found")
}
