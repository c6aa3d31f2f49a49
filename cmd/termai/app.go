package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/Cyclone1070/termai/internal/config"
	"github.com/Cyclone1070/termai/internal/dispatch"
	"github.com/Cyclone1070/termai/internal/executor"
	"github.com/Cyclone1070/termai/internal/history"
	"github.com/Cyclone1070/termai/internal/prompt"
	"github.com/Cyclone1070/termai/internal/provider/gemini"
	"github.com/Cyclone1070/termai/internal/provider/model"
	"github.com/Cyclone1070/termai/internal/provider/openai"
	"github.com/Cyclone1070/termai/internal/sysinfo"
	"github.com/Cyclone1070/termai/internal/task"
	"github.com/Cyclone1070/termai/internal/ui"
)

// app holds the wired dependencies for one invocation. Everything is
// injected so tests can substitute fakes without touching globals.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	out       io.Writer
	errOut    io.Writer
	collector *sysinfo.Collector
	runner    *executor.Runner
	presenter *ui.Presenter
	primary   model.Generator // nil when GEMINI_API_KEY is absent
	fallback  model.Generator // nil when OPENAI_API_KEY is absent
	store     *history.Store  // nil when history is disabled or unavailable
	spinner   dispatch.IndicatorFunc
	sleep     func(time.Duration)
}

// newApp builds the production app. A missing API key leaves that
// provider nil; the dispatcher reports the configuration error only when
// both are missing.
func newApp(ctx context.Context, logger *zap.Logger) *app {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		fmt.Fprintf(os.Stderr, "Using default configuration.\n")
		cfg = config.DefaultConfig()
	}

	a := &app{
		cfg:       cfg,
		logger:    logger,
		out:       os.Stdout,
		errOut:    os.Stderr,
		collector: sysinfo.NewCollector(),
		runner:    executor.NewRunner(cfg, logger),
		sleep:     time.Sleep,
	}
	a.presenter = ui.NewPresenter(a.out, ui.NewGlamourRenderer(cfg.Display.WordWrap))

	spinnerInterval := time.Duration(cfg.Display.SpinnerIntervalMs) * time.Millisecond
	a.spinner = func() dispatch.Indicator {
		return ui.StartSpinner(a.errOut, spinnerInterval)
	}

	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
		if err != nil {
			logger.Warn("gemini client unavailable", zap.Error(err))
		} else {
			a.primary = gemini.New(gemini.NewRealClient(client), cfg.Providers.GeminiModel)
		}
	}

	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		a.fallback = openai.New(openai.Config{
			APIKey:  apiKey,
			BaseURL: cfg.Providers.OpenAIBaseURL,
			Model:   cfg.Providers.OpenAIModel,
		})
	}

	if cfg.History.Enabled {
		path := cfg.History.Path
		if path == "" {
			if p, err := history.DefaultPath(); err == nil {
				path = p
			}
		}
		if path != "" {
			store, err := history.Open(ctx, path)
			if err != nil {
				logger.Warn("history store unavailable", zap.Error(err))
			} else {
				a.store = store
			}
		}
	}

	return a
}

func (a *app) close() {
	if a.store != nil {
		_ = a.store.Close()
	}
}

func (a *app) dispatcher() *dispatch.Dispatcher {
	return dispatch.New(a.primary, a.fallback, a.cfg, a.logger,
		dispatch.WithIndicator(a.spinner),
		dispatch.WithSleep(a.sleep),
	)
}

// run drives one task end to end. Task-level failures (command errors,
// provider errors) are printed and swallowed: the process still exits 0.
// Only usage errors propagate to cobra.
func (a *app) run(ctx context.Context, req task.Request) error {
	sysCtx := a.collector.Collect()

	var execResult *executor.Result
	if req.Kind == task.KindExecute {
		res, err := a.runner.Run(ctx, req.Payload, sysCtx.WorkingDir)
		if err != nil {
			a.presenter.ShowError(fmt.Sprintf("💥 Error executing command: %v", err))
			return nil
		}

		// Raw output is shown before any model call, so a failing
		// analysis never hides the command result.
		a.presenter.ShowCommandResult(req.Payload, res)

		if res.TimedOut {
			a.presenter.ShowTimeout(req.Payload, a.cfg.Exec.TimeoutSeconds)
			a.record(req, model.Answer{}, &res.ExitCode)
			return nil
		}
		execResult = res
	}

	rendered, err := prompt.Build(req, sysCtx, execResult)
	if err != nil {
		a.presenter.ShowError(fmt.Sprintf("Error building prompt: %v", err))
		return nil
	}

	if execResult != nil {
		a.presenter.ShowAnalysisHeader()
	}

	answer, err := a.dispatcher().Dispatch(ctx, rendered)
	if err != nil {
		a.presenter.ShowError(fmt.Sprintf("Error generating response: %v", err))
		return nil
	}

	a.presenter.Present(answer, req.Kind)

	var exitCode *int
	if execResult != nil {
		exitCode = &execResult.ExitCode
	}
	a.record(req, answer, exitCode)
	return nil
}

// record appends the invocation to the history log. Best-effort: failures
// are logged and never surface to the user.
func (a *app) record(req task.Request, answer model.Answer, exitCode *int) {
	if a.store == nil {
		return
	}

	rec := history.Record{
		Timestamp:      time.Now(),
		Task:           string(req.Kind),
		Payload:        req.Payload,
		Provider:       string(answer.Provider),
		FallbackReason: answer.FallbackReason,
		ElapsedMs:      answer.Elapsed.Milliseconds(),
		ExitCode:       exitCode,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := a.store.Add(ctx, rec); err != nil {
		a.logger.Warn("failed to record invocation", zap.Error(err))
	}
}

// showHistory prints the most recent invocations.
func (a *app) showHistory(ctx context.Context) error {
	if a.store == nil {
		a.presenter.ShowError("History is disabled or unavailable.")
		return nil
	}

	records, err := a.store.Recent(ctx, a.cfg.History.ListLimit)
	if err != nil {
		a.presenter.ShowError(fmt.Sprintf("Error reading history: %v", err))
		return nil
	}
	if len(records) == 0 {
		fmt.Fprintln(a.out, "No history yet.")
		return nil
	}

	for _, rec := range records {
		line := fmt.Sprintf("%s  %-8s %-7s %5dms", rec.Timestamp.Local().Format("2006-01-02 15:04"), rec.Task, rec.Provider, rec.ElapsedMs)
		if rec.ExitCode != nil {
			line += fmt.Sprintf("  exit=%d", *rec.ExitCode)
		}
		fmt.Fprintf(a.out, "%s  %s\n", line, rec.Payload)
	}
	return nil
}
