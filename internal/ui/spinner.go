package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var spinnerStyle = lipgloss.NewStyle().Faint(true)

// Spinner is the transient progress indicator shown during blocking waits.
// It rewrites a single line with two rotating phase labels and a cycling
// ellipsis. A Spinner is single-use: start with StartSpinner, finish with
// Stop.
type Spinner struct {
	out      io.Writer
	interval time.Duration
	phases   []string

	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// StartSpinner starts a spinner writing to out at the given interval.
func StartSpinner(out io.Writer, interval time.Duration) *Spinner {
	s := &Spinner{
		out:      out,
		interval: interval,
		phases:   []string{"Thinking", "Analysing"},
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *Spinner) run() {
	defer close(s.doneCh)

	dots := []string{".", "..", "..."}
	i := 0
	for {
		select {
		case <-s.stopCh:
			s.clearLine()
			return
		default:
		}

		phase := s.phases[(i/len(dots))%len(s.phases)]
		frame := fmt.Sprintf("%s %s", phase, dots[i%len(dots)])
		fmt.Fprintf(s.out, "\r%s%s", spinnerStyle.Render(frame), strings.Repeat(" ", 10))
		i++

		select {
		case <-s.stopCh:
			s.clearLine()
			return
		case <-time.After(s.interval):
		}
	}
}

func (s *Spinner) clearLine() {
	fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", 80))
}

// Stop halts the spinner and blocks until the line has been cleared, so
// the clearing write happens before any subsequent output. Safe to call
// multiple times.
func (s *Spinner) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
	<-s.doneCh
}
