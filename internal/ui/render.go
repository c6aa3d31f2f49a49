package ui

import "github.com/charmbracelet/glamour"

// Renderer turns markdown into styled terminal text.
type Renderer interface {
	Render(markdown string) (string, error)
}

// GlamourRenderer renders markdown with glamour's auto-detected style.
type GlamourRenderer struct {
	wordWrap int
}

// NewGlamourRenderer creates a renderer wrapping at the given column.
func NewGlamourRenderer(wordWrap int) *GlamourRenderer {
	return &GlamourRenderer{wordWrap: wordWrap}
}

// Render renders the markdown. A fresh TermRenderer per call keeps the
// renderer stateless; invocations are one-shot so this is not hot.
func (g *GlamourRenderer) Render(markdown string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(g.wordWrap),
	)
	if err != nil {
		return "", err
	}
	return r.Render(markdown)
}
