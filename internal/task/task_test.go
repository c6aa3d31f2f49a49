package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAsk(t *testing.T) {
	req, err := NewAsk("how do I list open ports")
	require.NoError(t, err)
	assert.Equal(t, KindAsk, req.Kind)
	assert.Equal(t, "how do I list open ports", req.Payload)
	assert.Empty(t, req.ErrorText)
}

func TestEmptyPayloadIsUsageError(t *testing.T) {
	cases := []struct {
		name string
		make func() (Request, error)
	}{
		{"ask", func() (Request, error) { return NewAsk("") }},
		{"ask whitespace", func() (Request, error) { return NewAsk("   \t") }},
		{"debug", func() (Request, error) { return NewDebug("") }},
		{"explain", func() (Request, error) { return NewExplain("", "") }},
		{"execute", func() (Request, error) { return NewExecute("  ") }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.make()
			assert.ErrorIs(t, err, ErrEmptyPayload)
		})
	}
}

func TestNewExplainModes(t *testing.T) {
	withError, err := NewExplain("git push", "rejected: non-fast-forward")
	require.NoError(t, err)
	assert.Equal(t, KindExplain, withError.Kind)
	assert.Equal(t, "rejected: non-fast-forward", withError.ErrorText)

	tutorial, err := NewExplain("tar", "   ")
	require.NoError(t, err)
	assert.Empty(t, tutorial.ErrorText)
}

func TestNewExecute(t *testing.T) {
	req, err := NewExecute("ls -la")
	require.NoError(t, err)
	assert.Equal(t, KindExecute, req.Kind)
	assert.Equal(t, "ls -la", req.Payload)
}
