package history

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAddAndRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	code := 2
	require.NoError(t, s.Add(ctx, Record{
		Task:      "ask",
		Payload:   "how do I list open ports",
		Provider:  "gemini",
		ElapsedMs: 1200,
	}))
	require.NoError(t, s.Add(ctx, Record{
		Task:           "execute",
		Payload:        "git main",
		Provider:       "openai",
		FallbackReason: "timeout",
		ElapsedMs:      3400,
		ExitCode:       &code,
	}))

	records, err := s.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Newest first.
	assert.Equal(t, "execute", records[0].Task)
	assert.Equal(t, "timeout", records[0].FallbackReason)
	require.NotNil(t, records[0].ExitCode)
	assert.Equal(t, 2, *records[0].ExitCode)

	assert.Equal(t, "ask", records[1].Task)
	assert.Empty(t, records[1].FallbackReason)
	assert.Nil(t, records[1].ExitCode)
	assert.False(t, records[1].Timestamp.IsZero())
}

func TestRecentHonorsLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Add(ctx, Record{Task: "ask", Payload: "q", Provider: "gemini"}))
	}

	records, err := s.Recent(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestAddTruncatesLongPayload(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, Record{
		Task:     "debug",
		Payload:  strings.Repeat("e", maxStoredPayload+100),
		Provider: "gemini",
	}))

	records, err := s.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Len(t, records[0].Payload, maxStoredPayload)
}

func TestOpenCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "history.db")

	s, err := Open(context.Background(), path)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Add(context.Background(), Record{
		Task: "ask", Payload: "q", Provider: "gemini", Timestamp: time.Now(),
	}))
}

func TestRecentOnEmptyStore(t *testing.T) {
	s := openTestStore(t)

	records, err := s.Recent(context.Background(), 20)
	require.NoError(t, err)
	assert.Empty(t, records)
}
