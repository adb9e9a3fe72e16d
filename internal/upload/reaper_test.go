package upload

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaper_Sweep(t *testing.T) {
	chunks, err := NewDirStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, chunks.Create("young"))
	require.NoError(t, chunks.Create("abandoned"))

	reaper := NewReaper(chunks)

	// nothing has aged past the threshold yet
	reaper.Sweep()
	assert.True(t, chunks.Exists("young"))
	assert.True(t, chunks.Exists("abandoned"))

	// with a zero threshold the sweep removes everything idle
	time.Sleep(10 * time.Millisecond)
	reaper.MaxIdle = 0
	reaper.Sweep()
	assert.False(t, chunks.Exists("abandoned"))

	// a reaped session behaves like one that never existed
	err = chunks.WriteChunk("abandoned", 0, strings.NewReader("late"))
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// sweeping again is a no-op
	reaper.Sweep()
}
