package permafrost

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRunManager(t *testing.T) *RunManager {
	t.Helper()

	sm, err := NewStoreManager(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { sm.Close() })

	rm, err := NewRunManager(sm)
	require.NoError(t, err)
	return rm
}

func TestRunLifecycle(t *testing.T) {
	rm := newTestRunManager(t)

	record, err := rm.Begin(RunBackup)
	require.NoError(t, err)
	assert.NotEmpty(t, record.ID)
	assert.Equal(t, RunStatusRunning, record.Status)
	assert.Nil(t, record.Finished)

	require.NoError(t, rm.Complete(record.ID, ""))

	runs, err := rm.Recent(10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, RunStatusCompleted, runs[0].Status)
	assert.NotNil(t, runs[0].Finished)
}

func TestRunFailure(t *testing.T) {
	rm := newTestRunManager(t)

	record, err := rm.Begin(RunVerify)
	require.NoError(t, err)

	require.NoError(t, rm.Complete(record.ID, "restic check failed"))

	got, err := rm.Recent(1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, RunStatusFailed, got[0].Status)
	assert.Equal(t, "restic check failed", got[0].Message)
}

func TestRunCompleteUnknownID(t *testing.T) {
	rm := newTestRunManager(t)
	assert.Error(t, rm.Complete("missing", ""))
}

func TestRecentLimit(t *testing.T) {
	rm := newTestRunManager(t)

	for i := 0; i < 5; i++ {
		_, err := rm.Begin(RunCold)
		require.NoError(t, err)
	}

	runs, err := rm.Recent(3)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}
