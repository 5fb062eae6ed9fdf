package procio

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitStatusFailed(t *testing.T) {
	assert.False(t, ExitStatus{Status: StatusCompleted, ExitCode: 0}.Failed())
	assert.True(t, ExitStatus{Status: StatusCompleted, ExitCode: 1}.Failed())
	assert.True(t, ExitStatus{Status: StatusFailed, ExitCode: 1}.Failed())
	assert.True(t, ExitStatus{Status: StatusCancelled, ExitCode: -1, Err: errors.New("killed")}.Failed())
}

func TestStatusIsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusRunning.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
}
