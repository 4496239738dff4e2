package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttemptState_String(t *testing.T) {
	cases := map[attemptState]string{
		stateNew:         "new",
		stateSent:        "sent",
		stateRefreshing:  "refreshing",
		stateRetried:     "retried",
		stateDone:        "done",
		stateFailed:      "failed",
		attemptState(99): "unknown",
	}
	for s, want := range cases {
		assert.Equal(t, want, s.String())
	}
}

func TestAttempt_CanRetry(t *testing.T) {
	a := &attempt{}
	assert.True(t, a.canRetry())

	a.retried = true
	assert.False(t, a.canRetry())

	b := &attempt{req: Request{Anonymous: true}}
	assert.False(t, b.canRetry())
}
