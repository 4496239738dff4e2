package client

// attemptState is the lifecycle of one logical call.
//
//	new -> sent -> done
//	            -> failed
//	            -> refreshing -> retried -> sent -> done | failed
//	                          -> failed
type attemptState int

const (
	stateNew attemptState = iota
	stateSent
	stateRefreshing
	stateRetried
	stateDone
	stateFailed
)

func (s attemptState) String() string {
	switch s {
	case stateNew:
		return "new"
	case stateSent:
		return "sent"
	case stateRefreshing:
		return "refreshing"
	case stateRetried:
		return "retried"
	case stateDone:
		return "done"
	case stateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// attempt is the per-call record. It is owned by a single goroutine.
type attempt struct {
	id      string
	req     Request
	body    []byte
	token   string
	retried bool
	sends   int
	state   attemptState
}

// canRetry reports whether a 401 on this attempt may trigger a refresh.
func (a *attempt) canRetry() bool {
	return !a.req.Anonymous && !a.retried
}
