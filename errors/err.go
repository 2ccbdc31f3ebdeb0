package errors

import (
	"fmt"
)

var (
	// ErrInvalidParams marks missing or malformed caller input. No remote call
	// has been attempted when this is returned.
	ErrInvalidParams = fmt.Errorf("chatcore: invalid params")

	// ErrNotFound covers both absent resources and resources owned by another
	// user, so existence is never leaked across owners.
	ErrNotFound = fmt.Errorf("chatcore: not found")

	// ErrUpstream means the remote model provider was reachable but returned a
	// failure, including runs ending in a non-completed terminal state.
	ErrUpstream = fmt.Errorf("chatcore: upstream error")

	// ErrTimeout means a remote operation exceeded its allowed wait, in
	// particular run status polling.
	ErrTimeout = fmt.Errorf("chatcore: timeout")

	// ErrPersistence means the durable store failed. Always fatal to the
	// current call.
	ErrPersistence = fmt.Errorf("chatcore: persistence error")
)
