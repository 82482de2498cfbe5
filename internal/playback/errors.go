// ABOUTME: PlaybackError rejects operations that do not fit the session state
// ABOUTME: A rejected operation never moves the state machine or touches history
package playback

import (
	"fmt"

	"github.com/harper/paperplay/internal/models"
)

// PlaybackError reports an operation the current session state cannot
// accept, such as advancing past a pending choice or selecting an
// out-of-range option. The session is left exactly as it was.
type PlaybackError struct {
	Op      string
	State   models.SessionState
	Message string
}

func (e *PlaybackError) Error() string {
	return fmt.Sprintf("cannot %s in state %s: %s", e.Op, e.State, e.Message)
}

func rejected(op string, state models.SessionState, format string, args ...interface{}) *PlaybackError {
	return &PlaybackError{
		Op:      op,
		State:   state,
		Message: fmt.Sprintf(format, args...),
	}
}
