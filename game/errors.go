package game

import (
	"errors"
	"fmt"
	"time"
)

// Error is a validation or precondition failure. No state was changed.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

// Is matches on Code so wrapped variants compare equal to the sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrRoomNotFound     = &Error{Code: "room-not-found", Message: "room not found"}
	ErrWrongPassword    = &Error{Code: "wrong-password", Message: "wrong room password"}
	ErrBanned           = &Error{Code: "banned", Message: "you are banned from this room"}
	ErrDuplicateName    = &Error{Code: "duplicate-name", Message: "name already taken in this room"}
	ErrRoomFull         = &Error{Code: "room-full", Message: "room is full"}
	ErrGameInProgress   = &Error{Code: "game-in-progress", Message: "game already in progress"}
	ErrInvalidName      = &Error{Code: "invalid-name", Message: "name must be 2 to 20 characters"}
	ErrInvalidConfig    = &Error{Code: "invalid-config", Message: "invalid room configuration"}
	ErrAlreadyJoined    = &Error{Code: "already-joined", Message: "player already in room"}
	ErrNotHost          = &Error{Code: "not-host", Message: "only the host can do this"}
	ErrNotEnoughPlayers = &Error{Code: "not-enough-players", Message: "not enough players to start"}
	ErrAlreadyStarted   = &Error{Code: "already-started", Message: "game already started"}
	ErrNotFinished      = &Error{Code: "not-finished", Message: "game is still running"}
	ErrPlayerNotFound   = &Error{Code: "player-not-found", Message: "player not found"}
	ErrNotDrawer        = &Error{Code: "not-drawer", Message: "only the drawer can draw"}
	ErrSpectator        = &Error{Code: "spectator", Message: "spectators cannot guess"}
	ErrChatDisabled     = &Error{Code: "chat-disabled", Message: "chat is disabled in this room"}
	ErrMessageBlocked   = &Error{Code: "message-blocked", Message: "message blocked"}
)

func invalidConfig(err error) error {
	return &Error{Code: ErrInvalidConfig.Code, Message: fmt.Sprintf("invalid room configuration: %v", err)}
}

// RateLimitedError is returned when the rate limiter rejects an action.
type RateLimitedError struct {
	Action     string
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("too many %s requests, retry in %s", e.Action, e.RetryAfter)
}

// ErrorCode returns the wire code for err.
func ErrorCode(err error) string {
	var rl *RateLimitedError
	if errors.As(err, &rl) {
		return "rate-limited"
	}
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Code
	}
	return "internal"
}
