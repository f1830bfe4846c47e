package errors

import "errors"

// Engine failure kinds. Engine operations return these unwrapped or wrapped
// with fmt.Errorf("%w: detail", ...); a failed call never mutates table state.
var (
	ErrOutOfTurn        = errors.New("not your turn")
	ErrNotInHand        = errors.New("player folded or not in hand")
	ErrIllegalRaise     = errors.New("raise below minimum")
	ErrIllegalCheck     = errors.New("cannot check facing a bet")
	ErrSeatUnavailable  = errors.New("seat unavailable")
	ErrTableFull        = errors.New("table is full")
	ErrHandInProgress   = errors.New("hand already in progress")
	ErrNotEnoughPlayers = errors.New("not enough players")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrTableNotFound    = errors.New("table not found")
)

// Service-layer errors.
var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrUserNotFound        = errors.New("user not found")
	ErrUsernameTaken       = errors.New("username already taken")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrUserDisabled        = errors.New("account disabled")
	ErrTooManyLogins       = errors.New("too many failed logins, try later")
	ErrAdminRequired       = errors.New("admin privileges required")
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomFull            = errors.New("room is full")
	ErrRoomNotWaiting      = errors.New("room is not accepting players")
	ErrNotRoomCreator      = errors.New("only the creator can delete the room")
	ErrBorrowExhausted     = errors.New("no borrow attempts left")
	ErrBorrowNotNeeded     = errors.New("balance sufficient, borrowing not allowed")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrTransactionSettled  = errors.New("transaction already processed")
)
